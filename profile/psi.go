// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package profile

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// BinType tags how a PSI bin's boundaries should be interpreted.
type BinType string

const (
	BinTypeNumeric     BinType = "numeric"
	BinTypeCategorical BinType = "categorical"
	BinTypeBinary      BinType = "binary"
)

// Bin is one bucket of a PSI feature's reference distribution. The first
// bin in a schema has no LowerLimit and the last has no UpperLimit.
type Bin struct {
	ID         int      `json:"id"`
	LowerLimit *float64 `json:"lower_limit,omitempty"`
	UpperLimit *float64 `json:"upper_limit,omitempty"`
	Proportion float64  `json:"proportion"`
}

// PSIFeatureSchema is the ordered bin partition for one monitored feature.
type PSIFeatureSchema struct {
	BinType BinType `json:"bin_type"`
	Bins    []Bin   `json:"bins"`
}

func (s PSIFeatureSchema) validate(name string) error {
	if len(s.Bins) == 0 {
		return fmt.Errorf("psi feature %q: no bins declared", name)
	}
	sorted := make([]Bin, len(s.Bins))
	copy(sorted, s.Bins)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	if s.BinType == BinTypeNumeric {
		if sorted[0].LowerLimit != nil {
			return fmt.Errorf("psi feature %q: first bin must have no lower_limit", name)
		}
		if sorted[len(sorted)-1].UpperLimit != nil {
			return fmt.Errorf("psi feature %q: last bin must have no upper_limit", name)
		}
		for i := 1; i < len(sorted); i++ {
			prevUpper := sorted[i-1].UpperLimit
			curLower := sorted[i].LowerLimit
			if prevUpper == nil || curLower == nil || *prevUpper != *curLower {
				return fmt.Errorf("psi feature %q: bin %d and %d do not share a boundary", name, sorted[i-1].ID, sorted[i].ID)
			}
		}
	}

	var total float64
	for _, b := range sorted {
		total += b.Proportion
	}
	if math.Abs(total-1.0) > 1e-3 {
		return fmt.Errorf("psi feature %q: bin proportions sum to %f, want ~1.0", name, total)
	}
	return nil
}

// ResolveBin returns the unique bin whose half-open interval contains v,
// per P4: the first and last bins are open on their outer side. Values
// below the first upper_limit land in the first bin; values at or above
// the last lower_limit land in the last bin.
func (s PSIFeatureSchema) ResolveBin(v float64) (Bin, bool) {
	if len(s.Bins) == 0 {
		return Bin{}, false
	}
	sorted := make([]Bin, len(s.Bins))
	copy(sorted, s.Bins)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	i := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].UpperLimit == nil || v < *sorted[i].UpperLimit
	})
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i], true
}

// ResolveCategoricalBin matches an integer category code against the bin
// whose ID equals that code.
func (s PSIFeatureSchema) ResolveCategoricalBin(code int32) (Bin, bool) {
	for _, b := range s.Bins {
		if b.ID == int(code) {
			return b, true
		}
	}
	return Bin{}, false
}

// ResolveBinaryBin maps the 0/1 value directly to the bin with that ID.
func (s PSIFeatureSchema) ResolveBinaryBin(v int) (Bin, bool) {
	for _, b := range s.Bins {
		if b.ID == v {
			return b, true
		}
	}
	return Bin{}, false
}

// PSIProfile is the immutable schema for population-stability-index
// monitoring: per-feature bin partitions compared against live counts.
type PSIProfile struct {
	id                Identifier
	scouterVersion    string
	featuresToMonitor []string
	features          map[string]PSIFeatureSchema
	featureMap        map[string]map[string]int32
}

func newPSIProfile(env fileEnvelope) (*PSIProfile, error) {
	var body struct {
		Features   map[string]PSIFeatureSchema `json:"features"`
		FeatureMap map[string]map[string]int32 `json:"feature_map"`
	}
	if len(env.Features) > 0 {
		if err := json.Unmarshal(env.Features, &body); err != nil {
			return nil, fmt.Errorf("psi: %w", err)
		}
	}
	if len(body.Features) == 0 {
		return nil, fmt.Errorf("psi: profile declares no monitored features")
	}
	for name, f := range body.Features {
		if err := f.validate(name); err != nil {
			return nil, err
		}
	}

	return &PSIProfile{
		id:                env.Config.Identifier,
		scouterVersion:    env.ScouterVersion,
		featuresToMonitor: env.Config.FeaturesToMonitor,
		features:          body.Features,
		featureMap:        body.FeatureMap,
	}, nil
}

func (p *PSIProfile) ID() Identifier              { return p.id }
func (p *PSIProfile) DriftType() DriftType        { return DriftTypePSI }
func (p *PSIProfile) EntityType() EntityType      { return EntityTypeFeatures }
func (p *PSIProfile) ScouterVersion() string      { return p.scouterVersion }
func (p *PSIProfile) FeaturesToMonitor() []string { return p.featuresToMonitor }

func (p *PSIProfile) Feature(name string) (PSIFeatureSchema, bool) {
	f, ok := p.features[name]
	return f, ok
}

func (p *PSIProfile) FeatureNames() []string {
	names := make([]string, 0, len(p.features))
	for name := range p.features {
		names = append(names, name)
	}
	return names
}

func (p *PSIProfile) CategoryCode(feature, category string) (int32, bool) {
	codes, ok := p.featureMap[feature]
	if !ok {
		return 0, false
	}
	code, ok := codes[category]
	return code, ok
}
