// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package profile

import (
	"encoding/json"
	"fmt"
)

// SPCFeatureSchema is the per-feature control-chart schema: a center value
// and three pairs of symmetric control limits.
type SPCFeatureSchema struct {
	Center     float64 `json:"center"`
	OneUCL     float64 `json:"one_ucl"`
	OneLCL     float64 `json:"one_lcl"`
	TwoUCL     float64 `json:"two_ucl"`
	TwoLCL     float64 `json:"two_lcl"`
	ThreeUCL   float64 `json:"three_ucl"`
	ThreeLCL   float64 `json:"three_lcl"`
	SampleSize int     `json:"sample_size"`
	Sample     bool    `json:"sample"`
}

func (s SPCFeatureSchema) validate(name string) error {
	if s.SampleSize <= 0 {
		return fmt.Errorf("spc feature %q: sample_size must be positive, got %d", name, s.SampleSize)
	}
	ordered := []float64{s.ThreeLCL, s.TwoLCL, s.OneLCL, s.Center, s.OneUCL, s.TwoUCL, s.ThreeUCL}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] > ordered[i] {
			return fmt.Errorf("spc feature %q: control limits out of order: three_lcl<=two_lcl<=one_lcl<=center<=one_ucl<=two_ucl<=three_ucl violated", name)
		}
	}
	return nil
}

// SPCProfile is the immutable schema for statistical-process-control
// monitoring: per-feature reservoirs compared against control limits.
type SPCProfile struct {
	id                Identifier
	scouterVersion    string
	featuresToMonitor []string
	features          map[string]SPCFeatureSchema
	featureMap        map[string]map[string]int32
}

func newSPCProfile(env fileEnvelope) (*SPCProfile, error) {
	var body struct {
		Features   map[string]SPCFeatureSchema  `json:"features"`
		FeatureMap map[string]map[string]int32 `json:"feature_map"`
	}
	if len(env.Features) > 0 {
		if err := json.Unmarshal(env.Features, &body); err != nil {
			return nil, fmt.Errorf("spc: %w", err)
		}
	}
	if len(body.Features) == 0 {
		return nil, fmt.Errorf("spc: profile declares no monitored features")
	}
	for name, f := range body.Features {
		if err := f.validate(name); err != nil {
			return nil, err
		}
	}

	return &SPCProfile{
		id:                env.Config.Identifier,
		scouterVersion:    env.ScouterVersion,
		featuresToMonitor: env.Config.FeaturesToMonitor,
		features:          body.Features,
		featureMap:        body.FeatureMap,
	}, nil
}

func (p *SPCProfile) ID() Identifier                { return p.id }
func (p *SPCProfile) DriftType() DriftType          { return DriftTypeSPC }
func (p *SPCProfile) EntityType() EntityType        { return EntityTypeFeatures }
func (p *SPCProfile) ScouterVersion() string        { return p.scouterVersion }
func (p *SPCProfile) FeaturesToMonitor() []string   { return p.featuresToMonitor }

// Feature returns the schema for name and whether it is declared.
func (p *SPCProfile) Feature(name string) (SPCFeatureSchema, bool) {
	f, ok := p.features[name]
	return f, ok
}

// FeatureNames returns every feature the profile declares a schema for,
// independent of the optional FeaturesToMonitor allow-list.
func (p *SPCProfile) FeatureNames() []string {
	names := make([]string, 0, len(p.features))
	for name := range p.features {
		names = append(names, name)
	}
	return names
}

// CategoryCode resolves a categorical string value to its integer code via
// the profile's feature map, for features whose raw values are strings.
func (p *SPCProfile) CategoryCode(feature, category string) (int32, bool) {
	codes, ok := p.featureMap[feature]
	if !ok {
		return 0, false
	}
	code, ok := codes[category]
	return code, ok
}
