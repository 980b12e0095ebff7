// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package featurequeue

import (
	"log/slog"

	"github.com/demml/scouter-queue/entity"
	"github.com/demml/scouter-queue/internal/otelx"
	"github.com/demml/scouter-queue/profile"
)

var psiLog = otelx.Logger("github.com/demml/scouter-queue/featurequeue")

// psiQueue keeps a live bin-count distribution per monitored feature,
// flushed at a profile-level insert-count threshold or the 30s background
// tick, whichever comes first (spec §4.4.2).
type psiQueue struct {
	profile  *profile.PSIProfile
	id       profile.Identifier
	features []string
	capacity int

	counts       map[string]map[int]int
	insertsSince int
}

func newPSIQueue(p *profile.PSIProfile, capacity int) *psiQueue {
	features := monitoredFeatures(p.FeaturesToMonitor(), p.FeatureNames())
	counts := make(map[string]map[int]int, len(features))
	for _, f := range features {
		counts[f] = make(map[int]int)
	}
	return &psiQueue{
		profile:  p,
		id:       p.ID(),
		features: features,
		capacity: capacity,
		counts:   counts,
	}
}

func (q *psiQueue) Insert(ins entity.Insert) (InsertOutcome, error) {
	f, ok := ins.(entity.Features)
	if !ok {
		return Accepted, entity.ErrEntityTypeMismatch
	}

	byName := make(map[string]entity.Feature, len(f.Values))
	for _, v := range f.Values {
		byName[v.Name] = v
	}

	for _, name := range q.features {
		observed, present := byName[name]
		if !present {
			continue // feature absent from this insert: skip
		}
		q.bucket(name, observed)
	}

	q.insertsSince++
	if q.insertsSince >= q.capacity {
		return AcceptedAndFull, nil
	}
	return Accepted, nil
}

func (q *psiQueue) bucket(name string, observed entity.Feature) {
	schema, ok := q.profile.Feature(name)
	if !ok {
		return
	}

	var bin profile.Bin
	var resolved bool
	switch schema.BinType {
	case profile.BinTypeCategorical:
		s, isStr := observed.String()
		if !isStr {
			psiLog.Debug("expected categorical value", slog.String("feature", name))
			return
		}
		code, inMap := q.profile.CategoryCode(name, s)
		if !inMap {
			psiLog.Debug("categorical value not in feature map", slog.String("feature", name), slog.String("category", s))
			return
		}
		bin, resolved = schema.ResolveCategoricalBin(code)
	case profile.BinTypeBinary:
		v, isNum := observed.Float()
		if !isNum || (v != 0 && v != 1) {
			psiLog.Debug("binary feature value must be 0 or 1", slog.String("feature", name))
			return
		}
		bin, resolved = schema.ResolveBinaryBin(int(v))
	default: // numeric
		v, isNum := observed.Float()
		if !isNum {
			psiLog.Debug("non-numeric value for numeric feature", slog.String("feature", name))
			return
		}
		bin, resolved = schema.ResolveBin(v)
	}
	if !resolved {
		return
	}
	q.counts[name][bin.ID]++
}

func (q *psiQueue) Drain() entity.ServerRecords {
	var records []entity.Record
	now := nowUTC()
	for _, name := range q.features {
		for binID, count := range q.counts[name] {
			if count == 0 {
				continue
			}
			records = append(records, entity.PsiRecord{
				Identifier: q.id,
				CreatedAt:  now,
				Feature:    name,
				BinID:      binID,
				BinCount:   count,
			})
		}
		q.counts[name] = make(map[int]int)
	}
	q.insertsSince = 0
	if len(records) == 0 {
		return entity.ServerRecords{}
	}
	return entity.NewServerRecords(records)
}

func (q *psiQueue) IsEmpty() bool {
	for _, name := range q.features {
		for _, count := range q.counts[name] {
			if count > 0 {
				return false
			}
		}
	}
	return true
}

func (q *psiQueue) CapacityReached() bool {
	return q.insertsSince >= q.capacity
}

func (q *psiQueue) NeedsBackgroundTick() bool {
	return true
}
