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

var spcLog = otelx.Logger("github.com/demml/scouter-queue/featurequeue")

// spcQueue reservoir-samples up to sample_size numeric observations per
// monitored feature, emitting one record per feature (the sample mean)
// once every monitored feature's reservoir is full.
type spcQueue struct {
	profile  *profile.SPCProfile
	id       profile.Identifier
	features []string
	samples  map[string][]float64
}

func newSPCQueue(p *profile.SPCProfile) *spcQueue {
	features := monitoredFeatures(p.FeaturesToMonitor(), p.FeatureNames())
	samples := make(map[string][]float64, len(features))
	for _, f := range features {
		samples[f] = nil
	}
	return &spcQueue{
		profile:  p,
		id:       p.ID(),
		features: features,
		samples:  samples,
	}
}

func (q *spcQueue) Insert(ins entity.Insert) (InsertOutcome, error) {
	f, ok := ins.(entity.Features)
	if !ok {
		return Accepted, entity.ErrEntityTypeMismatch
	}

	for _, observed := range f.Values {
		schema, declared := q.profile.Feature(observed.Name)
		if !declared {
			continue // unknown feature name: skip silently
		}
		if !q.isMonitored(observed.Name) {
			continue
		}
		if len(q.samples[observed.Name]) >= schema.SampleSize {
			continue // reservoir already holds sample_size observations
		}

		value, ok := q.resolveValue(observed, schema)
		if !ok {
			continue
		}
		q.samples[observed.Name] = append(q.samples[observed.Name], value)
	}

	if q.allReservoirsFull() {
		return AcceptedAndFull, nil
	}
	return Accepted, nil
}

func (q *spcQueue) resolveValue(f entity.Feature, schema profile.SPCFeatureSchema) (float64, bool) {
	if v, ok := f.Float(); ok {
		return v, true
	}
	s, ok := f.String()
	if !ok {
		spcLog.Debug("non-numeric value for numeric feature", slog.String("feature", f.Name))
		return 0, false
	}
	code, ok := q.profile.CategoryCode(f.Name, s)
	if !ok {
		spcLog.Debug("categorical value not in feature map", slog.String("feature", f.Name), slog.String("category", s))
		return 0, false
	}
	return float64(code), true
}

func (q *spcQueue) isMonitored(name string) bool {
	for _, f := range q.features {
		if f == name {
			return true
		}
	}
	return false
}

func (q *spcQueue) allReservoirsFull() bool {
	for _, f := range q.features {
		schema, _ := q.profile.Feature(f)
		if len(q.samples[f]) < schema.SampleSize {
			return false
		}
	}
	return true
}

func (q *spcQueue) Drain() entity.ServerRecords {
	if !q.allReservoirsFull() {
		if q.IsEmpty() {
			return entity.ServerRecords{}
		}
	}

	var records []entity.Record
	now := nowUTC()
	for _, f := range q.features {
		samples := q.samples[f]
		if len(samples) == 0 {
			continue
		}
		var sum float64
		for _, s := range samples {
			sum += s
		}
		records = append(records, entity.SpcRecord{
			Identifier: q.id,
			CreatedAt:  now,
			Feature:    f,
			Value:      sum / float64(len(samples)),
		})
		q.samples[f] = nil
	}
	if len(records) == 0 {
		return entity.ServerRecords{}
	}
	return entity.NewServerRecords(records)
}

func (q *spcQueue) IsEmpty() bool {
	for _, f := range q.features {
		if len(q.samples[f]) > 0 {
			return false
		}
	}
	return true
}

func (q *spcQueue) CapacityReached() bool {
	return q.allReservoirsFull()
}

func (q *spcQueue) NeedsBackgroundTick() bool {
	return false
}
