// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package featurequeue

import (
	"github.com/demml/scouter-queue/entity"
	"github.com/demml/scouter-queue/profile"
)

type accumulator struct {
	sum   float64
	count int
}

// customMetricQueue keeps a running sum/count per declared metric for
// mean aggregation, flushed at an insert-count threshold or the 30s
// background tick.
type customMetricQueue struct {
	profile      *profile.CustomMetricProfile
	id           profile.Identifier
	acc          map[string]*accumulator
	capacity     int
	insertsSince int
}

func newCustomMetricQueue(p *profile.CustomMetricProfile, capacity int) *customMetricQueue {
	return &customMetricQueue{
		profile:  p,
		id:       p.ID(),
		acc:      make(map[string]*accumulator),
		capacity: capacity,
	}
}

func (q *customMetricQueue) Insert(ins entity.Insert) (InsertOutcome, error) {
	m, ok := ins.(entity.Metrics)
	if !ok {
		return Accepted, entity.ErrEntityTypeMismatch
	}

	for _, metric := range m.Values {
		if _, declared := q.profile.Metric(metric.Name); !declared {
			continue
		}
		a, ok := q.acc[metric.Name]
		if !ok {
			a = &accumulator{}
			q.acc[metric.Name] = a
		}
		a.sum += metric.Value
		a.count++
	}

	q.insertsSince++
	if q.insertsSince >= q.capacity {
		return AcceptedAndFull, nil
	}
	return Accepted, nil
}

func (q *customMetricQueue) Drain() entity.ServerRecords {
	var records []entity.Record
	now := nowUTC()
	for name, a := range q.acc {
		if a.count == 0 {
			continue
		}
		records = append(records, entity.CustomMetricRecord{
			Identifier: q.id,
			CreatedAt:  now,
			Metric:     name,
			Value:      a.sum / float64(a.count),
		})
	}
	q.acc = make(map[string]*accumulator)
	q.insertsSince = 0
	if len(records) == 0 {
		return entity.ServerRecords{}
	}
	return entity.NewServerRecords(records)
}

func (q *customMetricQueue) IsEmpty() bool {
	for _, a := range q.acc {
		if a.count > 0 {
			return false
		}
	}
	return true
}

func (q *customMetricQueue) CapacityReached() bool {
	return q.insertsSince >= q.capacity
}

func (q *customMetricQueue) NeedsBackgroundTick() bool {
	return true
}
