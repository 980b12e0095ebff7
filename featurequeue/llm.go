// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package featurequeue

import (
	"github.com/demml/scouter-queue/entity"
	"github.com/demml/scouter-queue/profile"
)

// llmQueue is an append-only buffer of evaluation-context records; no
// aggregation happens client-side because evaluation runs server-side
// (spec §4.4.4).
type llmQueue struct {
	profile  *profile.LLMProfile
	id       profile.Identifier
	capacity int
	pending  []entity.LLMRecord
}

func newLLMQueue(p *profile.LLMProfile, capacity int) *llmQueue {
	return &llmQueue{profile: p, id: p.ID(), capacity: capacity}
}

func (q *llmQueue) Insert(ins entity.Insert) (InsertOutcome, error) {
	rec, ok := ins.(entity.LLMRecord)
	if !ok {
		return Accepted, entity.ErrEntityTypeMismatch
	}

	q.pending = append(q.pending, rec)
	if len(q.pending) >= q.capacity {
		return AcceptedAndFull, nil
	}
	return Accepted, nil
}

func (q *llmQueue) Drain() entity.ServerRecords {
	if len(q.pending) == 0 {
		return entity.ServerRecords{}
	}

	now := nowUTC()
	records := make([]entity.Record, 0, len(q.pending))
	for _, rec := range q.pending {
		records = append(records, entity.LLMEvalRecord{
			Identifier: q.id,
			CreatedAt:  now,
			UID:        rec.UID,
			Timestamp:  rec.Timestamp,
			Context:    rec.Context,
			Prompt:     rec.Prompt,
			Score:      rec.Score,
		})
	}
	q.pending = nil
	return entity.NewServerRecords(records)
}

func (q *llmQueue) IsEmpty() bool {
	return len(q.pending) == 0
}

func (q *llmQueue) CapacityReached() bool {
	return len(q.pending) >= q.capacity
}

func (q *llmQueue) NeedsBackgroundTick() bool {
	return true
}
