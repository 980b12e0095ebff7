// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package queue

import (
	"fmt"
	"sync"

	"github.com/demml/scouter-queue/entity"
)

// insertQueue is the unbounded multi-producer/single-consumer structure
// backing one alias's insert stream (spec §5: "implemented over an
// unbounded multi-producer/single-consumer channel"). Producers append
// under a short-held mutex and never block on the consumer; the consumer
// (the event loop) is woken through a capacity-1 signal channel so it can
// sit in the same select as its ticker and cancellation token without
// polling. Unlike a fixed-capacity Go channel, push never fails: the
// backing slice grows to absorb whatever the caller hands it, trading
// memory pressure for a non-blocking hot path, exactly the trade-off
// spec §5 calls for.
type insertQueue struct {
	mu    sync.Mutex
	items []entity.Insert
	wake  chan struct{}
}

func newInsertQueue() *insertQueue {
	return &insertQueue{wake: make(chan struct{}, 1)}
}

// push appends v and wakes the consumer. It never blocks.
func (q *insertQueue) push(v entity.Insert) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// drain atomically takes every item queued so far, resetting the
// backing slice. Items are returned in push order (P6).
func (q *insertQueue) drain() []entity.Insert {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

// QueueBus is the public, per-alias insert handle (spec §4.2). Insert is
// fire-and-forget: it never blocks the caller and never returns an error,
// so an ingestion failure can't perturb a hot inference request path.
// Validation (entity_type mismatch) and aggregation happen on the event
// loop side, which owns the feature queue exclusively; failures there are
// logged, never surfaced back here.
type QueueBus struct {
	alias string
	queue *insertQueue
}

// Insert hands v to this alias's event loop and returns immediately.
// Inserts from a single caller goroutine are delivered to the event loop
// in the order they were made (P6); inserts across goroutines interleave
// nondeterministically but each push is atomic.
func (b *QueueBus) Insert(v entity.Insert) {
	b.queue.push(v)
}

// Alias reports the identifier this bus was registered under.
func (b *QueueBus) Alias() string { return b.alias }

func (b *QueueBus) String() string {
	return fmt.Sprintf("QueueBus(%s)", b.alias)
}
