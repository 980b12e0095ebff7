// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package queue

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/demml/scouter-queue/entity"
	"github.com/demml/scouter-queue/featurequeue"
	"github.com/demml/scouter-queue/internal/otelx"
	"github.com/demml/scouter-queue/profile"
	"github.com/demml/scouter-queue/transport"
)

var eventLoopLog = otelx.Logger("github.com/demml/scouter-queue/queue")

// drainGrace bounds how long the loop keeps absorbing last-moment
// inserts after cancellation before its final publish (spec §4.3:
// "drain the channel, bounded by a small timeout").
const drainGrace = 50 * time.Millisecond

// eventLoop is the single goroutine that owns one alias's feature queue.
// It is the only caller of Insert/Drain on that queue, so the queue
// itself never needs locking (spec §4.3). It multiplexes three sources
// with select, mirroring the reference consumer's tick/run shape: a wake
// signal from [QueueBus]'s unbounded insert queue, a background ticker
// for time-based flushes, and the loop's own cancellation.
type eventLoop struct {
	alias          string
	id             profile.Identifier
	fq             featurequeue.FeatureQueue
	producer       transport.Producer
	inserts        *insertQueue
	tickInterval   time.Duration
	publishTimeout time.Duration

	insertCount  int64
	publishCount int64
	droppedCount int64
}

func newEventLoop(alias string, id profile.Identifier, fq featurequeue.FeatureQueue, producer transport.Producer, tickInterval time.Duration) *eventLoop {
	return &eventLoop{
		alias:          alias,
		id:             id,
		fq:             fq,
		producer:       producer,
		inserts:        newInsertQueue(),
		tickInterval:   tickInterval,
		publishTimeout: 10 * time.Second,
	}
}

// run drives the loop until ctx is cancelled, then drains whatever is
// pending (within drainGrace) and publishes it before marking state done
// (P5: shutdown drains in-flight work rather than discarding it).
func (l *eventLoop) run(ctx context.Context, state *taskState) {
	defer state.markDone()

	ticker := time.NewTicker(l.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.inserts.wake:
			l.handleInserts(ctx, l.inserts.drain())
		case <-ticker.C:
			l.tick(ctx)
		case <-ctx.Done():
			l.drainOnShutdown()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), l.publishTimeout)
			l.publish(shutdownCtx)
			l.publishObservability(shutdownCtx)
			cancel()
			return
		}
	}
}

// drainOnShutdown absorbs any inserts still arriving right at
// cancellation. Anything already pushed is captured immediately, with no
// delay; a bounded grace window then catches a push that was mid-flight
// when cancellation was observed (spec §4.3).
func (l *eventLoop) drainOnShutdown() {
	bgCtx := context.Background()

	if items := l.inserts.drain(); len(items) > 0 {
		l.handleInserts(bgCtx, items)
	}

	select {
	case <-l.inserts.wake:
		if items := l.inserts.drain(); len(items) > 0 {
			l.handleInserts(bgCtx, items)
		}
	case <-time.After(drainGrace):
	}
}

// handleInserts folds each queued entity into the feature queue in
// order, publishing as soon as any single insert reports capacity
// reached (spec §4.3).
func (l *eventLoop) handleInserts(ctx context.Context, items []entity.Insert) {
	for _, v := range items {
		outcome, err := l.fq.Insert(v)
		if err != nil {
			eventLoopLog.Warn("insert rejected", "alias", l.alias, "error", err)
			continue
		}
		atomic.AddInt64(&l.insertCount, 1)

		if outcome == featurequeue.AcceptedAndFull {
			l.publish(ctx)
		}
	}
}

func (l *eventLoop) tick(ctx context.Context) {
	if l.fq.NeedsBackgroundTick() && !l.fq.IsEmpty() {
		l.publish(ctx)
	}
	l.publishObservability(ctx)
}

func (l *eventLoop) publish(ctx context.Context) {
	records := l.fq.Drain()
	if records.IsEmpty() {
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, l.publishTimeout)
	defer cancel()

	if err := l.producer.Publish(pubCtx, records); err != nil {
		atomic.AddInt64(&l.droppedCount, 1)
		eventLoopLog.Warn("publish failed, batch dropped", "alias", l.alias, "error", err)
		return
	}
	atomic.AddInt64(&l.publishCount, 1)
}

// publishObservability emits a single self-metrics record summarizing
// this alias's activity since the loop started. This is a supplemental
// stream the original profile schemas don't carry a drift type for.
func (l *eventLoop) publishObservability(ctx context.Context) {
	obs := entity.ObservabilityRecord{
		Identifier:   l.id,
		CreatedAt:    time.Now().UTC(),
		InsertCount:  atomic.LoadInt64(&l.insertCount),
		PublishCount: atomic.LoadInt64(&l.publishCount),
		DroppedCount: atomic.LoadInt64(&l.droppedCount),
	}
	batch := entity.NewServerRecords([]entity.Record{obs})

	pubCtx, cancel := context.WithTimeout(ctx, l.publishTimeout)
	defer cancel()

	if err := l.producer.Publish(pubCtx, batch); err != nil {
		eventLoopLog.Warn("observability publish failed", "alias", l.alias, "error", err)
	}
}
