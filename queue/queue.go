// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package queue wires profiles, feature queues, and a transport producer
// into a running ingestion engine: one event loop per registered alias,
// each owning its feature queue exclusively, feeding a shared producer
// (spec §4.1, §4.3).
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/demml/scouter-queue/featurequeue"
	"github.com/demml/scouter-queue/internal/otelx"
	"github.com/demml/scouter-queue/profile"
	"github.com/demml/scouter-queue/transport"
	"github.com/sourcegraph/conc/pool"
)

var queueLog = otelx.Logger("github.com/demml/scouter-queue/queue")

// ScouterQueue owns a set of per-alias event loops, a shared transport
// producer, and the goroutine pool that runs them.
type ScouterQueue struct {
	producer transport.Producer
	pool     *pool.ContextPool
	cancel   context.CancelFunc

	mu      sync.Mutex
	buses   map[string]*QueueBus
	tasks   map[string]*taskState
	closed  bool
}

// Options configures [FromPath].
type Options struct {
	backgroundTick time.Duration
	capacity       int
}

// Option customizes queue construction.
type Option func(*Options)

// WithBackgroundTick overrides [DefaultBackgroundTick] for every
// registered alias.
func WithBackgroundTick(d time.Duration) Option {
	return func(o *Options) { o.backgroundTick = d }
}

// WithQueueCapacity overrides [featurequeue.DefaultCapacity] for every
// registered alias.
func WithQueueCapacity(n int) Option {
	return func(o *Options) { o.capacity = n }
}

// FromPath loads one profile per entry in paths (alias -> profile file
// path), builds its feature queue and event loop, and starts the whole
// set running against producer. If any profile fails to load or build,
// construction fails as a whole rather than starting partially (spec §7
// kind 3).
func FromPath(ctx context.Context, paths map[string]string, producer transport.Producer, opts ...Option) (*ScouterQueue, error) {
	o := &Options{backgroundTick: DefaultBackgroundTick, capacity: featurequeue.DefaultCapacity}
	for _, opt := range opts {
		opt(o)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	q := &ScouterQueue{
		producer: producer,
		pool:     pool.New().WithContext(runCtx),
		cancel:   cancel,
		buses:    make(map[string]*QueueBus),
		tasks:    make(map[string]*taskState),
	}

	for alias, path := range paths {
		p, err := profile.FromPath(path)
		if err != nil {
			cancel()
			return nil, &StartupError{Alias: alias, Err: err}
		}

		fq, err := featurequeue.New(p, featurequeue.WithCapacity(o.capacity))
		if err != nil {
			cancel()
			return nil, &StartupError{Alias: alias, Err: err}
		}

		loopCtx, loopCancel := context.WithCancel(runCtx)
		state := newTaskState(loopCancel)
		loop := newEventLoop(alias, p.ID(), fq, producer, o.backgroundTick)

		bus := &QueueBus{alias: alias, queue: loop.inserts}
		q.buses[alias] = bus
		q.tasks[alias] = state

		q.pool.Go(func(context.Context) error {
			loop.run(loopCtx, state)
			return nil
		})

		queueLog.Info("registered feature queue", "alias", alias, "drift_type", p.DriftType())
	}

	return q, nil
}

// Get returns the insert handle registered under alias.
func (q *ScouterQueue) Get(alias string) (*QueueBus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	bus, ok := q.buses[alias]
	if !ok {
		return nil, &UnknownAlias{Alias: alias}
	}
	return bus, nil
}

// Shutdown cancels every event loop, waits for each to drain its pending
// records and exit, then closes the shared producer. It is idempotent
// (P5): calling it more than once is a no-op after the first call
// completes.
func (q *ScouterQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	tasks := make(map[string]*taskState, len(q.tasks))
	for alias, t := range q.tasks {
		tasks[alias] = t
	}
	q.mu.Unlock()

	var timedOut []string
	for alias, t := range tasks {
		if err := t.stop(ctx); err != nil {
			timedOut = append(timedOut, alias)
		}
	}

	q.cancel()
	_ = q.pool.Wait()

	if err := q.producer.Shutdown(ctx); err != nil {
		queueLog.Warn("producer shutdown failed", "error", err)
	}

	if len(timedOut) > 0 {
		return &ShutdownTimeout{Aliases: timedOut}
	}
	return nil
}
