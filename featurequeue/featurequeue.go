// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package featurequeue implements the per-profile state machines that fold
// raw inserts into backend records (spec §4.4). Every [FeatureQueue] is
// single-writer: only the event loop for its profile ever calls Insert or
// Drain, so none of the four variants need internal locking.
package featurequeue

import (
	"fmt"
	"time"

	"github.com/demml/scouter-queue/entity"
	"github.com/demml/scouter-queue/profile"
)

// DefaultCapacity is the default insert-count capacity threshold for
// variants that flush on count rather than sample completion (PSI,
// Custom, LLM). The canonical value in the Scouter corpus varies by deployment;
// this is documented here as the default per spec §9's first open
// question and can be overridden with [WithCapacity].
const DefaultCapacity = 1000

// InsertOutcome reports whether an Insert call caused the feature queue
// to cross its flush threshold.
type InsertOutcome int

const (
	// Accepted means the insert was folded in; no flush is needed yet.
	Accepted InsertOutcome = iota
	// AcceptedAndFull means the insert was folded in and the feature
	// queue has reached capacity — the caller (event loop) must publish.
	AcceptedAndFull
)

// FeatureQueue is the common contract implemented by all four drift-type
// variants (spec §4.4).
type FeatureQueue interface {
	// Insert folds one entity into the queue's running aggregation.
	Insert(entity.Insert) (InsertOutcome, error)
	// Drain atomically takes all pending records out of the queue as a
	// batch and resets internal accumulators.
	Drain() entity.ServerRecords
	// IsEmpty reports whether there is anything to flush.
	IsEmpty() bool
	// CapacityReached reports whether the queue has crossed its flush
	// threshold without requiring an Insert call.
	CapacityReached() bool
	// NeedsBackgroundTick reports whether this variant relies on the
	// 30-second background timer in addition to capacity (PSI, Custom
	// and LLM; SPC flushes purely on sample completion).
	NeedsBackgroundTick() bool
}

// Options configures a [FeatureQueue] at construction time.
type Options struct {
	capacity int
}

// Option customizes feature queue construction.
type Option func(*Options)

// WithCapacity overrides [DefaultCapacity] for PSI, Custom-metric and LLM
// queues.
func WithCapacity(n int) Option {
	return func(o *Options) {
		o.capacity = n
	}
}

// New builds the feature queue variant matching p's drift type.
func New(p profile.Profile, opts ...Option) (FeatureQueue, error) {
	o := &Options{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(o)
	}

	switch pt := p.(type) {
	case *profile.SPCProfile:
		return newSPCQueue(pt), nil
	case *profile.PSIProfile:
		return newPSIQueue(pt, o.capacity), nil
	case *profile.CustomMetricProfile:
		return newCustomMetricQueue(pt, o.capacity), nil
	case *profile.LLMProfile:
		return newLLMQueue(pt, o.capacity), nil
	default:
		return nil, fmt.Errorf("featurequeue: unsupported profile type %T", p)
	}
}

func monitoredFeatures(allowList, declared []string) []string {
	if len(allowList) > 0 {
		return allowList
	}
	return declared
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
