// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package entity defines the insert entities accepted on the hot request
// path and the backend records the ingestion engine ships to a transport.
package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/demml/scouter-queue/profile"
	"github.com/google/uuid"
)

// Insert is the tagged-variant contract every value sent to
// [queue.QueueBus.Insert] must satisfy. A profile accepts exactly one
// EntityType; a feature queue reports a mismatch as
// [ErrEntityTypeMismatch] rather than panicking.
type Insert interface {
	EntityType() profile.EntityType
}

// ValueKind tags the dynamic type carried by a [Feature].
type ValueKind int

const (
	ValueKindInt ValueKind = iota
	ValueKindFloat
	ValueKindString
)

// Feature is one named observation from a request. Value holds an int64,
// float64, or string depending on Kind; categorical (string) values are
// resolved to numeric codes downstream via a profile's FeatureMap.
type Feature struct {
	Name  string
	Kind  ValueKind
	Value any
}

// IntFeature constructs an integer-valued feature observation.
func IntFeature(name string, v int64) Feature {
	return Feature{Name: name, Kind: ValueKindInt, Value: v}
}

// FloatFeature constructs a float-valued feature observation.
func FloatFeature(name string, v float64) Feature {
	return Feature{Name: name, Kind: ValueKindFloat, Value: v}
}

// StringFeature constructs a categorical feature observation.
func StringFeature(name string, v string) Feature {
	return Feature{Name: name, Kind: ValueKindString, Value: v}
}

// Float returns the feature's value coerced to float64. ok is false when
// the value isn't numeric or (for strings) isn't resolvable without a
// FeatureMap lookup, which callers must do themselves beforehand.
func (f Feature) Float() (float64, bool) {
	switch f.Kind {
	case ValueKindFloat:
		return f.Value.(float64), true
	case ValueKindInt:
		return float64(f.Value.(int64)), true
	default:
		return 0, false
	}
}

// String returns the feature's string value, if it has one.
func (f Feature) String() (string, bool) {
	if f.Kind != ValueKindString {
		return "", false
	}
	return f.Value.(string), true
}

// Features is an insert carrying feature observations, accepted by SPC and
// PSI profiles.
type Features struct {
	Values []Feature
}

func (Features) EntityType() profile.EntityType { return profile.EntityTypeFeatures }

// Metric is one named scalar observation, e.g. a request-latency sample.
type Metric struct {
	Name  string
	Value float64
}

// Metrics is an insert carrying metric observations, accepted by
// custom-metric profiles.
type Metrics struct {
	Values []Metric
}

func (Metrics) EntityType() profile.EntityType { return profile.EntityTypeMetrics }

// LLMRecord is the opaque evaluation-context payload recorded for
// server-side LLM-as-judge evaluation.
type LLMRecord struct {
	UID       string
	Timestamp time.Time
	Context   json.RawMessage
	Prompt    json.RawMessage
	Score     json.RawMessage
}

func (LLMRecord) EntityType() profile.EntityType { return profile.EntityTypeLLM }

// NewLLMRecord builds an LLMRecord, minting a UID via uuid.NewString()
// when the caller doesn't supply one. This mirrors Scouter's own
// record-id assignment: callers on the hot path usually don't carry a
// pre-existing UID for an evaluation record, so the constructor takes
// care of it rather than pushing uuid generation onto every call site.
func NewLLMRecord(uid string, ts time.Time, context, prompt, score json.RawMessage) LLMRecord {
	if uid == "" {
		uid = uuid.NewString()
	}
	return LLMRecord{
		UID:       uid,
		Timestamp: ts,
		Context:   context,
		Prompt:    prompt,
		Score:     score,
	}
}

// ErrEntityTypeMismatch is returned by a feature queue's Insert when the
// entity's type doesn't match the profile it was built from.
var ErrEntityTypeMismatch = fmt.Errorf("entity: entity_type does not match profile")
