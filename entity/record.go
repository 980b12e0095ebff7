// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package entity

import (
	"encoding/json"
	"time"

	"github.com/demml/scouter-queue/profile"
)

// RecordType tags a batch of [Record] with the backend record shape its
// elements share.
type RecordType string

const (
	RecordTypeSpc           RecordType = "spc"
	RecordTypePsi           RecordType = "psi"
	RecordTypeCustomMetric  RecordType = "custom_metric"
	RecordTypeLLM           RecordType = "llm"
	RecordTypeObservability RecordType = "observability"
)

// Record is the tagged-variant contract every backend record satisfies.
// Every Record carries the identifying triple of the profile it came from
// and a UTC creation timestamp (P3).
type Record interface {
	RecordType() RecordType
}

// SpcRecord is one per-feature sample-window mean.
type SpcRecord struct {
	profile.Identifier
	CreatedAt time.Time `json:"created_at"`
	Feature   string    `json:"feature"`
	Value     float64   `json:"value"`
}

func (SpcRecord) RecordType() RecordType { return RecordTypeSpc }

// PsiRecord is one per-feature, per-bin count observed since the last
// publish.
type PsiRecord struct {
	profile.Identifier
	CreatedAt time.Time `json:"created_at"`
	Feature   string    `json:"feature"`
	BinID     int       `json:"bin_id"`
	BinCount  int       `json:"bin_count"`
}

func (PsiRecord) RecordType() RecordType { return RecordTypePsi }

// CustomMetricRecord is one metric's mean over the accumulation window.
type CustomMetricRecord struct {
	profile.Identifier
	CreatedAt time.Time `json:"created_at"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
}

func (CustomMetricRecord) RecordType() RecordType { return RecordTypeCustomMetric }

// LLMEvalRecord carries an opaque evaluation-context payload for
// server-side evaluation. It is distinct from the insert-side
// [LLMRecord]: this is the shipped wire form.
type LLMEvalRecord struct {
	profile.Identifier
	CreatedAt time.Time       `json:"created_at"`
	UID       string          `json:"uid"`
	Timestamp time.Time       `json:"timestamp"`
	Context   json.RawMessage `json:"context"`
	Prompt    json.RawMessage `json:"prompt,omitempty"`
	Score     json.RawMessage `json:"score,omitempty"`
}

func (LLMEvalRecord) RecordType() RecordType { return RecordTypeLLM }

// ObservabilityRecord summarizes the ingestion engine's own per-profile
// activity. Its counts are cumulative since the profile's event loop
// started; they are not reset between background ticks.
type ObservabilityRecord struct {
	profile.Identifier
	CreatedAt     time.Time `json:"created_at"`
	InsertCount   int64     `json:"insert_count"`
	PublishCount  int64     `json:"publish_count"`
	DroppedCount  int64     `json:"dropped_count"`
}

func (ObservabilityRecord) RecordType() RecordType { return RecordTypeObservability }

// ServerRecords is a homogeneous batch of [Record], the unit handed to a
// transport's Publish.
type ServerRecords struct {
	Type    RecordType
	Records []Record
}

// NewServerRecords builds a batch, inferring Type from the first record.
// An empty records slice yields an empty batch. Panics if records mixes
// record types — callers (feature queues) never mix types by construction.
func NewServerRecords(records []Record) ServerRecords {
	if len(records) == 0 {
		return ServerRecords{}
	}
	t := records[0].RecordType()
	for _, r := range records[1:] {
		if r.RecordType() != t {
			panic("entity: ServerRecords batch mixes record types")
		}
	}
	return ServerRecords{Type: t, Records: records}
}

// IsEmpty reports whether the batch has no records.
func (s ServerRecords) IsEmpty() bool {
	return len(s.Records) == 0
}

type serverRecordsWire struct {
	RecordType RecordType `json:"record_type"`
	Records    []Record   `json:"records"`
}

// MarshalJSON emits {record_type, records: [...]}.
func (s ServerRecords) MarshalJSON() ([]byte, error) {
	return json.Marshal(serverRecordsWire{RecordType: s.Type, Records: s.Records})
}
