// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/demml/scouter-queue/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureValueCoercion(t *testing.T) {
	f := IntFeature("a", 3)
	v, ok := f.Float()
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	s := StringFeature("cat", "red")
	_, ok = s.Float()
	assert.False(t, ok)
	str, ok := s.String()
	require.True(t, ok)
	assert.Equal(t, "red", str)
}

func TestServerRecordsMarshal(t *testing.T) {
	id := profile.Identifier{Space: "s", Name: "n", Version: "1"}
	records := ServerRecords{
		Type: RecordTypeSpc,
		Records: []Record{
			SpcRecord{Identifier: id, CreatedAt: time.Unix(0, 0).UTC(), Feature: "a", Value: 2.0},
		},
	}

	data, err := json.Marshal(records)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "spc", decoded["record_type"])
	assert.Len(t, decoded["records"], 1)
}

func TestNewServerRecordsPanicsOnMixedTypes(t *testing.T) {
	id := profile.Identifier{}
	assert.Panics(t, func() {
		NewServerRecords([]Record{
			SpcRecord{Identifier: id},
			CustomMetricRecord{Identifier: id},
		})
	})
}

func TestEntityTypeTags(t *testing.T) {
	assert.Equal(t, profile.EntityTypeFeatures, Features{}.EntityType())
	assert.Equal(t, profile.EntityTypeMetrics, Metrics{}.EntityType())
	assert.Equal(t, profile.EntityTypeLLM, LLMRecord{}.EntityType())
}

func TestNewLLMRecordMintsUIDWhenEmpty(t *testing.T) {
	ts := time.Now().UTC()
	rec := NewLLMRecord("", ts, json.RawMessage(`{}`), nil, nil)
	assert.NotEmpty(t, rec.UID)
	assert.Equal(t, ts, rec.Timestamp)

	other := NewLLMRecord("", ts, json.RawMessage(`{}`), nil, nil)
	assert.NotEqual(t, rec.UID, other.UID)
}

func TestNewLLMRecordKeepsCallerSuppliedUID(t *testing.T) {
	rec := NewLLMRecord("caller-uid", time.Time{}, nil, nil, nil)
	assert.Equal(t, "caller-uid", rec.UID)
}
