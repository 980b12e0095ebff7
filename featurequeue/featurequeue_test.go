// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package featurequeue

import (
	"testing"

	"github.com/demml/scouter-queue/entity"
	"github.com/demml/scouter-queue/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProfile(t *testing.T, data string) profile.Profile {
	t.Helper()
	p, err := profile.FromBytes("", []byte(data))
	require.NoError(t, err)
	return p
}

func TestSPCSampleWindow(t *testing.T) {
	p := mustProfile(t, `{
		"config": {"space": "s", "name": "n", "version": "1", "drift_type": "spc"},
		"scouter_version": "0.1.0",
		"features": {"features": {
			"a": {"center": 2, "one_ucl": 3, "one_lcl": 1, "two_ucl": 4, "two_lcl": 0, "three_ucl": 5, "three_lcl": -1, "sample_size": 3},
			"b": {"center": 20, "one_ucl": 30, "one_lcl": 10, "two_ucl": 40, "two_lcl": 0, "three_ucl": 50, "three_lcl": -10, "sample_size": 3}
		}}
	}`)

	q, err := New(p)
	require.NoError(t, err)

	inserts := []entity.Features{
		{Values: []entity.Feature{entity.FloatFeature("a", 1), entity.FloatFeature("b", 10)}},
		{Values: []entity.Feature{entity.FloatFeature("a", 2), entity.FloatFeature("b", 20)}},
		{Values: []entity.Feature{entity.FloatFeature("a", 3), entity.FloatFeature("b", 30)}},
	}

	var outcome InsertOutcome
	for _, ins := range inserts {
		outcome, err = q.Insert(ins)
		require.NoError(t, err)
	}
	assert.Equal(t, AcceptedAndFull, outcome)

	records := q.Drain()
	require.Len(t, records.Records, 2)
	byFeature := map[string]float64{}
	for _, r := range records.Records {
		spc := r.(entity.SpcRecord)
		byFeature[spc.Feature] = spc.Value
	}
	assert.Equal(t, 2.0, byFeature["a"])
	assert.Equal(t, 20.0, byFeature["b"])
	assert.True(t, q.IsEmpty())
}

func TestPSICapacityFlush(t *testing.T) {
	p := mustProfile(t, `{
		"config": {"space": "s", "name": "n", "version": "1", "drift_type": "psi"},
		"scouter_version": "0.1.0",
		"features": {"features": {
			"x": {"bin_type": "numeric", "bins": [
				{"id": 1, "upper_limit": 0, "proportion": 0.3},
				{"id": 2, "lower_limit": 0, "upper_limit": 10, "proportion": 0.4},
				{"id": 3, "lower_limit": 10, "proportion": 0.3}
			]}
		}}
	}`)

	q, err := New(p, WithCapacity(4))
	require.NoError(t, err)

	values := []float64{-1, 3, 15, 7}
	var outcome InsertOutcome
	for _, v := range values {
		outcome, err = q.Insert(entity.Features{Values: []entity.Feature{entity.FloatFeature("x", v)}})
		require.NoError(t, err)
	}
	assert.Equal(t, AcceptedAndFull, outcome)

	records := q.Drain()
	counts := map[int]int{}
	for _, r := range records.Records {
		psi := r.(entity.PsiRecord)
		counts[psi.BinID] = psi.BinCount
	}
	assert.Equal(t, map[int]int{1: 1, 2: 2, 3: 1}, counts)
}

func TestCustomMetricAveraging(t *testing.T) {
	p := mustProfile(t, `{
		"config": {"space": "s", "name": "n", "version": "1", "drift_type": "custom"},
		"scouter_version": "0.1.0",
		"metrics": [{"name": "latency_ms"}]
	}`)

	q, err := New(p, WithCapacity(3))
	require.NoError(t, err)

	var outcome InsertOutcome
	for _, v := range []float64{100, 200, 300} {
		outcome, err = q.Insert(entity.Metrics{Values: []entity.Metric{{Name: "latency_ms", Value: v}}})
		require.NoError(t, err)
	}
	assert.Equal(t, AcceptedAndFull, outcome)

	records := q.Drain()
	require.Len(t, records.Records, 1)
	assert.Equal(t, 200.0, records.Records[0].(entity.CustomMetricRecord).Value)
}

func TestEntityTypeMismatchIsReportedNotPanicked(t *testing.T) {
	p := mustProfile(t, `{
		"config": {"space": "s", "name": "n", "version": "1", "drift_type": "custom"},
		"scouter_version": "0.1.0",
		"metrics": [{"name": "latency_ms"}]
	}`)
	q, err := New(p)
	require.NoError(t, err)

	_, err = q.Insert(entity.Features{Values: []entity.Feature{entity.FloatFeature("a", 1)}})
	assert.ErrorIs(t, err, entity.ErrEntityTypeMismatch)
	assert.True(t, q.IsEmpty())
}

func TestPSIUnknownFeatureNameIsSkipped(t *testing.T) {
	p := mustProfile(t, `{
		"config": {"space": "s", "name": "n", "version": "1", "drift_type": "psi"},
		"scouter_version": "0.1.0",
		"features": {"features": {
			"x": {"bin_type": "numeric", "bins": [
				{"id": 1, "upper_limit": 0, "proportion": 0.5},
				{"id": 2, "lower_limit": 0, "proportion": 0.5}
			]}
		}}
	}`)
	q, err := New(p, WithCapacity(100))
	require.NoError(t, err)

	_, err = q.Insert(entity.Features{Values: []entity.Feature{entity.FloatFeature("unknown", 1)}})
	require.NoError(t, err)
	assert.True(t, q.IsEmpty())
}

func TestLLMQueueOneForOne(t *testing.T) {
	p := mustProfile(t, `{
		"config": {"space": "s", "name": "n", "version": "1", "drift_type": "llm"},
		"scouter_version": "0.1.0",
		"workflow": {"evaluators": []}
	}`)
	q, err := New(p, WithCapacity(2))
	require.NoError(t, err)

	_, err = q.Insert(entity.LLMRecord{UID: "1"})
	require.NoError(t, err)
	outcome, err := q.Insert(entity.LLMRecord{UID: "2"})
	require.NoError(t, err)
	assert.Equal(t, AcceptedAndFull, outcome)

	records := q.Drain()
	assert.Len(t, records.Records, 2)
	assert.True(t, q.IsEmpty())
}
