// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytesSPC(t *testing.T) {
	data := []byte(`{
		"config": {
			"space": "space1", "name": "model1", "version": "1.0.0",
			"drift_type": "spc"
		},
		"scouter_version": "0.1.0",
		"features": {
			"features": {
				"a": {"center": 10, "one_ucl": 11, "one_lcl": 9, "two_ucl": 12, "two_lcl": 8, "three_ucl": 13, "three_lcl": 7, "sample_size": 3, "sample": true}
			}
		}
	}`)

	p, err := FromBytes("", data)
	require.NoError(t, err)
	assert.Equal(t, DriftTypeSPC, p.DriftType())
	assert.Equal(t, EntityTypeFeatures, p.EntityType())
	assert.Equal(t, Identifier{Space: "space1", Name: "model1", Version: "1.0.0"}, p.ID())

	spc, ok := p.(*SPCProfile)
	require.True(t, ok)
	f, ok := spc.Feature("a")
	require.True(t, ok)
	assert.Equal(t, 3, f.SampleSize)
}

func TestSPCInvariantViolation(t *testing.T) {
	data := []byte(`{
		"config": {"space": "s", "name": "n", "version": "1", "drift_type": "spc"},
		"scouter_version": "0.1.0",
		"features": {"features": {"a": {"center": 10, "one_ucl": 9, "one_lcl": 9, "two_ucl": 12, "two_lcl": 8, "three_ucl": 13, "three_lcl": 7, "sample_size": 3}}}
	}`)

	_, err := FromBytes("", data)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestPSIResolveBin(t *testing.T) {
	lower := -10.0
	zero := 0.0
	ten := 10.0
	schema := PSIFeatureSchema{
		BinType: BinTypeNumeric,
		Bins: []Bin{
			{ID: 1, UpperLimit: &zero, Proportion: 0.3},
			{ID: 2, LowerLimit: &zero, UpperLimit: &ten, Proportion: 0.4},
			{ID: 3, LowerLimit: &ten, Proportion: 0.3},
		},
	}
	_ = lower

	cases := []struct {
		v    float64
		want int
	}{
		{-1, 1},
		{3, 2},
		{15, 3},
		{7, 2},
	}
	for _, c := range cases {
		bin, ok := schema.ResolveBin(c.v)
		require.True(t, ok)
		assert.Equal(t, c.want, bin.ID, "value %v", c.v)
	}
}

func TestPSIProportionsMustSumToOne(t *testing.T) {
	zero := 0.0
	schema := PSIFeatureSchema{
		BinType: BinTypeNumeric,
		Bins: []Bin{
			{ID: 1, UpperLimit: &zero, Proportion: 0.3},
			{ID: 2, LowerLimit: &zero, Proportion: 0.3},
		},
	}
	err := schema.validate("x")
	require.Error(t, err)
}

func TestFromBytesUnknownDriftType(t *testing.T) {
	data := []byte(`{"config": {"space": "s", "name": "n", "version": "1", "drift_type": "bogus"}}`)
	_, err := FromBytes("profile.json", data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile.json")
}

func TestCustomMetricProfile(t *testing.T) {
	data := []byte(`{
		"config": {"space": "s", "name": "n", "version": "1", "drift_type": "custom"},
		"scouter_version": "0.1.0",
		"metrics": [{"name": "latency_ms"}]
	}`)
	p, err := FromBytes("", data)
	require.NoError(t, err)
	assert.Equal(t, EntityTypeMetrics, p.EntityType())
	cm := p.(*CustomMetricProfile)
	_, ok := cm.Metric("latency_ms")
	assert.True(t, ok)
}

func TestLLMProfile(t *testing.T) {
	data := []byte(`{
		"config": {"space": "s", "name": "n", "version": "1", "drift_type": "llm"},
		"scouter_version": "0.1.0",
		"workflow": {"evaluators": [{"name": "toxicity", "prompt": "\"rate toxicity\""}]}
	}`)
	p, err := FromBytes("", data)
	require.NoError(t, err)
	assert.Equal(t, EntityTypeLLM, p.EntityType())
	llm := p.(*LLMProfile)
	assert.Len(t, llm.Workflow(), 1)
}
