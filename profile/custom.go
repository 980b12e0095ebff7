// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package profile

import (
	"encoding/json"
	"fmt"
)

// MetricSchema declares one custom metric name and its optional alerting
// metadata. The ingestion engine only uses Name; AlertThreshold is carried
// through for the (out-of-scope) drift detection scheduler.
type MetricSchema struct {
	Name           string   `json:"name"`
	AlertThreshold *float64 `json:"alert_threshold,omitempty"`
}

// CustomMetricProfile is the immutable schema for client-aggregated scalar
// metrics, such as request latency.
type CustomMetricProfile struct {
	id                Identifier
	scouterVersion    string
	featuresToMonitor []string
	metrics           map[string]MetricSchema
}

func newCustomMetricProfile(env fileEnvelope) (*CustomMetricProfile, error) {
	var declared []MetricSchema
	if len(env.Metrics) > 0 {
		if err := json.Unmarshal(env.Metrics, &declared); err != nil {
			return nil, fmt.Errorf("custom: %w", err)
		}
	}
	if len(declared) == 0 {
		return nil, fmt.Errorf("custom: profile declares no metrics")
	}

	metrics := make(map[string]MetricSchema, len(declared))
	names := make([]string, 0, len(declared))
	for _, m := range declared {
		if m.Name == "" {
			return nil, fmt.Errorf("custom: metric with empty name")
		}
		metrics[m.Name] = m
		names = append(names, m.Name)
	}

	return &CustomMetricProfile{
		id:                env.Config.Identifier,
		scouterVersion:    env.ScouterVersion,
		featuresToMonitor: names,
		metrics:           metrics,
	}, nil
}

func (p *CustomMetricProfile) ID() Identifier              { return p.id }
func (p *CustomMetricProfile) DriftType() DriftType        { return DriftTypeCustom }
func (p *CustomMetricProfile) EntityType() EntityType      { return EntityTypeMetrics }
func (p *CustomMetricProfile) ScouterVersion() string      { return p.scouterVersion }
func (p *CustomMetricProfile) FeaturesToMonitor() []string { return p.featuresToMonitor }

// Metric returns the schema for name and whether it is declared.
func (p *CustomMetricProfile) Metric(name string) (MetricSchema, bool) {
	m, ok := p.metrics[name]
	return m, ok
}
