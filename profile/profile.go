// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package profile implements the immutable drift-profile configuration and
// schema model consumed by the ingestion engine's feature queues.
//
// A [Profile] is loaded once from a JSON file at queue construction time and
// held by reference by the feature queue for that profile; the event loop
// keeps only its identifying triple. It is never mutated after construction.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
)

// DriftType tags which monitoring methodology a profile's schema describes.
type DriftType string

const (
	DriftTypeSPC    DriftType = "spc"
	DriftTypePSI    DriftType = "psi"
	DriftTypeCustom DriftType = "custom"
	DriftTypeLLM    DriftType = "llm"
)

// EntityType is the insert kind a profile's drift type accepts.
type EntityType string

const (
	EntityTypeFeatures EntityType = "features"
	EntityTypeMetrics  EntityType = "metrics"
	EntityTypeLLM      EntityType = "llm_record"
)

// Identifier is the (space, name, version) triple that uniquely identifies
// a profile and is stamped onto every record it produces.
type Identifier struct {
	Space   string `json:"space"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (id Identifier) String() string {
	return fmt.Sprintf("%s/%s/%s", id.Space, id.Name, id.Version)
}

// Profile is the common, read-only contract implemented by every drift-type
// specific schema (SPC, PSI, Custom, LLM).
type Profile interface {
	// ID returns the identifying triple.
	ID() Identifier
	// DriftType reports which monitoring methodology this profile describes.
	DriftType() DriftType
	// EntityType reports which insert entity kind this profile accepts.
	EntityType() EntityType
	// ScouterVersion is the version of the profiling toolkit that produced
	// this file. It is not interpreted by the ingestion engine.
	ScouterVersion() string
	// FeaturesToMonitor is the optional allow-list of feature/metric names.
	// A nil slice means "monitor everything in the schema".
	FeaturesToMonitor() []string
}

// fileEnvelope is the top-level JSON shape every profile file shares,
// per spec §6: {config, features | metrics | workflow, scouter_version}.
type fileEnvelope struct {
	Config struct {
		Identifier
		DriftType         DriftType       `json:"drift_type"`
		FeaturesToMonitor []string        `json:"features_to_monitor"`
		AlertConfig       json.RawMessage `json:"alert_config"`
	} `json:"config"`
	ScouterVersion string          `json:"scouter_version"`
	Features       json.RawMessage `json:"features"`
	Metrics        json.RawMessage `json:"metrics"`
	Workflow       json.RawMessage `json:"workflow"`
}

// FromPath reads and validates the drift profile file at path, returning a
// concrete [Profile] for whichever drift type it declares.
//
// Failures here are always [ConfigError] and are fatal to queue
// construction — there is no partial or lazy profile loading.
func FromPath(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return FromBytes(path, data)
}

// FromBytes parses a drift profile from raw JSON bytes. path is used only
// for error messages and may be empty.
func FromBytes(path string, data []byte) (Profile, error) {
	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("malformed profile json: %w", err)}
	}

	var p Profile
	var err error
	switch env.Config.DriftType {
	case DriftTypeSPC:
		p, err = newSPCProfile(env)
	case DriftTypePSI:
		p, err = newPSIProfile(env)
	case DriftTypeCustom:
		p, err = newCustomMetricProfile(env)
	case DriftTypeLLM:
		p, err = newLLMProfile(env)
	default:
		err = fmt.Errorf("unknown drift_type %q", env.Config.DriftType)
	}
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return p, nil
}
