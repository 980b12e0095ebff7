// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package profile

import (
	"encoding/json"
	"fmt"
)

// EvaluatorPrompt names one evaluator in an LLM evaluation workflow. Its
// prompt body is opaque to the ingestion engine — evaluation happens
// server-side.
type EvaluatorPrompt struct {
	Name   string          `json:"name"`
	Prompt json.RawMessage `json:"prompt"`
}

// LLMProfile is the immutable schema for LLM-as-judge monitoring. The
// ingestion engine only ever records and ships [entity.LLMRecord] context
// payloads; it never interprets Workflow.
type LLMProfile struct {
	id             Identifier
	scouterVersion string
	workflow       []EvaluatorPrompt
}

func newLLMProfile(env fileEnvelope) (*LLMProfile, error) {
	var body struct {
		Evaluators []EvaluatorPrompt `json:"evaluators"`
	}
	if len(env.Workflow) > 0 {
		if err := json.Unmarshal(env.Workflow, &body); err != nil {
			return nil, fmt.Errorf("llm: %w", err)
		}
	}

	return &LLMProfile{
		id:             env.Config.Identifier,
		scouterVersion: env.ScouterVersion,
		workflow:       body.Evaluators,
	}, nil
}

func (p *LLMProfile) ID() Identifier              { return p.id }
func (p *LLMProfile) DriftType() DriftType        { return DriftTypeLLM }
func (p *LLMProfile) EntityType() EntityType      { return EntityTypeLLM }
func (p *LLMProfile) ScouterVersion() string      { return p.scouterVersion }
func (p *LLMProfile) FeaturesToMonitor() []string { return nil }

// Workflow returns the evaluator prompts declared for this profile.
func (p *LLMProfile) Workflow() []EvaluatorPrompt {
	return p.workflow
}
