/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"medisnap.dev/medisnap/agents/generation/retry"
	"medisnap.dev/medisnap/agents/metrics"
)

// Option is a functional option for configuring an Orchestrator
type Option func(*Orchestrator) error

// WithModel sets the Gemini model that drives the conversation.
func WithModel(model string) Option {
	return func(o *Orchestrator) error {
		if !strings.HasPrefix(model, "gemini-") {
			return fmt.Errorf("model %q does not appear to be a Gemini model (expected gemini-* format)", model)
		}
		o.model = model
		return nil
	}
}

// WithTemperature sets the temperature for generation
// Gemini models support temperature values from 0.0 to 2.0
func WithTemperature(temperature float32) Option {
	return func(o *Orchestrator) error {
		if temperature < 0.0 || temperature > 2.0 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", temperature)
		}
		o.temperature = temperature
		return nil
	}
}

// WithMaxTurns bounds the number of model responses in one Run.
func WithMaxTurns(turns int) Option {
	return func(o *Orchestrator) error {
		if turns <= 0 {
			return fmt.Errorf("max turns must be positive, got %d", turns)
		}
		o.maxTurns = turns
		return nil
	}
}

// WithSystemInstruction replaces the default system instruction.
func WithSystemInstruction(instruction string) Option {
	return func(o *Orchestrator) error {
		if strings.TrimSpace(instruction) == "" {
			return errors.New("system instruction cannot be empty")
		}
		o.systemInstruction = instruction
		return nil
	}
}

// WithRetryConfig sets the retry configuration for transient Gemini errors.
func WithRetryConfig(cfg retry.Config) Option {
	return func(o *Orchestrator) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid retry config: %w", err)
		}
		o.retryConfig = cfg
		return nil
	}
}

// WithAttributeEnricher sets a custom attribute enricher for generation metrics.
func WithAttributeEnricher(enricher metrics.AttributeEnricher) Option {
	return func(o *Orchestrator) error {
		o.metrics.SetAttributeEnricher(enricher)
		return nil
	}
}
