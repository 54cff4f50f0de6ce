/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleprovider

import (
	"fmt"
	"strings"

	"medisnap.dev/medisnap/agents/generation/retry"
	"medisnap.dev/medisnap/agents/metrics"
)

// Option is a functional option for configuring a Provider
type Option func(*Provider) error

// WithModel sets the model to use for generation
func WithModel(model string) Option {
	return func(p *Provider) error {
		if !strings.HasPrefix(model, "gemini-") {
			return fmt.Errorf("model %q does not appear to be a Gemini model (expected gemini-* format)", model)
		}
		p.model = model
		return nil
	}
}

// WithTemperature sets the temperature for generation. Gemini accepts 0.0 to 2.0.
func WithTemperature(temperature float32) Option {
	return func(p *Provider) error {
		if temperature < 0.0 || temperature > 2.0 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", temperature)
		}
		p.temperature = temperature
		return nil
	}
}

// WithMaxOutputTokens sets the maximum output tokens for generation
func WithMaxOutputTokens(tokens int32) Option {
	return func(p *Provider) error {
		if tokens <= 0 {
			return fmt.Errorf("max output tokens must be positive, got %d", tokens)
		}
		if tokens > 32768 {
			return fmt.Errorf("max output tokens %d exceeds maximum of 32768", tokens)
		}
		p.maxOutputTokens = tokens
		return nil
	}
}

// WithSystemInstruction sets the system instruction sent with every task.
func WithSystemInstruction(text string) Option {
	return func(p *Provider) error {
		p.systemInstruction = strings.TrimSpace(text)
		return nil
	}
}

// WithRetryConfig replaces the retry configuration for transient errors.
func WithRetryConfig(cfg retry.Config) Option {
	return func(p *Provider) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid retry config: %w", err)
		}
		p.retryConfig = cfg
		return nil
	}
}

// WithAttributeEnricher sets a custom attribute enricher for metrics.
func WithAttributeEnricher(enricher metrics.AttributeEnricher) Option {
	return func(p *Provider) error {
		p.metrics.SetAttributeEnricher(enricher)
		return nil
	}
}
