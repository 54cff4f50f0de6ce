/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeprovider

import (
	"fmt"
	"strings"

	"medisnap.dev/medisnap/agents/generation/retry"
	"medisnap.dev/medisnap/agents/metrics"
)

// Option is a functional option for configuring a Provider
type Option func(*Provider) error

// WithModel allows overriding the model name
func WithModel(model string) Option {
	return func(p *Provider) error {
		if !strings.HasPrefix(model, "claude-") {
			return fmt.Errorf("model %q does not appear to be a Claude model (expected claude-* format)", model)
		}
		p.model = model
		return nil
	}
}

// WithMaxTokens sets the maximum tokens for responses
func WithMaxTokens(tokens int64) Option {
	return func(p *Provider) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		if tokens > 32000 {
			return fmt.Errorf("max tokens %d exceeds maximum of 32000", tokens)
		}
		p.maxTokens = tokens
		return nil
	}
}

// WithTemperature sets the temperature for responses. Claude accepts 0.0 to 1.0.
func WithTemperature(temp float64) Option {
	return func(p *Provider) error {
		if temp < 0.0 || temp > 1.0 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0, got %f", temp)
		}
		p.temperature = temp
		return nil
	}
}

// WithSystemInstruction sets the system prompt sent with every task.
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
