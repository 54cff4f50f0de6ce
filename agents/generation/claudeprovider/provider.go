/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeprovider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"

	"medisnap.dev/medisnap/agents/agenttrace"
	"medisnap.dev/medisnap/agents/clinicalschema"
	"medisnap.dev/medisnap/agents/generation"
	"medisnap.dev/medisnap/agents/generation/retry"
	"medisnap.dev/medisnap/agents/metrics"
	"medisnap.dev/medisnap/agents/taskprompt"
)

// Claude has no response-schema parameter, so the schema travels in the prompt.
var structuredTask = taskprompt.MustNew(`{{task}}

Respond with a single JSON object and nothing else. The object must match this JSON schema:
{{schema}}`)

// Provider generates structured output with Claude.
type Provider struct {
	client            anthropic.Client
	model             string
	maxTokens         int64
	temperature       float64
	systemInstruction string
	retryConfig       retry.Config
	metrics           *metrics.Generation
}

var _ generation.Provider = (*Provider)(nil)

// New creates a Claude provider. On Vertex AI, build the client with
// anthropic.NewClient(vertex.WithGoogleAuth(ctx, region, projectID)).
func New(client anthropic.Client, opts ...Option) (*Provider, error) {
	p := &Provider{
		client:      client,
		model:       "claude-sonnet-4@20250514",
		maxTokens:   8192,
		temperature: 0.2,
		retryConfig: retry.Default(),
		metrics:     metrics.NewGeneration(metrics.MeterName),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return p, nil
}

// Model returns the configured model name.
func (p *Provider) Model() string {
	return p.model
}

// Generate implements generation.Provider.
func (p *Provider) Generate(ctx context.Context, task string, d *clinicalschema.Descriptor) (string, error) {
	prompt := task
	if d != nil {
		var err error
		prompt, err = structuredTask.Render(
			taskprompt.Text("task", task),
			taskprompt.Text("schema", string(d.SchemaJSON())),
		)
		if err != nil {
			return "", fmt.Errorf("building prompt: %w", err)
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)},
		}},
		Temperature: anthropic.Float(p.temperature),
	}
	if p.systemInstruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.systemInstruction}}
	}

	log := clog.FromContext(ctx).With("model", p.model)
	log.Debug("Generating structured output")

	msg, err := retry.Do(ctx, p.retryConfig, "create_message", isRetryableClaudeError, func() (*anthropic.Message, error) {
		return p.client.Messages.New(ctx, params)
	})
	p.metrics.RecordCall(ctx, p.model, err)
	if err != nil {
		return "", fmt.Errorf("generating with %s: %w", p.model, err)
	}
	if msg.Usage.InputTokens > 0 || msg.Usage.OutputTokens > 0 {
		p.metrics.RecordTokens(ctx, p.model, msg.Usage.InputTokens, msg.Usage.OutputTokens)
		agenttrace.RecordTokenUsage(ctx, p.model, msg.Usage.InputTokens, msg.Usage.OutputTokens)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		log.With("stop_reason", string(msg.StopReason)).Warn("Claude returned no text")
		return "", fmt.Errorf("%w: stop reason %s", generation.ErrEmptyResponse, msg.StopReason)
	}
	return sb.String(), nil
}

// isRetryableClaudeError checks if an error is a retryable Claude API error.
// Returns true for rate limit, overloaded, and transient server errors.
func isRetryableClaudeError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 503, 504, 529:
			return true
		}
	}
	return false
}
