/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleprovider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"

	"medisnap.dev/medisnap/agents/agenttrace"
	"medisnap.dev/medisnap/agents/clinicalschema"
	"medisnap.dev/medisnap/agents/generation"
	"medisnap.dev/medisnap/agents/generation/retry"
	"medisnap.dev/medisnap/agents/metrics"
)

// Provider generates structured output with Gemini.
type Provider struct {
	client            *genai.Client
	model             string
	temperature       float32
	maxOutputTokens   int32
	systemInstruction string
	retryConfig       retry.Config
	metrics           *metrics.Generation
}

var _ generation.Provider = (*Provider)(nil)

// New creates a Gemini provider.
func New(client *genai.Client, opts ...Option) (*Provider, error) {
	if client == nil {
		return nil, errors.New("genai client is required")
	}
	p := &Provider{
		client:          client,
		model:           "gemini-2.5-flash",
		temperature:     0.2,
		maxOutputTokens: 8192,
		retryConfig:     retry.Default(),
		metrics:         metrics.NewGeneration(metrics.MeterName),
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

// Generate implements generation.Provider. The descriptor's schema is sent as the
// response schema so Gemini decodes straight into the expected shape.
func (p *Provider) Generate(ctx context.Context, task string, d *clinicalschema.Descriptor) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      ptr(p.temperature),
		MaxOutputTokens:  p.maxOutputTokens,
		ResponseMIMEType: "application/json",
	}
	if d != nil {
		config.ResponseSchema = d.GenAISchema()
	}
	if p.systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: p.systemInstruction}},
		}
	}

	log := clog.FromContext(ctx).With("model", p.model)
	if d != nil {
		log = log.With("category", string(d.Category))
	}
	log.Debug("Generating structured output")

	resp, err := retry.Do(ctx, p.retryConfig, "generate_content", IsTransient, func() (*genai.GenerateContentResponse, error) {
		return p.client.Models.GenerateContent(ctx, p.model, genai.Text(task), config)
	})
	p.metrics.RecordCall(ctx, p.model, err)
	if err != nil {
		return "", fmt.Errorf("generating with %s: %w", p.model, err)
	}
	if u := resp.UsageMetadata; u != nil {
		p.metrics.RecordTokens(ctx, p.model, int64(u.PromptTokenCount), int64(u.CandidatesTokenCount))
		agenttrace.RecordTokenUsage(ctx, p.model, int64(u.PromptTokenCount), int64(u.CandidatesTokenCount))
	}

	text, err := responseText(resp)
	if err != nil {
		log.With("error", err).Warn("Gemini returned no usable text")
		return "", err
	}
	return text, nil
}

// responseText joins the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", generation.ErrEmptyResponse)
	}
	c := resp.Candidates[0]
	if c.Content == nil {
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrEmptyResponse, c.FinishReason)
	}
	var sb strings.Builder
	for _, part := range c.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrEmptyResponse, c.FinishReason)
	}
	return sb.String(), nil
}

func ptr[T any](v T) *T {
	return &v
}
