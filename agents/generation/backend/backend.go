/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package backend builds the generation clients a binary needs from environment
// configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/compute/metadata"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/vertex"
	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"

	"medisnap.dev/medisnap/agents/generation"
	"medisnap.dev/medisnap/agents/generation/claudeprovider"
	"medisnap.dev/medisnap/agents/generation/googleprovider"
	"medisnap.dev/medisnap/agents/metrics"
)

// Providers understood by New.
const (
	Gemini = "gemini"
	Claude = "claude"
)

// Config selects and configures the generation backend. It is meant to be embedded in a
// binary's envconfig struct.
type Config struct {
	// Provider selects the backend of the clinical tools: gemini or claude.
	Provider string `env:"PROVIDER,default=gemini"`
	// GCPProjectID and GCPRegion address Vertex AI. On Google Cloud they default to the
	// project and region of the metadata server.
	GCPProjectID string `env:"GCP_PROJECT_ID"`
	GCPRegion    string `env:"GCP_REGION"`
	// GoogleAPIKey selects the Gemini API instead of Vertex AI.
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL,default=gemini-2.5-flash"`
	ClaudeModel  string `env:"CLAUDE_MODEL,default=claude-sonnet-4@20250514"`
}

// Clients are the constructed backends. GenAI is always set since the orchestrator runs
// on Gemini whichever provider serves the tools.
type Clients struct {
	GenAI    *genai.Client
	Provider generation.Provider
}

// New resolves cfg against the metadata server where needed and builds the clients.
func New(ctx context.Context, cfg Config, enricher metrics.AttributeEnricher) (*Clients, error) {
	if cfg.Provider != Gemini && cfg.Provider != Claude {
		return nil, fmt.Errorf("unknown provider %q (expected %s or %s)", cfg.Provider, Gemini, Claude)
	}
	if err := resolve(ctx, &cfg); err != nil {
		return nil, err
	}

	gc, err := newGenAIClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var provider generation.Provider
	switch cfg.Provider {
	case Gemini:
		provider, err = googleprovider.New(gc,
			googleprovider.WithModel(cfg.GeminiModel),
			googleprovider.WithAttributeEnricher(enricher),
		)
		if err != nil {
			return nil, fmt.Errorf("creating Gemini provider: %w", err)
		}
	case Claude:
		if cfg.GCPProjectID == "" {
			return nil, errors.New("GCP_PROJECT_ID is required for the claude provider")
		}
		client := anthropic.NewClient(
			vertex.WithGoogleAuth(ctx, cfg.GCPRegion, cfg.GCPProjectID),
		)
		provider, err = claudeprovider.New(client,
			claudeprovider.WithModel(cfg.ClaudeModel),
			claudeprovider.WithAttributeEnricher(enricher),
		)
		if err != nil {
			return nil, fmt.Errorf("creating Claude provider: %w", err)
		}
	}
	return &Clients{GenAI: gc, Provider: provider}, nil
}

// resolve fills the Vertex AI project and region from the metadata server when running
// on Google Cloud without an API key.
func resolve(ctx context.Context, cfg *Config) error {
	if cfg.GoogleAPIKey != "" && cfg.Provider == Gemini {
		return nil
	}
	if cfg.GCPProjectID != "" && cfg.GCPRegion != "" {
		return nil
	}
	if !metadata.OnGCE() {
		if cfg.GCPRegion == "" {
			cfg.GCPRegion = "us-central1"
		}
		return nil
	}

	log := clog.FromContext(ctx)
	if cfg.GCPProjectID == "" {
		projectID, err := metadata.ProjectIDWithContext(ctx)
		if err != nil {
			return fmt.Errorf("detecting project ID: %w", err)
		}
		cfg.GCPProjectID = projectID
		log.With("project_id", projectID).Info("Detected Google Cloud project")
	}
	if cfg.GCPRegion == "" {
		zone, err := metadata.ZoneWithContext(ctx)
		if err != nil {
			return fmt.Errorf("detecting zone: %w", err)
		}
		cfg.GCPRegion = regionOf(zone)
		log.With("region", cfg.GCPRegion).Info("Detected Google Cloud region")
	}
	return nil
}

// regionOf turns a zone such as "us-central1-a" into its region.
func regionOf(zone string) string {
	if i := strings.LastIndex(zone, "-"); i > 0 {
		return zone[:i]
	}
	return zone
}

// newGenAIClient targets the Gemini API when an API key is configured and Vertex AI
// otherwise.
func newGenAIClient(ctx context.Context, cfg Config) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		Project:  cfg.GCPProjectID,
		Location: cfg.GCPRegion,
		Backend:  genai.BackendVertexAI,
	}
	if cfg.GoogleAPIKey != "" {
		cc = &genai.ClientConfig{
			APIKey:  cfg.GoogleAPIKey,
			Backend: genai.BackendGeminiAPI,
		}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Google AI client: %w", err)
	}
	return client, nil
}
