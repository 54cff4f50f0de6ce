/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs the medisnap clinical tool service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/chainguard-dev/terraform-infra-common/pkg/httpmetrics"
	"github.com/chainguard-dev/terraform-infra-common/pkg/profiler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"medisnap.dev/medisnap/agents/agenttrace"
	"medisnap.dev/medisnap/agents/generation/backend"
	"medisnap.dev/medisnap/agents/orchestrator"
	"medisnap.dev/medisnap/agents/tools"
	"medisnap.dev/medisnap/server"
)

type config struct {
	Port        int `env:"PORT,default=8080"`
	MetricsPort int `env:"METRICS_PORT,default=2112"`

	Backend backend.Config

	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT,default=60s"`
	MaxAgentTurns     int           `env:"MAX_AGENT_TURNS,default=10"`

	AppURL       string `env:"APP_URL,default=http://0.0.0.0:8080"`
	AgentVersion string `env:"AGENT_VERSION,default=0.1.0"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	profiler.SetupProfiler()
	defer httpmetrics.SetupTracer(ctx)()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	if err := run(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "server failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config) error {
	clients, err := backend.New(ctx, cfg.Backend, executionAttributes)
	if err != nil {
		return err
	}

	catalog, err := tools.New(clients.Provider,
		tools.WithGenerationTimeout(cfg.GenerationTimeout),
		tools.WithAttributeEnricher(executionAttributes),
	)
	if err != nil {
		return fmt.Errorf("creating tool catalog: %w", err)
	}

	orch, err := orchestrator.New(clients.GenAI, catalog,
		orchestrator.WithModel(cfg.Backend.GeminiModel),
		orchestrator.WithMaxTurns(cfg.MaxAgentTurns),
		orchestrator.WithAttributeEnricher(executionAttributes),
	)
	if err != nil {
		return fmt.Errorf("creating orchestrator: %w", err)
	}

	srv, err := server.New(catalog,
		server.WithChat(orch),
		server.WithAgentCard(server.AgentCard{
			Name:         "medisnap",
			Description:  "Clinical decision support agent that analyzes the current patient with specialist tools.",
			Version:      cfg.AgentVersion,
			URL:          cfg.AppURL,
			Capabilities: server.Capabilities{Streaming: false},
		}),
	)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	api := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpmetrics.Handler("medisnap", srv.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, s := range []*http.Server{api, metricsSrv} {
		g.Go(func() error {
			clog.InfoContextf(ctx, "Listening on %s", s.Addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving %s: %w", s.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return errors.Join(api.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})
	return g.Wait()
}

// executionAttributes adds the request surface and orchestrator turn to every metric.
func executionAttributes(ctx context.Context, attrs []attribute.KeyValue) []attribute.KeyValue {
	return agenttrace.GetExecutionContext(ctx).EnrichAttributes(attrs)
}
