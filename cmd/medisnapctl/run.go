/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"medisnap.dev/medisnap/agents/agenttrace"
	"medisnap.dev/medisnap/agents/generation/backend"
	"medisnap.dev/medisnap/agents/patientctx"
	"medisnap.dev/medisnap/agents/toolreport"
	"medisnap.dev/medisnap/agents/toolresult"
	"medisnap.dev/medisnap/agents/tools"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [tool...]",
		Short: "Run tools against a patient record file",
		Long: `Run opens a patient scope for the record in --patient and invokes each named tool,
or every tool when none is named, concurrently. The generation backend is configured from
the same environment variables as the server (PROVIDER, GOOGLE_API_KEY, GCP_PROJECT_ID, ...).`,
		RunE: runTools,
	}
	cmd.Flags().StringP("patient", "p", "", "Patient record as a JSON file (required)")
	cmd.Flags().StringP("query", "q", "", "Query passed to every tool")
	cmd.Flags().Duration("timeout", 2*time.Minute, "Timeout of each provider call")
	cmd.Flags().Int("parallel", 4, "Maximum tools running at once")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func runTools(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path, _ := cmd.Flags().GetString("patient")
	query, _ := cmd.Flags().GetString("query")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	parallel, _ := cmd.Flags().GetInt("parallel")

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading patient record: %w", err)
	}
	patient, err := patientctx.Decode(raw)
	if err != nil {
		return err
	}

	var cfg backend.Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}
	clients, err := backend.New(ctx, cfg, nil)
	if err != nil {
		return err
	}
	catalog, err := tools.New(clients.Provider, tools.WithGenerationTimeout(timeout))
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		for _, d := range catalog.Definitions() {
			names = append(names, d.Name)
		}
	}

	collector := toolreport.NewCollector(nil)
	ctx = agenttrace.WithTracer(ctx, collector)
	ctx, h := patientctx.Open(ctx, patient)
	defer func() { _ = patientctx.Close(h) }()

	var mu sync.Mutex
	results := make(map[string]toolresult.Result, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, name := range names {
		g.Go(func() error {
			res, err := catalog.Invoke(ctx, name, query)
			if err != nil {
				return err
			}
			mu.Lock()
			results[name] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, toolreport.Markdown(collector.Stats()))
	return nil
}
