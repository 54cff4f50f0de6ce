/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main is the medisnap command line. It lists the clinical tools and their
// result schemas, validates model output offline, and runs tools against a patient file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		clog.FromContext(ctx).With("error", err).Error("medisnapctl failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "medisnapctl",
		Short:        "Inspect and exercise the medisnap clinical tools",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newToolsCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newRunCmd())
	return root
}
