/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"medisnap.dev/medisnap/agents/clinicalschema"
	"medisnap.dev/medisnap/agents/generation"
	"medisnap.dev/medisnap/agents/toolreport"
	"medisnap.dev/medisnap/agents/tools"
)

// offline stands in for a provider when a command only needs the catalog's definitions.
var offline = generation.Func(func(context.Context, string, *clinicalschema.Descriptor) (string, error) {
	return "", errors.New("no generation provider configured")
})

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools and their result categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := tools.New(offline)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), toolreport.Catalog(catalog.Definitions()))
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [category]",
		Short: "Print the JSON schema of a result category, or list the categories",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := clinicalschema.Default()
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, c := range reg.Categories() {
					fmt.Fprintln(out, c)
				}
				return nil
			}
			d, ok := reg.Descriptor(clinicalschema.Category(args[0]))
			if !ok {
				return fmt.Errorf("unknown result category %q", args[0])
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(d.SchemaJSON())
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <category> <file>",
		Short: "Validate a model response against a result category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading response: %w", err)
			}
			res := clinicalschema.Default().Validate(clinicalschema.Category(args[0]), string(raw))
			if !res.OK() {
				return errors.New(res.Error())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid %s response\n", args[1], args[0])
			return nil
		},
	}
}
