/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolreport

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"medisnap.dev/medisnap/agents/tools"
)

// createStandardTable creates a markdown table writer with left-aligned cells.
func createStandardTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 120,
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// Markdown renders one row per tool. Tools with failed or errored invocations are marked.
func Markdown(stats []Stats) string {
	if len(stats) == 0 {
		return ""
	}

	var buf bytes.Buffer
	table := createStandardTable([]string{"Tool", "Invocations", "OK", "Failed", "Errors", "Provider calls", "Avg latency"}, &buf)
	for _, s := range stats {
		name := s.Tool
		if s.Failed+s.Errors > 0 {
			name = "❌ " + name
		}
		_ = table.Append([]string{
			name,
			strconv.Itoa(s.Invocations),
			strconv.Itoa(s.OK),
			strconv.Itoa(s.Failed),
			strconv.Itoa(s.Errors),
			strconv.Itoa(s.ProviderCalls),
			s.Average().Round(time.Millisecond).String(),
		})
	}
	_ = table.Render()

	for _, s := range stats {
		for _, r := range s.Reasons {
			fmt.Fprintf(&buf, "\n- %s: %s", s.Tool, r)
		}
	}
	return buf.String()
}

// Catalog renders the tool definitions in registration order.
func Catalog(defs []tools.Definition) string {
	var buf bytes.Buffer
	table := createStandardTable([]string{"Tool", "Result category", "Description"}, &buf)
	for _, d := range defs {
		_ = table.Append([]string{d.Name, string(d.Category), d.Description})
	}
	_ = table.Render()
	return buf.String()
}
