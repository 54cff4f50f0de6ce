/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"fmt"
	"strings"

	"medisnap.dev/medisnap/agents/patientctx"
	"medisnap.dev/medisnap/agents/taskprompt"
)

// snapshot is the part of the record every task carries, rendered as YAML.
type snapshot struct {
	Name        string                  `yaml:"name,omitempty"`
	Age         string                  `yaml:"age,omitempty"`
	Gender      string                  `yaml:"gender,omitempty"`
	Condition   string                  `yaml:"condition,omitempty"`
	Medications []patientctx.Medication `yaml:"medications,omitempty"`
	Symptoms    []string                `yaml:"symptoms,omitempty"`
	Allergies   any                     `yaml:"allergies,omitempty"`
	History     string                  `yaml:"history,omitempty"`
}

func snapshotOf(p *patientctx.Patient) snapshot {
	return snapshot{
		Name:        p.Name,
		Age:         string(p.Age),
		Gender:      p.Gender,
		Condition:   p.CurrentStatus.Condition,
		Medications: p.CurrentStatus.Medications,
		Symptoms:    p.CurrentStatus.Symptoms,
		Allergies:   p.Allergies,
		History:     p.HistorySummary(),
	}
}

// patientBinding binds the snapshot to the {{patient}} placeholder.
func patientBinding(p *patientctx.Patient) taskprompt.Binding {
	return taskprompt.YAML("patient", snapshotOf(p))
}

// queryBinding binds the agent's query, or a neutral request when it is empty.
func queryBinding(query string) taskprompt.Binding {
	if strings.TrimSpace(query) == "" {
		query = "General review."
	}
	return taskprompt.Text("query", query)
}

// dataBinding binds arbitrary record data as YAML, or fallback when there is none.
func dataBinding(name string, v any, fallback string) taskprompt.Binding {
	if isEmpty(v) {
		return taskprompt.Text(name, fallback)
	}
	return taskprompt.YAML(name, v)
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	case []patientctx.Medication:
		return len(x) == 0
	}
	return false
}

// reportWindow renders at most limit reports, newest first, one per line, each cut to
// budget runes.
func reportWindow(reports []patientctx.Report, limit, budget int) []string {
	sorted := patientctx.ByRecency(reports)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	lines := make([]string, 0, len(sorted))
	for _, r := range sorted {
		lines = append(lines, fmt.Sprintf("%s [%s]: %s", r.Date, r.Type, r.Excerpt(budget)))
	}
	return lines
}
