/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"strings"

	"medisnap.dev/medisnap/agents/tools"
)

// AgentCard describes the agent to other agents and to clients.
type AgentCard struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Version      string       `json:"version"`
	URL          string       `json:"url,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
	Skills       []Skill      `json:"skills"`
}

// Capabilities lists the optional protocol features the agent supports.
type Capabilities struct {
	Streaming bool `json:"streaming"`
}

// Skill is one advertised ability of the agent.
type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

func defaultCard() AgentCard {
	return AgentCard{
		Name:        "medisnap",
		Description: "Clinical decision support agent that analyzes the current patient with specialist tools.",
		Version:     "0.1.0",
	}
}

// skills advertises one skill per catalog tool.
func skills(defs []tools.Definition) []Skill {
	out := make([]Skill, 0, len(defs))
	for _, d := range defs {
		out = append(out, Skill{
			ID:          d.Name,
			Name:        skillName(d.Name),
			Description: d.Description,
			Tags:        []string{string(d.Category)},
		})
	}
	return out
}

// skillName turns "consult_infectious_disease" into "Consult Infectious Disease".
func skillName(tool string) string {
	words := strings.Split(tool, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
