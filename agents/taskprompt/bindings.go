/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package taskprompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Binding supplies the value of one placeholder.
type Binding struct {
	name   string
	render func() (string, error)
}

// Text binds a plain string. Surrounding whitespace is trimmed.
func Text(name, value string) Binding {
	return Binding{name: name, render: func() (string, error) {
		return strings.TrimSpace(value), nil
	}}
}

// Lines binds a list of strings, one per line. An empty list renders as fallback.
func Lines(name string, items []string, fallback string) Binding {
	return Binding{name: name, render: func() (string, error) {
		if len(items) == 0 {
			return fallback, nil
		}
		return strings.Join(items, "\n"), nil
	}}
}

// JSON binds v marshaled as indented JSON.
func JSON(name string, v any) Binding {
	return Binding{name: name, render: func() (string, error) {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(b), nil
	}}
}

// YAML binds v marshaled as YAML.
func YAML(name string, v any) Binding {
	return Binding{name: name, render: func() (string, error) {
		b, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return strings.TrimRight(string(b), "\n"), nil
	}}
}
