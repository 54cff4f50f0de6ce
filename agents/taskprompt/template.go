/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package taskprompt

import (
	"fmt"
	"slices"
	"strings"
)

// literal is the template source text.
type literal string

// Template is a task text with {{name}} placeholders. It is immutable and safe for
// concurrent use.
type Template struct {
	text  string
	slots []string
}

// New parses a template literal.
func New(text literal) (*Template, error) {
	var slots []string
	if _, err := expand(string(text), func(name string) (string, error) {
		if !slices.Contains(slots, name) {
			slots = append(slots, name)
		}
		return "", nil
	}); err != nil {
		return nil, err
	}
	return &Template{text: string(text), slots: slots}, nil
}

// MustNew is New for package-level templates; it panics on a malformed template.
func MustNew(text literal) *Template {
	t, err := New(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Slots returns the placeholder names in order of first appearance.
func (t *Template) Slots() []string {
	return slices.Clone(t.slots)
}

// Render fills every placeholder. Each slot must be bound exactly once, and every binding
// must name a slot.
func (t *Template) Render(bindings ...Binding) (string, error) {
	values := make(map[string]string, len(bindings))
	for _, b := range bindings {
		if !slices.Contains(t.slots, b.name) {
			return "", fmt.Errorf("binding %q not found in template", b.name)
		}
		if _, dup := values[b.name]; dup {
			return "", fmt.Errorf("binding %q already bound", b.name)
		}
		v, err := b.render()
		if err != nil {
			return "", fmt.Errorf("rendering %q: %w", b.name, err)
		}
		values[b.name] = v
	}

	var missing []string
	for _, s := range t.slots {
		if _, ok := values[s]; !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("unbound placeholder: %s", strings.Join(missing, ", "))
	}

	return expand(t.text, func(name string) (string, error) {
		return values[name], nil
	})
}
