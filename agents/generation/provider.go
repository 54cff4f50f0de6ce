/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package generation defines the generation provider the clinical tools delegate to.
//
// A Provider turns a composed task and a result schema into raw text. The tools validate
// that text themselves, so a provider only needs to make a best effort at returning JSON
// that matches the descriptor; googleprovider and claudeprovider are the production
// implementations.
package generation

import (
	"context"
	"errors"

	"medisnap.dev/medisnap/agents/clinicalschema"
)

// ErrEmptyResponse is returned when the provider answered without any text.
var ErrEmptyResponse = errors.New("provider returned no text")

// Provider produces structured output for one task.
type Provider interface {
	// Generate returns raw model output for task, constrained as far as the backend allows
	// to the schema of d. It must honor ctx cancellation.
	Generate(ctx context.Context, task string, d *clinicalschema.Descriptor) (string, error)
}

// Func adapts a function into a Provider.
type Func func(ctx context.Context, task string, d *clinicalschema.Descriptor) (string, error)

// Generate implements Provider.
func (f Func) Generate(ctx context.Context, task string, d *clinicalschema.Descriptor) (string, error) {
	return f(ctx, task, d)
}
