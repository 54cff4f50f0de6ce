/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"

	"medisnap.dev/medisnap/agents/agenttrace"
	"medisnap.dev/medisnap/agents/clinicalschema"
	"medisnap.dev/medisnap/agents/generation"
	"medisnap.dev/medisnap/agents/metrics"
	"medisnap.dev/medisnap/agents/patientctx"
	"medisnap.dev/medisnap/agents/toolresult"
)

// ErrUnknownTool is returned by Invoke for a name the catalog does not hold.
var ErrUnknownTool = errors.New("unknown tool")

// Definition describes a tool to the orchestrating agent.
type Definition struct {
	Name        string
	Description string
	Category    clinicalschema.Category
}

// prepareFunc selects the slice of the record a tool needs and composes its task. A non-nil
// result short-circuits the invocation without a provider call.
type prepareFunc func(p *patientctx.Patient, query string) (task string, short *toolresult.Result, err error)

// tool is one registered procedure. Exactly one of prepare and fixed is set.
type tool struct {
	Definition
	failure string // prefix of generation failure reasons
	prepare prepareFunc
	fixed   func(p *patientctx.Patient, query string) map[string]any
}

// Catalog holds the tool procedures and dispatches invocations to them. It is immutable
// after New and safe for concurrent use.
type Catalog struct {
	provider    generation.Provider
	registry    *clinicalschema.Registry
	specialties []Specialty
	timeout     time.Duration
	metrics     *metrics.Tools

	tools map[string]*tool
	order []string
}

// New builds the catalog of built-in tools plus one consult tool per specialty.
func New(provider generation.Provider, opts ...Option) (*Catalog, error) {
	if provider == nil {
		return nil, errors.New("generation provider is required")
	}
	c := &Catalog{
		provider:    provider,
		registry:    clinicalschema.Default(),
		specialties: DefaultSpecialties(),
		metrics:     metrics.NewTools(metrics.MeterName),
		tools:       make(map[string]*tool),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	all := append(diagnosticTools(), treatmentTools()...)
	for _, s := range c.specialties {
		all = append(all, consultTool(s))
	}
	all = append(all, workflowTools()...)

	for _, t := range all {
		if _, dup := c.tools[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", t.Name)
		}
		if _, ok := c.registry.Descriptor(t.Category); !ok {
			return nil, fmt.Errorf("tool %q uses unregistered category %q", t.Name, t.Category)
		}
		c.tools[t.Name] = t
		c.order = append(c.order, t.Name)
	}
	return c, nil
}

// Definitions lists the tools in registration order.
func (c *Catalog) Definitions() []Definition {
	defs := make([]Definition, 0, len(c.order))
	for _, name := range c.order {
		defs = append(defs, c.tools[name].Definition)
	}
	return defs
}

// Lookup returns the definition of the named tool.
func (c *Catalog) Lookup(name string) (Definition, bool) {
	t, ok := c.tools[name]
	if !ok {
		return Definition{}, false
	}
	return t.Definition, true
}

// Invoke runs the named tool against the patient in ctx.
//
// The returned error is non-nil only when the tool is unknown (ErrUnknownTool) or no
// patient scope is open (patientctx.ErrNoActiveContext). Missing reports, provider
// failures, and output that does not match the tool's schema are reported in the Result.
func (c *Catalog) Invoke(ctx context.Context, name, query string) (toolresult.Result, error) {
	t, ok := c.tools[name]
	if !ok {
		return toolresult.Result{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	ctx, inv := agenttrace.StartInvocation(ctx, name, query)
	res, err := c.run(ctx, t, query, inv)
	inv.Complete(res, err)
	c.metrics.RecordInvocation(ctx, name, inv.Outcome, string(inv.Failure), inv.Duration())
	return res, err
}

func (c *Catalog) run(ctx context.Context, t *tool, query string, inv *agenttrace.Invocation) (toolresult.Result, error) {
	p, err := patientctx.Current(ctx)
	if err != nil {
		return toolresult.Result{}, err
	}
	d, _ := c.registry.Descriptor(t.Category)

	if t.fixed != nil {
		raw, err := json.Marshal(t.fixed(p, query))
		if err != nil {
			return toolresult.Fail(toolresult.KindValidation, "%s: %v", t.failure, err), nil
		}
		return d.Validate(string(raw)), nil
	}

	task, short, err := t.prepare(p, query)
	switch {
	case err != nil:
		return toolresult.Fail(toolresult.KindGeneration, "%s: composing task: %v", t.failure, err), nil
	case short != nil:
		return *short, nil
	}

	raw, err := c.generate(ctx, task, d, inv)
	if err != nil {
		clog.FromContext(ctx).With("tool", t.Name).With("error", err).Warn("Generation failed")
		return toolresult.Fail(toolresult.KindGeneration, "%s: %v", t.failure, err), nil
	}
	return d.Validate(raw), nil
}

// generate issues the single provider call of an invocation. The call runs on its own
// goroutine so that cancellation of ctx, or the catalog timeout, abandons it instead of
// waiting for the provider to notice.
func (c *Catalog) generate(ctx context.Context, task string, d *clinicalschema.Descriptor, inv *agenttrace.Invocation) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	type reply struct {
		raw string
		err error
	}
	ch := make(chan reply, 1)
	inv.ProviderCalled()
	go func() {
		raw, err := c.provider.Generate(ctx, task, d)
		ch <- reply{raw: raw, err: err}
	}()

	select {
	case r := <-ch:
		return r.raw, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("generation abandoned: %w", ctx.Err())
	}
}
