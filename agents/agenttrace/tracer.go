/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"github.com/chainguard-dev/clog"
)

// Tracer receives every completed invocation.
type Tracer interface {
	RecordInvocation(*Invocation)
}

// ByCode adapts a function into a Tracer.
type ByCode func(*Invocation)

// RecordInvocation implements Tracer.
func (f ByCode) RecordInvocation(inv *Invocation) {
	f(inv)
}

// NewDefaultTracer returns a tracer that logs each invocation to the logger in ctx.
func NewDefaultTracer(ctx context.Context) Tracer {
	logger := clog.FromContext(ctx)
	return ByCode(func(inv *Invocation) {
		l := logger.With(
			"invocation_id", inv.ID,
			"tool", inv.Tool,
			"outcome", inv.Outcome,
			"provider_calls", inv.Calls,
			"duration_ms", inv.Duration().Milliseconds(),
		)
		if inv.Exec.RequestID != "" {
			l = l.With("request_id", inv.Exec.RequestID)
		}
		if inv.Failure != "" {
			l.With("failure_kind", string(inv.Failure), "reason", inv.Reason).Warn("Tool invocation failed")
			return
		}
		l.Info("Tool invocation completed")
	})
}

type tracerKey struct{}

// WithTracer installs t as the tracer for invocations started under ctx.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	return context.WithValue(ctx, tracerKey{}, t)
}

// TracerFromContext returns the tracer installed in ctx, or a logging tracer.
func TracerFromContext(ctx context.Context) Tracer {
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok && t != nil {
		return t
	}
	return NewDefaultTracer(ctx)
}
