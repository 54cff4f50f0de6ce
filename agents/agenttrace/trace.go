/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"medisnap.dev/medisnap/agents/toolresult"
)

const instrumentationName = "medisnap.agents.agenttrace"

// Invocation records one tool invocation from dispatch to result.
type Invocation struct {
	ID        string           `json:"id"`
	Tool      string           `json:"tool"`
	Query     string           `json:"query"`
	Exec      ExecutionContext `json:"exec_context,omitempty"`
	Outcome   string           `json:"outcome"`
	Failure   toolresult.Kind  `json:"failure,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	Error     error            `json:"error,omitempty"`
	Calls     int              `json:"provider_calls"`
	StartTime time.Time        `json:"start_time"`
	EndTime   time.Time        `json:"end_time"`
	tracer    Tracer           // Tracer for auto-recording
	mu        sync.Mutex       // Protects mutable fields
	span      oteltrace.Span
}

// Outcomes recorded on an invocation.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
	OutcomeError  = "error"
)

// StartInvocation opens a span for a tool invocation. The returned context carries the
// span, so provider calls made under it become children.
func StartInvocation(ctx context.Context, tool, query string) (context.Context, *Invocation) {
	execCtx := GetExecutionContext(ctx)
	id := uuid.NewString()

	attrs := []attribute.KeyValue{
		attribute.String("tool.name", tool),
		attribute.String("tool.id", id),
	}
	if execCtx.RequestID != "" {
		attrs = append(attrs, attribute.String("request_id", execCtx.RequestID))
	}
	if execCtx.Surface != "" {
		attrs = append(attrs, attribute.String("surface", execCtx.Surface))
	}

	tr := otel.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion("1.0.0"))
	ctx, span := tr.Start(ctx, "tool.invocation", oteltrace.WithAttributes(attrs...))

	return ctx, &Invocation{
		ID:        id,
		Tool:      tool,
		Query:     query,
		Exec:      execCtx,
		StartTime: time.Now(),
		tracer:    TracerFromContext(ctx),
		span:      span,
	}
}

// ProviderCalled counts one generation provider call.
func (inv *Invocation) ProviderCalled() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.Calls++
}

// Complete ends the invocation with its result, or with err when the invocation could
// not run at all, and hands it to the tracer.
func (inv *Invocation) Complete(res toolresult.Result, err error) {
	inv.mu.Lock()
	inv.EndTime = time.Now()
	inv.Error = err
	switch {
	case err != nil:
		inv.Outcome = OutcomeError
	case !res.OK():
		inv.Outcome = OutcomeFailed
		inv.Reason = res.Error()
		if f := res.Failure; f != nil {
			inv.Failure = f.Kind
		}
	default:
		inv.Outcome = OutcomeOK
	}
	span := inv.span
	tracer := inv.tracer
	inv.mu.Unlock()

	if span != nil {
		span.SetAttributes(attribute.String("tool.outcome", inv.Outcome))
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case inv.Outcome == OutcomeFailed:
			if inv.Failure != "" {
				span.SetAttributes(attribute.String("tool.failure_kind", string(inv.Failure)))
			}
			span.SetStatus(codes.Error, inv.Reason)
		default:
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}

	tracer.RecordInvocation(inv)
}

// Duration returns the duration of the invocation
func (inv *Invocation) Duration() time.Duration {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.EndTime.IsZero() {
		return time.Since(inv.StartTime)
	}
	return inv.EndTime.Sub(inv.StartTime)
}

// RecordTokenUsage records model and token usage on the span active in ctx.
func RecordTokenUsage(ctx context.Context, model string, inputTokens, outputTokens int64) {
	oteltrace.SpanFromContext(ctx).SetAttributes(
		attribute.String("model", model),
		attribute.Int64("tokens.input", inputTokens),
		attribute.Int64("tokens.output", outputTokens),
		attribute.Int64("tokens.total", inputTokens+outputTokens),
	)
}
