/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// Surfaces through which a tool can be reached.
const (
	SurfaceHTTP = "http"
	SurfaceChat = "chat"
)

// ExecutionContext is request-level metadata used to enrich spans and metrics.
type ExecutionContext struct {
	RequestID string `json:"request_id,omitempty"` // Per-request UUID assigned at the boundary
	Surface   string `json:"surface,omitempty"`    // SurfaceHTTP or SurfaceChat
	Turn      int    `json:"turn,omitempty"`       // Orchestrator turn, 0 outside the chat loop
}

// EnrichAttributes appends the bounded execution attributes to baseAttrs.
//
// RequestID is left out: every request would create a new time series. It stays on
// spans, where cardinality does not matter.
func (e ExecutionContext) EnrichAttributes(baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(baseAttrs), len(baseAttrs)+2)
	copy(attrs, baseAttrs)
	if e.Surface != "" {
		attrs = append(attrs, attribute.String("surface", e.Surface))
	}
	if e.Turn > 0 {
		attrs = append(attrs, attribute.Int("turn", e.Turn))
	}
	return attrs
}

// executionContextKey is used for storing execution context in context.Context
type executionContextKey struct{}

// WithExecutionContext adds execution context to the Go context
func WithExecutionContext(ctx context.Context, execCtx ExecutionContext) context.Context {
	return context.WithValue(ctx, executionContextKey{}, execCtx)
}

// GetExecutionContext retrieves execution context from the Go context
func GetExecutionContext(ctx context.Context) ExecutionContext {
	execCtx, _ := ctx.Value(executionContextKey{}).(ExecutionContext)
	return execCtx
}

// WithTurn returns ctx with the execution context's turn set to turn.
func WithTurn(ctx context.Context, turn int) context.Context {
	execCtx := GetExecutionContext(ctx)
	execCtx.Turn = turn
	return WithExecutionContext(ctx, execCtx)
}
