/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/attribute"

	"medisnap.dev/medisnap/agents/toolresult"
)

func TestInvocationOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		res         toolresult.Result
		err         error
		wantOutcome string
		wantFailure toolresult.Kind
	}{{
		name:        "success",
		res:         toolresult.Success(map[string]any{"safe": true}),
		wantOutcome: OutcomeOK,
	}, {
		name:        "envelope",
		res:         toolresult.NotFound("No ECG report found for this patient."),
		wantOutcome: OutcomeFailed,
		wantFailure: toolresult.KindNotFound,
	}, {
		name:        "hard error",
		err:         errors.New("no patient context active"),
		wantOutcome: OutcomeError,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []*Invocation
			ctx := WithTracer(context.Background(), ByCode(func(inv *Invocation) {
				got = append(got, inv)
			}))
			ctx = WithExecutionContext(ctx, ExecutionContext{RequestID: "req-1", Surface: SurfaceHTTP})

			_, inv := StartInvocation(ctx, "analyze_ecg", "rhythm?")
			inv.ProviderCalled()
			inv.Complete(tt.res, tt.err)

			if len(got) != 1 {
				t.Fatalf("tracer received %d invocations, want 1", len(got))
			}
			rec := got[0]
			if rec.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q", rec.Outcome, tt.wantOutcome)
			}
			if rec.Failure != tt.wantFailure {
				t.Errorf("Failure = %q, want %q", rec.Failure, tt.wantFailure)
			}
			if rec.Calls != 1 {
				t.Errorf("Calls = %d, want 1", rec.Calls)
			}
			if rec.Tool != "analyze_ecg" || rec.Exec.RequestID != "req-1" {
				t.Errorf("invocation = %s/%s, want analyze_ecg/req-1", rec.Tool, rec.Exec.RequestID)
			}
			if rec.Duration() < 0 || rec.EndTime.IsZero() {
				t.Errorf("invocation not closed: end = %v", rec.EndTime)
			}
		})
	}
}

func TestTracerFromContextDefault(t *testing.T) {
	if TracerFromContext(context.Background()) == nil {
		t.Fatal("TracerFromContext() = nil, want logging tracer")
	}
	// The default tracer must accept invocations without a configured logger.
	_, inv := StartInvocation(context.Background(), "consult_cardiology", "")
	inv.Complete(toolresult.Success(nil), nil)
}

func TestEnrichAttributes(t *testing.T) {
	base := []attribute.KeyValue{attribute.String("model", "gemini-2.5-flash")}

	tests := []struct {
		name string
		exec ExecutionContext
		want []attribute.KeyValue
	}{{
		name: "empty",
		want: base,
	}, {
		name: "chat turn",
		exec: ExecutionContext{RequestID: "abc", Surface: SurfaceChat, Turn: 2},
		want: append(base[:1:1], attribute.String("surface", "chat"), attribute.Int("turn", 2)),
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.exec.EnrichAttributes(base)
			if diff := cmp.Diff(tt.want, got, cmp.Comparer(func(a, b attribute.KeyValue) bool {
				return a.Key == b.Key && a.Value.Emit() == b.Value.Emit()
			})); diff != "" {
				t.Errorf("EnrichAttributes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithTurn(t *testing.T) {
	ctx := WithExecutionContext(context.Background(), ExecutionContext{RequestID: "r", Surface: SurfaceChat})
	ctx = WithTurn(ctx, 3)
	want := ExecutionContext{RequestID: "r", Surface: SurfaceChat, Turn: 3}
	if diff := cmp.Diff(want, GetExecutionContext(ctx)); diff != "" {
		t.Errorf("GetExecutionContext() mismatch (-want +got):\n%s", diff)
	}
}
