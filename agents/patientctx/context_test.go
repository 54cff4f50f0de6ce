/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package patientctx_test

import (
	"context"
	"errors"
	"testing"

	"medisnap.dev/medisnap/agents/patientctx"
)

func TestCurrentWithoutScope(t *testing.T) {
	_, err := patientctx.Current(context.Background())
	if !errors.Is(err, patientctx.ErrNoActiveContext) {
		t.Fatalf("Current() error = %v, want ErrNoActiveContext", err)
	}
	if patientctx.Active(context.Background()) {
		t.Error("Active() = true without a scope")
	}
}

func TestOpenCurrentClose(t *testing.T) {
	base := context.Background()
	john := &patientctx.Patient{Name: "John Doe"}

	ctx, h := patientctx.Open(base, john)
	got, err := patientctx.Current(ctx)
	if err != nil {
		t.Fatalf("Current() = %v", err)
	}
	if got != john {
		t.Errorf("Current() = %v, want %v", got.Name, john.Name)
	}

	// The parent context never sees the scope.
	if patientctx.Active(base) {
		t.Error("scope leaked into the parent context")
	}

	if err := patientctx.Close(h); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if _, err := patientctx.Current(ctx); !errors.Is(err, patientctx.ErrNoActiveContext) {
		t.Errorf("Current() after Close = %v, want ErrNoActiveContext", err)
	}
}

func TestNestedScopesRestoreEnclosingValue(t *testing.T) {
	outer := &patientctx.Patient{Name: "outer"}
	inner := &patientctx.Patient{Name: "inner"}

	ctx, outerH := patientctx.Open(context.Background(), outer)
	nested, innerH := patientctx.Open(ctx, inner)

	if p, _ := patientctx.Current(nested); p != inner {
		t.Fatalf("nested Current() = %v, want inner", p)
	}
	if err := patientctx.Close(innerH); err != nil {
		t.Fatalf("Close(inner) = %v", err)
	}
	if p, _ := patientctx.Current(nested); p != outer {
		t.Errorf("Current() after closing inner = %v, want outer", p)
	}
	if err := patientctx.Close(outerH); err != nil {
		t.Fatalf("Close(outer) = %v", err)
	}
	if patientctx.Active(nested) {
		t.Error("closed scopes still visible")
	}
}

func TestScopeHygieneSequence(t *testing.T) {
	base := context.Background()
	for i, name := range []string{"a", "b", "c", "d"} {
		ctx, h := patientctx.Open(base, &patientctx.Patient{Name: name})
		if p, err := patientctx.Current(ctx); err != nil || p.Name != name {
			t.Fatalf("round %d: Current() = %v, %v", i, p, err)
		}
		if err := patientctx.Close(h); err != nil {
			t.Fatalf("round %d: Close() = %v", i, err)
		}
		if patientctx.Active(ctx) {
			t.Fatalf("round %d: %q leaked after close", i, name)
		}
	}
	if patientctx.Active(base) {
		t.Error("base context gained a scope")
	}
}

func TestCloseErrors(t *testing.T) {
	t.Run("never opened", func(t *testing.T) {
		if err := patientctx.Close(patientctx.Handle{}); !errors.Is(err, patientctx.ErrNotOpened) {
			t.Errorf("Close(zero) = %v, want ErrNotOpened", err)
		}
	})

	t.Run("double close", func(t *testing.T) {
		_, h := patientctx.Open(context.Background(), &patientctx.Patient{})
		if err := patientctx.Close(h); err != nil {
			t.Fatalf("first Close() = %v", err)
		}
		if err := patientctx.Close(h); !errors.Is(err, patientctx.ErrAlreadyClosed) {
			t.Errorf("second Close() = %v, want ErrAlreadyClosed", err)
		}
	})

	t.Run("out of order", func(t *testing.T) {
		ctx, outer := patientctx.Open(context.Background(), &patientctx.Patient{Name: "outer"})
		nested, inner := patientctx.Open(ctx, &patientctx.Patient{Name: "inner"})
		if err := patientctx.Close(outer); !errors.Is(err, patientctx.ErrScopeMismatch) {
			t.Fatalf("Close(outer) = %v, want ErrScopeMismatch", err)
		}
		// The failed close left both scopes intact.
		if p, _ := patientctx.Current(nested); p == nil || p.Name != "inner" {
			t.Errorf("Current(nested) = %v, want inner", p)
		}
		if err := patientctx.Close(inner); err != nil {
			t.Fatalf("Close(inner) = %v", err)
		}
		if err := patientctx.Close(outer); err != nil {
			t.Fatalf("Close(outer) = %v", err)
		}
	})
}

func TestNilPatientReadsAsNoContext(t *testing.T) {
	ctx, h := patientctx.Open(context.Background(), nil)
	defer patientctx.Close(h) //nolint:errcheck
	if _, err := patientctx.Current(ctx); !errors.Is(err, patientctx.ErrNoActiveContext) {
		t.Errorf("Current() = %v, want ErrNoActiveContext", err)
	}
}
