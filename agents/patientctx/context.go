/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package patientctx

import (
	"context"
	"errors"
	"sync/atomic"
)

var (
	// ErrNoActiveContext is returned by Current when no open scope is reachable from the
	// context. It means a tool was reached without passing through the request boundary.
	ErrNoActiveContext = errors.New("no patient context active; tools must be called within a request that carries patient data")

	// ErrNotOpened is returned when closing a Handle that Open never produced.
	ErrNotOpened = errors.New("patient scope was never opened")

	// ErrAlreadyClosed is returned when a Handle is closed a second time.
	ErrAlreadyClosed = errors.New("patient scope already closed")

	// ErrScopeMismatch is returned when closing a scope that still has an open nested scope.
	ErrScopeMismatch = errors.New("patient scope closed out of order: a nested scope is still open")
)

// scope is one Open call. It is reachable only through the context returned by Open.
type scope struct {
	patient  *Patient
	parent   *scope
	closed   atomic.Bool
	children atomic.Int32
}

// Handle identifies the scope opened by Open and is required to close it.
type Handle struct {
	s *scope
}

// contextKey is used for storing the patient scope in context.Context
type contextKey struct{}

// Open installs patient as the value visible to Current for the returned context and its
// descendants. A nil patient opens a scope that reads as no context.
func Open(ctx context.Context, patient *Patient) (context.Context, Handle) {
	parent := innermost(ctx)
	s := &scope{patient: patient, parent: parent}
	if parent != nil {
		parent.children.Add(1)
	}
	return context.WithValue(ctx, contextKey{}, s), Handle{s: s}
}

// Current returns the patient of the innermost open scope reachable from ctx.
func Current(ctx context.Context) (*Patient, error) {
	s := innermost(ctx)
	if s == nil || s.patient == nil {
		return nil, ErrNoActiveContext
	}
	return s.patient, nil
}

// Active reports whether Current would succeed for ctx.
func Active(ctx context.Context) bool {
	_, err := Current(ctx)
	return err == nil
}

// Close closes the scope identified by h. Afterwards, contexts derived from the scope see
// whatever was visible before the matching Open.
func Close(h Handle) error {
	s := h.s
	if s == nil {
		return ErrNotOpened
	}
	if s.children.Load() > 0 {
		return ErrScopeMismatch
	}
	if !s.closed.CompareAndSwap(false, true) {
		return ErrAlreadyClosed
	}
	if p := s.parent; p != nil {
		p.children.Add(-1)
	}
	return nil
}

// innermost walks from the scope stored in ctx towards the root, skipping closed scopes.
func innermost(ctx context.Context) *scope {
	s, _ := ctx.Value(contextKey{}).(*scope)
	for s != nil && s.closed.Load() {
		s = s.parent
	}
	return s
}
