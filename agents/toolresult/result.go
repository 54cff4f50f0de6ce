/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package toolresult defines the outcome of one tool invocation: a schema-conforming
// value or a uniform {"error": reason} envelope, told apart by a single discriminant.
package toolresult

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Kind classifies a failed invocation.
type Kind string

const (
	// KindGeneration means the generation provider failed, timed out, or was cancelled.
	KindGeneration Kind = "generation"
	// KindValidation means the provider answered but the answer did not satisfy the schema.
	KindValidation Kind = "validation"
	// KindNotFound means the record lacks the data the tool needs (e.g. no ECG report).
	KindNotFound Kind = "not_found"
)

// Failure is the error side of a Result.
type Failure struct {
	Kind   Kind
	Reason string
}

// Result is the outcome of one tool invocation. Exactly one of Value and Failure is set;
// use OK to tell them apart.
type Result struct {
	Value   map[string]any
	Failure *Failure
}

// Success wraps a validated value.
func Success(value map[string]any) Result {
	if value == nil {
		value = map[string]any{}
	}
	return Result{Value: value}
}

// Fail builds an error envelope.
func Fail(kind Kind, format string, args ...any) Result {
	return Result{Failure: &Failure{Kind: kind, Reason: fmt.Sprintf(format, args...)}}
}

// NotFound builds the envelope for data missing from the record.
func NotFound(format string, args ...any) Result {
	return Fail(KindNotFound, format, args...)
}

// OK reports whether the invocation produced a value. The zero Result is not OK.
func (r Result) OK() bool {
	return r.Failure == nil && r.Value != nil
}

// Error returns the failure reason, or "" for a successful result.
func (r Result) Error() string {
	switch {
	case r.Failure != nil:
		return r.Failure.Reason
	case r.Value == nil:
		return noResult
	default:
		return ""
	}
}

const noResult = "tool produced no result"

// Map renders the result as the map sent back to a model: the value itself, or
// {"error": reason}.
func (r Result) Map() map[string]any {
	if !r.OK() {
		return map[string]any{"error": r.Error()}
	}
	return maps.Clone(r.Value)
}

// MarshalJSON implements json.Marshaler.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}
