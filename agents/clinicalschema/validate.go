/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package clinicalschema

import (
	"strings"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"

	"medisnap.dev/medisnap/agents/toolresult"
)

// Validate checks raw provider output against the schema of category c. On success the
// decoded object is returned unchanged; every failure is a validation envelope.
func (r *Registry) Validate(c Category, raw string) toolresult.Result {
	d, ok := r.byCategory[c]
	if !ok {
		return toolresult.Fail(toolresult.KindValidation, "unknown result category %q", c)
	}
	return d.Validate(raw)
}

// Validate checks raw provider output against the descriptor's schema.
func (d *Descriptor) Validate(raw string) toolresult.Result {
	text := extractJSON(raw)
	if text == "" {
		return toolresult.Fail(toolresult.KindValidation, "empty response for %s", d.Category)
	}

	v, err := jsv.UnmarshalJSON(strings.NewReader(text))
	if err != nil {
		return toolresult.Fail(toolresult.KindValidation, "response for %s is not valid JSON: %v", d.Category, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return toolresult.Fail(toolresult.KindValidation, "response for %s must be a JSON object, got %s", d.Category, jsonKind(v))
	}
	if err := d.compiled.Validate(obj); err != nil {
		return toolresult.Fail(toolresult.KindValidation, "response does not match the %s schema: %v", d.Category, err)
	}
	return toolresult.Success(obj)
}

// extractJSON strips a markdown code fence around the payload, if there is one. Text that
// already starts as a JSON value is returned as is.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return s
	}
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	body := s[start+3:]
	// Drop the info string ("json") on the opening fence line.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = strings.TrimPrefix(body, "json")
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	default:
		return "a number"
	}
}
