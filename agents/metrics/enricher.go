/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// AttributeEnricher adds contextual attributes to the base attributes of a measurement.
// It must only add bounded attributes.
type AttributeEnricher func(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue

func enrich(ctx context.Context, e AttributeEnricher, base []attribute.KeyValue, extra ...attribute.KeyValue) []attribute.KeyValue {
	if e != nil {
		base = e(ctx, base)
	}
	return append(base, extra...)
}
