/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Tools measures tool invocations.
type Tools struct {
	invocations  metric.Int64Counter
	duration     metric.Float64Histogram
	attrEnricher AttributeEnricher
}

// NewTools creates the tool instruments on the named meter, falling back to no-op
// instruments like NewGeneration.
func NewTools(meterName string) *Tools {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	invocations, err := meter.Int64Counter("tool.invocations",
		metric.WithDescription("The number of tool invocations, by tool and outcome"),
		metric.WithUnit("{invocations}"))
	if err != nil {
		slog.Warn("Failed to create tool invocation counter, metrics will be disabled", "error", err, "meter", meterName)
		invocations = noop.Int64Counter{}
	}

	duration, err := meter.Float64Histogram("tool.duration",
		metric.WithDescription("Wall time of a tool invocation"),
		metric.WithUnit("s"))
	if err != nil {
		slog.Warn("Failed to create tool duration histogram, metrics will be disabled", "error", err, "meter", meterName)
		duration = noop.Float64Histogram{}
	}

	return &Tools{invocations: invocations, duration: duration}
}

// SetAttributeEnricher sets the enricher called before each measurement.
func (m *Tools) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

// RecordInvocation records one completed invocation of tool. outcome is bounded
// ("ok", "failed", "error"); failureKind is empty unless the outcome is "failed".
func (m *Tools) RecordInvocation(ctx context.Context, tool, outcome, failureKind string, elapsed time.Duration) {
	base := []attribute.KeyValue{
		attribute.String("tool", tool),
		attribute.String("outcome", outcome),
	}
	if failureKind != "" {
		base = append(base, attribute.String("failure_kind", failureKind))
	}
	all := enrich(ctx, m.attrEnricher, base)
	m.invocations.Add(ctx, 1, metric.WithAttributes(all...))
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(all...))
}
