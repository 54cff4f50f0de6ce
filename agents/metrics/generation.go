/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the meter shared by every medisnap instrument.
const MeterName = "medisnap.agents"

// Generation counts provider calls and their token usage, keyed by model.
type Generation struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	calls            metric.Int64Counter
	attrEnricher     AttributeEnricher
}

// NewGeneration creates the generation instruments on the named meter. An instrument
// that cannot be created is replaced by a no-op one and a warning is logged.
func NewGeneration(meterName string) *Generation {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	promptTokens, err := meter.Int64Counter("genai.token.prompt",
		metric.WithDescription("The number of prompt tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create prompt tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		promptTokens = noop.Int64Counter{}
	}

	completionTokens, err := meter.Int64Counter("genai.token.completion",
		metric.WithDescription("The number of completion tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create completion tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		completionTokens = noop.Int64Counter{}
	}

	calls, err := meter.Int64Counter("genai.provider.calls",
		metric.WithDescription("The number of generation provider calls, by outcome"),
		metric.WithUnit("{calls}"))
	if err != nil {
		slog.Warn("Failed to create provider call counter, metrics will be disabled", "error", err, "meter", meterName)
		calls = noop.Int64Counter{}
	}

	return &Generation{
		promptTokens:     promptTokens,
		completionTokens: completionTokens,
		calls:            calls,
	}
}

// SetAttributeEnricher sets the enricher called before each measurement.
func (m *Generation) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

// RecordTokens records prompt and completion token usage for model.
func (m *Generation) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64, attrs ...attribute.KeyValue) {
	all := enrich(ctx, m.attrEnricher, []attribute.KeyValue{attribute.String("model", model)}, attrs...)
	m.promptTokens.Add(ctx, promptTokens, metric.WithAttributes(all...))
	m.completionTokens.Add(ctx, completionTokens, metric.WithAttributes(all...))
}

// RecordCall records one provider call for model. err is the final error after retries.
func (m *Generation) RecordCall(ctx context.Context, model string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	all := enrich(ctx, m.attrEnricher, []attribute.KeyValue{
		attribute.String("model", model),
		attribute.String("outcome", outcome),
	})
	m.calls.Add(ctx, 1, metric.WithAttributes(all...))
}
