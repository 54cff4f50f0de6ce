/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"net/http"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"medisnap.dev/medisnap/agents/agenttrace"
	"medisnap.dev/medisnap/agents/patientctx"
)

// PatientContextHeader carries the base64-encoded patient record of a request.
const PatientContextHeader = "X-Patient-Context"

// Outcomes of reading the patient context header.
const (
	contextOpened       = "opened"
	contextAbsent       = "absent"
	contextDecodeFailed = "decode_failed"
)

var patientContextCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "medisnap_patient_context_total",
		Help: "Requests by outcome of decoding the patient context header",
	},
	[]string{"outcome"},
)

// PatientContext is the request boundary. It assigns a request ID, decodes the patient
// header and, when the header holds a valid record, opens a patient scope for the
// duration of the request. The scope is closed when next returns, including when it
// panics or the client goes away.
//
// A missing or undecodable header never fails the request: the handler runs without a
// patient, and tools reached from it report that no patient context is active.
func PatientContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		ctx := clog.WithValues(r.Context(), "request_id", requestID)
		ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
			RequestID: requestID,
			Surface:   agenttrace.SurfaceHTTP,
		})
		log := clog.FromContext(ctx)

		header := r.Header.Get(PatientContextHeader)
		if header == "" {
			patientContextCounter.WithLabelValues(contextAbsent).Inc()
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		patient, err := patientctx.DecodePayload(header)
		if err != nil {
			patientContextCounter.WithLabelValues(contextDecodeFailed).Inc()
			log.With("error", err).Warn("Failed to decode patient context")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		patientContextCounter.WithLabelValues(contextOpened).Inc()
		ctx, h := patientctx.Open(ctx, patient)
		defer func() {
			if err := patientctx.Close(h); err != nil {
				log.With("error", err).Error("Failed to close patient scope")
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
