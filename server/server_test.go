/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medisnap.dev/medisnap/agents/agenttrace"
	"medisnap.dev/medisnap/agents/clinicalschema"
	"medisnap.dev/medisnap/agents/generation"
	"medisnap.dev/medisnap/agents/orchestrator"
	"medisnap.dev/medisnap/agents/patientctx"
	"medisnap.dev/medisnap/agents/tools"
)

const guideline = `{"guidelineName":"ACC/AHA HF 2022","adherenceStatus":"Partial","missingTherapies":["SGLT2 inhibitor"],"recommendations":["Add dapagliflozin"]}`

func newCatalog(t *testing.T) *tools.Catalog {
	t.Helper()
	c, err := tools.New(generation.Func(func(context.Context, string, *clinicalschema.Descriptor) (string, error) {
		return guideline, nil
	}))
	require.NoError(t, err)
	return c
}

type chatFunc func(ctx context.Context, prompt string) (*orchestrator.Reply, error)

func (f chatFunc) Run(ctx context.Context, prompt string) (*orchestrator.Reply, error) {
	return f(ctx, prompt)
}

func newTestServer(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	s, err := New(newCatalog(t), opts...)
	require.NoError(t, err)
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string, patient string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if patient != "" {
		req.Header.Set(PatientContextHeader, patientctx.EncodePayload([]byte(patient)))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestInvokeTool(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		body       string
		patient    string
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{{
		name:       "guideline adherence",
		path:       "/tools/check_guideline_adherence",
		body:       `{"query":"check adherence"}`,
		patient:    johnDoe,
		wantStatus: http.StatusOK,
		check: func(t *testing.T, body map[string]any) {
			assert.Equal(t, "Partial", body["adherenceStatus"])
			assert.IsType(t, []any{}, body["missingTherapies"])
		},
	}, {
		name:       "empty body",
		path:       "/tools/check_guideline_adherence",
		patient:    johnDoe,
		wantStatus: http.StatusOK,
	}, {
		name:       "no patient",
		path:       "/tools/check_guideline_adherence",
		body:       `{"query":"check adherence"}`,
		wantStatus: http.StatusPreconditionFailed,
		check: func(t *testing.T, body map[string]any) {
			assert.Contains(t, body["error"], "no patient context")
		},
	}, {
		name:       "undecodable patient",
		path:       "/tools/analyze_ecg",
		body:       `{}`,
		wantStatus: http.StatusPreconditionFailed,
	}, {
		name:       "unknown tool",
		path:       "/tools/consult_astrology",
		body:       `{}`,
		patient:    johnDoe,
		wantStatus: http.StatusNotFound,
	}, {
		name:       "envelope is a 200",
		path:       "/tools/analyze_ecg",
		body:       `{}`,
		patient:    johnDoe,
		wantStatus: http.StatusOK,
		check: func(t *testing.T, body map[string]any) {
			assert.Equal(t, map[string]any{"error": "No ECG report found for this patient."}, body)
		},
	}, {
		name:       "malformed body",
		path:       "/tools/analyze_ecg",
		body:       `{"query":`,
		patient:    johnDoe,
		wantStatus: http.StatusBadRequest,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body, tt.patient)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.check != nil {
				tt.check(t, decodeBody(t, rec))
			}
		})
	}
}

func TestChat(t *testing.T) {
	var gotPatient string
	var gotSurface string
	h := newTestServer(t, WithChat(chatFunc(func(ctx context.Context, prompt string) (*orchestrator.Reply, error) {
		if p, err := patientctx.Current(ctx); err == nil {
			gotPatient = p.Name
		}
		gotSurface = agenttrace.GetExecutionContext(ctx).Surface
		return &orchestrator.Reply{Text: "echo: " + prompt}, nil
	})))

	rec := do(t, h, http.MethodPost, "/chat", `{"prompt":"hello"}`, johnDoe)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "echo: hello", decodeBody(t, rec)["text"])
	assert.Equal(t, "John Doe", gotPatient)
	assert.Equal(t, agenttrace.SurfaceChat, gotSurface)

	rec = do(t, h, http.MethodPost, "/chat", `{"prompt":""}`, johnDoe)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatErrors(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/chat", `{"prompt":"hi"}`, "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	h := newTestServer(t, WithChat(chatFunc(func(context.Context, string) (*orchestrator.Reply, error) {
		return nil, errors.New("model unavailable")
	})))
	rec = do(t, h, http.MethodPost, "/chat", `{"prompt":"hi"}`, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "model unavailable")
}

func TestFeedback(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/feedback",
		`{"score":4,"user_id":"test-user-456","session_id":"test-session-456","text":"Great response!"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "success"}, decodeBody(t, rec))
}

func TestFeedbackScoreLabels(t *testing.T) {
	h := newTestServer(t)
	for i := range 200 {
		body := fmt.Sprintf(`{"score":%g}`, float64(i)*0.37-10)
		rec := do(t, h, http.MethodPost, "/feedback", body, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.LessOrEqual(t, testutil.CollectAndCount(feedbackCounter), 5)

	tests := []struct {
		score float64
		want  string
	}{
		{score: 4, want: "4"},
		{score: 4.6, want: "5"},
		{score: 0, want: "1"},
		{score: -3, want: "1"},
		{score: 1e9, want: "5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scoreLabel(tt.score), "scoreLabel(%g)", tt.score)
	}
}

func TestAgentCard(t *testing.T) {
	h := newTestServer(t, WithAgentCard(AgentCard{Name: "medisnap", Version: "1.2.3", URL: "https://medisnap.example"}))

	rec := do(t, h, http.MethodGet, "/.well-known/agent-card.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var card AgentCard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, "1.2.3", card.Version)
	assert.Len(t, card.Skills, 19)
	assert.Equal(t, "consult_infectious_disease", card.Skills[15].ID)
	assert.Equal(t, "Consult Infectious Disease", card.Skills[15].Name)
}

func TestHealthAndTools(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/tools", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []toolInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 19)
	assert.Equal(t, "analyze_vital_trends", list[0].Name)
}

func TestOptions(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(newCatalog(t), WithAgentCard(AgentCard{}))
	assert.Error(t, err)

	_, err = New(newCatalog(t), WithMaxBody(0))
	assert.Error(t, err)

	_, err = New(newCatalog(t), WithChat(nil))
	assert.Error(t, err)
}
