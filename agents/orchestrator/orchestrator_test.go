/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package orchestrator

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"medisnap.dev/medisnap/agents/clinicalschema"
	"medisnap.dev/medisnap/agents/generation"
	"medisnap.dev/medisnap/agents/generation/retry"
	"medisnap.dev/medisnap/agents/patientctx"
	"medisnap.dev/medisnap/agents/tools"
)

// scriptedModel replays canned generateContent responses and keeps every request body.
type scriptedModel struct {
	mu        sync.Mutex
	responses []string
	requests  []string
}

func (s *scriptedModel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, string(b))
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, resp)
}

func (s *scriptedModel) request(t *testing.T, i int) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= len(s.requests) {
		t.Fatalf("model received %d requests, want more than %d", len(s.requests), i)
	}
	return s.requests[i]
}

func functionCall(name, args string) string {
	return `{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"` + name + `","args":` + args + `}}]},"finishReason":"STOP"}],` +
		`"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5}}`
}

func textReply(s string) string {
	return `{"candidates":[{"content":{"role":"model","parts":[{"text":"` + s + `"}]},"finishReason":"STOP"}]}`
}

const guideline = `{"guidelineName":"ACC/AHA HF 2022","adherenceStatus":"Partial","missingTherapies":["SGLT2 inhibitor"],"recommendations":["Add dapagliflozin"]}`

func newTestOrchestrator(t *testing.T, model *scriptedModel, opts ...Option) *Orchestrator {
	t.Helper()
	srv := httptest.NewServer(model)
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	if err != nil {
		t.Fatalf("genai.NewClient() = %v", err)
	}
	catalog, err := tools.New(generation.Func(func(context.Context, string, *clinicalschema.Descriptor) (string, error) {
		return guideline, nil
	}))
	if err != nil {
		t.Fatalf("tools.New() = %v", err)
	}
	opts = append([]Option{WithRetryConfig(retry.Config{})}, opts...)
	o, err := New(client, catalog, opts...)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return o
}

func withPatient(t *testing.T) context.Context {
	t.Helper()
	p, err := patientctx.Decode([]byte(`{"name":"John Doe","age":65,"currentStatus":{"condition":"Heart Failure","medications":["Lisinopril"]}}`))
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	ctx, h := patientctx.Open(context.Background(), p)
	t.Cleanup(func() { _ = patientctx.Close(h) })
	return ctx
}

func TestRunDispatchesToolCalls(t *testing.T) {
	model := &scriptedModel{responses: []string{
		functionCall("check_guideline_adherence", `{"query":"GDMT?"}`),
		textReply("The patient is partially adherent; add an SGLT2 inhibitor."),
	}}
	o := newTestOrchestrator(t, model)

	reply, err := o.Run(withPatient(t), "Is this patient on GDMT?")
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if want := "The patient is partially adherent; add an SGLT2 inhibitor."; reply.Text != want {
		t.Errorf("Text = %q, want %q", reply.Text, want)
	}
	if len(reply.ToolCalls) != 1 {
		t.Fatalf("ToolCalls = %d, want 1", len(reply.ToolCalls))
	}
	call := reply.ToolCalls[0]
	if call.Name != "check_guideline_adherence" || call.Query != "GDMT?" || call.ID == "" {
		t.Errorf("ToolCall = %+v", call)
	}
	if got := call.Response["adherenceStatus"]; got != "Partial" {
		t.Errorf("adherenceStatus = %v, want Partial", got)
	}

	first := model.request(t, 0)
	for _, want := range []string{"Is this patient on GDMT?", "functionDeclarations", "consult_cardiology", RequestUserInput} {
		if !strings.Contains(first, want) {
			t.Errorf("first request does not contain %q", want)
		}
	}
	if second := model.request(t, 1); !strings.Contains(second, "functionResponse") || !strings.Contains(second, "SGLT2 inhibitor") {
		t.Errorf("second request does not carry the tool result:\n%s", second)
	}
}

func TestRunWithoutPatientContext(t *testing.T) {
	model := &scriptedModel{responses: []string{
		functionCall("analyze_ecg", `{"query":"rhythm"}`),
		textReply("Please load a patient first."),
	}}
	o := newTestOrchestrator(t, model)

	reply, err := o.Run(context.Background(), "Read the ECG")
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	resp := reply.ToolCalls[0].Response
	if _, ok := resp["action"]; !ok {
		t.Errorf("Response = %v, want an action telling the model to ask for patient data", resp)
	}
	if msg, _ := resp["error"].(string); !strings.Contains(msg, "no patient context") {
		t.Errorf("error = %q", msg)
	}
}

func TestRunRequestUserInput(t *testing.T) {
	model := &scriptedModel{responses: []string{
		functionCall(RequestUserInput, `{"message":"Which guideline year?"}`),
		textReply("Waiting for your answer."),
	}}
	o := newTestOrchestrator(t, model)

	reply, err := o.Run(withPatient(t), "Check guidelines")
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if reply.Pending != "Which guideline year?" {
		t.Errorf("Pending = %q", reply.Pending)
	}
	want := map[string]any{"status": "pending", "message": "Which guideline year?"}
	if diff := cmp.Diff(want, reply.ToolCalls[0].Response); diff != "" {
		t.Errorf("Response mismatch (-want +got):\n%s", diff)
	}
}

func TestRunUnknownFunction(t *testing.T) {
	model := &scriptedModel{responses: []string{
		functionCall("consult_astrology", `{}`),
		textReply("Sorry."),
	}}
	o := newTestOrchestrator(t, model)

	reply, err := o.Run(withPatient(t), "Horoscope?")
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	want := map[string]any{"error": "Unknown function: consult_astrology"}
	if diff := cmp.Diff(want, reply.ToolCalls[0].Response); diff != "" {
		t.Errorf("Response mismatch (-want +got):\n%s", diff)
	}
}

func TestRunMaxTurns(t *testing.T) {
	model := &scriptedModel{responses: []string{
		functionCall("generate_patient_summary", `{}`),
	}}
	o := newTestOrchestrator(t, model, WithMaxTurns(3))

	if _, err := o.Run(withPatient(t), "Loop forever"); err == nil || !strings.Contains(err.Error(), "3 turns") {
		t.Errorf("Run() error = %v, want turn limit error", err)
	}
}

func TestRunRejectsEmptyPrompt(t *testing.T) {
	o := newTestOrchestrator(t, &scriptedModel{responses: []string{textReply("unused")}})
	if _, err := o.Run(context.Background(), "  "); err == nil {
		t.Error("Run() = nil error, want error for empty prompt")
	}
}

func TestParam(t *testing.T) {
	call := &genai.FunctionCall{ID: "1", Name: "t", Args: map[string]any{"query": "q", "n": 3.0}}

	if got, resp := param(call, "query", ""); resp != nil || got != "q" {
		t.Errorf("param(query) = (%q, %v)", got, resp)
	}
	if got, resp := param(call, "missing", "def"); resp != nil || got != "def" {
		t.Errorf("param(missing) = (%q, %v)", got, resp)
	}
	if _, resp := param(call, "n", ""); resp == nil {
		t.Error("param(n) = nil response, want type error")
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr bool
	}{
		{name: "gemini model", opt: WithModel("gemini-2.5-pro")},
		{name: "claude model", opt: WithModel("claude-sonnet-4"), wantErr: true},
		{name: "temperature", opt: WithTemperature(1.5)},
		{name: "temperature too high", opt: WithTemperature(2.5), wantErr: true},
		{name: "max turns", opt: WithMaxTurns(4)},
		{name: "zero turns", opt: WithMaxTurns(0), wantErr: true},
		{name: "empty instruction", opt: WithSystemInstruction(" "), wantErr: true},
		{name: "negative retries", opt: WithRetryConfig(retry.Config{MaxRetries: -1}), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opt(&Orchestrator{})
			if (err != nil) != tt.wantErr {
				t.Errorf("option error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
