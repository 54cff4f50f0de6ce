/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"google.golang.org/genai"

	"medisnap.dev/medisnap/agents/agenttrace"
	"medisnap.dev/medisnap/agents/generation/googleprovider"
	"medisnap.dev/medisnap/agents/generation/retry"
	"medisnap.dev/medisnap/agents/metrics"
	"medisnap.dev/medisnap/agents/patientctx"
	"medisnap.dev/medisnap/agents/tools"
)

const defaultSystemInstruction = `You are MediSnap, a clinical decision support assistant for physicians.
Use the available tools to analyze the current patient; prefer a tool over answering from memory.
Call each tool with a focused query. Summarize tool results faithfully and flag critical findings first.
If a tool reports that no patient data is available, ask the user to load a patient before continuing.
Use request_user_input when you need a decision or information only the clinician can provide.`

// Reply is the outcome of one Run.
type Reply struct {
	// Text is the model's final answer.
	Text string `json:"text"`
	// ToolCalls lists the calls dispatched during the run, in order.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	// Pending is the last question the model asked through request_user_input.
	Pending string `json:"pending,omitempty"`
}

// ToolCall records one dispatched function call and the response sent back.
type ToolCall struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Query    string         `json:"query,omitempty"`
	Response map[string]any `json:"response"`
}

// Orchestrator drives a Gemini function-calling conversation over a tool catalog.
type Orchestrator struct {
	client            *genai.Client
	catalog           *tools.Catalog
	model             string
	temperature       float32
	maxOutputTokens   int32
	maxTurns          int
	systemInstruction string
	retryConfig       retry.Config
	metrics           *metrics.Generation
}

// New creates an orchestrator over catalog.
func New(client *genai.Client, catalog *tools.Catalog, opts ...Option) (*Orchestrator, error) {
	if client == nil {
		return nil, errors.New("genai client is required")
	}
	if catalog == nil {
		return nil, errors.New("tool catalog is required")
	}
	o := &Orchestrator{
		client:            client,
		catalog:           catalog,
		model:             "gemini-2.5-flash",
		temperature:       0.3,
		maxOutputTokens:   8192,
		maxTurns:          10,
		systemInstruction: defaultSystemInstruction,
		retryConfig:       retry.Default(),
		metrics:           metrics.NewGeneration(metrics.MeterName),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return o, nil
}

// Run answers prompt, dispatching the model's function calls to the catalog until the
// model replies with text.
func (o *Orchestrator) Run(ctx context.Context, prompt string) (*Reply, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt is required")
	}
	log := clog.FromContext(ctx).With("model", o.model)

	decls := declarations(o.catalog.Definitions())
	config := &genai.GenerateContentConfig{
		Temperature:     ptr(o.temperature),
		MaxOutputTokens: o.maxOutputTokens,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: o.systemInstruction}},
		},
		Tools: []*genai.Tool{{FunctionDeclarations: decls}},
	}

	chat, err := o.client.Chats.Create(ctx, o.model, config, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat with model %q: %w", o.model, err)
	}

	reply := &Reply{}
	parts := []*genai.Part{{Text: prompt}}
	for turn := 1; turn <= o.maxTurns; turn++ {
		ctx := agenttrace.WithTurn(ctx, turn)
		log := log.With("turn", turn)

		resp, err := retry.Do(ctx, o.retryConfig, "send_message", googleprovider.IsTransient, func() (*genai.GenerateContentResponse, error) {
			return chat.Send(ctx, parts...)
		})
		o.metrics.RecordCall(ctx, o.model, err)
		if err != nil {
			return nil, fmt.Errorf("failed to send message: %w", err)
		}
		if u := resp.UsageMetadata; u != nil {
			o.metrics.RecordTokens(ctx, o.model, int64(u.PromptTokenCount), int64(u.CandidatesTokenCount))
			agenttrace.RecordTokenUsage(ctx, o.model, int64(u.PromptTokenCount), int64(u.CandidatesTokenCount))
		}

		if len(resp.Candidates) == 0 {
			return nil, errors.New("no content generated - no candidates")
		}
		candidate := resp.Candidates[0]

		if candidate.FinishReason == genai.FinishReasonMalformedFunctionCall {
			log.With("finish_message", candidate.FinishMessage).
				Warn("Model attempted a malformed function call, asking it to retry")
			names := make([]string, 0, len(decls))
			for _, d := range decls {
				names = append(names, d.Name)
			}
			parts = []*genai.Part{{Text: fmt.Sprintf("The function call was malformed. Please try again using the available functions: %v", names)}}
			continue
		}
		if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			return nil, fmt.Errorf("no content generated - finish reason %s", candidate.FinishReason)
		}

		var calls []*genai.FunctionCall
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			switch {
			case part.Thought:
			case part.FunctionCall != nil:
				calls = append(calls, part.FunctionCall)
			case part.Text != "":
				text.WriteString(part.Text)
			}
		}

		if len(calls) > 0 {
			parts = make([]*genai.Part, 0, len(calls))
			for _, call := range calls {
				resp, record, err := o.dispatch(ctx, call)
				if err != nil {
					return nil, err
				}
				if call.Name == RequestUserInput {
					reply.Pending, _ = resp.Response["message"].(string)
				}
				reply.ToolCalls = append(reply.ToolCalls, record)
				parts = append(parts, &genai.Part{FunctionResponse: resp})
			}
			continue
		}

		if s := strings.TrimSpace(text.String()); s != "" {
			reply.Text = s
			log.With("tool_calls", len(reply.ToolCalls)).Info("Model answered")
			return reply, nil
		}
		return nil, errors.New("unexpected response format from model")
	}
	return nil, fmt.Errorf("model did not answer within %d turns", o.maxTurns)
}

// dispatch executes one function call. The returned error is reserved for failures that
// must end the run, such as cancellation of ctx.
func (o *Orchestrator) dispatch(ctx context.Context, call *genai.FunctionCall) (*genai.FunctionResponse, ToolCall, error) {
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	log := clog.FromContext(ctx).With("tool", call.Name).With("id", call.ID)
	record := ToolCall{ID: call.ID, Name: call.Name}

	if call.Name == RequestUserInput {
		msg, errResp := param(call, "message", "")
		if errResp != nil {
			record.Response = errResp.Response
			return errResp, record, nil
		}
		resp := &genai.FunctionResponse{
			ID:   call.ID,
			Name: call.Name,
			Response: map[string]any{
				"status":  "pending",
				"message": msg,
			},
		}
		record.Response = resp.Response
		return resp, record, nil
	}

	query, errResp := param(call, "query", "")
	if errResp != nil {
		record.Response = errResp.Response
		return errResp, record, nil
	}
	record.Query = query

	log.Info("Executing tool call")
	res, err := o.catalog.Invoke(ctx, call.Name, query)
	var resp *genai.FunctionResponse
	switch {
	case errors.Is(err, patientctx.ErrNoActiveContext):
		log.Warn("Tool called without patient context")
		resp = &genai.FunctionResponse{
			ID:   call.ID,
			Name: call.Name,
			Response: map[string]any{
				"error":  err.Error(),
				"action": "Ask the user to load or select a patient before using clinical tools.",
			},
		}
	case errors.Is(err, tools.ErrUnknownTool):
		log.Error("Unknown function call requested by model")
		resp = errorResponse(call, "Unknown function: %s", call.Name)
	case err != nil:
		return nil, record, fmt.Errorf("invoking %s: %w", call.Name, err)
	default:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, record, ctxErr
		}
		resp = &genai.FunctionResponse{ID: call.ID, Name: call.Name, Response: res.Map()}
	}
	record.Response = resp.Response
	return resp, record, nil
}

func ptr[T any](v T) *T {
	return &v
}
