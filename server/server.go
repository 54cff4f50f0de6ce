/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package server exposes the clinical tools over HTTP.
//
// Every route runs behind PatientContext, so the tool catalog and the orchestrator see
// the patient of the request that reached them and nothing else.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"medisnap.dev/medisnap/agents/agenttrace"
	"medisnap.dev/medisnap/agents/orchestrator"
	"medisnap.dev/medisnap/agents/patientctx"
	"medisnap.dev/medisnap/agents/tools"
)

const defaultMaxBody = 1 << 20

var feedbackCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "medisnap_feedback_total",
		Help: "Feedback submissions received, by score rounded and clamped to 1-5",
	},
	[]string{"score"},
)

// Chatter answers a free-form prompt. orchestrator.Orchestrator implements it.
type Chatter interface {
	Run(ctx context.Context, prompt string) (*orchestrator.Reply, error)
}

// Server routes HTTP requests to the tool catalog and the orchestrator.
type Server struct {
	catalog *tools.Catalog
	chat    Chatter
	card    AgentCard
	maxBody int64
}

// Option is a functional option for configuring a Server
type Option func(*Server) error

// WithChat enables POST /chat.
func WithChat(c Chatter) Option {
	return func(s *Server) error {
		if c == nil {
			return errors.New("chatter cannot be nil")
		}
		s.chat = c
		return nil
	}
}

// WithAgentCard sets the identity served at /.well-known/agent-card.json. Skills are
// filled from the catalog when the card lists none.
func WithAgentCard(card AgentCard) Option {
	return func(s *Server) error {
		if card.Name == "" {
			return errors.New("agent card name is required")
		}
		s.card = card
		return nil
	}
}

// WithMaxBody bounds request bodies.
func WithMaxBody(n int64) Option {
	return func(s *Server) error {
		if n <= 0 {
			return fmt.Errorf("max body must be positive, got %d", n)
		}
		s.maxBody = n
		return nil
	}
}

// New creates a server over catalog.
func New(catalog *tools.Catalog, opts ...Option) (*Server, error) {
	if catalog == nil {
		return nil, errors.New("tool catalog is required")
	}
	s := &Server{
		catalog: catalog,
		card:    defaultCard(),
		maxBody: defaultMaxBody,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	if len(s.card.Skills) == 0 {
		s.card.Skills = skills(catalog.Definitions())
	}
	return s, nil
}

// Handler returns the routes wrapped in the request boundary.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /.well-known/agent-card.json", s.handleAgentCard)
	mux.HandleFunc("GET /tools", s.handleListTools)
	mux.HandleFunc("POST /tools/{name}", s.handleInvoke)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /feedback", s.handleFeedback)
	return PatientContext(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAgentCard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.card)
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	defs := s.catalog.Definitions()
	out := make([]toolInfo, 0, len(defs))
	for _, d := range defs {
		out = append(out, toolInfo{Name: d.Name, Description: d.Description, Category: string(d.Category)})
	}
	writeJSON(w, http.StatusOK, out)
}

type invokeRequest struct {
	Query string `json:"query"`
}

// handleInvoke answers 200 with the tool result, whether it holds a value or an error
// envelope. Only a missing patient scope or an unknown tool change the status.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	var req invokeRequest
	if !s.decode(w, r, &req, true) {
		return
	}
	name := r.PathValue("name")

	res, err := s.catalog.Invoke(r.Context(), name, req.Query)
	switch {
	case errors.Is(err, patientctx.ErrNoActiveContext):
		writeError(w, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, tools.ErrUnknownTool):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		clog.FromContext(r.Context()).With("tool", name).With("error", err).Error("Tool invocation failed")
		writeError(w, http.StatusInternalServerError, "tool invocation failed")
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusNotImplemented, "chat is not configured")
		return
	}
	var req chatRequest
	if !s.decode(w, r, &req, false) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	ctx := r.Context()
	execCtx := agenttrace.GetExecutionContext(ctx)
	execCtx.Surface = agenttrace.SurfaceChat
	ctx = agenttrace.WithExecutionContext(ctx, execCtx)

	reply, err := s.chat.Run(ctx, req.Prompt)
	if err != nil {
		clog.FromContext(ctx).With("error", err).Error("Chat failed")
		writeError(w, http.StatusBadGateway, "the assistant could not answer")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// Feedback is a clinician's rating of an answer.
type Feedback struct {
	Score     float64 `json:"score"`
	Text      string  `json:"text,omitempty"`
	UserID    string  `json:"user_id,omitempty"`
	SessionID string  `json:"session_id,omitempty"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var fb Feedback
	if !s.decode(w, r, &fb, false) {
		return
	}
	clog.FromContext(r.Context()).
		With("log_type", "feedback").
		With("score", fb.Score).
		With("text", fb.Text).
		With("user_id", fb.UserID).
		With("session_id", fb.SessionID).
		Info("Feedback received")
	feedbackCounter.WithLabelValues(scoreLabel(fb.Score)).Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// scoreLabel maps a client-supplied score onto the fixed label set "1" through "5".
func scoreLabel(score float64) string {
	return strconv.Itoa(int(min(max(math.Round(score), 1), 5)))
}

// decode reads a JSON body into v. An empty body is accepted when allowEmpty is set.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil:
		return true
	case allowEmpty && errors.Is(err, io.EOF):
		return true
	}
	writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
