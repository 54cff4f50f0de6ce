/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package orchestrator runs the conversational agent that decides which clinical tools to
// call.
//
// The orchestrator sends the clinician's prompt to Gemini with one function declaration
// per tool in a tools.Catalog, plus request_user_input. Every function call the model
// makes is dispatched to Catalog.Invoke with the request context, so the tool sees the
// patient scope opened at the request boundary. Tool results go back to the model as
// function responses: the result value on success and {"error": reason} on failure. When
// no patient scope is open, the model is told to ask the user for patient data instead.
//
// The loop ends when the model answers with text, or fails after the configured number
// of turns.
//
//	orch, err := orchestrator.New(client, catalog,
//		orchestrator.WithModel("gemini-2.5-pro"),
//		orchestrator.WithMaxTurns(8),
//	)
//	if err != nil {
//		return err
//	}
//	reply, err := orch.Run(ctx, "Is this patient on guideline-directed therapy?")
package orchestrator
