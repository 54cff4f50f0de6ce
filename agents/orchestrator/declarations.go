/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package orchestrator

import (
	"fmt"

	"google.golang.org/genai"

	"medisnap.dev/medisnap/agents/tools"
)

// RequestUserInput is the tool the model calls to ask the clinician a question.
const RequestUserInput = "request_user_input"

// declarations builds one function declaration per catalog tool, followed by
// request_user_input.
func declarations(defs []tools.Definition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs)+1)
	for _, d := range defs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {
						Type:        genai.TypeString,
						Description: "The specific clinical question for this tool.",
					},
				},
			},
		})
	}
	decls = append(decls, &genai.FunctionDeclaration{
		Name:        RequestUserInput,
		Description: "Asks the clinician for missing information or a decision before continuing.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"message": {
					Type:        genai.TypeString,
					Description: "The question to show the clinician.",
				},
			},
			Required: []string{"message"},
		},
	})
	return decls
}

// param extracts an argument from a function call. A missing argument yields def; an
// argument of the wrong type yields an error response for the model.
func param[T any](call *genai.FunctionCall, name string, def T) (T, *genai.FunctionResponse) {
	value, exists := call.Args[name]
	if !exists {
		return def, nil
	}
	if v, ok := value.(T); ok {
		return v, nil
	}
	var zero T
	return zero, errorResponse(call, "%s parameter must be of type %T, got %T", name, zero, value)
}

// errorResponse creates a FunctionResponse with an error message.
func errorResponse(call *genai.FunctionCall, format string, args ...any) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   call.ID,
		Name: call.Name,
		Response: map[string]any{
			"error": fmt.Sprintf(format, args...),
		},
	}
}
