/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"medisnap.dev/medisnap/agents/clinicalschema"
	"medisnap.dev/medisnap/agents/patientctx"
	"medisnap.dev/medisnap/agents/taskprompt"
	"medisnap.dev/medisnap/agents/toolresult"
)

// Placeholder answers. These tools have no generation algorithm yet; they still require a
// patient scope and return values that satisfy their schemas.
const (
	summaryPlaceholder     = "Patient summary generation is not available yet. Use generate_clinical_note for a structured note."
	boardReviewPlaceholder = "Board review is not available yet. Request individual specialty consults instead."
)

var clinicalNoteTask = taskprompt.MustNew(`Generate a SOAP note for this encounter.

Patient:
{{patient}}

Vital data:
{{vitals}}

Instructions: {{query}}

Create a professional clinical note. Format it as JSON with subjective, objective,
assessment and plan.`)

func workflowTools() []*tool {
	return []*tool{{
		Definition: Definition{
			Name:        "generate_clinical_note",
			Description: "Generates a structured SOAP note for the current encounter context.",
			Category:    clinicalschema.ClinicalNoteCategory,
		},
		failure: "Note generation failed",
		prepare: func(p *patientctx.Patient, query string) (string, *toolresult.Result, error) {
			task, err := clinicalNoteTask.Render(
				patientBinding(p),
				dataBinding("vitals", p.CurrentStatus.Vitals, "No recent vitals available."),
				queryBinding(query),
			)
			return task, nil, err
		},
	}, {
		Definition: Definition{
			Name:        "generate_patient_summary",
			Description: "Generates a summary of the patient's status, including critical alerts.",
			Category:    clinicalschema.PatientSummaryCategory,
		},
		failure: "Summary generation failed",
		fixed: func(*patientctx.Patient, string) map[string]any {
			return map[string]any{"summary": summaryPlaceholder, "alerts": []string{}}
		},
	}, {
		Definition: Definition{
			Name:        "run_medical_board_review",
			Description: "Simulates a multi-specialist board review.",
			Category:    clinicalschema.BoardReviewCategory,
		},
		failure: "Board review failed",
		fixed: func(*patientctx.Patient, string) map[string]any {
			return map[string]any{"consensus": boardReviewPlaceholder}
		},
	}}
}
