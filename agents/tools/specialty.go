/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"errors"
	"fmt"
	"regexp"

	"medisnap.dev/medisnap/agents/clinicalschema"
	"medisnap.dev/medisnap/agents/patientctx"
	"medisnap.dev/medisnap/agents/taskprompt"
	"medisnap.dev/medisnap/agents/toolresult"
)

const (
	consultReports = 8
	consultBudget  = 300
)

// Specialty parameterizes one consult tool. Every consult runs the same algorithm; only
// these constants differ.
type Specialty struct {
	// Name is the tool suffix: the tool is called "consult_" + Name.
	Name string
	// Label is the human-readable specialty, e.g. "Infectious Disease".
	Label string
	// Role is the sentence that frames the model as the specialist.
	Role string
}

// ToolName returns the name of the consult tool for s.
func (s Specialty) ToolName() string {
	return "consult_" + s.Name
}

var specialtyName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func (s Specialty) validate() error {
	switch {
	case !specialtyName.MatchString(s.Name):
		return fmt.Errorf("specialty name %q must be lower_snake_case", s.Name)
	case s.Label == "":
		return errors.New("specialty label is required")
	case s.Role == "":
		return errors.New("specialty role is required")
	}
	return nil
}

// DefaultSpecialties returns the built-in consult table.
func DefaultSpecialties() []Specialty {
	return []Specialty{
		{"cardiology", "Cardiology", "You are an expert Cardiologist."},
		{"neurology", "Neurology", "You are an expert Neurologist. Focus on CNS/PNS."},
		{"oncology", "Oncology", "You are an expert Oncologist. Focus on malignancy."},
		{"gastroenterology", "Gastroenterology", "You are an expert Gastroenterologist."},
		{"pulmonology", "Pulmonology", "You are an expert Pulmonologist."},
		{"endocrinology", "Endocrinology", "You are an expert Endocrinologist."},
		{"nephrology", "Nephrology", "You are an expert Nephrologist. Focus on renal function."},
		{"hematology", "Hematology", "You are an expert Hematologist."},
		{"infectious_disease", "Infectious Disease", "You are an expert in Infectious Diseases."},
	}
}

var consultTask = taskprompt.MustNew(`{{role}}

Patient:
{{patient}}

Query: {{query}}

Available data snippets (newest first):
{{reports}}

Task:
1. Analyze the case from the {{label}} perspective.
2. Identify pertinent findings, each with a label, a value and a status.
3. Provide an assessment and an ordered plan.
4. Return JSON.`)

func consultTool(s Specialty) *tool {
	return &tool{
		Definition: Definition{
			Name:        s.ToolName(),
			Description: fmt.Sprintf("Requests a %s consultation on the current patient.", s.Label),
			Category:    clinicalschema.SpecialtyConsultCategory,
		},
		failure: s.Label + " consult failed",
		prepare: func(p *patientctx.Patient, query string) (string, *toolresult.Result, error) {
			task, err := consultTask.Render(
				taskprompt.Text("role", s.Role),
				taskprompt.Text("label", s.Label),
				patientBinding(p),
				queryBinding(query),
				taskprompt.Lines("reports", reportWindow(p.Reports, consultReports, consultBudget), "No reports available."),
			)
			return task, nil, err
		},
	}
}
