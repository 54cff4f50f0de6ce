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

const labBudget = 600

var labTypes = []string{"Lab", "Labs", "Laboratory"}

var guidelineTask = taskprompt.MustNew(`You are an expert in clinical guidelines (ACC/AHA/ESC/ADA).
Check guideline adherence for this patient.

Patient:
{{patient}}

Query: {{query}}

Task:
1. Identify the relevant guideline (e.g. HFrEF GDMT).
2. Check whether the patient is on every recommended pillar of therapy.
3. Identify gaps as missing therapy classes.
4. List contraindications found in the history.

Return JSON with guidelineName, adherenceStatus (Fully Adherent, Partial or Non-Adherent),
missingTherapies (a list, empty when nothing is missing) and recommendations.`)

var dosageTask = taskprompt.MustNew(`You are an expert in clinical guidelines (ACC/AHA/ESC/ADA).
Review the current doses against guideline targets and suggest titration.

Patient:
{{patient}}

Vital data:
{{vitals}}

Query: {{query}}

Task:
1. Identify the relevant guideline and its target doses.
2. Decide whether each therapy is at target, below target, or missing.
3. Recommend up- or down-titration steps the vitals allow.

Return JSON with guidelineName, adherenceStatus (Fully Adherent, Partial or Non-Adherent),
missingTherapies (a list, empty when nothing is missing) and recommendations.`)

var medicationSafetyTask = taskprompt.MustNew(`Medication safety check.

Patient:
{{patient}}

Vital data:
{{vitals}}

Most recent labs:
{{labs}}

Query: {{query}}

Check for:
1. Drug-drug interactions (major or moderate).
2. Drug-disease interactions and allergy conflicts.
3. Dosage concerns, using renal function when the labs report it.`)

func treatmentTools() []*tool {
	return []*tool{{
		Definition: Definition{
			Name:        "check_guideline_adherence",
			Description: "Checks if the patient's treatment adheres to current clinical guidelines (e.g., GDMT for HF).",
			Category:    clinicalschema.GuidelineAdherenceCategory,
		},
		failure: "Guideline check failed",
		prepare: func(p *patientctx.Patient, query string) (string, *toolresult.Result, error) {
			task, err := guidelineTask.Render(patientBinding(p), queryBinding(query))
			return task, nil, err
		},
	}, {
		Definition: Definition{
			Name:        "check_medication_safety",
			Description: "Analyzes the medication list for interactions, contraindications, and dosage issues.",
			Category:    clinicalschema.MedicationSafetyCategory,
		},
		failure: "Safety check failed",
		prepare: func(p *patientctx.Patient, query string) (string, *toolresult.Result, error) {
			labs := "No lab report available."
			if r, ok := patientctx.MostRecent(p.Reports, labTypes...); ok {
				labs = r.Date + ": " + r.Excerpt(labBudget)
			}
			task, err := medicationSafetyTask.Render(
				patientBinding(p),
				dataBinding("vitals", p.CurrentStatus.Vitals, "No recent vitals available."),
				taskprompt.Text("labs", labs),
				queryBinding(query),
			)
			return task, nil, err
		},
	}, {
		Definition: Definition{
			Name:        "optimize_dosage",
			Description: "Suggests dosage optimizations based on vitals and guidelines (e.g., up-titration).",
			Category:    clinicalschema.GuidelineAdherenceCategory,
		},
		failure: "Dosage optimization failed",
		prepare: func(p *patientctx.Patient, query string) (string, *toolresult.Result, error) {
			task, err := dosageTask.Render(
				patientBinding(p),
				dataBinding("vitals", p.CurrentStatus.Vitals, "No recent vitals available."),
				queryBinding(query),
			)
			return task, nil, err
		},
	}}
}
