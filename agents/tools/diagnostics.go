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

const (
	differentialReports = 5
	differentialBudget  = 200
)

// Report types read by the diagnostic tools. Matching is case-insensitive.
var (
	ecgTypes     = []string{"ECG", "EKG"}
	monitorTypes = []string{"Holter", "Patch", "Monitor"}
)

var vitalTrendsTask = taskprompt.MustNew(`You are an expert cardiologist AI. Analyze the patient's vital signs.

Patient:
{{patient}}

Query: {{query}}

Vital data:
{{vitals}}

Task:
1. Identify trends in BP, HR, weight and other recorded measurements.
2. Correlate them with the current medications where possible.
3. Give an overall assessment: Stable, Unstable, Improving or Deteriorating.
4. Return JSON.`)

var differentialTask = taskprompt.MustNew(`You are a world-class diagnostic AI. Formulate a differential diagnosis.

Patient:
{{patient}}

Presenting condition or query: {{query}}

Recent reports:
{{reports}}

Task:
1. List the top 3-5 differentials ranked by likelihood (High, Medium, Low).
2. For each, explain the reason for and the reason against.
3. Recommend the next diagnostic steps.
4. Return JSON.`)

var ecgTask = taskprompt.MustNew(`You are an expert electrophysiologist. Analyze this ECG report.

Patient:
{{patient}}

Query: {{query}}

Report date: {{date}}
Report content:
{{content}}

Task:
1. Identify the rhythm (sinus, AFib, flutter, etc.).
2. Measure the PR, QRS and QTc intervals if available.
3. Note ST/T changes.
4. Provide an interpretation and flag findings that need immediate attention as a critical alert.`)

var arrhythmiaTask = taskprompt.MustNew(`Analyze this ambulatory monitor report for arrhythmia burden.

Patient:
{{patient}}

Query: {{query}}

Report date: {{date}}
Report content:
{{content}}

Extract the AFib burden in percent, total PVCs, PACs and pauses, then interpret them.`)

func diagnosticTools() []*tool {
	return []*tool{{
		Definition: Definition{
			Name:        "analyze_vital_trends",
			Description: "Analyzes the patient's vital signs (BP, HR, etc.) to identify trends and clinical significance.",
			Category:    clinicalschema.DiagnosticTrend,
		},
		failure: "Failed to analyze vitals",
		prepare: func(p *patientctx.Patient, query string) (string, *toolresult.Result, error) {
			task, err := vitalTrendsTask.Render(
				patientBinding(p),
				queryBinding(query),
				dataBinding("vitals", p.CurrentStatus.Vitals, "No recent vitals available."),
			)
			return task, nil, err
		},
	}, {
		Definition: Definition{
			Name:        "analyze_differential_diagnosis",
			Description: "Generates a differential diagnosis based on the patient's current symptoms and history.",
			Category:    clinicalschema.DifferentialDiagnosisCategory,
		},
		failure: "Failed to generate DDx",
		prepare: func(p *patientctx.Patient, query string) (string, *toolresult.Result, error) {
			task, err := differentialTask.Render(
				patientBinding(p),
				queryBinding(query),
				taskprompt.Lines("reports", reportWindow(p.Reports, differentialReports, differentialBudget), "No reports available."),
			)
			return task, nil, err
		},
	}, {
		Definition: Definition{
			Name:        "analyze_ecg",
			Description: "Analyzes the most recent ECG report for arrhythmias and conduction abnormalities.",
			Category:    clinicalschema.DiagnosticStructuredExtraction,
		},
		failure: "Failed to analyze ECG",
		prepare: latestReport(ecgTask, ecgTypes, "No ECG report found for this patient."),
	}, {
		Definition: Definition{
			Name:        "analyze_arrhythmia_burden",
			Description: "Analyzes Holter/monitor reports to quantify arrhythmia burden (AFib %, PVCs, PACs).",
			Category:    clinicalschema.ArrhythmiaBurdenCategory,
		},
		failure: "Failed to analyze arrhythmia",
		prepare: latestReport(arrhythmiaTask, monitorTypes, "No Holter/Monitor report found."),
	}}
}

// latestReport prepares a task around the most recent report of one of types, or
// short-circuits with notFound when the record has none.
func latestReport(tmpl *taskprompt.Template, types []string, notFound string) prepareFunc {
	return func(p *patientctx.Patient, query string) (string, *toolresult.Result, error) {
		r, ok := patientctx.MostRecent(p.Reports, types...)
		if !ok {
			res := toolresult.NotFound("%s", notFound)
			return "", &res, nil
		}
		task, err := tmpl.Render(
			patientBinding(p),
			queryBinding(query),
			taskprompt.Text("date", r.Date),
			taskprompt.Text("content", r.Text()),
		)
		return task, nil, err
	}
}
