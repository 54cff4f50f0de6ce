/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package taskprompt composes the task text a tool hands to a generation provider.

A Template is parsed once from a string literal and rendered per request with bindings:

	var vitalsTask = taskprompt.MustNew(`Analyze the vital sign trends for this patient.

	Patient:
	{{patient}}

	Question: {{query}}`)

	task, err := vitalsTask.Render(
		taskprompt.YAML("patient", snapshot),
		taskprompt.Text("query", query),
	)

Render fails when a placeholder is left unbound, bound twice, or when a binding names a
placeholder the template does not have.
*/
package taskprompt
