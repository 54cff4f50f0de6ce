/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package tools implements the clinical tool procedures the orchestrating agent calls.

Every tool follows the same steps:

 1. Read the patient from the request scope (patientctx.Current). Without one, Invoke
    returns patientctx.ErrNoActiveContext.
 2. Select the part of the record the tool needs. When a required report is missing the
    tool returns a not-found result without calling the provider.
 3. Compose a task and make exactly one generation provider call.
 4. Validate the output against the tool's result schema.

Failures in steps 2 to 4 are results, not errors, so the agent can explain them.

# Report selection

Tools that read "the most recent report of type T" sort reports by date, newest first,
and take the first match. Reports with the same date keep the order the payload listed
them in. Dates are compared as timestamps when they parse and as strings otherwise.

# Specialty consults

The consult_* tools are generated from a table of Specialty values. Each consult reads at
most 8 of the newest reports, cut to 300 characters each. WithSpecialty adds rows to the
table.
*/
package tools
