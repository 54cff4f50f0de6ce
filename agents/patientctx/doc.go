/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package patientctx carries the patient record of the current request to tool code
without threading it through the agent's reasoning loop.

A scope is opened once per inbound request and closed when the request ends:

	ctx, handle := patientctx.Open(r.Context(), patient)
	defer func() {
	    if err := patientctx.Close(handle); err != nil {
	        clog.FromContext(ctx).Errorf("closing patient scope: %v", err)
	    }
	}()

Anything reached with that context (or a context derived from it) can read the record:

	patient, err := patientctx.Current(ctx)
	if err != nil {
	    // errors.Is(err, patientctx.ErrNoActiveContext)
	}

# Isolation

Scopes live in the request's own context.Context, so two requests served concurrently
never observe each other's patient, regardless of how goroutines are scheduled. There is
no process-wide map and no lock on the read path.

# Scope hygiene

Closing a scope hides it from every context derived from it; Current then resolves to the
enclosing scope, or fails with ErrNoActiveContext when there is none. Closing the zero
Handle, closing twice, or closing an outer scope while a nested one is still open are
programming errors and are reported as such.

# Records

Patient is a read-only view over the decoded payload. Fields the typed view does not name
remain reachable through Raw. Reports expose their text regardless of whether the content
is a plain string or a tagged pdf/link object, and MostRecent selects by recency with a
documented tie-break.
*/
package patientctx
