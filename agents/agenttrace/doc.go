/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace traces tool invocations.

Each invocation gets an OpenTelemetry span named "tool.invocation" and, once complete, is
handed to the Tracer found in the context. Without one, invocations are logged through
clog.

	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		RequestID: requestID,
		Surface:   agenttrace.SurfaceHTTP,
	})

	ctx, inv := agenttrace.StartInvocation(ctx, "analyze_ecg", query)
	res, err := run(ctx)
	inv.Complete(res, err)

Provider packages call RecordTokenUsage with the context they were given, which annotates
the invocation span.
*/
package agenttrace
