/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package toolreport aggregates tool invocations and renders them as markdown tables.

A Collector is an agenttrace.Tracer. Install it with agenttrace.WithTracer and every
invocation started under that context is counted per tool:

	collector := toolreport.NewCollector(agenttrace.NewDefaultTracer(ctx))
	ctx = agenttrace.WithTracer(ctx, collector)

	// ... invoke tools ...

	fmt.Print(toolreport.Markdown(collector.Stats()))

Catalog renders the tool definitions themselves, which is how the command line lists
what a deployment exposes.
*/
package toolreport
