/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolreport

import (
	"sync"
	"time"

	"medisnap.dev/medisnap/agents/agenttrace"
)

// Stats summarizes the invocations of one tool.
type Stats struct {
	Tool          string
	Invocations   int
	OK            int
	Failed        int
	Errors        int
	ProviderCalls int
	Total         time.Duration
	// Reasons holds the failure reason of every failed invocation, in order.
	Reasons []string
}

// Average returns the mean invocation latency.
func (s Stats) Average() time.Duration {
	if s.Invocations == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Invocations)
}

// Collector wraps a Tracer and aggregates the invocations it sees by tool.
type Collector struct {
	inner  agenttrace.Tracer
	mu     sync.Mutex
	byTool map[string]*Stats
	order  []string
}

var _ agenttrace.Tracer = (*Collector)(nil)

// NewCollector creates a Collector that forwards to inner, which may be nil.
func NewCollector(inner agenttrace.Tracer) *Collector {
	return &Collector{
		inner:  inner,
		byTool: make(map[string]*Stats),
	}
}

// RecordInvocation implements agenttrace.Tracer.
func (c *Collector) RecordInvocation(inv *agenttrace.Invocation) {
	if c.inner != nil {
		c.inner.RecordInvocation(inv)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.byTool[inv.Tool]
	if !ok {
		s = &Stats{Tool: inv.Tool}
		c.byTool[inv.Tool] = s
		c.order = append(c.order, inv.Tool)
	}
	s.Invocations++
	s.ProviderCalls += inv.Calls
	s.Total += inv.Duration()
	switch inv.Outcome {
	case agenttrace.OutcomeOK:
		s.OK++
	case agenttrace.OutcomeFailed:
		s.Failed++
		s.Reasons = append(s.Reasons, inv.Reason)
	default:
		s.Errors++
		if inv.Error != nil {
			s.Reasons = append(s.Reasons, inv.Error.Error())
		}
	}
}

// Stats returns a copy of the collected statistics in the order tools were first seen.
func (c *Collector) Stats() []Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Stats, 0, len(c.order))
	for _, name := range c.order {
		s := *c.byTool[name]
		s.Reasons = append([]string(nil), s.Reasons...)
		out = append(out, s)
	}
	return out
}
