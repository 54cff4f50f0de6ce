/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"errors"
	"fmt"
	"time"

	"medisnap.dev/medisnap/agents/clinicalschema"
	"medisnap.dev/medisnap/agents/metrics"
)

// Option is a functional option for configuring a Catalog
type Option func(*Catalog) error

// WithRegistry replaces the schema registry. It must hold every built-in category.
func WithRegistry(r *clinicalschema.Registry) Option {
	return func(c *Catalog) error {
		if r == nil {
			return errors.New("registry cannot be nil")
		}
		c.registry = r
		return nil
	}
}

// WithSpecialty adds a consult tool for s next to the default specialties.
func WithSpecialty(s Specialty) Option {
	return func(c *Catalog) error {
		if err := s.validate(); err != nil {
			return err
		}
		c.specialties = append(c.specialties, s)
		return nil
	}
}

// WithGenerationTimeout bounds each provider call. Zero means the call is bounded only by
// the request context.
func WithGenerationTimeout(d time.Duration) Option {
	return func(c *Catalog) error {
		if d < 0 {
			return fmt.Errorf("generation timeout cannot be negative, got %v", d)
		}
		c.timeout = d
		return nil
	}
}

// WithAttributeEnricher sets a custom attribute enricher for tool metrics.
func WithAttributeEnricher(enricher metrics.AttributeEnricher) Option {
	return func(c *Catalog) error {
		c.metrics.SetAttributeEnricher(enricher)
		return nil
	}
}
