/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package clinicalschema

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"
	"google.golang.org/genai"
)

// Category names a result contract.
type Category string

// Built-in categories.
const (
	DiagnosticTrend                Category = "diagnostic-trend"
	DiagnosticStructuredExtraction Category = "diagnostic-structured-extraction"
	ArrhythmiaBurdenCategory       Category = "arrhythmia-burden"
	DifferentialDiagnosisCategory  Category = "differential-diagnosis"
	SpecialtyConsultCategory       Category = "specialty-consult"
	GuidelineAdherenceCategory     Category = "guideline-adherence"
	MedicationSafetyCategory       Category = "medication-safety"
	ClinicalNoteCategory           Category = "clinical-note"
	PatientSummaryCategory         Category = "patient-summary"
	BoardReviewCategory            Category = "board-review"
)

// Entry declares one category. Shape is a value of the result struct whose tags define
// the schema.
type Entry struct {
	Category    Category
	Description string
	Shape       any
}

// Builtins returns the entries of the default registry.
func Builtins() []Entry {
	return []Entry{
		{DiagnosticTrend, "Trend analysis of vital signs over time", VitalTrends{}},
		{DiagnosticStructuredExtraction, "Structured ECG interpretation", ECGAnalysis{}},
		{ArrhythmiaBurdenCategory, "Holter or patch monitor arrhythmia burden", ArrhythmiaBurden{}},
		{DifferentialDiagnosisCategory, "Ranked differential diagnosis with workup", DifferentialDiagnosis{}},
		{SpecialtyConsultCategory, "Specialist consultation note", SpecialtyConsult{}},
		{GuidelineAdherenceCategory, "Adherence to clinical practice guidelines", GuidelineAdherence{}},
		{MedicationSafetyCategory, "Drug interactions and contraindications", MedicationSafety{}},
		{ClinicalNoteCategory, "SOAP clinical note", ClinicalNote{}},
		{PatientSummaryCategory, "Patient summary with active alerts", PatientSummary{}},
		{BoardReviewCategory, "Multidisciplinary board consensus", BoardReview{}},
	}
}

// Descriptor is the compiled form of one category.
type Descriptor struct {
	Category    Category
	Description string

	schema   *jsonschema.Schema
	doc      []byte
	compiled *jsv.Schema
	genai    *genai.Schema
}

// JSONSchema returns the reflected JSON schema.
func (d *Descriptor) JSONSchema() *jsonschema.Schema {
	return d.schema
}

// SchemaJSON returns the schema document, suitable for embedding in a prompt.
func (d *Descriptor) SchemaJSON() json.RawMessage {
	return slices.Clone(d.doc)
}

// GenAISchema returns the schema in the form Gemini takes as a response schema.
func (d *Descriptor) GenAISchema() *genai.Schema {
	return d.genai
}

// Required returns the top-level required field names.
func (d *Descriptor) Required() []string {
	return slices.Clone(d.schema.Required)
}

// Registry maps categories to descriptors. It is immutable once built and safe for
// concurrent use.
type Registry struct {
	byCategory map[Category]*Descriptor
	order      []Category
}

// New compiles the given entries into a registry.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{byCategory: make(map[Category]*Descriptor, len(entries))}
	for _, e := range entries {
		if e.Category == "" {
			return nil, fmt.Errorf("entry with empty category")
		}
		if _, dup := r.byCategory[e.Category]; dup {
			return nil, fmt.Errorf("duplicate category %q", e.Category)
		}
		if e.Shape == nil {
			return nil, fmt.Errorf("category %q has no shape", e.Category)
		}

		s := reflectSchema(e.Shape)
		compiled, doc, err := compile(string(e.Category), s)
		if err != nil {
			return nil, err
		}
		r.byCategory[e.Category] = &Descriptor{
			Category:    e.Category,
			Description: e.Description,
			schema:      s,
			doc:         doc,
			compiled:    compiled,
			genai:       toGenAI(s),
		}
		r.order = append(r.order, e.Category)
	}
	return r, nil
}

// Must panics when New fails. Use it for package-level registries.
func Must(r *Registry, err error) *Registry {
	if err != nil {
		panic(err)
	}
	return r
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return New(Builtins()...)
})

// Default returns the process-wide registry of built-in categories.
func Default() *Registry {
	return Must(defaultRegistry())
}

// Descriptor returns the descriptor for category c.
func (r *Registry) Descriptor(c Category) (*Descriptor, bool) {
	d, ok := r.byCategory[c]
	return d, ok
}

// Categories returns the registered categories in registration order.
func (r *Registry) Categories() []Category {
	return slices.Clone(r.order)
}
