/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package patientctx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Patient is the clinical record a request carries. It is decoded once at the request
// boundary and is read-only for the rest of the request.
type Patient struct {
	Name           string         `json:"name,omitempty" yaml:"name,omitempty"`
	Age            Age            `json:"age,omitempty" yaml:"age,omitempty"`
	Gender         string         `json:"gender,omitempty" yaml:"gender,omitempty"`
	CurrentStatus  Status         `json:"currentStatus" yaml:"currentStatus"`
	Allergies      any            `json:"allergies,omitempty" yaml:"allergies,omitempty"`
	Reports        []Report       `json:"reports,omitempty" yaml:"-"`
	MedicalHistory []HistoryEntry `json:"medicalHistory,omitempty" yaml:"medicalHistory,omitempty"`

	raw map[string]any
}

// Status is the patient's current clinical state.
type Status struct {
	Condition   string       `json:"condition,omitempty" yaml:"condition,omitempty"`
	Vitals      any          `json:"vitals,omitempty" yaml:"vitals,omitempty"`
	Medications []Medication `json:"medications,omitempty" yaml:"medications,omitempty"`
	Symptoms    []string     `json:"symptoms,omitempty" yaml:"symptoms,omitempty"`
}

// HistoryEntry is one item of the patient's medical history.
type HistoryEntry struct {
	Date        string `json:"date,omitempty" yaml:"date,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Medication is one entry of the medication list. Payloads send either a bare string
// ("Lisinopril") or an object with name, dose and frequency.
type Medication string

// UnmarshalJSON implements json.Unmarshaler.
func (m *Medication) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Medication(s)
		return nil
	}
	var obj struct {
		Name      string `json:"name"`
		Dose      string `json:"dose"`
		Frequency string `json:"frequency"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("medication must be a string or an object: %w", err)
	}
	parts := make([]string, 0, 3)
	for _, s := range []string{obj.Name, obj.Dose, obj.Frequency} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	*m = Medication(strings.Join(parts, " "))
	return nil
}

// Age accepts either a JSON number or a JSON string.
type Age string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Age(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("age must be a number or a string: %w", err)
	}
	*a = Age(n.String())
	return nil
}

// Years returns the age as an integer when it is numeric.
func (a Age) Years() (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(a)), 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// Decode parses a JSON object into a Patient. Anything other than an object is rejected.
func Decode(data []byte) (*Patient, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing patient JSON: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("patient payload must be a JSON object, got %T", raw)
	}

	p := &Patient{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decoding patient record: %w", err)
	}
	p.raw = obj
	return p, nil
}

// Raw returns the field of the original payload with the given name.
func (p *Patient) Raw(field string) (any, bool) {
	if p == nil || p.raw == nil {
		return nil, false
	}
	v, ok := p.raw[field]
	return v, ok
}

// HistorySummary joins the history descriptions with ", ".
func (p *Patient) HistorySummary() string {
	parts := make([]string, 0, len(p.MedicalHistory))
	for _, h := range p.MedicalHistory {
		if h.Description != "" {
			parts = append(parts, h.Description)
		}
	}
	return strings.Join(parts, ", ")
}
