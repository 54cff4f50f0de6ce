/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package clinicalschema

// The types below are the result contracts. Their JSON schemas are reflected from the
// struct tags: `jsonschema:"required"` marks a field the provider must return.

// VitalTrends is the diagnostic-trend result.
type VitalTrends struct {
	Trends          []Trend  `json:"trends" jsonschema:"required"`
	Assessment      string   `json:"assessment" jsonschema:"required,description=Overall assessment: Stable/Unstable/Improving/Deteriorating"`
	Recommendations []string `json:"recommendations" jsonschema:"required"`
}

// Trend is one vital sign trend.
type Trend struct {
	Metric       string `json:"metric" jsonschema:"required"`
	Trend        string `json:"trend" jsonschema:"required,description=e.g. Uptrend or Stable"`
	Significance string `json:"significance" jsonschema:"required"`
}

// ECGAnalysis is the diagnostic-structured-extraction result.
type ECGAnalysis struct {
	Rhythm         string     `json:"rhythm" jsonschema:"required,description=Sinus/AFib/Flutter etc."`
	Intervals      *Intervals `json:"intervals,omitempty"`
	STTChanges     string     `json:"st_t_changes,omitempty"`
	Interpretation string     `json:"interpretation" jsonschema:"required"`
	CriticalAlert  bool       `json:"criticalAlert" jsonschema:"required"`
}

// Intervals are the measured ECG intervals.
type Intervals struct {
	PR  string `json:"pr,omitempty"`
	QRS string `json:"qrs,omitempty"`
	QTc string `json:"qtc,omitempty"`
}

// ArrhythmiaBurden is the Holter/monitor burden result.
type ArrhythmiaBurden struct {
	AFibBurden     string `json:"afibBurden" jsonschema:"required"`
	PVCCount       string `json:"pvcCount,omitempty"`
	PACCount       string `json:"pacCount,omitempty"`
	Pauses         string `json:"pauses,omitempty"`
	Interpretation string `json:"interpretation" jsonschema:"required"`
}

// DifferentialDiagnosis is the ranked differential result.
type DifferentialDiagnosis struct {
	Differentials     []Differential `json:"differentials" jsonschema:"required"`
	RecommendedWorkup []string       `json:"recommendedWorkup" jsonschema:"required"`
	ClinicalReasoning string         `json:"clinicalReasoning" jsonschema:"required"`
}

// Differential is one candidate diagnosis.
type Differential struct {
	Condition     string `json:"condition" jsonschema:"required"`
	Likelihood    string `json:"likelihood" jsonschema:"required,description=High/Medium/Low"`
	ReasonFor     string `json:"reasonFor" jsonschema:"required"`
	ReasonAgainst string `json:"reasonAgainst" jsonschema:"required"`
}

// SpecialtyConsult is the result of every specialty consult.
type SpecialtyConsult struct {
	Title       string    `json:"title" jsonschema:"required"`
	KeyFindings []Finding `json:"keyFindings" jsonschema:"required"`
	Assessment  string    `json:"assessment" jsonschema:"required"`
	Plan        []string  `json:"plan" jsonschema:"required"`
}

// Finding is one labeled consult finding.
type Finding struct {
	Label  string `json:"label" jsonschema:"required"`
	Value  string `json:"value" jsonschema:"required"`
	Status string `json:"status" jsonschema:"required"`
}

// Adherence statuses.
const (
	FullyAdherent = "Fully Adherent"
	Partial       = "Partial"
	NonAdherent   = "Non-Adherent"
)

// GuidelineAdherence is the guideline-adherence result.
type GuidelineAdherence struct {
	GuidelineName    string   `json:"guidelineName" jsonschema:"required"`
	AdherenceStatus  string   `json:"adherenceStatus" jsonschema:"required,enum=Fully Adherent,enum=Partial,enum=Non-Adherent"`
	MissingTherapies []string `json:"missingTherapies" jsonschema:"required"`
	Recommendations  []string `json:"recommendations" jsonschema:"required"`
}

// MedicationSafety is the medication-safety result.
type MedicationSafety struct {
	Interactions      []Interaction `json:"interactions" jsonschema:"required"`
	Contraindications []string      `json:"contraindications,omitempty"`
	Safe              bool          `json:"safe" jsonschema:"required"`
}

// Interaction is one drug-drug or drug-disease interaction.
type Interaction struct {
	Pair        string `json:"pair" jsonschema:"required"`
	Severity    string `json:"severity" jsonschema:"required"`
	Description string `json:"description" jsonschema:"required"`
}

// ClinicalNote is a SOAP note.
type ClinicalNote struct {
	Subjective string `json:"subjective" jsonschema:"required"`
	Objective  string `json:"objective" jsonschema:"required"`
	Assessment string `json:"assessment" jsonschema:"required"`
	Plan       string `json:"plan" jsonschema:"required"`
}

// PatientSummary is the placeholder patient-summary result.
type PatientSummary struct {
	Summary string   `json:"summary" jsonschema:"required"`
	Alerts  []string `json:"alerts" jsonschema:"required"`
}

// BoardReview is the placeholder board-review result.
type BoardReview struct {
	Consensus string `json:"consensus" jsonschema:"required"`
}
