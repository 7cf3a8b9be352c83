package domain

import (
	"encoding/json"
	"time"
)

// Slot holds one named section of a Report. It is either populated or
// carries an error marker; it is never silently empty.
type Slot[T any] struct {
	Data *T
	Err  *TaskError
}

// Filled returns a populated slot.
func Filled[T any](v T) Slot[T] {
	return Slot[T]{Data: &v}
}

// Failed returns an error-marked slot.
func Failed[T any](err *TaskError) Slot[T] {
	return Slot[T]{Err: err}
}

// OK reports whether the slot holds data.
func (s Slot[T]) OK() bool {
	return s.Data != nil && s.Err == nil
}

// MarshalJSON renders the payload, or {"error": reason} for failed slots.
func (s Slot[T]) MarshalJSON() ([]byte, error) {
	if s.OK() {
		return json.Marshal(s.Data)
	}
	msg := "analysis not run"
	if s.Err != nil {
		msg = s.Err.Message
	}
	return json.Marshal(map[string]string{"error": msg})
}

// TaskSummary attributes one task's outcome inside a Report.
type TaskSummary struct {
	ID       string        `json:"id"`
	Kind     AnalysisKind  `json:"kind"`
	Origin   string        `json:"origin"`
	OK       bool          `json:"ok"`
	Error    *TaskError    `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Report is the aggregate response for one document. Every slot is
// present in the JSON output, populated or not.
type Report struct {
	RunID        string                  `json:"run_id"`
	DocumentID   string                  `json:"document_id"`
	Eligibility  Slot[EligibilityReport] `json:"eligibility"`
	Requirements Slot[RequirementList]   `json:"requirements"`
	Risks        Slot[RiskList]          `json:"risks"`
	Checklist    Slot[Checklist]         `json:"checklist"`
	Metadata     Slot[RFPMetadata]       `json:"metadata"`
	Compliance   Slot[ComplianceReport]  `json:"compliance"`
	Tasks        []TaskSummary           `json:"tasks"`
	Status       DocumentStatus          `json:"status,omitempty"`
}

// SlotOK reports whether the named slot is populated.
func (r *Report) SlotOK(kind AnalysisKind) bool {
	switch kind {
	case AnalysisEligibility:
		return r.Eligibility.OK()
	case AnalysisRequirements:
		return r.Requirements.OK()
	case AnalysisRisks:
		return r.Risks.OK()
	case AnalysisChecklist:
		return r.Checklist.OK()
	case AnalysisMetadata:
		return r.Metadata.OK()
	case AnalysisCompliance:
		return r.Compliance.OK()
	default:
		return false
	}
}

// Section returns the JSON of one slot, for endpoints that serve a single kind.
func (r *Report) Section(kind AnalysisKind) (json.RawMessage, error) {
	switch kind {
	case AnalysisEligibility:
		return json.Marshal(r.Eligibility)
	case AnalysisRequirements:
		return json.Marshal(r.Requirements)
	case AnalysisRisks:
		return json.Marshal(r.Risks)
	case AnalysisChecklist:
		return json.Marshal(r.Checklist)
	case AnalysisMetadata:
		return json.Marshal(r.Metadata)
	case AnalysisCompliance:
		return json.Marshal(r.Compliance)
	default:
		return nil, ErrInvalidInput
	}
}
