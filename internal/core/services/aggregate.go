package services

import (
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

// Aggregate folds task results into a Report with one slot per analysis
// kind. Successful payloads of the same kind are merged in task order and
// then normalised, so the report does not depend on completion order.
// A kind with no successful task carries the first task error, and a kind
// with no task at all is marked "analysis not run".
func Aggregate(documentID string, results []domain.AnalysisResult) *domain.Report {
	r := &domain.Report{
		DocumentID:   documentID,
		Eligibility:  slotFor[domain.EligibilityReport](domain.AnalysisEligibility, results),
		Requirements: slotFor[domain.RequirementList](domain.AnalysisRequirements, results),
		Risks:        slotFor[domain.RiskList](domain.AnalysisRisks, results),
		Checklist:    slotFor[domain.Checklist](domain.AnalysisChecklist, results),
		Metadata:     slotFor[domain.RFPMetadata](domain.AnalysisMetadata, results),
		Compliance:   slotFor[domain.ComplianceReport](domain.AnalysisCompliance, results),
		Tasks:        make([]domain.TaskSummary, 0, len(results)),
	}

	for _, res := range results {
		r.Tasks = append(r.Tasks, domain.TaskSummary{
			ID:       res.Task.ID,
			Kind:     res.Task.Kind,
			Origin:   res.Task.Origin(),
			OK:       res.OK(),
			Error:    res.Err,
			Duration: res.Duration,
		})
	}
	return r
}

func slotFor[T domain.Payload[T]](kind domain.AnalysisKind, results []domain.AnalysisResult) domain.Slot[T] {
	var (
		merged   T
		have     bool
		firstErr *domain.TaskError
		seen     bool
	)

	for _, res := range results {
		if res.Task.Kind != kind {
			continue
		}
		seen = true
		if !res.OK() {
			if firstErr == nil {
				firstErr = res.Err
			}
			continue
		}

		var v T
		if err := json.Unmarshal(res.Payload, &v); err != nil {
			if firstErr == nil {
				firstErr = domain.NewTaskError(fmt.Errorf("%w: %w", domain.ErrMalformedOutput, err))
			}
			continue
		}
		if !have {
			merged, have = v, true
		} else {
			merged = merged.Merge(v)
		}
	}

	switch {
	case have:
		return domain.Filled(merged.Normalize())
	case seen && firstErr != nil:
		return domain.Failed[T](firstErr)
	default:
		return domain.Failed[T](domain.NotRun())
	}
}
