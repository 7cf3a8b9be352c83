package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

// requiredFields lists the top-level keys each reply must carry. Missing
// booleans would otherwise decode silently as false.
var requiredFields = map[domain.AnalysisKind][]string{
	domain.AnalysisEligibility:  {"eligibility_passed", "criteria"},
	domain.AnalysisRequirements: {"requirements"},
	domain.AnalysisRisks:        {"risks"},
	domain.AnalysisChecklist:    {"checklist"},
	domain.AnalysisMetadata:     {"title"},
	domain.AnalysisCompliance:   {"compliance_passed", "issues"},
}

// DecodePayload parses a synthesis reply for kind and returns the payload
// re-encoded in canonical form. Replies are untrusted: unknown fields,
// trailing data, missing required fields and invalid enum values all
// yield domain.ErrMalformedOutput.
func DecodePayload(kind domain.AnalysisKind, raw string) (json.RawMessage, error) {
	switch kind {
	case domain.AnalysisEligibility:
		return decodeAs[domain.EligibilityReport](kind, raw)
	case domain.AnalysisRequirements:
		return decodeAs[domain.RequirementList](kind, raw)
	case domain.AnalysisRisks:
		return decodeAs[domain.RiskList](kind, raw)
	case domain.AnalysisChecklist:
		return decodeAs[domain.Checklist](kind, raw)
	case domain.AnalysisMetadata:
		return decodeAs[domain.RFPMetadata](kind, raw)
	case domain.AnalysisCompliance:
		return decodeAs[domain.ComplianceReport](kind, raw)
	default:
		return nil, fmt.Errorf("%w: unknown analysis kind %q", domain.ErrInvalidInput, kind)
	}
}

func decodeAs[T domain.Payload[T]](kind domain.AnalysisKind, raw string) (json.RawMessage, error) {
	v, err := ParsePayload[T](raw, requiredFields[kind]...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return json.Marshal(v)
}

// ParsePayload strictly decodes raw into T and validates it.
func ParsePayload[T domain.Payload[T]](raw string, required ...string) (T, error) {
	var zero T
	body := []byte(StripCodeFence(raw))
	if len(bytes.TrimSpace(body)) == 0 {
		return zero, fmt.Errorf("%w: empty reply", domain.ErrMalformedOutput)
	}

	if len(required) > 0 {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(body, &keys); err != nil {
			return zero, fmt.Errorf("%w: %w", domain.ErrMalformedOutput, err)
		}
		for _, k := range required {
			if _, ok := keys[k]; !ok {
				return zero, fmt.Errorf("%w: missing field %q", domain.ErrMalformedOutput, k)
			}
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	var v T
	if err := dec.Decode(&v); err != nil {
		return zero, fmt.Errorf("%w: %w", domain.ErrMalformedOutput, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return zero, fmt.Errorf("%w: trailing data after JSON object", domain.ErrMalformedOutput)
	}
	if err := v.Validate(); err != nil {
		return zero, fmt.Errorf("%w: %w", domain.ErrMalformedOutput, err)
	}
	return v, nil
}

// StripCodeFence removes a surrounding markdown code fence (```json ... ```)
// that models often add despite instructions.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return strings.Trim(s, "`")
	}
	s = s[nl+1:]
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}
