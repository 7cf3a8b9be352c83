package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestDecodePayload_Valid(t *testing.T) {
	raw := "```json\n" + `{
		"risks": [
			{"clause": "12.3", "risk": "Uncapped liability", "severity": "high", "recommendation": "Negotiate a cap"}
		]
	}` + "\n```"

	payload, err := DecodePayload(domain.AnalysisRisks, raw)

	require.NoError(t, err)
	var got domain.RiskList
	require.NoError(t, json.Unmarshal(payload, &got))
	require.Len(t, got.Risks, 1)
	assert.Equal(t, "Uncapped liability", got.Risks[0].Risk)
}

func TestDecodePayload_Malformed(t *testing.T) {
	tests := []struct {
		name string
		kind domain.AnalysisKind
		raw  string
	}{
		{"empty", domain.AnalysisRisks, "   "},
		{"prose", domain.AnalysisRisks, "Sure! Here are the risks."},
		{"unknown field", domain.AnalysisRisks, `{"risks": [], "confidence": 0.9}`},
		{"trailing data", domain.AnalysisRisks, `{"risks": []} {"risks": []}`},
		{"missing required", domain.AnalysisEligibility, `{"criteria": [], "summary": "ok"}`},
		{"bad enum", domain.AnalysisRequirements, `{"requirements": [{"requirement": "SOC 2", "status": "maybe", "priority": "high", "category": "", "section": ""}]}`},
		{"wrong type", domain.AnalysisCompliance, `{"compliance_passed": "yes", "issues": []}`},
		{"code in reply", domain.AnalysisMetadata, `__import__('os').system('rm -rf /')`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayload(tt.kind, tt.raw)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMalformedOutput)
			assert.Equal(t, domain.TaskErrorMalformed, domain.NewTaskError(err).Kind)
		})
	}
}

func TestDecodePayload_UnknownKind(t *testing.T) {
	_, err := DecodePayload("budget", `{}`)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDecodePayload_EveryKind(t *testing.T) {
	replies := map[domain.AnalysisKind]string{
		domain.AnalysisEligibility:  `{"eligibility_passed": true, "criteria": [{"criterion": "ISO 9001", "required": "yes", "details": "", "status": "met"}], "summary": "Eligible"}`,
		domain.AnalysisRequirements: `{"requirements": [{"requirement": "24/7 support", "status": "gap", "priority": "medium", "category": "Ops", "section": "4.2"}]}`,
		domain.AnalysisRisks:        `{"risks": []}`,
		domain.AnalysisChecklist:    `{"checklist": [{"category": "Admin", "items": {"cover_letter": {"description": "Cover letter", "completed": false}}}]}`,
		domain.AnalysisMetadata:     `{"title": "Network Refresh", "agency": "DoT", "issue_date": "", "due_date": "2025-01-31", "contract_value": "", "duration": "", "status": ""}`,
		domain.AnalysisCompliance:   `{"compliance_passed": true, "issues": [], "summary": ""}`,
	}
	for _, kind := range domain.ReportKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := DecodePayload(kind, replies[kind])
			assert.NoError(t, err)
		})
	}
}
