package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Payload is the schema every synthesis reply is validated against.
// Merge folds another payload of the same kind into a copy of the receiver.
// Results are folded in task order, so merged output is deterministic.
type Payload[T any] interface {
	Validate() error
	Merge(other T) T
	Normalize() T
}

// EligibilityReport answers whether the bidder qualifies.
type EligibilityReport struct {
	EligibilityPassed bool                   `json:"eligibility_passed"`
	Criteria          []EligibilityCriterion `json:"criteria"`
	Summary           string                 `json:"summary"`
}

// EligibilityCriterion is one bidder qualification.
type EligibilityCriterion struct {
	ID        int    `json:"id,omitempty"`
	Criterion string `json:"criterion"`
	Required  string `json:"required"`
	Details   string `json:"details"`
	Status    string `json:"status"`
}

// Validate implements Payload.
func (r EligibilityReport) Validate() error {
	for i, c := range r.Criteria {
		if strings.TrimSpace(c.Criterion) == "" {
			return fmt.Errorf("criteria[%d]: criterion is required", i)
		}
		if err := oneOf("criteria", i, "status", c.Status, "met", "unmet"); err != nil {
			return err
		}
	}
	return nil
}

// Merge implements Payload. Eligibility passes only if every part passes.
func (r EligibilityReport) Merge(other EligibilityReport) EligibilityReport {
	return EligibilityReport{
		EligibilityPassed: r.EligibilityPassed && other.EligibilityPassed,
		Criteria:          append(append([]EligibilityCriterion{}, r.Criteria...), other.Criteria...),
		Summary:           joinSummary(r.Summary, other.Summary),
	}
}

// Normalize implements Payload.
func (r EligibilityReport) Normalize() EligibilityReport {
	out := r
	out.Criteria = append([]EligibilityCriterion{}, r.Criteria...)
	for i := range out.Criteria {
		out.Criteria[i].ID = i + 1
	}
	return out
}

// RequirementList lists the RFP's technical and administrative requirements.
type RequirementList struct {
	Requirements []Requirement `json:"requirements"`
}

// Requirement is one obligation the bidder must satisfy.
type Requirement struct {
	ID             int    `json:"id,omitempty"`
	Requirement    string `json:"requirement"`
	Status         string `json:"status"`
	Priority       string `json:"priority"`
	Category       string `json:"category"`
	Section        string `json:"section"`
	Recommendation string `json:"recommendation,omitempty"`
}

// Validate implements Payload.
func (l RequirementList) Validate() error {
	for i, r := range l.Requirements {
		if strings.TrimSpace(r.Requirement) == "" {
			return fmt.Errorf("requirements[%d]: requirement is required", i)
		}
		if err := oneOf("requirements", i, "status", r.Status, "fulfilled", "gap"); err != nil {
			return err
		}
		if err := oneOf("requirements", i, "priority", strings.ToLower(r.Priority), "high", "medium", "low"); err != nil {
			return err
		}
	}
	return nil
}

// Merge implements Payload.
func (l RequirementList) Merge(other RequirementList) RequirementList {
	return RequirementList{
		Requirements: append(append([]Requirement{}, l.Requirements...), other.Requirements...),
	}
}

// Normalize implements Payload.
func (l RequirementList) Normalize() RequirementList {
	out := RequirementList{Requirements: append([]Requirement{}, l.Requirements...)}
	for i := range out.Requirements {
		out.Requirements[i].ID = i + 1
		out.Requirements[i].Priority = strings.ToLower(out.Requirements[i].Priority)
	}
	return out
}

// RiskList lists contract clauses that carry risk.
type RiskList struct {
	Risks []Risk `json:"risks"`
}

// Risk is one risky clause with a mitigation.
type Risk struct {
	ID             int    `json:"id,omitempty"`
	Clause         string `json:"clause"`
	Risk           string `json:"risk"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

// Validate implements Payload.
func (l RiskList) Validate() error {
	for i, r := range l.Risks {
		if strings.TrimSpace(r.Clause) == "" && strings.TrimSpace(r.Risk) == "" {
			return fmt.Errorf("risks[%d]: clause or risk is required", i)
		}
		if err := oneOf("risks", i, "severity", strings.ToLower(r.Severity), "high", "medium", "low"); err != nil {
			return err
		}
	}
	return nil
}

// Merge implements Payload.
func (l RiskList) Merge(other RiskList) RiskList {
	return RiskList{Risks: append(append([]Risk{}, l.Risks...), other.Risks...)}
}

// Normalize implements Payload.
func (l RiskList) Normalize() RiskList {
	out := RiskList{Risks: append([]Risk{}, l.Risks...)}
	for i := range out.Risks {
		out.Risks[i].ID = i + 1
		out.Risks[i].Severity = strings.ToLower(out.Risks[i].Severity)
	}
	return out
}

// Checklist groups submission items by category.
type Checklist struct {
	Categories []ChecklistCategory `json:"checklist"`
}

// ChecklistCategory is a named group of submission items.
type ChecklistCategory struct {
	Category string                   `json:"category"`
	Items    map[string]ChecklistItem `json:"items"`
}

// ChecklistItem is a single deliverable.
type ChecklistItem struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Validate implements Payload.
func (c Checklist) Validate() error {
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Category) == "" {
			return fmt.Errorf("checklist[%d]: category is required", i)
		}
		for key, item := range cat.Items {
			if strings.TrimSpace(item.Description) == "" {
				return fmt.Errorf("checklist[%d].items[%s]: description is required", i, key)
			}
		}
	}
	return nil
}

// Merge implements Payload. Categories with the same name are combined.
func (c Checklist) Merge(other Checklist) Checklist {
	byName := make(map[string]int)
	out := Checklist{}
	for _, cat := range append(append([]ChecklistCategory{}, c.Categories...), other.Categories...) {
		idx, ok := byName[cat.Category]
		if !ok {
			byName[cat.Category] = len(out.Categories)
			out.Categories = append(out.Categories, ChecklistCategory{
				Category: cat.Category,
				Items:    make(map[string]ChecklistItem, len(cat.Items)),
			})
			idx = len(out.Categories) - 1
		}
		for key, item := range cat.Items {
			out.Categories[idx].Items[key] = item
		}
	}
	return out
}

// Normalize implements Payload. Categories are sorted by name so merged
// output does not depend on completion order.
func (c Checklist) Normalize() Checklist {
	out := Checklist{Categories: append([]ChecklistCategory{}, c.Categories...)}
	sort.SliceStable(out.Categories, func(i, j int) bool {
		return out.Categories[i].Category < out.Categories[j].Category
	})
	for i := range out.Categories {
		if out.Categories[i].Items == nil {
			out.Categories[i].Items = map[string]ChecklistItem{}
		}
	}
	return out
}

// RFPMetadata is the headline information of the solicitation.
type RFPMetadata struct {
	Title         string `json:"title"`
	Agency        string `json:"agency"`
	IssueDate     string `json:"issue_date"`
	DueDate       string `json:"due_date"`
	ContractValue string `json:"contract_value"`
	Duration      string `json:"duration"`
	Status        string `json:"status,omitempty"`
}

// Validate implements Payload.
func (m RFPMetadata) Validate() error {
	if strings.TrimSpace(m.Title) == "" && strings.TrimSpace(m.Agency) == "" {
		return fmt.Errorf("metadata: title or agency is required")
	}
	return nil
}

// Merge implements Payload. The first non-empty value of each field wins.
func (m RFPMetadata) Merge(other RFPMetadata) RFPMetadata {
	return RFPMetadata{
		Title:         firstNonEmpty(m.Title, other.Title),
		Agency:        firstNonEmpty(m.Agency, other.Agency),
		IssueDate:     firstNonEmpty(m.IssueDate, other.IssueDate),
		DueDate:       firstNonEmpty(m.DueDate, other.DueDate),
		ContractValue: firstNonEmpty(m.ContractValue, other.ContractValue),
		Duration:      firstNonEmpty(m.Duration, other.Duration),
		Status:        firstNonEmpty(m.Status, other.Status),
	}
}

// Normalize implements Payload.
func (m RFPMetadata) Normalize() RFPMetadata {
	return m
}

// ComplianceReport lists gaps between the RFP and the company profile.
type ComplianceReport struct {
	CompliancePassed bool     `json:"compliance_passed"`
	Issues           []string `json:"issues"`
	Summary          string   `json:"summary"`
}

// Validate implements Payload.
func (c ComplianceReport) Validate() error {
	for i, issue := range c.Issues {
		if strings.TrimSpace(issue) == "" {
			return fmt.Errorf("issues[%d]: empty issue", i)
		}
	}
	return nil
}

// Merge implements Payload.
func (c ComplianceReport) Merge(other ComplianceReport) ComplianceReport {
	return ComplianceReport{
		CompliancePassed: c.CompliancePassed && other.CompliancePassed,
		Issues:           append(append([]string{}, c.Issues...), other.Issues...),
		Summary:          joinSummary(c.Summary, other.Summary),
	}
}

// Normalize implements Payload. Duplicate issues are dropped and the rest sorted.
func (c ComplianceReport) Normalize() ComplianceReport {
	seen := make(map[string]bool, len(c.Issues))
	issues := make([]string, 0, len(c.Issues))
	for _, issue := range c.Issues {
		if seen[issue] {
			continue
		}
		seen[issue] = true
		issues = append(issues, issue)
	}
	sort.Strings(issues)
	out := c
	out.Issues = issues
	return out
}

func oneOf(list string, idx int, field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s[%d]: %s must be one of %s, got %q",
		list, idx, field, strings.Join(allowed, "|"), value)
}

func joinSummary(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
