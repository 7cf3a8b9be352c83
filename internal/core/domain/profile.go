package domain

import (
	"sort"
	"strings"
)

// CompanyProfile describes the bidding company for compliance checks.
type CompanyProfile struct {
	Name string `yaml:"name" json:"name"`

	// Certifications maps a certification name (e.g. "ISO") to whether it is held.
	Certifications map[string]bool `yaml:"certifications" json:"certifications"`

	// Watch lists extra certification names to look for in RFP text.
	Watch []string `yaml:"watch" json:"watch"`
}

// defaultWatch are certifications commonly demanded by public tenders.
var defaultWatch = []string{"ISO", "CMMI", "SOC 2", "FedRAMP"}

// MissingCertifications returns one issue per watched certification that the
// text mentions and the profile does not hold. A nil profile holds nothing.
func (p *CompanyProfile) MissingCertifications(text string) []string {
	names := make(map[string]bool)
	for _, n := range defaultWatch {
		names[n] = true
	}
	if p != nil {
		for _, n := range p.Watch {
			names[n] = true
		}
		for n := range p.Certifications {
			names[n] = true
		}
	}

	var issues []string
	for name := range names {
		if name == "" || !strings.Contains(text, name) {
			continue
		}
		if p != nil && p.Certifications[name] {
			continue
		}
		issues = append(issues, "Missing "+name+" Certification")
	}
	sort.Strings(issues)
	return issues
}
