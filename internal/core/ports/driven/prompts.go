package driven

import "github.com/custodia-labs/rfp-analyst/internal/core/domain"

// PromptStore provides access to analysis prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names. Analysis prompts are keyed by AnalysisKind and
// expect a single %s placeholder for the retrieved context.
const (
	// PromptSystem is the system prompt sent with every analysis.
	PromptSystem = "system"
)

// PromptName returns the prompt template name for an analysis kind.
func PromptName(kind domain.AnalysisKind) string {
	return "analysis_" + kind.String()
}

// ProfileStore provides the company profile used by compliance checks.
type ProfileStore interface {
	// Profile returns the loaded profile. A missing file yields an empty profile.
	Profile() (*domain.CompanyProfile, error)
}
