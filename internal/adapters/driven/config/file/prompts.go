package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves analysis prompts from <dir>/<name>.txt, seeding the
// directory with the embedded defaults the first time a prompt is loaded.
// An edited analysis prompt that loses its single %s placeholder is ignored
// in favour of the default.
type PromptStore struct {
	dir  string
	seed sync.Once

	mu    sync.RWMutex
	cache map[string]string
}

const jsonOnly = `Respond with a single JSON object and nothing else. Do not wrap it in
markdown. Use exactly the fields shown; do not add fields.`

// defaultPrompts contains embedded default prompts. Analysis prompts take
// the retrieved context through a single %s placeholder.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSystem: `You are an expert government compliance analyst. You read excerpts of public-sector requests for proposals (RFPs) and answer strictly from the text provided.`,

	driven.PromptName(domain.AnalysisEligibility): `Examine the RFP excerpts below and extract every eligibility criterion: bidder qualifications, required certifications, financial thresholds and experience clauses. Decide whether a typical qualified bidder would pass.

RFP excerpts:
%s

` + jsonOnly + `
{
  "eligibility_passed": true,
  "criteria": [
    {"criterion": "...", "required": "...", "details": "...", "status": "met|unmet"}
  ],
  "summary": "..."
}`,

	driven.PromptName(domain.AnalysisRequirements): `List the technical and administrative requirements a bidder must satisfy according to the RFP excerpts below. Mark a requirement "gap" when the excerpts suggest bidders commonly fall short, otherwise "fulfilled".

RFP excerpts:
%s

` + jsonOnly + `
{
  "requirements": [
    {"requirement": "...", "status": "fulfilled|gap", "priority": "high|medium|low", "category": "...", "section": "...", "recommendation": "..."}
  ]
}`,

	driven.PromptName(domain.AnalysisRisks): `Identify contract clauses in the RFP excerpts below that expose the bidder to risk: penalties, liability, termination, payment terms, intellectual property and similar. Suggest a mitigation for each.

RFP excerpts:
%s

` + jsonOnly + `
{
  "risks": [
    {"clause": "...", "risk": "...", "severity": "high|medium|low", "recommendation": "..."}
  ]
}`,

	driven.PromptName(domain.AnalysisChecklist): `Build a submission checklist from the RFP excerpts below. Group deliverables by category (for example "Administrative", "Technical", "Financial"). Item keys are short snake_case identifiers.

RFP excerpts:
%s

` + jsonOnly + `
{
  "checklist": [
    {"category": "...", "items": {"item_key": {"description": "...", "completed": false}}}
  ]
}`,

	driven.PromptName(domain.AnalysisMetadata): `Extract the headline details of the solicitation from the RFP excerpts below. Use an empty string for anything not stated.

RFP excerpts:
%s

` + jsonOnly + `
{
  "title": "...",
  "agency": "...",
  "issue_date": "...",
  "due_date": "...",
  "contract_value": "...",
  "duration": "...",
  "status": "..."
}`,

	driven.PromptName(domain.AnalysisCompliance): `Review the RFP text below for compliance obligations a bidder must meet: certifications, security standards, legal and regulatory requirements. List each obligation a typical bidder could fail as an issue.

RFP text:
%s

` + jsonOnly + `
{
  "compliance_passed": true,
  "issues": ["..."],
  "summary": "..."
}`,
}

// DefaultPrompt returns the embedded prompt for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore creates a store rooted at dir, or ~/.rfp-analyst/prompts
// when dir is empty. Nothing is written until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".rfp-analyst", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the template for name. Files on disk win over the embedded
// defaults; a name with neither is an error.
func (s *PromptStore) Load(name string) (string, error) {
	s.seed.Do(s.writeDefaults)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.read(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so edits on disk are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// read resolves one prompt from disk, falling back to the default.
func (s *PromptStore) read(name string) (string, error) {
	def, hasDefault := defaultPrompts[name]

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if hasDefault {
			return def, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	prompt := strings.TrimSpace(string(data))
	if hasDefault && name != driven.PromptSystem && strings.Count(prompt, "%s") != 1 {
		logger.Warn("prompt %s must contain exactly one %%s placeholder, using default", name)
		return def, nil
	}
	return prompt, nil
}

// writeDefaults creates the directory with any missing default prompts and
// a README. Failures are logged; Load then serves the embedded defaults.
func (s *PromptStore) writeDefaults() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		logger.Warn("create prompt directory %s: %v", s.dir, err)
		return
	}

	files := map[string]string{"README.md": promptReadme}
	for name, content := range defaultPrompts {
		files[name+".txt"] = content
	}
	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			logger.Warn("write default prompt %s: %v", path, err)
		}
	}
}

const promptReadme = `# RFP Analyst Prompts

This directory contains the prompts sent to the synthesis model.

## Files

- ` + "`system.txt`" + ` - System prompt sent with every analysis
- ` + "`analysis_<kind>.txt`" + ` - One prompt per analysis kind
  (eligibility, requirements, risks, checklist, metadata, compliance)

## Customisation

Edit any file to change the questions asked. Changes take effect on the
next command.

Each analysis prompt must keep exactly one ` + "`%s`" + ` placeholder, which
receives the retrieved RFP text. A prompt without it is ignored and the
built-in default is used instead. Replies are parsed as strict JSON, so keep
the field names shown in the default prompt.
`
