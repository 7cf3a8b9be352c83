package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driving"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// Generation defaults for analysis prompts.
const (
	analysisTemperature = 0.2
	analysisMaxTokens   = 2048
	defaultSystemPrompt = "You are an expert government compliance analyst."
)

// topicQueries are the retrieval queries used in topic mode.
var topicQueries = map[domain.AnalysisKind]string{
	domain.AnalysisEligibility:  "bidder eligibility criteria, qualifications, certifications and minimum experience",
	domain.AnalysisRequirements: "technical requirements, scope of work, deliverables and specifications",
	domain.AnalysisRisks:        "contract terms, penalties, liability, termination, payment and indemnification",
	domain.AnalysisChecklist:    "submission instructions, required documents, forms, proposal format and deadline",
	domain.AnalysisMetadata:     "solicitation title, issuing agency, issue date, due date, contract value and period of performance",
	domain.AnalysisCompliance:   "compliance obligations, certifications, security standards and regulatory requirements",
}

// AnalysisService fans structured questions about a document out to the
// synthesis model and aggregates the answers into a Report.
type AnalysisService struct {
	docs         driven.DocumentStore
	retriever    driving.RetrievalService
	synthesizer  driven.Synthesizer
	orchestrator *Orchestrator
	retrieval    domain.RetrievalSettings

	// Optional collaborators.
	prompts driven.PromptStore
	profile driven.ProfileStore

	newRunID func() string
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(
	docs driven.DocumentStore,
	retriever driving.RetrievalService,
	synthesizer driven.Synthesizer,
	orchestrator *Orchestrator,
	retrieval domain.RetrievalSettings,
) *AnalysisService {
	return &AnalysisService{
		docs:         docs,
		retriever:    retriever,
		synthesizer:  synthesizer,
		orchestrator: orchestrator,
		retrieval:    retrieval,
		newRunID:     uuid.NewString,
	}
}

// SetPromptStore sets the prompt store. Without one, built-in prompts are used.
func (s *AnalysisService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// SetProfileStore sets the company profile used by compliance checks.
func (s *AnalysisService) SetProfileStore(store driven.ProfileStore) {
	s.profile = store
}

// Analyze runs the requested analyses over a document. Per-task failures
// are recorded in the report; only an unknown document or invalid options
// return an error.
func (s *AnalysisService) Analyze(ctx context.Context, documentID string, opts driving.AnalyzeOptions) (*domain.Report, error) {
	logger.Section("Analysis")

	if _, err := s.docs.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = domain.ReportKinds()
	}
	kinds = append(append([]domain.AnalysisKind{}, kinds...), opts.PerChunk...)
	perChunk := make(map[domain.AnalysisKind]bool, len(opts.PerChunk))
	for _, k := range kinds {
		if !k.IsValid() {
			return nil, fmt.Errorf("%w: unknown analysis kind %q", domain.ErrInvalidInput, k)
		}
	}
	for _, k := range opts.PerChunk {
		perChunk[k] = true
	}

	var chunks []domain.Chunk
	if len(perChunk) > 0 {
		var err error
		if chunks, err = s.docs.GetChunks(ctx, documentID); err != nil {
			return nil, fmt.Errorf("load chunks: %w", err)
		}
	}

	tasks := buildTasks(documentID, kinds, perChunk, chunks)
	runID := s.newRunID()
	logger.Info("run %s: %d tasks for %s", runID, len(tasks), documentID)

	results := s.orchestrator.Run(ctx, tasks, s.runTask)
	report := Aggregate(documentID, results)
	report.RunID = runID

	if report.Eligibility.OK() {
		status := domain.DocumentStatusRejected
		if report.Eligibility.Data.EligibilityPassed {
			status = domain.DocumentStatusAccepted
		}
		if err := s.docs.UpdateStatus(ctx, documentID, status); err != nil {
			logger.Warn("update status of %s: %v", documentID, err)
		} else {
			report.Status = status
		}
	}

	return report, nil
}

// buildTasks creates one topic task per kind, or one task per chunk for
// per-chunk kinds. A per-chunk kind over a document without chunks gets a
// single task with no input, which reports no relevant context.
func buildTasks(documentID string, kinds []domain.AnalysisKind, perChunk map[domain.AnalysisKind]bool, chunks []domain.Chunk) []domain.AnalysisTask {
	var tasks []domain.AnalysisTask
	seen := make(map[domain.AnalysisKind]bool, len(kinds))
	for _, kind := range kinds {
		if seen[kind] {
			continue
		}
		seen[kind] = true

		if !perChunk[kind] {
			tasks = append(tasks, domain.AnalysisTask{
				ID:         fmt.Sprintf("%s/topic", kind),
				Kind:       kind,
				DocumentID: documentID,
				Topic:      topicQueries[kind],
			})
			continue
		}

		if len(chunks) == 0 {
			tasks = append(tasks, domain.AnalysisTask{
				ID:         fmt.Sprintf("%s/empty", kind),
				Kind:       kind,
				DocumentID: documentID,
			})
			continue
		}
		for i := range chunks {
			tasks = append(tasks, domain.AnalysisTask{
				ID:         fmt.Sprintf("%s/chunk-%d", kind, chunks[i].Sequence),
				Kind:       kind,
				DocumentID: documentID,
				Chunk:      &chunks[i],
			})
		}
	}
	return tasks
}

// runTask gathers the task's context, asks the synthesizer and validates
// the reply. It is the orchestrator's TaskFunc.
func (s *AnalysisService) runTask(ctx context.Context, task domain.AnalysisTask) (json.RawMessage, error) {
	input, err := s.taskInput(ctx, task)
	if err != nil {
		return nil, err
	}
	if input == "" {
		return nil, domain.NoRelevantContext(task.Kind)
	}

	prompt := renderPrompt(s.loadPrompt(driven.PromptName(task.Kind), fallbackPrompt(task.Kind)), input)
	reply, err := s.synthesizer.Generate(ctx, prompt, driven.GenerateOptions{
		System:      s.loadPrompt(driven.PromptSystem, defaultSystemPrompt),
		MaxTokens:   analysisMaxTokens,
		Temperature: analysisTemperature,
		JSON:        true,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSynthesisFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSynthesisFailure, err)
	}

	payload, err := DecodePayload(task.Kind, reply)
	if err != nil {
		return nil, err
	}

	if task.Kind == domain.AnalysisCompliance {
		return s.applyProfile(payload, input)
	}
	return payload, nil
}

// taskInput returns the chunk text in per-chunk mode, or the retrieved
// passages in topic mode. Empty means nothing relevant was found.
func (s *AnalysisService) taskInput(ctx context.Context, task domain.AnalysisTask) (string, error) {
	if task.Chunk != nil {
		return strings.TrimSpace(task.Chunk.Text), nil
	}

	passages, err := s.retriever.Retrieve(ctx, task.Topic, domain.RetrieveOptions{
		TopK:       s.retrieval.TopK,
		MinScore:   s.retrieval.MinScore,
		DocumentID: task.DocumentID,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if p.Page > 0 {
			fmt.Fprintf(&b, "[page %d]\n", p.Page)
		}
		b.WriteString(strings.TrimSpace(p.Text))
	}
	return b.String(), nil
}

// applyProfile adds certifications the text demands and the company lacks.
func (s *AnalysisService) applyProfile(payload json.RawMessage, text string) (json.RawMessage, error) {
	var profile *domain.CompanyProfile
	if s.profile != nil {
		p, err := s.profile.Profile()
		if err != nil {
			logger.Warn("load company profile: %v", err)
		} else {
			profile = p
		}
	}

	missing := profile.MissingCertifications(text)
	if len(missing) == 0 {
		return payload, nil
	}

	var report domain.ComplianceReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedOutput, err)
	}
	report = report.Merge(domain.ComplianceReport{Issues: missing}).Normalize()
	return json.Marshal(report)
}

func (s *AnalysisService) loadPrompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	p, err := s.prompts.Load(name)
	if err != nil || strings.TrimSpace(p) == "" {
		return fallback
	}
	return p
}

func fallbackPrompt(kind domain.AnalysisKind) string {
	return fmt.Sprintf("Perform the %s analysis of the RFP text below. "+
		"Respond with a single JSON object only.\n\nRFP text:\n%%s", kind)
}

// renderPrompt substitutes the first %s with input, or appends input when
// the template has no placeholder.
func renderPrompt(template, input string) string {
	if strings.Contains(template, "%s") {
		return strings.Replace(template, "%s", input, 1)
	}
	return template + "\n\n" + input
}
