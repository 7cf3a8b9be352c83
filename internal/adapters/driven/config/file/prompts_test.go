package file

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
	"github.com/custodia-labs/rfp-analyst/internal/logger"
)

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".txt"), []byte(content), 0600))
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".rfp-analyst", "prompts"), store.Dir())
}

func TestNewPromptStore_NoIOUntilLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")

	_, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.NoDirExists(t, dir)
}

func TestPromptStore_SeedsDefaults(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptSystem)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "system.txt"))
	assert.FileExists(t, filepath.Join(dir, "README.md"))
	for _, kind := range domain.ReportKinds() {
		assert.FileExists(t, filepath.Join(dir, driven.PromptName(kind)+".txt"))
	}
}

func TestPromptStore_DefaultsHaveOnePlaceholder(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	system, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.Contains(t, system, "government compliance analyst")

	for _, kind := range domain.ReportKinds() {
		prompt, err := store.Load(driven.PromptName(kind))
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(prompt, "%s"), "prompt %s", kind)
	}
}

func TestPromptStore_KeepsUserEdits(t *testing.T) {
	dir := t.TempDir()
	risks := driven.PromptName(domain.AnalysisRisks)
	writePrompt(t, dir, risks, "\n  List penalty clauses in:\n%s\n\n")
	writePrompt(t, dir, driven.PromptSystem, "You review tenders.")

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(risks)
	require.NoError(t, err)
	assert.Equal(t, "List penalty clauses in:\n%s", prompt)

	system, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.Equal(t, "You review tenders.", system)

	data, err := os.ReadFile(filepath.Join(dir, risks+".txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "penalty clauses", "seeding must not overwrite edits")
}

func TestPromptStore_RejectsPromptWithoutPlaceholder(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
	})

	dir := t.TempDir()
	name := driven.PromptName(domain.AnalysisChecklist)
	writePrompt(t, dir, name, "Build a checklist.")

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(name)
	require.NoError(t, err)

	def, _ := DefaultPrompt(name)
	assert.Equal(t, def, prompt)
	assert.Contains(t, logs.String(), "placeholder")
}

func TestPromptStore_MissingFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, err = store.Load(driven.PromptSystem)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "system.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	def, _ := DefaultPrompt(driven.PromptSystem)
	assert.Equal(t, def, prompt)
}

func TestPromptStore_UnwritableDirServesDefaults(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptName(domain.AnalysisMetadata))
	require.NoError(t, err)
	assert.Contains(t, prompt, "contract_value")
}

func TestPromptStore_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("analysis_pricing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis_pricing")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)

	writePrompt(t, dir, driven.PromptSystem, "edited")
	cached, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptSystem)
	require.NoError(t, err)
	assert.Equal(t, "edited", fresh)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const n = 50
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = store.Load(driven.PromptName(domain.AnalysisRisks))
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
		assert.NotEmpty(t, r)
	}
}
