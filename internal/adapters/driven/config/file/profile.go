package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/rfp-analyst/internal/core/domain"
	"github.com/custodia-labs/rfp-analyst/internal/core/ports/driven"
)

// Ensure ProfileStore implements the interface.
var _ driven.ProfileStore = (*ProfileStore)(nil)

// ProfileStore reads the company profile from a YAML file. JSON is valid
// YAML, so profile.json works too. The file is read once and cached.
type ProfileStore struct {
	path string

	once    sync.Once
	profile *domain.CompanyProfile
	err     error
}

// NewProfileStore creates a profile store for path.
// If path is empty, defaults to ~/.rfp-analyst/profile.yaml.
func NewProfileStore(path string) (*ProfileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(home, ".rfp-analyst", "profile.yaml")
	}
	return &ProfileStore{path: path}, nil
}

// Path returns the profile file path.
func (s *ProfileStore) Path() string {
	return s.path
}

// Profile returns the company profile. A missing file yields an empty profile.
func (s *ProfileStore) Profile() (*domain.CompanyProfile, error) {
	s.once.Do(func() {
		s.profile, s.err = LoadProfile(s.path)
	})
	return s.profile, s.err
}

// LoadProfile parses the profile at path.
func LoadProfile(path string) (*domain.CompanyProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.CompanyProfile{}, nil
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var p domain.CompanyProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: parse profile %s: %w", domain.ErrInvalidInput, path, err)
	}
	return &p, nil
}
