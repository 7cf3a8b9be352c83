package driven

// ConfigStore is a flat key/value view over persisted settings. Keys use
// dotted section paths such as "retrieval.top_k" or "embedding.model".
//
// Typed getters never fail: a missing key or a value of the wrong type
// yields the zero value, and SettingsService applies defaults on top.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int

	// GetFloat widens integer values.
	GetFloat(key string) float64

	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path identifies the backing file, or ":memory:".
	Path() string
}
