package file

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// EnvBindings maps environment variables to configuration keys.
// Environment values take precedence over config.toml.
var EnvBindings = map[string]string{
	"RFP_DATA_DIR":           "data_dir",
	"RFP_CHUNK_STRATEGY":     "chunking.strategy",
	"RFP_CHUNK_SIZE":         "chunking.size",
	"RFP_CHUNK_OVERLAP":      "chunking.overlap",
	"RFP_TOP_K":              "retrieval.top_k",
	"RFP_MIN_SCORE":          "retrieval.min_score",
	"RFP_WORKERS":            "analysis.workers",
	"RFP_TASK_TIMEOUT":       "analysis.task_timeout",
	"RFP_RATE_LIMIT":         "analysis.rate_limit",
	"RFP_PROFILE":            "analysis.profile",
	"RFP_EMBEDDING_PROVIDER": "embedding.provider",
	"RFP_EMBEDDING_MODEL":    "embedding.model",
	"RFP_EMBEDDING_BASE_URL": "embedding.base_url",
	"RFP_SYNTHESIS_PROVIDER": "synthesis.provider",
	"RFP_SYNTHESIS_MODEL":    "synthesis.model",
	"RFP_SYNTHESIS_BASE_URL": "synthesis.base_url",
	"RFP_INDEX_BACKEND":      "index.backend",
	"RFP_INDEX_DIMENSIONS":   "index.dimensions",
	"DATABASE_URL":           "index.dsn",
	"RFP_BLOB_BACKEND":       "blob.backend",
	"RFP_BLOB_DIR":           "blob.dir",
	"RFP_S3_BUCKET":          "blob.bucket",
	"RFP_S3_ENDPOINT":        "blob.endpoint",
	"AWS_REGION":             "blob.region",
	"RFP_ADDR":               "server.addr",
	"OPENAI_API_KEY":         "openai.api_key",
	"ANTHROPIC_API_KEY":      "anthropic.api_key",
}

// LoadDotEnv loads variables from the given .env files (default ./.env)
// into the process environment. Missing files are ignored and variables
// that are already set are left alone.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv shadows config keys with any bound environment variables found
// by lookup (usually os.LookupEnv). Empty values are ignored.
// Returns the number of keys overridden.
func (s *ConfigStore) ApplyEnv(lookup func(string) (string, bool)) int {
	n := 0
	for env, key := range EnvBindings {
		if v, ok := lookup(env); ok && v != "" {
			s.Override(key, v)
			n++
		}
	}
	return n
}
