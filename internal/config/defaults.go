package config

import "path/filepath"

// DefaultConfigFile is the config file looked up in the working directory.
const DefaultConfigFile = ".localrag.yml"

// defaultModels maps each provider to the embedding model used when none is
// configured.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI: "text-embedding-3-small",
	ProviderGoogle: "text-embedding-004",
	ProviderOllama: "nomic-embed-text",
	ProviderHash:   "hash",
}

// DefaultExcludes are glob patterns skipped by ingest by default.
var DefaultExcludes = []string{
	"vendor/**",
	"node_modules/**",
	".git/**",
	".localrag/**",
	"dist/**",
	"build/**",
	"*.min.js",
	"*.min.css",
	"*.lock",
	"go.sum",
	"package-lock.json",
	"yarn.lock",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Model:    defaultModels[ProviderOpenAI],
		TopK:     5,
		Include:  []string{"**/*.{md,txt,rst}"},
		Exclude:  DefaultExcludes,
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    ".localrag",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// DefaultModel returns the embedding model used for provider when the
// config leaves model empty.
func DefaultModel(provider ProviderType) string {
	return defaultModels[provider]
}

// StoragePath returns the file (sqlite) or directory (badger) the backend
// opens inside Storage.Path.
func (c *Config) StoragePath() string {
	if c.Storage.Backend == BackendBadger {
		return filepath.Join(c.Storage.Path, "badger")
	}
	return filepath.Join(c.Storage.Path, "vectorstore.db")
}
