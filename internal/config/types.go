package config

import "github.com/ziadkadry99/localrag/internal/embeddings"

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	ProviderOpenAI       ProviderType = embeddings.ProviderOpenAI
	ProviderGoogle       ProviderType = embeddings.ProviderGoogle
	ProviderOllama       ProviderType = embeddings.ProviderOllama
	ProviderOpenAICompat ProviderType = embeddings.ProviderOpenAICompat
	ProviderHash         ProviderType = embeddings.ProviderHash
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config is the top-level localrag configuration, corresponding to .localrag.yml.
// The API credential is never stored here.
type Config struct {
	Provider     ProviderType  `yaml:"provider" koanf:"provider" validate:"required,oneof=openai google ollama openai-compat hash"`
	Model        string        `yaml:"model" koanf:"model"`
	BaseURL      string        `yaml:"base_url,omitempty" koanf:"base_url" validate:"omitempty,url"`
	Dimensions   int           `yaml:"dimensions,omitempty" koanf:"dimensions" validate:"gte=0"`
	RateLimitRPM int           `yaml:"rate_limit_rpm,omitempty" koanf:"rate_limit_rpm" validate:"gte=0"`
	TopK         int           `yaml:"top_k" koanf:"top_k" validate:"gte=1,lte=1000"`
	ChatModel    string        `yaml:"chat_model,omitempty" koanf:"chat_model"`
	Include      []string      `yaml:"include" koanf:"include"`
	Exclude      []string      `yaml:"exclude" koanf:"exclude"`
	Storage      StorageConfig `yaml:"storage" koanf:"storage"`
	Log          LogConfig     `yaml:"log" koanf:"log"`
}

// StorageConfig selects where documents are persisted.
type StorageConfig struct {
	Backend string `yaml:"backend" koanf:"backend" validate:"required,oneof=sqlite badger"`
	Path    string `yaml:"path" koanf:"path" validate:"required"` // directory
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" koanf:"format" validate:"omitempty,oneof=console json"`
}
