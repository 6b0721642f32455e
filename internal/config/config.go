package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/localrag/internal/embeddings"
	"github.com/ziadkadry99/localrag/internal/llm"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LOCALRAG_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (LOCALRAG_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// LOCALRAG_TOP_K -> top_k, LOCALRAG_STORAGE_BACKEND -> storage.backend.
	// The credential variable is read by the CLI, not here.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		if s == APIKeyEnv {
			return ""
		}
		return envKey(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	return cfg, nil
}

// envKey maps an env suffix onto a koanf path. Only the nested sections
// turn their first underscore into a dot.
func envKey(s string) string {
	s = strings.ToLower(s)
	for _, section := range []string{"storage", "log"} {
		if strings.HasPrefix(s, section+"_") {
			return section + "." + strings.TrimPrefix(s, section+"_")
		}
	}
	return s
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validate = validator.New()

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s %q: failed %q check", configKey(fe.Namespace()), fmt.Sprint(fe.Value()), fe.ActualTag())
		}
		return fmt.Errorf("validating config: %w", err)
	}

	if c.Model == "" && c.Provider != ProviderHash {
		return fmt.Errorf("model is required for provider %s", c.Provider)
	}
	if c.Provider == ProviderOpenAICompat && c.BaseURL == "" {
		return fmt.Errorf("base_url is required for provider %s", c.Provider)
	}

	return nil
}

// configKey turns a validator namespace like "Config.Storage.Backend" into
// the YAML key "storage.backend".
func configKey(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snakeCase(p)
	}
	return strings.Join(parts, ".")
}

func snakeCase(s string) string {
	switch s {
	case "BaseURL":
		return "base_url"
	case "RateLimitRPM":
		return "rate_limit_rpm"
	case "TopK":
		return "top_k"
	case "ChatModel":
		return "chat_model"
	}
	return strings.ToLower(s)
}

// APIKeyEnv is the provider-independent credential variable.
const APIKeyEnv = EnvPrefix + "API_KEY"

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	case ProviderOpenAICompat:
		return APIKeyEnv
	default:
		return ""
	}
}

// ChatOptions returns the provider settings for llm.New. The chat model
// shares the embedding provider, endpoint and credential.
func (c *Config) ChatOptions() llm.Options {
	return llm.Options{
		Provider:     string(c.Provider),
		Model:        c.ChatModel,
		BaseURL:      c.BaseURL,
		RateLimitRPM: c.RateLimitRPM,
	}
}

// EmbeddingOptions returns the provider settings for embeddings.New.
func (c *Config) EmbeddingOptions() embeddings.Options {
	return embeddings.Options{
		Provider:     string(c.Provider),
		Model:        c.Model,
		BaseURL:      c.BaseURL,
		Dimensions:   c.Dimensions,
		RateLimitRPM: c.RateLimitRPM,
	}
}
