package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to localrag! Let's configure your document store.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Embedding provider.
	providerPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{
			"openai        — OpenAI embeddings API",
			"google        — Gemini embeddings API",
			"ollama        — local Ollama server",
			"openai-compat — any OpenAI-compatible endpoint",
			"hash          — offline hash embeddings (demo only)",
		},
	}
	providerIdx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	providers := []ProviderType{ProviderOpenAI, ProviderGoogle, ProviderOllama, ProviderOpenAICompat, ProviderHash}
	cfg.Provider = providers[providerIdx]

	// 2. Model.
	if cfg.Provider != ProviderHash {
		modelPrompt := promptui.Prompt{
			Label:   "Embedding model",
			Default: DefaultModel(cfg.Provider),
		}
		if cfg.Model, err = modelPrompt.Run(); err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
	} else {
		cfg.Model = DefaultModel(ProviderHash)
	}

	// 3. Endpoint for self-hosted providers.
	if cfg.Provider == ProviderOllama || cfg.Provider == ProviderOpenAICompat {
		urlPrompt := promptui.Prompt{
			Label: "Base URL (leave blank for the provider default)",
		}
		if cfg.Provider == ProviderOpenAICompat {
			urlPrompt.Label = "Base URL"
			urlPrompt.Validate = func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("base URL is required")
				}
				return nil
			}
		}
		baseURL, err := urlPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("base url: %w", err)
		}
		cfg.BaseURL = strings.TrimSpace(baseURL)
	}

	// 4. Storage backend.
	backendPrompt := promptui.Select{
		Label: "Select storage backend",
		Items: []string{BackendSQLite, BackendBadger},
	}
	if _, cfg.Storage.Backend, err = backendPrompt.Run(); err != nil {
		return nil, fmt.Errorf("storage backend: %w", err)
	}

	storagePrompt := promptui.Prompt{
		Label:   "Storage directory",
		Default: cfg.Storage.Path,
	}
	if cfg.Storage.Path, err = storagePrompt.Run(); err != nil {
		return nil, fmt.Errorf("storage directory: %w", err)
	}

	// 5. Ingest patterns.
	includePrompt := promptui.Prompt{
		Label:   "Files to ingest (comma-separated globs)",
		Default: strings.Join(cfg.Include, ","),
	}
	includeStr, err := includePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}
	if include := splitAndTrim(includeStr); len(include) > 0 {
		cfg.Include = include
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API key.
	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" && os.Getenv(APIKeyEnv) == "" {
		fmt.Printf("\nNote: set %s (or pass --api-key) before adding documents.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and drops blank entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
