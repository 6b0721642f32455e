package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/localrag/internal/embeddings"
)

const defaultOllamaChatURL = "http://localhost:11434/v1"

// defaultModels maps each provider to the chat model used when none is configured.
var defaultModels = map[string]string{
	embeddings.ProviderOpenAI: "gpt-4o-mini",
	embeddings.ProviderGoogle: "gemini-2.0-flash",
	embeddings.ProviderOllama: "llama3.2",
}

// DefaultModel returns the chat model used for provider when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// Options selects and tunes a chat provider. Provider and BaseURL are the
// ones used for embeddings, so the same credential authenticates both.
type Options struct {
	Provider     string
	Model        string
	BaseURL      string
	RateLimitRPM int
}

// New creates the chat provider described by opts, authenticated with credential.
func New(ctx context.Context, opts Options, credential string) (Provider, error) {
	model := opts.Model
	if model == "" {
		model = DefaultModel(opts.Provider)
	}
	if model == "" {
		return nil, fmt.Errorf("%w for provider %q: set chat_model in the config", ErrNoChatModel, opts.Provider)
	}

	var p Provider
	switch opts.Provider {
	case embeddings.ProviderOpenAI:
		p = NewOpenAIProvider(opts.Provider, credential, model, opts.BaseURL)
	case embeddings.ProviderGoogle:
		g, err := NewGoogleProvider(ctx, credential, model, opts.BaseURL)
		if err != nil {
			return nil, err
		}
		p = g
	case embeddings.ProviderOllama:
		// Ollama ignores the key but the client requires one.
		p = NewOpenAIProvider(opts.Provider, "ollama", model, ollamaChatURL(opts.BaseURL))
	case embeddings.ProviderOpenAICompat:
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("base_url is required for the %s provider", embeddings.ProviderOpenAICompat)
		}
		p = NewOpenAIProvider(opts.Provider, credential, model, opts.BaseURL)
	case embeddings.ProviderHash:
		return nil, fmt.Errorf("%w: the %s provider only embeds", ErrNoChatModel, embeddings.ProviderHash)
	default:
		return nil, fmt.Errorf("unknown chat provider %q", opts.Provider)
	}

	return NewRateLimitedProvider(p, opts.RateLimitRPM), nil
}

// ollamaChatURL maps the Ollama native API URL used for embeddings onto its
// OpenAI-compatible endpoint.
func ollamaChatURL(baseURL string) string {
	if baseURL == "" {
		return defaultOllamaChatURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/api")
	return baseURL + "/v1"
}
