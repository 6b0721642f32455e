package embeddings

import (
	"context"
	"fmt"
)

// Provider names accepted by New.
const (
	ProviderOpenAI       = "openai"
	ProviderGoogle       = "google"
	ProviderOllama       = "ollama"
	ProviderOpenAICompat = "openai-compat"
	ProviderHash         = "hash"
)

// Options selects and tunes an embedding provider.
type Options struct {
	Provider     string
	Model        string
	BaseURL      string
	Dimensions   int
	RateLimitRPM int
}

// RequiresCredential reports whether the provider authenticates with an API key.
func RequiresCredential(provider string) bool {
	switch provider {
	case ProviderOpenAI, ProviderGoogle, ProviderOpenAICompat:
		return true
	default:
		return false
	}
}

// New creates the embedder described by opts, authenticated with credential.
func New(ctx context.Context, opts Options, credential string) (Embedder, error) {
	var (
		e   Embedder
		err error
	)

	switch opts.Provider {
	case ProviderOpenAI:
		e = NewOpenAIEmbedder(credential, OpenAIModel(opts.Model), opts.BaseURL)
	case ProviderGoogle:
		e, err = NewGoogleEmbedder(ctx, credential, GoogleModel(opts.Model), opts.BaseURL)
	case ProviderOllama:
		e = NewOllamaEmbedder(opts.Model, opts.Dimensions, opts.BaseURL)
	case ProviderOpenAICompat:
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("base_url is required for the %s provider", ProviderOpenAICompat)
		}
		e = NewCompatEmbedder(opts.BaseURL, credential, opts.Model, opts.Dimensions)
	case ProviderHash:
		e = NewHashEmbedder()
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewRateLimited(e, opts.RateLimitRPM), nil
}
