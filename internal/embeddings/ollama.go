package embeddings

import (
	"context"

	chromem "github.com/philippgille/chromem-go"
)

const defaultOllamaBaseURL = "http://localhost:11434/api"

// OllamaEmbedder generates embeddings using a local Ollama instance.
type OllamaEmbedder struct {
	model      string
	dimensions int
	embed      chromem.EmbeddingFunc
}

// NewOllamaEmbedder creates a new Ollama embedder.
// model is the Ollama model name (e.g. "nomic-embed-text").
// dimensions is the output dimension count for the model.
// baseURL defaults to http://localhost:11434/api if empty.
func NewOllamaEmbedder(model string, dimensions int, baseURL string) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &OllamaEmbedder{
		model:      model,
		dimensions: dimensions,
		embed:      chromem.NewEmbeddingFuncOllama(model, baseURL),
	}
}

func (e *OllamaEmbedder) Name() string {
	return "ollama/" + e.model
}

func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, "ollama", e.embed, texts)
}

// CompatEmbedder talks to any server exposing the OpenAI embeddings route
// (LocalAI, vLLM, LM Studio and similar).
type CompatEmbedder struct {
	model      string
	dimensions int
	embed      chromem.EmbeddingFunc
}

// NewCompatEmbedder creates an embedder for an OpenAI-compatible endpoint.
func NewCompatEmbedder(baseURL, apiKey, model string, dimensions int) *CompatEmbedder {
	return &CompatEmbedder{
		model:      model,
		dimensions: dimensions,
		embed:      chromem.NewEmbeddingFuncOpenAICompat(baseURL, apiKey, model, nil),
	}
}

func (e *CompatEmbedder) Name() string {
	return "compat/" + e.model
}

func (e *CompatEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *CompatEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, "openai-compat", e.embed, texts)
}

// embedEach calls a single-text chromem embedding func once per text.
func embedEach(ctx context.Context, provider string, fn chromem.EmbeddingFunc, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(texts))
	for _, text := range texts {
		emb, err := fn(ctx, text)
		if err != nil {
			return nil, newProviderError(provider, statusFromMessage(err), err)
		}
		results = append(results, emb)
	}
	return results, nil
}
