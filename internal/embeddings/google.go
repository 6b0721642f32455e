package embeddings

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GoogleModel represents a supported Google embedding model.
type GoogleModel string

const (
	ModelGeminiEmbedding001 GoogleModel = "gemini-embedding-001"
	ModelTextEmbedding004   GoogleModel = "text-embedding-004"
)

func (m GoogleModel) dimensions() int {
	switch m {
	case ModelGeminiEmbedding001:
		return 3072
	case ModelTextEmbedding004:
		return 768
	default:
		return 0
	}
}

// GoogleEmbedder generates embeddings using the Gemini API.
type GoogleEmbedder struct {
	client *genai.Client
	model  GoogleModel
}

// NewGoogleEmbedder creates a new Google embedder. baseURL overrides the
// Gemini API endpoint when set.
func NewGoogleEmbedder(ctx context.Context, apiKey string, model GoogleModel, baseURL string) (*GoogleEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GoogleEmbedder{client: client, model: model}, nil
}

func (e *GoogleEmbedder) Name() string {
	return string(e.model)
}

func (e *GoogleEmbedder) Dimensions() int {
	return e.model.dimensions()
}

func (e *GoogleEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(texts))
	for _, text := range texts {
		resp, err := e.client.Models.EmbedContent(ctx, string(e.model), genai.Text(text), nil)
		if err != nil {
			return nil, newProviderError("google", googleStatus(err), err)
		}
		if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
			return nil, fmt.Errorf("google returned empty embedding")
		}
		results = append(results, resp.Embeddings[0].Values)
	}
	return results, nil
}

func googleStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}
