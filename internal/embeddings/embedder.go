package embeddings

import (
	"context"
	"fmt"
	"strings"
)

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors,
	// or 0 when the provider only learns it from its first response.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// ProbeText is the fixed input used to validate a credential.
const ProbeText = "test"

// EmbedOne embeds a single text. Blank input is rejected before any
// provider call is made.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is empty", ErrInvalidInput)
	}

	results, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("%s returned %d embeddings, expected 1", e.Name(), len(results))
	}
	if len(results[0]) == 0 {
		return nil, fmt.Errorf("%s returned an empty embedding", e.Name())
	}
	return results[0], nil
}
