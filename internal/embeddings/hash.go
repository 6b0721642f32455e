package embeddings

import (
	"context"
	"unicode/utf16"
)

// HashDimensions is the vector length produced by HashEmbedder.
const HashDimensions = 10

// HashEmbedder derives a small deterministic vector from a rolling string
// hash. It needs no network or credential, so it backs offline use and
// demos; similarity between its vectors carries no semantic meaning.
type HashEmbedder struct{}

// NewHashEmbedder creates a new HashEmbedder.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

func (e *HashEmbedder) Name() string {
	return "hash"
}

func (e *HashEmbedder) Dimensions() int {
	return HashDimensions
}

func (e *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = hashVector(text)
	}
	return results, nil
}

// hashVector folds the UTF-16 code units of text into a 32-bit hash
// (h = h*31 + c, wrapping) and slices it into HashDimensions bytes, each
// scaled to [0, 1].
func hashVector(text string) []float32 {
	var h int32
	for _, c := range utf16.Encode([]rune(text)) {
		h = (h << 5) - h + int32(c)
	}

	vec := make([]float32, HashDimensions)
	for i := range vec {
		vec[i] = float32((h>>(uint(i)*3))&0xFF) / 255
	}
	return vec
}
