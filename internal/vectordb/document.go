package vectordb

import (
	"encoding/json"
	"time"
)

// Document is a piece of text stored together with its embedding.
type Document struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Embedding []float32       `json:"embedding"`
	Metadata  json.RawMessage `json:"metadata,omitempty"` // opaque, never interpreted
	CreatedAt time.Time       `json:"created_at"`
}

// SearchResult pairs a document's text with its similarity to a query.
type SearchResult struct {
	ID       string          `json:"id"`
	Text     string          `json:"text"`
	Score    float64         `json:"score"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}
