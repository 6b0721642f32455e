package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ziadkadry99/localrag/internal/vectordb"
)

const (
	askTemperature = 0.7
	askMaxTokens   = 500
)

const systemPrompt = `You are a helpful AI assistant. Use the following context from the user's document store to answer their question. If the context doesn't contain relevant information, just say so.

Context from documents:
`

// Searcher finds the stored documents most similar to a query.
// *vectordb.VectorStore satisfies it.
type Searcher interface {
	SimilaritySearch(ctx context.Context, query string, topK int) ([]vectordb.SearchResult, error)
}

// Answer is a chat reply grounded in the documents it was given.
type Answer struct {
	Question string                  `json:"question"`
	Text     string                  `json:"answer"`
	Model    string                  `json:"model,omitempty"`
	Sources  []vectordb.SearchResult `json:"sources"`
}

// Ask retrieves the topK documents most similar to question and asks the
// provider to answer from them. The question is still sent when nothing
// matches, so the model can say the documents do not cover it.
func Ask(ctx context.Context, store Searcher, provider Provider, question string, topK int) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", ErrInvalidInput)
	}

	results, err := store.SimilaritySearch(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}
	if results == nil {
		results = []vectordb.SearchResult{}
	}

	resp, err := provider.Complete(ctx, CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: BuildContext(results)},
			{Role: RoleUser, Content: question},
		},
		MaxTokens:   askMaxTokens,
		Temperature: askTemperature,
	})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", provider.Name(), ErrEmptyResponse)
	}
	return &Answer{Question: question, Text: text, Model: resp.Model, Sources: results}, nil
}

// BuildContext returns the system prompt carrying the retrieved document texts.
func BuildContext(results []vectordb.SearchResult) string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return systemPrompt + strings.Join(texts, "\n\n")
}
