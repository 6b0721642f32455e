package vectordb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/localrag/internal/embeddings"
)

// DefaultTopK is the number of results returned when the caller does not ask
// for a specific amount.
const DefaultTopK = 5

// VectorStore holds the documents of one credential namespace. The table is
// the durable copy; docs mirrors it in insertion order and is what searches
// scan.
type VectorStore struct {
	namespace string
	embedder  embeddings.Embedder
	logger    *zap.Logger

	mu    sync.RWMutex
	table Table // nil until hydrated, and again after Close
	docs  []Document
	dims  int
}

func newVectorStore(namespace string, embedder embeddings.Embedder, logger *zap.Logger) *VectorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VectorStore{
		namespace: namespace,
		embedder:  embedder,
		logger:    logger.With(zap.String("namespace", namespace)),
	}
}

// hydrate loads every persisted document into the cache and takes ownership
// of table.
func (s *VectorStore) hydrate(ctx context.Context, table Table) error {
	docs, err := table.GetAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table
	s.docs = docs
	s.dims = 0
	if len(docs) > 0 {
		s.dims = len(docs[0].Embedding)
	}
	s.logger.Debug("vector store hydrated", zap.Int("documents", len(docs)), zap.Int("dimensions", s.dims))
	return nil
}

// Namespace returns the storage partition this store reads and writes.
func (s *VectorStore) Namespace() string {
	return s.namespace
}

// Dimensions returns the embedding length shared by the stored documents,
// falling back to what the embedder reports while the store is empty.
func (s *VectorStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dims > 0 {
		return s.dims
	}
	return s.embedder.Dimensions()
}

// Count returns the number of cached documents.
func (s *VectorStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *VectorStore) ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table != nil
}

// AddDocument embeds text, persists it and appends it to the cache. The
// document is cached only once it has been persisted.
func (s *VectorStore) AddDocument(ctx context.Context, text string, metadata json.RawMessage) (string, error) {
	if !s.ready() {
		return "", ErrNotInitialized
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: document text is empty", ErrInvalidInput)
	}
	if len(metadata) > 0 && !json.Valid(metadata) {
		return "", fmt.Errorf("%w: metadata is not valid JSON", ErrInvalidInput)
	}

	vec, err := embeddings.EmbedOne(ctx, s.embedder, text)
	if err != nil {
		return "", fmt.Errorf("embedding document: %w", err)
	}

	doc := Document{
		ID:        uuid.NewString(),
		Text:      text,
		Embedding: vec,
		CreatedAt: time.Now().UTC(),
	}
	if len(metadata) > 0 {
		doc.Metadata = append(json.RawMessage(nil), metadata...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return "", ErrNotInitialized
	}
	if s.dims > 0 && len(vec) != s.dims {
		return "", fmt.Errorf("%w: document has %d dimensions, store has %d", ErrDimensionMismatch, len(vec), s.dims)
	}
	if err := s.table.Put(ctx, doc); err != nil {
		return "", fmt.Errorf("persisting document: %w", err)
	}
	s.docs = append(s.docs, doc)
	s.dims = len(vec)

	s.logger.Debug("document added", zap.String("id", doc.ID), zap.Int("documents", len(s.docs)))
	return doc.ID, nil
}

// AddDocuments splits batch on BatchDelimiter and adds each segment in
// order. Adding stops at the first failing segment; the segments before it
// stay added and their ids are returned along with a *BatchError.
func (s *VectorStore) AddDocuments(ctx context.Context, batch string, metadata json.RawMessage, opts ...BatchOption) ([]string, error) {
	if !s.ready() {
		return nil, ErrNotInitialized
	}

	var o batchOptions
	for _, opt := range opts {
		opt(&o)
	}

	segments := SplitBatch(batch)
	ids := make([]string, 0, len(segments))
	for i, seg := range segments {
		id, err := s.AddDocument(ctx, seg, metadata)
		if err != nil {
			return ids, &BatchError{Index: i, Total: len(segments), Err: err}
		}
		ids = append(ids, id)
		if o.progress != nil {
			o.progress(i+1, len(segments))
		}
	}
	return ids, nil
}

// SimilaritySearch returns up to topK documents ordered by cosine similarity
// to query, most similar first.
func (s *VectorStore) SimilaritySearch(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if !s.ready() {
		return nil, ErrNotInitialized
	}
	if topK < 0 {
		return nil, fmt.Errorf("%w: topK must not be negative, got %d", ErrInvalidInput, topK)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", ErrInvalidInput)
	}
	if topK == 0 || s.Count() == 0 {
		return []SearchResult{}, nil
	}

	vec, err := embeddings.EmbedOne(ctx, s.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, ErrNotInitialized
	}
	if s.dims > 0 && len(vec) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, store has %d", ErrDimensionMismatch, len(vec), s.dims)
	}
	return rank(s.docs, vec, topK), nil
}

// ClearAllDocuments deletes every document in the namespace. It is safe to
// call on an empty store.
func (s *VectorStore) ClearAllDocuments(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return ErrNotInitialized
	}
	if err := s.table.Clear(ctx); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	s.docs = nil
	s.dims = 0
	s.logger.Debug("documents cleared")
	return nil
}

// GetAllDocuments returns a copy of the cached documents in insertion order.
func (s *VectorStore) GetAllDocuments() ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, ErrNotInitialized
	}
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out, nil
}

// TestCredential embeds a fixed probe string to check that the provider
// accepts the store's credential. It changes nothing.
func (s *VectorStore) TestCredential(ctx context.Context) (bool, error) {
	if !s.ready() {
		return false, ErrNotInitialized
	}
	if _, err := embeddings.EmbedOne(ctx, s.embedder, embeddings.ProbeText); err != nil {
		return false, err
	}
	return true, nil
}

// Close releases the table and empties the cache. Persisted documents are
// kept. Every later call fails with ErrNotInitialized.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return nil
	}
	err := s.table.Close()
	s.table = nil
	s.docs = nil
	s.logger.Debug("vector store closed")
	return err
}
