package vectordb

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ziadkadry99/localrag/internal/db"
	"github.com/ziadkadry99/localrag/internal/embeddings"
)

// mockEmbedder returns fixed vectors for known texts and a deterministic
// character-histogram vector for everything else.
type mockEmbedder struct {
	dims    int
	vectors map[string][]float32
	errs    map[string]error

	mu    sync.Mutex
	calls int
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{dims: dims, vectors: map[string][]float32{}, errs: map[string]error{}}
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err, ok := m.errs[text]; ok {
			return nil, err
		}
		if v, ok := m.vectors[text]; ok {
			out[i] = v
			continue
		}
		out[i] = m.deterministicVector(text)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockEmbedder) deterministicVector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i, ch := range text {
		vec[(int(ch)+i)%m.dims] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func mockFactory(e embeddings.Embedder) EmbedderFactory {
	return func(context.Context, string) (embeddings.Embedder, error) {
		return e, nil
	}
}

// memBackend keeps tables in memory and counts Open calls. When gate is
// set, Open blocks until it is closed.
type memBackend struct {
	mu      sync.Mutex
	opens   int
	tables  map[string]*memTable
	gate    chan struct{}
	entered chan struct{}
	openErr error
}

func newMemBackend() *memBackend {
	return &memBackend{tables: map[string]*memTable{}}
}

func (b *memBackend) Open(_ context.Context, namespace string) (Table, error) {
	b.mu.Lock()
	b.opens++
	gate, entered := b.gate, b.entered
	b.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openErr != nil {
		return nil, b.openErr
	}
	t, ok := b.tables[namespace]
	if !ok {
		t = &memTable{}
		b.tables[namespace] = t
	}
	return t, nil
}

func (b *memBackend) Close() error { return nil }

func (b *memBackend) openCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opens
}

type memTable struct {
	mu     sync.Mutex
	docs   []Document
	putErr error
	closed int
}

func (t *memTable) Put(_ context.Context, doc Document) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.putErr != nil {
		return t.putErr
	}
	for i := range t.docs {
		if t.docs[i].ID == doc.ID {
			t.docs[i] = doc
			return nil
		}
	}
	t.docs = append(t.docs, doc)
	return nil
}

func (t *memTable) GetAll(context.Context) ([]Document, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Document(nil), t.docs...), nil
}

func (t *memTable) Clear(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.docs = nil
	return nil
}

func (t *memTable) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed++
	return nil
}

// newTestStore returns a hydrated store over an in-memory SQLite backend.
func newTestStore(t *testing.T, e embeddings.Embedder) *VectorStore {
	t.Helper()
	d, err := db.OpenMemory()
	require.NoError(t, err)

	reg := NewRegistry(NewSQLiteBackend(d), mockFactory(e), zaptest.NewLogger(t))
	t.Cleanup(func() { reg.Close() })

	s, err := reg.GetInstance(context.Background(), "sk-test")
	require.NoError(t, err)
	return s
}

func texts(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Text
	}
	return out
}

func resultTexts(results []SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text
	}
	return out
}

var errBoom = fmt.Errorf("boom")
