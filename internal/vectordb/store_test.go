package vectordb

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ziadkadry99/localrag/internal/embeddings"
)

func TestAddDocument_RoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newMockEmbedder(16)
	s := newTestStore(t, e)

	id, err := s.AddDocument(ctx, "  the quick brown fox  ", nil)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	docs, err := s.GetAllDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
	assert.Equal(t, "  the quick brown fox  ", docs[0].Text)
	assert.Len(t, docs[0].Embedding, e.Dimensions())
	assert.False(t, docs[0].CreatedAt.IsZero())
	assert.Equal(t, 16, s.Dimensions())
	assert.Equal(t, 1, s.Count())
}

func TestAddDocument_MetadataPassesThrough(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newMockEmbedder(8))

	meta := json.RawMessage(`{"source":"notes.txt","tags":["a","b"]}`)
	_, err := s.AddDocument(ctx, "hello", meta)
	require.NoError(t, err)

	results, err := s.SimilaritySearch(ctx, "hello", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.JSONEq(t, string(meta), string(results[0].Metadata))
}

func TestAddDocument_InvalidInput(t *testing.T) {
	ctx := context.Background()
	e := newMockEmbedder(8)
	s := newTestStore(t, e)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := s.AddDocument(ctx, text, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	_, err := s.AddDocument(ctx, "ok", json.RawMessage(`{not json`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, 0, e.callCount(), "invalid input must not reach the provider")
	assert.Equal(t, 0, s.Count())
}

func TestAddDocument_ProviderErrorLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	e := newMockEmbedder(8)
	e.errs["bad key"] = &embeddings.ProviderError{Provider: "mock", StatusCode: 401, Kind: embeddings.ErrAuthentication, Err: errBoom}
	s := newTestStore(t, e)

	_, err := s.AddDocument(ctx, "bad key", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, 0, s.Count())
}

func TestAddDocument_PersistFailureSkipsCache(t *testing.T) {
	ctx := context.Background()
	backend := newMemBackend()
	reg := NewRegistry(backend, mockFactory(newMockEmbedder(8)), zaptest.NewLogger(t))
	defer reg.Close()

	s, err := reg.GetInstance(ctx, "sk-a")
	require.NoError(t, err)

	backend.tables[s.Namespace()].putErr = errBoom
	_, err = s.AddDocument(ctx, "hello", nil)
	require.ErrorIs(t, err, errBoom)

	docs, err := s.GetAllDocuments()
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestAddDocument_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	e := newMockEmbedder(4)
	e.vectors["short"] = []float32{1, 0}
	s := newTestStore(t, e)

	_, err := s.AddDocument(ctx, "first", nil)
	require.NoError(t, err)

	_, err = s.AddDocument(ctx, "short", nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 1, s.Count())

	_, err = s.SimilaritySearch(ctx, "short", 3)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSimilaritySearch_Ranking(t *testing.T) {
	ctx := context.Background()
	e := newMockEmbedder(2)
	e.vectors["x"] = []float32{1, 0}
	e.vectors["y"] = []float32{0, 1}
	e.vectors["mostly x"] = []float32{0.9, 0.1}
	e.vectors["query"] = []float32{1, 0}
	s := newTestStore(t, e)

	for _, text := range []string{"x", "y", "mostly x"} {
		_, err := s.AddDocument(ctx, text, nil)
		require.NoError(t, err)
	}

	results, err := s.SimilaritySearch(ctx, "query", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "mostly x", "y"}, resultTexts(results))
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.0, results[2].Score, 1e-9)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSimilaritySearch_TopKBound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newMockEmbedder(8))

	for _, text := range []string{"alpha", "beta", "gamma", "delta"} {
		_, err := s.AddDocument(ctx, text, nil)
		require.NoError(t, err)
	}

	for _, k := range []int{0, 1, 3, 4, 10} {
		results, err := s.SimilaritySearch(ctx, "alpha", k)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Len(t, results, min(4, k), "k=%d", k)
	}

	_, err := s.SimilaritySearch(ctx, "alpha", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.SimilaritySearch(ctx, "  ", 3)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSimilaritySearch_EmptyStore(t *testing.T) {
	s := newTestStore(t, newMockEmbedder(8))

	results, err := s.SimilaritySearch(context.Background(), "anything", DefaultTopK)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestSimilaritySearch_EmptyStoreDoesNotEmbed(t *testing.T) {
	ctx := context.Background()
	e := newMockEmbedder(8)
	rejected := &embeddings.ProviderError{Provider: "mock", StatusCode: 401, Kind: embeddings.ErrAuthentication, Err: errBoom}
	e.errs["anything"] = rejected
	e.errs[embeddings.ProbeText] = rejected
	s := newTestStore(t, e)

	// A rejected credential goes unnoticed while there is nothing to rank.
	results, err := s.SimilaritySearch(ctx, "anything", DefaultTopK)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, e.callCount())

	// TestCredential always reaches the provider.
	_, err = s.TestCredential(ctx)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, 1, e.callCount())

	e.errs = map[string]error{}
	_, err = s.AddDocument(ctx, "first", nil)
	require.NoError(t, err)
	e.errs["anything"] = rejected
	_, err = s.SimilaritySearch(ctx, "anything", DefaultTopK)
	assert.ErrorIs(t, err, ErrAuthentication)

	// topK 0 never embeds either.
	calls := e.callCount()
	results, err = s.SimilaritySearch(ctx, "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, calls, e.callCount())
}

func TestSimilaritySearch_ZeroVectorSortsLast(t *testing.T) {
	ctx := context.Background()
	e := newMockEmbedder(3)
	e.vectors["zero"] = []float32{0, 0, 0}
	e.vectors["opposite"] = []float32{-1, 0, 0}
	e.vectors["same"] = []float32{1, 0, 0}
	e.vectors["query"] = []float32{1, 0, 0}
	e.vectors["zero query"] = []float32{0, 0, 0}
	s := newTestStore(t, e)

	// Insert the zero vector first so insertion order alone would rank it high.
	for _, text := range []string{"zero", "opposite", "same"} {
		_, err := s.AddDocument(ctx, text, nil)
		require.NoError(t, err)
	}

	results, err := s.SimilaritySearch(ctx, "query", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"same", "opposite", "zero"}, resultTexts(results))
	for _, r := range results {
		assert.False(t, math.IsNaN(r.Score), "score for %q is NaN", r.Text)
	}
	assert.Equal(t, 0.0, results[2].Score)

	// A zero query scores everything 0 without NaN and keeps insertion order.
	results, err = s.SimilaritySearch(ctx, "zero query", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"zero", "opposite", "same"}, resultTexts(results))
	for _, r := range results {
		assert.Equal(t, 0.0, r.Score)
	}
}

func TestClearAllDocuments_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newMockEmbedder(8))

	_, err := s.AddDocument(ctx, "hello", nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, s.ClearAllDocuments(ctx))

		docs, err := s.GetAllDocuments()
		require.NoError(t, err)
		assert.Empty(t, docs)

		results, err := s.SimilaritySearch(ctx, "hello", 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	}
}

func TestClearAllDocuments_AllowsNewDimensions(t *testing.T) {
	ctx := context.Background()
	e := newMockEmbedder(4)
	e.vectors["short"] = []float32{1, 0}
	s := newTestStore(t, e)

	_, err := s.AddDocument(ctx, "first", nil)
	require.NoError(t, err)
	require.NoError(t, s.ClearAllDocuments(ctx))

	_, err = s.AddDocument(ctx, "short", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Dimensions())
}

func TestAddDocuments_Split(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newMockEmbedder(8))

	ids, err := s.AddDocuments(ctx, "a XXXX b  XXXX  c", nil)
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	docs, err := s.GetAllDocuments()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, texts(docs))
	for i, d := range docs {
		assert.Equal(t, ids[i], d.ID)
	}

	ids, err = s.AddDocuments(ctx, "  XXXX  ", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, 3, s.Count())
}

func TestAddDocuments_PartialFailure(t *testing.T) {
	ctx := context.Background()
	e := newMockEmbedder(8)
	e.errs["two"] = &embeddings.ProviderError{Provider: "mock", StatusCode: 503, Kind: embeddings.ErrTransient, Err: errBoom}
	s := newTestStore(t, e)

	ids, err := s.AddDocuments(ctx, "one XXXX two XXXX three", nil)
	require.Error(t, err)
	assert.Len(t, ids, 1)

	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, 1, batchErr.Index)
	assert.Equal(t, 3, batchErr.Total)
	assert.ErrorIs(t, err, ErrTransient)

	docs, err := s.GetAllDocuments()
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, texts(docs))
}

func TestAddDocuments_Progress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newMockEmbedder(8))

	var calls [][2]int
	_, err := s.AddDocuments(ctx, "a XXXX b XXXX c", nil, WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestTestCredential(t *testing.T) {
	ctx := context.Background()

	e := newMockEmbedder(8)
	s := newTestStore(t, e)
	ok, err := s.TestCredential(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, s.Count())

	bad := newMockEmbedder(8)
	bad.errs[embeddings.ProbeText] = &embeddings.ProviderError{Provider: "mock", StatusCode: 401, Kind: embeddings.ErrAuthentication, Err: errBoom}
	s = newTestStore(t, bad)
	ok, err = s.TestCredential(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestClosedStore_NotInitialized(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newMockEmbedder(8))
	require.NoError(t, s.Close())

	_, err := s.AddDocument(ctx, "hello", nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = s.AddDocuments(ctx, "a XXXX b", nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = s.SimilaritySearch(ctx, "hello", 1)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, s.ClearAllDocuments(ctx), ErrNotInitialized)
	_, err = s.GetAllDocuments()
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = s.TestCredential(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.NoError(t, s.Close(), "second Close is a no-op")
}

func TestFormatResults(t *testing.T) {
	assert.Equal(t, "No results found.", FormatResults(nil))

	out := FormatResults([]SearchResult{{ID: "abc", Text: "hello world", Score: 0.5, Metadata: json.RawMessage(`{"k":1}`)}})
	assert.True(t, strings.Contains(out, "similarity: 0.5000"))
	assert.Contains(t, out, "ID: abc")
	assert.Contains(t, out, `Metadata: {"k":1}`)
	assert.Contains(t, out, "hello world")
}
