package vectordb

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ziadkadry99/localrag/internal/embeddings"
)

// EmbedderFactory builds the embedder authenticated with credential.
type EmbedderFactory func(ctx context.Context, credential string) (embeddings.Embedder, error)

// Registry holds the single active VectorStore. Asking for a different
// credential replaces it.
type Registry struct {
	backend     Backend
	newEmbedder EmbedderFactory
	logger      *zap.Logger

	group singleflight.Group

	mu      sync.Mutex
	current *VectorStore
	closed  bool
}

// NewRegistry creates an empty registry over backend. The registry owns the
// backend and closes it in Close.
func NewRegistry(backend Backend, newEmbedder EmbedderFactory, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		backend:     backend,
		newEmbedder: newEmbedder,
		logger:      logger,
	}
}

// Namespace derives the storage partition for credential. The credential
// itself is never stored.
func Namespace(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return "ns_" + hex.EncodeToString(sum[:])[:16]
}

// GetInstance returns the store bound to credential, creating and hydrating
// it if the active store belongs to another credential or there is none.
// Concurrent callers with the same credential share one initialization.
func (r *Registry) GetInstance(ctx context.Context, credential string) (*VectorStore, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, fmt.Errorf("%w: credential is empty", ErrInitialization)
	}
	ns := Namespace(credential)

	if s, err := r.lookup(ns); s != nil || err != nil {
		return s, err
	}

	v, err, _ := r.group.Do(ns, func() (any, error) {
		// Another flight may have installed it since lookup.
		if s, err := r.lookup(ns); s != nil || err != nil {
			return s, err
		}
		// Joiners must not fail because the first caller gave up.
		return r.open(context.WithoutCancel(ctx), ns, credential)
	})
	if err != nil {
		return nil, err
	}
	s := v.(*VectorStore)
	r.logger.Debug("vector store ready", zap.String("namespace", ns), zap.Int("documents", s.Count()))

	// A concurrent request for another credential may have replaced and
	// closed s after it was installed.
	if r.Current() != s {
		return nil, fmt.Errorf("%w: replaced by a concurrent request for another credential", ErrInitialization)
	}
	return s, nil
}

func (r *Registry) lookup(ns string) (*VectorStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, fmt.Errorf("%w: registry is closed", ErrInitialization)
	}
	if r.current != nil && r.current.namespace == ns {
		return r.current, nil
	}
	return nil, nil
}

func (r *Registry) open(ctx context.Context, ns, credential string) (*VectorStore, error) {
	embedder, err := r.newEmbedder(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("%w: creating embedder: %w", ErrInitialization, err)
	}

	table, err := r.backend.Open(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s/%s: %w", ErrInitialization, StoreName, ns, err)
	}

	s := newVectorStore(ns, embedder, r.logger)
	if err := s.hydrate(ctx, table); err != nil {
		table.Close()
		return nil, fmt.Errorf("%w: loading documents: %w", ErrInitialization, err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		s.Close()
		return nil, fmt.Errorf("%w: registry is closed", ErrInitialization)
	}
	prev := r.current
	r.current = s
	r.mu.Unlock()

	if prev != nil {
		r.logger.Debug("switching vector store", zap.String("from", prev.namespace), zap.String("to", ns))
		if err := prev.Close(); err != nil {
			r.logger.Warn("closing previous vector store", zap.String("namespace", prev.namespace), zap.Error(err))
		}
	}
	return s, nil
}

// Current returns the active store, or nil if none has been created.
func (r *Registry) Current() *VectorStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Close closes the active store and the backend. Further GetInstance calls
// fail.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	cur := r.current
	r.current = nil
	r.mu.Unlock()

	var errs []error
	if cur != nil {
		errs = append(errs, cur.Close())
	}
	errs = append(errs, r.backend.Close())
	return errors.Join(errs...)
}
