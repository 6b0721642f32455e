package vectordb

import (
	"errors"
	"fmt"

	"github.com/ziadkadry99/localrag/internal/embeddings"
)

var (
	// ErrInitialization means a store could not be obtained: the credential
	// was blank or its persistent table could not be opened.
	ErrInitialization = errors.New("vector store initialization failed")

	// ErrNotInitialized is returned by operations on a store that was never
	// initialized or has since been closed.
	ErrNotInitialized = errors.New("vector store not initialized")

	// ErrDimensionMismatch is returned when an embedding's length differs
	// from the documents already in the store.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// Provider failure kinds, re-exported so callers need only this package.
	ErrAuthentication = embeddings.ErrAuthentication
	ErrTransient      = embeddings.ErrTransient
	ErrInvalidInput   = embeddings.ErrInvalidInput
)

// BatchError reports which segment of a batch add failed. Segments before
// Index were added and stay added.
type BatchError struct {
	Index int // zero-based segment that failed
	Total int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch segment %d of %d failed (%d added): %v", e.Index+1, e.Total, e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
