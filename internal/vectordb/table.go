package vectordb

import "context"

// StoreName is the logical store every backend keeps its documents under.
const StoreName = "vectorstore"

// Table is the durable document table for a single namespace.
type Table interface {
	// Put inserts the document, or replaces the one with the same ID.
	Put(ctx context.Context, doc Document) error

	// GetAll returns every document in insertion order.
	GetAll(ctx context.Context) ([]Document, error)

	// Clear removes every document. It cannot be undone.
	Clear(ctx context.Context) error

	// Close releases the table. The documents remain on disk.
	Close() error
}

// Backend opens namespaced tables over one physical database.
type Backend interface {
	// Open returns the table for namespace, creating it if absent.
	Open(ctx context.Context, namespace string) (Table, error)

	// Close releases the underlying database.
	Close() error
}
