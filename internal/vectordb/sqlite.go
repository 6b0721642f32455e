package vectordb

import (
	"context"
	"fmt"
	"time"

	"github.com/ziadkadry99/localrag/internal/db"
)

// SQLiteBackend keeps every namespace in the documents table of one SQLite
// database.
type SQLiteBackend struct {
	db *db.DB
}

// NewSQLiteBackend wraps an already migrated database.
func NewSQLiteBackend(d *db.DB) *SQLiteBackend {
	return &SQLiteBackend{db: d}
}

// OpenSQLiteBackend opens (creating if needed) the database file at path.
func OpenSQLiteBackend(path string) (*SQLiteBackend, error) {
	d, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteBackend(d), nil
}

func (b *SQLiteBackend) Open(ctx context.Context, namespace string) (Table, error) {
	if namespace == "" {
		return nil, fmt.Errorf("sqlite: namespace is required")
	}
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO namespaces(name, store) VALUES(?, ?) ON CONFLICT(name) DO NOTHING`,
		namespace, StoreName)
	if err != nil {
		return nil, fmt.Errorf("sqlite: register namespace: %w", err)
	}
	return &sqliteTable{db: b.db, namespace: namespace}, nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

type sqliteTable struct {
	db        *db.DB
	namespace string
}

func (t *sqliteTable) Put(ctx context.Context, doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("sqlite: document ID is required")
	}

	// DO UPDATE keeps the row's rowid, so a replaced document keeps its position.
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO documents(namespace, id, text, embedding, metadata, created_at)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(namespace, id) DO UPDATE SET
			text = excluded.text,
			embedding = excluded.embedding,
			metadata = excluded.metadata,
			created_at = excluded.created_at`,
		t.namespace, doc.ID, doc.Text, encodeEmbedding(doc.Embedding), nullableBytes(doc.Metadata), doc.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("sqlite: put document %s: %w", doc.ID, err)
	}
	return nil
}

func (t *sqliteTable) GetAll(ctx context.Context) ([]Document, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT id, text, embedding, metadata, created_at
		FROM documents WHERE namespace = ? ORDER BY rowid`, t.namespace)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			d         Document
			blob      []byte
			metadata  []byte
			createdAt int64
		)
		if err := rows.Scan(&d.ID, &d.Text, &blob, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan document: %w", err)
		}
		if d.Embedding, err = decodeEmbedding(blob); err != nil {
			return nil, fmt.Errorf("sqlite: document %s: %w", d.ID, err)
		}
		if len(metadata) > 0 {
			d.Metadata = metadata
		}
		d.CreatedAt = time.Unix(0, createdAt).UTC()
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list documents: %w", err)
	}
	return docs, nil
}

func (t *sqliteTable) Clear(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, `DELETE FROM documents WHERE namespace = ?`, t.namespace); err != nil {
		return fmt.Errorf("sqlite: clear documents: %w", err)
	}
	return nil
}

// Close is a no-op; the connection belongs to the backend.
func (t *sqliteTable) Close() error {
	return nil
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
