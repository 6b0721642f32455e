package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const badgerSchemaVersion = 1

var (
	badgerVersionKey = []byte("meta/schema_version")
	badgerSeqKey     = []byte("meta/seq")
)

// badgerRecord is the value stored under doc/<namespace>/<id>.
type badgerRecord struct {
	Seq       uint64          `json:"seq"`
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Embedding []byte          `json:"embedding"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt int64           `json:"created_at"`
}

// BadgerBackend stores documents in an embedded BadgerDB key/value store.
type BadgerBackend struct {
	db  *badger.DB
	seq *badger.Sequence
}

// OpenBadgerBackend opens the Badger directory at dir. An empty dir keeps
// everything in memory.
func OpenBadgerBackend(dir string, logger *zap.Logger) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.WithLogger(badgerLogger{logger.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open %s: %w", dir, err)
	}
	if err := checkBadgerVersion(db); err != nil {
		db.Close()
		return nil, err
	}
	seq, err := db.GetSequence(badgerSeqKey, 100)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("badger: sequence: %w", err)
	}
	return &BadgerBackend{db: db, seq: seq}, nil
}

func checkBadgerVersion(db *badger.DB) error {
	return db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerVersionKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return txn.Set(badgerVersionKey, []byte(strconv.Itoa(badgerSchemaVersion)))
		}
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if v, _ := strconv.Atoi(string(raw)); v != badgerSchemaVersion {
			return fmt.Errorf("badger: unsupported schema version %q (want %d)", raw, badgerSchemaVersion)
		}
		return nil
	})
}

func (b *BadgerBackend) Open(_ context.Context, namespace string) (Table, error) {
	if namespace == "" {
		return nil, fmt.Errorf("badger: namespace is required")
	}
	return &badgerTable{backend: b, prefix: []byte("doc/" + namespace + "/")}, nil
}

func (b *BadgerBackend) Close() error {
	releaseErr := b.seq.Release()
	if err := b.db.Close(); err != nil {
		return err
	}
	return releaseErr
}

type badgerTable struct {
	backend *BadgerBackend
	prefix  []byte
}

func (t *badgerTable) key(id string) []byte {
	k := make([]byte, 0, len(t.prefix)+len(id))
	k = append(k, t.prefix...)
	return append(k, id...)
}

func (t *badgerTable) Put(_ context.Context, doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("badger: document ID is required")
	}
	rec := badgerRecord{
		ID:        doc.ID,
		Text:      doc.Text,
		Embedding: encodeEmbedding(doc.Embedding),
		Metadata:  doc.Metadata,
		CreatedAt: doc.CreatedAt.UnixNano(),
	}
	key := t.key(doc.ID)

	err := t.backend.db.Update(func(txn *badger.Txn) error {
		// A replaced document keeps its position.
		item, err := txn.Get(key)
		switch {
		case err == nil:
			var prev badgerRecord
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &prev) }); err != nil {
				return err
			}
			rec.Seq = prev.Seq
		case errors.Is(err, badger.ErrKeyNotFound):
			if rec.Seq, err = t.backend.seq.Next(); err != nil {
				return err
			}
		default:
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("badger: put document %s: %w", doc.ID, err)
	}
	return nil
}

func (t *badgerTable) GetAll(_ context.Context) ([]Document, error) {
	var recs []badgerRecord
	err := t.backend.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = t.prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(t.prefix); it.ValidForPrefix(t.prefix); it.Next() {
			var rec badgerRecord
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
				return fmt.Errorf("decode %s: %w", bytes.TrimPrefix(it.Item().Key(), t.prefix), err)
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: list documents: %w", err)
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Seq < recs[j].Seq })

	docs := make([]Document, 0, len(recs))
	for _, rec := range recs {
		emb, err := decodeEmbedding(rec.Embedding)
		if err != nil {
			return nil, fmt.Errorf("badger: document %s: %w", rec.ID, err)
		}
		docs = append(docs, Document{
			ID:        rec.ID,
			Text:      rec.Text,
			Embedding: emb,
			Metadata:  rec.Metadata,
			CreatedAt: time.Unix(0, rec.CreatedAt).UTC(),
		})
	}
	return docs, nil
}

func (t *badgerTable) Clear(_ context.Context) error {
	var keys [][]byte
	err := t.backend.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = t.prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(t.prefix); it.ValidForPrefix(t.prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger: clear documents: %w", err)
	}

	wb := t.backend.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return fmt.Errorf("badger: clear documents: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("badger: clear documents: %w", err)
	}
	return nil
}

func (t *badgerTable) Close() error {
	return nil
}

// badgerLogger routes Badger's internal logging through zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }
