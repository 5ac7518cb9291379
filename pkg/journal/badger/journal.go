// Package badger persists the reconciliation journal in a BadgerDB
// database, separate from whichever backend holds the directory itself.
package badger

import (
	"context"
	"encoding/json"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/musterio/muster/internal/logger"
	"github.com/musterio/muster/pkg/journal"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// Data Type     Prefix   Key Format                     Value Type
// =========================================================================
// Entries       "e:"     e:<unixnano %020d>:<id[:8]>    journal.Entry (JSON)
//
// The zero-padded timestamp makes lexicographic key order chronological,
// so listing newest-first is a reverse prefix scan. The entry ID fragment
// disambiguates entries recorded in the same nanosecond.

const prefixEntry = "e:"

func keyEntry(entry journal.Entry) []byte {
	id := entry.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Appendf(nil, "%s%020d:%s", prefixEntry, entry.Time.UnixNano(), id)
}

// Journal is a badger-backed journal.
type Journal struct {
	db *badgerdb.DB
}

var _ journal.Log = (*Journal)(nil)

// Open opens (or creates) the journal database at path.
func Open(path string) (*Journal, error) {
	opts := badgerdb.DefaultOptions(path).WithLogger(nil)
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	logger.Debug("journal database opened", "path", path)
	return &Journal{db: db}, nil
}

// Record persists the entry.
func (j *Journal) Record(ctx context.Context, entry journal.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	return j.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(keyEntry(entry), value)
	})
}

// List returns entries newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]journal.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = journal.DefaultListLimit
	}

	entries := []journal.Entry{}
	err := j.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(prefixEntry)
		it := txn.NewIterator(opts)
		defer it.Close()

		// In reverse mode Seek positions at the greatest key <= target;
		// 0xff sorts after every timestamp digit.
		seek := append([]byte(prefixEntry), 0xff)
		for it.Seek(seek); it.ValidForPrefix([]byte(prefixEntry)) && len(entries) < limit; it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var entry journal.Entry
				if err := json.Unmarshal(value, &entry); err != nil {
					return fmt.Errorf("failed to decode journal entry: %w", err)
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
