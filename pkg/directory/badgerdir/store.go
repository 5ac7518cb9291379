// Package badgerdir implements the account directory on BadgerDB. It is
// the default standalone backend: a single data directory, no external
// services, durable across restarts.
package badgerdir

import (
	"errors"
	"fmt"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/musterio/muster/internal/logger"
	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/principal"
)

// firstRID is the first relative identifier handed to created accounts.
const firstRID = 1000

// Store is a BadgerDB-backed directory. Safe for concurrent use; writes
// are serialized internally so Badger transactions never conflict.
type Store struct {
	db *badgerdb.DB

	// writeMu serializes mutating transactions. The write paths touch
	// multiple keys (records, member lists, the RID allocator) and
	// serializing them is simpler than retrying optimistic conflicts.
	writeMu sync.Mutex

	machine    string
	machineSID *principal.SID
}

var _ directory.Store = (*Store)(nil)

// Open opens (or initializes) a directory database at path for the given
// machine name. A fresh database mints a random machine SID; an existing
// one keeps its SID even when the machine name changed, the way renaming
// a machine keeps its accounts.
func Open(path, machine string) (*Store, error) {
	opts := badgerdb.DefaultOptions(path).WithLogger(nil)
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory database at %s: %w", path, err)
	}

	store := &Store{db: db, machine: machine}
	if err := store.initMeta(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("Opened badger directory",
		"path", path,
		"machine", store.machine,
		"machine_sid", store.machineSID.String())
	return store, nil
}

// initMeta loads the store metadata, creating it on first open, and
// rewrites the machine name if it changed.
func (s *Store) initMeta() error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyMeta())
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			s.machineSID = principal.NewMachineSID()
			meta := &storeMeta{
				Machine:    s.machine,
				MachineSID: s.machineSID.String(),
				NextRID:    firstRID,
			}
			data, err := encodeMeta(meta)
			if err != nil {
				return err
			}
			return txn.Set(keyMeta(), data)
		}
		if err != nil {
			return fmt.Errorf("failed to read store meta: %w", err)
		}

		var meta *storeMeta
		if err := item.Value(func(val []byte) error {
			meta, err = decodeMeta(val)
			return err
		}); err != nil {
			return err
		}

		sid, err := principal.ParseSID(meta.MachineSID)
		if err != nil {
			return fmt.Errorf("corrupt machine SID in store meta: %w", err)
		}
		s.machineSID = sid

		if meta.Machine != s.machine {
			meta.Machine = s.machine
			data, err := encodeMeta(meta)
			if err != nil {
				return err
			}
			return txn.Set(keyMeta(), data)
		}
		return nil
	})
}

// MachineName returns the machine name records are qualified with.
func (s *Store) MachineName() string { return s.machine }

// MachineSID returns the store's machine SID.
func (s *Store) MachineSID() *principal.SID { return s.machineSID }

// allocateSID mints the next account SID inside txn, persisting the
// advanced RID counter in the same transaction as the record that uses it.
func (s *Store) allocateSID(txn *badgerdb.Txn) (*principal.SID, error) {
	item, err := txn.Get(keyMeta())
	if err != nil {
		return nil, fmt.Errorf("failed to read store meta: %w", err)
	}

	var meta *storeMeta
	if err := item.Value(func(val []byte) error {
		meta, err = decodeMeta(val)
		return err
	}); err != nil {
		return nil, err
	}

	rid := meta.NextRID
	meta.NextRID++

	data, err := encodeMeta(meta)
	if err != nil {
		return nil, err
	}
	if err := txn.Set(keyMeta(), data); err != nil {
		return nil, fmt.Errorf("failed to persist RID counter: %w", err)
	}
	return s.machineSID.WithRID(rid), nil
}

// nameTaken returns the duplicate error matching whichever record holds
// the name; users and groups share one account namespace.
func nameTaken(txn *badgerdb.Txn, name string) error {
	if _, err := txn.Get(keyUser(name)); err == nil {
		return directory.ErrDuplicateUser
	} else if !errors.Is(err, badgerdb.ErrKeyNotFound) {
		return err
	}
	if _, err := txn.Get(keyGroup(name)); err == nil {
		return directory.ErrDuplicateGroup
	} else if !errors.Is(err, badgerdb.ErrKeyNotFound) {
		return err
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
