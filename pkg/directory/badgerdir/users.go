package badgerdir

import (
	"context"
	"errors"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/musterio/muster/pkg/directory"
)

// CreateUser creates a user and assigns it a SID.
func (s *Store) CreateUser(ctx context.Context, user *directory.User) (*directory.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var created *directory.User
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		if err := nameTaken(txn, user.Name); err != nil {
			return err
		}

		sid, err := s.allocateSID(txn)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		created = &directory.User{
			SID:         sid,
			Name:        user.Name,
			Domain:      s.machine,
			FullName:    user.FullName,
			Description: user.Description,
			Disabled:    user.Disabled,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		data, err := encodeUser(created)
		if err != nil {
			return err
		}
		return txn.Set(keyUser(user.Name), data)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetUser returns a user by name.
func (s *Store) GetUser(ctx context.Context, name string) (*directory.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user *directory.User
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyUser(name))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return directory.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			user, err = decodeUser(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns all users sorted by name. Keys are folded names, so
// Badger's byte-ordered iteration already yields case-insensitive order.
func (s *Store) ListUsers(ctx context.Context) ([]*directory.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var users []*directory.User
	err := s.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixUser)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				user, err := decodeUser(val)
				if err != nil {
					return err
				}
				users = append(users, user)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser updates the mutable fields of the named user.
func (s *Store) UpdateUser(ctx context.Context, user *directory.User) (*directory.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var updated *directory.User
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyUser(user.Name))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return directory.ErrUserNotFound
		}
		if err != nil {
			return err
		}

		if err := item.Value(func(val []byte) error {
			updated, err = decodeUser(val)
			return err
		}); err != nil {
			return err
		}

		updated.FullName = user.FullName
		updated.Description = user.Description
		updated.Disabled = user.Disabled
		updated.UpdatedAt = time.Now().UTC()

		data, err := encodeUser(updated)
		if err != nil {
			return err
		}
		return txn.Set(keyUser(user.Name), data)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes a user and every membership it holds.
func (s *Store) DeleteUser(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyUser(name))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return directory.ErrUserNotFound
		}
		if err != nil {
			return err
		}

		var user *directory.User
		if err := item.Value(func(val []byte) error {
			user, err = decodeUser(val)
			return err
		}); err != nil {
			return err
		}

		if err := txn.Delete(keyUser(name)); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return dropMemberEverywhere(txn, user.Identity())
	})
}
