package badgerdir

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/principal"
)

// CreateGroup creates a group and assigns it a SID.
func (s *Store) CreateGroup(ctx context.Context, group *directory.Group) (*directory.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := group.Validate(); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var created *directory.Group
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		if err := nameTaken(txn, group.Name); err != nil {
			return err
		}

		sid, err := s.allocateSID(txn)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		created = &directory.Group{
			SID:         sid,
			Name:        group.Name,
			Domain:      s.machine,
			Description: group.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		data, err := encodeGroup(created)
		if err != nil {
			return err
		}
		return txn.Set(keyGroup(group.Name), data)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetGroup returns a group by name.
func (s *Store) GetGroup(ctx context.Context, name string) (*directory.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var group *directory.Group
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyGroup(name))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return directory.ErrGroupNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			group, err = decodeGroup(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroups returns all groups sorted by name.
func (s *Store) ListGroups(ctx context.Context) ([]*directory.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var groups []*directory.Group
	err := s.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixGroup)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				group, err := decodeGroup(val)
				if err != nil {
					return err
				}
				groups = append(groups, group)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// DeleteGroup removes a group, its member list, and its own memberships.
func (s *Store) DeleteGroup(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.db.Update(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyGroup(name))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return directory.ErrGroupNotFound
		}
		if err != nil {
			return err
		}

		var group *directory.Group
		if err := item.Value(func(val []byte) error {
			group, err = decodeGroup(val)
			return err
		}); err != nil {
			return err
		}

		if err := txn.Delete(keyGroup(name)); err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}
		if err := txn.Delete(keyMembers(name)); err != nil {
			return fmt.Errorf("failed to delete member list: %w", err)
		}
		return dropMemberEverywhere(txn, group.Identity())
	})
}

// GroupMembers returns the group's members in insertion order.
func (s *Store) GroupMembers(ctx context.Context, group string) ([]directory.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var members []directory.Member
	err := s.db.View(func(txn *badgerdb.Txn) error {
		if _, err := txn.Get(keyGroup(group)); errors.Is(err, badgerdb.ErrKeyNotFound) {
			return directory.ErrGroupNotFound
		} else if err != nil {
			return err
		}

		item, err := txn.Get(keyMembers(group))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil // group exists, no members yet
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			members, err = decodeMembers(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// AddGroupMember adds the principal to the group.
func (s *Store) AddGroupMember(ctx context.Context, group string, id principal.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.db.Update(func(txn *badgerdb.Txn) error {
		members, err := readMembers(txn, group)
		if err != nil {
			return err
		}

		for _, m := range members {
			if m.Identity().Equal(id) {
				return directory.ErrDuplicateMember
			}
		}

		member, err := s.memberFor(txn, id)
		if err != nil {
			return err
		}

		data, err := encodeMembers(append(members, member))
		if err != nil {
			return err
		}
		return txn.Set(keyMembers(group), data)
	})
}

// RemoveGroupMember removes the principal from the group.
func (s *Store) RemoveGroupMember(ctx context.Context, group string, id principal.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.db.Update(func(txn *badgerdb.Txn) error {
		members, err := readMembers(txn, group)
		if err != nil {
			return err
		}

		filtered := slices.DeleteFunc(slices.Clone(members), func(m directory.Member) bool {
			return m.Identity().Equal(id)
		})
		if len(filtered) == len(members) {
			return directory.ErrMemberNotFound
		}

		data, err := encodeMembers(filtered)
		if err != nil {
			return err
		}
		return txn.Set(keyMembers(group), data)
	})
}

// readMembers loads a group's member list inside txn, requiring the group
// to exist.
func readMembers(txn *badgerdb.Txn, group string) ([]directory.Member, error) {
	if _, err := txn.Get(keyGroup(group)); errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, directory.ErrGroupNotFound
	} else if err != nil {
		return nil, err
	}

	item, err := txn.Get(keyMembers(group))
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var members []directory.Member
	if err := item.Value(func(val []byte) error {
		members, err = decodeMembers(val)
		return err
	}); err != nil {
		return nil, err
	}
	return members, nil
}

// memberFor builds the membership record for an identity inside txn.
// Local principals must exist and contribute their SID; foreign principals
// are recorded as supplied.
func (s *Store) memberFor(txn *badgerdb.Txn, id principal.Identity) (directory.Member, error) {
	if !strings.EqualFold(id.Domain(), s.machine) {
		return directory.Member{Domain: id.Domain(), Name: id.Account()}, nil
	}

	if item, err := txn.Get(keyUser(id.Account())); err == nil {
		var user *directory.User
		if err := item.Value(func(val []byte) error {
			user, err = decodeUser(val)
			return err
		}); err != nil {
			return directory.Member{}, err
		}
		return directory.Member{SID: user.SID, Domain: user.Domain, Name: user.Name}, nil
	} else if !errors.Is(err, badgerdb.ErrKeyNotFound) {
		return directory.Member{}, err
	}

	if item, err := txn.Get(keyGroup(id.Account())); err == nil {
		var group *directory.Group
		if err := item.Value(func(val []byte) error {
			group, err = decodeGroup(val)
			return err
		}); err != nil {
			return directory.Member{}, err
		}
		return directory.Member{SID: group.SID, Domain: group.Domain, Name: group.Name}, nil
	} else if !errors.Is(err, badgerdb.ErrKeyNotFound) {
		return directory.Member{}, err
	}

	return directory.Member{}, fmt.Errorf("%w: %s", directory.ErrPrincipalNotFound, id)
}

// dropMemberEverywhere removes the identity from every group's member
// list inside txn.
func dropMemberEverywhere(txn *badgerdb.Txn, id principal.Identity) error {
	type update struct {
		key  []byte
		data []byte
	}
	var updates []update

	it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
	defer it.Close()

	prefix := []byte(prefixMember)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		var members []directory.Member
		if err := item.Value(func(val []byte) error {
			var err error
			members, err = decodeMembers(val)
			return err
		}); err != nil {
			return err
		}

		filtered := slices.DeleteFunc(slices.Clone(members), func(m directory.Member) bool {
			return m.Identity().Equal(id)
		})
		if len(filtered) == len(members) {
			continue
		}

		data, err := encodeMembers(filtered)
		if err != nil {
			return err
		}
		updates = append(updates, update{key: item.KeyCopy(nil), data: data})
	}
	it.Close()

	for _, u := range updates {
		if err := txn.Set(u.key, u.data); err != nil {
			return fmt.Errorf("failed to update member list: %w", err)
		}
	}
	return nil
}
