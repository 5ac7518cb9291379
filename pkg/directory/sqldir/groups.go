package sqldir

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/principal"
)

// ============================================
// GROUP OPERATIONS
// ============================================

func (s *Store) CreateGroup(ctx context.Context, group *directory.Group) (*directory.Group, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}

	var row groupModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		key := fold(group.Name)
		if err := nameTaken(tx, key); err != nil {
			return err
		}

		sid, err := s.allocateSID(tx)
		if err != nil {
			return err
		}

		row = groupModel{
			ID:          uuid.New().String(),
			Name:        group.Name,
			NameFold:    key,
			SID:         sid.String(),
			Description: group.Description,
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueConstraintError(err) {
				return directory.ErrDuplicateGroup
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row.toGroup(s.machine)
}

func (s *Store) GetGroup(ctx context.Context, name string) (*directory.Group, error) {
	row, err := getByField[groupModel](s.db, ctx, "name_fold", fold(name), directory.ErrGroupNotFound)
	if err != nil {
		return nil, err
	}
	return row.toGroup(s.machine)
}

func (s *Store) ListGroups(ctx context.Context) ([]*directory.Group, error) {
	rows, err := listOrdered[groupModel](s.db, ctx, "name_fold")
	if err != nil {
		return nil, err
	}
	groups := make([]*directory.Group, 0, len(rows))
	for _, row := range rows {
		group, err := row.toGroup(s.machine)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *Store) DeleteGroup(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row groupModel
		if err := tx.Where("name_fold = ?", fold(name)).First(&row).Error; err != nil {
			return convertNotFoundError(err, directory.ErrGroupNotFound)
		}

		group, err := row.toGroup(s.machine)
		if err != nil {
			return err
		}

		// Delete the group's own member list.
		if err := tx.Where("group_id = ?", row.ID).Delete(&memberModel{}).Error; err != nil {
			return err
		}

		// Groups can be members of other groups; drop those entries too.
		if err := dropMemberEverywhere(tx, group.Identity()); err != nil {
			return err
		}
		return tx.Delete(&row).Error
	})
}

// ============================================
// MEMBERSHIP OPERATIONS
// ============================================

func (s *Store) GroupMembers(ctx context.Context, group string) ([]directory.Member, error) {
	groupRow, err := getByField[groupModel](s.db, ctx, "name_fold", fold(group), directory.ErrGroupNotFound)
	if err != nil {
		return nil, err
	}

	var rows []memberModel
	if err := s.db.WithContext(ctx).
		Where("group_id = ?", groupRow.ID).
		Order("position").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	members := make([]directory.Member, 0, len(rows))
	for _, row := range rows {
		member, err := row.toMember()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

func (s *Store) AddGroupMember(ctx context.Context, group string, id principal.Identity) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var groupRow groupModel
		if err := tx.Where("name_fold = ?", fold(group)).First(&groupRow).Error; err != nil {
			return convertNotFoundError(err, directory.ErrGroupNotFound)
		}

		key := id.Key()
		var n int64
		if err := tx.Model(&memberModel{}).
			Where("group_id = ? AND key_fold = ?", groupRow.ID, key).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return directory.ErrDuplicateMember
		}

		member, err := s.memberFor(tx, id)
		if err != nil {
			return err
		}

		// Positions only ever grow, so enumeration keeps insertion order
		// even across removals.
		var maxPos int
		if err := tx.Model(&memberModel{}).
			Where("group_id = ?", groupRow.ID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPos).Error; err != nil {
			return err
		}

		row := memberModel{
			GroupID:  groupRow.ID,
			KeyFold:  key,
			Position: maxPos + 1,
			SID:      member.SID,
			Domain:   member.Domain,
			Name:     member.Name,
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueConstraintError(err) {
				return directory.ErrDuplicateMember
			}
			return err
		}
		return nil
	})
}

func (s *Store) RemoveGroupMember(ctx context.Context, group string, id principal.Identity) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var groupRow groupModel
		if err := tx.Where("name_fold = ?", fold(group)).First(&groupRow).Error; err != nil {
			return convertNotFoundError(err, directory.ErrGroupNotFound)
		}

		result := tx.Where("group_id = ? AND key_fold = ?", groupRow.ID, id.Key()).
			Delete(&memberModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return directory.ErrMemberNotFound
		}
		return nil
	})
}

// memberRecord is the row content for a new member, minus group and position.
type memberRecord struct {
	SID    string
	Domain string
	Name   string
}

// memberFor builds the membership row content for an identity. Local
// principals must exist and contribute their SID; foreign principals are
// recorded as supplied, without one.
func (s *Store) memberFor(tx *gorm.DB, id principal.Identity) (memberRecord, error) {
	if !strings.EqualFold(id.Domain(), s.machine) {
		return memberRecord{Domain: id.Domain(), Name: id.Account()}, nil
	}

	key := fold(id.Account())

	var user userModel
	switch err := tx.Where("name_fold = ?", key).First(&user).Error; {
	case err == nil:
		return memberRecord{SID: user.SID, Domain: s.machine, Name: user.Name}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return memberRecord{}, err
	}

	var grp groupModel
	switch err := tx.Where("name_fold = ?", key).First(&grp).Error; {
	case err == nil:
		return memberRecord{SID: grp.SID, Domain: s.machine, Name: grp.Name}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return memberRecord{}, err
	}

	return memberRecord{}, fmt.Errorf("%w: %s", directory.ErrPrincipalNotFound, id)
}

// dropMemberEverywhere removes the identity from every group's member list.
func dropMemberEverywhere(tx *gorm.DB, id principal.Identity) error {
	return tx.Where("key_fold = ?", id.Key()).Delete(&memberModel{}).Error
}
