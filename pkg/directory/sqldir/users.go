package sqldir

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/musterio/muster/pkg/directory"
)

// ============================================
// USER OPERATIONS
// ============================================

func (s *Store) CreateUser(ctx context.Context, user *directory.User) (*directory.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	var row userModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		key := fold(user.Name)
		if err := nameTaken(tx, key); err != nil {
			return err
		}

		sid, err := s.allocateSID(tx)
		if err != nil {
			return err
		}

		row = userModel{
			ID:          uuid.New().String(),
			Name:        user.Name,
			NameFold:    key,
			SID:         sid.String(),
			FullName:    user.FullName,
			Description: user.Description,
			Disabled:    user.Disabled,
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueConstraintError(err) {
				return directory.ErrDuplicateUser
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row.toUser(s.machine)
}

func (s *Store) GetUser(ctx context.Context, name string) (*directory.User, error) {
	row, err := getByField[userModel](s.db, ctx, "name_fold", fold(name), directory.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return row.toUser(s.machine)
}

func (s *Store) ListUsers(ctx context.Context) ([]*directory.User, error) {
	rows, err := listOrdered[userModel](s.db, ctx, "name_fold")
	if err != nil {
		return nil, err
	}
	users := make([]*directory.User, 0, len(rows))
	for _, row := range rows {
		user, err := row.toUser(s.machine)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *directory.User) (*directory.User, error) {
	var row userModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name_fold = ?", fold(user.Name)).First(&row).Error; err != nil {
			return convertNotFoundError(err, directory.ErrUserNotFound)
		}

		// Select forces zero values (Disabled=false) through as well.
		updates := userModel{
			FullName:    user.FullName,
			Description: user.Description,
			Disabled:    user.Disabled,
		}
		if err := tx.Model(&row).Select("FullName", "Description", "Disabled").Updates(&updates).Error; err != nil {
			return err
		}
		return tx.First(&row, "id = ?", row.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return row.toUser(s.machine)
}

func (s *Store) DeleteUser(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row userModel
		if err := tx.Where("name_fold = ?", fold(name)).First(&row).Error; err != nil {
			return convertNotFoundError(err, directory.ErrUserNotFound)
		}

		user, err := row.toUser(s.machine)
		if err != nil {
			return err
		}

		// Drop the account's memberships everywhere before the account itself.
		if err := dropMemberEverywhere(tx, user.Identity()); err != nil {
			return err
		}
		return tx.Delete(&row).Error
	})
}
