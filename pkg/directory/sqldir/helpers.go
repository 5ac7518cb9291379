package sqldir

import (
	"context"

	"gorm.io/gorm"
)

// ============================================================================
// Generic GORM Helpers
// ============================================================================
//
// These helpers reduce repetitive CRUD boilerplate across store
// implementation files. They are unexported (package-internal) and operate
// on the raw *gorm.DB to avoid coupling to Store. Each helper handles
// standard concerns like context propagation and not-found error
// conversion.

// getByField retrieves a single record of type T by matching field=value.
// It converts gorm.ErrRecordNotFound to the provided notFoundErr for
// consistent domain error mapping.
//
// Example:
//
//	row, err := getByField[userModel](db, ctx, "name_fold", "alice", directory.ErrUserNotFound)
func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error) (*T, error) {
	var result T
	if err := db.WithContext(ctx).Where(field+" = ?", value).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &result, nil
}

// listOrdered retrieves all records of type T ordered by the given column.
// Returns an empty slice (not nil) on success with no records.
//
// Example:
//
//	rows, err := listOrdered[userModel](db, ctx, "name_fold")
func listOrdered[T any](db *gorm.DB, ctx context.Context, order string) ([]*T, error) {
	results := []*T{}
	if err := db.WithContext(ctx).Order(order).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
