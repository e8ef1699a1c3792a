package category

import (
	"context"

	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
)

// NewTypeLockedError reports a type change on a category that transactions
// already reference. Those transactions carry the old type.
func NewTypeLockedError(transactionCount int64) errors.AppError {
	return errors.NewConflictError("cannot change the type of a category that has transactions").
		WithDetail("transactionCount", transactionCount)
}

// Repository defines the interface for category data operations
type Repository interface {
	// Create a new category
	CreateCategory(ctx context.Context, category *Category) (*Category, error)

	// Get a category by ID regardless of owner
	GetCategory(ctx context.Context, categoryID string) (*Category, error)

	// Get the owner's categories together with the system defaults.
	// SystemOwner returns only the defaults.
	GetCategories(ctx context.Context, ownerID string, filter *CategoryFilter) ([]*Category, error)

	// Update name, type, color and active flag. A type change is applied only
	// while no transaction references the category, checked in the same write.
	UpdateCategory(ctx context.Context, category *Category) (*Category, error)

	// Delete a category. Fails with REFERENCE_PROTECTED while transactions reference it.
	DeleteCategory(ctx context.Context, categoryID string) error
}
