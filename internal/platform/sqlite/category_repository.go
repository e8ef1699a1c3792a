package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
)

const categoryColumns = `category_id, owner_id, name, category_type, color, is_default,
	is_active, transaction_count, created_at, updated_at`

func scanCategory(row scanner) (*category.Category, error) {
	var (
		c                    category.Category
		categoryType         string
		isDefault, isActive  int
		createdAt, updatedAt string
	)
	if err := row.Scan(&c.CategoryID, &c.OwnerID, &c.Name, &categoryType, &c.Color, &isDefault,
		&isActive, &c.TransactionCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.CategoryType = entry.Type(categoryType)
	c.IsDefault = isDefault == 1
	c.IsActive = isActive == 1
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

// CreateCategory inserts a new category
func (s *Store) CreateCategory(ctx context.Context, c *category.Category) (*category.Category, error) {
	_, err := s.conn.DB().ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		c.CategoryID, c.OwnerID, c.Name, string(c.CategoryType), c.Color, boolToInt(c.IsDefault),
		boolToInt(c.IsActive), formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return nil, s.translateError("create category", err)
	}
	return c, nil
}

// GetCategory retrieves a category by ID
func (s *Store) GetCategory(ctx context.Context, categoryID string) (*category.Category, error) {
	row := s.conn.DB().QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE category_id = ?`, categoryID)
	c, err := scanCategory(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("category not found")
	}
	if err != nil {
		return nil, s.translateError("get category", err)
	}
	return c, nil
}

// GetCategories retrieves the owner's categories and the defaults
func (s *Store) GetCategories(ctx context.Context, ownerID string, filter *category.CategoryFilter) ([]*category.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE (owner_id = ? OR is_default = 1)`
	args := []any{ownerID}
	if filter == nil || !filter.IncludeInactive {
		query += ` AND is_active = 1`
	}
	if filter != nil && filter.CategoryType != "" {
		query += ` AND category_type = ?`
		args = append(args, string(filter.CategoryType))
	}
	query += ` ORDER BY category_type, name COLLATE NOCASE`

	rows, err := s.conn.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.translateError("list categories", err)
	}
	defer rows.Close()

	categories := []*category.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, s.translateError("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.translateError("list categories", err)
	}
	return categories, nil
}

// UpdateCategory writes name, type, color and the active flag. The type
// only changes while transaction_count is zero.
func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) (*category.Category, error) {
	res, err := s.conn.DB().ExecContext(ctx, `
		UPDATE categories
		SET name = ?, category_type = ?, color = ?, is_active = ?, updated_at = ?
		WHERE category_id = ? AND (category_type = ? OR transaction_count = 0)`,
		c.Name, string(c.CategoryType), c.Color, boolToInt(c.IsActive), formatTime(c.UpdatedAt),
		c.CategoryID, string(c.CategoryType))
	if err != nil {
		return nil, s.translateError("update category", err)
	}
	if err := exactlyOne(res, "category not found"); err != nil {
		// No row matched: either the category is gone or its type is locked
		stored, getErr := s.GetCategory(ctx, c.CategoryID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, category.NewTypeLockedError(stored.TransactionCount)
	}
	return s.GetCategory(ctx, c.CategoryID)
}

// DeleteCategory removes a category unless transactions reference it
func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	res, err := s.conn.DB().ExecContext(ctx, `DELETE FROM categories WHERE category_id = ?`, categoryID)
	if err != nil {
		err = s.translateError("delete category", err)
		if errors.HasCode(err, errors.CodeReferenceProtected) {
			return errors.NewReferenceProtectedError("category has transactions and cannot be deleted")
		}
		return err
	}
	return exactlyOne(res, "category not found")
}
