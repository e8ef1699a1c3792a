package category

import (
	"time"

	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
)

// SystemOwner is the owner ID stored for system-wide default categories
const SystemOwner = ""

// Category classifies transactions as a kind of income or expense.
// Categories with an empty OwnerID are system defaults visible to every user.
type Category struct {
	CategoryID   string     `json:"categoryId"`
	OwnerID      string     `json:"ownerId,omitempty"`
	Name         string     `json:"name"`
	CategoryType entry.Type `json:"categoryType"`
	Color        string     `json:"color"`
	IsDefault    bool       `json:"isDefault"`
	IsActive     bool       `json:"isActive"`

	// Number of transactions referencing the category
	TransactionCount int64 `json:"transactionCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VisibleTo reports whether ownerID may use the category
func (c *Category) VisibleTo(ownerID string) bool {
	return c.IsDefault || c.OwnerID == ownerID
}

// CategoryFilter represents the filtering criteria for categories
type CategoryFilter struct {
	CategoryType    entry.Type
	IncludeInactive bool
}

// Matches reports whether c passes the filter
func (f *CategoryFilter) Matches(c *Category) bool {
	if f == nil {
		return c.IsActive
	}
	if !f.IncludeInactive && !c.IsActive {
		return false
	}
	return f.CategoryType == "" || c.CategoryType == f.CategoryType
}

// CreateCategoryRequest represents the request to create a category
type CreateCategoryRequest struct {
	Name         string     `json:"name" validate:"required,min=2,max=50"`
	CategoryType entry.Type `json:"categoryType" validate:"required,oneof=income expense"`
	Color        string     `json:"color" validate:"required,hexcolor,len=7"`
}

// UpdateCategoryRequest represents the request to update a category
type UpdateCategoryRequest struct {
	Name         string     `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	CategoryType entry.Type `json:"categoryType,omitempty" validate:"omitempty,oneof=income expense"`
	Color        string     `json:"color,omitempty" validate:"omitempty,hexcolor,len=7"`
}

// CategoryListResponse groups visible categories by type
type CategoryListResponse struct {
	Income  []*Category `json:"income"`
	Expense []*Category `json:"expense"`
}

// SeedResult reports what SeedDefaults did
type SeedResult struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
}
