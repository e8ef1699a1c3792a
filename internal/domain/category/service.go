package category

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hirosato/finance-ledger/backend/internal/common/utils"
	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
	"github.com/hirosato/finance-ledger/backend/pkg/validator"
)

// Service provides category-related business logic
type Service struct {
	repo      Repository
	validator validator.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new category service
func NewService(repo Repository, v validator.Validator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateCategory creates a user-owned category
func (s *Service) CreateCategory(ctx context.Context, tenantCtx *tenant.TenantContext, req *CreateCategoryRequest) (*Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Color = utils.NormalizeColor(req.Color)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.ensureUniqueName(ctx, tenantCtx.UserID, req.Name, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	category := &Category{
		CategoryID:   uuid.New().String(),
		OwnerID:      tenantCtx.UserID,
		Name:         req.Name,
		CategoryType: req.CategoryType,
		Color:        req.Color,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.repo.CreateCategory(ctx, category)
}

// GetCategory retrieves a category the user owns or a default category
func (s *Service) GetCategory(ctx context.Context, tenantCtx *tenant.TenantContext, categoryID string) (*Category, error) {
	category, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.VisibleTo(tenantCtx.UserID) {
		return nil, errors.NewNotFoundError("category not found")
	}
	return category, nil
}

// ListCategories returns the active categories visible to the user, split by type and ordered by name
func (s *Service) ListCategories(ctx context.Context, tenantCtx *tenant.TenantContext) (*CategoryListResponse, error) {
	categories, err := s.repo.GetCategories(ctx, tenantCtx.UserID, &CategoryFilter{})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})

	resp := &CategoryListResponse{
		Income:  []*Category{},
		Expense: []*Category{},
	}
	for _, c := range categories {
		switch c.CategoryType {
		case entry.Income:
			resp.Income = append(resp.Income, c)
		case entry.Expense:
			resp.Expense = append(resp.Expense, c)
		}
	}
	return resp, nil
}

// UpdateCategory edits a user-owned category. Default categories are read-only.
func (s *Service) UpdateCategory(ctx context.Context, tenantCtx *tenant.TenantContext, categoryID string, req *UpdateCategoryRequest) (*Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Color = utils.NormalizeColor(req.Color)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	category, err := s.ownedCategory(ctx, tenantCtx.UserID, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" && !strings.EqualFold(req.Name, category.Name) {
		if err := s.ensureUniqueName(ctx, tenantCtx.UserID, req.Name, categoryID); err != nil {
			return nil, err
		}
		category.Name = req.Name
	}
	if req.CategoryType != "" && req.CategoryType != category.CategoryType {
		if category.TransactionCount > 0 {
			return nil, NewTypeLockedError(category.TransactionCount)
		}
		category.CategoryType = req.CategoryType
	}
	if req.Color != "" {
		category.Color = req.Color
	}
	category.UpdatedAt = s.now().UTC()

	return s.repo.UpdateCategory(ctx, category)
}

// DeactivateCategory soft-deletes a user-owned category
func (s *Service) DeactivateCategory(ctx context.Context, tenantCtx *tenant.TenantContext, categoryID string) (*Category, error) {
	category, err := s.ownedCategory(ctx, tenantCtx.UserID, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return category, nil
	}

	category.IsActive = false
	category.UpdatedAt = s.now().UTC()
	return s.repo.UpdateCategory(ctx, category)
}

// DeleteCategory permanently removes a user-owned category. It is rejected
// while any transaction references the category.
func (s *Service) DeleteCategory(ctx context.Context, tenantCtx *tenant.TenantContext, categoryID string) error {
	if _, err := s.ownedCategory(ctx, tenantCtx.UserID, categoryID); err != nil {
		return err
	}
	return s.repo.DeleteCategory(ctx, categoryID)
}

// SeedDefaults creates the missing system-wide default categories. Running it
// again only counts the existing ones.
func (s *Service) SeedDefaults(ctx context.Context) (*SeedResult, error) {
	specs, err := Defaults()
	if err != nil {
		return nil, errors.NewInternalError("failed to load default categories", err)
	}

	existing, err := s.repo.GetCategories(ctx, SystemOwner, &CategoryFilter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		if c.IsDefault {
			seen[defaultKey(c.CategoryType, c.Name)] = true
		}
	}

	result := &SeedResult{}
	now := s.now().UTC()
	for _, spec := range specs {
		if seen[defaultKey(spec.CategoryType, spec.Name)] {
			result.Existing++
			continue
		}
		color := utils.NormalizeColor(spec.Color)
		if err := s.validator.Validate(&CreateCategoryRequest{Name: spec.Name, CategoryType: spec.CategoryType, Color: color}); err != nil {
			return nil, errors.NewInternalError("invalid default category "+spec.Name, err)
		}

		category := &Category{
			CategoryID:   uuid.New().String(),
			OwnerID:      SystemOwner,
			Name:         spec.Name,
			CategoryType: spec.CategoryType,
			Color:        color,
			IsDefault:    true,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := s.repo.CreateCategory(ctx, category); err != nil {
			return nil, err
		}
		result.Created++
	}

	s.logger.InfoContext(ctx, "Seeded default categories",
		"created", result.Created,
		"existing", result.Existing)

	return result, nil
}

// ownedCategory loads a category the user may modify
func (s *Service) ownedCategory(ctx context.Context, ownerID, categoryID string) (*Category, error) {
	category, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.IsDefault {
		return nil, errors.NewValidationError("default categories cannot be modified")
	}
	if category.OwnerID != ownerID {
		return nil, errors.NewNotFoundError("category not found")
	}
	return category, nil
}

// ensureUniqueName checks the name against the user's categories and the defaults
func (s *Service) ensureUniqueName(ctx context.Context, ownerID, name, exceptID string) error {
	existing, err := s.repo.GetCategories(ctx, ownerID, &CategoryFilter{IncludeInactive: true})
	if err != nil {
		return err
	}
	for _, c := range existing {
		if c.CategoryID == exceptID || !strings.EqualFold(c.Name, name) {
			continue
		}
		if c.IsDefault {
			return errors.NewFieldValidationError("name", "a default category with this name already exists")
		}
		return errors.NewFieldValidationError("name", "a category with this name already exists")
	}
	return nil
}

func defaultKey(t entry.Type, name string) string {
	return string(t) + "#" + strings.ToLower(name)
}
