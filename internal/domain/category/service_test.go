package category_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
	"github.com/hirosato/finance-ledger/backend/internal/platform/memory"
	"github.com/hirosato/finance-ledger/backend/pkg/validator"
)

func newService() *category.Service {
	store := memory.NewStore(reconciler.New(slog.Default()), slog.Default())
	return category.NewService(store, validator.New(), slog.Default())
}

func TestDefaults(t *testing.T) {
	specs, err := category.Defaults()
	require.NoError(t, err)

	var income, expense int
	for _, s := range specs {
		switch s.CategoryType {
		case entry.Income:
			income++
		case entry.Expense:
			expense++
		}
		assert.NotEmpty(t, s.Name)
		assert.Regexp(t, `^#[0-9A-F]{6}$`, s.Color)
	}
	assert.Equal(t, 8, expense)
	assert.Equal(t, 4, income)
	assert.Equal(t, "Alimentação", specs[0].Name)
}

func TestSeedDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	first, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, first.Created)
	assert.Zero(t, first.Existing)

	second, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, 12, second.Existing)

	list, err := svc.ListCategories(ctx, &tenant.TenantContext{UserID: "anyone"})
	require.NoError(t, err)
	assert.Len(t, list.Expense, 8)
	assert.Len(t, list.Income, 4)
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	user := &tenant.TenantContext{UserID: "user-1"}
	other := &tenant.TenantContext{UserID: "user-2"}
	svc := newService()
	_, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)

	pets, err := svc.CreateCategory(ctx, user, &category.CreateCategoryRequest{
		Name: " Pets ", CategoryType: entry.Expense, Color: "#a1b2c3",
	})
	require.NoError(t, err)

	t.Run("create normalises name and color", func(t *testing.T) {
		assert.Equal(t, "Pets", pets.Name)
		assert.Equal(t, "#A1B2C3", pets.Color)
		assert.False(t, pets.IsDefault)
		assert.Equal(t, "user-1", pets.OwnerID)
	})

	t.Run("rejects invalid color", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, user, &category.CreateCategoryRequest{Name: "Books", CategoryType: entry.Expense, Color: "blue"})
		appErr := errors.As(err)
		assert.Equal(t, errors.CodeValidation, appErr.Code)
		assert.Equal(t, "color", appErr.Details["field"])
	})

	t.Run("rejects short hex color", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, user, &category.CreateCategoryRequest{Name: "Books", CategoryType: entry.Expense, Color: "#fff"})
		assert.Equal(t, "color", errors.As(err).Details["field"])

		_, err = svc.UpdateCategory(ctx, user, pets.CategoryID, &category.UpdateCategoryRequest{Color: "#A1B2C3FF"})
		assert.Equal(t, "color", errors.As(err).Details["field"])
	})

	t.Run("rejects name of a default category", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, user, &category.CreateCategoryRequest{Name: "lazer", CategoryType: entry.Expense, Color: "#000000"})
		assert.True(t, errors.HasCode(err, errors.CodeValidation))
	})

	t.Run("rejects duplicate user name", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, user, &category.CreateCategoryRequest{Name: "PETS", CategoryType: entry.Income, Color: "#000000"})
		assert.True(t, errors.HasCode(err, errors.CodeValidation))

		_, err = svc.CreateCategory(ctx, other, &category.CreateCategoryRequest{Name: "Pets", CategoryType: entry.Expense, Color: "#000000"})
		assert.NoError(t, err)
	})

	t.Run("list shows own and default categories", func(t *testing.T) {
		list, err := svc.ListCategories(ctx, user)
		require.NoError(t, err)
		assert.Len(t, list.Expense, 9)
		assert.Len(t, list.Income, 4)
	})

	t.Run("other users cannot read or modify", func(t *testing.T) {
		_, err := svc.GetCategory(ctx, other, pets.CategoryID)
		assert.True(t, errors.HasCode(err, errors.CodeNotFound))

		err = svc.DeleteCategory(ctx, other, pets.CategoryID)
		assert.True(t, errors.HasCode(err, errors.CodeNotFound))
	})

	t.Run("default categories are read-only", func(t *testing.T) {
		list, err := svc.ListCategories(ctx, user)
		require.NoError(t, err)
		var def *category.Category
		for _, c := range list.Income {
			if c.IsDefault {
				def = c
				break
			}
		}
		require.NotNil(t, def)

		_, err = svc.DeactivateCategory(ctx, user, def.CategoryID)
		assert.True(t, errors.HasCode(err, errors.CodeValidation))
		err = svc.DeleteCategory(ctx, user, def.CategoryID)
		assert.True(t, errors.HasCode(err, errors.CodeValidation))
	})

	t.Run("update and deactivate", func(t *testing.T) {
		updated, err := svc.UpdateCategory(ctx, user, pets.CategoryID, &category.UpdateCategoryRequest{Name: "Pet care", Color: "#ffffff"})
		require.NoError(t, err)
		assert.Equal(t, "Pet care", updated.Name)
		assert.Equal(t, "#FFFFFF", updated.Color)

		deactivated, err := svc.DeactivateCategory(ctx, user, pets.CategoryID)
		require.NoError(t, err)
		assert.False(t, deactivated.IsActive)

		list, err := svc.ListCategories(ctx, user)
		require.NoError(t, err)
		assert.Len(t, list.Expense, 8)
	})
}
