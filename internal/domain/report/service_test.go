package report_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/report"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
	"github.com/hirosato/finance-ledger/backend/internal/platform/memory"
)

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(reconciler.New(slog.Default()), slog.Default())
	now := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

	for _, acc := range []*account.Account{
		{AccountID: "a1", OwnerID: "u1", Name: "Bank", AccountType: account.Checking, InitialBalance: decimal.NewFromInt(1000), CurrentBalance: decimal.NewFromInt(1000), IsActive: true},
		{AccountID: "a2", OwnerID: "u1", Name: "Closed", AccountType: account.Savings, InitialBalance: decimal.NewFromInt(50), CurrentBalance: decimal.NewFromInt(50), IsActive: false},
	} {
		_, err := store.CreateAccount(ctx, acc)
		require.NoError(t, err)
	}
	for _, c := range []*category.Category{
		{CategoryID: "salary", Name: "Salário", CategoryType: entry.Income, Color: "#10B981", IsDefault: true, IsActive: true},
		{CategoryID: "food", Name: "Alimentação", CategoryType: entry.Expense, Color: "#EF4444", IsDefault: true, IsActive: true},
		{CategoryID: "fun", OwnerID: "u1", Name: "Lazer", CategoryType: entry.Expense, Color: "#8B5CF6", IsActive: true},
	} {
		_, err := store.CreateCategory(ctx, c)
		require.NoError(t, err)
	}

	posts := []struct {
		id, cat, date, amount string
		typ                   entry.Type
	}{
		{"t1", "salary", "2024-05-01", "3000.00", entry.Income},
		{"t2", "food", "2024-05-03", "300.00", entry.Expense},
		{"t3", "fun", "2024-05-04", "100.00", entry.Expense},
		{"t4", "food", "2024-05-10", "600.00", entry.Expense},
		{"t5", "food", "2024-04-28", "999.00", entry.Expense},
		{"t6", "fun", "2024-05-11", "1.00", entry.Expense},
		{"t7", "fun", "2024-05-12", "1.00", entry.Expense},
	}
	for i, p := range posts {
		_, err := store.CreateTransaction(ctx, &transaction.Transaction{
			TransactionID: p.id, OwnerID: "u1", AccountID: "a1", CategoryID: p.cat,
			TransactionType: p.typ, Amount: decimal.RequireFromString(p.amount), Date: p.date,
			Version: 1, CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	svc := report.NewService(store, store, store)

	t.Run("monthly totals", func(t *testing.T) {
		dash, err := svc.Dashboard(ctx, "u1", "2024-05")
		require.NoError(t, err)

		assert.Equal(t, "3000.00", dash.Income.StringFixed(2))
		assert.Equal(t, "1002.00", dash.Expense.StringFixed(2))
		assert.Equal(t, "1998.00", dash.Net.StringFixed(2))
	})

	t.Run("category breakdown ordered by total", func(t *testing.T) {
		dash, err := svc.Dashboard(ctx, "u1", "2024-05")
		require.NoError(t, err)

		require.Len(t, dash.Categories, 3)
		assert.Equal(t, "salary", dash.Categories[0].CategoryID)
		assert.Equal(t, "100", dash.Categories[0].Percent.String())
		assert.Equal(t, "food", dash.Categories[1].CategoryID)
		assert.Equal(t, "Alimentação", dash.Categories[1].Name)
		assert.Equal(t, "900.00", dash.Categories[1].Total.StringFixed(2))
		assert.Equal(t, "89.8", dash.Categories[1].Percent.String())
		assert.Equal(t, "fun", dash.Categories[2].CategoryID)
	})

	t.Run("balance counts active accounts only", func(t *testing.T) {
		dash, err := svc.Dashboard(ctx, "u1", "2024-05")
		require.NoError(t, err)

		// 1000 + 3000 - 300 - 100 - 600 - 999 - 1 - 1
		assert.Equal(t, "1999.00", dash.TotalBalance.StringFixed(2))
		require.Len(t, dash.Accounts, 1)
	})

	t.Run("recent transactions", func(t *testing.T) {
		dash, err := svc.Dashboard(ctx, "u1", "2024-05")
		require.NoError(t, err)

		require.Len(t, dash.Recent, report.RecentLimit)
		assert.Equal(t, "t7", dash.Recent[0].TransactionID)
	})

	t.Run("invalid month", func(t *testing.T) {
		_, err := svc.Dashboard(ctx, "u1", "May 2024")
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeValidation))
	})
}
