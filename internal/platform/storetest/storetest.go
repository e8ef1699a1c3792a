// Package storetest runs the balance-consistency checks every repository
// implementation must pass.
package storetest

import (
	"context"
	"log/slog"
	"sync"
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
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
	"github.com/hirosato/finance-ledger/backend/pkg/validator"
)

// Repositories is one store exposed through the three repository interfaces
type Repositories struct {
	Accounts     account.Repository
	Categories   category.Repository
	Transactions transaction.Repository
}

// Factory returns a fresh, empty store wired to hooks
type Factory func(t *testing.T, hooks reconciler.Hooks) Repositories

// Today is the fixed clock used by the suite
var Today = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ctx          context.Context
	tenant       *tenant.TenantContext
	repos        Repositories
	accounts     *account.Service
	categories   *category.Service
	transactions *transaction.Service
	auditor      *reconciler.Auditor

	salary  *category.Category
	food    *category.Category
	rent    *category.Category
	bonus   *category.Category
	primary *account.Account
	second  *account.Account
	third   *account.Account
}

func setup(t *testing.T, factory Factory) *fixture {
	t.Helper()
	logger := slog.Default()
	repos := factory(t, reconciler.New(logger))
	v := validator.New()

	f := &fixture{
		ctx:          context.Background(),
		tenant:       &tenant.TenantContext{UserID: "user-1"},
		repos:        repos,
		accounts:     account.NewService(repos.Accounts, v),
		categories:   category.NewService(repos.Categories, v, logger),
		transactions: transaction.NewService(repos.Transactions, repos.Accounts, repos.Categories, v, logger).WithClock(func() time.Time { return Today }),
		auditor:      reconciler.NewAuditor(repos.Accounts, repos.Transactions, logger),
	}

	f.salary = f.category(t, "Salary", entry.Income)
	f.bonus = f.category(t, "Bonus", entry.Income)
	f.food = f.category(t, "Food", entry.Expense)
	f.rent = f.category(t, "Rent", entry.Expense)
	f.primary = f.account(t, "Primary", "1000.00")
	f.second = f.account(t, "Second", "300.00")
	f.third = f.account(t, "Third", "50.00")
	return f
}

func (f *fixture) category(t *testing.T, name string, typ entry.Type) *category.Category {
	t.Helper()
	c, err := f.categories.CreateCategory(f.ctx, f.tenant, &category.CreateCategoryRequest{
		Name: name, CategoryType: typ, Color: "#112233",
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) account(t *testing.T, name, initial string) *account.Account {
	t.Helper()
	acc, err := f.accounts.CreateAccount(f.ctx, f.tenant, &account.CreateAccountRequest{
		Name: name, AccountType: account.Checking, InitialBalance: initial,
	})
	require.NoError(t, err)
	return acc
}

func (f *fixture) post(t *testing.T, acc *account.Account, cat *category.Category, amount string) *transaction.Transaction {
	t.Helper()
	res, err := f.transactions.CreateTransaction(f.ctx, f.tenant, &transaction.CreateTransactionRequest{
		AccountID:       acc.AccountID,
		CategoryID:      cat.CategoryID,
		TransactionType: cat.CategoryType,
		Amount:          amount,
		Date:            "2024-05-10",
	})
	require.NoError(t, err)
	return res.Transaction
}

func (f *fixture) balance(t *testing.T, acc *account.Account) decimal.Decimal {
	t.Helper()
	stored, err := f.repos.Accounts.GetAccount(f.ctx, f.tenant.UserID, acc.AccountID)
	require.NoError(t, err)
	return stored.CurrentBalance
}

func (f *fixture) assertBalance(t *testing.T, acc *account.Account, want string) {
	t.Helper()
	got := f.balance(t, acc)
	assert.True(t, decimal.RequireFromString(want).Equal(got), "%s: want %s, got %s", acc.Name, want, got.StringFixed(2))
}

func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	report, err := f.auditor.AuditOwner(f.ctx, f.tenant.UserID)
	require.NoError(t, err)
	for _, r := range report.Results {
		assert.True(t, r.Consistent, "%s stored %s expected %s", r.Name, r.Stored, r.Expected)
	}
	assert.Zero(t, report.Inconsistent)
}

// Run executes the suite against stores built by factory
func Run(t *testing.T, factory Factory) {
	t.Run("create applies effect", func(t *testing.T) {
		f := setup(t, factory)

		f.post(t, f.primary, f.salary, "500.00")
		f.assertBalance(t, f.primary, "1500.00")

		f.post(t, f.primary, f.food, "200.00")
		f.assertBalance(t, f.primary, "1300.00")
		f.assertConsistent(t)
	})

	t.Run("create returns refreshed account", func(t *testing.T) {
		f := setup(t, factory)

		res, err := f.transactions.CreateTransaction(f.ctx, f.tenant, &transaction.CreateTransactionRequest{
			AccountID: f.primary.AccountID, CategoryID: f.salary.CategoryID,
			TransactionType: entry.Income, Amount: "12.34", Date: "2024-05-01",
		})
		require.NoError(t, err)
		require.Len(t, res.Accounts, 1)
		assert.Equal(t, "1012.34", res.Accounts[0].CurrentBalance.StringFixed(2))
	})

	t.Run("update amount on same account", func(t *testing.T) {
		f := setup(t, factory)
		tx := f.post(t, f.primary, f.food, "200.00")
		f.assertBalance(t, f.primary, "800.00")

		amount := "350.00"
		_, err := f.transactions.UpdateTransaction(f.ctx, f.tenant, tx.TransactionID, &transaction.UpdateTransactionRequest{Amount: &amount})
		require.NoError(t, err)

		f.assertBalance(t, f.primary, "650.00")
		f.assertConsistent(t)
	})

	t.Run("update type from expense to income", func(t *testing.T) {
		f := setup(t, factory)
		tx := f.post(t, f.primary, f.food, "100.00")
		f.assertBalance(t, f.primary, "900.00")

		typ := entry.Income
		cat := f.salary.CategoryID
		_, err := f.transactions.UpdateTransaction(f.ctx, f.tenant, tx.TransactionID, &transaction.UpdateTransactionRequest{
			TransactionType: &typ, CategoryID: &cat,
		})
		require.NoError(t, err)

		f.assertBalance(t, f.primary, "1100.00")
		f.assertConsistent(t)
	})

	t.Run("update moves between accounts", func(t *testing.T) {
		f := setup(t, factory)
		tx := f.post(t, f.primary, f.rent, "250.50")
		f.assertBalance(t, f.primary, "749.50")

		target := f.second.AccountID
		res, err := f.transactions.UpdateTransaction(f.ctx, f.tenant, tx.TransactionID, &transaction.UpdateTransactionRequest{AccountID: &target})
		require.NoError(t, err)
		assert.Len(t, res.Accounts, 2)

		f.assertBalance(t, f.primary, "1000.00")
		f.assertBalance(t, f.second, "49.50")
		f.assertBalance(t, f.third, "50.00")
		f.assertConsistent(t)
	})

	t.Run("delete reverses effect", func(t *testing.T) {
		f := setup(t, factory)
		income := f.post(t, f.primary, f.salary, "500.00")
		expense := f.post(t, f.primary, f.food, "200.00")
		f.assertBalance(t, f.primary, "1300.00")

		_, err := f.transactions.DeleteTransaction(f.ctx, f.tenant, income.TransactionID)
		require.NoError(t, err)
		f.assertBalance(t, f.primary, "800.00")

		_, err = f.transactions.DeleteTransaction(f.ctx, f.tenant, expense.TransactionID)
		require.NoError(t, err)
		f.assertBalance(t, f.primary, "1000.00")
		f.assertConsistent(t)
	})

	t.Run("stale snapshot is rejected", func(t *testing.T) {
		f := setup(t, factory)
		tx := f.post(t, f.primary, f.food, "10.00")

		stale, err := f.repos.Transactions.GetTransaction(f.ctx, f.tenant.UserID, tx.TransactionID)
		require.NoError(t, err)

		amount := "20.00"
		_, err = f.transactions.UpdateTransaction(f.ctx, f.tenant, tx.TransactionID, &transaction.UpdateTransactionRequest{Amount: &amount})
		require.NoError(t, err)

		replacement := stale.Clone()
		replacement.Amount = decimal.RequireFromString("99.00")
		replacement.Version = stale.Version + 1
		_, err = f.repos.Transactions.UpdateTransaction(f.ctx, stale, replacement)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeConflict), "got %v", err)

		err = f.repos.Transactions.DeleteTransaction(f.ctx, stale)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeConflict), "got %v", err)

		f.assertBalance(t, f.primary, "980.00")
		f.assertConsistent(t)
	})

	t.Run("referenced account cannot be deleted", func(t *testing.T) {
		f := setup(t, factory)
		tx := f.post(t, f.second, f.food, "5.00")

		err := f.accounts.DeleteAccount(f.ctx, f.tenant, f.second.AccountID)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeReferenceProtected), "got %v", err)
		f.assertBalance(t, f.second, "295.00")

		_, err = f.transactions.DeleteTransaction(f.ctx, f.tenant, tx.TransactionID)
		require.NoError(t, err)
		require.NoError(t, f.accounts.DeleteAccount(f.ctx, f.tenant, f.second.AccountID))
	})

	t.Run("referenced category cannot be deleted", func(t *testing.T) {
		f := setup(t, factory)
		tx := f.post(t, f.primary, f.bonus, "5.00")

		err := f.categories.DeleteCategory(f.ctx, f.tenant, f.bonus.CategoryID)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeReferenceProtected), "got %v", err)

		_, err = f.transactions.DeleteTransaction(f.ctx, f.tenant, tx.TransactionID)
		require.NoError(t, err)
		require.NoError(t, f.categories.DeleteCategory(f.ctx, f.tenant, f.bonus.CategoryID))
	})

	t.Run("moving off a category releases it", func(t *testing.T) {
		f := setup(t, factory)
		tx := f.post(t, f.primary, f.food, "5.00")

		cat := f.rent.CategoryID
		_, err := f.transactions.UpdateTransaction(f.ctx, f.tenant, tx.TransactionID, &transaction.UpdateTransactionRequest{CategoryID: &cat})
		require.NoError(t, err)

		require.NoError(t, f.categories.DeleteCategory(f.ctx, f.tenant, f.food.CategoryID))
		err = f.categories.DeleteCategory(f.ctx, f.tenant, f.rent.CategoryID)
		assert.True(t, errors.HasCode(err, errors.CodeReferenceProtected), "got %v", err)
	})

	t.Run("referenced category keeps its type", func(t *testing.T) {
		f := setup(t, factory)
		// Read before the posting, as a concurrent type change would have
		stale := *f.food
		tx := f.post(t, f.primary, f.food, "5.00")

		stale.CategoryType = entry.Income
		_, err := f.repos.Categories.UpdateCategory(f.ctx, &stale)
		assert.True(t, errors.HasCode(err, errors.CodeConflict), "got %v", err)

		stored, err := f.repos.Categories.GetCategory(f.ctx, f.food.CategoryID)
		require.NoError(t, err)
		assert.Equal(t, entry.Expense, stored.CategoryType)

		renamed := *stored
		renamed.Name = "Groceries"
		_, err = f.repos.Categories.UpdateCategory(f.ctx, &renamed)
		require.NoError(t, err)

		_, err = f.transactions.DeleteTransaction(f.ctx, f.tenant, tx.TransactionID)
		require.NoError(t, err)
		updated, err := f.repos.Categories.UpdateCategory(f.ctx, &stale)
		require.NoError(t, err)
		assert.Equal(t, entry.Income, updated.CategoryType)
	})

	t.Run("audit is idempotent", func(t *testing.T) {
		f := setup(t, factory)
		f.post(t, f.primary, f.salary, "10.10")
		f.post(t, f.second, f.food, "3.03")

		first, err := f.auditor.AuditOwner(f.ctx, f.tenant.UserID)
		require.NoError(t, err)
		second, err := f.auditor.AuditOwner(f.ctx, f.tenant.UserID)
		require.NoError(t, err)

		require.Len(t, second.Results, len(first.Results))
		for i := range first.Results {
			assert.Equal(t, first.Results[i].AccountID, second.Results[i].AccountID)
			assert.True(t, first.Results[i].Expected.Equal(second.Results[i].Expected))
			assert.True(t, first.Results[i].Stored.Equal(second.Results[i].Stored))
		}
	})

	t.Run("sequence keeps invariant", func(t *testing.T) {
		f := setup(t, factory)
		a := f.post(t, f.primary, f.salary, "1200.00")
		b := f.post(t, f.second, f.food, "45.90")
		c := f.post(t, f.third, f.rent, "10.00")

		amount := "99.99"
		target := f.third.AccountID
		_, err := f.transactions.UpdateTransaction(f.ctx, f.tenant, a.TransactionID, &transaction.UpdateTransactionRequest{Amount: &amount, AccountID: &target})
		require.NoError(t, err)

		typ := entry.Income
		cat := f.bonus.CategoryID
		_, err = f.transactions.UpdateTransaction(f.ctx, f.tenant, b.TransactionID, &transaction.UpdateTransactionRequest{TransactionType: &typ, CategoryID: &cat})
		require.NoError(t, err)

		_, err = f.transactions.DeleteTransaction(f.ctx, f.tenant, c.TransactionID)
		require.NoError(t, err)

		f.assertBalance(t, f.primary, "1000.00")
		f.assertBalance(t, f.second, "345.90")
		f.assertBalance(t, f.third, "149.99")
		f.assertConsistent(t)
	})

	t.Run("concurrent postings are all applied", func(t *testing.T) {
		f := setup(t, factory)

		const rounds = 20
		var wg sync.WaitGroup
		errs := make(chan error, rounds*2)
		for i := 0; i < rounds; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, err := f.transactions.CreateTransaction(f.ctx, f.tenant, &transaction.CreateTransactionRequest{
					AccountID: f.primary.AccountID, CategoryID: f.salary.CategoryID,
					TransactionType: entry.Income, Amount: "100.00", Date: "2024-05-10",
				})
				errs <- err
			}()
			go func() {
				defer wg.Done()
				_, err := f.transactions.CreateTransaction(f.ctx, f.tenant, &transaction.CreateTransactionRequest{
					AccountID: f.primary.AccountID, CategoryID: f.food.CategoryID,
					TransactionType: entry.Expense, Amount: "40.00", Date: "2024-05-10",
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		f.assertBalance(t, f.primary, "2200.00")
		f.assertConsistent(t)
	})
}
