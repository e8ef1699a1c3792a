package transaction_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
	"github.com/hirosato/finance-ledger/backend/internal/platform/memory"
	"github.com/hirosato/finance-ledger/backend/pkg/validator"
)

var today = time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC)

type env struct {
	ctx      context.Context
	user     *tenant.TenantContext
	svc      *transaction.Service
	accounts *account.Service
	cats     *category.Service

	checking *account.Account
	closed   *account.Account
	salary   *category.Category
	food     *category.Category
	retired  *category.Category
	foreign  *category.Category
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.Default()
	store := memory.NewStore(reconciler.New(logger), logger)
	v := validator.New()

	e := &env{
		ctx:      context.Background(),
		user:     &tenant.TenantContext{UserID: "user-1"},
		svc:      transaction.NewService(store, store, store, v, logger).WithClock(func() time.Time { return today }),
		accounts: account.NewService(store, v),
		cats:     category.NewService(store, v, logger),
	}

	var err error
	e.checking, err = e.accounts.CreateAccount(e.ctx, e.user, &account.CreateAccountRequest{Name: "Checking", AccountType: account.Checking, InitialBalance: "1000.00"})
	require.NoError(t, err)
	e.closed, err = e.accounts.CreateAccount(e.ctx, e.user, &account.CreateAccountRequest{Name: "Closed", AccountType: account.Savings, InitialBalance: "0"})
	require.NoError(t, err)
	_, err = e.accounts.DeactivateAccount(e.ctx, e.user, e.closed.AccountID)
	require.NoError(t, err)

	e.salary, err = e.cats.CreateCategory(e.ctx, e.user, &category.CreateCategoryRequest{Name: "Salary", CategoryType: entry.Income, Color: "#10B981"})
	require.NoError(t, err)
	e.food, err = e.cats.CreateCategory(e.ctx, e.user, &category.CreateCategoryRequest{Name: "Food", CategoryType: entry.Expense, Color: "#EF4444"})
	require.NoError(t, err)
	e.retired, err = e.cats.CreateCategory(e.ctx, e.user, &category.CreateCategoryRequest{Name: "Retired", CategoryType: entry.Expense, Color: "#000000"})
	require.NoError(t, err)
	_, err = e.cats.DeactivateCategory(e.ctx, e.user, e.retired.CategoryID)
	require.NoError(t, err)
	e.foreign, err = e.cats.CreateCategory(e.ctx, &tenant.TenantContext{UserID: "user-2"}, &category.CreateCategoryRequest{Name: "Theirs", CategoryType: entry.Expense, Color: "#000000"})
	require.NoError(t, err)
	return e
}

func (e *env) request() *transaction.CreateTransactionRequest {
	return &transaction.CreateTransactionRequest{
		AccountID:       e.checking.AccountID,
		CategoryID:      e.food.CategoryID,
		TransactionType: entry.Expense,
		Amount:          "25.90",
		Date:            "2024-06-15",
		Description:     " Lunch ",
	}
}

func TestCreateTransaction(t *testing.T) {
	t.Run("valid expense", func(t *testing.T) {
		e := newEnv(t)
		res, err := e.svc.CreateTransaction(e.ctx, e.user, e.request())
		require.NoError(t, err)

		tx := res.Transaction
		assert.Len(t, tx.TransactionID, 26)
		assert.Equal(t, "Lunch", tx.Description)
		assert.Equal(t, int64(1), tx.Version)
		require.Len(t, res.Accounts, 1)
		assert.Equal(t, "974.10", res.Accounts[0].CurrentBalance.StringFixed(2))
	})

	tests := []struct {
		name   string
		mutate func(e *env, r *transaction.CreateTransactionRequest)
		field  string
	}{
		{name: "zero amount", mutate: func(_ *env, r *transaction.CreateTransactionRequest) { r.Amount = "0" }, field: "amount"},
		{name: "negative amount", mutate: func(_ *env, r *transaction.CreateTransactionRequest) { r.Amount = "-5.00" }, field: "amount"},
		{name: "three decimals", mutate: func(_ *env, r *transaction.CreateTransactionRequest) { r.Amount = "1.234" }, field: "amount"},
		{name: "over limit", mutate: func(_ *env, r *transaction.CreateTransactionRequest) { r.Amount = "100000000.00" }, field: "amount"},
		{name: "future date", mutate: func(_ *env, r *transaction.CreateTransactionRequest) { r.Date = "2024-06-16" }, field: "date"},
		{name: "bad date", mutate: func(_ *env, r *transaction.CreateTransactionRequest) { r.Date = "15/06/2024" }, field: "date"},
		{name: "long description", mutate: func(_ *env, r *transaction.CreateTransactionRequest) { r.Description = strings.Repeat("x", 501) }, field: "description"},
		{name: "unknown account", mutate: func(_ *env, r *transaction.CreateTransactionRequest) { r.AccountID = "nope" }, field: "accountId"},
		{name: "inactive account", mutate: func(e *env, r *transaction.CreateTransactionRequest) { r.AccountID = e.closed.AccountID }, field: "accountId"},
		{name: "inactive category", mutate: func(e *env, r *transaction.CreateTransactionRequest) { r.CategoryID = e.retired.CategoryID }, field: "categoryId"},
		{name: "category of another user", mutate: func(e *env, r *transaction.CreateTransactionRequest) { r.CategoryID = e.foreign.CategoryID }, field: "categoryId"},
		{name: "type mismatch", mutate: func(e *env, r *transaction.CreateTransactionRequest) { r.CategoryID = e.salary.CategoryID }, field: "categoryId"},
		{name: "unknown type", mutate: func(_ *env, r *transaction.CreateTransactionRequest) { r.TransactionType = "transfer" }, field: "transactionType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			req := e.request()
			tt.mutate(e, req)

			_, err := e.svc.CreateTransaction(e.ctx, e.user, req)
			require.Error(t, err)
			appErr := errors.As(err)
			assert.Equal(t, errors.CodeValidation, appErr.Code, appErr.Message)
			assert.Equal(t, tt.field, appErr.Details["field"], appErr.Message)

			acc, err := e.accounts.GetAccount(e.ctx, e.user, e.checking.AccountID)
			require.NoError(t, err)
			assert.Equal(t, "1000.00", acc.CurrentBalance.StringFixed(2))
		})
	}
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("increments version", func(t *testing.T) {
		e := newEnv(t)
		res, err := e.svc.CreateTransaction(e.ctx, e.user, e.request())
		require.NoError(t, err)

		desc := "Dinner"
		updated, err := e.svc.UpdateTransaction(e.ctx, e.user, res.Transaction.TransactionID, &transaction.UpdateTransactionRequest{Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated.Transaction.Version)
		assert.Equal(t, "Dinner", updated.Transaction.Description)
		assert.Equal(t, "974.10", updated.Accounts[0].CurrentBalance.StringFixed(2))
	})

	t.Run("expected version mismatch is a conflict", func(t *testing.T) {
		e := newEnv(t)
		res, err := e.svc.CreateTransaction(e.ctx, e.user, e.request())
		require.NoError(t, err)

		stale := int64(7)
		amount := "1.00"
		_, err = e.svc.UpdateTransaction(e.ctx, e.user, res.Transaction.TransactionID, &transaction.UpdateTransactionRequest{Amount: &amount, ExpectedVersion: &stale})
		assert.True(t, errors.HasCode(err, errors.CodeConflict))
	})

	t.Run("invalid change leaves balance untouched", func(t *testing.T) {
		e := newEnv(t)
		res, err := e.svc.CreateTransaction(e.ctx, e.user, e.request())
		require.NoError(t, err)

		typ := entry.Income
		_, err = e.svc.UpdateTransaction(e.ctx, e.user, res.Transaction.TransactionID, &transaction.UpdateTransactionRequest{TransactionType: &typ})
		require.Error(t, err)

		acc, err := e.accounts.GetAccount(e.ctx, e.user, e.checking.AccountID)
		require.NoError(t, err)
		assert.Equal(t, "974.10", acc.CurrentBalance.StringFixed(2))
	})

	t.Run("other owner cannot update", func(t *testing.T) {
		e := newEnv(t)
		res, err := e.svc.CreateTransaction(e.ctx, e.user, e.request())
		require.NoError(t, err)

		amount := "1.00"
		_, err = e.svc.UpdateTransaction(e.ctx, &tenant.TenantContext{UserID: "user-2"}, res.Transaction.TransactionID, &transaction.UpdateTransactionRequest{Amount: &amount})
		assert.True(t, errors.HasCode(err, errors.CodeNotFound))
	})
}

func TestListTransactions(t *testing.T) {
	e := newEnv(t)
	for _, r := range []*transaction.CreateTransactionRequest{
		{AccountID: e.checking.AccountID, CategoryID: e.salary.CategoryID, TransactionType: entry.Income, Amount: "500.00", Date: "2024-06-01"},
		{AccountID: e.checking.AccountID, CategoryID: e.food.CategoryID, TransactionType: entry.Expense, Amount: "120.00", Date: "2024-06-02"},
		{AccountID: e.checking.AccountID, CategoryID: e.food.CategoryID, TransactionType: entry.Expense, Amount: "30.00", Date: "2024-05-30"},
	} {
		_, err := e.svc.CreateTransaction(e.ctx, e.user, r)
		require.NoError(t, err)
	}

	t.Run("summary over june", func(t *testing.T) {
		resp, err := e.svc.ListTransactions(e.ctx, e.user, &transaction.TransactionFilter{StartDate: "2024-06-01", EndDate: "2024-06-30"})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.TotalCount)
		assert.Equal(t, "500.00", resp.Summary.TotalIncome.StringFixed(2))
		assert.Equal(t, "120.00", resp.Summary.TotalExpense.StringFixed(2))
		assert.Equal(t, "380.00", resp.Summary.Balance.StringFixed(2))
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := e.svc.ListTransactions(e.ctx, e.user, &transaction.TransactionFilter{StartDate: "2024-06-30", EndDate: "2024-06-01"})
		assert.True(t, errors.HasCode(err, errors.CodeValidation))
	})
}

func TestDeleteTransaction(t *testing.T) {
	e := newEnv(t)
	res, err := e.svc.CreateTransaction(e.ctx, e.user, e.request())
	require.NoError(t, err)

	out, err := e.svc.DeleteTransaction(e.ctx, e.user, res.Transaction.TransactionID)
	require.NoError(t, err)
	require.Len(t, out.Accounts, 1)
	assert.Equal(t, "1000.00", out.Accounts[0].CurrentBalance.StringFixed(2))

	_, err = e.svc.GetTransaction(e.ctx, e.user, res.Transaction.TransactionID)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}
