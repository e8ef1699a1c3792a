package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/finance-ledger/backend/internal/app"
	"github.com/hirosato/finance-ledger/backend/internal/common/config"
	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	"github.com/hirosato/finance-ledger/backend/internal/domain/mcp"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
	"github.com/hirosato/finance-ledger/backend/internal/platform/storage"
)

func newApp(t *testing.T) *app.App {
	t.Helper()
	stores, err := storage.Open(context.Background(), &config.Config{StorageDriver: config.StorageMemory}, reconciler.New(slog.Default()), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })
	return app.FromStores(stores, slog.Default())
}

func ownerContext() context.Context {
	return tenant.WithContext(context.Background(), &tenant.TenantContext{UserID: "user-1"})
}

// payload extracts the JSON document that follows the summary line
func payload(t *testing.T, result *mcp.CallToolResult, v interface{}) {
	t.Helper()
	require.False(t, result.IsError, result.Content[0].Text)
	text := result.Content[0].Text
	require.NoError(t, json.Unmarshal([]byte(text[strings.Index(text, "\n")+1:]), v))
}

func TestTransactionToolsMoveBalances(t *testing.T) {
	a := newApp(t)
	ctx := ownerContext()

	result, err := NewCreateAccountTool(a.Accounts).Execute(ctx, json.RawMessage(`{"name":"Checking","accountType":"checking","initialBalance":"1000.00"}`))
	require.NoError(t, err)
	var acc account.Account
	payload(t, result, &acc)

	food, err := a.Categories.CreateCategory(ctx, &tenant.TenantContext{UserID: "user-1"}, &category.CreateCategoryRequest{Name: "Food", CategoryType: entry.Expense, Color: "#EF4444"})
	require.NoError(t, err)

	args, _ := json.Marshal(map[string]string{
		"accountId":       acc.AccountID,
		"categoryId":      food.CategoryID,
		"transactionType": "expense",
		"amount":          "200.00",
		"date":            "2024-05-10",
	})
	result, err = NewCreateTransactionTool(a.Transactions).Execute(ctx, args)
	require.NoError(t, err)
	var created transaction.MutationResult
	payload(t, result, &created)
	require.Len(t, created.Accounts, 1)
	assert.Equal(t, "800", created.Accounts[0].CurrentBalance.String())

	args, _ = json.Marshal(map[string]interface{}{"transactionId": created.Transaction.TransactionID, "amount": "350.00", "version": created.Transaction.Version})
	result, err = NewUpdateTransactionTool(a.Transactions).Execute(ctx, args)
	require.NoError(t, err)
	var updated transaction.MutationResult
	payload(t, result, &updated)
	assert.Equal(t, "650", updated.Accounts[0].CurrentBalance.String())

	// The version read before the update is stale now
	result, err = NewUpdateTransactionTool(a.Transactions).Execute(ctx, args)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "CONFLICT")

	result, err = NewAuditBalancesTool(a.Auditor).Execute(ctx, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Content[0].Text, "Audited 1 accounts, 0 inconsistent"))

	args, _ = json.Marshal(map[string]string{"transactionId": created.Transaction.TransactionID})
	result, err = NewDeleteTransactionTool(a.Transactions).Execute(ctx, args)
	require.NoError(t, err)
	var deleted transaction.MutationResult
	payload(t, result, &deleted)
	assert.Equal(t, "1000", deleted.Accounts[0].CurrentBalance.String())
}

func TestToolErrors(t *testing.T) {
	a := newApp(t)

	t.Run("bad arguments", func(t *testing.T) {
		result, err := NewCreateAccountTool(a.Accounts).Execute(ownerContext(), json.RawMessage(`{"name":`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content[0].Text, "Error parsing arguments")
	})

	t.Run("missing owner", func(t *testing.T) {
		result, err := NewAuditBalancesTool(a.Auditor).Execute(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		result, err := NewDeleteTransactionTool(a.Transactions).Execute(ownerContext(), json.RawMessage(`{"transactionId":"missing"}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content[0].Text, "NOT_FOUND")
	})

	t.Run("validation details", func(t *testing.T) {
		result, err := NewCreateAccountTool(a.Accounts).Execute(ownerContext(), json.RawMessage(`{"name":"X","accountType":"crypto","initialBalance":"1"}`))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, result.Content[0].Text, "VALIDATION_ERROR")
	})
}
