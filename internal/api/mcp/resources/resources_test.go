package resources

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/finance-ledger/backend/internal/app"
	"github.com/hirosato/finance-ledger/backend/internal/common/config"
	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
	"github.com/hirosato/finance-ledger/backend/internal/platform/storage"
)

func TestResources(t *testing.T) {
	stores, err := storage.Open(context.Background(), &config.Config{StorageDriver: config.StorageMemory}, reconciler.New(slog.Default()), slog.Default())
	require.NoError(t, err)
	a := app.FromStores(stores, slog.Default())

	owner := &tenant.TenantContext{UserID: "user-1"}
	ctx := tenant.WithContext(context.Background(), owner)
	_, err = a.Accounts.CreateAccount(ctx, owner, &account.CreateAccountRequest{Name: "Wallet", AccountType: account.Wallet, InitialBalance: "42.50"})
	require.NoError(t, err)

	t.Run("accounts", func(t *testing.T) {
		result, err := NewAccountsResource(a.Accounts).Read(ctx)
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "finance://accounts", result.Contents[0].URI)

		var list account.AccountListResponse
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &list))
		assert.Equal(t, 1, list.TotalCount)
		assert.Equal(t, "42.5", list.TotalBalance.String())
	})

	t.Run("dashboard", func(t *testing.T) {
		result, err := NewDashboardResource(a.Reports).Read(ctx)
		require.NoError(t, err)

		var dash map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &dash))
		assert.Contains(t, dash, "month")
	})

	t.Run("owner required", func(t *testing.T) {
		_, err := NewDashboardResource(a.Reports).Read(context.Background())
		assert.Error(t, err)
	})
}
