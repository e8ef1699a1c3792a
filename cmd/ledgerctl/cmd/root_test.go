package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/finance-ledger/backend/internal/common/config"
	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
	"github.com/hirosato/finance-ledger/backend/internal/platform/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	auditOwner, auditAccount = "", ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func useSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("DEFAULT_OWNER_ID", "")
	return path
}

func TestMigrate(t *testing.T) {
	path := useSQLite(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	// Idempotent
	_, err = run(t, "migrate")
	assert.NoError(t, err)

	t.Setenv("STORAGE_DRIVER", "memory")
	_, err = run(t, "migrate")
	assert.Error(t, err)
}

func TestSeedCategories(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "seed-categories")
	require.NoError(t, err)
	assert.NotContains(t, out, "created 0,")

	out, err = run(t, "seed-categories")
	require.NoError(t, err)
	assert.Contains(t, out, "created 0,")
}

func TestAudit(t *testing.T) {
	path := useSQLite(t)

	_, err := run(t, "audit")
	assert.ErrorContains(t, err, "--owner")

	cfg := &config.Config{StorageDriver: config.StorageSQLite, SQLitePath: path}
	stores, err := storage.Open(context.Background(), cfg, reconciler.New(slog.Default()), slog.Default())
	require.NoError(t, err)
	owner := &tenant.TenantContext{UserID: "user-1"}
	acc, err := stores.Accounts.CreateAccount(context.Background(), &account.Account{
		AccountID:   "acc-1",
		OwnerID:     owner.UserID,
		Name:        "Checking",
		AccountType: account.Checking,
		IsActive:    true,
	})
	require.NoError(t, err)
	require.NoError(t, stores.Close())

	out, err := run(t, "audit", "--owner", "user-1")
	require.NoError(t, err)
	assert.Contains(t, out, acc.AccountID)
	assert.Contains(t, out, "ok")

	_, err = run(t, "audit", "--owner", "user-1", "--account", "missing")
	assert.Error(t, err)
}
