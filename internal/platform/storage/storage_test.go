package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/finance-ledger/backend/internal/common/config"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	hooks := reconciler.New(slog.Default())

	t.Run("memory", func(t *testing.T) {
		stores, err := Open(ctx, &config.Config{StorageDriver: config.StorageMemory}, hooks, slog.Default())
		require.NoError(t, err)
		assert.NotNil(t, stores.Accounts)
		assert.NotNil(t, stores.Transactions)
		assert.NoError(t, stores.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "ledger.db")
		stores, err := Open(ctx, &config.Config{StorageDriver: config.StorageSQLite, SQLitePath: path}, hooks, slog.Default())
		require.NoError(t, err)
		assert.FileExists(t, path)
		assert.NoError(t, stores.Close())
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(ctx, &config.Config{StorageDriver: "postgres"}, hooks, slog.Default())
		assert.Error(t, err)
	})
}
