// Package storage opens the repositories for the configured backend
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hirosato/finance-ledger/backend/internal/common/config"
	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
	"github.com/hirosato/finance-ledger/backend/internal/platform/dynamodb/client"
	"github.com/hirosato/finance-ledger/backend/internal/platform/dynamodb/repository"
	"github.com/hirosato/finance-ledger/backend/internal/platform/memory"
	"github.com/hirosato/finance-ledger/backend/internal/platform/sqlite"
)

// Stores holds one repository per record type, all backed by the same storage
type Stores struct {
	Driver       string
	Accounts     account.Repository
	Categories   category.Repository
	Transactions transaction.Repository

	closer func() error
}

// Close releases the underlying connection, if any
func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// Open creates the repositories for cfg.StorageDriver. Transaction writes call
// hooks and apply the returned plan in the same atomic unit.
func Open(ctx context.Context, cfg *config.Config, hooks reconciler.Hooks, logger *slog.Logger) (*Stores, error) {
	switch cfg.StorageDriver {
	case config.StorageDynamoDB:
		dbClient, err := client.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		factory := repository.NewFactory(dbClient, cfg.DynamoDBTableName, hooks, logger)
		logger.Info("Using DynamoDB storage", "table", cfg.DynamoDBTableName)
		return &Stores{
			Driver:       cfg.StorageDriver,
			Accounts:     factory.AccountRepository(),
			Categories:   factory.CategoryRepository(),
			Transactions: factory.TransactionRepository(),
		}, nil

	case config.StorageSQLite:
		conn, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store := sqlite.NewStore(conn, hooks, logger)
		logger.Info("Using SQLite storage", "path", conn.Path())
		return &Stores{
			Driver:       cfg.StorageDriver,
			Accounts:     store,
			Categories:   store,
			Transactions: store,
			closer:       conn.Close,
		}, nil

	case config.StorageMemory:
		store := memory.NewStore(hooks, logger)
		logger.Warn("Using in-memory storage; data is lost on exit")
		return &Stores{
			Driver:       cfg.StorageDriver,
			Accounts:     store,
			Categories:   store,
			Transactions: store,
		}, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}
