package repository

import (
	"log/slog"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
	"github.com/hirosato/finance-ledger/backend/internal/platform/dynamodb/client"
)

// Factory creates repository instances
type Factory struct {
	client    client.Client
	tableName string
	hooks     reconciler.Hooks
	logger    *slog.Logger
}

// NewFactory creates a new repository factory
func NewFactory(client client.Client, tableName string, hooks reconciler.Hooks, logger *slog.Logger) *Factory {
	return &Factory{
		client:    client,
		tableName: tableName,
		hooks:     hooks,
		logger:    logger,
	}
}

// AccountRepository returns an implementation of the account.Repository interface
func (f *Factory) AccountRepository() account.Repository {
	return NewDynamoDBAccountRepository(f.client, f.tableName, f.logger)
}

// CategoryRepository returns an implementation of the category.Repository interface
func (f *Factory) CategoryRepository() category.Repository {
	return NewDynamoDBCategoryRepository(f.client, f.tableName, f.logger)
}

// TransactionRepository returns an implementation of the transaction.Repository interface
func (f *Factory) TransactionRepository() transaction.Repository {
	return NewDynamoDBTransactionRepository(f.client, f.tableName, f.hooks, f.logger)
}
