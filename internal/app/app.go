// Package app wires the domain services on top of the configured storage.
// Every entry point (MCP server, REST API, ledgerctl) builds one App.
package app

import (
	"context"
	"log/slog"

	"github.com/hirosato/finance-ledger/backend/internal/common/config"
	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/report"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
	"github.com/hirosato/finance-ledger/backend/internal/platform/storage"
	"github.com/hirosato/finance-ledger/backend/pkg/validator"
)

// App bundles the services used by the entry points
type App struct {
	Accounts     *account.Service
	Categories   *category.Service
	Transactions *transaction.Service
	Reports      *report.Service
	Auditor      *reconciler.Auditor

	Stores *storage.Stores
	Logger *slog.Logger
}

// New opens storage for cfg and builds the services
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	stores, err := storage.Open(ctx, cfg, reconciler.New(logger), logger)
	if err != nil {
		return nil, err
	}
	return FromStores(stores, logger), nil
}

// FromStores builds the services on already opened stores
func FromStores(stores *storage.Stores, logger *slog.Logger) *App {
	v := validator.New()
	return &App{
		Accounts:     account.NewService(stores.Accounts, v),
		Categories:   category.NewService(stores.Categories, v, logger),
		Transactions: transaction.NewService(stores.Transactions, stores.Accounts, stores.Categories, v, logger),
		Reports:      report.NewService(stores.Accounts, stores.Categories, stores.Transactions),
		Auditor:      reconciler.NewAuditor(stores.Accounts, stores.Transactions, logger),
		Stores:       stores,
		Logger:       logger,
	}
}

// Close releases the storage
func (a *App) Close() error {
	return a.Stores.Close()
}
