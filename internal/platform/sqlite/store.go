package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
)

// Store implements the account, category and transaction repositories on one connection
type Store struct {
	conn   *Connection
	hooks  reconciler.Hooks
	logger *slog.Logger
}

var (
	_ account.Repository     = (*Store)(nil)
	_ category.Repository    = (*Store)(nil)
	_ transaction.Repository = (*Store)(nil)
)

// NewStore creates a new SQLite store
func NewStore(conn *Connection, hooks reconciler.Hooks, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{conn: conn, hooks: hooks, logger: logger}
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// translateError maps driver constraint failures onto application errors
func (s *Store) translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintTrigger:
			// ON DELETE RESTRICT fires as a trigger constraint, deferred checks as a foreign key one
			return errors.NewReferenceProtectedError("record is referenced by transactions")
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return errors.NewConflictError("record already exists")
		case sqlite3.ErrConstraintCheck:
			return errors.NewValidationError("record violates a storage constraint")
		}
	}

	s.logger.Error("SQLite operation failed", "operation", op, "error", err)
	return errors.NewInternalError(fmt.Sprintf("failed to %s", op), err)
}

// exactlyOne reports NOT_FOUND when a statement matched no row
func exactlyOne(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NewNotFoundError(notFound)
	}
	return nil
}
