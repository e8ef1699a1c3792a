package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/money"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
)

const transactionColumns = `transaction_id, owner_id, account_id, category_id, transaction_type,
	amount_cents, date, description, version, created_at, updated_at`

func scanTransaction(row scanner) (*transaction.Transaction, error) {
	var (
		tx                   transaction.Transaction
		transactionType      string
		amountCents          int64
		createdAt, updatedAt string
	)
	if err := row.Scan(&tx.TransactionID, &tx.OwnerID, &tx.AccountID, &tx.CategoryID, &transactionType,
		&amountCents, &tx.Date, &tx.Description, &tx.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	tx.TransactionType = entry.Type(transactionType)
	tx.Amount = money.FromCents(amountCents)
	tx.CreatedAt = parseTime(createdAt)
	tx.UpdatedAt = parseTime(updatedAt)
	return &tx, nil
}

// CreateTransaction inserts tx and applies its effect in one database transaction
func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	plan, err := s.hooks.ReconcileOnCreate(tx)
	if err != nil {
		return nil, err
	}

	err = s.conn.Transaction(ctx, func(dbTx *sql.Tx) error {
		if _, err := dbTx.ExecContext(ctx, `
			INSERT INTO transactions (`+transactionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			tx.TransactionID, tx.OwnerID, tx.AccountID, tx.CategoryID, string(tx.TransactionType),
			money.ToCents(tx.Amount), tx.Date, tx.Description, tx.Version,
			formatTime(tx.CreatedAt), formatTime(tx.UpdatedAt)); err != nil {
			return err
		}
		return s.applyPlan(ctx, dbTx, tx.OwnerID, plan)
	})
	if err != nil {
		return nil, s.translateWriteError("create transaction", err)
	}
	return tx, nil
}

// GetTransaction retrieves a transaction owned by ownerID
func (s *Store) GetTransaction(ctx context.Context, ownerID, transactionID string) (*transaction.Transaction, error) {
	return s.getTransaction(ctx, s.conn.DB(), ownerID, transactionID)
}

func (s *Store) getTransaction(ctx context.Context, q querier, ownerID, transactionID string) (*transaction.Transaction, error) {
	row := q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = ? AND owner_id = ?`,
		transactionID, ownerID)
	tx, err := scanTransaction(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("transaction not found")
	}
	if err != nil {
		return nil, s.translateError("get transaction", err)
	}
	return tx, nil
}

// GetTransactions retrieves the owner's transactions newest first
func (s *Store) GetTransactions(ctx context.Context, ownerID string, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = ?`
	args := []any{ownerID}
	if filter != nil {
		if filter.StartDate != "" {
			query += ` AND date >= ?`
			args = append(args, filter.StartDate)
		}
		if filter.EndDate != "" {
			query += ` AND date <= ?`
			args = append(args, filter.EndDate)
		}
		if filter.AccountID != "" {
			query += ` AND account_id = ?`
			args = append(args, filter.AccountID)
		}
		if filter.CategoryID != "" {
			query += ` AND category_id = ?`
			args = append(args, filter.CategoryID)
		}
		if filter.TransactionType != "" {
			query += ` AND transaction_type = ?`
			args = append(args, string(filter.TransactionType))
		}
	}
	query += ` ORDER BY date DESC, created_at DESC, transaction_id DESC`
	if filter != nil && filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.conn.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.translateError("list transactions", err)
	}
	defer rows.Close()

	txs := []*transaction.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, s.translateError("scan transaction", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, s.translateError("list transactions", err)
	}
	return txs, nil
}

// UpdateTransaction replaces previous with tx when the stored version still matches
func (s *Store) UpdateTransaction(ctx context.Context, previous, tx *transaction.Transaction) (*transaction.Transaction, error) {
	plan, err := s.hooks.ReconcileOnUpdate(previous, tx)
	if err != nil {
		return nil, err
	}

	err = s.conn.Transaction(ctx, func(dbTx *sql.Tx) error {
		res, err := dbTx.ExecContext(ctx, `
			UPDATE transactions
			SET account_id = ?, category_id = ?, transaction_type = ?, amount_cents = ?,
				date = ?, description = ?, version = ?, updated_at = ?
			WHERE transaction_id = ? AND owner_id = ? AND version = ?`,
			tx.AccountID, tx.CategoryID, string(tx.TransactionType), money.ToCents(tx.Amount),
			tx.Date, tx.Description, tx.Version, formatTime(tx.UpdatedAt),
			previous.TransactionID, previous.OwnerID, previous.Version)
		if err != nil {
			return err
		}
		if err := s.checkSnapshot(ctx, dbTx, res, previous); err != nil {
			return err
		}
		return s.applyPlan(ctx, dbTx, tx.OwnerID, plan)
	})
	if err != nil {
		return nil, s.translateWriteError("update transaction", err)
	}
	return tx, nil
}

// DeleteTransaction removes snapshot when the stored version still matches
func (s *Store) DeleteTransaction(ctx context.Context, snapshot *transaction.Transaction) error {
	plan, err := s.hooks.ReconcileOnDelete(snapshot)
	if err != nil {
		return err
	}

	err = s.conn.Transaction(ctx, func(dbTx *sql.Tx) error {
		res, err := dbTx.ExecContext(ctx,
			`DELETE FROM transactions WHERE transaction_id = ? AND owner_id = ? AND version = ?`,
			snapshot.TransactionID, snapshot.OwnerID, snapshot.Version)
		if err != nil {
			return err
		}
		if err := s.checkSnapshot(ctx, dbTx, res, snapshot); err != nil {
			return err
		}
		return s.applyPlan(ctx, dbTx, snapshot.OwnerID, plan)
	})
	return s.translateWriteError("delete transaction", err)
}

// checkSnapshot tells a missing row apart from a moved version when a
// version-guarded statement matched nothing
func (s *Store) checkSnapshot(ctx context.Context, dbTx *sql.Tx, res sql.Result, snapshot *transaction.Transaction) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	current, err := s.getTransaction(ctx, dbTx, snapshot.OwnerID, snapshot.TransactionID)
	if err != nil {
		return err
	}
	return errors.NewConflictError("transaction was modified by another request").
		WithDetail("currentVersion", current.Version)
}

// applyPlan runs every balance and counter change as column arithmetic
func (s *Store) applyPlan(ctx context.Context, dbTx *sql.Tx, ownerID string, plan *reconciler.Plan) error {
	for _, adj := range plan.Adjustments {
		res, err := dbTx.ExecContext(ctx,
			`UPDATE accounts SET current_balance_cents = current_balance_cents + ? WHERE account_id = ? AND owner_id = ?`,
			money.ToCents(adj.Delta), adj.AccountID, ownerID)
		if err != nil {
			return err
		}
		if err := exactlyOne(res, "account not found"); err != nil {
			return err
		}
	}
	for _, ref := range plan.AccountRefs {
		if _, err := dbTx.ExecContext(ctx,
			`UPDATE accounts SET transaction_count = transaction_count + ? WHERE account_id = ?`,
			ref.Delta, ref.ID); err != nil {
			return err
		}
	}
	for _, ref := range plan.CategoryRefs {
		if _, err := dbTx.ExecContext(ctx,
			`UPDATE categories SET transaction_count = transaction_count + ? WHERE category_id = ?`,
			ref.Delta, ref.ID); err != nil {
			return err
		}
	}
	return nil
}

// translateWriteError reports a foreign key failure on a transaction write as a
// missing account or category rather than a protected delete
func (s *Store) translateWriteError(op string, err error) error {
	err = s.translateError(op, err)
	if errors.HasCode(err, errors.CodeReferenceProtected) {
		return errors.NewValidationError("transaction references an unknown account or category")
	}
	return err
}
