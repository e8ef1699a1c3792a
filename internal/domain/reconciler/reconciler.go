// Package reconciler keeps account balances consistent with the transactions
// that reference them. Stores call the hooks on every transaction write and
// apply the returned plan atomically with the write.
package reconciler

import (
	"fmt"
	"log/slog"

	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/money"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
)

// Hooks is what a transaction store calls before committing a write
type Hooks interface {
	ReconcileOnCreate(tx *transaction.Transaction) (*Plan, error)
	ReconcileOnUpdate(previous, tx *transaction.Transaction) (*Plan, error)
	ReconcileOnDelete(tx *transaction.Transaction) (*Plan, error)
}

// Reconciler computes balance plans for transaction writes
type Reconciler struct {
	logger *slog.Logger
}

var _ Hooks = (*Reconciler)(nil)

// New creates a new reconciler
func New(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger}
}

// Effect is the balance change tx causes on its account: +amount for income,
// -amount for expense.
func Effect(tx *transaction.Transaction) (Adjustment, error) {
	if tx == nil {
		return Adjustment{}, errors.NewInternalError("cannot reconcile a nil transaction", nil)
	}
	if tx.AccountID == "" {
		return Adjustment{}, errors.NewInternalError(
			fmt.Sprintf("transaction %s has no account", tx.TransactionID), nil)
	}
	if !tx.Amount.IsPositive() {
		return Adjustment{}, errors.NewValidationError(
			fmt.Sprintf("transaction %s has non-positive amount %s", tx.TransactionID, money.Format(tx.Amount)))
	}
	delta, ok := tx.TransactionType.Signed(tx.Amount)
	if !ok {
		return Adjustment{}, errors.NewValidationError(
			fmt.Sprintf("transaction %s has unknown type %q", tx.TransactionID, tx.TransactionType))
	}
	return Adjustment{AccountID: tx.AccountID, Delta: delta}, nil
}

// ReconcileOnCreate applies the effect of a new transaction
func (r *Reconciler) ReconcileOnCreate(tx *transaction.Transaction) (*Plan, error) {
	effect, err := Effect(tx)
	if err != nil {
		return nil, r.reject("create", tx, err)
	}

	var b planBuilder
	b.adjust(effect.AccountID, effect.Delta)
	b.accountRef(tx.AccountID, 1)
	b.categoryRef(tx.CategoryID, 1)
	return b.build(), nil
}

// ReconcileOnUpdate reverses the effect of previous and then applies the
// effect of tx. Adjustments on the same account are netted into one delta;
// a move between accounts yields one adjustment per account.
func (r *Reconciler) ReconcileOnUpdate(previous, tx *transaction.Transaction) (*Plan, error) {
	reversal, err := Effect(previous)
	if err != nil {
		return nil, r.reject("update", previous, err)
	}
	effect, err := Effect(tx)
	if err != nil {
		return nil, r.reject("update", tx, err)
	}

	var b planBuilder
	b.adjust(reversal.AccountID, reversal.Delta.Neg())
	b.adjust(effect.AccountID, effect.Delta)
	b.accountRef(previous.AccountID, -1)
	b.accountRef(tx.AccountID, 1)
	b.categoryRef(previous.CategoryID, -1)
	b.categoryRef(tx.CategoryID, 1)
	return b.build(), nil
}

// ReconcileOnDelete reverses the effect of a removed transaction
func (r *Reconciler) ReconcileOnDelete(tx *transaction.Transaction) (*Plan, error) {
	effect, err := Effect(tx)
	if err != nil {
		return nil, r.reject("delete", tx, err)
	}

	var b planBuilder
	b.adjust(effect.AccountID, effect.Delta.Neg())
	b.accountRef(tx.AccountID, -1)
	b.categoryRef(tx.CategoryID, -1)
	return b.build(), nil
}

func (r *Reconciler) reject(op string, tx *transaction.Transaction, err error) error {
	id := ""
	if tx != nil {
		id = tx.TransactionID
	}
	r.logger.Error("Rejected transaction write during reconciliation",
		"operation", op,
		"transactionId", id,
		"error", err)
	return err
}
