package transaction

import (
	"context"
)

// Repository defines the interface for transaction data operations.
// Every write applies the balance and reference-count changes of the
// reconciler in the same atomic unit as the transaction row itself.
type Repository interface {
	// Create a new transaction and apply its effect
	CreateTransaction(ctx context.Context, tx *Transaction) (*Transaction, error)

	// Get a transaction by ID
	GetTransaction(ctx context.Context, ownerID, transactionID string) (*Transaction, error)

	// Get transactions newest first
	GetTransactions(ctx context.Context, ownerID string, filter *TransactionFilter) ([]*Transaction, error)

	// Replace previous with tx, reversing the effect of previous and applying tx.
	// Fails with CONFLICT when the stored version no longer equals previous.Version.
	UpdateTransaction(ctx context.Context, previous, tx *Transaction) (*Transaction, error)

	// Delete the transaction captured in snapshot and reverse its effect.
	// Fails with CONFLICT when the stored version no longer equals snapshot.Version.
	DeleteTransaction(ctx context.Context, snapshot *Transaction) error
}
