package account

import (
	"context"
)

// Repository defines the interface for account data operations.
// None of its methods write CurrentBalance after creation; balance changes
// happen only through the transaction repository's reconciled writes.
type Repository interface {
	// Create a new account
	CreateAccount(ctx context.Context, account *Account) (*Account, error)

	// Get an account by ID
	GetAccount(ctx context.Context, ownerID string, accountID string) (*Account, error)

	// Get accounts by criteria
	GetAccounts(ctx context.Context, ownerID string, filter *AccountFilter) ([]*Account, error)

	// Update name, type, bank and active flag of an existing account
	UpdateAccount(ctx context.Context, account *Account) (*Account, error)

	// Delete an account. Fails with REFERENCE_PROTECTED while transactions reference it.
	DeleteAccount(ctx context.Context, ownerID string, accountID string) error
}
