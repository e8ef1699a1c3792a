package resources

import (
	"context"
	"fmt"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/mcp"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
)

// AccountsResource lists the active accounts of the owner with their balances
type AccountsResource struct {
	accountService *account.Service
}

func NewAccountsResource(accountService *account.Service) *AccountsResource {
	return &AccountsResource{accountService: accountService}
}

func (r *AccountsResource) GetURI() string {
	return "finance://accounts"
}

func (r *AccountsResource) GetName() string {
	return "Accounts"
}

func (r *AccountsResource) GetDescription() string {
	return "Active accounts with current balances and the total across them"
}

func (r *AccountsResource) GetMimeType() string {
	return "application/json"
}

func (r *AccountsResource) Read(ctx context.Context) (*mcp.ReadResourceResult, error) {
	owner, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := r.accountService.GetAccounts(ctx, owner, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return jsonContent(r.GetURI(), r.GetMimeType(), accounts)
}
