package tools

import (
	"context"
	"encoding/json"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/mcp"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
)

// CreateAccountTool opens a new account with an initial balance
type CreateAccountTool struct {
	accountService *account.Service
}

func NewCreateAccountTool(accountService *account.Service) *CreateAccountTool {
	return &CreateAccountTool{accountService: accountService}
}

func (t *CreateAccountTool) GetName() string {
	return "create-account"
}

func (t *CreateAccountTool) GetDescription() string {
	return "Creates an account. The current balance starts at the initial balance and only transactions change it afterwards."
}

func (t *CreateAccountTool) GetInputSchema() mcp.JSONSchema {
	return mcp.JSONSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"name": stringProperty("Account name, unique among your accounts"),
			"accountType": enumProperty("Kind of account",
				string(account.Checking), string(account.Savings), string(account.Wallet), string(account.Investment)),
			"bank":           stringProperty("Optional bank name"),
			"initialBalance": amountProperty("Opening balance, may be negative"),
		},
		Required: []string{"name", "accountType", "initialBalance"},
	}
}

func (t *CreateAccountTool) Execute(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var req account.CreateAccountRequest
	if result := parseArguments(arguments, &req); result != nil {
		return result, nil
	}

	owner, err := tenant.FromContext(ctx)
	if err != nil {
		return errorResult("Error creating account", err), nil
	}

	acc, err := t.accountService.CreateAccount(ctx, owner, &req)
	if err != nil {
		return errorResult("Error creating account", err), nil
	}
	return textResult("Account created successfully", acc)
}
