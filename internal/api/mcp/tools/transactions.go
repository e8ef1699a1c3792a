package tools

import (
	"context"
	"encoding/json"

	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	"github.com/hirosato/finance-ledger/backend/internal/domain/mcp"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
)

// CreateTransactionTool records an income or expense and moves the account balance with it
type CreateTransactionTool struct {
	transactionService *transaction.Service
}

func NewCreateTransactionTool(transactionService *transaction.Service) *CreateTransactionTool {
	return &CreateTransactionTool{transactionService: transactionService}
}

func (t *CreateTransactionTool) GetName() string {
	return "create-transaction"
}

func (t *CreateTransactionTool) GetDescription() string {
	return "Records an income or expense against one of your accounts. The account balance is updated in the same write."
}

func (t *CreateTransactionTool) GetInputSchema() mcp.JSONSchema {
	return mcp.JSONSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"accountId":       stringProperty("Account the money moves in or out of"),
			"categoryId":      stringProperty("Category of the same type as the transaction"),
			"transactionType": enumProperty("Direction of the money", string(entry.Income), string(entry.Expense)),
			"amount":          amountProperty("Positive amount with at most two decimals, e.g. 1250.50"),
			"date":            dateProperty("Transaction date in YYYY-MM-DD format, not in the future"),
			"description":     stringProperty("Optional note, up to 500 characters"),
		},
		Required: []string{"accountId", "categoryId", "transactionType", "amount", "date"},
	}
}

func (t *CreateTransactionTool) Execute(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var req transaction.CreateTransactionRequest
	if result := parseArguments(arguments, &req); result != nil {
		return result, nil
	}

	owner, err := tenant.FromContext(ctx)
	if err != nil {
		return errorResult("Error creating transaction", err), nil
	}

	result, err := t.transactionService.CreateTransaction(ctx, owner, &req)
	if err != nil {
		return errorResult("Error creating transaction", err), nil
	}
	return textResult("Transaction created successfully", result)
}

// UpdateTransactionTool changes any field of a transaction; balances follow the change
type UpdateTransactionTool struct {
	transactionService *transaction.Service
}

func NewUpdateTransactionTool(transactionService *transaction.Service) *UpdateTransactionTool {
	return &UpdateTransactionTool{transactionService: transactionService}
}

func (t *UpdateTransactionTool) GetName() string {
	return "update-transaction"
}

func (t *UpdateTransactionTool) GetDescription() string {
	return "Updates a transaction. Omitted fields keep their value. Moving it to another account reverses it on the old account and applies it on the new one atomically. Pass version to reject the update if the transaction changed since you read it."
}

func (t *UpdateTransactionTool) GetInputSchema() mcp.JSONSchema {
	return mcp.JSONSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"transactionId":   stringProperty("Transaction to update"),
			"accountId":       stringProperty("New account"),
			"categoryId":      stringProperty("New category"),
			"transactionType": enumProperty("New direction", string(entry.Income), string(entry.Expense)),
			"amount":          amountProperty("New positive amount"),
			"date":            dateProperty("New date in YYYY-MM-DD format"),
			"description":     stringProperty("New note"),
			"version": map[string]string{
				"type":        "integer",
				"description": "Version the update is based on",
			},
		},
		Required: []string{"transactionId"},
	}
}

func (t *UpdateTransactionTool) Execute(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var args struct {
		TransactionID string `json:"transactionId"`
		transaction.UpdateTransactionRequest
	}
	if result := parseArguments(arguments, &args); result != nil {
		return result, nil
	}

	owner, err := tenant.FromContext(ctx)
	if err != nil {
		return errorResult("Error updating transaction", err), nil
	}

	result, err := t.transactionService.UpdateTransaction(ctx, owner, args.TransactionID, &args.UpdateTransactionRequest)
	if err != nil {
		return errorResult("Error updating transaction", err), nil
	}
	return textResult("Transaction updated successfully", result)
}

// DeleteTransactionTool removes a transaction and reverses its effect on the balance
type DeleteTransactionTool struct {
	transactionService *transaction.Service
}

func NewDeleteTransactionTool(transactionService *transaction.Service) *DeleteTransactionTool {
	return &DeleteTransactionTool{transactionService: transactionService}
}

func (t *DeleteTransactionTool) GetName() string {
	return "delete-transaction"
}

func (t *DeleteTransactionTool) GetDescription() string {
	return "Deletes a transaction and reverses its effect on the account balance"
}

func (t *DeleteTransactionTool) GetInputSchema() mcp.JSONSchema {
	return mcp.JSONSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"transactionId": stringProperty("Transaction to delete"),
		},
		Required: []string{"transactionId"},
	}
}

func (t *DeleteTransactionTool) Execute(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var args struct {
		TransactionID string `json:"transactionId"`
	}
	if result := parseArguments(arguments, &args); result != nil {
		return result, nil
	}

	owner, err := tenant.FromContext(ctx)
	if err != nil {
		return errorResult("Error deleting transaction", err), nil
	}

	result, err := t.transactionService.DeleteTransaction(ctx, owner, args.TransactionID)
	if err != nil {
		return errorResult("Error deleting transaction", err), nil
	}
	return textResult("Transaction deleted successfully", result)
}
