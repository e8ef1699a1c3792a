package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hirosato/finance-ledger/backend/internal/domain/mcp"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
)

// AuditBalancesTool recomputes balances from the transactions and reports drift
type AuditBalancesTool struct {
	auditor *reconciler.Auditor
}

func NewAuditBalancesTool(auditor *reconciler.Auditor) *AuditBalancesTool {
	return &AuditBalancesTool{auditor: auditor}
}

func (t *AuditBalancesTool) GetName() string {
	return "audit-balances"
}

func (t *AuditBalancesTool) GetDescription() string {
	return "Recomputes each account balance as initial balance plus income minus expenses and compares it with the stored balance. Read only."
}

func (t *AuditBalancesTool) GetInputSchema() mcp.JSONSchema {
	return mcp.JSONSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"accountId": stringProperty("Audit a single account. Omit to audit every account."),
		},
	}
}

func (t *AuditBalancesTool) Execute(ctx context.Context, arguments json.RawMessage) (*mcp.CallToolResult, error) {
	var args struct {
		AccountID string `json:"accountId"`
	}
	if result := parseArguments(arguments, &args); result != nil {
		return result, nil
	}

	owner, err := tenant.FromContext(ctx)
	if err != nil {
		return errorResult("Error auditing balances", err), nil
	}

	if args.AccountID != "" {
		result, err := t.auditor.AuditAccount(ctx, owner.UserID, args.AccountID)
		if err != nil {
			return errorResult("Error auditing balances", err), nil
		}
		summary := "Balance is consistent"
		if !result.Consistent {
			summary = fmt.Sprintf("Balance is off by %s", result.Difference.StringFixed(2))
		}
		return textResult(summary, result)
	}

	report, err := t.auditor.AuditOwner(ctx, owner.UserID)
	if err != nil {
		return errorResult("Error auditing balances", err), nil
	}
	return textResult(fmt.Sprintf("Audited %d accounts, %d inconsistent", len(report.Results), report.Inconsistent), report)
}
