package reconciler

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
)

// AccountReader is the part of the account repository the auditor reads
type AccountReader interface {
	GetAccount(ctx context.Context, ownerID, accountID string) (*account.Account, error)
	GetAccounts(ctx context.Context, ownerID string, filter *account.AccountFilter) ([]*account.Account, error)
}

// TransactionReader is the part of the transaction repository the auditor reads
type TransactionReader interface {
	GetTransactions(ctx context.Context, ownerID string, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error)
}

// AuditResult compares the stored balance of an account with the balance
// recomputed from its transactions
type AuditResult struct {
	AccountID  string          `json:"accountId"`
	Name       string          `json:"name"`
	Stored     decimal.Decimal `json:"stored"`
	Expected   decimal.Decimal `json:"expected"`
	Difference decimal.Decimal `json:"difference"` // Stored - Expected
	Consistent bool            `json:"consistent"`
}

// AuditReport holds the results for every account of an owner
type AuditReport struct {
	OwnerID      string         `json:"ownerId"`
	Results      []*AuditResult `json:"results"`
	Inconsistent int            `json:"inconsistent"`
}

// Auditor recomputes balances from the live transaction set. It never writes.
type Auditor struct {
	accounts     AccountReader
	transactions TransactionReader
	logger       *slog.Logger
}

// NewAuditor creates a new auditor
func NewAuditor(accounts AccountReader, transactions TransactionReader, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		accounts:     accounts,
		transactions: transactions,
		logger:       logger,
	}
}

// ExpectedBalance is initial + sum(income) - sum(expense) over txs
func ExpectedBalance(initial decimal.Decimal, txs []*transaction.Transaction) decimal.Decimal {
	expected := initial
	for _, tx := range txs {
		switch tx.TransactionType {
		case entry.Income:
			expected = expected.Add(tx.Amount)
		case entry.Expense:
			expected = expected.Sub(tx.Amount)
		}
	}
	return expected
}

// AuditAccount checks a single account
func (a *Auditor) AuditAccount(ctx context.Context, ownerID, accountID string) (*AuditResult, error) {
	acc, err := a.accounts.GetAccount(ctx, ownerID, accountID)
	if err != nil {
		return nil, err
	}
	return a.audit(ctx, acc)
}

// AuditOwner checks every account of the owner, active or not
func (a *Auditor) AuditOwner(ctx context.Context, ownerID string) (*AuditReport, error) {
	accounts, err := a.accounts.GetAccounts(ctx, ownerID, &account.AccountFilter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}

	report := &AuditReport{OwnerID: ownerID, Results: make([]*AuditResult, 0, len(accounts))}
	for _, acc := range accounts {
		result, err := a.audit(ctx, acc)
		if err != nil {
			return nil, err
		}
		if !result.Consistent {
			report.Inconsistent++
		}
		report.Results = append(report.Results, result)
	}

	a.logger.InfoContext(ctx, "Audited account balances",
		"ownerId", ownerID,
		"accounts", len(report.Results),
		"inconsistent", report.Inconsistent)

	return report, nil
}

func (a *Auditor) audit(ctx context.Context, acc *account.Account) (*AuditResult, error) {
	txs, err := a.transactions.GetTransactions(ctx, acc.OwnerID, &transaction.TransactionFilter{AccountID: acc.AccountID})
	if err != nil {
		return nil, err
	}

	expected := ExpectedBalance(acc.InitialBalance, txs)
	result := &AuditResult{
		AccountID:  acc.AccountID,
		Name:       acc.Name,
		Stored:     acc.CurrentBalance,
		Expected:   expected,
		Difference: acc.CurrentBalance.Sub(expected),
		Consistent: acc.CurrentBalance.Equal(expected),
	}
	if !result.Consistent {
		a.logger.WarnContext(ctx, "Account balance does not match its transactions",
			"accountId", acc.AccountID,
			"stored", acc.CurrentBalance.StringFixed(2),
			"expected", expected.StringFixed(2))
	}
	return result, nil
}
