package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
)

// Transaction is a single income or expense posted to one account
type Transaction struct {
	TransactionID   string          `json:"transactionId"`
	OwnerID         string          `json:"ownerId"`
	AccountID       string          `json:"accountId"`
	CategoryID      string          `json:"categoryId"`
	TransactionType entry.Type      `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
	Date            string          `json:"date"` // ISO 8601 date (YYYY-MM-DD)
	Description     string          `json:"description,omitempty"`

	// Incremented on every update; writes are rejected when the stored version moved
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy that can be mutated without touching t
func (t *Transaction) Clone() *Transaction {
	c := *t
	return &c
}

// SignedAmount is the amount with the sign implied by the transaction type
func (t *Transaction) SignedAmount() decimal.Decimal {
	signed, _ := t.TransactionType.Signed(t.Amount)
	return signed
}

// TransactionFilter represents the filtering criteria for transactions.
// Dates are inclusive YYYY-MM-DD bounds.
type TransactionFilter struct {
	StartDate       string
	EndDate         string
	AccountID       string
	CategoryID      string
	TransactionType entry.Type
	Limit           int
}

// Matches reports whether t passes every criterion except Limit
func (f *TransactionFilter) Matches(t *Transaction) bool {
	if f == nil {
		return true
	}
	if f.StartDate != "" && t.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && t.Date > f.EndDate {
		return false
	}
	if f.AccountID != "" && t.AccountID != f.AccountID {
		return false
	}
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	if f.TransactionType != "" && t.TransactionType != f.TransactionType {
		return false
	}
	return true
}

// Less orders transactions newest first: by date, then by creation time, then by ID
func Less(a, b *Transaction) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.TransactionID > b.TransactionID
}

// Summary holds the totals of a list of transactions
type Summary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

// Summarize totals income and expense over txs
func Summarize(txs []*Transaction) Summary {
	s := Summary{TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	for _, t := range txs {
		switch t.TransactionType {
		case entry.Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case entry.Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// CreateTransactionRequest represents the request to create a transaction
type CreateTransactionRequest struct {
	AccountID       string     `json:"accountId" validate:"required"`
	CategoryID      string     `json:"categoryId" validate:"required"`
	TransactionType entry.Type `json:"transactionType" validate:"required,oneof=income expense"`
	Amount          string     `json:"amount" validate:"required"`
	Date            string     `json:"date" validate:"required,isodate"`
	Description     string     `json:"description,omitempty" validate:"max=500"`
}

// UpdateTransactionRequest represents a partial update. Nil fields are left unchanged.
type UpdateTransactionRequest struct {
	AccountID       *string     `json:"accountId,omitempty" validate:"omitempty,min=1"`
	CategoryID      *string     `json:"categoryId,omitempty" validate:"omitempty,min=1"`
	TransactionType *entry.Type `json:"transactionType,omitempty" validate:"omitempty,oneof=income expense"`
	Amount          *string     `json:"amount,omitempty"`
	Date            *string     `json:"date,omitempty" validate:"omitempty,isodate"`
	Description     *string     `json:"description,omitempty" validate:"omitempty,max=500"`

	// When set, the update only applies if the stored version still matches
	ExpectedVersion *int64 `json:"version,omitempty"`
}

// TransactionListResponse represents a filtered list with its totals
type TransactionListResponse struct {
	Transactions []*Transaction `json:"transactions"`
	TotalCount   int            `json:"totalCount"`
	Summary      Summary        `json:"summary"`
}

// MutationResult is returned by writes together with the refreshed accounts they touched
type MutationResult struct {
	Transaction *Transaction       `json:"transaction,omitempty"`
	Accounts    []*account.Account `json:"accounts"`
}
