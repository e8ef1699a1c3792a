package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType represents the type of an account
type AccountType string

const (
	// Checking represents a checking account
	Checking AccountType = "checking"
	// Savings represents a savings account
	Savings AccountType = "savings"
	// Wallet represents cash kept in a wallet
	Wallet AccountType = "wallet"
	// Investment represents an investment account
	Investment AccountType = "investment"
)

// Valid reports whether t is a known account type
func (t AccountType) Valid() bool {
	switch t {
	case Checking, Savings, Wallet, Investment:
		return true
	}
	return false
}

// Account represents a user-owned bucket of money with a running balance.
//
// CurrentBalance always equals InitialBalance plus the signed sum of the
// transactions posted against the account. Only the reconciler changes it.
type Account struct {
	AccountID   string      `json:"accountId"`
	OwnerID     string      `json:"ownerId"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	Bank        string      `json:"bank,omitempty"`

	InitialBalance decimal.Decimal `json:"initialBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`

	IsActive bool `json:"isActive"`

	// Number of transactions referencing the account
	TransactionCount int64 `json:"transactionCount"`

	// Metadata
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateAccountRequest represents the request to create a new account
type CreateAccountRequest struct {
	Name           string      `json:"name" validate:"required,min=2,max=100"`
	AccountType    AccountType `json:"accountType" validate:"required,oneof=checking savings wallet investment"`
	Bank           string      `json:"bank,omitempty" validate:"max=100"`
	InitialBalance string      `json:"initialBalance" validate:"required,money"`
}

// UpdateAccountRequest represents the request to update an existing account.
// Balances cannot be edited.
type UpdateAccountRequest struct {
	Name        string      `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	AccountType AccountType `json:"accountType,omitempty" validate:"omitempty,oneof=checking savings wallet investment"`
	Bank        *string     `json:"bank,omitempty" validate:"omitempty,max=100"`
}

// AccountListResponse represents the response for listing accounts
type AccountListResponse struct {
	Accounts     []*Account      `json:"accounts"`
	TotalCount   int             `json:"totalCount"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
}
