package repository

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	commonErrors "github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
)

type accountItem struct {
	PK   string `dynamodbav:"PK"`
	SK   string `dynamodbav:"SK"`
	Type string `dynamodbav:"Type"`

	AccountID        string                `dynamodbav:"AccountID"`
	OwnerID          string                `dynamodbav:"OwnerID"`
	Name             string                `dynamodbav:"Name"`
	AccountType      string                `dynamodbav:"AccountType"`
	Bank             string                `dynamodbav:"Bank,omitempty"`
	InitialBalance   attributevalue.Number `dynamodbav:"InitialBalance"`
	CurrentBalance   attributevalue.Number `dynamodbav:"CurrentBalance"`
	IsActive         bool                  `dynamodbav:"IsActive"`
	TransactionCount int64                 `dynamodbav:"TransactionCount"`
	CreatedAt        time.Time             `dynamodbav:"CreatedAt"`
	UpdatedAt        time.Time             `dynamodbav:"UpdatedAt"`
}

func newAccountItem(acc *account.Account) accountItem {
	return accountItem{
		PK:               userPK(acc.OwnerID),
		SK:               accountSK(acc.AccountID),
		Type:             typeAccount,
		AccountID:        acc.AccountID,
		OwnerID:          acc.OwnerID,
		Name:             acc.Name,
		AccountType:      string(acc.AccountType),
		Bank:             acc.Bank,
		InitialBalance:   number(acc.InitialBalance),
		CurrentBalance:   number(acc.CurrentBalance),
		IsActive:         acc.IsActive,
		TransactionCount: acc.TransactionCount,
		CreatedAt:        acc.CreatedAt.UTC(),
		UpdatedAt:        acc.UpdatedAt.UTC(),
	}
}

func (i accountItem) toDomain() (*account.Account, error) {
	initial, err := parseNumber(i.InitialBalance)
	if err != nil {
		return nil, commonErrors.NewInternalError("stored initial balance is not a number", err)
	}
	current, err := parseNumber(i.CurrentBalance)
	if err != nil {
		return nil, commonErrors.NewInternalError("stored current balance is not a number", err)
	}
	return &account.Account{
		AccountID:        i.AccountID,
		OwnerID:          i.OwnerID,
		Name:             i.Name,
		AccountType:      account.AccountType(i.AccountType),
		Bank:             i.Bank,
		InitialBalance:   initial,
		CurrentBalance:   current,
		IsActive:         i.IsActive,
		TransactionCount: i.TransactionCount,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}, nil
}

type categoryItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
	Type   string `dynamodbav:"Type"`

	CategoryID       string    `dynamodbav:"CategoryID"`
	OwnerID          string    `dynamodbav:"OwnerID"`
	Name             string    `dynamodbav:"Name"`
	CategoryType     string    `dynamodbav:"CategoryType"`
	Color            string    `dynamodbav:"Color"`
	IsDefault        bool      `dynamodbav:"IsDefault"`
	IsActive         bool      `dynamodbav:"IsActive"`
	TransactionCount int64     `dynamodbav:"TransactionCount"`
	CreatedAt        time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt        time.Time `dynamodbav:"UpdatedAt"`
}

func newCategoryItem(c *category.Category) categoryItem {
	return categoryItem{
		PK:               categoryPK(c.CategoryID),
		SK:               categorySK,
		GSI1PK:           categoriesGSI1PK(c.OwnerID),
		GSI1SK:           "NAME#" + c.Name,
		Type:             typeCategory,
		CategoryID:       c.CategoryID,
		OwnerID:          c.OwnerID,
		Name:             c.Name,
		CategoryType:     string(c.CategoryType),
		Color:            c.Color,
		IsDefault:        c.IsDefault,
		IsActive:         c.IsActive,
		TransactionCount: c.TransactionCount,
		CreatedAt:        c.CreatedAt.UTC(),
		UpdatedAt:        c.UpdatedAt.UTC(),
	}
}

func (i categoryItem) toDomain() *category.Category {
	return &category.Category{
		CategoryID:       i.CategoryID,
		OwnerID:          i.OwnerID,
		Name:             i.Name,
		CategoryType:     entry.Type(i.CategoryType),
		Color:            i.Color,
		IsDefault:        i.IsDefault,
		IsActive:         i.IsActive,
		TransactionCount: i.TransactionCount,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
}

type transactionItem struct {
	PK     string `dynamodbav:"PK"`
	SK     string `dynamodbav:"SK"`
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`
	Type   string `dynamodbav:"Type"`

	TransactionID   string                `dynamodbav:"TransactionID"`
	OwnerID         string                `dynamodbav:"OwnerID"`
	AccountID       string                `dynamodbav:"AccountID"`
	CategoryID      string                `dynamodbav:"CategoryID"`
	TransactionType string                `dynamodbav:"TransactionType"`
	Amount          attributevalue.Number `dynamodbav:"Amount"`
	Date            string                `dynamodbav:"Date"`
	Description     string                `dynamodbav:"Description,omitempty"`
	Version         int64                 `dynamodbav:"Version"`
	CreatedAt       time.Time             `dynamodbav:"CreatedAt"`
	UpdatedAt       time.Time             `dynamodbav:"UpdatedAt"`
}

func newTransactionItem(tx *transaction.Transaction) transactionItem {
	return transactionItem{
		PK:              userPK(tx.OwnerID),
		SK:              transactionSK(tx.TransactionID),
		GSI1PK:          transactionsGSI1PK(tx.OwnerID),
		GSI1SK:          transactionGSI1SK(tx.Date, tx.TransactionID),
		Type:            typeTransaction,
		TransactionID:   tx.TransactionID,
		OwnerID:         tx.OwnerID,
		AccountID:       tx.AccountID,
		CategoryID:      tx.CategoryID,
		TransactionType: string(tx.TransactionType),
		Amount:          number(tx.Amount),
		Date:            tx.Date,
		Description:     tx.Description,
		Version:         tx.Version,
		CreatedAt:       tx.CreatedAt.UTC(),
		UpdatedAt:       tx.UpdatedAt.UTC(),
	}
}

func (i transactionItem) toDomain() (*transaction.Transaction, error) {
	amount, err := parseNumber(i.Amount)
	if err != nil {
		return nil, commonErrors.NewInternalError("stored amount is not a number", err)
	}
	return &transaction.Transaction{
		TransactionID:   i.TransactionID,
		OwnerID:         i.OwnerID,
		AccountID:       i.AccountID,
		CategoryID:      i.CategoryID,
		TransactionType: entry.Type(i.TransactionType),
		Amount:          amount,
		Date:            i.Date,
		Description:     i.Description,
		Version:         i.Version,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}, nil
}
