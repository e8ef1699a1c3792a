package transaction

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/hirosato/finance-ledger/backend/internal/common/utils"
	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/money"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
	"github.com/hirosato/finance-ledger/backend/pkg/validator"
)

// AccountReader is the part of the account repository the service needs
type AccountReader interface {
	GetAccount(ctx context.Context, ownerID, accountID string) (*account.Account, error)
}

// CategoryReader is the part of the category repository the service needs
type CategoryReader interface {
	GetCategory(ctx context.Context, categoryID string) (*category.Category, error)
}

// Service provides transaction-related business logic
type Service struct {
	repo       Repository
	accounts   AccountReader
	categories CategoryReader
	validator  validator.Validator
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new transaction service
func NewService(repo Repository, accounts AccountReader, categories CategoryReader, v validator.Validator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		accounts:   accounts,
		categories: categories,
		validator:  v,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for the future-date check and timestamps
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateTransaction validates and stores a transaction, then returns it with its refreshed account
func (s *Service) CreateTransaction(ctx context.Context, tenantCtx *tenant.TenantContext, req *CreateTransactionRequest) (*MutationResult, error) {
	req.AccountID = strings.TrimSpace(req.AccountID)
	req.CategoryID = strings.TrimSpace(req.CategoryID)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tx := &Transaction{
		TransactionID:   ulid.Make().String(),
		OwnerID:         tenantCtx.UserID,
		AccountID:       req.AccountID,
		CategoryID:      req.CategoryID,
		TransactionType: req.TransactionType,
		Amount:          amount,
		Date:            req.Date,
		Description:     req.Description,
		Version:         1,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}
	if err := s.validateReferences(ctx, tx, now); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Created transaction",
		"transactionId", created.TransactionID,
		"accountId", created.AccountID,
		"type", created.TransactionType,
		"amount", money.Format(created.Amount))

	return s.refresh(ctx, tenantCtx.UserID, created, created.AccountID)
}

// GetTransaction retrieves a transaction by ID
func (s *Service) GetTransaction(ctx context.Context, tenantCtx *tenant.TenantContext, transactionID string) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, tenantCtx.UserID, transactionID)
}

// ListTransactions retrieves the transactions matching filter, newest first, with their totals
func (s *Service) ListTransactions(ctx context.Context, tenantCtx *tenant.TenantContext, filter *TransactionFilter) (*TransactionListResponse, error) {
	if filter != nil {
		for field, date := range map[string]string{"startDate": filter.StartDate, "endDate": filter.EndDate} {
			if date == "" {
				continue
			}
			if err := utils.ValidateISODate(date); err != nil {
				return nil, errors.NewFieldValidationError(field, "invalid date format, should be YYYY-MM-DD")
			}
		}
		if filter.StartDate != "" && filter.EndDate != "" && filter.StartDate > filter.EndDate {
			return nil, errors.NewFieldValidationError("startDate", "start date must not be after end date")
		}
		if filter.TransactionType != "" && !filter.TransactionType.Valid() {
			return nil, errors.NewFieldValidationError("transactionType", "transactionType must be one of: income expense")
		}
	}

	txs, err := s.repo.GetTransactions(ctx, tenantCtx.UserID, filter)
	if err != nil {
		return nil, err
	}

	return &TransactionListResponse{
		Transactions: txs,
		TotalCount:   len(txs),
		Summary:      Summarize(txs),
	}, nil
}

// UpdateTransaction applies a partial update. The stored transaction is read
// first and handed to the repository as the snapshot to reverse.
func (s *Service) UpdateTransaction(ctx context.Context, tenantCtx *tenant.TenantContext, transactionID string, req *UpdateTransactionRequest) (*MutationResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	previous, err := s.repo.GetTransaction(ctx, tenantCtx.UserID, transactionID)
	if err != nil {
		return nil, err
	}
	if req.ExpectedVersion != nil && *req.ExpectedVersion != previous.Version {
		return nil, errors.NewConflictError("transaction was modified by another request").
			WithDetail("currentVersion", previous.Version)
	}

	tx := previous.Clone()
	if req.AccountID != nil {
		tx.AccountID = strings.TrimSpace(*req.AccountID)
	}
	if req.CategoryID != nil {
		tx.CategoryID = strings.TrimSpace(*req.CategoryID)
	}
	if req.TransactionType != nil {
		tx.TransactionType = *req.TransactionType
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			return nil, err
		}
		tx.Amount = amount
	}
	if req.Date != nil {
		tx.Date = *req.Date
	}
	if req.Description != nil {
		tx.Description = strings.TrimSpace(*req.Description)
	}

	now := s.now()
	if err := s.validateReferences(ctx, tx, now); err != nil {
		return nil, err
	}
	tx.Version = previous.Version + 1
	tx.UpdatedAt = now.UTC()

	updated, err := s.repo.UpdateTransaction(ctx, previous, tx)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Updated transaction",
		"transactionId", updated.TransactionID,
		"previousAccountId", previous.AccountID,
		"accountId", updated.AccountID,
		"version", updated.Version)

	return s.refresh(ctx, tenantCtx.UserID, updated, previous.AccountID, updated.AccountID)
}

// DeleteTransaction removes a transaction and returns its refreshed account
func (s *Service) DeleteTransaction(ctx context.Context, tenantCtx *tenant.TenantContext, transactionID string) (*MutationResult, error) {
	snapshot, err := s.repo.GetTransaction(ctx, tenantCtx.UserID, transactionID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteTransaction(ctx, snapshot); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Deleted transaction",
		"transactionId", snapshot.TransactionID,
		"accountId", snapshot.AccountID)

	return s.refresh(ctx, tenantCtx.UserID, nil, snapshot.AccountID)
}

// validateReferences checks the amount, date and the account and category the transaction points to
func (s *Service) validateReferences(ctx context.Context, tx *Transaction, now time.Time) error {
	if !tx.TransactionType.Valid() {
		return errors.NewFieldValidationError("transactionType", "transactionType must be one of: income expense")
	}
	if err := utils.ValidateNotFutureDate(tx.Date, now); err != nil {
		return err
	}
	if err := utils.ValidateLength(tx.Description, "description", 0, 500); err != nil {
		return err
	}

	acc, err := s.accounts.GetAccount(ctx, tx.OwnerID, tx.AccountID)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			return errors.NewFieldValidationError("accountId", "account not found")
		}
		return err
	}
	if !acc.IsActive {
		return errors.NewFieldValidationError("accountId", "account is inactive")
	}

	cat, err := s.categories.GetCategory(ctx, tx.CategoryID)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			return errors.NewFieldValidationError("categoryId", "category not found")
		}
		return err
	}
	if !cat.VisibleTo(tx.OwnerID) {
		return errors.NewFieldValidationError("categoryId", "category not found")
	}
	if !cat.IsActive {
		return errors.NewFieldValidationError("categoryId", "category is inactive")
	}
	if cat.CategoryType != tx.TransactionType {
		return errors.NewFieldValidationError("categoryId", "category type must match the transaction type")
	}

	return nil
}

// refresh re-reads the accounts a write touched so callers see the reconciled balances
func (s *Service) refresh(ctx context.Context, ownerID string, tx *Transaction, accountIDs ...string) (*MutationResult, error) {
	result := &MutationResult{Transaction: tx, Accounts: []*account.Account{}}
	seen := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		acc, err := s.accounts.GetAccount(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		result.Accounts = append(result.Accounts, acc)
	}
	return result, nil
}

// parseAmount accepts positive amounts with at most two decimals up to the amount limit
func parseAmount(value string) (decimal.Decimal, error) {
	amount, err := money.Parse(value)
	if err != nil {
		return decimal.Zero, errors.NewFieldValidationError("amount", err.Error())
	}
	if !amount.IsPositive() {
		return decimal.Zero, errors.NewFieldValidationError("amount", "amount must be greater than zero")
	}
	if !money.WithinLimit(amount) {
		return decimal.Zero, errors.NewFieldValidationError("amount", "amount cannot exceed "+money.Format(money.MaxAmount))
	}
	return amount, nil
}
