package account

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/money"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
	"github.com/hirosato/finance-ledger/backend/pkg/validator"
)

// Service provides account-related business logic
type Service struct {
	repo      Repository
	validator validator.Validator
	now       func() time.Time
}

// NewService creates a new account service
func NewService(repo Repository, v validator.Validator) *Service {
	return &Service{
		repo:      repo,
		validator: v,
		now:       time.Now,
	}
}

// CreateAccount creates a new account whose current balance starts at the initial balance
func (s *Service) CreateAccount(ctx context.Context, tenantCtx *tenant.TenantContext, req *CreateAccountRequest) (*Account, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Bank = strings.TrimSpace(req.Bank)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	initialBalance, err := money.Parse(req.InitialBalance)
	if err != nil {
		return nil, errors.NewFieldValidationError("initialBalance", err.Error())
	}
	if !money.WithinLimit(initialBalance) {
		return nil, errors.NewFieldValidationError("initialBalance", "initial balance must be between -99999999.99 and 99999999.99")
	}

	if err := s.ensureUniqueName(ctx, tenantCtx.UserID, req.Name, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	account := &Account{
		AccountID:      uuid.New().String(),
		OwnerID:        tenantCtx.UserID,
		Name:           req.Name,
		AccountType:    req.AccountType,
		Bank:           req.Bank,
		InitialBalance: initialBalance,
		CurrentBalance: initialBalance,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return s.repo.CreateAccount(ctx, account)
}

// GetAccount retrieves an account by ID
func (s *Service) GetAccount(ctx context.Context, tenantCtx *tenant.TenantContext, accountID string) (*Account, error) {
	return s.repo.GetAccount(ctx, tenantCtx.UserID, accountID)
}

// GetAccounts retrieves accounts ordered by name together with the total balance of the listed accounts
func (s *Service) GetAccounts(ctx context.Context, tenantCtx *tenant.TenantContext, filter *AccountFilter) (*AccountListResponse, error) {
	accounts, err := s.repo.GetAccounts(ctx, tenantCtx.UserID, filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		return strings.ToLower(accounts[i].Name) < strings.ToLower(accounts[j].Name)
	})

	total := decimal.Zero
	for _, acc := range accounts {
		total = total.Add(acc.CurrentBalance)
	}

	return &AccountListResponse{
		Accounts:     accounts,
		TotalCount:   len(accounts),
		TotalBalance: total,
	}, nil
}

// TotalBalance sums the current balance of every active account
func (s *Service) TotalBalance(ctx context.Context, tenantCtx *tenant.TenantContext) (decimal.Decimal, error) {
	resp, err := s.GetAccounts(ctx, tenantCtx, &AccountFilter{})
	if err != nil {
		return decimal.Zero, err
	}
	return resp.TotalBalance, nil
}

// UpdateAccount updates the descriptive fields of an existing account
func (s *Service) UpdateAccount(ctx context.Context, tenantCtx *tenant.TenantContext, accountID string, req *UpdateAccountRequest) (*Account, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Bank != nil {
		bank := strings.TrimSpace(*req.Bank)
		req.Bank = &bank
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// Check if the account exists
	account, err := s.repo.GetAccount(ctx, tenantCtx.UserID, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" && !strings.EqualFold(req.Name, account.Name) {
		if err := s.ensureUniqueName(ctx, tenantCtx.UserID, req.Name, accountID); err != nil {
			return nil, err
		}
	}

	if req.Name != "" {
		account.Name = req.Name
	}
	if req.AccountType != "" {
		account.AccountType = req.AccountType
	}
	if req.Bank != nil {
		account.Bank = *req.Bank
	}
	account.UpdatedAt = s.now().UTC()

	return s.repo.UpdateAccount(ctx, account)
}

// DeactivateAccount soft-deletes an account by clearing its active flag.
// Its transactions and balance are kept.
func (s *Service) DeactivateAccount(ctx context.Context, tenantCtx *tenant.TenantContext, accountID string) (*Account, error) {
	account, err := s.repo.GetAccount(ctx, tenantCtx.UserID, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return account, nil
	}

	account.IsActive = false
	account.UpdatedAt = s.now().UTC()
	return s.repo.UpdateAccount(ctx, account)
}

// DeleteAccount permanently removes an account. It is rejected while any
// transaction references the account.
func (s *Service) DeleteAccount(ctx context.Context, tenantCtx *tenant.TenantContext, accountID string) error {
	// Check if the account exists
	if _, err := s.repo.GetAccount(ctx, tenantCtx.UserID, accountID); err != nil {
		return err
	}

	return s.repo.DeleteAccount(ctx, tenantCtx.UserID, accountID)
}

// ensureUniqueName checks that no other active account of the owner uses name
func (s *Service) ensureUniqueName(ctx context.Context, ownerID, name, exceptID string) error {
	existing, err := s.repo.GetAccounts(ctx, ownerID, &AccountFilter{})
	if err != nil {
		return err
	}
	for _, acc := range existing {
		if acc.AccountID != exceptID && strings.EqualFold(acc.Name, name) {
			return errors.NewFieldValidationError("name", "an account with this name already exists")
		}
	}
	return nil
}
