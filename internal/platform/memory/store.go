// Package memory is an in-memory implementation of the account, category and
// transaction repositories. It is safe for concurrent use; data is lost when
// the process exits.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
)

// Store keeps every record behind one mutex so a transaction write and its
// balance adjustments happen in a single critical section.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]*account.Account
	categories   map[string]*category.Category
	transactions map[string]*transaction.Transaction

	hooks  reconciler.Hooks
	logger *slog.Logger
}

var (
	_ account.Repository     = (*Store)(nil)
	_ category.Repository    = (*Store)(nil)
	_ transaction.Repository = (*Store)(nil)
)

// NewStore creates a new in-memory store
func NewStore(hooks reconciler.Hooks, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		accounts:     make(map[string]*account.Account),
		categories:   make(map[string]*category.Category),
		transactions: make(map[string]*transaction.Transaction),
		hooks:        hooks,
		logger:       logger,
	}
}

// CreateAccount stores a new account
func (s *Store) CreateAccount(ctx context.Context, acc *account.Account) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[acc.AccountID]; exists {
		return nil, errors.NewConflictError("account already exists")
	}
	accCopy := *acc
	s.accounts[acc.AccountID] = &accCopy
	return acc, nil
}

// GetAccount retrieves an account owned by ownerID
func (s *Store) GetAccount(ctx context.Context, ownerID, accountID string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, exists := s.accounts[accountID]
	if !exists || acc.OwnerID != ownerID {
		return nil, errors.NewNotFoundError("account not found")
	}
	accCopy := *acc
	return &accCopy, nil
}

// GetAccounts retrieves the owner's accounts matching filter
func (s *Store) GetAccounts(ctx context.Context, ownerID string, filter *account.AccountFilter) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*account.Account{}
	for _, acc := range s.accounts {
		if acc.OwnerID != ownerID || !filter.Matches(acc) {
			continue
		}
		accCopy := *acc
		result = append(result, &accCopy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AccountID < result[j].AccountID })
	return result, nil
}

// UpdateAccount writes the descriptive fields and the active flag. Balances and
// counters are left to the transaction writes.
func (s *Store) UpdateAccount(ctx context.Context, acc *account.Account) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.accounts[acc.AccountID]
	if !exists || stored.OwnerID != acc.OwnerID {
		return nil, errors.NewNotFoundError("account not found")
	}
	stored.Name = acc.Name
	stored.AccountType = acc.AccountType
	stored.Bank = acc.Bank
	stored.IsActive = acc.IsActive
	stored.UpdatedAt = acc.UpdatedAt

	accCopy := *stored
	return &accCopy, nil
}

// DeleteAccount removes an account nothing references
func (s *Store) DeleteAccount(ctx context.Context, ownerID, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, exists := s.accounts[accountID]
	if !exists || acc.OwnerID != ownerID {
		return errors.NewNotFoundError("account not found")
	}
	if acc.TransactionCount > 0 {
		return errors.NewReferenceProtectedError("account has transactions and cannot be deleted").
			WithDetail("transactionCount", acc.TransactionCount)
	}
	delete(s.accounts, accountID)
	return nil
}

// CreateCategory stores a new category
func (s *Store) CreateCategory(ctx context.Context, c *category.Category) (*category.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[c.CategoryID]; exists {
		return nil, errors.NewConflictError("category already exists")
	}
	catCopy := *c
	s.categories[c.CategoryID] = &catCopy
	return c, nil
}

// GetCategory retrieves a category by ID
func (s *Store) GetCategory(ctx context.Context, categoryID string) (*category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.categories[categoryID]
	if !exists {
		return nil, errors.NewNotFoundError("category not found")
	}
	catCopy := *c
	return &catCopy, nil
}

// GetCategories retrieves the owner's categories and the defaults
func (s *Store) GetCategories(ctx context.Context, ownerID string, filter *category.CategoryFilter) ([]*category.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*category.Category{}
	for _, c := range s.categories {
		if c.OwnerID != ownerID && !c.IsDefault {
			continue
		}
		if !filter.Matches(c) {
			continue
		}
		catCopy := *c
		result = append(result, &catCopy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CategoryID < result[j].CategoryID })
	return result, nil
}

// UpdateCategory writes name, type, color and the active flag
func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) (*category.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.categories[c.CategoryID]
	if !exists {
		return nil, errors.NewNotFoundError("category not found")
	}
	if stored.CategoryType != c.CategoryType && stored.TransactionCount > 0 {
		return nil, category.NewTypeLockedError(stored.TransactionCount)
	}
	stored.Name = c.Name
	stored.CategoryType = c.CategoryType
	stored.Color = c.Color
	stored.IsActive = c.IsActive
	stored.UpdatedAt = c.UpdatedAt

	catCopy := *stored
	return &catCopy, nil
}

// DeleteCategory removes a category nothing references
func (s *Store) DeleteCategory(ctx context.Context, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.categories[categoryID]
	if !exists {
		return errors.NewNotFoundError("category not found")
	}
	if c.TransactionCount > 0 {
		return errors.NewReferenceProtectedError("category has transactions and cannot be deleted").
			WithDetail("transactionCount", c.TransactionCount)
	}
	delete(s.categories, categoryID)
	return nil
}

// CreateTransaction stores tx and applies its effect
func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	plan, err := s.hooks.ReconcileOnCreate(tx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[tx.TransactionID]; exists {
		return nil, errors.NewConflictError("transaction already exists")
	}
	if err := s.applyPlan(tx.OwnerID, tx, plan); err != nil {
		return nil, err
	}
	s.transactions[tx.TransactionID] = tx.Clone()
	return tx, nil
}

// GetTransaction retrieves a transaction owned by ownerID
func (s *Store) GetTransaction(ctx context.Context, ownerID, transactionID string) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.transactions[transactionID]
	if !exists || tx.OwnerID != ownerID {
		return nil, errors.NewNotFoundError("transaction not found")
	}
	return tx.Clone(), nil
}

// GetTransactions retrieves the owner's transactions newest first
func (s *Store) GetTransactions(ctx context.Context, ownerID string, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*transaction.Transaction{}
	for _, tx := range s.transactions {
		if tx.OwnerID != ownerID || !filter.Matches(tx) {
			continue
		}
		result = append(result, tx.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return transaction.Less(result[i], result[j]) })
	if filter != nil && filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// UpdateTransaction replaces previous with tx when previous is still the stored version
func (s *Store) UpdateTransaction(ctx context.Context, previous, tx *transaction.Transaction) (*transaction.Transaction, error) {
	plan, err := s.hooks.ReconcileOnUpdate(previous, tx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSnapshot(previous); err != nil {
		return nil, err
	}
	if err := s.applyPlan(tx.OwnerID, tx, plan); err != nil {
		return nil, err
	}
	s.transactions[tx.TransactionID] = tx.Clone()
	return tx, nil
}

// DeleteTransaction removes snapshot when it is still the stored version
func (s *Store) DeleteTransaction(ctx context.Context, snapshot *transaction.Transaction) error {
	plan, err := s.hooks.ReconcileOnDelete(snapshot)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSnapshot(snapshot); err != nil {
		return err
	}
	if err := s.applyPlan(snapshot.OwnerID, nil, plan); err != nil {
		return err
	}
	delete(s.transactions, snapshot.TransactionID)
	return nil
}

// checkSnapshot must be called with the write lock held
func (s *Store) checkSnapshot(snapshot *transaction.Transaction) error {
	stored, exists := s.transactions[snapshot.TransactionID]
	if !exists || stored.OwnerID != snapshot.OwnerID {
		return errors.NewNotFoundError("transaction not found")
	}
	if stored.Version != snapshot.Version {
		return errors.NewConflictError("transaction was modified by another request").
			WithDetail("currentVersion", stored.Version)
	}
	return nil
}

// applyPlan verifies every target before mutating any, so a failed plan leaves
// the store untouched. Must be called with the write lock held.
func (s *Store) applyPlan(ownerID string, tx *transaction.Transaction, plan *reconciler.Plan) error {
	if tx != nil {
		if acc, ok := s.accounts[tx.AccountID]; !ok || acc.OwnerID != ownerID {
			return errors.NewFieldValidationError("accountId", "account not found")
		}
		if _, ok := s.categories[tx.CategoryID]; !ok {
			return errors.NewFieldValidationError("categoryId", "category not found")
		}
	}
	for _, adj := range plan.Adjustments {
		if acc, ok := s.accounts[adj.AccountID]; !ok || acc.OwnerID != ownerID {
			return errors.NewInternalError("balance adjustment targets a missing account "+adj.AccountID, nil)
		}
	}
	for _, ref := range plan.AccountRefs {
		if _, ok := s.accounts[ref.ID]; !ok {
			return errors.NewInternalError("reference change targets a missing account "+ref.ID, nil)
		}
	}
	for _, ref := range plan.CategoryRefs {
		if _, ok := s.categories[ref.ID]; !ok {
			return errors.NewInternalError("reference change targets a missing category "+ref.ID, nil)
		}
	}

	for _, adj := range plan.Adjustments {
		acc := s.accounts[adj.AccountID]
		acc.CurrentBalance = acc.CurrentBalance.Add(adj.Delta)
	}
	for _, ref := range plan.AccountRefs {
		s.accounts[ref.ID].TransactionCount += ref.Delta
	}
	for _, ref := range plan.CategoryRefs {
		s.categories[ref.ID].TransactionCount += ref.Delta
	}

	s.logger.Debug("Applied reconciliation plan",
		"accounts", plan.AccountIDs(),
		"adjustments", len(plan.Adjustments))
	return nil
}
