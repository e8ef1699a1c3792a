package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/money"
)

const accountColumns = `account_id, owner_id, name, account_type, bank, initial_balance_cents,
	current_balance_cents, is_active, transaction_count, created_at, updated_at`

func scanAccount(row scanner) (*account.Account, error) {
	var (
		acc                    account.Account
		accountType            string
		initialCents, curCents int64
		isActive               int
		createdAt, updatedAt   string
	)
	if err := row.Scan(&acc.AccountID, &acc.OwnerID, &acc.Name, &accountType, &acc.Bank,
		&initialCents, &curCents, &isActive, &acc.TransactionCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	acc.AccountType = account.AccountType(accountType)
	acc.InitialBalance = money.FromCents(initialCents)
	acc.CurrentBalance = money.FromCents(curCents)
	acc.IsActive = isActive == 1
	acc.CreatedAt = parseTime(createdAt)
	acc.UpdatedAt = parseTime(updatedAt)
	return &acc, nil
}

// CreateAccount inserts a new account
func (s *Store) CreateAccount(ctx context.Context, acc *account.Account) (*account.Account, error) {
	_, err := s.conn.DB().ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		acc.AccountID, acc.OwnerID, acc.Name, string(acc.AccountType), acc.Bank,
		money.ToCents(acc.InitialBalance), money.ToCents(acc.CurrentBalance),
		boolToInt(acc.IsActive), formatTime(acc.CreatedAt), formatTime(acc.UpdatedAt))
	if err != nil {
		return nil, s.translateError("create account", err)
	}
	return acc, nil
}

// GetAccount retrieves an account owned by ownerID
func (s *Store) GetAccount(ctx context.Context, ownerID, accountID string) (*account.Account, error) {
	return s.getAccount(ctx, s.conn.DB(), ownerID, accountID)
}

func (s *Store) getAccount(ctx context.Context, q querier, ownerID, accountID string) (*account.Account, error) {
	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = ? AND owner_id = ?`,
		accountID, ownerID)
	acc, err := scanAccount(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("account not found")
	}
	if err != nil {
		return nil, s.translateError("get account", err)
	}
	return acc, nil
}

// GetAccounts retrieves the owner's accounts matching filter
func (s *Store) GetAccounts(ctx context.Context, ownerID string, filter *account.AccountFilter) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = ?`
	args := []any{ownerID}
	if filter == nil || !filter.IncludeInactive {
		query += ` AND is_active = 1`
	}
	if filter != nil && filter.AccountType != "" {
		query += ` AND account_type = ?`
		args = append(args, string(filter.AccountType))
	}
	query += ` ORDER BY name COLLATE NOCASE, account_id`

	rows, err := s.conn.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.translateError("list accounts", err)
	}
	defer rows.Close()

	accounts := []*account.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, s.translateError("scan account", err)
		}
		// Case-insensitive search is easier on decoded rows than with SQLite's ASCII-only LIKE
		if filter != nil && filter.SearchTerm != "" && !filter.Matches(acc) {
			continue
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, s.translateError("list accounts", err)
	}
	return accounts, nil
}

// UpdateAccount writes the descriptive fields and the active flag
func (s *Store) UpdateAccount(ctx context.Context, acc *account.Account) (*account.Account, error) {
	res, err := s.conn.DB().ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, account_type = ?, bank = ?, is_active = ?, updated_at = ?
		WHERE account_id = ? AND owner_id = ?`,
		strings.TrimSpace(acc.Name), string(acc.AccountType), acc.Bank, boolToInt(acc.IsActive), formatTime(acc.UpdatedAt),
		acc.AccountID, acc.OwnerID)
	if err != nil {
		return nil, s.translateError("update account", err)
	}
	if err := exactlyOne(res, "account not found"); err != nil {
		return nil, s.translateError("update account", err)
	}
	return s.GetAccount(ctx, acc.OwnerID, acc.AccountID)
}

// DeleteAccount removes an account. The foreign key on transactions rejects
// the delete while any transaction references it.
func (s *Store) DeleteAccount(ctx context.Context, ownerID, accountID string) error {
	res, err := s.conn.DB().ExecContext(ctx, `DELETE FROM accounts WHERE account_id = ? AND owner_id = ?`, accountID, ownerID)
	if err != nil {
		err = s.translateError("delete account", err)
		if errors.HasCode(err, errors.CodeReferenceProtected) {
			return errors.NewReferenceProtectedError("account has transactions and cannot be deleted")
		}
		return err
	}
	return exactlyOne(res, "account not found")
}
