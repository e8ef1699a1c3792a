// Package report builds read-only summaries over accounts and transactions.
package report

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hirosato/finance-ledger/backend/internal/domain/account"
	"github.com/hirosato/finance-ledger/backend/internal/domain/category"
	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
)

// RecentLimit is the number of latest transactions on the dashboard
const RecentLimit = 5

const monthLayout = "2006-01"

// AccountReader lists accounts
type AccountReader interface {
	GetAccounts(ctx context.Context, ownerID string, filter *account.AccountFilter) ([]*account.Account, error)
}

// CategoryReader lists categories
type CategoryReader interface {
	GetCategories(ctx context.Context, ownerID string, filter *category.CategoryFilter) ([]*category.Category, error)
}

// TransactionReader lists transactions
type TransactionReader interface {
	GetTransactions(ctx context.Context, ownerID string, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error)
}

// CategoryTotal is the spending or earning of one category in a month
type CategoryTotal struct {
	CategoryID   string          `json:"categoryId"`
	Name         string          `json:"name"`
	Color        string          `json:"color"`
	CategoryType entry.Type      `json:"categoryType"`
	Total        decimal.Decimal `json:"total"`
	Percent      decimal.Decimal `json:"percent"` // share of the type total, 0..100
}

// Dashboard summarises one month for an owner
type Dashboard struct {
	Month        string                     `json:"month"` // YYYY-MM
	Income       decimal.Decimal            `json:"income"`
	Expense      decimal.Decimal            `json:"expense"`
	Net          decimal.Decimal            `json:"net"`
	Categories   []*CategoryTotal           `json:"categories"`
	TotalBalance decimal.Decimal            `json:"totalBalance"`
	Accounts     []*account.Account         `json:"accounts"`
	Recent       []*transaction.Transaction `json:"recent"`
}

// Service builds dashboards
type Service struct {
	accounts     AccountReader
	categories   CategoryReader
	transactions TransactionReader
	now          func() time.Time
}

// NewService creates a new report service
func NewService(accounts AccountReader, categories CategoryReader, transactions TransactionReader) *Service {
	return &Service{
		accounts:     accounts,
		categories:   categories,
		transactions: transactions,
		now:          time.Now,
	}
}

// Dashboard builds the summary for month (YYYY-MM). An empty month means the current one.
func (s *Service) Dashboard(ctx context.Context, ownerID, month string) (*Dashboard, error) {
	if month == "" {
		month = s.now().Format(monthLayout)
	}
	start, err := time.Parse(monthLayout, month)
	if err != nil {
		return nil, errors.NewFieldValidationError("month", "month must use the format YYYY-MM")
	}
	end := start.AddDate(0, 1, -1)

	monthly, err := s.transactions.GetTransactions(ctx, ownerID, &transaction.TransactionFilter{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
	})
	if err != nil {
		return nil, err
	}

	summary := transaction.Summarize(monthly)
	dash := &Dashboard{
		Month:   month,
		Income:  summary.TotalIncome,
		Expense: summary.TotalExpense,
		Net:     summary.Balance,
	}

	categories, err := s.categories.GetCategories(ctx, ownerID, &category.CategoryFilter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	dash.Categories = breakdown(monthly, categories, summary)

	accounts, err := s.accounts.GetAccounts(ctx, ownerID, &account.AccountFilter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return strings.ToLower(accounts[i].Name) < strings.ToLower(accounts[j].Name)
	})
	dash.Accounts = accounts
	dash.TotalBalance = decimal.Zero
	for _, acc := range accounts {
		dash.TotalBalance = dash.TotalBalance.Add(acc.CurrentBalance)
	}

	recent, err := s.transactions.GetTransactions(ctx, ownerID, &transaction.TransactionFilter{Limit: RecentLimit})
	if err != nil {
		return nil, err
	}
	dash.Recent = recent

	return dash, nil
}

// breakdown totals txs per category, largest first
func breakdown(txs []*transaction.Transaction, categories []*category.Category, summary transaction.Summary) []*CategoryTotal {
	byID := make(map[string]*category.Category, len(categories))
	for _, c := range categories {
		byID[c.CategoryID] = c
	}

	totals := map[string]*CategoryTotal{}
	for _, tx := range txs {
		ct, ok := totals[tx.CategoryID]
		if !ok {
			ct = &CategoryTotal{CategoryID: tx.CategoryID, CategoryType: tx.TransactionType, Total: decimal.Zero}
			if c, found := byID[tx.CategoryID]; found {
				ct.Name = c.Name
				ct.Color = c.Color
			}
			totals[tx.CategoryID] = ct
		}
		ct.Total = ct.Total.Add(tx.Amount)
	}

	result := make([]*CategoryTotal, 0, len(totals))
	for _, ct := range totals {
		typeTotal := summary.TotalExpense
		if ct.CategoryType == entry.Income {
			typeTotal = summary.TotalIncome
		}
		ct.Percent = decimal.Zero
		if typeTotal.IsPositive() {
			ct.Percent = ct.Total.Div(typeTotal).Mul(decimal.NewFromInt(100)).Round(1)
		}
		result = append(result, ct)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Total.Equal(result[j].Total) {
			return result[i].Total.GreaterThan(result[j].Total)
		}
		return result[i].Name < result[j].Name
	})
	return result
}
