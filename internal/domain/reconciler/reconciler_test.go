package reconciler

import (
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/finance-ledger/backend/internal/domain/entry"
	"github.com/hirosato/finance-ledger/backend/internal/domain/errors"
	"github.com/hirosato/finance-ledger/backend/internal/domain/transaction"
)

func newTx(accountID, categoryID string, t entry.Type, amount string) *transaction.Transaction {
	return &transaction.Transaction{
		TransactionID:   "tx-1",
		OwnerID:         "user-1",
		AccountID:       accountID,
		CategoryID:      categoryID,
		TransactionType: t,
		Amount:          decimal.RequireFromString(amount),
		Date:            "2024-05-10",
		Version:         1,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDelta(t *testing.T, plan *Plan, accountID, want string) {
	t.Helper()
	got, ok := plan.Adjustment(accountID)
	require.True(t, ok, "no adjustment for %s", accountID)
	assert.True(t, dec(want).Equal(got), "account %s: want %s, got %s", accountID, want, got)
}

func TestEffect(t *testing.T) {
	tests := []struct {
		name    string
		tx      *transaction.Transaction
		want    string
		wantErr bool
	}{
		{name: "income adds", tx: newTx("a", "c", entry.Income, "500.00"), want: "500.00"},
		{name: "expense subtracts", tx: newTx("a", "c", entry.Expense, "200.00"), want: "-200.00"},
		{name: "zero amount", tx: newTx("a", "c", entry.Income, "0"), wantErr: true},
		{name: "negative amount", tx: newTx("a", "c", entry.Expense, "-1.00"), wantErr: true},
		{name: "unknown type", tx: newTx("a", "c", entry.Type("transfer"), "10.00"), wantErr: true},
		{name: "missing account", tx: newTx("", "c", entry.Income, "10.00"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj, err := Effect(tt.tx)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tx.AccountID, adj.AccountID)
			assert.True(t, dec(tt.want).Equal(adj.Delta), "got %s", adj.Delta)
		})
	}
}

func TestReconcileOnCreate(t *testing.T) {
	r := New(slog.Default())

	t.Run("income", func(t *testing.T) {
		plan, err := r.ReconcileOnCreate(newTx("acc-a", "cat-1", entry.Income, "500.00"))
		require.NoError(t, err)
		require.Len(t, plan.Adjustments, 1)
		assertDelta(t, plan, "acc-a", "500.00")
		assert.Equal(t, int64(1), plan.AccountRef("acc-a"))
		assert.Equal(t, int64(1), plan.CategoryRef("cat-1"))
	})

	t.Run("expense", func(t *testing.T) {
		plan, err := r.ReconcileOnCreate(newTx("acc-a", "cat-1", entry.Expense, "200.00"))
		require.NoError(t, err)
		assertDelta(t, plan, "acc-a", "-200.00")
	})

	t.Run("rejects invalid transaction", func(t *testing.T) {
		_, err := r.ReconcileOnCreate(newTx("acc-a", "cat-1", entry.Expense, "0"))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeValidation))
	})
}

func TestReconcileOnUpdate(t *testing.T) {
	r := New(slog.Default())

	t.Run("same account amount change nets into one adjustment", func(t *testing.T) {
		previous := newTx("acc-a", "cat-1", entry.Expense, "200.00")
		updated := newTx("acc-a", "cat-1", entry.Expense, "350.00")

		plan, err := r.ReconcileOnUpdate(previous, updated)
		require.NoError(t, err)
		require.Len(t, plan.Adjustments, 1)
		assertDelta(t, plan, "acc-a", "-150.00")
		assert.Empty(t, plan.AccountRefs)
		assert.Empty(t, plan.CategoryRefs)
	})

	t.Run("type change from expense to income", func(t *testing.T) {
		previous := newTx("acc-a", "cat-exp", entry.Expense, "100.00")
		updated := newTx("acc-a", "cat-inc", entry.Income, "100.00")

		plan, err := r.ReconcileOnUpdate(previous, updated)
		require.NoError(t, err)
		assertDelta(t, plan, "acc-a", "200.00")
		assert.Equal(t, int64(-1), plan.CategoryRef("cat-exp"))
		assert.Equal(t, int64(1), plan.CategoryRef("cat-inc"))
	})

	t.Run("move between accounts reverses old first", func(t *testing.T) {
		previous := newTx("acc-a", "cat-1", entry.Expense, "250.50")
		updated := newTx("acc-b", "cat-1", entry.Expense, "250.50")

		plan, err := r.ReconcileOnUpdate(previous, updated)
		require.NoError(t, err)
		require.Len(t, plan.Adjustments, 2)
		assert.Equal(t, "acc-a", plan.Adjustments[0].AccountID)
		assertDelta(t, plan, "acc-a", "250.50")
		assertDelta(t, plan, "acc-b", "-250.50")
		assert.Equal(t, int64(-1), plan.AccountRef("acc-a"))
		assert.Equal(t, int64(1), plan.AccountRef("acc-b"))
		assert.Equal(t, []string{"acc-a", "acc-b"}, plan.AccountIDs())
	})

	t.Run("description-only change is empty", func(t *testing.T) {
		previous := newTx("acc-a", "cat-1", entry.Income, "80.00")
		updated := previous.Clone()
		updated.Description = "renamed"

		plan, err := r.ReconcileOnUpdate(previous, updated)
		require.NoError(t, err)
		assert.True(t, plan.IsEmpty())
	})

	t.Run("invalid previous snapshot fails", func(t *testing.T) {
		previous := newTx("acc-a", "cat-1", entry.Type("bogus"), "80.00")
		updated := newTx("acc-a", "cat-1", entry.Income, "80.00")

		_, err := r.ReconcileOnUpdate(previous, updated)
		assert.Error(t, err)
	})
}

func TestReconcileOnDelete(t *testing.T) {
	r := New(slog.Default())

	tests := []struct {
		name string
		tx   *transaction.Transaction
		want string
	}{
		{name: "income", tx: newTx("acc-a", "cat-1", entry.Income, "500.00"), want: "-500.00"},
		{name: "expense", tx: newTx("acc-a", "cat-1", entry.Expense, "200.00"), want: "200.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := r.ReconcileOnDelete(tt.tx)
			require.NoError(t, err)
			assertDelta(t, plan, "acc-a", tt.want)
			assert.Equal(t, int64(-1), plan.AccountRef("acc-a"))
			assert.Equal(t, int64(-1), plan.CategoryRef("cat-1"))
		})
	}
}

func TestCreateUpdateDeleteRoundTripNetsToZero(t *testing.T) {
	r := New(slog.Default())
	balances := map[string]decimal.Decimal{}
	apply := func(p *Plan) {
		for _, a := range p.Adjustments {
			balances[a.AccountID] = balances[a.AccountID].Add(a.Delta)
		}
	}

	created := newTx("acc-a", "cat-1", entry.Expense, "42.10")
	plan, err := r.ReconcileOnCreate(created)
	require.NoError(t, err)
	apply(plan)

	moved := created.Clone()
	moved.AccountID = "acc-b"
	moved.TransactionType = entry.Income
	moved.Amount = dec("10.00")
	plan, err = r.ReconcileOnUpdate(created, moved)
	require.NoError(t, err)
	apply(plan)

	plan, err = r.ReconcileOnDelete(moved)
	require.NoError(t, err)
	apply(plan)

	assert.True(t, balances["acc-a"].IsZero(), "acc-a: %s", balances["acc-a"])
	assert.True(t, balances["acc-b"].IsZero(), "acc-b: %s", balances["acc-b"])
}
