// Package entry defines the income/expense direction shared by categories and transactions.
package entry

import "github.com/shopspring/decimal"

// Type is the direction of a money movement
type Type string

const (
	// Income adds to an account balance
	Income Type = "income"
	// Expense subtracts from an account balance
	Expense Type = "expense"
)

// Valid reports whether t is income or expense
func (t Type) Valid() bool {
	return t == Income || t == Expense
}

// Signed returns amount with the sign implied by t: positive for income,
// negative for expense. The boolean is false for an unknown type.
func (t Type) Signed(amount decimal.Decimal) (decimal.Decimal, bool) {
	switch t {
	case Income:
		return amount, true
	case Expense:
		return amount.Neg(), true
	}
	return decimal.Zero, false
}
