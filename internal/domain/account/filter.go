package account

import "strings"

// AccountFilter represents the filtering criteria for accounts
type AccountFilter struct {
	AccountType     AccountType
	SearchTerm      string
	IncludeInactive bool
}

// Matches reports whether acc passes the filter
func (f *AccountFilter) Matches(acc *Account) bool {
	if f == nil {
		return acc.IsActive
	}
	if !f.IncludeInactive && !acc.IsActive {
		return false
	}
	if f.AccountType != "" && acc.AccountType != f.AccountType {
		return false
	}
	if f.SearchTerm != "" && !strings.Contains(strings.ToLower(acc.Name), strings.ToLower(f.SearchTerm)) {
		return false
	}
	return true
}
