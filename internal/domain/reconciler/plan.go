package reconciler

import (
	"github.com/shopspring/decimal"
)

// Adjustment adds Delta to the current balance of one account
type Adjustment struct {
	AccountID string          `json:"accountId"`
	Delta     decimal.Decimal `json:"delta"`
}

// RefChange adds Delta to the transaction counter of one account or category
type RefChange struct {
	ID    string `json:"id"`
	Delta int64  `json:"delta"`
}

// Plan is everything a store applies, in one atomic unit, together with a
// transaction write. Entries are netted per target so a store never touches
// the same account or category twice.
type Plan struct {
	Adjustments  []Adjustment `json:"adjustments"`
	AccountRefs  []RefChange  `json:"accountRefs"`
	CategoryRefs []RefChange  `json:"categoryRefs"`
}

// IsEmpty reports whether applying the plan changes nothing
func (p *Plan) IsEmpty() bool {
	return len(p.Adjustments) == 0 && len(p.AccountRefs) == 0 && len(p.CategoryRefs) == 0
}

// AccountIDs lists every account the plan touches, in plan order
func (p *Plan) AccountIDs() []string {
	ids := make([]string, 0, len(p.Adjustments)+len(p.AccountRefs))
	seen := make(map[string]bool)
	for _, a := range p.Adjustments {
		if !seen[a.AccountID] {
			seen[a.AccountID] = true
			ids = append(ids, a.AccountID)
		}
	}
	for _, r := range p.AccountRefs {
		if !seen[r.ID] {
			seen[r.ID] = true
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Adjustment returns the netted delta for accountID and whether the plan has one
func (p *Plan) Adjustment(accountID string) (decimal.Decimal, bool) {
	for _, a := range p.Adjustments {
		if a.AccountID == accountID {
			return a.Delta, true
		}
	}
	return decimal.Zero, false
}

// AccountRef returns the counter change for accountID, zero when absent
func (p *Plan) AccountRef(accountID string) int64 {
	return refDelta(p.AccountRefs, accountID)
}

// CategoryRef returns the counter change for categoryID, zero when absent
func (p *Plan) CategoryRef(categoryID string) int64 {
	return refDelta(p.CategoryRefs, categoryID)
}

func refDelta(refs []RefChange, id string) int64 {
	for _, r := range refs {
		if r.ID == id {
			return r.Delta
		}
	}
	return 0
}

// planBuilder nets steps per target, keeping the order in which targets first appear
type planBuilder struct {
	adjustments  []Adjustment
	accountRefs  []RefChange
	categoryRefs []RefChange
}

func (b *planBuilder) adjust(accountID string, delta decimal.Decimal) {
	for i := range b.adjustments {
		if b.adjustments[i].AccountID == accountID {
			b.adjustments[i].Delta = b.adjustments[i].Delta.Add(delta)
			return
		}
	}
	b.adjustments = append(b.adjustments, Adjustment{AccountID: accountID, Delta: delta})
}

func (b *planBuilder) accountRef(accountID string, delta int64) {
	b.accountRefs = addRef(b.accountRefs, accountID, delta)
}

func (b *planBuilder) categoryRef(categoryID string, delta int64) {
	b.categoryRefs = addRef(b.categoryRefs, categoryID, delta)
}

func addRef(refs []RefChange, id string, delta int64) []RefChange {
	for i := range refs {
		if refs[i].ID == id {
			refs[i].Delta += delta
			return refs
		}
	}
	return append(refs, RefChange{ID: id, Delta: delta})
}

// build drops entries that netted to zero
func (b *planBuilder) build() *Plan {
	plan := &Plan{
		Adjustments:  []Adjustment{},
		AccountRefs:  []RefChange{},
		CategoryRefs: []RefChange{},
	}
	for _, a := range b.adjustments {
		if !a.Delta.IsZero() {
			plan.Adjustments = append(plan.Adjustments, a)
		}
	}
	for _, r := range b.accountRefs {
		if r.Delta != 0 {
			plan.AccountRefs = append(plan.AccountRefs, r)
		}
	}
	for _, r := range b.categoryRefs {
		if r.Delta != 0 {
			plan.CategoryRefs = append(plan.CategoryRefs, r)
		}
	}
	return plan
}
