package model

import "time"

// AccountType classifies an account's role in transfers and reporting.
// Asset and liability accounts hold real balances and feed net worth;
// income and expense accounts are flow endpoints whose balances are
// running totals of money that entered or left the ledger.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// AccountStatus is the lifecycle state of an account. Archived accounts
// keep their history but drop out of net worth and default listings.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusArchived AccountStatus = "archived"
)

// IsValid reports whether s is a known account status.
func (s AccountStatus) IsValid() bool {
	return s == AccountStatusActive || s == AccountStatusArchived
}

// Account is a named bucket of money. Balance is held in minor currency
// units and is maintained incrementally by the ledger as transfers are
// recorded and deleted; it is never recomputed from history.
type Account struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Type            AccountType   `json:"type"`
	ParentAccountID string        `json:"parentAccountId,omitempty"`
	Balance         int64         `json:"balance"`
	Status          AccountStatus `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}
