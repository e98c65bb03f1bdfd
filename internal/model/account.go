package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account for grouping and reporting.
type AccountType string

// Supported account types.
const (
	AccountTypeBank       AccountType = "bank"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeCash       AccountType = "cash"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeRetirement AccountType = "retirement"
	AccountTypeLoan       AccountType = "loan"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeBank, AccountTypeCreditCard, AccountTypeCash,
		AccountTypeInvestment, AccountTypeRetirement, AccountTypeLoan:
		return true
	}
	return false
}

// IsLiability reports whether balances of this type count against net worth.
func (t AccountType) IsLiability() bool {
	return t == AccountTypeCreditCard || t == AccountTypeLoan
}

// Account is a money-holding entity. Its balance is never stored; it is
// always the sum of settled transactions referencing the account.
type Account struct {
	CreatedAt  time.Time
	Name       string
	Type       AccountType
	ID         int64
	SortOrder  int
	InMoneypot bool
	Hidden     bool
}

// AccountBalance pairs an account with its computed settled balance.
type AccountBalance struct {
	Account
	Balance decimal.Decimal
}

// AccountUpdate is a partial update; nil fields are left unchanged.
type AccountUpdate struct {
	Name       *string
	Type       *AccountType
	InMoneypot *bool
	Hidden     *bool
	SortOrder  *int
}
