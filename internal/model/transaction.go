package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus distinguishes cleared postings from anticipated ones.
type TransactionStatus string

const (
	// StatusSettled marks a transaction that has cleared the account.
	StatusSettled TransactionStatus = "settled"
	// StatusPending marks an anticipated transaction. Pending transactions
	// contribute to current-month activity regardless of their date.
	StatusPending TransactionStatus = "pending"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	return s == StatusSettled || s == StatusPending
}

// TransactionType distinguishes ordinary postings from transfer legs.
type TransactionType string

const (
	// TypeRegular is an ordinary inflow or outflow.
	TypeRegular TransactionType = "regular"
	// TypeTransfer is one leg of an inter-account transfer pair. A pair is
	// always exactly two rows with opposite amounts and mutual pair
	// references; deleting one deletes both.
	TypeTransfer TransactionType = "transfer"
)

// Transaction is a single posting against one account and optionally one
// category. Positive amounts are inflows, negative amounts are outflows.
type Transaction struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Date        string // YYYY-MM-DD
	Description string
	Status      TransactionStatus
	Type        TransactionType
	Amount      decimal.Decimal
	CategoryID  *int64
	PairID      *int64
	ID          int64
	AccountID   int64
	Reconciled  bool
}

// TransactionUpdate is a partial update; nil fields are left unchanged.
// A non-nil ClearCategory removes the category link.
type TransactionUpdate struct {
	Date          *string
	Description   *string
	Amount        *decimal.Decimal
	Status        *TransactionStatus
	CategoryID    *int64
	ClearCategory bool
	Reconciled    *bool
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	AccountID  *int64
	CategoryID *int64
	Status     *TransactionStatus
	StartDate  string
	EndDate    string
	Limit      int
	Offset     int
}
