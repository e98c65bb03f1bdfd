package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTransfer is a budget reallocation between two envelopes. Moves to
// and from the unallocated pool are recorded against the Available to Budget
// system category, so both endpoints are always concrete category ids.
// Transfers are immutable ledger entries except for explicit edit or delete.
type CategoryTransfer struct {
	CreatedAt      time.Time
	Date           string // YYYY-MM-DD
	Memo           string
	Amount         decimal.Decimal
	ID             int64
	FromCategoryID int64
	ToCategoryID   int64
}

// CategoryTransferUpdate is a partial update; nil fields are left unchanged.
type CategoryTransferUpdate struct {
	Date           *string
	FromCategoryID *int64
	ToCategoryID   *int64
	Amount         *decimal.Decimal
	Memo           *string
}
