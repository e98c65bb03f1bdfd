package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AvailableToBudgetName is the well-known name of the singleton system
// category that anchors the unallocated money pool. It is located by name
// rather than by a fixed identifier; renaming it would orphan the pool.
const AvailableToBudgetName = "Available to Budget"

// Category is a budget envelope. Money is assigned to it through category
// transfers and spent from it through transactions.
type Category struct {
	CreatedAt     time.Time
	Name          string
	MonthlyAmount decimal.Decimal
	ID            int64
	SortOrder     int
	IsSystem      bool
	Hidden        bool
}

// CategoryRename records a prior name of a category.
type CategoryRename struct {
	RenamedAt  time.Time
	OldName    string
	ID         int64
	CategoryID int64
}

// CategoryUpdate is a partial update; nil fields are left unchanged.
type CategoryUpdate struct {
	Name          *string
	MonthlyAmount *decimal.Decimal
	Hidden        *bool
	SortOrder     *int
}
