package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryMonthlyBalance records the balance a category carried into a
// calendar month. Exactly one row exists per (category, month) once the
// month has been materialized, and the row is never rewritten: month M's
// carried-forward is month M-1's ending balance at the time M was first
// queried. Back-dated activity added later does not rewrite history.
type CategoryMonthlyBalance struct {
	CreatedAt      time.Time
	Month          string // YYYY-MM
	CarriedForward decimal.Decimal
	ID             int64
	CategoryID     int64
}
