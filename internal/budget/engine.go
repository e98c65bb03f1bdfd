// Package budget implements the envelope budgeting core: monthly category
// balance computation, month-to-month carry-forward, the Available to
// Budget pool, and the validated category transfer ledger.
package budget

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/service"
)

// Engine derives budget figures from the ledger store. It is stateless:
// every computation reads fresh aggregates from the store, and the only
// writes it ever performs are idempotent monthly snapshot inserts.
type Engine struct {
	store service.Storage
}

// New creates a budget engine backed by the given store.
func New(store service.Storage) *Engine {
	return &Engine{store: store}
}

// MonthBalance holds a category's derived figures for one calendar month.
type MonthBalance struct {
	Month           model.Month
	CarriedForward  decimal.Decimal
	Budgeted        decimal.Decimal
	TransfersOut    decimal.Decimal
	Activity        decimal.Decimal
	PendingActivity decimal.Decimal
	Available       decimal.Decimal
	CategoryID      int64
	IsOverBudget    bool
}

// ComputeMonthBalance derives a category's figures for a month given its
// carried-forward balance. Settled activity is scoped to the month's date
// range; pending activity is included regardless of date, since a pending
// transaction has no settled date yet. The computation has no side effects.
func (e *Engine) ComputeMonthBalance(ctx context.Context, categoryID int64, month model.Month, carried decimal.Decimal) (*MonthBalance, error) {
	first, last := month.FirstDay(), month.LastDay()

	transfersIn, err := e.store.SumTransfersTo(ctx, categoryID, first, last)
	if err != nil {
		return nil, err
	}
	transfersOut, err := e.store.SumTransfersFrom(ctx, categoryID, first, last)
	if err != nil {
		return nil, err
	}
	settled, err := e.store.SumSettledByCategory(ctx, categoryID, first, last)
	if err != nil {
		return nil, err
	}
	pending, err := e.store.SumPendingByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	activity := settled.Add(pending)
	available := carried.Add(transfersIn).Sub(transfersOut).Add(activity)

	return &MonthBalance{
		CategoryID:      categoryID,
		Month:           month,
		CarriedForward:  carried,
		Budgeted:        transfersIn,
		TransfersOut:    transfersOut,
		Activity:        activity,
		PendingActivity: pending,
		Available:       available,
		IsOverBudget:    available.IsNegative(),
	}, nil
}

// CategoryMonth returns a category's balance for a month, materializing the
// carry-forward chain first. It fails with common.ErrNotFound when the
// category does not exist.
func (e *Engine) CategoryMonth(ctx context.Context, categoryID int64, month model.Month) (*MonthBalance, error) {
	if _, err := e.store.GetCategoryByID(ctx, categoryID); err != nil {
		return nil, err
	}

	floor, err := e.chainFloor(ctx, month)
	if err != nil {
		return nil, err
	}
	carried, err := e.ensureCategoryMonth(ctx, categoryID, month, floor)
	if err != nil {
		return nil, err
	}

	return e.ComputeMonthBalance(ctx, categoryID, month, carried)
}
