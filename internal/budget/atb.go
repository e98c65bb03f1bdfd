package budget

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/model"
)

// ATBSummary describes the pool of money not yet allocated to any envelope.
type ATBSummary struct {
	Balance        decimal.Decimal
	AccountBalance decimal.Decimal
	AllocatedOut   decimal.Decimal
	ReturnedIn     decimal.Decimal
}

// AvailableToBudget computes the unallocated pool: the settled balance of
// all in-moneypot accounts, minus everything ever allocated out of the pool,
// plus everything ever returned to it. Transfer sums are all-time, not
// month-scoped; allocation history never decays.
//
// When the Available to Budget system category is missing the pool
// degrades to the raw account balance with a warning; an uninitialized
// database is not an error.
func (e *Engine) AvailableToBudget(ctx context.Context) (*ATBSummary, error) {
	accountBalance, err := e.store.GetMoneypotBalance(ctx)
	if err != nil {
		return nil, err
	}

	atb, err := e.store.GetSystemCategory(ctx, model.AvailableToBudgetName)
	if err != nil {
		return nil, err
	}
	if atb == nil {
		slog.Warn("Available to Budget category not found; treating entire account balance as unallocated")
		return &ATBSummary{
			Balance:        accountBalance,
			AccountBalance: accountBalance,
			AllocatedOut:   decimal.Zero,
			ReturnedIn:     decimal.Zero,
		}, nil
	}

	allocatedOut, err := e.store.SumTransfersFromAllTime(ctx, atb.ID)
	if err != nil {
		return nil, err
	}
	returnedIn, err := e.store.SumTransfersToAllTime(ctx, atb.ID)
	if err != nil {
		return nil, err
	}

	return &ATBSummary{
		Balance:        accountBalance.Sub(allocatedOut).Add(returnedIn),
		AccountBalance: accountBalance,
		AllocatedOut:   allocatedOut,
		ReturnedIn:     returnedIn,
	}, nil
}

// atbCategory returns the Available to Budget system category, or nil when
// the database has not been initialized with one.
func (e *Engine) atbCategory(ctx context.Context) (*model.Category, error) {
	return e.store.GetSystemCategory(ctx, model.AvailableToBudgetName)
}
