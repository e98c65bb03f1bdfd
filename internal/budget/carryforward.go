package budget

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/model"
)

// EnsureMonth guarantees a carried-forward snapshot exists for every active
// category for the given month, chaining each category's snapshot from the
// previous month's ending balance. Calling it again for the same month is a
// no-op: existing snapshots are never rewritten, so back-dated activity
// added later does not rewrite months that were already materialized.
func (e *Engine) EnsureMonth(ctx context.Context, month model.Month) error {
	categories, err := e.store.GetActiveCategories(ctx)
	if err != nil {
		return err
	}

	floor, err := e.chainFloor(ctx, month)
	if err != nil {
		return err
	}

	for _, cat := range categories {
		if _, err := e.ensureCategoryMonth(ctx, cat.ID, month, floor); err != nil {
			return err
		}
	}
	return nil
}

// chainFloor returns the earliest month the carry-forward walk needs to
// reach: the month of the oldest transaction, or the requested month itself
// when the ledger is empty or only has newer activity. Bounding the walk
// keeps a freshly imported database from iterating into the distant past.
func (e *Engine) chainFloor(ctx context.Context, month model.Month) (model.Month, error) {
	earliest, err := e.store.EarliestTransactionDate(ctx)
	if err != nil {
		return model.Month{}, err
	}
	if earliest == "" {
		return month, nil
	}
	earliestMonth, err := model.MonthOf(earliest)
	if err != nil {
		return model.Month{}, err
	}
	if month.Before(earliestMonth) {
		return month, nil
	}
	return earliestMonth, nil
}

// ensureCategoryMonth materializes the snapshot chain for one category up
// to the target month and returns the target's carried-forward balance.
//
// The walk is iterative: it backs up to the most recent existing snapshot
// (or to the floor month, which starts from zero), then replays forward,
// deriving each month's carried-forward from the previous month's ending
// balance and inserting it with an ignore-on-conflict write. If a
// concurrent caller materializes a month first, its stored value wins.
func (e *Engine) ensureCategoryMonth(ctx context.Context, categoryID int64, target, floor model.Month) (decimal.Decimal, error) {
	existing, err := e.store.GetMonthlyBalance(ctx, categoryID, target.String())
	if err != nil {
		return decimal.Zero, err
	}
	if existing != nil {
		return existing.CarriedForward, nil
	}

	// Walk backwards collecting unmaterialized months, newest first.
	missing := []model.Month{target}
	carried := decimal.Zero
	m := target
	for floor.Before(m) {
		m = m.Prev()
		row, rowErr := e.store.GetMonthlyBalance(ctx, categoryID, m.String())
		if rowErr != nil {
			return decimal.Zero, rowErr
		}
		if row != nil {
			// The chain resumes from this month's ending balance.
			bal, balErr := e.ComputeMonthBalance(ctx, categoryID, m, row.CarriedForward)
			if balErr != nil {
				return decimal.Zero, balErr
			}
			carried = bal.Available
			break
		}
		missing = append(missing, m)
	}

	// Replay forward, oldest month first.
	for i := len(missing) - 1; i >= 0; i-- {
		mm := missing[i]
		if err := e.store.EnsureMonthlyBalance(ctx, categoryID, mm.String(), carried); err != nil {
			return decimal.Zero, err
		}
		row, rowErr := e.store.GetMonthlyBalance(ctx, categoryID, mm.String())
		if rowErr != nil {
			return decimal.Zero, rowErr
		}
		carried = row.CarriedForward
		if i > 0 {
			bal, balErr := e.ComputeMonthBalance(ctx, categoryID, mm, carried)
			if balErr != nil {
				return decimal.Zero, balErr
			}
			carried = bal.Available
		}
	}

	// carried now holds the target month's carried-forward balance.
	return carried, nil
}
