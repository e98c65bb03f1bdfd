package budget

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/common"
	"github.com/moneypot/moneypot/internal/model"
)

// AutoPopulateItem reports the outcome for one category of an auto-populate run.
type AutoPopulateItem struct {
	CategoryName string
	Error        string
	Balance      decimal.Decimal
	Target       decimal.Decimal
	Amount       decimal.Decimal
	CategoryID   int64
}

// AutoPopulateResult itemizes an auto-populate run. Each category is
// processed independently; a failure on one never rolls back the others.
type AutoPopulateResult struct {
	Created          []AutoPopulateItem
	Skipped          []AutoPopulateItem
	Failed           []AutoPopulateItem
	TotalTransferred decimal.Decimal
}

// AutoPopulate tops up every active category with a positive monthly target
// whose all-time balance is below that target, creating one transfer from
// the Available to Budget pool per shortfall, dated as given. Categories at
// or above target are skipped and reported as such.
func (e *Engine) AutoPopulate(ctx context.Context, date string) (*AutoPopulateResult, error) {
	if !model.ValidDate(date) {
		return nil, common.Validationf("date %q is not a valid YYYY-MM-DD date", date)
	}

	atb, err := e.atbCategory(ctx)
	if err != nil {
		return nil, err
	}
	if atb == nil {
		return nil, common.NotFoundf("Available to Budget category")
	}

	categories, err := e.store.GetActiveCategories(ctx)
	if err != nil {
		return nil, err
	}

	result := &AutoPopulateResult{TotalTransferred: decimal.Zero}
	for _, cat := range categories {
		if !cat.MonthlyAmount.IsPositive() {
			continue
		}

		item := AutoPopulateItem{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Target:       cat.MonthlyAmount,
		}

		balance, balErr := e.allTimeBalance(ctx, cat.ID)
		if balErr != nil {
			item.Error = balErr.Error()
			result.Failed = append(result.Failed, item)
			continue
		}
		item.Balance = balance

		if balance.GreaterThanOrEqual(cat.MonthlyAmount) {
			result.Skipped = append(result.Skipped, item)
			continue
		}

		shortfall := cat.MonthlyAmount.Sub(balance)
		_, trErr := e.store.CreateTransfer(ctx, &model.CategoryTransfer{
			Date:           date,
			FromCategoryID: atb.ID,
			ToCategoryID:   cat.ID,
			Amount:         shortfall,
			Memo:           "Auto-populated to monthly target",
		})
		if trErr != nil {
			item.Error = trErr.Error()
			result.Failed = append(result.Failed, item)
			continue
		}

		item.Amount = shortfall
		result.Created = append(result.Created, item)
		result.TotalTransferred = result.TotalTransferred.Add(shortfall)
	}

	slog.Info("auto-populated category transfers",
		"created", len(result.Created),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
		"total", result.TotalTransferred)
	return result, nil
}

// allTimeBalance is a category's lifetime balance: everything transferred
// in, less everything transferred out, plus all settled activity.
func (e *Engine) allTimeBalance(ctx context.Context, categoryID int64) (decimal.Decimal, error) {
	in, err := e.store.SumTransfersToAllTime(ctx, categoryID)
	if err != nil {
		return decimal.Zero, err
	}
	out, err := e.store.SumTransfersFromAllTime(ctx, categoryID)
	if err != nil {
		return decimal.Zero, err
	}
	settled, err := e.store.SumSettledByCategoryAllTime(ctx, categoryID)
	if err != nil {
		return decimal.Zero, err
	}
	return in.Sub(out).Add(settled), nil
}
