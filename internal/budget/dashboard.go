package budget

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/common"
	"github.com/moneypot/moneypot/internal/model"
)

// CategorySummary is one envelope's line on the dashboard.
type CategorySummary struct {
	Name            string
	MonthlyAmount   decimal.Decimal
	CarriedForward  decimal.Decimal
	Budgeted        decimal.Decimal
	Activity        decimal.Decimal
	PendingActivity decimal.Decimal
	Available       decimal.Decimal
	CategoryID      int64
	IsOverBudget    bool
}

// Dashboard aggregates everything the main view needs for one day.
type Dashboard struct {
	CurrentMonth   string
	LastReconciled string
	Categories     []CategorySummary
	Assets         []model.AccountBalance
	Liabilities    []model.AccountBalance
	MonthlyIncome  decimal.Decimal
	MonthlySpent   decimal.Decimal
	PendingCount   int
}

// Dashboard computes the dashboard for the month containing today,
// materializing that month's carry-forward snapshots first.
func (e *Engine) Dashboard(ctx context.Context, today string) (*Dashboard, error) {
	month, err := model.MonthOf(today)
	if err != nil {
		return nil, common.Validationf("today %q is not a valid YYYY-MM-DD date", today)
	}

	if err := e.EnsureMonth(ctx, month); err != nil {
		return nil, err
	}

	categories, err := e.store.GetActiveCategories(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]CategorySummary, 0, len(categories))
	for _, cat := range categories {
		snapshot, mbErr := e.store.GetMonthlyBalance(ctx, cat.ID, month.String())
		if mbErr != nil {
			return nil, mbErr
		}
		carried := decimal.Zero
		if snapshot != nil {
			carried = snapshot.CarriedForward
		}

		bal, balErr := e.ComputeMonthBalance(ctx, cat.ID, month, carried)
		if balErr != nil {
			return nil, balErr
		}
		summaries = append(summaries, CategorySummary{
			CategoryID:      cat.ID,
			Name:            cat.Name,
			MonthlyAmount:   cat.MonthlyAmount,
			CarriedForward:  bal.CarriedForward,
			Budgeted:        bal.Budgeted,
			Activity:        bal.Activity,
			PendingActivity: bal.PendingActivity,
			Available:       bal.Available,
			IsOverBudget:    bal.IsOverBudget,
		})
	}

	monthlyIncome := decimal.Zero
	if raw, settingErr := e.store.GetSetting(ctx, model.SettingMonthlyIncome); settingErr != nil {
		return nil, settingErr
	} else if raw != "" {
		monthlyIncome, err = decimal.NewFromString(raw)
		if err != nil {
			slog.Warn("ignoring malformed monthly income setting", "value", raw)
			monthlyIncome = decimal.Zero
		}
	}

	monthlySpent, err := e.store.SumSettledOutflows(ctx, month.FirstDay(), month.LastDay())
	if err != nil {
		return nil, err
	}
	pendingCount, err := e.store.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	lastReconciled, err := e.store.LastReconciledDate(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := e.store.GetAccountBalances(ctx, false)
	if err != nil {
		return nil, err
	}
	var assets, liabilities []model.AccountBalance
	for _, ab := range accounts {
		if ab.Type.IsLiability() {
			liabilities = append(liabilities, ab)
		} else {
			assets = append(assets, ab)
		}
	}

	return &Dashboard{
		CurrentMonth:   month.String(),
		MonthlyIncome:  monthlyIncome,
		MonthlySpent:   monthlySpent,
		PendingCount:   pendingCount,
		Categories:     summaries,
		Assets:         assets,
		Liabilities:    liabilities,
		LastReconciled: lastReconciled,
	}, nil
}

// CategoryDetail expands one envelope's current-month figures with spending
// statistics.
type CategoryDetail struct {
	Name              string
	Month             string
	CarriedForward    decimal.Decimal
	Budgeted          decimal.Decimal
	TransfersOut      decimal.Decimal
	Activity          decimal.Decimal
	PendingActivity   decimal.Decimal
	Available         decimal.Decimal
	PercentRemaining  decimal.Decimal
	SpentLastMonth    decimal.Decimal
	AvgPerTransaction decimal.Decimal
	CategoryID        int64
	TransactionCount  int
	IsOverBudget      bool
}

// CategoryDetail computes the detail view for one category for the month
// containing today. It fails with common.ErrNotFound for unknown ids.
func (e *Engine) CategoryDetail(ctx context.Context, categoryID int64, today string) (*CategoryDetail, error) {
	cat, err := e.store.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	month, err := model.MonthOf(today)
	if err != nil {
		return nil, common.Validationf("today %q is not a valid YYYY-MM-DD date", today)
	}

	bal, err := e.CategoryMonth(ctx, categoryID, month)
	if err != nil {
		return nil, err
	}

	// The percentage denominator is what the month had to work with:
	// carried-forward plus allocations, less money moved away. When that is
	// not positive there is nothing meaningful to divide by, so the figure
	// clamps to 100 or 0 depending on whether the envelope is still whole.
	netBudget := bal.CarriedForward.Add(bal.Budgeted).Sub(bal.TransfersOut)
	var percentRemaining decimal.Decimal
	switch {
	case netBudget.IsPositive():
		percentRemaining = bal.Available.Div(netBudget).Mul(decimal.NewFromInt(100)).Round(1)
	case bal.Available.IsNegative():
		percentRemaining = decimal.Zero
	default:
		percentRemaining = decimal.NewFromInt(100)
	}

	prev := month.Prev()
	lastMonthSettled, err := e.store.SumSettledByCategory(ctx, categoryID, prev.FirstDay(), prev.LastDay())
	if err != nil {
		return nil, err
	}

	count, err := e.store.CountSettledByCategory(ctx, categoryID, month.FirstDay(), month.LastDay())
	if err != nil {
		return nil, err
	}
	avg := decimal.Zero
	if count > 0 {
		settledThisMonth := bal.Activity.Sub(bal.PendingActivity)
		avg = settledThisMonth.Abs().Div(decimal.NewFromInt(int64(count)))
	}

	return &CategoryDetail{
		CategoryID:        categoryID,
		Name:              cat.Name,
		Month:             month.String(),
		CarriedForward:    bal.CarriedForward,
		Budgeted:          bal.Budgeted,
		TransfersOut:      bal.TransfersOut,
		Activity:          bal.Activity,
		PendingActivity:   bal.PendingActivity,
		Available:         bal.Available,
		IsOverBudget:      bal.IsOverBudget,
		PercentRemaining:  percentRemaining,
		SpentLastMonth:    lastMonthSettled.Neg(),
		TransactionCount:  count,
		AvgPerTransaction: avg,
	}, nil
}
