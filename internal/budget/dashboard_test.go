package budget

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneypot/moneypot/internal/common"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/testutil"
)

func TestDashboard(t *testing.T) {
	store := testutil.NewTestStorage(t)
	ctx := context.Background()
	engine := New(store)

	atb := testutil.SeedAvailableToBudget(t, store)
	checking := testutil.SeedAccount(t, store, "Checking")
	groceries := testutil.SeedCategory(t, store, "Groceries", amount("400"))

	card, err := store.CreateAccount(ctx, &model.Account{
		Name: "Card",
		Type: model.AccountTypeCreditCard,
	})
	require.NoError(t, err)

	testutil.SeedTransaction(t, store, checking.ID, nil, "2026-03-01", amount("2000"), model.StatusSettled)
	testutil.SeedTransaction(t, store, checking.ID, &groceries.ID, "2026-03-10", amount("-60"), model.StatusSettled)
	testutil.SeedTransaction(t, store, card.ID, &groceries.ID, "2026-03-12", amount("-40"), model.StatusPending)

	_, err = store.CreateTransfer(ctx, &model.CategoryTransfer{
		Date:           "2026-03-02",
		FromCategoryID: atb.ID,
		ToCategoryID:   groceries.ID,
		Amount:         amount("400"),
	})
	require.NoError(t, err)

	require.NoError(t, store.SetSetting(ctx, model.SettingMonthlyIncome, "4200"))

	dash, err := engine.Dashboard(ctx, "2026-03-15")
	require.NoError(t, err)

	assert.Equal(t, "2026-03", dash.CurrentMonth)
	assert.True(t, amount("4200").Equal(dash.MonthlyIncome))
	assert.True(t, amount("60").Equal(dash.MonthlySpent), "spent: %s", dash.MonthlySpent)
	assert.Equal(t, 1, dash.PendingCount)
	assert.Empty(t, dash.LastReconciled)

	require.Len(t, dash.Categories, 1)
	line := dash.Categories[0]
	assert.Equal(t, groceries.ID, line.CategoryID)
	assert.True(t, amount("400").Equal(line.Budgeted))
	assert.True(t, amount("-100").Equal(line.Activity), "activity: %s", line.Activity)
	assert.True(t, amount("300").Equal(line.Available), "available: %s", line.Available)

	require.Len(t, dash.Assets, 1)
	assert.Equal(t, checking.ID, dash.Assets[0].ID)
	require.Len(t, dash.Liabilities, 1)
	assert.Equal(t, card.ID, dash.Liabilities[0].ID)
}

func TestDashboardRejectsBadDate(t *testing.T) {
	store := testutil.NewTestStorage(t)
	engine := New(store)

	_, err := engine.Dashboard(context.Background(), "2026-3-5")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestDashboardIgnoresMalformedIncomeSetting(t *testing.T) {
	store := testutil.NewTestStorage(t)
	ctx := context.Background()
	engine := New(store)

	testutil.SeedAvailableToBudget(t, store)
	require.NoError(t, store.SetSetting(ctx, model.SettingMonthlyIncome, "lots"))

	dash, err := engine.Dashboard(ctx, "2026-03-15")
	require.NoError(t, err)
	assert.True(t, dash.MonthlyIncome.IsZero())
}

func TestCategoryDetail(t *testing.T) {
	store := testutil.NewTestStorage(t)
	ctx := context.Background()
	engine := New(store)

	atb := testutil.SeedAvailableToBudget(t, store)
	checking := testutil.SeedAccount(t, store, "Checking")
	groceries := testutil.SeedCategory(t, store, "Groceries", amount("400"))

	_, err := store.CreateTransfer(ctx, &model.CategoryTransfer{
		Date:           "2026-03-01",
		FromCategoryID: atb.ID,
		ToCategoryID:   groceries.ID,
		Amount:         amount("400"),
	})
	require.NoError(t, err)

	// Last month: one settled outflow. This month: two settled.
	testutil.SeedTransaction(t, store, checking.ID, &groceries.ID, "2026-02-14", amount("-90"), model.StatusSettled)
	testutil.SeedTransaction(t, store, checking.ID, &groceries.ID, "2026-03-05", amount("-60"), model.StatusSettled)
	testutil.SeedTransaction(t, store, checking.ID, &groceries.ID, "2026-03-12", amount("-40"), model.StatusSettled)

	// Materialize the chain, then let a pending charge show up.
	require.NoError(t, engine.EnsureMonth(ctx, mustMonth(t, "2026-03")))
	testutil.SeedTransaction(t, store, checking.ID, &groceries.ID, "2026-03-20", amount("-10"), model.StatusPending)

	detail, err := engine.CategoryDetail(ctx, groceries.ID, "2026-03-15")
	require.NoError(t, err)

	assert.Equal(t, "Groceries", detail.Name)
	assert.Equal(t, "2026-03", detail.Month)
	// February ended at -90, which carries forward.
	assert.True(t, amount("-90").Equal(detail.CarriedForward), "carried: %s", detail.CarriedForward)
	assert.True(t, amount("400").Equal(detail.Budgeted))
	assert.True(t, amount("-110").Equal(detail.Activity), "activity: %s", detail.Activity)
	assert.True(t, amount("200").Equal(detail.Available), "available: %s", detail.Available)
	assert.False(t, detail.IsOverBudget)

	// 200 remaining of a 310 net budget.
	assert.True(t, amount("64.5").Equal(detail.PercentRemaining), "percent: %s", detail.PercentRemaining)
	assert.True(t, amount("90").Equal(detail.SpentLastMonth), "last month: %s", detail.SpentLastMonth)
	assert.Equal(t, 2, detail.TransactionCount)
	assert.True(t, amount("50").Equal(detail.AvgPerTransaction), "avg: %s", detail.AvgPerTransaction)
}

func TestCategoryDetailUnknownCategory(t *testing.T) {
	store := testutil.NewTestStorage(t)
	engine := New(store)

	_, err := engine.CategoryDetail(context.Background(), 9999, "2026-03-15")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
