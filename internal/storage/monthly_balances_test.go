package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureMonthlyBalanceIdempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	cat := seedTestCategory(t, store, "Groceries")

	require.NoError(t, store.EnsureMonthlyBalance(ctx, cat.ID, "2026-03", decimal.NewFromInt(130)))

	first, err := store.GetMonthlyBalance(ctx, cat.ID, "2026-03")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, decimal.NewFromInt(130).Equal(first.CarriedForward))

	// A second ensure with a different value must not rewrite the snapshot.
	require.NoError(t, store.EnsureMonthlyBalance(ctx, cat.ID, "2026-03", decimal.NewFromInt(999)))

	second, err := store.GetMonthlyBalance(ctx, cat.ID, "2026-03")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CarriedForward.Equal(second.CarriedForward))
}

func TestGetMonthlyBalanceAbsent(t *testing.T) {
	store := createTestStorage(t)

	mb, err := store.GetMonthlyBalance(context.Background(), 42, "2026-03")
	require.NoError(t, err)
	assert.Nil(t, mb, "unmaterialized month reads as nil, not an error")
}

func TestMonthlyBalancePerCategoryAndMonth(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	a := seedTestCategory(t, store, "A")
	b := seedTestCategory(t, store, "B")

	require.NoError(t, store.EnsureMonthlyBalance(ctx, a.ID, "2026-03", decimal.NewFromInt(10)))
	require.NoError(t, store.EnsureMonthlyBalance(ctx, a.ID, "2026-04", decimal.NewFromInt(20)))
	require.NoError(t, store.EnsureMonthlyBalance(ctx, b.ID, "2026-03", decimal.NewFromInt(30)))

	mb, err := store.GetMonthlyBalance(ctx, a.ID, "2026-04")
	require.NoError(t, err)
	require.NotNil(t, mb)
	assert.True(t, decimal.NewFromInt(20).Equal(mb.CarriedForward))

	mb, err = store.GetMonthlyBalance(ctx, b.ID, "2026-03")
	require.NoError(t, err)
	require.NotNil(t, mb)
	assert.True(t, decimal.NewFromInt(30).Equal(mb.CarriedForward))
}
