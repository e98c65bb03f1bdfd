package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneypot/moneypot/internal/common"
	"github.com/moneypot/moneypot/internal/model"
)

func seedTestAccount(t *testing.T, store *SQLiteStorage, name string) *model.Account {
	t.Helper()
	account, err := store.CreateAccount(context.Background(), &model.Account{
		Name:       name,
		Type:       model.AccountTypeBank,
		InMoneypot: true,
	})
	require.NoError(t, err)
	return account
}

func seedTestTransaction(t *testing.T, store *SQLiteStorage, accountID int64, categoryID *int64, date, amount string, status model.TransactionStatus) *model.Transaction {
	t.Helper()
	txn, err := store.CreateTransaction(context.Background(), &model.Transaction{
		AccountID:  accountID,
		CategoryID: categoryID,
		Date:       date,
		Amount:     decimal.RequireFromString(amount),
		Status:     status,
		Type:       model.TypeRegular,
	})
	require.NoError(t, err)
	return txn
}

func TestCreateTransactionValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	account := seedTestAccount(t, store, "Checking")

	tests := []struct {
		name string
		txn  model.Transaction
	}{
		{
			name: "missing account",
			txn:  model.Transaction{Date: "2026-03-01", Status: model.StatusSettled, Type: model.TypeRegular},
		},
		{
			name: "malformed date",
			txn:  model.Transaction{AccountID: account.ID, Date: "03/01/2026", Status: model.StatusSettled, Type: model.TypeRegular},
		},
		{
			name: "unpadded date",
			txn:  model.Transaction{AccountID: account.ID, Date: "2026-3-1", Status: model.StatusSettled, Type: model.TypeRegular},
		},
		{
			name: "unknown status",
			txn:  model.Transaction{AccountID: account.ID, Date: "2026-03-01", Status: "posted", Type: model.TypeRegular},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateTransaction(ctx, &tt.txn)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestCreateTransferPair(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	checking := seedTestAccount(t, store, "Checking")
	savings := seedTestAccount(t, store, "Savings")

	legs, err := store.CreateTransferPair(ctx, checking.ID, savings.ID, "2026-03-05",
		decimal.NewFromInt(500), "monthly savings", model.StatusSettled)
	require.NoError(t, err)
	require.Len(t, legs, 2)

	out, in := legs[0], legs[1]
	assert.Equal(t, checking.ID, out.AccountID)
	assert.Equal(t, savings.ID, in.AccountID)
	assert.True(t, out.Amount.Equal(decimal.NewFromInt(-500)))
	assert.True(t, in.Amount.Equal(decimal.NewFromInt(500)))
	require.NotNil(t, out.PairID)
	require.NotNil(t, in.PairID)
	assert.Equal(t, in.ID, *out.PairID)
	assert.Equal(t, out.ID, *in.PairID)

	// The pot is unchanged: both accounts are in it.
	balance, err := store.GetMoneypotBalance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "got %s", balance)

	t.Run("same account rejected", func(t *testing.T) {
		_, err := store.CreateTransferPair(ctx, checking.ID, checking.ID, "2026-03-05",
			decimal.NewFromInt(10), "", model.StatusSettled)
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		_, err := store.CreateTransferPair(ctx, checking.ID, savings.ID, "2026-03-05",
			decimal.Zero, "", model.StatusSettled)
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestDeleteTransactionRemovesPair(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	checking := seedTestAccount(t, store, "Checking")
	savings := seedTestAccount(t, store, "Savings")

	legs, err := store.CreateTransferPair(ctx, checking.ID, savings.ID, "2026-03-05",
		decimal.NewFromInt(500), "", model.StatusSettled)
	require.NoError(t, err)

	require.NoError(t, store.DeleteTransaction(ctx, legs[0].ID))

	_, err = store.GetTransactionByID(ctx, legs[0].ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = store.GetTransactionByID(ctx, legs[1].ID)
	assert.ErrorIs(t, err, common.ErrNotFound, "paired leg must go with it")
}

func TestGetTransactionsFilter(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	checking := seedTestAccount(t, store, "Checking")
	savings := seedTestAccount(t, store, "Savings")
	groceries, err := store.CreateCategory(ctx, &model.Category{Name: "Groceries"})
	require.NoError(t, err)

	seedTestTransaction(t, store, checking.ID, &groceries.ID, "2026-03-01", "-25", model.StatusSettled)
	seedTestTransaction(t, store, checking.ID, nil, "2026-03-02", "1000", model.StatusSettled)
	seedTestTransaction(t, store, savings.ID, &groceries.ID, "2026-02-15", "-40", model.StatusPending)

	t.Run("by account", func(t *testing.T) {
		txns, err := store.GetTransactions(ctx, model.TransactionFilter{AccountID: &checking.ID})
		require.NoError(t, err)
		assert.Len(t, txns, 2)
	})

	t.Run("by category", func(t *testing.T) {
		txns, err := store.GetTransactions(ctx, model.TransactionFilter{CategoryID: &groceries.ID})
		require.NoError(t, err)
		assert.Len(t, txns, 2)
	})

	t.Run("by status", func(t *testing.T) {
		pending := model.StatusPending
		txns, err := store.GetTransactions(ctx, model.TransactionFilter{Status: &pending})
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, savings.ID, txns[0].AccountID)
	})

	t.Run("by date range", func(t *testing.T) {
		txns, err := store.GetTransactions(ctx, model.TransactionFilter{StartDate: "2026-03-01", EndDate: "2026-03-31"})
		require.NoError(t, err)
		assert.Len(t, txns, 2)
	})

	t.Run("newest first with limit", func(t *testing.T) {
		txns, err := store.GetTransactions(ctx, model.TransactionFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "2026-03-02", txns[0].Date)
	})
}

func TestUpdateTransaction(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	checking := seedTestAccount(t, store, "Checking")
	groceries, err := store.CreateCategory(ctx, &model.Category{Name: "Groceries"})
	require.NoError(t, err)

	txn := seedTestTransaction(t, store, checking.ID, &groceries.ID, "2026-03-01", "-25", model.StatusPending)

	settled := model.StatusSettled
	amount := decimal.RequireFromString("-27.50")
	require.NoError(t, store.UpdateTransaction(ctx, txn.ID, model.TransactionUpdate{
		Status: &settled,
		Amount: &amount,
	}))

	updated, err := store.GetTransactionByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSettled, updated.Status)
	assert.True(t, amount.Equal(updated.Amount))
	require.NotNil(t, updated.CategoryID)

	t.Run("clear category", func(t *testing.T) {
		require.NoError(t, store.UpdateTransaction(ctx, txn.ID, model.TransactionUpdate{ClearCategory: true}))
		cleared, err := store.GetTransactionByID(ctx, txn.ID)
		require.NoError(t, err)
		assert.Nil(t, cleared.CategoryID)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := store.UpdateTransaction(ctx, 9999, model.TransactionUpdate{Status: &settled})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestUpdateTransferLegMirrorsPair(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	checking := seedTestAccount(t, store, "Checking")
	savings := seedTestAccount(t, store, "Savings")

	legs, err := store.CreateTransferPair(ctx, checking.ID, savings.ID, "2026-03-01",
		decimal.RequireFromString("100"), "move", model.StatusSettled)
	require.NoError(t, err)
	out, in := legs[0], legs[1]

	// Changing one leg's amount, date, and status keeps the pair equal
	// and opposite.
	newAmount := decimal.RequireFromString("-250")
	newDate := "2026-03-05"
	pending := model.StatusPending
	require.NoError(t, store.UpdateTransaction(ctx, out.ID, model.TransactionUpdate{
		Amount: &newAmount,
		Date:   &newDate,
		Status: &pending,
	}))

	updatedOut, err := store.GetTransactionByID(ctx, out.ID)
	require.NoError(t, err)
	updatedIn, err := store.GetTransactionByID(ctx, in.ID)
	require.NoError(t, err)

	assert.True(t, newAmount.Equal(updatedOut.Amount), "out leg: %s", updatedOut.Amount)
	assert.True(t, newAmount.Neg().Equal(updatedIn.Amount), "in leg: %s", updatedIn.Amount)
	assert.True(t, updatedOut.Amount.Add(updatedIn.Amount).IsZero())
	assert.Equal(t, newDate, updatedIn.Date)
	assert.Equal(t, model.StatusPending, updatedIn.Status)

	t.Run("legs cannot be categorized", func(t *testing.T) {
		groceries, err := store.CreateCategory(ctx, &model.Category{Name: "Groceries"})
		require.NoError(t, err)

		err = store.UpdateTransaction(ctx, in.ID, model.TransactionUpdate{CategoryID: &groceries.ID})
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("reconciling one leg leaves the other alone", func(t *testing.T) {
		reconciled := true
		require.NoError(t, store.UpdateTransaction(ctx, out.ID, model.TransactionUpdate{Reconciled: &reconciled}))

		other, err := store.GetTransactionByID(ctx, in.ID)
		require.NoError(t, err)
		assert.False(t, other.Reconciled)
	})
}

func TestCategorySums(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	checking := seedTestAccount(t, store, "Checking")
	groceries, err := store.CreateCategory(ctx, &model.Category{Name: "Groceries"})
	require.NoError(t, err)

	seedTestTransaction(t, store, checking.ID, &groceries.ID, "2026-03-01", "-50", model.StatusSettled)
	seedTestTransaction(t, store, checking.ID, &groceries.ID, "2026-03-15", "-30", model.StatusSettled)
	seedTestTransaction(t, store, checking.ID, &groceries.ID, "2026-02-10", "-100", model.StatusSettled)
	// Pending is summed without regard to date.
	seedTestTransaction(t, store, checking.ID, &groceries.ID, "2025-12-25", "-20", model.StatusPending)

	settled, err := store.SumSettledByCategory(ctx, groceries.ID, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-80).Equal(settled), "got %s", settled)

	pending, err := store.SumPendingByCategory(ctx, groceries.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-20).Equal(pending), "got %s", pending)

	allTime, err := store.SumSettledByCategoryAllTime(ctx, groceries.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-180).Equal(allTime), "got %s", allTime)

	count, err := store.CountSettledByCategory(ctx, groceries.ID, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	pendingCount, err := store.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pendingCount)
}

func TestSumSettledOutflows(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	checking := seedTestAccount(t, store, "Checking")
	seedTestTransaction(t, store, checking.ID, nil, "2026-03-01", "1000", model.StatusSettled)
	seedTestTransaction(t, store, checking.ID, nil, "2026-03-05", "-120", model.StatusSettled)
	seedTestTransaction(t, store, checking.ID, nil, "2026-03-09", "-80", model.StatusSettled)
	seedTestTransaction(t, store, checking.ID, nil, "2026-03-11", "-999", model.StatusPending)

	spent, err := store.SumSettledOutflows(ctx, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(spent), "got %s", spent)
}

func TestEarliestTransactionDate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	date, err := store.EarliestTransactionDate(ctx)
	require.NoError(t, err)
	assert.Empty(t, date, "empty ledger has no earliest date")

	checking := seedTestAccount(t, store, "Checking")
	seedTestTransaction(t, store, checking.ID, nil, "2026-03-01", "10", model.StatusSettled)
	seedTestTransaction(t, store, checking.ID, nil, "2025-11-20", "10", model.StatusSettled)

	date, err = store.EarliestTransactionDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-20", date)
}

func TestLastReconciledDate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	checking := seedTestAccount(t, store, "Checking")
	txn := seedTestTransaction(t, store, checking.ID, nil, "2026-03-01", "10", model.StatusSettled)
	seedTestTransaction(t, store, checking.ID, nil, "2026-03-15", "10", model.StatusSettled)

	date, err := store.LastReconciledDate(ctx)
	require.NoError(t, err)
	assert.Empty(t, date)

	reconciled := true
	require.NoError(t, store.UpdateTransaction(ctx, txn.ID, model.TransactionUpdate{Reconciled: &reconciled}))

	date, err = store.LastReconciledDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", date)
}
