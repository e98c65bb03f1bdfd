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

func TestCreateAccount(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	created, err := store.CreateAccount(ctx, &model.Account{
		Name:       "Checking",
		Type:       model.AccountTypeBank,
		InMoneypot: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Checking", created.Name)

	fetched, err := store.GetAccountByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)
	assert.Equal(t, model.AccountTypeBank, fetched.Type)
	assert.True(t, fetched.InMoneypot)
}

func TestCreateAccountValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	t.Run("empty name", func(t *testing.T) {
		_, err := store.CreateAccount(ctx, &model.Account{Name: "  ", Type: model.AccountTypeBank})
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := store.CreateAccount(ctx, &model.Account{Name: "X", Type: "piggy_bank"})
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestGetAccountByIDNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetAccountByID(context.Background(), 9999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAccountsHiddenFilter(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.CreateAccount(ctx, &model.Account{Name: "Visible", Type: model.AccountTypeBank})
	require.NoError(t, err)
	_, err = store.CreateAccount(ctx, &model.Account{Name: "Hidden", Type: model.AccountTypeBank, Hidden: true})
	require.NoError(t, err)

	visible, err := store.GetAccounts(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Visible", visible[0].Name)

	all, err := store.GetAccounts(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateAccount(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	created, err := store.CreateAccount(ctx, &model.Account{Name: "Old", Type: model.AccountTypeBank})
	require.NoError(t, err)

	name := "New"
	hidden := true
	require.NoError(t, store.UpdateAccount(ctx, created.ID, model.AccountUpdate{Name: &name, Hidden: &hidden}))

	updated, err := store.GetAccountByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.True(t, updated.Hidden)
	// Untouched fields survive a partial update.
	assert.Equal(t, model.AccountTypeBank, updated.Type)

	t.Run("unknown id", func(t *testing.T) {
		err := store.UpdateAccount(ctx, 9999, model.AccountUpdate{Name: &name})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestDeleteAccountGuard(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, &model.Account{Name: "Checking", Type: model.AccountTypeBank, InMoneypot: true})
	require.NoError(t, err)

	_, err = store.CreateTransaction(ctx, &model.Transaction{
		AccountID: account.ID,
		Date:      "2026-03-01",
		Amount:    decimal.NewFromInt(100),
		Status:    model.StatusSettled,
		Type:      model.TypeRegular,
	})
	require.NoError(t, err)

	err = store.DeleteAccount(ctx, account.ID)
	assert.ErrorIs(t, err, common.ErrConflict)

	// Hiding is the sanctioned alternative, and hidden accounts still count
	// toward the pot balance.
	hidden := true
	require.NoError(t, store.UpdateAccount(ctx, account.ID, model.AccountUpdate{Hidden: &hidden}))

	balance, err := store.GetMoneypotBalance(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(balance), "got %s", balance)
}

func TestDeleteAccountWithoutTransactions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, &model.Account{Name: "Empty", Type: model.AccountTypeCash})
	require.NoError(t, err)

	require.NoError(t, store.DeleteAccount(ctx, account.ID))

	_, err = store.GetAccountByID(ctx, account.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAccountBalances(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, &model.Account{Name: "Checking", Type: model.AccountTypeBank, InMoneypot: true})
	require.NoError(t, err)

	seed := func(amount string, status model.TransactionStatus) {
		t.Helper()
		_, err := store.CreateTransaction(ctx, &model.Transaction{
			AccountID: account.ID,
			Date:      "2026-03-10",
			Amount:    decimal.RequireFromString(amount),
			Status:    status,
			Type:      model.TypeRegular,
		})
		require.NoError(t, err)
	}
	seed("250.50", model.StatusSettled)
	seed("-50.25", model.StatusSettled)
	seed("-999", model.StatusPending) // pending never moves a balance

	balances, err := store.GetAccountBalances(ctx, false)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, decimal.RequireFromString("200.25").Equal(balances[0].Balance), "got %s", balances[0].Balance)
}

func TestGetMoneypotBalanceScopedToPot(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	inPot, err := store.CreateAccount(ctx, &model.Account{Name: "Checking", Type: model.AccountTypeBank, InMoneypot: true})
	require.NoError(t, err)
	outside, err := store.CreateAccount(ctx, &model.Account{Name: "Brokerage", Type: model.AccountTypeInvestment})
	require.NoError(t, err)

	for _, tc := range []struct {
		accountID int64
		amount    string
	}{
		{inPot.ID, "1000"},
		{outside.ID, "5000"},
	} {
		_, err := store.CreateTransaction(ctx, &model.Transaction{
			AccountID: tc.accountID,
			Date:      "2026-03-01",
			Amount:    decimal.RequireFromString(tc.amount),
			Status:    model.StatusSettled,
			Type:      model.TypeRegular,
		})
		require.NoError(t, err)
	}

	balance, err := store.GetMoneypotBalance(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(balance), "got %s", balance)
}
