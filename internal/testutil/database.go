// Package testutil provides test helpers for setting up seeded databases.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/storage"
)

// NewTestStorage creates a migrated SQLite database in a test temp
// directory and registers cleanup.
func NewTestStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SeedAvailableToBudget creates the Available to Budget system category the
// same way production startup does.
func SeedAvailableToBudget(t *testing.T, store *storage.SQLiteStorage) *model.Category {
	t.Helper()

	cat, err := store.EnsureAvailableToBudget(context.Background())
	if err != nil {
		t.Fatalf("failed to seed Available to Budget category: %v", err)
	}
	return cat
}

// SeedAccount creates a visible in-moneypot bank account.
func SeedAccount(t *testing.T, store *storage.SQLiteStorage, name string) *model.Account {
	t.Helper()

	account, err := store.CreateAccount(context.Background(), &model.Account{
		Name:       name,
		Type:       model.AccountTypeBank,
		InMoneypot: true,
	})
	if err != nil {
		t.Fatalf("failed to seed account %q: %v", name, err)
	}
	return account
}

// SeedCategory creates an ordinary envelope with an optional monthly target.
func SeedCategory(t *testing.T, store *storage.SQLiteStorage, name string, monthlyAmount decimal.Decimal) *model.Category {
	t.Helper()

	cat, err := store.CreateCategory(context.Background(), &model.Category{
		Name:          name,
		MonthlyAmount: monthlyAmount,
	})
	if err != nil {
		t.Fatalf("failed to seed category %q: %v", name, err)
	}
	return cat
}

// SeedTransaction creates a transaction against an account and category.
func SeedTransaction(t *testing.T, store *storage.SQLiteStorage, accountID int64, categoryID *int64, date string, amount decimal.Decimal, status model.TransactionStatus) *model.Transaction {
	t.Helper()

	txn, err := store.CreateTransaction(context.Background(), &model.Transaction{
		AccountID:  accountID,
		CategoryID: categoryID,
		Date:       date,
		Amount:     amount,
		Status:     status,
		Type:       model.TypeRegular,
	})
	if err != nil {
		t.Fatalf("failed to seed transaction: %v", err)
	}
	return txn
}
