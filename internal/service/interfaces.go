// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/model"
)

// Storage defines the contract for the ledger store. All monetary
// aggregates are computed by the store so that callers never have to load
// full transaction sets to derive a balance.
//
// Lookup conventions: Get*ByID methods fail with common.ErrNotFound when
// the row is absent; lookup-by-marker methods (GetSystemCategory,
// GetMonthlyBalance) return a nil result instead, since absence is an
// expected state for them.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	GetAccounts(ctx context.Context, includeHidden bool) ([]model.Account, error)
	GetAccountBalances(ctx context.Context, includeHidden bool) ([]model.AccountBalance, error)
	UpdateAccount(ctx context.Context, id int64, update model.AccountUpdate) error
	DeleteAccount(ctx context.Context, id int64) error
	// GetMoneypotBalance returns the sum of settled transaction amounts
	// across all accounts flagged in_moneypot. Hidden accounts still
	// contribute; hiding only removes an account from default listings.
	GetMoneypotBalance(ctx context.Context) (decimal.Decimal, error)

	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategories(ctx context.Context, includeHidden bool) ([]model.Category, error)
	// GetActiveCategories returns non-system, non-hidden categories in sort
	// order. These are the categories that participate in monthly budgeting.
	GetActiveCategories(ctx context.Context) ([]model.Category, error)
	// GetSystemCategory locates a system category by its well-known name.
	GetSystemCategory(ctx context.Context, name string) (*model.Category, error)
	// EnsureAvailableToBudget creates the Available to Budget system
	// category if absent and returns it. Idempotent; called at startup so
	// the pool exists before any transfer targets it.
	EnsureAvailableToBudget(ctx context.Context) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, update model.CategoryUpdate) error
	GetCategoryRenames(ctx context.Context, id int64) ([]model.CategoryRename, error)

	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	// CreateTransferPair atomically creates the two legs of an
	// inter-account transfer: equal and opposite amounts, mutual pair
	// references.
	CreateTransferPair(ctx context.Context, fromAccountID, toAccountID int64, date string, amount decimal.Decimal, description string, status model.TransactionStatus) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, update model.TransactionUpdate) error
	// DeleteTransaction removes a transaction; if it is a transfer leg, its
	// paired row is removed in the same store transaction.
	DeleteTransaction(ctx context.Context, id int64) error
	AccountHasTransactions(ctx context.Context, accountID int64) (bool, error)
	SumSettledByCategory(ctx context.Context, categoryID int64, firstDay, lastDay string) (decimal.Decimal, error)
	// SumPendingByCategory sums pending transaction amounts for a category
	// across all dates; pending activity is date-independent.
	SumPendingByCategory(ctx context.Context, categoryID int64) (decimal.Decimal, error)
	SumSettledByCategoryAllTime(ctx context.Context, categoryID int64) (decimal.Decimal, error)
	// SumSettledOutflows returns the absolute sum of negative settled
	// amounts in the date range, across all accounts.
	SumSettledOutflows(ctx context.Context, firstDay, lastDay string) (decimal.Decimal, error)
	CountSettledByCategory(ctx context.Context, categoryID int64, firstDay, lastDay string) (int, error)
	CountPending(ctx context.Context) (int, error)
	// EarliestTransactionDate returns "" when the ledger is empty.
	EarliestTransactionDate(ctx context.Context) (string, error)
	// LastReconciledDate returns the most recent reconciliation-point date,
	// or "" when no transaction is marked as one.
	LastReconciledDate(ctx context.Context) (string, error)

	// Category transfer operations
	CreateTransfer(ctx context.Context, transfer *model.CategoryTransfer) (*model.CategoryTransfer, error)
	GetTransferByID(ctx context.Context, id int64) (*model.CategoryTransfer, error)
	GetTransfers(ctx context.Context, month *model.Month) ([]model.CategoryTransfer, error)
	UpdateTransfer(ctx context.Context, id int64, update model.CategoryTransferUpdate) error
	DeleteTransfer(ctx context.Context, id int64) error
	SumTransfersTo(ctx context.Context, categoryID int64, firstDay, lastDay string) (decimal.Decimal, error)
	SumTransfersFrom(ctx context.Context, categoryID int64, firstDay, lastDay string) (decimal.Decimal, error)
	SumTransfersToAllTime(ctx context.Context, categoryID int64) (decimal.Decimal, error)
	SumTransfersFromAllTime(ctx context.Context, categoryID int64) (decimal.Decimal, error)

	// Monthly balance operations
	// EnsureMonthlyBalance inserts the carried-forward snapshot for
	// (category, month) if absent. Existing rows are never rewritten, which
	// makes the insert idempotent and safe under concurrent callers.
	EnsureMonthlyBalance(ctx context.Context, categoryID int64, month string, carried decimal.Decimal) error
	GetMonthlyBalance(ctx context.Context, categoryID int64, month string) (*model.CategoryMonthlyBalance, error)

	// Settings
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
