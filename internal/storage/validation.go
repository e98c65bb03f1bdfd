// Package storage provides the data persistence layer for the moneypot application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/moneypot/moneypot/internal/common"
	"github.com/moneypot/moneypot/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateAccount validates an account before persistence.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if strings.TrimSpace(account.Name) == "" {
		return common.Validationf("account name is required")
	}
	if !account.Type.Valid() {
		return common.Validationf("unknown account type %q", account.Type)
	}
	return nil
}

// validateCategory validates a category before persistence.
func validateCategory(category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if strings.TrimSpace(category.Name) == "" {
		return common.Validationf("category name is required")
	}
	if category.MonthlyAmount.IsNegative() {
		return common.Validationf("monthly amount cannot be negative")
	}
	return nil
}

// validateTransaction validates a transaction before persistence.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.AccountID == 0 {
		return common.Validationf("transaction account is required")
	}
	if !model.ValidDate(txn.Date) {
		return common.Validationf("transaction date %q is not a valid YYYY-MM-DD date", txn.Date)
	}
	if !txn.Status.Valid() {
		return common.Validationf("unknown transaction status %q", txn.Status)
	}
	if txn.Type != model.TypeRegular && txn.Type != model.TypeTransfer {
		return common.Validationf("unknown transaction type %q", txn.Type)
	}
	return nil
}

// validateTransfer validates a category transfer before persistence. The
// semantic checks (endpoints differ, categories exist) live in the budget
// package; the store only rejects rows that could corrupt the ledger.
func validateTransfer(transfer *model.CategoryTransfer) error {
	if transfer == nil {
		return fmt.Errorf("%w: transfer", ErrNilParameter)
	}
	if !model.ValidDate(transfer.Date) {
		return common.Validationf("transfer date %q is not a valid YYYY-MM-DD date", transfer.Date)
	}
	if !transfer.Amount.IsPositive() {
		return common.Validationf("transfer amount must be positive")
	}
	if transfer.FromCategoryID == transfer.ToCategoryID {
		return common.Validationf("transfer source and destination must differ")
	}
	return nil
}
