package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/common"
	"github.com/moneypot/moneypot/internal/model"
)

const transactionColumns = `id, account_id, category_id, date, amount_cents, description, status, type, pair_id, reconciled, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (*model.Transaction, error) {
	var txn model.Transaction
	var cents int64
	var categoryID, pairID sql.NullInt64
	if err := row.Scan(
		&txn.ID, &txn.AccountID, &categoryID, &txn.Date, &cents, &txn.Description,
		&txn.Status, &txn.Type, &pairID, &txn.Reconciled, &txn.CreatedAt, &txn.UpdatedAt,
	); err != nil {
		return nil, err
	}
	txn.Amount = fromCents(cents)
	if categoryID.Valid {
		txn.CategoryID = &categoryID.Int64
	}
	if pairID.Valid {
		txn.PairID = &pairID.Int64
	}
	return &txn, nil
}

// CreateTransaction creates a single regular transaction.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransaction(txn); err != nil {
		return nil, err
	}

	cents, err := toCents(txn.Amount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (account_id, category_id, date, amount_cents, description, status, type, pair_id, reconciled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.AccountID, txn.CategoryID, txn.Date, cents, txn.Description,
		txn.Status, txn.Type, txn.PairID, txn.Reconciled, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction ID: %w", err)
	}

	created := *txn
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now

	slog.Debug("created transaction", "id", id, "account", txn.AccountID, "amount", txn.Amount)
	return &created, nil
}

// CreateTransferPair atomically creates both legs of an inter-account
// transfer: two rows with equal and opposite amounts and mutual pair
// references. The amount is debited from the source account.
func (s *SQLiteStorage) CreateTransferPair(ctx context.Context, fromAccountID, toAccountID int64, date string, amount decimal.Decimal, description string, status model.TransactionStatus) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if fromAccountID == toAccountID {
		return nil, common.Validationf("transfer source and destination accounts must differ")
	}
	if !amount.IsPositive() {
		return nil, common.Validationf("transfer amount must be positive")
	}
	if !model.ValidDate(date) {
		return nil, common.Validationf("transfer date %q is not a valid YYYY-MM-DD date", date)
	}
	if !status.Valid() {
		return nil, common.Validationf("unknown transaction status %q", status)
	}

	cents, err := toCents(amount)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	insert := `
		INSERT INTO transactions (account_id, date, amount_cents, description, status, type, reconciled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`

	outResult, err := tx.ExecContext(ctx, insert,
		fromAccountID, date, -cents, description, status, model.TypeTransfer, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create outgoing transfer leg: %w", err)
	}
	outID, err := outResult.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get outgoing leg ID: %w", err)
	}

	inResult, err := tx.ExecContext(ctx, insert,
		toAccountID, date, cents, description, status, model.TypeTransfer, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create incoming transfer leg: %w", err)
	}
	inID, err := inResult.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get incoming leg ID: %w", err)
	}

	// Cross-link the pair.
	if _, err := tx.ExecContext(ctx, `UPDATE transactions SET pair_id = ? WHERE id = ?`, inID, outID); err != nil {
		return nil, fmt.Errorf("failed to link outgoing leg: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE transactions SET pair_id = ? WHERE id = ?`, outID, inID); err != nil {
		return nil, fmt.Errorf("failed to link incoming leg: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer pair: %w", err)
	}

	out := model.Transaction{
		ID: outID, AccountID: fromAccountID, Date: date, Amount: amount.Neg(),
		Description: description, Status: status, Type: model.TypeTransfer,
		PairID: &inID, CreatedAt: now, UpdatedAt: now,
	}
	in := model.Transaction{
		ID: inID, AccountID: toAccountID, Date: date, Amount: amount,
		Description: description, Status: status, Type: model.TypeTransfer,
		PairID: &outID, CreatedAt: now, UpdatedAt: now,
	}

	slog.Info("created transfer pair", "from_account", fromAccountID, "to_account", toAccountID, "amount", amount)
	return []model.Transaction{out, in}, nil
}

// GetTransactionByID returns a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	txn, err := scanTransaction(s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("transaction %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}

	return txn, nil
}

// GetTransactions returns transactions matching the filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []any
	if filter.AccountID != nil {
		query += ` AND account_id = ?`
		args = append(args, *filter.AccountID)
	}
	if filter.CategoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *filter.CategoryID)
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	if filter.StartDate != "" {
		query += ` AND date >= ?`
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		query += ` AND date <= ?`
		args = append(args, filter.EndDate)
	}
	query += ` ORDER BY date DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}

	return txns, rows.Err()
}

// UpdateTransaction applies a partial update; only non-nil fields are
// written. Updating a transfer leg mirrors the date, description, status,
// and negated amount onto its paired row in the same store transaction so
// the two legs stay equal and opposite.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, id int64, update model.TransactionUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	existing, err := s.GetTransactionByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.PairID != nil && update.CategoryID != nil {
		return common.Validationf("transfer legs cannot be categorized")
	}

	now := time.Now()
	var sets, pairSets []string
	var args, pairArgs []any
	if update.Date != nil {
		if !model.ValidDate(*update.Date) {
			return common.Validationf("transaction date %q is not a valid YYYY-MM-DD date", *update.Date)
		}
		sets = append(sets, "date = ?")
		args = append(args, *update.Date)
		pairSets = append(pairSets, "date = ?")
		pairArgs = append(pairArgs, *update.Date)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
		pairSets = append(pairSets, "description = ?")
		pairArgs = append(pairArgs, *update.Description)
	}
	if update.Amount != nil {
		cents, err := toCents(*update.Amount)
		if err != nil {
			return err
		}
		sets = append(sets, "amount_cents = ?")
		args = append(args, cents)
		pairSets = append(pairSets, "amount_cents = ?")
		pairArgs = append(pairArgs, -cents)
	}
	if update.Status != nil {
		if !update.Status.Valid() {
			return common.Validationf("unknown transaction status %q", *update.Status)
		}
		sets = append(sets, "status = ?")
		args = append(args, *update.Status)
		pairSets = append(pairSets, "status = ?")
		pairArgs = append(pairArgs, *update.Status)
	}
	if update.ClearCategory {
		sets = append(sets, "category_id = NULL")
	} else if update.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *update.CategoryID)
	}
	if update.Reconciled != nil {
		// Reconciliation marks a point in one account's history; the paired
		// leg lives in another account and is not mirrored.
		sets = append(sets, "reconciled = ?")
		args = append(args, *update.Reconciled)
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, now)
	args = append(args, id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if existing.PairID != nil && len(pairSets) > 0 {
		pairSets = append(pairSets, "updated_at = ?")
		pairArgs = append(pairArgs, now)
		pairArgs = append(pairArgs, *existing.PairID)
		if _, err := tx.ExecContext(ctx,
			"UPDATE transactions SET "+strings.Join(pairSets, ", ")+" WHERE id = ?", pairArgs...); err != nil {
			return fmt.Errorf("failed to update paired transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction update: %w", err)
	}

	return nil
}

// DeleteTransaction removes a transaction. A transfer leg takes its paired
// row with it in the same store transaction so a dangling half-transfer can
// never exist.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	txn, err := s.GetTransactionByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if txn.PairID != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, *txn.PairID); err != nil {
			return fmt.Errorf("failed to delete paired transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction delete: %w", err)
	}

	slog.Debug("deleted transaction", "id", id, "paired", txn.PairID != nil)
	return nil
}

// AccountHasTransactions reports whether any transaction references the account.
func (s *SQLiteStorage) AccountHasTransactions(ctx context.Context, accountID int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ?`, accountID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count account transactions: %w", err)
	}
	return count > 0, nil
}

// SumSettledByCategory sums settled transaction amounts for a category in a
// date range. Signs are preserved: outflows stay negative.
func (s *SQLiteStorage) SumSettledByCategory(ctx context.Context, categoryID int64, firstDay, lastDay string) (decimal.Decimal, error) {
	return s.sumQuery(ctx, `
		SELECT SUM(amount_cents)
		FROM transactions
		WHERE category_id = ? AND status = 'settled' AND date >= ? AND date <= ?`,
		categoryID, firstDay, lastDay)
}

// SumPendingByCategory sums pending transaction amounts for a category
// across all dates. A pending transaction has no settled date yet, so its
// posting date is ignored.
func (s *SQLiteStorage) SumPendingByCategory(ctx context.Context, categoryID int64) (decimal.Decimal, error) {
	return s.sumQuery(ctx, `
		SELECT SUM(amount_cents)
		FROM transactions
		WHERE category_id = ? AND status = 'pending'`,
		categoryID)
}

// SumSettledByCategoryAllTime sums all settled transaction amounts for a category.
func (s *SQLiteStorage) SumSettledByCategoryAllTime(ctx context.Context, categoryID int64) (decimal.Decimal, error) {
	return s.sumQuery(ctx, `
		SELECT SUM(amount_cents)
		FROM transactions
		WHERE category_id = ? AND status = 'settled'`,
		categoryID)
}

// SumSettledOutflows returns the absolute sum of negative settled amounts
// in the date range, across all accounts.
func (s *SQLiteStorage) SumSettledOutflows(ctx context.Context, firstDay, lastDay string) (decimal.Decimal, error) {
	total, err := s.sumQuery(ctx, `
		SELECT SUM(amount_cents)
		FROM transactions
		WHERE status = 'settled' AND amount_cents < 0 AND date >= ? AND date <= ?`,
		firstDay, lastDay)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Neg(), nil
}

// CountSettledByCategory counts settled transactions for a category in a date range.
func (s *SQLiteStorage) CountSettledByCategory(ctx context.Context, categoryID int64, firstDay, lastDay string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions
		WHERE category_id = ? AND status = 'settled' AND date >= ? AND date <= ?`,
		categoryID, firstDay, lastDay).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count settled transactions: %w", err)
	}
	return count, nil
}

// CountPending counts all pending transactions.
func (s *SQLiteStorage) CountPending(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE status = 'pending'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending transactions: %w", err)
	}
	return count, nil
}

// EarliestTransactionDate returns the date of the oldest transaction, or ""
// when the ledger is empty. It bounds the carry-forward chain walk.
func (s *SQLiteStorage) EarliestTransactionDate(ctx context.Context) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	var date sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MIN(date) FROM transactions`).Scan(&date)
	if err != nil {
		return "", fmt.Errorf("failed to query earliest transaction date: %w", err)
	}
	if !date.Valid {
		return "", nil
	}
	return date.String, nil
}

// LastReconciledDate returns the most recent reconciliation-point date, or
// "" when no transaction is marked as one.
func (s *SQLiteStorage) LastReconciledDate(ctx context.Context) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	var date sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(date) FROM transactions WHERE reconciled = 1`).Scan(&date)
	if err != nil {
		return "", fmt.Errorf("failed to query last reconciled date: %w", err)
	}
	if !date.Valid {
		return "", nil
	}
	return date.String, nil
}
