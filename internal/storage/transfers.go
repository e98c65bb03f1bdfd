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

const transferColumns = `id, date, from_category_id, to_category_id, amount_cents, memo, created_at`

func scanTransfer(row interface{ Scan(...any) error }) (*model.CategoryTransfer, error) {
	var tr model.CategoryTransfer
	var cents int64
	if err := row.Scan(
		&tr.ID, &tr.Date, &tr.FromCategoryID, &tr.ToCategoryID,
		&cents, &tr.Memo, &tr.CreatedAt,
	); err != nil {
		return nil, err
	}
	tr.Amount = fromCents(cents)
	return &tr, nil
}

// CreateTransfer appends a category transfer to the ledger.
func (s *SQLiteStorage) CreateTransfer(ctx context.Context, transfer *model.CategoryTransfer) (*model.CategoryTransfer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransfer(transfer); err != nil {
		return nil, err
	}

	cents, err := toCents(transfer.Amount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO category_transfers (date, from_category_id, to_category_id, amount_cents, memo, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		transfer.Date, transfer.FromCategoryID, transfer.ToCategoryID, cents, transfer.Memo, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer ID: %w", err)
	}

	created := *transfer
	created.ID = id
	created.CreatedAt = now

	slog.Info("created category transfer",
		"id", id,
		"from", transfer.FromCategoryID,
		"to", transfer.ToCategoryID,
		"amount", transfer.Amount)
	return &created, nil
}

// GetTransferByID returns a single category transfer.
func (s *SQLiteStorage) GetTransferByID(ctx context.Context, id int64) (*model.CategoryTransfer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tr, err := scanTransfer(s.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM category_transfers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("transfer %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer: %w", err)
	}

	return tr, nil
}

// GetTransfers returns transfers newest first, optionally restricted to a month.
func (s *SQLiteStorage) GetTransfers(ctx context.Context, month *model.Month) ([]model.CategoryTransfer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + transferColumns + ` FROM category_transfers`
	var args []any
	if month != nil {
		query += ` WHERE date >= ? AND date <= ?`
		args = append(args, month.FirstDay(), month.LastDay())
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transfers []model.CategoryTransfer
	for rows.Next() {
		tr, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, *tr)
	}

	return transfers, rows.Err()
}

// UpdateTransfer applies a partial update; only non-nil fields are written.
func (s *SQLiteStorage) UpdateTransfer(ctx context.Context, id int64, update model.CategoryTransferUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var sets []string
	var args []any
	if update.Date != nil {
		if !model.ValidDate(*update.Date) {
			return common.Validationf("transfer date %q is not a valid YYYY-MM-DD date", *update.Date)
		}
		sets = append(sets, "date = ?")
		args = append(args, *update.Date)
	}
	if update.FromCategoryID != nil {
		sets = append(sets, "from_category_id = ?")
		args = append(args, *update.FromCategoryID)
	}
	if update.ToCategoryID != nil {
		sets = append(sets, "to_category_id = ?")
		args = append(args, *update.ToCategoryID)
	}
	if update.Amount != nil {
		if !update.Amount.IsPositive() {
			return common.Validationf("transfer amount must be positive")
		}
		cents, err := toCents(*update.Amount)
		if err != nil {
			return err
		}
		sets = append(sets, "amount_cents = ?")
		args = append(args, cents)
	}
	if update.Memo != nil {
		sets = append(sets, "memo = ?")
		args = append(args, *update.Memo)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	result, err := s.db.ExecContext(ctx,
		"UPDATE category_transfers SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("transfer %d", id)
	}

	return nil
}

// DeleteTransfer removes a transfer unconditionally. Already-materialized
// monthly snapshots are not recomputed; the transfer simply stops
// contributing to future aggregate reads.
func (s *SQLiteStorage) DeleteTransfer(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM category_transfers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transfer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("transfer %d", id)
	}

	slog.Info("deleted category transfer", "id", id)
	return nil
}

// SumTransfersTo sums transfer amounts into a category within a date range.
func (s *SQLiteStorage) SumTransfersTo(ctx context.Context, categoryID int64, firstDay, lastDay string) (decimal.Decimal, error) {
	return s.sumQuery(ctx, `
		SELECT SUM(amount_cents)
		FROM category_transfers
		WHERE to_category_id = ? AND date >= ? AND date <= ?`,
		categoryID, firstDay, lastDay)
}

// SumTransfersFrom sums transfer amounts out of a category within a date range.
func (s *SQLiteStorage) SumTransfersFrom(ctx context.Context, categoryID int64, firstDay, lastDay string) (decimal.Decimal, error) {
	return s.sumQuery(ctx, `
		SELECT SUM(amount_cents)
		FROM category_transfers
		WHERE from_category_id = ? AND date >= ? AND date <= ?`,
		categoryID, firstDay, lastDay)
}

// SumTransfersToAllTime sums all transfer amounts into a category.
func (s *SQLiteStorage) SumTransfersToAllTime(ctx context.Context, categoryID int64) (decimal.Decimal, error) {
	return s.sumQuery(ctx, `
		SELECT SUM(amount_cents)
		FROM category_transfers
		WHERE to_category_id = ?`,
		categoryID)
}

// SumTransfersFromAllTime sums all transfer amounts out of a category.
func (s *SQLiteStorage) SumTransfersFromAllTime(ctx context.Context, categoryID int64) (decimal.Decimal, error) {
	return s.sumQuery(ctx, `
		SELECT SUM(amount_cents)
		FROM category_transfers
		WHERE from_category_id = ?`,
		categoryID)
}
