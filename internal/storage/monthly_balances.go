package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneypot/moneypot/internal/model"
)

// EnsureMonthlyBalance inserts the carried-forward snapshot for (category,
// month) if it does not exist yet. The insert is idempotent: an existing
// row wins and is never rewritten, which both anchors the carry-forward
// chain and makes concurrent callers safe without locking.
func (s *SQLiteStorage) EnsureMonthlyBalance(ctx context.Context, categoryID int64, month string, carried decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(month, "month"); err != nil {
		return err
	}

	cents, err := toCents(carried)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO category_monthly_balances (category_id, month, carried_forward_cents, created_at)
		VALUES (?, ?, ?, ?)`,
		categoryID, month, cents, time.Now())
	if err != nil {
		return fmt.Errorf("failed to ensure monthly balance: %w", err)
	}

	if affected, raErr := result.RowsAffected(); raErr == nil && affected > 0 {
		slog.Debug("materialized monthly balance",
			"category", categoryID,
			"month", month,
			"carried_forward", carried)
	}
	return nil
}

// GetMonthlyBalance returns the snapshot for (category, month), or nil when
// the month has not been materialized for that category yet.
func (s *SQLiteStorage) GetMonthlyBalance(ctx context.Context, categoryID int64, month string) (*model.CategoryMonthlyBalance, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(month, "month"); err != nil {
		return nil, err
	}

	var mb model.CategoryMonthlyBalance
	var cents int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, month, carried_forward_cents, created_at
		FROM category_monthly_balances
		WHERE category_id = ? AND month = ?`,
		categoryID, month).Scan(&mb.ID, &mb.CategoryID, &mb.Month, &cents, &mb.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly balance: %w", err)
	}

	mb.CarriedForward = fromCents(cents)
	return &mb, nil
}
