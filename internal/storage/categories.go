package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/moneypot/moneypot/internal/common"
	"github.com/moneypot/moneypot/internal/model"
)

const categoryColumns = `id, name, monthly_amount_cents, is_system, hidden, sort_order, created_at`

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var cat model.Category
	var monthlyCents int64
	if err := row.Scan(
		&cat.ID, &cat.Name, &monthlyCents, &cat.IsSystem,
		&cat.Hidden, &cat.SortOrder, &cat.CreatedAt,
	); err != nil {
		return nil, err
	}
	cat.MonthlyAmount = fromCents(monthlyCents)
	return &cat, nil
}

// CreateCategory creates a new category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}

	monthlyCents, err := toCents(category.MonthlyAmount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, monthly_amount_cents, is_system, hidden, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		category.Name, monthlyCents, category.IsSystem, category.Hidden, category.SortOrder, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	created := *category
	created.ID = id
	created.CreatedAt = now

	slog.Info("created category", "name", created.Name, "id", id)
	return &created, nil
}

// GetCategoryByID returns a single category.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	cat, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("category %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return cat, nil
}

// GetCategories returns non-system categories ordered by sort order. Hidden
// categories are excluded unless includeHidden is set.
func (s *SQLiteStorage) GetCategories(ctx context.Context, includeHidden bool) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE is_system = 0`
	if !includeHidden {
		query += ` AND hidden = 0`
	}
	query += ` ORDER BY sort_order, name`
	return s.queryCategories(ctx, query)
}

// GetActiveCategories returns the categories that participate in monthly
// budgeting: non-system and not hidden, in sort order.
func (s *SQLiteStorage) GetActiveCategories(ctx context.Context) ([]model.Category, error) {
	return s.queryCategories(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE is_system = 0 AND hidden = 0
		ORDER BY sort_order, name`)
}

func (s *SQLiteStorage) queryCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *cat)
	}

	return categories, rows.Err()
}

// GetSystemCategory locates a system category by its well-known name. It
// returns nil without an error when the category does not exist, since a
// fresh database legitimately has no system categories yet.
func (s *SQLiteStorage) GetSystemCategory(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	cat, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = ? AND is_system = 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query system category: %w", err)
	}

	return cat, nil
}

// EnsureAvailableToBudget creates the Available to Budget system category
// if it does not exist yet and returns it. Category names are unique, so
// the insert is a no-op on databases that already carry the pool. A
// non-system category squatting on the well-known name is a conflict; the
// pool cannot be bootstrapped around it.
func (s *SQLiteStorage) EnsureAvailableToBudget(ctx context.Context) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO categories (name, is_system, created_at)
		VALUES (?, 1, ?)`,
		model.AvailableToBudgetName, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to ensure pool category: %w", err)
	}

	pool, err := s.GetSystemCategory(ctx, model.AvailableToBudgetName)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, common.Conflictf("category name %q is taken by a non-system category", model.AvailableToBudgetName)
	}

	if inserted, _ := result.RowsAffected(); inserted > 0 {
		slog.Info("created Available to Budget category", "id", pool.ID)
	}
	return pool, nil
}

// UpdateCategory applies a partial update; only non-nil fields are written.
// A rename appends the prior name to the category's rename history in the
// same store transaction.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id int64, update model.CategoryUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	existing, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return err
	}

	var sets []string
	var args []any
	renamed := false
	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return common.Validationf("category name is required")
		}
		renamed = *update.Name != existing.Name
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.MonthlyAmount != nil {
		if update.MonthlyAmount.IsNegative() {
			return common.Validationf("monthly amount cannot be negative")
		}
		cents, centsErr := toCents(*update.MonthlyAmount)
		if centsErr != nil {
			return centsErr
		}
		sets = append(sets, "monthly_amount_cents = ?")
		args = append(args, cents)
	}
	if update.Hidden != nil {
		sets = append(sets, "hidden = ?")
		args = append(args, *update.Hidden)
	}
	if update.SortOrder != nil {
		sets = append(sets, "sort_order = ?")
		args = append(args, *update.SortOrder)
	}
	if len(sets) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	args = append(args, id)
	if _, err := tx.ExecContext(ctx,
		"UPDATE categories SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	if renamed {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO category_renames (category_id, old_name, renamed_at)
			VALUES (?, ?, ?)`, id, existing.Name, time.Now()); err != nil {
			return fmt.Errorf("failed to record category rename: %w", err)
		}
		slog.Info("renamed category", "id", id, "from", existing.Name, "to", *update.Name)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit category update: %w", err)
	}

	return nil
}

// GetCategoryRenames returns a category's prior names, oldest first.
func (s *SQLiteStorage) GetCategoryRenames(ctx context.Context, id int64) ([]model.CategoryRename, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, old_name, renamed_at
		FROM category_renames
		WHERE category_id = ?
		ORDER BY renamed_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query category renames: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var renames []model.CategoryRename
	for rows.Next() {
		var r model.CategoryRename
		if err := rows.Scan(&r.ID, &r.CategoryID, &r.OldName, &r.RenamedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category rename: %w", err)
		}
		renames = append(renames, r)
	}

	return renames, rows.Err()
}
