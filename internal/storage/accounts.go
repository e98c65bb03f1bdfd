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

// CreateAccount creates a new account.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateAccount(account); err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (name, type, in_moneypot, hidden, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		account.Name, account.Type, account.InMoneypot, account.Hidden, account.SortOrder, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get account ID: %w", err)
	}

	created := *account
	created.ID = id
	created.CreatedAt = now

	slog.Info("created account", "name", created.Name, "type", created.Type, "id", id)
	return &created, nil
}

// GetAccountByID returns a single account.
func (s *SQLiteStorage) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var account model.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, in_moneypot, hidden, sort_order, created_at
		FROM accounts
		WHERE id = ?`, id).Scan(
		&account.ID, &account.Name, &account.Type, &account.InMoneypot,
		&account.Hidden, &account.SortOrder, &account.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("account %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	return &account, nil
}

// GetAccounts returns accounts ordered by sort order. Hidden accounts are
// excluded unless includeHidden is set.
func (s *SQLiteStorage) GetAccounts(ctx context.Context, includeHidden bool) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, type, in_moneypot, hidden, sort_order, created_at
		FROM accounts`
	if !includeHidden {
		query += ` WHERE hidden = 0`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		if err := rows.Scan(
			&account.ID, &account.Name, &account.Type, &account.InMoneypot,
			&account.Hidden, &account.SortOrder, &account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// GetAccountBalances returns accounts together with their settled balances.
// An account's balance is always derived from its transactions; it is never
// stored.
func (s *SQLiteStorage) GetAccountBalances(ctx context.Context, includeHidden bool) ([]model.AccountBalance, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT a.id, a.name, a.type, a.in_moneypot, a.hidden, a.sort_order, a.created_at,
			COALESCE(SUM(CASE WHEN t.status = 'settled' THEN t.amount_cents ELSE 0 END), 0) AS balance_cents
		FROM accounts a
		LEFT JOIN transactions t ON t.account_id = a.id`
	if !includeHidden {
		query += ` WHERE a.hidden = 0`
	}
	query += `
		GROUP BY a.id
		ORDER BY a.sort_order, a.name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query account balances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var balances []model.AccountBalance
	for rows.Next() {
		var ab model.AccountBalance
		var cents int64
		if err := rows.Scan(
			&ab.ID, &ab.Name, &ab.Type, &ab.InMoneypot,
			&ab.Hidden, &ab.SortOrder, &ab.CreatedAt, &cents,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account balance: %w", err)
		}
		ab.Balance = fromCents(cents)
		balances = append(balances, ab)
	}

	return balances, rows.Err()
}

// UpdateAccount applies a partial update; only non-nil fields are written.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, id int64, update model.AccountUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var sets []string
	var args []any
	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return common.Validationf("account name is required")
		}
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Type != nil {
		if !update.Type.Valid() {
			return common.Validationf("unknown account type %q", *update.Type)
		}
		sets = append(sets, "type = ?")
		args = append(args, *update.Type)
	}
	if update.InMoneypot != nil {
		sets = append(sets, "in_moneypot = ?")
		args = append(args, *update.InMoneypot)
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

	args = append(args, id)
	result, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("account %d", id)
	}

	return nil
}

// DeleteAccount removes an account that has no transactions. An account
// with any referencing transaction cannot be deleted and must be hidden
// instead.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	has, err := s.AccountHasTransactions(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return common.Conflictf("account %d has transactions; hide it instead of deleting", id)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return common.NotFoundf("account %d", id)
	}

	slog.Info("deleted account", "id", id)
	return nil
}

// GetMoneypotBalance returns the settled balance of the liquid pool: the
// sum of settled transaction amounts across accounts flagged in_moneypot.
// Hidden accounts still contribute; hiding only affects listings.
func (s *SQLiteStorage) GetMoneypotBalance(ctx context.Context) (decimal.Decimal, error) {
	return s.sumQuery(ctx, `
		SELECT SUM(t.amount_cents)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.in_moneypot = 1 AND t.status = 'settled'`)
}
