package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/moneypot/moneypot/internal/common"
)

// SQLiteStorage implements the service.Storage interface using SQLite.
//
// All monetary amounts are persisted as integer cents, so SUM aggregates in
// the store are exact. Dates are persisted as zero-padded ISO strings
// ("YYYY-MM-DD" for transactions and transfers, "YYYY-MM" for month keys),
// so lexicographic comparison in SQL matches chronological order.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// toCents converts a decimal amount to integer cents for persistence. The
// store only accepts amounts with at most two decimal places; anything finer
// would silently lose money on the way in.
func toCents(d decimal.Decimal) (int64, error) {
	c := d.Shift(2)
	if !c.IsInteger() {
		return 0, common.Validationf("amount %s has more than two decimal places", d.String())
	}
	return c.IntPart(), nil
}

// fromCents converts persisted integer cents back to a decimal amount.
func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// sumQuery runs a single-value SUM query and returns the result as a
// decimal, treating an empty result set as zero.
func (s *SQLiteStorage) sumQuery(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}

	var cents sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&cents); err != nil {
		return decimal.Zero, fmt.Errorf("failed to run sum query: %w", err)
	}
	if !cents.Valid {
		return decimal.Zero, nil
	}
	return fromCents(cents.Int64), nil
}
