package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/moneypot/moneypot/internal/common"
	"github.com/moneypot/moneypot/internal/config"
	"github.com/moneypot/moneypot/internal/service"
	"github.com/moneypot/moneypot/internal/storage"
)

// initStorage opens the configured database, brings its schema current, and
// bootstraps the Available to Budget pool category.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("could not open database at %s", dbPath), err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, common.NewUserError("database migration failed", err)
	}

	if _, err := store.EnsureAvailableToBudget(ctx); err != nil {
		_ = store.Close()
		return nil, common.NewUserError("could not create the Available to Budget category", err)
	}

	return store, nil
}

// todayString is the current local date in ledger format.
func todayString() string {
	return time.Now().Format("2006-01-02")
}

// parseID parses a numeric id argument.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

// parseAmount parses a positive or negative decimal money argument.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return amount, nil
}

// formatMoney renders an amount with two decimal places for display.
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
