package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create migrated test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err, "failed to create storage")

	require.NoError(t, store.Migrate(context.Background()), "failed to migrate")
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestToCents(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{name: "whole dollars", amount: "12", want: 1200},
		{name: "two decimal places", amount: "12.34", want: 1234},
		{name: "negative", amount: "-0.05", want: -5},
		{name: "zero", amount: "0", want: 0},
		{name: "sub-cent precision rejected", amount: "1.005", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cents, err := toCents(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cents)
		})
	}
}

func TestFromCents(t *testing.T) {
	assert.True(t, decimal.RequireFromString("12.34").Equal(fromCents(1234)))
	assert.True(t, decimal.RequireFromString("-0.05").Equal(fromCents(-5)))
	assert.True(t, decimal.Zero.Equal(fromCents(0)))
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)

	// A second run must be a no-op, not a failure.
	require.NoError(t, store.Migrate(context.Background()))
}
