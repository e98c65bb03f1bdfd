package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneypot/moneypot/internal/model"
)

func TestSettings(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	value, err := store.GetSetting(ctx, model.SettingMonthlyIncome)
	require.NoError(t, err)
	assert.Empty(t, value, "unset setting reads as empty")

	require.NoError(t, store.SetSetting(ctx, model.SettingMonthlyIncome, "4200"))
	value, err = store.GetSetting(ctx, model.SettingMonthlyIncome)
	require.NoError(t, err)
	assert.Equal(t, "4200", value)

	// Setting again overwrites.
	require.NoError(t, store.SetSetting(ctx, model.SettingMonthlyIncome, "4500"))
	value, err = store.GetSetting(ctx, model.SettingMonthlyIncome)
	require.NoError(t, err)
	assert.Equal(t, "4500", value)
}
