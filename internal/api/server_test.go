package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/storage"
	"github.com/moneypot/moneypot/internal/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.SQLiteStorage) {
	t.Helper()
	store := testutil.NewTestStorage(t)
	ts := httptest.NewServer(NewServer(store).Router())
	t.Cleanup(ts.Close)
	return ts, store
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req, err := http.NewRequest(method, url, &reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDashboardEndpoint(t *testing.T) {
	ts, store := newTestServer(t)
	ctx := context.Background()

	atb := testutil.SeedAvailableToBudget(t, store)
	account := testutil.SeedAccount(t, store, "Checking")
	groceries := testutil.SeedCategory(t, store, "Groceries", decimal.Zero)

	testutil.SeedTransaction(t, store, account.ID, nil, "2026-03-01", decimal.NewFromInt(1000), model.StatusSettled)
	_, err := store.CreateTransfer(ctx, &model.CategoryTransfer{
		Date:           "2026-03-02",
		FromCategoryID: atb.ID,
		ToCategoryID:   groceries.ID,
		Amount:         decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/dashboard?today=2026-03-15", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2026-03", body["currentMonth"])

	categories, ok := body["categories"].([]any)
	require.True(t, ok)
	require.Len(t, categories, 1)
	line, ok := categories[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Groceries", line["name"])
	assert.InDelta(t, 200.0, line["available"], 0.001)

	t.Run("bad date is a 400", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/dashboard?today=garbage", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestATBEndpoint(t *testing.T) {
	ts, store := newTestServer(t)
	ctx := context.Background()

	atb := testutil.SeedAvailableToBudget(t, store)
	account := testutil.SeedAccount(t, store, "Checking")
	groceries := testutil.SeedCategory(t, store, "Groceries", decimal.Zero)

	testutil.SeedTransaction(t, store, account.ID, nil, "2026-03-01", decimal.NewFromInt(1000), model.StatusSettled)
	_, err := store.CreateTransfer(ctx, &model.CategoryTransfer{
		Date:           "2026-03-02",
		FromCategoryID: atb.ID,
		ToCategoryID:   groceries.ID,
		Amount:         decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/atb", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 800.0, body["balance"], 0.001)
	assert.InDelta(t, 1000.0, body["accountBalance"], 0.001)
	assert.InDelta(t, 200.0, body["allocatedOut"], 0.001)
}

func TestTransferEndpoints(t *testing.T) {
	ts, store := newTestServer(t)

	testutil.SeedAvailableToBudget(t, store)
	groceries := testutil.SeedCategory(t, store, "Groceries", decimal.Zero)

	t.Run("create from pool", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transfers", map[string]any{
			"toCategoryId": groceries.ID,
			"date":         "2026-03-01",
			"amount":       "200",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.InDelta(t, 200.0, body["amount"], 0.001)
		assert.EqualValues(t, groceries.ID, body["toCategoryId"])
	})

	t.Run("validation failure is a 400", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transfers", map[string]any{
			"toCategoryId": groceries.ID,
			"date":         "2026-03-01",
			"amount":       "-5",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["error"], "positive")
	})

	t.Run("delete", func(t *testing.T) {
		_, created := doJSON(t, http.MethodPost, ts.URL+"/api/transfers", map[string]any{
			"toCategoryId": groceries.ID,
			"date":         "2026-03-02",
			"amount":       "10",
		})
		id := int64(created["id"].(float64))

		resp, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/transfers/%d", ts.URL, id), nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/transfers/%d", ts.URL, id), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAccountEndpoints(t *testing.T) {
	ts, store := newTestServer(t)

	t.Run("create and list", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/accounts", map[string]any{
			"name":       "Checking",
			"type":       "bank",
			"inMoneypot": true,
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "Checking", body["name"])
	})

	t.Run("unknown type is a 400", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/accounts", map[string]any{
			"name": "Vault",
			"type": "mattress",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("deleting an account with transactions is a 409", func(t *testing.T) {
		account := testutil.SeedAccount(t, store, "Busy")
		testutil.SeedTransaction(t, store, account.ID, nil, "2026-03-01", decimal.NewFromInt(10), model.StatusSettled)

		resp, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/accounts/%d", ts.URL, account.ID), nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestCategoryDetailEndpoint(t *testing.T) {
	ts, store := newTestServer(t)

	testutil.SeedAvailableToBudget(t, store)
	groceries := testutil.SeedCategory(t, store, "Groceries", decimal.NewFromInt(400))

	resp, body := doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/categories/%d?today=2026-03-15", ts.URL, groceries.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Groceries", body["name"])
	assert.Equal(t, "2026-03", body["month"])

	t.Run("unknown category is a 404", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/categories/9999?today=2026-03-15", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("non-numeric id is a 400", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/categories/potato?today=2026-03-15", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestTransactionEndpoints(t *testing.T) {
	ts, store := newTestServer(t)

	checking := testutil.SeedAccount(t, store, "Checking")
	savings := testutil.SeedAccount(t, store, "Savings")

	t.Run("create", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", map[string]any{
			"accountId": checking.ID,
			"date":      "2026-03-01",
			"amount":    "-42.50",
			"status":    "settled",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.InDelta(t, -42.5, body["amount"], 0.001)
	})

	t.Run("account transfer pair", func(t *testing.T) {
		var reqBody bytes.Buffer
		require.NoError(t, json.NewEncoder(&reqBody).Encode(map[string]any{
			"fromAccountId": checking.ID,
			"toAccountId":   savings.ID,
			"date":          "2026-03-02",
			"amount":        "100",
		}))
		resp, err := http.Post(ts.URL+"/api/transactions/transfer", "application/json", &reqBody)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var legs []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&legs))
		require.Len(t, legs, 2)
		assert.InDelta(t, -100.0, legs[0]["amount"], 0.001)
		assert.InDelta(t, 100.0, legs[1]["amount"], 0.001)
	})

	t.Run("list by account", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/api/transactions?accountId=%d", ts.URL, savings.ID))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var txns []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&txns))
		assert.Len(t, txns, 1)
	})
}

func TestSettingsEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPut, ts.URL+"/api/settings/monthly_income", map[string]any{
		"value": "4200",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4200", body["value"])

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/settings/monthly_income", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4200", body["value"])
}
