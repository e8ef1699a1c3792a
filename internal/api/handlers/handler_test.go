package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirosato/finance-ledger/backend/internal/app"
	"github.com/hirosato/finance-ledger/backend/internal/common/config"
	"github.com/hirosato/finance-ledger/backend/internal/domain/reconciler"
	"github.com/hirosato/finance-ledger/backend/internal/domain/tenant"
	"github.com/hirosato/finance-ledger/backend/internal/platform/storage"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newHandler(t *testing.T) *Handler {
	t.Helper()
	stores, err := storage.Open(context.Background(), &config.Config{StorageDriver: config.StorageMemory}, reconciler.New(slog.Default()), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })
	return NewHandler(app.FromStores(stores, slog.Default()))
}

func call(t *testing.T, h *Handler, method, path, body string, query map[string]string) (int, envelope) {
	t.Helper()
	ctx := tenant.WithContext(context.Background(), &tenant.TenantContext{UserID: "user-1"})
	resp, err := h.Route(ctx, slog.Default(), events.APIGatewayProxyRequest{
		HTTPMethod:            method,
		Path:                  path,
		Body:                  body,
		QueryStringParameters: query,
	})
	require.NoError(t, err)

	var env envelope
	if resp.Body != "" {
		require.NoError(t, json.Unmarshal([]byte(resp.Body), &env))
	}
	return resp.StatusCode, env
}

func id(t *testing.T, data json.RawMessage, path ...string) string {
	t.Helper()
	var v map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &v))
	for _, p := range path[:len(path)-1] {
		require.NoError(t, json.Unmarshal(v[p], &v))
	}
	var s string
	require.NoError(t, json.Unmarshal(v[path[len(path)-1]], &s))
	return s
}

func TestTransactionLifecycleKeepsBalance(t *testing.T) {
	h := newHandler(t)

	status, env := call(t, h, http.MethodPost, "/accounts", `{"name":"Checking","accountType":"checking","initialBalance":"1000"}`, nil)
	require.Equal(t, http.StatusCreated, status)
	accountID := id(t, env.Data, "accountId")

	status, env = call(t, h, http.MethodPost, "/categories", `{"name":"Groceries","categoryType":"expense","color":"#EF4444"}`, nil)
	require.Equal(t, http.StatusCreated, status)
	categoryID := id(t, env.Data, "categoryId")

	status, env = call(t, h, http.MethodPost, "/transactions",
		`{"accountId":"`+accountID+`","categoryId":"`+categoryID+`","transactionType":"expense","amount":"50.25","date":"2024-06-01"}`, nil)
	require.Equal(t, http.StatusCreated, status)
	txID := id(t, env.Data, "transaction", "transactionId")

	status, env = call(t, h, http.MethodGet, "/accounts/"+accountID, "", nil)
	require.Equal(t, http.StatusOK, status)
	var acc struct {
		CurrentBalance string `json:"currentBalance"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &acc))
	assert.Equal(t, "949.75", acc.CurrentBalance)

	status, _ = call(t, h, http.MethodPut, "/transactions/"+txID, `{"amount":"10"}`, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, h, http.MethodGet, "/accounts/"+accountID+"/audit", "", nil)
	require.Equal(t, http.StatusOK, status)
	var audit struct {
		Consistent bool   `json:"consistent"`
		Stored     string `json:"stored"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &audit))
	assert.True(t, audit.Consistent)
	assert.Equal(t, "990", audit.Stored)

	status, env = call(t, h, http.MethodDelete, "/accounts/"+accountID, "", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "REFERENCE_PROTECTED", env.Error)

	status, _ = call(t, h, http.MethodDelete, "/transactions/"+txID, "", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, h, http.MethodDelete, "/accounts/"+accountID, "", nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestListTransactionsValidatesQuery(t *testing.T) {
	h := newHandler(t)

	status, env := call(t, h, http.MethodGet, "/transactions", "", map[string]string{"limit": "abc"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error)

	status, env = call(t, h, http.MethodGet, "/transactions", "", map[string]string{"startDate": "2024-06-30", "endDate": "2024-06-01"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error)

	status, _ = call(t, h, http.MethodGet, "/transactions", "", map[string]string{"type": "expense"})
	assert.Equal(t, http.StatusOK, status)
}

func TestRoute(t *testing.T) {
	h := newHandler(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown path", http.MethodGet, "/journals", "", http.StatusNotFound, "NOT_FOUND"},
		{"wrong method", http.MethodPatch, "/accounts", "", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{"bad json", http.MethodPost, "/accounts", "{", http.StatusBadRequest, "INVALID_INPUT"},
		{"empty body", http.MethodPost, "/transactions", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"missing account", http.MethodGet, "/accounts/nope", "", http.StatusNotFound, "NOT_FOUND"},
		{"missing transaction", http.MethodDelete, "/transactions/nope", "", http.StatusNotFound, "NOT_FOUND"},
		{"dashboard", http.MethodGet, "/dashboard", "", http.StatusOK, ""},
		{"owner audit", http.MethodGet, "/audit", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, h, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, env.Error)
		})
	}
}

func TestRouteWithoutOwner(t *testing.T) {
	h := newHandler(t)
	resp, err := h.Route(context.Background(), slog.Default(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/accounts"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
