package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "lon...", truncate("longerstring", 6))
	assert.Equal(t, "lo", truncate("longerstring", 2))
}

func TestLoginCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "Secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_credentials","message":"invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok-123","user":{"id":"u1"}}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "login", "--email", "a@b.co", "--password", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok-123\n", out)

	_, err = execute(t, "--url", srv.URL, "login", "--email", "a@b.co", "--password", "nope")
	assert.EqualError(t, err, "invalid_credentials (status 401): invalid email or password")
}

func TestLedgerConsistencyCmd(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr error
	}{
		{
			name:   "consistent",
			status: http.StatusOK,
			body:   `{"total_accounts":2,"reconciled_accounts":2,"ledger_consistent":true,"discrepancies":[]}`,
			want:   "Consistency check PASSED",
		},
		{
			name:   "drift",
			status: http.StatusConflict,
			body: `{"total_accounts":2,"reconciled_accounts":1,"ledger_consistent":true,"discrepancies":[
				{"account_id":"acc-9","recorded_balance":"90.00","calculated_balance":"70.00","difference":"20.00"}]}`,
			want:    "acc-9 recorded=90.00 calculated=70.00 difference=20.00",
			wantErr: errCheckFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			out, err := execute(t, "--url", srv.URL, "--token", "tok", "ledger", "consistency")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestLedgerReconcileCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/accounts/acc-1/reconcile", r.URL.Path)
		_, _ = w.Write([]byte(`{"account_id":"acc-1","recorded_balance":"90.00","calculated_balance":"70.00",
			"difference":"20.00","entry_count":3,"is_reconciled":true,"repaired":true}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "ledger", "reconcile", "acc-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Calculated: 70.00")
	assert.Contains(t, out, "Repaired:   true")

	_, err = execute(t, "--url", srv.URL, "ledger", "reconcile")
	assert.Error(t, err)
}

func TestStatementCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/v1/accounts/acc-1/transactions", r.URL.Path)
		assert.Equal(t, "debit", q.Get("type"))
		assert.Equal(t, "amount", q.Get("sort_by"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Empty(t, q.Get("category"))

		_, _ = w.Write([]byte(`{
			"transactions":[{"id":"e1","type":"debit","category":"Groceries","amount":"40.00",
				"opening_balance":"100.00","closing_balance":"60.00","entry_date":"2024-03-01T00:00:00Z",
				"description":"weekly shop"}],
			"pagination":{"current_page":2,"total_pages":2,"total_count":11,"limit":10},
			"summary":{"total_credit":"0.00","credit_count":0,"total_debit":"40.00","debit_count":1,"net_flow":"-40.00"},
			"current_balance":"60.00"}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "statement", "acc-1", "--type", "debit", "--sort", "amount", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-01")
	assert.Contains(t, out, "weekly shop")
	assert.Contains(t, out, "Page 2 of 2 (11 transactions)")
	assert.Contains(t, out, "Net: -40.00")
	assert.Contains(t, out, "Current balance: 60.00")
}

func TestStatementCmd_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"account not found"}`))
	}))
	defer srv.Close()

	_, err := execute(t, "--url", srv.URL, "statement", "missing")
	assert.EqualError(t, err, "not_found (status 404): account not found")
}

func TestMigrateCmd(t *testing.T) {
	origUp, origDown := migrateUp, migrateDown
	defer func() { migrateUp, migrateDown = origUp, origDown }()

	var calls []string
	migrateUp = func(url string, _ zerolog.Logger) error {
		calls = append(calls, "up:"+url)
		return nil
	}
	migrateDown = func(url string, _ zerolog.Logger) error {
		calls = append(calls, "down:"+url)
		return errors.New("dirty database")
	}

	_, err := execute(t, "migrate", "up", "--database-url", "postgres://x")
	require.NoError(t, err)

	_, err = execute(t, "migrate", "down", "--database-url", "postgres://x")
	assert.EqualError(t, err, "dirty database")

	assert.Equal(t, []string{"up:postgres://x", "down:postgres://x"}, calls)
}

func TestMigrateCmd_RequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "migrate", "up")
	assert.ErrorContains(t, err, "DATABASE_URL is required")
}
