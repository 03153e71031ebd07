package rollup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	if _, ok := handlers["/login"]; !ok {
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"sessionId": "sess-1", "address": "0xrollup"})
		})
	}
	if _, ok := handlers["/logout"]; !ok {
		mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}
	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}
	return httptest.NewServer(mux)
}

func TestWithSessionLogsOutAfterFailure(t *testing.T) {
	var loggedOut bool
	server := newBackend(t, map[string]http.HandlerFunc{
		"/logout": func(w http.ResponseWriter, r *http.Request) {
			loggedOut = true
			assert.Equal(t, "sess-1", r.Header.Get("x-session-id"))
			w.WriteHeader(http.StatusOK)
		},
	})
	defer server.Close()

	client := New(server.URL, 5*time.Second, nil)
	err := client.WithSession(context.Background(), "deadbeef", func(s *Session) error {
		assert.Equal(t, "0xrollup", s.Address)
		return fmt.Errorf("operation failed")
	})

	require.Error(t, err)
	assert.True(t, loggedOut, "session must be torn down even when the operation fails")
}

func TestWithSessionLogsOutAfterContextCancelled(t *testing.T) {
	var loggedOut bool
	server := newBackend(t, map[string]http.HandlerFunc{
		"/logout": func(w http.ResponseWriter, r *http.Request) {
			loggedOut = true
			w.WriteHeader(http.StatusOK)
		},
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := New(server.URL, 5*time.Second, nil)
	err := client.WithSession(ctx, "deadbeef", func(s *Session) error {
		// The caller's context dies mid-operation, as during shutdown.
		cancel()
		return ctx.Err()
	})

	require.Error(t, err)
	assert.True(t, loggedOut, "teardown must not depend on the caller's context")
}

func TestDeposit(t *testing.T) {
	server := newBackend(t, map[string]http.HandlerFunc{
		"/deposit": func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, 2.0, payload["amount"])

			// The native token descriptor is fixed.
			token := payload["token"].(map[string]any)
			assert.Equal(t, 0.0, token["tokenIndex"])
			assert.Equal(t, 18.0, token["decimals"])
			assert.Equal(t, "0x0000000000000000000000000000000000000000", token["contractAddress"])

			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]string{"status": "pending", "txHash": "0xdeposit"},
			})
		},
	})
	defer server.Close()

	client := New(server.URL, 5*time.Second, nil)
	var result DepositResult
	err := client.WithSession(context.Background(), "deadbeef", func(s *Session) error {
		var err error
		result, err = s.Deposit(context.Background(), 2.0)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, "0xdeposit", result.TxHash)
	assert.Equal(t, "pending", result.Status)
}

func TestTransfer(t *testing.T) {
	server := newBackend(t, map[string]http.HandlerFunc{
		"/broadcast-transaction": func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, false, payload["isWithdrawal"])

			transfers := payload["transfers"].([]any)
			require.Len(t, transfers, 1)
			transfer := transfers[0].(map[string]any)
			assert.Equal(t, 0.5, transfer["amount"])
			assert.Equal(t, "0xdest", transfer["address"])

			_ = json.NewEncoder(w).Encode(map[string]string{"txTreeRoot": "0xtree"})
		},
	})
	defer server.Close()

	client := New(server.URL, 5*time.Second, nil)
	var txID string
	err := client.WithSession(context.Background(), "deadbeef", func(s *Session) error {
		var err error
		txID, err = s.Transfer(context.Background(), 0.5, "0xdest")
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, "0xtree", txID)
}

func TestBalances(t *testing.T) {
	server := newBackend(t, map[string]http.HandlerFunc{
		"/balances": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "sess-1", r.Header.Get("x-session-id"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"balances": []map[string]any{
					{"token": NativeToken, "amount": "1500000000000000000"},
				},
			})
		},
	})
	defer server.Close()

	client := New(server.URL, 5*time.Second, nil)
	var balances []Balance
	err := client.WithSession(context.Background(), "deadbeef", func(s *Session) error {
		var err error
		balances, err = s.Balances(context.Background())
		return err
	})

	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, NativeToken, balances[0].Token)
	assert.Equal(t, "1500000000000000000", balances[0].Amount)
}

func TestBackendErrorPayload(t *testing.T) {
	server := newBackend(t, map[string]http.HandlerFunc{
		"/withdraw": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "insufficient balance"})
		},
	})
	defer server.Close()

	client := New(server.URL, 5*time.Second, nil)
	err := client.WithSession(context.Background(), "deadbeef", func(s *Session) error {
		_, err := s.Withdraw(context.Background(), 10, "0xdest")
		return err
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient balance")
}

func TestLoginFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad key"})
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second, nil)
	err := client.WithSession(context.Background(), "deadbeef", func(s *Session) error {
		t.Fatal("fn must not run when login fails")
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}
