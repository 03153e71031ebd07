package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxwallet-hq/voxwallet/pkg/models"
	"github.com/voxwallet-hq/voxwallet/pkg/rollup"
	"github.com/voxwallet-hq/voxwallet/pkg/wallet"
)

func newTestExecutor(t *testing.T, rollupClient *rollup.Client) (*Executor, models.User) {
	t.Helper()

	wallets, err := wallet.NewManager("test-passphrase")
	require.NoError(t, err)
	address, keystoreJSON, err := wallets.CreateWallet()
	require.NoError(t, err)

	exec := New(nil, rollupClient, wallets, true, 3, time.Minute, time.Minute, nil)
	user := models.User{TelegramID: 42, WalletAddress: address, Keystore: keystoreJSON}
	return exec, user
}

func TestExecuteRoutingErrors(t *testing.T) {
	tests := []struct {
		name    string
		action  models.Action
		network models.Network
	}{
		{name: "deposit on primary chain", action: models.ActionDeposit, network: models.NetworkEthereum},
		{name: "withdraw on primary chain", action: models.ActionWithdraw, network: models.NetworkEthereum},
		{name: "error action", action: models.ActionError, network: models.NetworkEthereum},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exec, user := newTestExecutor(t, nil)
			result := exec.Execute(context.Background(), user, models.Intent{
				Action:           tc.action,
				RecipientName:    "Kate",
				RecipientAddress: "0xabc",
				Amount:           "1 ETH",
				Network:          tc.network,
			})

			assert.Equal(t, models.StatusFailed, result.Status)
			assert.Contains(t, result.Error, "unsupported operation")
			assert.Empty(t, result.TxID)
		})
	}
}

func TestExecuteInvalidAmount(t *testing.T) {
	exec, user := newTestExecutor(t, nil)
	result := exec.Execute(context.Background(), user, models.Intent{
		Action:           models.ActionWithdraw,
		RecipientName:    "self",
		RecipientAddress: "0xabc",
		Amount:           "ERROR",
		Network:          models.NetworkIntmax,
	})

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "invalid amount")
}

func TestExecuteCircuitBreakerOpen(t *testing.T) {
	exec, user := newTestExecutor(t, nil)

	breaker := exec.Breakers()[string(models.NetworkIntmax)]
	for i := 0; i < 3; i++ {
		breaker.RecordFailure()
	}
	require.True(t, breaker.IsOpen())

	result := exec.Execute(context.Background(), user, models.Intent{
		Action:           models.ActionWithdraw,
		RecipientName:    "self",
		RecipientAddress: "0xabc",
		Amount:           "1 ETH",
		Network:          models.NetworkIntmax,
	})

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "temporarily unavailable")
}

func TestExecuteLockedWallet(t *testing.T) {
	exec, user := newTestExecutor(t, nil)
	user.Keystore = []byte("not a keystore")

	result := exec.Execute(context.Background(), user, models.Intent{
		Action:           models.ActionWithdraw,
		RecipientName:    "self",
		RecipientAddress: "0xabc",
		Amount:           "1 ETH",
		Network:          models.NetworkIntmax,
	})

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "could not unlock wallet")
}

func TestExecuteWithdrawViaRollup(t *testing.T) {
	var sawLogin, sawLogout bool
	var withdrawSessionID string

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.NotEmpty(t, payload["eth_private_key"])
		sawLogin = true
		_ = json.NewEncoder(w).Encode(map[string]string{"sessionId": "sess-1", "address": "0xrollup"})
	})
	mux.HandleFunc("/withdraw", func(w http.ResponseWriter, r *http.Request) {
		withdrawSessionID = r.Header.Get("x-session-id")
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, 1.5, payload["amount"])
		assert.Equal(t, "0xdest", payload["address"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"fee": "100",
			"tx":  map[string]string{"transferTreeRoot": "0xroot"},
		})
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		sawLogout = true
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rollupClient := rollup.New(server.URL, 5*time.Second, nil)
	exec, user := newTestExecutor(t, rollupClient)

	result := exec.Execute(context.Background(), user, models.Intent{
		Action:           models.ActionWithdraw,
		RecipientName:    "self",
		RecipientAddress: "0xdest",
		Amount:           "1.5 ETH",
		Network:          models.NetworkIntmax,
	})

	require.Equal(t, models.StatusSuccess, result.Status, "withdraw failed: %s", result.Error)
	assert.Equal(t, "0xroot", result.TxID)
	assert.True(t, sawLogin)
	assert.True(t, sawLogout)
	assert.Equal(t, "sess-1", withdrawSessionID)
}

func TestExecuteDepositReportedFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"sessionId": "sess-1", "address": "0xrollup"})
	})
	mux.HandleFunc("/deposit", func(w http.ResponseWriter, r *http.Request) {
		// The backend answers 200 but reports the failure in the payload.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]string{"status": "failed", "txHash": ""},
		})
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rollupClient := rollup.New(server.URL, 5*time.Second, nil)
	exec, user := newTestExecutor(t, rollupClient)

	result := exec.Execute(context.Background(), user, models.Intent{
		Action:           models.ActionDeposit,
		RecipientName:    "self",
		RecipientAddress: "0xdest",
		Amount:           "1 ETH",
		Network:          models.NetworkIntmax,
	})

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "failed")
	assert.Empty(t, result.TxID)
}

func TestExecuteRollupFailureTripsBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "backend down"})
	}))
	defer server.Close()

	rollupClient := rollup.New(server.URL, 5*time.Second, nil)
	exec, user := newTestExecutor(t, rollupClient)

	intent := models.Intent{
		Action:           models.ActionDeposit,
		RecipientName:    "self",
		RecipientAddress: "0xdest",
		Amount:           "1 ETH",
		Network:          models.NetworkIntmax,
	}

	breaker := exec.Breakers()[string(models.NetworkIntmax)]
	for i := 0; i < 3; i++ {
		result := exec.Execute(context.Background(), user, intent)
		assert.Equal(t, models.StatusFailed, result.Status)
		assert.Contains(t, result.Error, "backend down")
	}
	assert.True(t, breaker.IsOpen())
}
