package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxwallet-hq/voxwallet/pkg/circuitbreaker"
)

func TestHealthAndReadiness(t *testing.T) {
	healthy := true
	probes := map[string]Probe{
		"sessions": func(_ context.Context) error {
			if !healthy {
				return fmt.Errorf("connection refused")
			}
			return nil
		},
	}

	server := httptest.NewServer(NewServer("0", probes, nil, nil).Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	healthy = false
	resp, err = http.Get(server.URL + "/ready")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "sessions not ready")
}

func TestStatusAndCircuitReset(t *testing.T) {
	cb := circuitbreaker.NewCircuitBreaker(true, 1, time.Minute, time.Hour, nil)
	cb.RecordFailure()
	require.True(t, cb.IsOpen())

	breakers := map[string]*circuitbreaker.CircuitBreaker{"INTMAX": cb}
	server := httptest.NewServer(NewServer("0", nil, breakers, nil).Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/status")
	require.NoError(t, err)
	var status map[string]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.Equal(t, "open", status["INTMAX"]["circuit"])

	// Reset requires POST and a known network.
	resp, err = http.Get(server.URL + "/circuit/reset?network=INTMAX")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(server.URL+"/circuit/reset?network=ETHEREUM", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(server.URL+"/circuit/reset?network=INTMAX", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, cb.IsOpen())
}

func TestMetricsAuth(t *testing.T) {
	srv := NewServer("0", nil, nil, nil)
	srv.metricsAPIKey = "secret"
	server := httptest.NewServer(srv.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/metrics", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
