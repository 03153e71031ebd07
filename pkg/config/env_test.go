package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxwallet-hq/voxwallet/pkg/logger"
)

func TestGetEnvSessionTTL(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		ttl, err := GetEnvSessionTTL()
		require.NoError(t, err)
		assert.Equal(t, time.Duration(DefaultSessionTTL)*time.Second, ttl)
	})

	t.Run("override", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "60")
		ttl, err := GetEnvSessionTTL()
		require.NoError(t, err)
		assert.Equal(t, time.Minute, ttl)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "soon")
		_, err := GetEnvSessionTTL()
		require.Error(t, err)
	})

	t.Run("non positive", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "0")
		_, err := GetEnvSessionTTL()
		require.Error(t, err)
	})
}

func TestGetEnvGasPriceGwei(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		gwei, err := GetEnvGasPriceGwei()
		require.NoError(t, err)
		assert.Equal(t, int64(DefaultGasPriceGwei), gwei)
	})

	t.Run("override", func(t *testing.T) {
		t.Setenv("GAS_PRICE_GWEI", "25")
		gwei, err := GetEnvGasPriceGwei()
		require.NoError(t, err)
		assert.Equal(t, int64(25), gwei)
	})

	t.Run("negative", func(t *testing.T) {
		t.Setenv("GAS_PRICE_GWEI", "-5")
		_, err := GetEnvGasPriceGwei()
		require.Error(t, err)
	})
}

func TestGetEnvMaxGasPrice(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		maxGasPrice, err := GetEnvMaxGasPrice()
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxGasPrice, maxGasPrice.String())
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("MAX_GAS_PRICE", "lots")
		_, err := GetEnvMaxGasPrice()
		require.Error(t, err)
	})
}

func TestGetEnvWorkerCount(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		workers, err := GetEnvWorkerCount()
		require.NoError(t, err)
		assert.Equal(t, DefaultWorkerCount, workers)
	})

	t.Run("override", func(t *testing.T) {
		t.Setenv("WORKER_COUNT", "8")
		workers, err := GetEnvWorkerCount()
		require.NoError(t, err)
		assert.Equal(t, 8, workers)
	})

	t.Run("zero", func(t *testing.T) {
		t.Setenv("WORKER_COUNT", "0")
		_, err := GetEnvWorkerCount()
		require.Error(t, err)
	})
}

func TestGetEnvLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected logger.Level
		isErr    bool
	}{
		{name: "empty defaults to info", value: "", expected: logger.InfoLevel},
		{name: "debug", value: "debug", expected: logger.DebugLevel},
		{name: "notice", value: "notice", expected: logger.NoticeLevel},
		{name: "error", value: "error", expected: logger.ErrorLevel},
		{name: "unknown", value: "loud", isErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tc.value)
			level, err := GetEnvLogLevel()
			if tc.isErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}
