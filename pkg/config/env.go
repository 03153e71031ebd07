package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/voxwallet-hq/voxwallet/pkg/logger"
)

const (
	// DefaultOpenAIModel is the completion model used for intent extraction
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultLLMTimeout defines the completion request timeout in seconds
	DefaultLLMTimeout = 30

	// DefaultChainTimeout defines the chain RPC timeout in seconds
	DefaultChainTimeout = 15

	// DefaultRollupTimeout defines the rollup backend timeout in seconds
	DefaultRollupTimeout = 30

	// DefaultSessionTTL defines how long a pending confirmation survives, in seconds
	DefaultSessionTTL = 300

	// DefaultGasPriceGwei defines the gas price for plain value transfers
	DefaultGasPriceGwei = 10

	// DefaultMaxGasPrice defines the maximum gas price for transactions in wei
	DefaultMaxGasPrice = "100000000000" // 100 Gwei

	// DefaultMetricsPort defines the default port for the metrics server
	DefaultMetricsPort = "8080"

	// DefaultRedisURL defines the default session store address
	DefaultRedisURL = "redis://localhost:6379/0"

	// DefaultLocalePath defines the default strings catalog location
	DefaultLocalePath = "locales/en.yaml"

	// DefaultCircuitBreakerEnabled defines whether the circuit breaker is enabled
	DefaultCircuitBreakerEnabled = true

	// DefaultCircuitBreakerThreshold defines the number of failures before the circuit breaker trips
	DefaultCircuitBreakerThreshold = 5

	// DefaultCircuitBreakerWindow defines the time window for the circuit breaker in seconds
	DefaultCircuitBreakerWindow = 60

	// DefaultCircuitBreakerReset defines the reset timeout for the circuit breaker in seconds
	DefaultCircuitBreakerReset = 120

	// DefaultWorkerCount defines the number of event worker goroutines
	DefaultWorkerCount = 4
)

// GetEnvOpenAIModel returns the completion model from environment variables
func GetEnvOpenAIModel() string {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		return DefaultOpenAIModel
	}
	return model
}

// GetEnvRedisURL returns the session store URL from environment variables
func GetEnvRedisURL() string {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		return DefaultRedisURL
	}
	return url
}

// GetEnvLocalePath returns the strings catalog path from environment variables
func GetEnvLocalePath() string {
	path := os.Getenv("LOCALE_PATH")
	if path == "" {
		return DefaultLocalePath
	}
	return path
}

// getEnvSeconds parses an integer-seconds environment variable with a default
func getEnvSeconds(name string, def int) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return time.Duration(def) * time.Second, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %s, must be an integer", name, raw)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", name)
	}
	return time.Duration(seconds) * time.Second, nil
}

// GetEnvLLMTimeout returns the completion request timeout from environment variables
func GetEnvLLMTimeout() (time.Duration, error) {
	return getEnvSeconds("LLM_TIMEOUT", DefaultLLMTimeout)
}

// GetEnvChainTimeout returns the chain RPC timeout from environment variables
func GetEnvChainTimeout() (time.Duration, error) {
	return getEnvSeconds("CHAIN_TIMEOUT", DefaultChainTimeout)
}

// GetEnvRollupTimeout returns the rollup backend timeout from environment variables
func GetEnvRollupTimeout() (time.Duration, error) {
	return getEnvSeconds("ROLLUP_TIMEOUT", DefaultRollupTimeout)
}

// GetEnvSessionTTL returns the confirmation session TTL from environment variables
func GetEnvSessionTTL() (time.Duration, error) {
	return getEnvSeconds("SESSION_TTL", DefaultSessionTTL)
}

// GetEnvGasPriceGwei returns the fixed gas price for value transfers from environment variables
func GetEnvGasPriceGwei() (int64, error) {
	raw := os.Getenv("GAS_PRICE_GWEI")
	if raw == "" {
		return DefaultGasPriceGwei, nil
	}
	gwei, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid GAS_PRICE_GWEI value: %s, must be an integer", raw)
	}
	if gwei <= 0 {
		return 0, fmt.Errorf("GAS_PRICE_GWEI must be greater than 0")
	}
	return gwei, nil
}

// GetEnvMaxGasPrice returns the maximum gas price from environment variables
func GetEnvMaxGasPrice() (*big.Int, error) {
	maxGasPrice := os.Getenv("MAX_GAS_PRICE")
	if maxGasPrice == "" {
		maxGasPrice = DefaultMaxGasPrice
	}

	maxGasPriceBig := new(big.Int)
	if _, ok := maxGasPriceBig.SetString(maxGasPrice, 10); !ok {
		return nil, fmt.Errorf("invalid MAX_GAS_PRICE value: %s, must be a valid integer string", maxGasPrice)
	}

	if maxGasPriceBig.Sign() < 0 {
		return nil, fmt.Errorf("MAX_GAS_PRICE must be greater than or equal to 0")
	}
	return maxGasPriceBig, nil
}

// GetEnvMetricsPort returns the metrics server port from environment variables
func GetEnvMetricsPort() (string, error) {
	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		return DefaultMetricsPort, nil
	}

	// Validate port format
	if _, err := strconv.Atoi(metricsPort); err != nil {
		return "", fmt.Errorf("invalid METRICS_PORT value: %s, must be a valid integer", metricsPort)
	}
	return metricsPort, nil
}

// GetEnvCircuitBreakerEnabled returns whether the circuit breaker is enabled from environment variables
func GetEnvCircuitBreakerEnabled() (bool, error) {
	enabled := os.Getenv("CIRCUIT_BREAKER_ENABLED")
	if enabled == "" {
		return DefaultCircuitBreakerEnabled, nil
	}

	if enabled == "true" {
		return true, nil
	} else if enabled == "false" {
		return false, nil
	}

	return false, fmt.Errorf("invalid CIRCUIT_BREAKER_ENABLED value: %s, must be 'true' or 'false'", enabled)
}

// GetEnvCircuitBreakerThreshold returns the circuit breaker threshold from environment variables
func GetEnvCircuitBreakerThreshold() (int, error) {
	threshold := os.Getenv("CIRCUIT_BREAKER_THRESHOLD")
	if threshold == "" {
		return DefaultCircuitBreakerThreshold, nil
	}

	thresholdInt, err := strconv.Atoi(threshold)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_THRESHOLD value: %s, must be an integer", threshold)
	}
	if thresholdInt <= 0 {
		return 0, fmt.Errorf("CIRCUIT_BREAKER_THRESHOLD must be greater than 0")
	}
	return thresholdInt, nil
}

// GetEnvCircuitBreakerWindow returns the circuit breaker window duration from environment variables
func GetEnvCircuitBreakerWindow() (time.Duration, error) {
	window := os.Getenv("CIRCUIT_BREAKER_WINDOW")
	if window == "" {
		return DefaultCircuitBreakerWindow * time.Second, nil
	}

	parsed, err := time.ParseDuration(window)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_WINDOW value: %s, must be a valid duration string", window)
	}
	return parsed, nil
}

// GetEnvCircuitBreakerReset returns the circuit breaker reset timeout from environment variables
func GetEnvCircuitBreakerReset() (time.Duration, error) {
	reset := os.Getenv("CIRCUIT_BREAKER_RESET")
	if reset == "" {
		return DefaultCircuitBreakerReset * time.Second, nil
	}

	parsed, err := time.ParseDuration(reset)
	if err != nil {
		return 0, fmt.Errorf("invalid CIRCUIT_BREAKER_RESET value: %s, must be a valid duration string", reset)
	}
	return parsed, nil
}

// GetEnvWorkerCount returns the event worker pool size from environment variables
func GetEnvWorkerCount() (int, error) {
	workers := os.Getenv("WORKER_COUNT")
	if workers == "" {
		return DefaultWorkerCount, nil
	}

	workersInt, err := strconv.Atoi(workers)
	if err != nil {
		return 0, fmt.Errorf("invalid WORKER_COUNT value: %s, must be an integer", workers)
	}
	if workersInt <= 0 {
		return 0, fmt.Errorf("WORKER_COUNT must be greater than 0")
	}
	return workersInt, nil
}

// GetEnvLogLevel returns the logging level from environment variables
func GetEnvLogLevel() (logger.Level, error) {
	level := os.Getenv("LOG_LEVEL")
	switch level {
	case "", "info":
		return logger.InfoLevel, nil
	case "debug":
		return logger.DebugLevel, nil
	case "notice":
		return logger.NoticeLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL value: %s, must be one of debug, info, notice, error", level)
}

// GetEnvLogColoring returns whether log coloring is enabled from environment variables
func GetEnvLogColoring() (bool, error) {
	coloring := os.Getenv("LOG_COLORING")
	if coloring == "" {
		return true, nil
	}
	if coloring == "true" {
		return true, nil
	} else if coloring == "false" {
		return false, nil
	}
	return false, fmt.Errorf("invalid LOG_COLORING value: %s, must be 'true' or 'false'", coloring)
}
