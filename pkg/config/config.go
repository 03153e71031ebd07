package config

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/voxwallet-hq/voxwallet/pkg/logger"
)

// Config holds the configuration for the wallet agent service
type Config struct {
	// Completion service
	OpenAIAPIKey string
	OpenAIModel  string
	LLMTimeout   time.Duration

	// Chain and rollup backends
	EthRPCURL     string
	RollupURL     string
	GasPriceGwei  int64
	MaxGasPrice   *big.Int
	ChainTimeout  time.Duration
	RollupTimeout time.Duration

	// Stores
	RedisURL   string
	SessionTTL time.Duration
	MySQLDSN   string

	// Wallet keystore passphrase
	EncryptionPassphrase string

	// Strings catalog
	LocalePath string

	MetricsPort    string
	WorkerCount    int
	CircuitBreaker CircuitBreakerConfig
	LoggerConfig   LoggerConfig
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled        bool
	Threshold      int
	WindowDuration time.Duration
	ResetTimeout   time.Duration
}

// LoggerConfig holds the configuration for logging
type LoggerConfig struct {
	Level    logger.Level
	Coloring bool
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	llmTimeout, err := GetEnvLLMTimeout()
	if err != nil {
		return nil, err
	}

	chainTimeout, err := GetEnvChainTimeout()
	if err != nil {
		return nil, err
	}

	rollupTimeout, err := GetEnvRollupTimeout()
	if err != nil {
		return nil, err
	}

	sessionTTL, err := GetEnvSessionTTL()
	if err != nil {
		return nil, err
	}

	gasPriceGwei, err := GetEnvGasPriceGwei()
	if err != nil {
		return nil, err
	}

	maxGasPrice, err := GetEnvMaxGasPrice()
	if err != nil {
		return nil, err
	}

	metricsPort, err := GetEnvMetricsPort()
	if err != nil {
		return nil, err
	}

	workerCount, err := GetEnvWorkerCount()
	if err != nil {
		return nil, err
	}

	cbEnabled, err := GetEnvCircuitBreakerEnabled()
	if err != nil {
		return nil, err
	}

	cbThreshold, err := GetEnvCircuitBreakerThreshold()
	if err != nil {
		return nil, err
	}

	cbWindow, err := GetEnvCircuitBreakerWindow()
	if err != nil {
		return nil, err
	}

	cbReset, err := GetEnvCircuitBreakerReset()
	if err != nil {
		return nil, err
	}

	logLevel, err := GetEnvLogLevel()
	if err != nil {
		return nil, err
	}

	logColoring, err := GetEnvLogColoring()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:          GetEnvOpenAIModel(),
		LLMTimeout:           llmTimeout,
		EthRPCURL:            os.Getenv("ETH_RPC_URL"),
		RollupURL:            os.Getenv("INTMAX_URL"),
		GasPriceGwei:         gasPriceGwei,
		MaxGasPrice:          maxGasPrice,
		ChainTimeout:         chainTimeout,
		RollupTimeout:        rollupTimeout,
		RedisURL:             GetEnvRedisURL(),
		SessionTTL:           sessionTTL,
		MySQLDSN:             os.Getenv("MYSQL_DSN"),
		EncryptionPassphrase: os.Getenv("ENCRYPTION_PASSWORD"),
		LocalePath:           GetEnvLocalePath(),
		MetricsPort:          metricsPort,
		WorkerCount:          workerCount,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:        cbEnabled,
			Threshold:      cbThreshold,
			WindowDuration: cbWindow,
			ResetTimeout:   cbReset,
		},
		LoggerConfig: LoggerConfig{
			Level:    logLevel,
			Coloring: logColoring,
		},
	}

	// Validate required environment variables
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	if cfg.EthRPCURL == "" {
		return fmt.Errorf("ETH_RPC_URL environment variable is required")
	}
	if cfg.RollupURL == "" {
		return fmt.Errorf("INTMAX_URL environment variable is required")
	}
	if cfg.MySQLDSN == "" {
		return fmt.Errorf("MYSQL_DSN environment variable is required")
	}
	if cfg.EncryptionPassphrase == "" {
		return fmt.Errorf("ENCRYPTION_PASSWORD environment variable is required")
	}
	return nil
}
