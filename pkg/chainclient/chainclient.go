// Package chainclient talks to the primary chain over JSON-RPC.
package chainclient

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/voxwallet-hq/voxwallet/pkg/logger"
)

// transferGasLimit is the fixed gas limit for a plain value transfer.
const transferGasLimit = uint64(21000)

// Client contains the connection and gas settings for the primary chain.
type Client struct {
	RPCURL      string
	GasPrice    *big.Int // fixed gas price for value transfers, in wei
	MaxGasPrice *big.Int
	Timeout     time.Duration
	Client      *ethclient.Client
	logger      logger.Logger
}

// New connects to the chain RPC endpoint.
func New(rpcURL string, gasPriceGwei int64, maxGasPrice *big.Int, timeout time.Duration, log logger.Logger) (*Client, error) {
	if log == nil {
		log = &logger.EmptyLogger{}
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain RPC: %v", err)
	}

	gasPrice := new(big.Int).Mul(big.NewInt(gasPriceGwei), big.NewInt(1e9))
	if maxGasPrice != nil && maxGasPrice.Sign() > 0 && gasPrice.Cmp(maxGasPrice) > 0 {
		return nil, fmt.Errorf("configured gas price %s exceeds maximum %s", gasPrice, maxGasPrice)
	}

	return &Client{
		RPCURL:      rpcURL,
		GasPrice:    gasPrice,
		MaxGasPrice: maxGasPrice,
		Timeout:     timeout,
		Client:      client,
		logger:      log,
	}, nil
}

// Balance returns the account balance in wei.
func (c *Client) Balance(ctx context.Context, address string) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	balance, err := c.Client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %v", err)
	}
	return balance, nil
}

// SendNative signs and broadcasts a plain value transfer. The nonce and chain
// id are fetched fresh on every call; reusing a stale nonce corrupts the
// account state, so nothing here is cached.
func (c *Client) SendNative(ctx context.Context, key *ecdsa.PrivateKey, toAddress string, amountWei *big.Int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	from := crypto.PubkeyToAddress(key.PublicKey)

	nonce, err := c.Client.PendingNonceAt(ctx, from)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %v", err)
	}

	chainID, err := c.Client.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get chain id: %v", err)
	}

	tx := types.NewTransaction(
		nonce,
		common.HexToAddress(toAddress),
		amountWei,
		transferGasLimit,
		c.GasPrice,
		nil,
	)

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %v", err)
	}

	if err := c.Client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to broadcast transaction: %v", err)
	}

	hash := signedTx.Hash().Hex()
	c.logger.InfoWithNetwork(logger.Eth, "Broadcast transfer %s from %s (nonce %d)", hash, from.Hex(), nonce)
	return hash, nil
}

// EthToWei converts a native display amount into wei (18 decimals).
func EthToWei(amount float64) *big.Int {
	wei, _ := new(big.Float).Mul(big.NewFloat(amount), big.NewFloat(1e18)).Int(nil)
	return wei
}

// WeiToEth converts wei into the native display unit.
func WeiToEth(wei *big.Int) float64 {
	eth, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18)).Float64()
	return eth
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.Client.Close()
}
