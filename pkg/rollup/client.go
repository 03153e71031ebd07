// Package rollup provides a client for the rollup backend service. Every
// funds operation runs inside a short-lived authenticated session obtained
// from POST /login and torn down with POST /logout.
package rollup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voxwallet-hq/voxwallet/pkg/logger"
)

// logoutTimeout bounds the detached teardown request.
const logoutTimeout = 10 * time.Second

// NativeToken is the fixed descriptor for the native asset. The backend only
// ever moves this token; multi-asset support is out of scope.
var NativeToken = Token{
	TokenIndex:      0,
	Decimals:        18,
	ContractAddress: "0x0000000000000000000000000000000000000000",
}

// Token describes an asset to the rollup backend.
type Token struct {
	TokenIndex      int    `json:"tokenIndex"`
	Decimals        int    `json:"decimals"`
	ContractAddress string `json:"contractAddress"`
}

// Client talks to the rollup backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// New creates a rollup client.
func New(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log,
	}
}

// Session is an authenticated connection to the rollup backend, valid until
// Logout. It is scoped to one WithSession call; the session id is never
// shared across operations.
type Session struct {
	client  *Client
	id      string
	Address string
}

// WithSession logs in with the given key, runs fn, and guarantees logout even
// when fn fails. The decrypted key only transits here as the login payload.
func (c *Client) WithSession(ctx context.Context, ethPrivateKeyHex string, fn func(s *Session) error) error {
	session, err := c.Login(ctx, ethPrivateKeyHex)
	if err != nil {
		return err
	}
	defer func() {
		// Teardown must not inherit a cancelled request context, or the
		// backend session would leak on shutdown mid-operation.
		logoutCtx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
		defer cancel()
		if err := session.Logout(logoutCtx); err != nil {
			c.logger.ErrorWithNetwork(logger.Imx, "Rollup logout failed: %v", err)
		}
	}()

	return fn(session)
}

// Login opens a backend session with the Ethereum private key.
func (c *Client) Login(ctx context.Context, ethPrivateKeyHex string) (*Session, error) {
	var decoded struct {
		SessionID string `json:"sessionId"`
		Address   string `json:"address"`
	}
	err := c.post(ctx, "", "/login", map[string]string{"eth_private_key": ethPrivateKeyHex}, &decoded)
	if err != nil {
		return nil, fmt.Errorf("rollup login failed: %v", err)
	}
	return &Session{client: c, id: decoded.SessionID, Address: decoded.Address}, nil
}

// Logout tears down the backend session.
func (s *Session) Logout(ctx context.Context) error {
	err := s.client.post(ctx, s.id, "/logout", nil, nil)
	if err != nil {
		return fmt.Errorf("rollup logout failed: %v", err)
	}
	s.id = ""
	return nil
}

// Balance is a single entry from GET /balances.
type Balance struct {
	Token  Token  `json:"token"`
	Amount string `json:"amount"`
}

// Balances returns the token balances of the logged-in account.
func (s *Session) Balances(ctx context.Context) ([]Balance, error) {
	var decoded struct {
		Balances []Balance `json:"balances"`
	}
	if err := s.client.get(ctx, s.id, "/balances", &decoded); err != nil {
		return nil, fmt.Errorf("failed to get rollup balances: %v", err)
	}
	return decoded.Balances, nil
}

// DepositResult is the normalized outcome of POST /deposit.
type DepositResult struct {
	Status string `json:"status"`
	TxHash string `json:"txHash"`
}

// Deposit moves amount of the native asset from the primary chain into the
// rollup account.
func (s *Session) Deposit(ctx context.Context, amount float64) (DepositResult, error) {
	payload := map[string]any{
		"amount": amount,
		"token":  NativeToken,
	}
	var decoded struct {
		Result DepositResult `json:"result"`
	}
	if err := s.client.post(ctx, s.id, "/deposit", payload, &decoded); err != nil {
		return DepositResult{}, fmt.Errorf("rollup deposit failed: %v", err)
	}
	return decoded.Result, nil
}

// Withdraw moves amount of the native asset out of the rollup to an address
// on the primary chain. The returned identifier is the transfer tree root.
func (s *Session) Withdraw(ctx context.Context, amount float64, address string) (string, error) {
	payload := map[string]any{
		"amount":  amount,
		"token":   NativeToken,
		"address": address,
	}
	var decoded struct {
		Tx struct {
			TransferTreeRoot string `json:"transferTreeRoot"`
		} `json:"tx"`
	}
	if err := s.client.post(ctx, s.id, "/withdraw", payload, &decoded); err != nil {
		return "", fmt.Errorf("rollup withdraw failed: %v", err)
	}
	return decoded.Tx.TransferTreeRoot, nil
}

// Transfer sends amount of the native asset to another rollup account via
// POST /broadcast-transaction. The returned identifier is the tx tree root.
func (s *Session) Transfer(ctx context.Context, amount float64, address string) (string, error) {
	payload := map[string]any{
		"transfers": []map[string]any{
			{
				"amount":  amount,
				"token":   NativeToken,
				"address": address,
			},
		},
		"isWithdrawal": false,
	}
	var decoded struct {
		TxTreeRoot string `json:"txTreeRoot"`
	}
	if err := s.client.post(ctx, s.id, "/broadcast-transaction", payload, &decoded); err != nil {
		return "", fmt.Errorf("rollup transfer failed: %v", err)
	}
	return decoded.TxTreeRoot, nil
}

// post sends a JSON request and decodes the response into out (may be nil).
func (c *Client) post(ctx context.Context, sessionID, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	return c.do(req, sessionID, out)
}

func (c *Client) get(ctx context.Context, sessionID, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	return c.do(req, sessionID, out)
}

func (c *Client) do(req *http.Request, sessionID string, out any) error {
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("x-session-id", sessionID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %v", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Error("Failed to close response body: %v", err)
		}
	}(resp.Body)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		var backendErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(bodyBytes, &backendErr); err == nil && backendErr.Error != "" {
			return fmt.Errorf("backend error (status %d): %s", resp.StatusCode, backendErr.Error)
		}
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}
