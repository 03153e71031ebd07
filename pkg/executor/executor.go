// Package executor turns confirmed intents into on-chain or rollup
// transactions. Every path returns a normalized TransactionResult; errors
// never escape the Execute boundary.
package executor

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/voxwallet-hq/voxwallet/pkg/chainclient"
	"github.com/voxwallet-hq/voxwallet/pkg/circuitbreaker"
	"github.com/voxwallet-hq/voxwallet/pkg/logger"
	"github.com/voxwallet-hq/voxwallet/pkg/metrics"
	"github.com/voxwallet-hq/voxwallet/pkg/models"
	"github.com/voxwallet-hq/voxwallet/pkg/rollup"
	"github.com/voxwallet-hq/voxwallet/pkg/wallet"
)

// route labels used in logs and metrics.
const (
	routeTransferL1     = "transfer_l1"
	routeTransferRollup = "transfer_rollup"
	routeDeposit        = "deposit"
	routeWithdraw       = "withdraw"
)

// Executor dispatches confirmed intents by (action, network).
type Executor struct {
	chain    *chainclient.Client
	rollup   *rollup.Client
	wallets  *wallet.Manager
	breakers map[models.Network]*circuitbreaker.CircuitBreaker
	logger   logger.Logger
}

// New creates an executor over the given backends. A circuit breaker is kept
// per network so a failing rollup backend does not block primary-chain sends.
func New(chain *chainclient.Client, rollupClient *rollup.Client, wallets *wallet.Manager, cbEnabled bool, cbThreshold int, cbWindow, cbReset time.Duration, log logger.Logger) *Executor {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Executor{
		chain:   chain,
		rollup:  rollupClient,
		wallets: wallets,
		breakers: map[models.Network]*circuitbreaker.CircuitBreaker{
			models.NetworkEthereum: circuitbreaker.NewCircuitBreaker(cbEnabled, cbThreshold, cbWindow, cbReset, log),
			models.NetworkIntmax:   circuitbreaker.NewCircuitBreaker(cbEnabled, cbThreshold, cbWindow, cbReset, log),
		},
		logger: log,
	}
}

// Breakers exposes the per-network circuit breakers, keyed by network name,
// for status reporting and admin resets.
func (e *Executor) Breakers() map[string]*circuitbreaker.CircuitBreaker {
	out := make(map[string]*circuitbreaker.CircuitBreaker, len(e.breakers))
	for network, cb := range e.breakers {
		out[string(network)] = cb
	}
	return out
}

// Execute runs the transaction a confirmed intent describes and returns its
// outcome. It never panics past this boundary and never returns an error;
// all failures land in the result.
func (e *Executor) Execute(ctx context.Context, user models.User, intent models.Intent) (result models.TransactionResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("execution panic for user %d: %v", user.TelegramID, r)
			result = failed(fmt.Sprintf("internal error: %v", r))
		}
	}()

	route, network, ok := resolveRoute(intent)
	if !ok {
		metrics.RoutingErrors.Inc()
		e.logger.Error("no execution route for action=%s network=%s (user %d)", intent.Action, intent.Network, user.TelegramID)
		return failed(fmt.Sprintf("unsupported operation %s on %s", intent.Action, intent.Network))
	}

	breaker := e.breakers[intent.Network]
	if breaker.IsOpen() {
		e.logger.ErrorWithNetwork(network, "circuit breaker open, refusing %s for user %d", route, user.TelegramID)
		return failed("service temporarily unavailable, try again later")
	}

	// Only the numeric value matters until multi-asset support lands.
	amount, _, err := ParseAmount(intent.Amount)
	if err != nil {
		return failed(err.Error())
	}

	key, err := e.wallets.DecryptKey(user.Keystore)
	if err != nil {
		e.logger.Error("failed to unlock wallet for user %d: %v", user.TelegramID, err)
		return failed("could not unlock wallet")
	}

	start := time.Now()
	var txID string
	switch route {
	case routeTransferL1:
		txID, err = e.chain.SendNative(ctx, key, intent.RecipientAddress, chainclient.EthToWei(amount))
	case routeTransferRollup:
		keyHex := hex.EncodeToString(crypto.FromECDSA(key))
		err = e.rollup.WithSession(ctx, keyHex, func(s *rollup.Session) error {
			txID, err = s.Transfer(ctx, amount, intent.RecipientAddress)
			return err
		})
	case routeDeposit:
		keyHex := hex.EncodeToString(crypto.FromECDSA(key))
		err = e.rollup.WithSession(ctx, keyHex, func(s *rollup.Session) error {
			res, depErr := s.Deposit(ctx, amount)
			if depErr != nil {
				return depErr
			}
			// The backend reports the outcome in the payload even on HTTP 200.
			if !strings.EqualFold(res.Status, string(models.StatusSuccess)) {
				return fmt.Errorf("deposit reported status %q", res.Status)
			}
			txID = res.TxHash
			return nil
		})
	case routeWithdraw:
		keyHex := hex.EncodeToString(crypto.FromECDSA(key))
		err = e.rollup.WithSession(ctx, keyHex, func(s *rollup.Session) error {
			txID, err = s.Withdraw(ctx, amount, intent.RecipientAddress)
			return err
		})
	}
	metrics.ExecutionDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

	if err != nil {
		breaker.RecordFailure()
		metrics.ExecutionsTotal.WithLabelValues(route, string(models.StatusFailed)).Inc()
		e.logger.ErrorWithNetwork(network, "%s failed for user %d: %v", route, user.TelegramID, err)
		return failed(err.Error())
	}

	breaker.Reset()
	metrics.ExecutionsTotal.WithLabelValues(route, string(models.StatusSuccess)).Inc()
	e.logger.NoticeWithNetwork(network, "%s succeeded for user %d: %s", route, user.TelegramID, txID)
	return models.TransactionResult{Status: models.StatusSuccess, TxID: txID}
}

// resolveRoute maps (action, network) to an execution route. Deposits and
// withdrawals only make sense against the rollup.
func resolveRoute(intent models.Intent) (route string, network logger.Network, ok bool) {
	switch {
	case intent.Action == models.ActionTransfer && intent.Network == models.NetworkEthereum:
		return routeTransferL1, logger.Eth, true
	case intent.Action == models.ActionTransfer && intent.Network == models.NetworkIntmax:
		return routeTransferRollup, logger.Imx, true
	case intent.Action == models.ActionDeposit && intent.Network == models.NetworkIntmax:
		return routeDeposit, logger.Imx, true
	case intent.Action == models.ActionWithdraw && intent.Network == models.NetworkIntmax:
		return routeWithdraw, logger.Imx, true
	}
	return "", logger.None, false
}

func failed(reason string) models.TransactionResult {
	return models.TransactionResult{Status: models.StatusFailed, Error: reason}
}
