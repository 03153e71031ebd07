package conversation

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/voxwallet-hq/voxwallet/pkg/chainclient"
	"github.com/voxwallet-hq/voxwallet/pkg/rollup"
	"github.com/voxwallet-hq/voxwallet/pkg/wallet"
)

// LayerBalances reads balances from the primary chain and the rollup. It is
// the production BalanceSource.
type LayerBalances struct {
	chain   *chainclient.Client
	rollup  *rollup.Client
	wallets *wallet.Manager
}

func NewLayerBalances(chain *chainclient.Client, rollupClient *rollup.Client, wallets *wallet.Manager) *LayerBalances {
	return &LayerBalances{chain: chain, rollup: rollupClient, wallets: wallets}
}

// PrimaryBalance returns the native balance in whole ether.
func (b *LayerBalances) PrimaryBalance(ctx context.Context, address string) (float64, error) {
	wei, err := b.chain.Balance(ctx, address)
	if err != nil {
		return 0, err
	}
	return chainclient.WeiToEth(wei), nil
}

// RollupBalance logs in with the user's key and returns the native-token
// balance rendered in whole units.
func (b *LayerBalances) RollupBalance(ctx context.Context, keystoreJSON []byte) (string, error) {
	key, err := b.wallets.DecryptKey(keystoreJSON)
	if err != nil {
		return "", fmt.Errorf("could not unlock wallet: %v", err)
	}

	var rendered string
	err = b.rollup.WithSession(ctx, hex.EncodeToString(crypto.FromECDSA(key)), func(s *rollup.Session) error {
		balances, err := s.Balances(ctx)
		if err != nil {
			return err
		}
		rendered = "0"
		for _, balance := range balances {
			if balance.Token.TokenIndex == rollup.NativeToken.TokenIndex {
				rendered = renderUnits(balance.Amount, balance.Token.Decimals)
				break
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return rendered, nil
}

// renderUnits converts a raw integer amount into whole units with the given
// number of decimals. Unparseable amounts are passed through untouched.
func renderUnits(raw string, decimals int) string {
	value, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return raw
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	units := new(big.Float).Quo(new(big.Float).SetInt(value), scale)
	return units.Text('f', -1)
}
