// Package wallet creates and opens encrypted keystores. Decrypted key
// material is scoped to a single call and never persisted or logged.
package wallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// Manager encrypts and decrypts wallet keystores with a fixed passphrase.
type Manager struct {
	passphrase string
}

// NewManager creates a keystore manager.
func NewManager(passphrase string) (*Manager, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("keystore passphrase is required")
	}
	return &Manager{passphrase: passphrase}, nil
}

// CreateWallet generates a fresh key and returns its address together with
// the encrypted keystore JSON.
func (m *Manager) CreateWallet() (address string, keystoreJSON []byte, err error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate key: %v", err)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate key id: %v", err)
	}

	key := &keystore.Key{
		Id:         id,
		Address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		PrivateKey: privateKey,
	}

	encrypted, err := keystore.EncryptKey(key, m.passphrase, keystore.StandardScryptN, keystore.StandardScryptP)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encrypt keystore: %v", err)
	}
	return key.Address.Hex(), encrypted, nil
}

// DecryptKey opens the keystore JSON and returns the private key. Callers
// must not retain the key beyond the operation that needed it.
func (m *Manager) DecryptKey(keystoreJSON []byte) (*ecdsa.PrivateKey, error) {
	key, err := keystore.DecryptKey(keystoreJSON, m.passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore: %v", err)
	}
	return key.PrivateKey, nil
}
