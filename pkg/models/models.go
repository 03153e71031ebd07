package models

import "time"

// User is a registered wallet owner keyed by the transport identity.
type User struct {
	TelegramID    int64
	Username      string
	WalletAddress string
	Keystore      []byte // encrypted keystore JSON, never decrypted outside execution
	CreatedAt     time.Time
}

// HasWallet reports whether a wallet has been provisioned for the user.
func (u User) HasWallet() bool {
	return u.WalletAddress != ""
}

// Contact is a name/address pair scoped to a user.
type Contact struct {
	TelegramID    int64
	Name          string
	WalletAddress string
}

// TransactionStatus is the terminal outcome of an execution attempt.
type TransactionStatus string

const (
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

// TransactionResult is the normalized outcome of a transfer, deposit or
// withdrawal. TxID is a transaction hash on the primary chain or a tree-root
// identifier on the rollup.
type TransactionResult struct {
	Status TransactionStatus
	TxID   string
	Error  string
}

// EventKind discriminates inbound transport events.
type EventKind string

const (
	EventText        EventKind = "text"
	EventVoice       EventKind = "voice"
	EventButtonPress EventKind = "button"
)

// Event is a single inbound message from the conversation transport.
type Event struct {
	UserID    int64
	Username  string
	Kind      EventKind
	Text      string // set for EventText
	Audio     []byte // set for EventVoice, ogg/opus container
	Button    string // set for EventButtonPress
	MessageID int
}
