package models

// ErrorSentinel is the reserved field value meaning the model could not
// determine the field. It is distinct from a parse failure, which yields
// ActionError for the whole intent.
const ErrorSentinel = "ERROR"

// Action is the kind of funds movement a user asked for.
type Action string

const (
	ActionTransfer Action = "TRANSFER"
	ActionDeposit  Action = "DEPOSIT"
	ActionWithdraw Action = "WITHDRAW"
	ActionError    Action = "ERROR"
)

// Network identifies the settlement layer for an intent.
type Network string

const (
	// NetworkEthereum is the primary chain, reached over JSON-RPC.
	NetworkEthereum Network = "ETHEREUM"
	// NetworkIntmax is the rollup, reached through the session backend.
	NetworkIntmax Network = "INTMAX"
)

// Intent is the structured result of interpreting a user's request.
// Fields carry ErrorSentinel when the model could not resolve them.
type Intent struct {
	Action           Action  `json:"action"`
	RecipientName    string  `json:"recipient_name"`
	RecipientAddress string  `json:"recipient_address"`
	Amount           string  `json:"amount"` // "<number> <unit>", e.g. "0.5 ETH"
	Network          Network `json:"network"`
}

// Valid reports whether the intent resolved every field.
func (i Intent) Valid() bool {
	return i.Action != ActionError &&
		i.RecipientName != ErrorSentinel &&
		i.RecipientAddress != ErrorSentinel &&
		i.Amount != ErrorSentinel
}
