package conversation

import "context"

// Button press payloads understood by the dispatcher.
const (
	ButtonConfirmYes = "confirm_yes"
	ButtonConfirmNo  = "confirm_no"
	ButtonAddContact = "add_contact"
)

// Button is a single inline keyboard button. Data buttons round-trip through
// the transport as button-press events; URL buttons open externally.
type Button struct {
	Label string
	Data  string
	URL   string
}

// Keyboard is a grid of buttons attached to a message. A nil keyboard means
// plain text.
type Keyboard [][]Button

// Transport delivers outbound messages to the user. Implementations adapt a
// concrete messaging platform; the rest of the pipeline never sees one.
type Transport interface {
	// Reply sends a new message to the user and returns its message id.
	Reply(ctx context.Context, userID int64, text string, keyboard Keyboard) (int, error)
	// EditMessage rewrites a previously sent message in place.
	EditMessage(ctx context.Context, userID int64, messageID int, text string, keyboard Keyboard) error
}

func confirmKeyboard() Keyboard {
	return Keyboard{{
		{Label: "Yes", Data: ButtonConfirmYes},
		{Label: "No", Data: ButtonConfirmNo},
	}}
}

func explorerKeyboard(label, url string) Keyboard {
	return Keyboard{{{Label: label, URL: url}}}
}
