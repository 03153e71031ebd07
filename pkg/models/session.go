package models

// SessionState is the conversational state of a single user.
type SessionState string

const (
	// StateIdle means no interaction is pending.
	StateIdle SessionState = "idle"
	// StateAwaitingConfirmation means a funds-moving intent is stored and
	// waiting for an explicit yes/no from the user.
	StateAwaitingConfirmation SessionState = "awaiting_confirmation"
	// StateAwaitingContactName and StateAwaitingContactAddress drive the
	// two-step add-contact flow.
	StateAwaitingContactName    SessionState = "awaiting_contact_name"
	StateAwaitingContactAddress SessionState = "awaiting_contact_address"
)

// Session is the per-user conversational state persisted between turns.
// A session in StateAwaitingConfirmation always carries a PendingIntent.
type Session struct {
	State         SessionState `json:"state"`
	PendingIntent *Intent      `json:"pending_intent,omitempty"`
	// ContactName holds the first answer of the add-contact flow.
	ContactName string `json:"contact_name,omitempty"`
	// PromptMessageID is the transport id of the confirmation prompt, so the
	// outcome can be rendered by editing it in place.
	PromptMessageID int `json:"prompt_message_id,omitempty"`
}

// IdleSession returns the zero state a user reverts to after TTL expiry.
func IdleSession() Session {
	return Session{State: StateIdle}
}
