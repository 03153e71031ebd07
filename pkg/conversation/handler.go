// Package conversation drives the user-facing dialogue: event dispatch,
// registration, intent confirmation, balances, and contact management.
package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/voxwallet-hq/voxwallet/pkg/intent"
	"github.com/voxwallet-hq/voxwallet/pkg/locale"
	"github.com/voxwallet-hq/voxwallet/pkg/logger"
	"github.com/voxwallet-hq/voxwallet/pkg/metrics"
	"github.com/voxwallet-hq/voxwallet/pkg/models"
	"github.com/voxwallet-hq/voxwallet/pkg/session"
	"github.com/voxwallet-hq/voxwallet/pkg/speech"
)

// UserStore is the persistence surface the dialogue needs.
type UserStore interface {
	GetOrCreateUser(ctx context.Context, telegramID int64, username string) (models.User, error)
	UpdateUsername(ctx context.Context, telegramID int64, username string) error
	SetWalletDetails(ctx context.Context, telegramID int64, walletAddress string, keystore []byte) error
	Contacts(ctx context.Context, telegramID int64) ([]models.Contact, error)
	AddContact(ctx context.Context, telegramID int64, name, walletAddress string) error
	AddMessage(ctx context.Context, telegramID int64, content, role, mtype string) error
}

// IntentExtractor resolves free text into a structured intent. source is the
// audit marker for where the text came from.
type IntentExtractor interface {
	Extract(ctx context.Context, userID int64, rawText, source string, contacts []models.Contact) models.Intent
}

// Executor runs a confirmed intent and reports its outcome.
type Executor interface {
	Execute(ctx context.Context, user models.User, intent models.Intent) models.TransactionResult
}

// WalletCreator provisions a wallet for a new user.
type WalletCreator interface {
	CreateWallet() (address string, keystoreJSON []byte, err error)
}

// BalanceSource reads balances on both settlement layers.
type BalanceSource interface {
	PrimaryBalance(ctx context.Context, address string) (float64, error)
	RollupBalance(ctx context.Context, keystoreJSON []byte) (string, error)
}

// Handler is the dialogue engine. One instance serves all users; per-user
// state lives in the session store.
type Handler struct {
	transport   Transport
	users       UserStore
	sessions    session.Store
	extractor   IntentExtractor
	transcriber speech.Transcriber
	executor    Executor
	wallets     WalletCreator
	balances    BalanceSource
	catalog     *locale.Catalog
	pending     *pendingTracker
	logger      logger.Logger
}

// NewHandler wires the dialogue engine. All collaborators are required except
// the logger.
func NewHandler(transport Transport, users UserStore, sessions session.Store, extractor IntentExtractor, transcriber speech.Transcriber, exec Executor, wallets WalletCreator, balances BalanceSource, catalog *locale.Catalog, log logger.Logger) *Handler {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Handler{
		transport:   transport,
		users:       users,
		sessions:    sessions,
		extractor:   extractor,
		transcriber: transcriber,
		executor:    exec,
		wallets:     wallets,
		balances:    balances,
		catalog:     catalog,
		pending:     newPendingTracker(sessions.TTL()),
		logger:      log,
	}
}

// HandleEvent processes one inbound transport event end to end. Errors are
// reported to the user and logged; they are not returned to the transport
// loop.
func (h *Handler) HandleEvent(ctx context.Context, ev models.Event) {
	user, err := h.users.GetOrCreateUser(ctx, ev.UserID, ev.Username)
	if err != nil {
		h.logger.Error("failed to load user %d: %v", ev.UserID, err)
		h.say(ctx, ev.UserID, h.catalog.Get("main", "error_processing_request"))
		return
	}

	if ev.Username != "" && ev.Username != user.Username {
		if err := h.users.UpdateUsername(ctx, ev.UserID, ev.Username); err != nil {
			h.logger.Error("failed to refresh username for user %d: %v", ev.UserID, err)
		}
	}

	if !user.HasWallet() {
		user, err = h.register(ctx, user)
		if err != nil {
			h.logger.Error("failed to register user %d: %v", ev.UserID, err)
			h.say(ctx, ev.UserID, h.catalog.Get("main", "error_processing_request"))
			return
		}
	}

	switch ev.Kind {
	case models.EventButtonPress:
		h.handleButton(ctx, user, ev)
	case models.EventVoice:
		text, err := h.transcriber.Transcribe(ctx, ev.Audio)
		if err != nil {
			h.logger.Error("failed to transcribe voice from user %d: %v", user.TelegramID, err)
			h.say(ctx, user.TelegramID, h.catalog.Get("main", "error_processing_request"))
			return
		}
		h.handleText(ctx, user, text, intent.SourceVoice)
	case models.EventText:
		h.handleText(ctx, user, ev.Text, intent.SourceText)
	default:
		h.logger.Debug("ignoring event kind %q from user %d", ev.Kind, ev.UserID)
	}
}

// register provisions a wallet and greets the user with their address.
func (h *Handler) register(ctx context.Context, user models.User) (models.User, error) {
	address, keystoreJSON, err := h.wallets.CreateWallet()
	if err != nil {
		return user, fmt.Errorf("failed to create wallet: %v", err)
	}
	if err := h.users.SetWalletDetails(ctx, user.TelegramID, address, keystoreJSON); err != nil {
		return user, err
	}
	user.WalletAddress = address
	user.Keystore = keystoreJSON
	h.logger.Notice("created wallet %s for user %d", address, user.TelegramID)

	balance, err := h.balances.PrimaryBalance(ctx, address)
	if err != nil {
		h.logger.Error("failed to read balance for new user %d: %v", user.TelegramID, err)
		balance = 0
	}
	h.say(ctx, user.TelegramID, h.catalog.Format("main", "start_info", locale.Fields{
		"address": address,
		"balance": fmt.Sprintf("%g", balance),
	}))
	return user, nil
}

func (h *Handler) handleText(ctx context.Context, user models.User, text, source string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		h.handleCommand(ctx, user, text)
		return
	}

	sess, err := h.sessions.Get(ctx, user.TelegramID)
	if err != nil {
		h.logger.Error("failed to load session for user %d: %v", user.TelegramID, err)
		sess = models.IdleSession()
	}

	switch sess.State {
	case models.StateAwaitingContactName:
		h.contactNameGiven(ctx, user, sess, text)
	case models.StateAwaitingContactAddress:
		h.contactAddressGiven(ctx, user, sess, text)
	default:
		// Free text replaces any pending confirmation with a new request.
		h.handleIntent(ctx, user, text, source)
	}
}

func (h *Handler) handleCommand(ctx context.Context, user models.User, text string) {
	switch strings.Fields(text)[0] {
	case "/start":
		h.sendStartInfo(ctx, user)
	case "/balance":
		h.sendBalances(ctx, user)
	case "/contacts":
		h.sendContacts(ctx, user)
	default:
		h.say(ctx, user.TelegramID, h.catalog.Get("main", "invalid_action"))
	}
}

func (h *Handler) sendStartInfo(ctx context.Context, user models.User) {
	balance, err := h.balances.PrimaryBalance(ctx, user.WalletAddress)
	if err != nil {
		h.logger.Error("failed to read balance for user %d: %v", user.TelegramID, err)
		h.say(ctx, user.TelegramID, h.catalog.Format("balance", "balance_unavailable", locale.Fields{"error": err.Error()}))
		return
	}
	h.say(ctx, user.TelegramID, h.catalog.Format("main", "start_info", locale.Fields{
		"address": user.WalletAddress,
		"balance": fmt.Sprintf("%g", balance),
	}))
}

func (h *Handler) sendBalances(ctx context.Context, user models.User) {
	ethBalance, err := h.balances.PrimaryBalance(ctx, user.WalletAddress)
	if err != nil {
		h.say(ctx, user.TelegramID, h.catalog.Format("balance", "balance_unavailable", locale.Fields{"error": err.Error()}))
		return
	}
	rollupBalance, err := h.balances.RollupBalance(ctx, user.Keystore)
	if err != nil {
		h.say(ctx, user.TelegramID, h.catalog.Format("balance", "balance_unavailable", locale.Fields{"error": err.Error()}))
		return
	}

	lines := []string{
		h.catalog.Format("balance", "eth_balance", locale.Fields{"balance": fmt.Sprintf("%g", ethBalance)}),
		h.catalog.Format("balance", "rollup_balance", locale.Fields{"balance": rollupBalance}),
	}
	h.say(ctx, user.TelegramID, strings.Join(lines, "\n"))
}

func (h *Handler) sendContacts(ctx context.Context, user models.User) {
	contacts, err := h.users.Contacts(ctx, user.TelegramID)
	if err != nil {
		h.logger.Error("failed to load contacts for user %d: %v", user.TelegramID, err)
		h.say(ctx, user.TelegramID, h.catalog.Get("main", "error_processing_request"))
		return
	}

	keyboard := Keyboard{{{Label: h.catalog.Get("contact", "add_contact"), Data: ButtonAddContact}}}
	if len(contacts) == 0 {
		h.sayWithKeyboard(ctx, user.TelegramID, h.catalog.Get("contact", "no_contacts"), keyboard)
		return
	}

	var lines []string
	for _, contact := range contacts {
		lines = append(lines, h.catalog.Format("contact", "single_contact", locale.Fields{
			"name":    contact.Name,
			"address": contact.WalletAddress,
		}))
	}
	h.sayWithKeyboard(ctx, user.TelegramID, strings.Join(lines, "\n"), keyboard)
}

func (h *Handler) handleButton(ctx context.Context, user models.User, ev models.Event) {
	switch ev.Button {
	case ButtonConfirmYes, ButtonConfirmNo:
		h.confirmationReply(ctx, user, ev.Button == ButtonConfirmYes)
	case ButtonAddContact:
		h.startAddContact(ctx, user)
	default:
		h.logger.Debug("ignoring unknown button %q from user %d", ev.Button, user.TelegramID)
	}
}

// handleIntent runs extraction over free text and either prompts for
// confirmation or explains which part could not be resolved.
func (h *Handler) handleIntent(ctx context.Context, user models.User, text, source string) {
	contacts, err := h.users.Contacts(ctx, user.TelegramID)
	if err != nil {
		h.logger.Error("failed to load contacts for user %d: %v", user.TelegramID, err)
		h.say(ctx, user.TelegramID, h.catalog.Get("main", "error_processing_request"))
		return
	}

	resolved := h.extractor.Extract(ctx, user.TelegramID, text, source, contacts)
	if !resolved.Valid() {
		section, key := intent.MissingFieldReply(resolved)
		h.say(ctx, user.TelegramID, h.catalog.Get(section, key))
		return
	}

	h.promptConfirmation(ctx, user, resolved)
}

func (h *Handler) startAddContact(ctx context.Context, user models.User) {
	sess := models.Session{State: models.StateAwaitingContactName}
	if err := h.sessions.Set(ctx, user.TelegramID, sess); err != nil {
		h.logger.Error("failed to store session for user %d: %v", user.TelegramID, err)
		h.say(ctx, user.TelegramID, h.catalog.Get("main", "error_processing_request"))
		return
	}
	// Starting the contact flow discards any confirmation still pending.
	h.pending.resolved(user.TelegramID)
	h.say(ctx, user.TelegramID, h.catalog.Get("contact", "enter_name"))
}

func (h *Handler) contactNameGiven(ctx context.Context, user models.User, sess models.Session, name string) {
	sess.State = models.StateAwaitingContactAddress
	sess.ContactName = name
	if err := h.sessions.Set(ctx, user.TelegramID, sess); err != nil {
		h.logger.Error("failed to store session for user %d: %v", user.TelegramID, err)
		h.say(ctx, user.TelegramID, h.catalog.Get("main", "error_processing_request"))
		return
	}
	h.say(ctx, user.TelegramID, h.catalog.Get("contact", "enter_wallet"))
}

func (h *Handler) contactAddressGiven(ctx context.Context, user models.User, sess models.Session, address string) {
	if err := h.users.AddContact(ctx, user.TelegramID, sess.ContactName, address); err != nil {
		h.logger.Error("failed to save contact for user %d: %v", user.TelegramID, err)
		h.say(ctx, user.TelegramID, h.catalog.Get("main", "error_processing_request"))
		return
	}
	if err := h.sessions.Clear(ctx, user.TelegramID); err != nil {
		h.logger.Error("failed to clear session for user %d: %v", user.TelegramID, err)
	}
	h.say(ctx, user.TelegramID, h.catalog.Format("contact", "contact_saved", locale.Fields{"name": sess.ContactName}))
}

func (h *Handler) say(ctx context.Context, userID int64, text string) {
	h.sayWithKeyboard(ctx, userID, text, nil)
}

func (h *Handler) sayWithKeyboard(ctx context.Context, userID int64, text string, keyboard Keyboard) {
	if _, err := h.transport.Reply(ctx, userID, text, keyboard); err != nil {
		h.logger.Error("failed to send message to user %d: %v", userID, err)
	}
}

// auditFailure counts audit-log write errors without interrupting the turn.
func (h *Handler) auditFailure(userID int64, err error) {
	metrics.AuditLogFailures.Inc()
	h.logger.Error("failed to record message for user %d: %v", userID, err)
}
