package conversation

import (
	"context"
	"fmt"

	"github.com/voxwallet-hq/voxwallet/pkg/locale"
	"github.com/voxwallet-hq/voxwallet/pkg/metrics"
	"github.com/voxwallet-hq/voxwallet/pkg/models"
)

const explorerTxURL = "https://etherscan.io/tx/%s"

// promptConfirmation renders the intent back to the user with a yes/no
// keyboard and parks it in the session. Nothing is executed until an explicit
// yes arrives.
func (h *Handler) promptConfirmation(ctx context.Context, user models.User, resolved models.Intent) {
	text := h.confirmationText(resolved)
	messageID, err := h.transport.Reply(ctx, user.TelegramID, text, confirmKeyboard())
	if err != nil {
		h.logger.Error("failed to send confirmation prompt to user %d: %v", user.TelegramID, err)
		return
	}

	sess := models.Session{
		State:           models.StateAwaitingConfirmation,
		PendingIntent:   &resolved,
		PromptMessageID: messageID,
	}
	if err := h.sessions.Set(ctx, user.TelegramID, sess); err != nil {
		h.logger.Error("failed to store pending intent for user %d: %v", user.TelegramID, err)
		h.say(ctx, user.TelegramID, h.catalog.Get("main", "error_processing_request"))
		return
	}
	h.pending.promptShown(user.TelegramID)
}

func (h *Handler) confirmationText(resolved models.Intent) string {
	fields := locale.Fields{
		"amount":  resolved.Amount,
		"address": resolved.RecipientAddress,
		"name":    resolved.RecipientName,
		"network": string(resolved.Network),
	}
	switch resolved.Action {
	case models.ActionDeposit:
		return h.catalog.Format("transactions", "confirm_deposit", fields)
	case models.ActionWithdraw:
		return h.catalog.Format("transactions", "confirm_withdraw", fields)
	default:
		return h.catalog.Format("transactions", "confirm_transfer", fields)
	}
}

// confirmationReply resolves a pending confirmation. The session is cleared
// before anything executes, so a duplicate or stale reply finds no pending
// intent and is answered with "nothing to confirm".
func (h *Handler) confirmationReply(ctx context.Context, user models.User, confirmed bool) {
	sess, err := h.sessions.Get(ctx, user.TelegramID)
	if err != nil {
		h.logger.Error("failed to load session for user %d: %v", user.TelegramID, err)
		h.say(ctx, user.TelegramID, h.catalog.Get("main", "error_processing_request"))
		return
	}
	if sess.State != models.StateAwaitingConfirmation || sess.PendingIntent == nil {
		h.pending.resolved(user.TelegramID)
		h.say(ctx, user.TelegramID, h.catalog.Get("transactions", "nothing_to_confirm"))
		return
	}

	if err := h.sessions.Clear(ctx, user.TelegramID); err != nil {
		h.logger.Error("failed to clear session for user %d: %v", user.TelegramID, err)
		h.say(ctx, user.TelegramID, h.catalog.Get("main", "error_processing_request"))
		return
	}
	h.pending.resolved(user.TelegramID)

	if !confirmed {
		metrics.Confirmations.WithLabelValues("declined").Inc()
		h.renderOutcome(ctx, user, sess.PromptMessageID, h.catalog.Get("transactions", "no_confirmation"), nil)
		return
	}

	metrics.Confirmations.WithLabelValues("confirmed").Inc()
	pending := *sess.PendingIntent
	result := h.executor.Execute(ctx, user, pending)

	if result.Status != models.StatusSuccess {
		text := h.catalog.Format("transactions", "problems_with_transactions", locale.Fields{"error": result.Error})
		h.renderOutcome(ctx, user, sess.PromptMessageID, text, nil)
		return
	}

	text := h.catalog.Format("transactions", "success_transaction", locale.Fields{"txid": result.TxID})
	var keyboard Keyboard
	if pending.Action == models.ActionTransfer && pending.Network == models.NetworkEthereum {
		keyboard = explorerKeyboard("View on explorer", fmt.Sprintf(explorerTxURL, result.TxID))
	}
	h.renderOutcome(ctx, user, sess.PromptMessageID, text, keyboard)
}

// renderOutcome replaces the confirmation prompt with the outcome, falling
// back to a fresh message when the edit fails. The outcome is also written to
// the audit log.
func (h *Handler) renderOutcome(ctx context.Context, user models.User, messageID int, text string, keyboard Keyboard) {
	if err := h.transport.EditMessage(ctx, user.TelegramID, messageID, text, keyboard); err != nil {
		h.logger.Error("failed to edit message %d for user %d: %v", messageID, user.TelegramID, err)
		h.sayWithKeyboard(ctx, user.TelegramID, text, keyboard)
	}
	if err := h.users.AddMessage(ctx, user.TelegramID, text, "assistant", "ai-response"); err != nil {
		h.auditFailure(user.TelegramID, err)
	}
}
