// Package intent turns free-form user text into a structured wallet intent
// using the completion service.
package intent

import (
	"context"

	"github.com/voxwallet-hq/voxwallet/pkg/llm"
	"github.com/voxwallet-hq/voxwallet/pkg/logger"
	"github.com/voxwallet-hq/voxwallet/pkg/metrics"
	"github.com/voxwallet-hq/voxwallet/pkg/models"
)

// AuditLogger records raw transcripts and model responses for later review.
// Writes are best-effort; a failing audit log never fails the turn.
type AuditLogger interface {
	AddMessage(ctx context.Context, telegramID int64, content, role, mtype string) error
}

// Audit markers for where the user's text came from.
const (
	SourceText  = "user-text"
	SourceVoice = "transcribed-voice"
)

// Extractor resolves user text into intents.
type Extractor struct {
	completer llm.Completer
	audit     AuditLogger
	logger    logger.Logger
}

// NewExtractor creates an extractor. audit may be nil to disable history.
func NewExtractor(completer llm.Completer, audit AuditLogger, log logger.Logger) *Extractor {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Extractor{
		completer: completer,
		audit:     audit,
		logger:    log,
	}
}

// Extract asks the completion service to interpret rawText against the user's
// contact list. source is the audit marker for the text's origin, SourceText
// or SourceVoice. A transport or parse failure is not surfaced as an error to
// the caller's flow: the returned intent carries ActionError and the caller
// replies with the generic message.
func (e *Extractor) Extract(ctx context.Context, userID int64, rawText, source string, contacts []models.Contact) models.Intent {
	e.logMessage(ctx, userID, rawText, "user", source)

	messages := []llm.Message{
		{Role: "system", Content: BuildSystemPrompt(contacts)},
		{Role: "user", Content: rawText},
	}

	response, err := e.completer.Complete(ctx, messages)
	if err != nil {
		e.logger.Error("Intent extraction failed for user %d: %v", userID, err)
		metrics.ExtractionFailures.WithLabelValues("completion_error").Inc()
		return errorIntent()
	}

	e.logMessage(ctx, userID, response, "assistant", "ai-response")

	parsed, err := ParseResponse(response)
	if err != nil {
		e.logger.Error("Unparseable model output for user %d: %v", userID, err)
		metrics.ExtractionFailures.WithLabelValues("parse_error").Inc()
		return errorIntent()
	}

	metrics.IntentsExtracted.WithLabelValues(string(parsed.Action)).Inc()
	e.logger.Debug("Extracted intent for user %d: %s %s -> %s on %s",
		userID, parsed.Action, parsed.Amount, parsed.RecipientName, parsed.Network)
	return parsed
}

// MissingFieldReply maps an invalid intent onto the locale key of the most
// specific complaint: action first, then recipient, then amount.
func MissingFieldReply(i models.Intent) (section, key string) {
	switch {
	case i.Action == models.ActionError:
		return "main", "invalid_action"
	case i.RecipientName == models.ErrorSentinel || i.RecipientAddress == models.ErrorSentinel:
		return "main", "invalid_receiver"
	case i.Amount == models.ErrorSentinel:
		return "main", "invalid_amount"
	}
	return "main", "error_processing_request"
}

func (e *Extractor) logMessage(ctx context.Context, userID int64, content, role, mtype string) {
	if e.audit == nil {
		return
	}
	if err := e.audit.AddMessage(ctx, userID, content, role, mtype); err != nil {
		metrics.AuditLogFailures.Inc()
		e.logger.Debug("Audit log write failed for user %d: %v", userID, err)
	}
}
