package intent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/voxwallet-hq/voxwallet/pkg/models"
)

// linePrefix strips the "1. " style numbering the grammar asks for. Models
// occasionally drop it, so it is optional.
var linePrefix = regexp.MustCompile(`^\d+\.\s*`)

// ParseResponse parses the model output into an intent. The format is strictly
// positional: exactly four lines (action, recipient, amount, network). Any
// structural deviation is a hard parse failure and yields an intent with
// Action set to ActionError.
func ParseResponse(raw string) (models.Intent, error) {
	lines := splitLines(raw)
	if len(lines) != 4 {
		return errorIntent(), fmt.Errorf("expected 4 lines, got %d", len(lines))
	}

	action, err := parseAction(lines[0])
	if err != nil {
		return errorIntent(), err
	}

	name, address, err := parseRecipient(lines[1])
	if err != nil {
		return errorIntent(), err
	}

	amount := lines[2]
	if amount == "" {
		return errorIntent(), fmt.Errorf("empty amount line")
	}

	return models.Intent{
		Action:           action,
		RecipientName:    name,
		RecipientAddress: address,
		Amount:           amount,
		Network:          parseNetwork(lines[3]),
	}, nil
}

// splitLines trims the response and drops the optional numbering prefixes.
// Blank lines are discarded so a trailing newline does not fail the parse.
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, linePrefix.ReplaceAllString(line, ""))
	}
	return lines
}

func parseAction(line string) (models.Action, error) {
	switch models.Action(strings.ToUpper(line)) {
	case models.ActionTransfer:
		return models.ActionTransfer, nil
	case models.ActionDeposit:
		return models.ActionDeposit, nil
	case models.ActionWithdraw:
		return models.ActionWithdraw, nil
	case models.ActionError:
		return models.ActionError, nil
	}
	return models.ActionError, fmt.Errorf("unknown action %q", line)
}

// parseRecipient splits the NAME;ADDRESS line. The bare sentinel marks both
// fields unresolved; a malformed pair is a parse failure, not a sentinel.
func parseRecipient(line string) (name, address string, err error) {
	if line == models.ErrorSentinel {
		return models.ErrorSentinel, models.ErrorSentinel, nil
	}

	parts := strings.SplitN(line, ";", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed recipient line %q", line)
	}
	name = strings.TrimSpace(parts[0])
	address = strings.TrimSpace(parts[1])
	if name == "" || address == "" {
		return "", "", fmt.Errorf("malformed recipient line %q", line)
	}
	return name, address, nil
}

// parseNetwork maps the network line onto one of the two supported networks.
// Anything that is not recognisably the primary chain falls back to the
// rollup; unknown networks are never rejected.
func parseNetwork(line string) models.Network {
	switch strings.ToUpper(strings.TrimSpace(line)) {
	case "ETHEREUM", "ETH", "L1", "MAINNET", "SEPOLIA":
		return models.NetworkEthereum
	}
	return models.NetworkIntmax
}

func errorIntent() models.Intent {
	return models.Intent{
		Action:           models.ActionError,
		RecipientName:    models.ErrorSentinel,
		RecipientAddress: models.ErrorSentinel,
		Amount:           models.ErrorSentinel,
		Network:          models.NetworkIntmax,
	}
}
