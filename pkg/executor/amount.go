package executor

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount splits an amount string of the form "<number> <unit>" into its
// numeric value and unit. Only the numeric prefix drives execution today; the
// unit is carried for future multi-asset support.
func ParseAmount(raw string) (value float64, unit string, err error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, "", fmt.Errorf("empty amount")
	}

	value, err = strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid amount %q: %v", raw, err)
	}
	if value <= 0 {
		return 0, "", fmt.Errorf("amount must be positive, got %q", raw)
	}

	unit = strings.Join(fields[1:], " ")
	return value, unit, nil
}
