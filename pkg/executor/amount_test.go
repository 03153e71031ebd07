package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		value float64
		unit  string
		isErr bool
	}{
		{name: "fractional ether", raw: "0.5 ETH", value: 0.5, unit: "ETH"},
		{name: "whole tokens", raw: "100 USDC", value: 100, unit: "USDC"},
		{name: "no unit", raw: "3", value: 3, unit: ""},
		{name: "extra spacing", raw: "  1.25   ETH  ", value: 1.25, unit: "ETH"},
		{name: "empty", raw: "", isErr: true},
		{name: "unit first", raw: "ETH 0.5", isErr: true},
		{name: "zero amount", raw: "0 ETH", isErr: true},
		{name: "negative amount", raw: "-1 ETH", isErr: true},
		{name: "sentinel value", raw: "ERROR", isErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			value, unit, err := ParseAmount(tc.raw)
			if tc.isErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.value, value)
			assert.Equal(t, tc.unit, unit)
		})
	}
}
