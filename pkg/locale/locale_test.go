package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
main:
  greeting: "Hello {name}!"
  plain: "No placeholders here."

transactions:
  confirm: "Send {amount} to {address}?"
`

func TestParseAndGet(t *testing.T) {
	catalog, err := Parse([]byte(testCatalog))
	require.NoError(t, err)

	assert.Equal(t, "No placeholders here.", catalog.Get("main", "plain"))
	assert.Equal(t, "Hello {name}!", catalog.Get("main", "greeting"))
}

func TestFormat(t *testing.T) {
	catalog, err := Parse([]byte(testCatalog))
	require.NoError(t, err)

	tests := []struct {
		name     string
		section  string
		key      string
		fields   Fields
		expected string
	}{
		{
			name:     "single placeholder",
			section:  "main",
			key:      "greeting",
			fields:   Fields{"name": "Kate"},
			expected: "Hello Kate!",
		},
		{
			name:     "multiple placeholders",
			section:  "transactions",
			key:      "confirm",
			fields:   Fields{"amount": "0.5 ETH", "address": "0xabc"},
			expected: "Send 0.5 ETH to 0xabc?",
		},
		{
			name:     "missing field leaves placeholder",
			section:  "main",
			key:      "greeting",
			fields:   Fields{},
			expected: "Hello {name}!",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, catalog.Format(tc.section, tc.key, tc.fields))
		})
	}
}

func TestMissingKeyPlaceholder(t *testing.T) {
	catalog, err := Parse([]byte(testCatalog))
	require.NoError(t, err)

	assert.Equal(t, "<main.nope>", catalog.Get("main", "nope"))
	assert.Equal(t, "<other.nope>", catalog.Get("other", "nope"))
}

func TestLoadShippedCatalog(t *testing.T) {
	catalog, err := Load("../../locales/en.yaml")
	require.NoError(t, err)

	// Keys the conversation flow depends on must exist.
	for _, ref := range [][2]string{
		{"main", "start_info"},
		{"main", "invalid_action"},
		{"main", "invalid_receiver"},
		{"main", "invalid_amount"},
		{"main", "error_processing_request"},
		{"transactions", "confirm_transfer"},
		{"transactions", "nothing_to_confirm"},
		{"transactions", "no_confirmation"},
		{"transactions", "success_transaction"},
		{"transactions", "problems_with_transactions"},
		{"contact", "enter_name"},
		{"contact", "enter_wallet"},
		{"contact", "contact_saved"},
	} {
		assert.NotContains(t, catalog.Get(ref[0], ref[1]), "<", "missing key %s.%s", ref[0], ref[1])
	}
}
