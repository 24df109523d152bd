package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vanity/pkg/domain-errors"
)

func TestParseAccountID(t *testing.T) {
	t.Run("accepts and trims valid input", func(t *testing.T) {
		account, err := ParseAccountID("  acct-1  ")
		require.NoError(t, err)
		assert.Equal(t, "acct-1", account.String())
		assert.False(t, account.IsZero())
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ParseAccountID("   ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects oversized input", func(t *testing.T) {
		_, err := ParseAccountID(strings.Repeat("a", 129))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestParseTicket(t *testing.T) {
	valid := "0x" + strings.Repeat("ab", 32)

	t.Run("round trips the canonical form", func(t *testing.T) {
		ticket, err := ParseTicket(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, ticket.String())
		assert.False(t, ticket.IsZero())
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for name, input := range map[string]string{
			"missing prefix": strings.Repeat("ab", 33)[:66],
			"too short":      "0x" + strings.Repeat("ab", 31),
			"too long":       "0x" + strings.Repeat("ab", 33),
			"non-hex":        "0x" + strings.Repeat("zz", 32),
			"empty":          "",
		} {
			t.Run(name, func(t *testing.T) {
				_, err := ParseTicket(input)
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			})
		}
	})

	t.Run("text marshaling round trip", func(t *testing.T) {
		ticket, err := ParseTicket(valid)
		require.NoError(t, err)

		encoded, err := ticket.MarshalText()
		require.NoError(t, err)

		var decoded Ticket
		require.NoError(t, decoded.UnmarshalText(encoded))
		assert.Equal(t, ticket, decoded)
	})
}
