package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) error
		input string
		err   error
	}{
		{"name", validName, "ana", nil},
		{"name unicode", validName, "João", nil},
		{"name single letter", validName, "a", errTooShort},
		{"name digits", validName, "ana1", errNotLetters},
		{"name space", validName, "ana b", errNotLetters},
		{"password", validPassword, "pw", nil},
		{"password short", validPassword, "p", errTooShort},
		{"words", validWords, "Belo Horizonte", nil},
		{"words empty", validWords, "  ", errEmpty},
		{"words digits", validWords, "Rua 7", errNotWords},
		{"zip", validZipCode, "30140-071", nil},
		{"zip no dash", validZipCode, "30140071", errZipFormat},
		{"zip letters", validZipCode, "3014a-071", errZipFormat},
		{"product name", validProductName, "Green Apple 2", nil},
		{"product name empty", validProductName, "", errEmpty},
		{"optional empty", optional(validProductName), "", nil},
		{"optional blank", optional(validProductName), " \t", errEmpty},
		{"optional name", optional(validProductName), "Kiwi", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.input)
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParsers(t *testing.T) {
	n, err := parseInt("-3")
	require.NoError(t, err)
	assert.Equal(t, -3, n)

	_, err = parseInt("3.5")
	require.ErrorIs(t, err, errNotNumber)

	_, err = parsePositive("0")
	require.ErrorIs(t, err, errNotPositive)

	p, err := parsePrice("2.50")
	require.NoError(t, err)
	assert.Equal(t, "2.5", p.String())

	for _, bad := range []string{"", "abc", "0", "-1.00"} {
		_, err := parsePrice(bad)
		require.ErrorIs(t, err, errNotPrice, bad)
	}
}
