package reservations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateConfirmationCodeFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateConfirmationCode()
		require.NoError(t, err)
		assert.Len(t, code, 10)
		assert.True(t, strings.HasPrefix(code, "R"))
		for _, c := range code[1:] {
			assert.Contains(t, string(codeCharset), string(c))
		}
	}
}

func TestGenerateConfirmationCodeVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := GenerateConfirmationCode()
		require.NoError(t, err)
		seen[code] = true
	}
	// With a 32-char alphabet over 9 positions, 200 draws colliding even
	// once is vanishingly unlikely.
	assert.Len(t, seen, 200)
}
