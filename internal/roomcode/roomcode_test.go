package roomcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsEightUppercaseAlnum(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := New()
		require.NoError(t, err)
		assert.Len(t, code, Length)
		for _, r := range code {
			assert.Contains(t, alphabet, string(r))
		}
		assert.Equal(t, Normalize(code), code)
	}
}

func TestNewIsCollisionResistant(t *testing.T) {
	seen := make(map[string]bool, 5000)
	for i := 0; i < 5000; i++ {
		code, err := New()
		require.NoError(t, err)
		require.False(t, seen[code], "collision at iteration %d", i)
		seen[code] = true
	}
}

func TestNormalizeCaseFolds(t *testing.T) {
	assert.Equal(t, "K7QZ9M2A", Normalize(" k7qz9m2a "))
	assert.Equal(t, "K7QZ9M2A", Normalize("K7QZ9M2A"))
}
