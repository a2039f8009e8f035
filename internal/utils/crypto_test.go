// internal/utils/crypto_test.go
package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLicenseKeyFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^EA-[0-9A-F]{32}$`)

	for i := 0; i < 100; i++ {
		key, err := GenerateLicenseKey()
		require.NoError(t, err)
		assert.Regexp(t, pattern, key)
	}
}

func TestGenerateLicenseKeyUniqueness(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		key, err := GenerateLicenseKey()
		require.NoError(t, err)
		require.False(t, seen[key], "duplicate key generated")
		seen[key] = true
	}
}

func TestHashStringDeterministic(t *testing.T) {
	a := HashString("secret-value")
	b := HashString("secret-value")
	c := HashString("other-value")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	other, err := GenerateRandomString(32)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}
