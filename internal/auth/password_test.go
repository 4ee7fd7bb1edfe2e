package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("Abcdefgh12")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 4)
	assert.Equal(t, "pbkdf2", parts[0])
	assert.Equal(t, "210000", parts[1])
	assert.Len(t, parts[2], 32)
	assert.Len(t, parts[3], 64)

	assert.NoError(t, ComparePassword(hash, "Abcdefgh12"))
	assert.Error(t, ComparePassword(hash, "Abcdefgh13"))
}

func TestHashUsesFreshSalt(t *testing.T) {
	a, err := HashPassword("Abcdefgh12")
	require.NoError(t, err)
	b, err := HashPassword("Abcdefgh12")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCompareRejectsMalformedHashes(t *testing.T) {
	weak, err := hashWithIterations("Abcdefgh12", 1000)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":          "",
		"wrong algo":     "bcrypt$210000$aa$bb",
		"missing part":   "pbkdf2$210000$aa",
		"bad iterations": "pbkdf2$abc$aa$bb",
		"low iterations": weak,
		"bad digest":     "pbkdf2$210000$aa$zz",
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, ComparePassword(encoded, "Abcdefgh12"), ErrInvalidHash)
		})
	}
}

func TestIsStrongPassword(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"Abcdefgh12", true},
		{"abcdefgh12", false},
		{"ABCDEFGH12", false},
		{"Abcdefghij", false},
		{"Abc12", false},
		{"A1" + strings.Repeat("b", 127), false},
		{"A1" + strings.Repeat("b", 126), true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsStrongPassword(tc.password), tc.password)
	}
}
