package auth

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_UsesConfiguredCost(t *testing.T) {
	h, err := HashPassword("pw123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)
	assert.True(t, VerifyPassword("pw123", h))
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	passwords := []string{"pw123", "", "correct horse battery staple", "пароль"}
	for _, pw := range passwords {
		h1, err := hashPasswordCost(pw, bcrypt.MinCost)
		require.NoError(t, err)
		h2, err := hashPasswordCost(pw, bcrypt.MinCost)
		require.NoError(t, err)

		assert.NotEqual(t, h1, h2, "hashes must be salted")
		assert.True(t, VerifyPassword(pw, h1))
		assert.True(t, VerifyPassword(pw, h2))
		assert.False(t, VerifyPassword(pw+"x", h1))
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	assert.False(t, VerifyPassword("pw", "not-a-bcrypt-hash"))
	assert.False(t, VerifyPassword("pw", ""))
}

func TestHashPassword_TooLong(t *testing.T) {
	t.Parallel()

	_, err := hashPasswordCost(strings.Repeat("a", MaxPasswordBytes+1), bcrypt.MinCost)
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Equal(t, "Password must be at most 72 bytes", common.Detail(err, ""))

	// Multi-byte runes count by bytes, not characters.
	_, err = hashPasswordCost(strings.Repeat("я", 37), bcrypt.MinCost)
	require.ErrorIs(t, err, common.ErrorValidation)

	h, err := hashPasswordCost(strings.Repeat("a", MaxPasswordBytes), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(strings.Repeat("a", MaxPasswordBytes), h))
}

func TestHashPassword_BadCost(t *testing.T) {
	t.Parallel()

	_, err := hashPasswordCost("pw123", bcrypt.MaxCost+1)
	require.ErrorIs(t, err, common.ErrorInternal)
}
