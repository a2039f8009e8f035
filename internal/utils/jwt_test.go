// internal/utils/jwt_test.go
package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	userID := uuid.New()
	token, err := GenerateJWT(userID, "Alice", "trader", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "trader", claims.Role)
	assert.Equal(t, "tradeforge", claims.Issuer)
}

func TestJWTWrongSecret(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateJWT(uuid.New(), "Alice", "trader", 1)
	require.NoError(t, err)

	SetJWTSecret("different-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateJWT(uuid.New(), "Alice", "trader", -1)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	userID := uuid.New()
	token, err := GenerateRefreshToken(userID, 24)
	require.NoError(t, err)

	subject, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)

	_, err = ValidateRefreshToken("garbage")
	assert.Error(t, err)
}
