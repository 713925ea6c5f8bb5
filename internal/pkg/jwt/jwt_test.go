package jwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	tok, err := GenerateAccessToken(42, "alice", "Alice", "USER", "secret", 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(tok, "secret")
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.MemberID)
	require.Equal(t, "alice", claims.LoginID)
	require.Equal(t, "USER", claims.Role)
	require.Equal(t, "42", claims.Subject)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	tok, err := GenerateAccessToken(42, "alice", "Alice", "USER", "secret", 15)
	require.NoError(t, err)

	_, err = ValidateAccessToken(tok, "other-secret")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	tok, err := GenerateAccessToken(42, "alice", "Alice", "USER", "secret", -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(tok, "secret")
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := ValidateAccessToken("not-a-token", "secret")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
