package jwtutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testUtil() *JWTUtil {
	return NewJWTUtil(&JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
}

func TestTokenRoundTrip(t *testing.T) {
	j := testUtil()
	org := uint(7)

	token, err := j.GenerateTokenWithOrg("vet@clinic.example", 42, "vet", &org, "Clinica Norte")
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "vet@clinic.example", claims.Email)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, "vet", claims.Role)
	require.NotNil(t, claims.OrgID)
	require.Equal(t, org, *claims.OrgID)
	require.Equal(t, "Clinica Norte", claims.OrgName)
}

func TestTokenWithoutOrg(t *testing.T) {
	j := testUtil()

	token, err := j.GenerateToken("new@user.example", 9, "colaborador")
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	require.Nil(t, claims.OrgID)
	require.Empty(t, claims.OrgName)
}

func TestTamperedTokenRejected(t *testing.T) {
	j := testUtil()

	token, err := j.GenerateToken("a@b.example", 1, "admin")
	require.NoError(t, err)

	// flip a character in the signature segment
	tampered := token[:len(token)-2] + "xx"
	_, err = j.ValidateToken(tampered)
	require.Error(t, err)
}

func TestWrongKeyRejected(t *testing.T) {
	j := testUtil()
	token, err := j.GenerateToken("a@b.example", 1, "admin")
	require.NoError(t, err)

	other := NewJWTUtil(&JWTConfig{SigningKey: "different-key", ExpirationHours: 1})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	j := NewJWTUtil(&JWTConfig{SigningKey: "test-signing-key", ExpirationHours: -1})

	token, err := j.GenerateToken("a@b.example", 1, "admin")
	require.NoError(t, err)

	_, err = j.ValidateToken(token)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "expired"))
}
