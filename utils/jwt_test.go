package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.SignAccessToken("user-1", "user@example.com", "member", time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "member", claims.Role)
}

func TestValidateAccessTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").SignAccessToken("user-1", "", "", time.Minute)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessTokenRejectsExpired(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.SignAccessToken("user-1", "", "", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessTokenRejectsRefreshType(t *testing.T) {
	svc := NewJWTService("test-secret")

	now := time.Now()
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    "user-1",
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   "user-1",
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestValidateAccessTokenRejectsWrongIssuer(t *testing.T) {
	svc := NewJWTService("test-secret")

	now := time.Now()
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    "user-1",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "someone-else",
			Subject:   "user-1",
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(foreign)
	assert.Error(t, err)
}
