package models

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := RefreshToken{ExpiresAt: now}

	assert.True(t, tok.Expired(now))
	assert.False(t, tok.Expired(now.Add(-time.Second)))
}

func TestTokenPairExpiries(t *testing.T) {
	accessExp := time.Now().Add(time.Minute).Truncate(time.Second)
	refreshExp := time.Now().Add(time.Hour).Truncate(time.Second)
	pair := TokenPair{
		AccessToken:  jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(accessExp)}),
		RefreshToken: jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(refreshExp)}),
	}

	a, r, err := pair.Expiries()
	require.NoError(t, err)
	assert.True(t, a.Equal(accessExp))
	assert.True(t, r.Equal(refreshExp))

	pair.RefreshToken = jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{})
	_, _, err = pair.Expiries()
	assert.Error(t, err)
}
