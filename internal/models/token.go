package models

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RefreshToken is the stored form of an issued refresh token; only its
// hash is persisted.
type RefreshToken struct {
	UserID      uuid.UUID
	HashedToken string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

type TokenPair struct {
	AccessToken  *jwt.Token
	RefreshToken *jwt.Token
}

// Expiries reads the exp claim of both tokens.
func (p TokenPair) Expiries() (access, refresh time.Time, err error) {
	a, err := p.AccessToken.Claims.GetExpirationTime()
	if err != nil || a == nil {
		return time.Time{}, time.Time{}, errors.New("access token has no exp claim")
	}
	r, err := p.RefreshToken.Claims.GetExpirationTime()
	if err != nil || r == nil {
		return time.Time{}, time.Time{}, errors.New("refresh token has no exp claim")
	}
	return a.Time, r.Time, nil
}
