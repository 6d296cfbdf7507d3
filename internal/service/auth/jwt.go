package auth

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenType  = "access"
	RefreshTokenType = "refresh"
)

var signingMethod = jwt.SigningMethodHS256

type JWTManager struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

func NewJWTManager(secretKey, issuer string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		now:        time.Now,
	}
}

type AccessTokenClaims struct {
	TokenType string    `json:"token_type"`
	UserID    uuid.UUID `json:"user_id"`
	Roles     []string  `json:"roles"`
	jwt.RegisteredClaims
}

type RefreshTokenClaims struct {
	TokenType string    `json:"token_type"`
	UserID    uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

func (j *JWTManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != signingMethod {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return j.secretKey, nil
}

func (j *JWTManager) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.now),
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
	}
}

func (j *JWTManager) AccessClaims(tokenStr string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	if _, err := jwt.ParseWithClaims(tokenStr, claims, j.keyFunc, j.parserOptions()...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, app_errors.ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	if claims.TokenType != AccessTokenType {
		return nil, fmt.Errorf("wrong token type: expected %q, got %q", AccessTokenType, claims.TokenType)
	}
	return claims, nil
}

func (j *JWTManager) Parse(token string) (*jwt.Token, error) {
	jwtToken, err := jwt.Parse(token, j.keyFunc, j.parserOptions()...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, app_errors.ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return jwtToken, nil
}

func (j *JWTManager) TokenType(token *jwt.Token, t string) bool {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	tokenType, ok := claims["token_type"].(string)
	return ok && tokenType == t
}

func (j *JWTManager) sign(claims jwt.Claims) (*jwt.Token, error) {
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(j.secretKey)
	if err != nil {
		return nil, fmt.Errorf("token signing failed: %w", err)
	}
	// re-parse so callers get Raw and MapClaims filled in
	return j.Parse(signed)
}

func (j *JWTManager) registered(userID uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		Issuer:    j.issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (j *JWTManager) GenerateTokenPair(userID uuid.UUID, roles []string) (*models.TokenPair, error) {
	now := j.now()

	accessToken, err := j.sign(AccessTokenClaims{
		TokenType:        AccessTokenType,
		UserID:           userID,
		Roles:            roles,
		RegisteredClaims: j.registered(userID, now, j.accessTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}

	refreshToken, err := j.sign(RefreshTokenClaims{
		TokenType:        RefreshTokenType,
		UserID:           userID,
		RegisteredClaims: j.registered(userID, now, j.refreshTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
