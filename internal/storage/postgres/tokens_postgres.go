package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokensPostgres struct {
	db *pgxpool.Pool
}

func NewTokensPostgres(db *pgxpool.Pool) *TokensPostgres {
	return &TokensPostgres{db: db}
}

// Only a digest of the refresh token is stored.
func hashToken(token *jwt.Token) string {
	sum := sha256.Sum256([]byte(token.Raw))
	return hex.EncodeToString(sum[:])
}

func (r *TokensPostgres) Create(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	if expiresAt == nil {
		return nil, errors.New("refresh token has no expiry")
	}

	refreshToken := &models.RefreshToken{UserID: userID, HashedToken: hashToken(token)}
	query := `
		INSERT INTO refresh_tokens (user_id, hashed_token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at, expires_at
	`
	err = r.db.QueryRow(ctx, query, userID, refreshToken.HashedToken, expiresAt.Time).
		Scan(&refreshToken.CreatedAt, &refreshToken.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return refreshToken, nil
}

func (r *TokensPostgres) ByPrimaryKey(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	query := `
		SELECT user_id, hashed_token, created_at, expires_at
		FROM refresh_tokens
		WHERE user_id = $1 AND hashed_token = $2
	`
	var t models.RefreshToken
	err := r.db.QueryRow(ctx, query, userID, hashToken(token)).Scan(&t.UserID, &t.HashedToken, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TokensPostgres) DeleteUserTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}
