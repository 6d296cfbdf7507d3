package auth

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 16
)

type userRepo interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetProfilePicture(ctx context.Context, id uuid.UUID, key string) error
}

type tokenRepo interface {
	Create(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	ByPrimaryKey(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	DeleteUserTokens(ctx context.Context, userID uuid.UUID) error
}

type objectStore interface {
	Upload(ctx context.Context, ownerID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, objectKey string) (string, error)
	Delete(ctx context.Context, objectKey string) error
}

type AuthService struct {
	log        logger.Log
	jwtManager *JWTManager
	userRepo   userRepo
	tokenRepo  tokenRepo
	avatars    objectStore
}

func NewAuthService(l logger.Log, manager *JWTManager, uRepo userRepo, tRepo tokenRepo, avatars objectStore) *AuthService {
	return &AuthService{
		log:        l,
		jwtManager: manager,
		userRepo:   uRepo,
		tokenRepo:  tRepo,
		avatars:    avatars,
	}
}

type Registration struct {
	Username  string
	Email     string
	Password  string
	Password2 string
}

func (s *AuthService) Register(ctx context.Context, r Registration) (*models.User, error) {
	if r.Password != r.Password2 {
		return nil, app_errors.ErrPasswordMismatch
	}
	if len(r.Password) > maxPasswordLen || len(r.Password) < minPasswordLen {
		return nil, app_errors.ErrIncorrectPassword
	}

	hash, err := hashPassword(r.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.CreateUser(ctx, models.User{
		Username: strings.TrimSpace(r.Username),
		Email:    strings.ToLower(strings.TrimSpace(r.Email)),
		Password: hash,
		Roles:    []string{models.ClientRole},
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*models.TokenPair, error) {
	user, err := s.userRepo.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if !checkPasswordHash(password, user.Password) {
		return nil, app_errors.ErrIncorrectPassword
	}
	return s.issuePair(ctx, user)
}

func (s *AuthService) RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error) {
	curToken, err := s.jwtManager.Parse(token)
	if err != nil {
		return nil, err
	}
	if !s.jwtManager.TokenType(curToken, RefreshTokenType) {
		return nil, app_errors.ErrTokenNotFound
	}
	subject, err := curToken.Claims.GetSubject()
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, err
	}

	tokenRecord, err := s.tokenRepo.ByPrimaryKey(ctx, userID, curToken)
	if err != nil {
		return nil, err
	}
	if tokenRecord.Expired(time.Now()) {
		return nil, app_errors.ErrTokenExpired
	}

	user, err := s.userRepo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issuePair(ctx, user)
}

// issuePair rotates the refresh token: a user holds at most one at a time.
func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	tokenPair, err := s.jwtManager.GenerateTokenPair(user.ID, user.Roles)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.DeleteUserTokens(ctx, user.ID); err != nil {
		return nil, err
	}
	if _, err := s.tokenRepo.Create(ctx, user.ID, tokenPair.RefreshToken); err != nil {
		return nil, err
	}
	return tokenPair, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.tokenRepo.DeleteUserTokens(ctx, userID)
}

func (s *AuthService) AccessClaims(ctx context.Context, token string) (userID uuid.UUID, roles []string, err error) {
	claims, err := s.jwtManager.AccessClaims(token)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return claims.UserID, claims.Roles, nil
}

// Authenticate validates an access token and confirms its user still exists.
// Roles come from the stored user, so revoked roles take effect before the
// token expires.
func (s *AuthService) Authenticate(ctx context.Context, token string) (uuid.UUID, []string, error) {
	userID, _, err := s.AccessClaims(ctx, token)
	if err != nil {
		return uuid.Nil, nil, err
	}
	user, err := s.userRepo.UserByID(ctx, userID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return user.ID, user.Roles, nil
}

func (s *AuthService) Profile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	user, err := s.userRepo.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := &models.Profile{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.Roles,
	}
	if user.ProfilePictureKey != nil {
		url, err := s.avatars.URL(ctx, *user.ProfilePictureKey)
		if err != nil {
			s.log.Warn("presign profile picture", "user_id", id, "error", err)
		} else {
			profile.ProfilePictureURL = url
		}
	}
	return profile, nil
}

func (s *AuthService) UploadProfilePicture(
	ctx context.Context,
	userID uuid.UUID,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (*models.Profile, error) {
	user, err := s.userRepo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := s.avatars.Upload(ctx, userID, filename, reader, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload profile picture: %w", err)
	}
	if err := s.userRepo.SetProfilePicture(ctx, userID, key); err != nil {
		_ = s.avatars.Delete(ctx, key)
		return nil, err
	}
	if user.ProfilePictureKey != nil {
		if err := s.avatars.Delete(ctx, *user.ProfilePictureKey); err != nil {
			s.log.Warn("remove old profile picture", "user_id", userID, "error", err)
		}
	}
	return s.Profile(ctx, userID)
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
