package auth

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/delivery/http/controllers/middleware"
	"CivicLearn/internal/delivery/http/controllers/response"
	"CivicLearn/internal/models"
	authsvc "CivicLearn/internal/service/auth"
	"CivicLearn/pkg/logger"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	refreshCookie          = "refresh_token"
	refreshCookiePath      = "/v1/auth"
	maxProfilePictureBytes = 2 << 20
)

type AuthService interface {
	Register(ctx context.Context, r authsvc.Registration) (*models.User, error)
	LoginUser(ctx context.Context, email, password string) (*models.TokenPair, error)
	RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Profile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UploadProfilePicture(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*models.Profile, error)
}

type AuthHandler struct {
	AuthService  AuthService
	log          logger.Log
	secureCookie bool
}

func NewAuthHandler(l logger.Log, auth AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		AuthService:  auth,
		log:          l,
		secureCookie: secureCookie,
	}
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	profile, err := h.AuthService.Profile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.log, "error retrieving profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type registerRequest struct {
	Username  string `json:"username" binding:"required,notblank,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.AuthService.Register(c.Request.Context(), authsvc.Registration{
		Username:  strings.TrimSpace(input.Username),
		Email:     input.Email,
		Password:  input.Password,
		Password2: input.Password2,
	})
	if err != nil {
		response.Error(c, h.log, "error handling register user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registration success", "id": user.ID})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	pair, err := h.AuthService.LoginUser(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		// do not reveal which of email or password was wrong
		if errors.Is(err, app_errors.ErrUserNotFound) || errors.Is(err, app_errors.ErrIncorrectPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		response.Error(c, h.log, "error handling login user", err)
		return
	}
	h.writePair(c, pair)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(refreshCookie)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token"})
		return
	}

	pair, err := h.AuthService.RefreshTokens(c.Request.Context(), token)
	if err != nil {
		if response.Status(err) == http.StatusInternalServerError {
			response.Error(c, h.log, "error refreshing tokens", err)
			return
		}
		h.clearCookie(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	h.writePair(c, pair)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.AuthService.Logout(c.Request.Context(), userID); err != nil {
		response.Error(c, h.log, "error handling logout", err)
		return
	}
	h.clearCookie(c)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) UploadProfilePicture(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	upload, ok := response.FormFile(c, "file", maxProfilePictureBytes)
	if !ok {
		return
	}
	defer upload.File.Close()
	if !strings.HasPrefix(upload.ContentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file must be an image"})
		return
	}

	profile, err := h.AuthService.UploadProfilePicture(c.Request.Context(), userID, upload.Filename, upload.File, upload.Size, upload.ContentType)
	if err != nil {
		response.Error(c, h.log, "error uploading profile picture", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) writePair(c *gin.Context, pair *models.TokenPair) {
	accessExp, refreshExp, err := pair.Expiries()
	if err != nil {
		response.Error(c, h.log, "issued token without expiry", err)
		return
	}

	maxAge := int(time.Until(refreshExp).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, pair.RefreshToken.Raw, maxAge, refreshCookiePath, "", h.secureCookie, true)
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken.Raw,
		ExpiresAt:   accessExp,
	})
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, "", -1, refreshCookiePath, "", h.secureCookie, true)
}
