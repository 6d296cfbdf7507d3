package middleware

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/pkg/logger"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	Authenticate(ctx context.Context, token string) (userID uuid.UUID, roles []string, err error)
}

type AuthMiddlewareProvider struct {
	log     logger.Log
	service AuthService
}

func NewAuthMiddlewareProvider(log logger.Log, s AuthService) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:     log,
		service: s,
	}
}

func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	userID, roles, err := h.service.Authenticate(c.Request.Context(), token)
	if err != nil {
		h.log.Debug("authentication failed", "error", err)
		switch {
		case errors.Is(err, app_errors.ErrTokenExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrTokenExpired.Error()})
		case errors.Is(err, app_errors.ErrUserNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrUserNotFound.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
		}
		return
	}

	c.Set(ClientIDCtx, userID)
	c.Set(ClientRolesCtx, roles)
	c.Next()
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
