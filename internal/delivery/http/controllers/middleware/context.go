package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ClientIDCtx    = "client_id"
	ClientRolesCtx = "client_roles"
)

// UserID returns the authenticated user set by AuthMiddleware.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(ClientIDCtx)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}

// Roles returns the roles set by AuthMiddleware.
func Roles(c *gin.Context) ([]string, bool) {
	raw, exists := c.Get(ClientRolesCtx)
	if !exists {
		return nil, false
	}
	roles, ok := raw.([]string)
	return roles, ok
}
