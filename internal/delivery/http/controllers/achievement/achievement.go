package achievement

import (
	"CivicLearn/internal/delivery/http/controllers/middleware"
	"CivicLearn/internal/delivery/http/controllers/response"
	"CivicLearn/internal/models"
	"CivicLearn/pkg/logger"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AchievementService interface {
	Summary(ctx context.Context, userID uuid.UUID) (*models.Achievements, error)
	Certificates(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error)
	VerifyCertificate(ctx context.Context, code string) (*models.Certificate, error)
}

type AchievementHandler struct {
	log     logger.Log
	service AchievementService
}

func NewAchievementHandler(l logger.Log, s AchievementService) *AchievementHandler {
	return &AchievementHandler{log: l, service: s}
}

func (h *AchievementHandler) Summary(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.log, "error building achievements", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AchievementHandler) Certificates(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	certs, err := h.service.Certificates(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.log, "error listing certificates", err)
		return
	}
	if certs == nil {
		certs = []models.Certificate{}
	}
	c.JSON(http.StatusOK, gin.H{"certificates": certs})
}

type certificateURI struct {
	Code string `uri:"code" binding:"required,len=32,hexadecimal"`
}

// VerifyCertificate is public so third parties can check a code.
func (h *AchievementHandler) VerifyCertificate(c *gin.Context) {
	var uri certificateURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}
	cert, err := h.service.VerifyCertificate(c.Request.Context(), uri.Code)
	if err != nil {
		response.Error(c, h.log, "error verifying certificate", err)
		return
	}
	c.JSON(http.StatusOK, cert)
}
