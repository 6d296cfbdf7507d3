package response

import (
	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/delivery/http/validation"
	"CivicLearn/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var statusByErr = []struct {
	err    error
	status int
}{
	{app_errors.ErrUserNotFound, http.StatusNotFound},
	{app_errors.ErrCourseNotFound, http.StatusNotFound},
	{app_errors.ErrModuleNotFound, http.StatusNotFound},
	{app_errors.ErrLessonNotFound, http.StatusNotFound},
	{app_errors.ErrQuestionNotFound, http.StatusNotFound},
	{app_errors.ErrProgressNotFound, http.StatusNotFound},
	{app_errors.ErrCertificateNotFound, http.StatusNotFound},
	{app_errors.ErrCountyNotFound, http.StatusNotFound},
	{app_errors.ErrConstituencyNotFound, http.StatusNotFound},
	{app_errors.ErrPositionNotFound, http.StatusNotFound},
	{app_errors.ErrElectionNotFound, http.StatusNotFound},
	{app_errors.ErrNoSearchResults, http.StatusNotFound},
	{app_errors.ErrArticleNotFound, http.StatusNotFound},

	{app_errors.ErrUserExists, http.StatusConflict},
	{app_errors.ErrAlreadyEnrolled, http.StatusConflict},
	{app_errors.ErrDuplicateLesson, http.StatusConflict},
	{app_errors.ErrDuplicateModule, http.StatusConflict},
	{app_errors.ErrDuplicateQuestion, http.StatusConflict},
	{app_errors.ErrBadgeExists, http.StatusConflict},
	{app_errors.ErrCountyExists, http.StatusConflict},
	{app_errors.ErrPositionExists, http.StatusConflict},
	{app_errors.ErrDuplicateSlug, http.StatusConflict},

	{app_errors.ErrPreviousLessonIncomplete, http.StatusForbidden},
	{app_errors.ErrCourseNotPublished, http.StatusForbidden},

	{app_errors.ErrTokenNotFound, http.StatusUnauthorized},
	{app_errors.ErrTokenExpired, http.StatusUnauthorized},

	{app_errors.ErrIncorrectPassword, http.StatusBadRequest},
	{app_errors.ErrPasswordMismatch, http.StatusBadRequest},
	{app_errors.ErrNoCorrectAnswer, http.StatusBadRequest},
	{app_errors.ErrMultipleCorrectAnswers, http.StatusBadRequest},
	{app_errors.ErrInvalidObject, http.StatusBadRequest},
}

// Status maps a service error to its HTTP status; unknown errors are 500.
func Status(err error) int {
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// Error writes err as JSON. Internal errors are logged and hidden from the client.
func Error(c *gin.Context, log logger.Log, msg string, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.ErrorErr(msg, err, "path", c.FullPath())
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": validation.Errors(err)})
}

// PathUUID parses a uuid path parameter, writing a 400 when it is malformed.
func PathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// Pagination binds limit and offset query params. Missing values stay zero and
// the service applies its defaults.
type Pagination struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}
