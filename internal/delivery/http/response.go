package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aliskhannn/quizbank/internal/service"
)

// Response is the uniform JSON envelope of every API reply.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func badRequest(c *gin.Context, message string) {
	fail(c, http.StatusBadRequest, message)
}

func unauthorized(c *gin.Context) {
	fail(c, http.StatusUnauthorized, "Not authenticated")
}

// serviceError maps service errors to HTTP replies; unknown errors are logged as internal.
func (h *Handler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrCredentialUsed):
		fail(c, http.StatusForbidden, "These credentials have already been used")
	case errors.Is(err, service.ErrSectionNotAllowed):
		fail(c, http.StatusForbidden, "Section not available for this account")
	case errors.Is(err, service.ErrSectionNotFound):
		fail(c, http.StatusNotFound, "Section not found")
	case errors.Is(err, service.ErrSessionNotFound):
		fail(c, http.StatusNotFound, "Quiz not found")
	case errors.Is(err, service.ErrSessionNotActive):
		fail(c, http.StatusConflict, "Quiz already submitted")
	case errors.Is(err, service.ErrSessionExpired):
		fail(c, http.StatusGone, "Quiz time limit exceeded")
	case errors.Is(err, service.ErrNoQuestionsAvailable):
		fail(c, http.StatusServiceUnavailable, "Quiz unavailable")
	default:
		h.logger.Error("internal server error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
