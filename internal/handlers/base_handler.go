package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TaskTide-2025/membership-service/internal/models"
	"github.com/TaskTide-2025/membership-service/internal/services"
	"github.com/TaskTide-2025/membership-service/internal/utils"
)

type ErrorResponse = models.ErrorResponse
type SuccessResponse = models.SuccessResponse

// BaseHandler carries the shared handler plumbing: request-scoped logging and
// service error mapping.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming operation with the request-scoped logger.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

// LogError logs a handler failure with the request-scoped logger.
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err)
	utils.FromContext(c, h.logger).Error(msg, args...)
}

// handleServiceError maps service sentinel errors to HTTP statuses. Anything
// unmapped is a 500.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidationFailed):
		h.respondError(c, http.StatusBadRequest, "validation_failed", err.Error())

	case errors.Is(err, services.ErrNotAuthenticated):
		h.respondError(c, http.StatusUnauthorized, "not_authenticated", "authentication required")

	case errors.Is(err, services.ErrPermissionDenied):
		h.respondError(c, http.StatusForbidden, "permission_denied", "you do not have permission to perform this action")

	case errors.Is(err, services.ErrInvalidJoinCode):
		h.respondError(c, http.StatusNotFound, "invalid_join_code", "no course server matches this join code")

	case errors.Is(err, services.ErrAlreadyMember):
		h.respondError(c, http.StatusConflict, "already_member", "you are already a member of this server")

	case errors.Is(err, services.ErrServerNotFound):
		h.respondError(c, http.StatusNotFound, "server_not_found", "course server not found")

	case errors.Is(err, services.ErrUserNotFound):
		h.respondError(c, http.StatusNotFound, "user_not_found", "user not found")

	default:
		h.LogError(c, err, "Unhandled service error")
		h.respondError(c, http.StatusInternalServerError, "internal_error", "an internal error occurred")
	}
}

func (h *BaseHandler) respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	})
}
