package handlers

import (
	"errors"
	"net/http"

	"submission-review-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

const (
	codeNotFound           = "not_found"
	codeAlreadyDecided     = "already_decided"
	codeForbidden          = "forbidden"
	codeValidationFailed   = "validation_failed"
	codeApplicationPending = "application_pending"
	codeUnauthenticated    = "unauthenticated"
	codeTimeout            = "timeout"
	codeInternal           = "internal"
)

func writeError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrSubmissionNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		writeError(c, http.StatusNotFound, codeNotFound, err.Error())

	// Conflict errors; a stale view and a lost race read the same to the client
	case errors.Is(err, domain.ErrAlreadyDecided),
		errors.Is(err, domain.ErrInvalidTransition):
		writeError(c, http.StatusConflict, codeAlreadyDecided, err.Error())

	case errors.Is(err, domain.ErrApplicationPending):
		writeError(c, http.StatusConflict, codeApplicationPending, err.Error())

	// Authorization errors
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(c, http.StatusUnauthorized, codeUnauthenticated, err.Error())

	case errors.Is(err, domain.ErrForbidden):
		writeError(c, http.StatusForbidden, codeForbidden, err.Error())

	// Bad request / validation errors
	case domain.IsValidation(err):
		writeError(c, http.StatusBadRequest, codeValidationFailed, err.Error())

	// Service unavailable errors
	case errors.Is(err, domain.ErrTimeout):
		writeError(c, http.StatusServiceUnavailable, codeTimeout, "operation timed out, retry later")

	default:
		writeError(c, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

// bindError reports a malformed request body or query.
func bindError(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, codeValidationFailed, err.Error())
}
