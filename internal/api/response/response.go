// Package response writes the JSON envelopes shared by every API route.
//
// Success: {"success": true, "message": "...", "data": ...}
// Failure: {"success": false, "message": "...", "error_code": "...",
// "errors": [...], "error_id": "..."}
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Error codes carried in failure envelopes.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeHTTP         = "HTTP_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	CodeInternal     = "INTERNAL_ERROR"
)

// Success is the envelope for mutating endpoints.
type Success struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Failure is the error envelope.
type Failure struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Code      string    `json:"error_code"`
	Errors    []string  `json:"errors,omitempty"`
	ErrorID   string    `json:"error_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Success{Success: true, Message: message, Data: data, Timestamp: time.Now().UTC()})
}

// Fail aborts the request with a failure envelope.
func Fail(c *gin.Context, status int, code, message string, errs ...string) {
	c.AbortWithStatusJSON(status, Failure{
		Message:   message,
		Code:      code,
		Errors:    errs,
		Timestamp: time.Now().UTC(),
	})
}

// NotFound aborts with 404.
func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, CodeNotFound, message)
}

// Invalid aborts with 422 and the per-field messages.
func Invalid(c *gin.Context, errs ...string) {
	Fail(c, http.StatusUnprocessableEntity, CodeValidation, "Validation failed", errs...)
}

// Unauthorized aborts with 401.
func Unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	Fail(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Internal aborts with 500 and a short error id the visitor can quote. The
// id is returned so the caller can log it next to the cause.
func Internal(c *gin.Context) string {
	errorID := NewErrorID()
	c.AbortWithStatusJSON(http.StatusInternalServerError, Failure{
		Message:   "Internal server error",
		Code:      CodeInternal,
		ErrorID:   errorID,
		Timestamp: time.Now().UTC(),
	})
	return errorID
}

// NewErrorID returns an 8 character reference for an internal error.
func NewErrorID() string {
	return uuid.NewString()[:8]
}
