package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes carried in the envelope's "error" field.
// Clients branch on these, humans read "message".
const (
	CodeValidation  = "validation_error"
	CodeAuth        = "auth_error"
	CodeForbidden   = "forbidden"
	CodeNotFound    = "not_found"
	CodeConflict    = "conflict"
	CodeRateLimited = "rate_limited"
	CodeInternal    = "internal_error"
	CodeUnavailable = "service_unavailable"
)

// APIResponse is the envelope every endpoint returns. Success responses set
// Data; failures set Error (machine code) and Message (human string).
type APIResponse[T any] struct {
	Status       int         `json:"status"`
	Timestamp    time.Time   `json:"timestamp"`
	RequestID    string      `json:"request_id"`
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	Data         T           `json:"data,omitempty"`
	Meta         interface{} `json:"meta,omitempty"`
	Error        string      `json:"error,omitempty"`
	ErrorDetails interface{} `json:"error_details,omitempty"`
}

func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	})
}

func Error(ctx *gin.Context, status int, code, message string, details interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, APIResponse[any]{
		Status:       status,
		Timestamp:    time.Now(),
		RequestID:    ctx.GetString("request_id"),
		Success:      false,
		Message:      message,
		Error:        code,
		ErrorDetails: details,
	})
}

// Abort writes an error envelope and aborts the middleware chain.
func Abort(ctx *gin.Context, status int, code, message string, details interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, APIResponse[any]{
		Status:       status,
		Timestamp:    time.Now(),
		RequestID:    ctx.GetString("request_id"),
		Success:      false,
		Message:      message,
		Error:        code,
		ErrorDetails: details,
	})
}
