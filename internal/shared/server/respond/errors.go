package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-intel/internal/shared/apperr"
	"resume-intel/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// StageDetails reports the pipeline stage a request failed in.
type StageDetails struct {
	Stage string `json:"stage"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	write(c, status, code, message, details, nil)
}

func write(c *gin.Context, status int, code, message string, details interface{}, cause error) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if isGuest, ok := c.Get("isGuest"); ok {
		fields["is_guest"] = isGuest
	}
	if cause != nil {
		fields["err"] = cause.Error()
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// FromError maps a service error onto the public error taxonomy. Messages of
// internal and storage failures are not echoed to the client.
func FromError(c *gin.Context, err error) {
	code := apperr.Code(err)
	status := StatusFor(err)

	message := err.Error()
	switch code {
	case "INTERNAL_ERROR":
		message = "internal error"
	case "STORAGE_ERROR":
		message = "storage failure"
	}

	var details interface{}
	if stage, ok := apperr.StageOf(err); ok {
		details = StageDetails{Stage: string(stage)}
	}
	write(c, status, code, message, details, err)
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, apperr.ErrCorruptDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrEngineUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperr.ErrEngineRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
