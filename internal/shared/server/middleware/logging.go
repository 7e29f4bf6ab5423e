package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-intel/internal/shared/telemetry"
)

// Logging emits a structured log per request. Handlers record the entity
// ids they touched under resumeId, analysisId and conversationId.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if email := UserEmailFromContext(c); email != "" {
			fields["user_email"] = email
		}
		if isGuest, ok := c.Get("isGuest"); ok {
			fields["is_guest"] = isGuest
		}
		for ctxKey, logKey := range map[string]string{
			"resumeId":       "resume_id",
			"analysisId":     "analysis_id",
			"conversationId": "conversation_id",
		} {
			if v := c.GetString(ctxKey); v != "" {
				fields[logKey] = v
			}
		}
		telemetry.Info("request.complete", fields)
	}
}
