package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-intel/internal/shared/auth"
	"resume-intel/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verifier, err := auth.NewVerifier("", "dev")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	router := gin.New()
	router.Use(RequestID(), Auth(verifier), Logging())
	router.GET("/test", func(c *gin.Context) {
		c.Set("resumeId", "res-1")
		c.Set("analysisId", "analysis-1")
		c.Set("conversationId", "conv-1")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	var buf bytes.Buffer
	prev := telemetry.SetOutput(&buf)
	defer telemetry.SetOutput(prev)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Guest-Id", "guest1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	required := []string{"request_id", "user_id", "resume_id", "analysis_id", "conversation_id", "duration_ms", "status"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["msg"] != "request.complete" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["user_id"] != "guest:guest1" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	if payload["resume_id"] != "res-1" || payload["conversation_id"] != "conv-1" {
		t.Fatalf("unexpected ids: %v %v", payload["resume_id"], payload["conversation_id"])
	}
}

func TestLoggingIncludesTokenEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verifier, err := auth.NewVerifier("log-secret", "dev")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	var claims auth.Claims
	claims.Subject = "user-7"
	claims.Email = "ada@example.com"
	token, err := verifier.Sign(claims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	router := gin.New()
	router.Use(Logging(), Auth(verifier))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	var buf bytes.Buffer
	prev := telemetry.SetOutput(&buf)
	defer telemetry.SetOutput(prev)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var payload map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	if payload["user_id"] != "user-7" || payload["user_email"] != "ada@example.com" {
		t.Fatalf("unexpected identity fields: %v %v", payload["user_id"], payload["user_email"])
	}
}
