package aiservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resume-intel/internal/engine"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, APIKey: "secret"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestParseResumeSendsTextAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/parse-resume" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text != "Jane Doe" {
			t.Errorf("unexpected body %+v, err=%v", body, err)
		}
		_, _ = w.Write([]byte(`{"parsedData":{"name":"Jane Doe","skills":["Go"],"projects":[{"name":"p","githubUrl":"https://github.com/x/y","githubAnalysis":{"stars":3}}]},
			"analysis":{"skillLevel":"Senior","primaryDomain":"Backend","experienceYears":7,"strengths":["Go"]}}`))
	})

	got, err := c.ParseResume(context.Background(), "Jane Doe")
	if err != nil {
		t.Fatalf("ParseResume: %v", err)
	}
	if got.ParsedData.Name != "Jane Doe" || got.Analysis.ExperienceYears != 7 {
		t.Fatalf("unexpected result %+v", got)
	}
	if len(got.ParsedData.Projects) != 1 || len(got.ParsedData.Projects[0].GithubAnalysis) == 0 {
		t.Fatalf("expected project enrichment to survive decoding")
	}
}

func TestChatPassesHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Message != "hi" || len(body.ConversationHistory) != 2 || body.ResumeData.RawText != "raw" {
			t.Errorf("unexpected chat request %+v", body)
		}
		_, _ = w.Write([]byte(`{"reply":"hello there"}`))
	})

	history := []engine.ChatMessage{{Role: "user", Content: "a"}, {Role: "assistant", Content: "b"}}
	got, err := c.Chat(context.Background(), engine.ResumeSnapshot{RawText: "raw"}, "hi", history)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got.Reply != "hello there" {
		t.Fatalf("unexpected reply %q", got.Reply)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    error
		message string
	}{
		{name: "fastapi detail", status: 500, body: `{"detail":"Failed to parse AI response"}`, want: engine.ErrRejected, message: "Failed to parse AI response"},
		{name: "validation list", status: 422, body: `{"detail":[{"msg":"field required"}]}`, want: engine.ErrRejected, message: "field required"},
		{name: "error object", status: 400, body: `{"error":{"message":"bad input"}}`, want: engine.ErrRejected, message: "bad input"},
		{name: "gateway", status: 503, body: `{"detail":"down"}`, want: engine.ErrUnavailable},
		{name: "html error page", status: 500, body: `<html>oops</html>`, want: engine.ErrUnavailable},
		{name: "empty body", status: 404, body: ``, want: engine.ErrUnavailable},
		{name: "malformed success", status: 200, body: `{"parsedData":`, want: engine.ErrRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.ParseResume(context.Background(), "text")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var engErr *engine.Error
			if !errors.As(err, &engErr) {
				t.Fatalf("expected *engine.Error, got %T", err)
			}
			if engErr.Op != engine.OpParseResume {
				t.Fatalf("unexpected op %q", engErr.Op)
			}
			if tt.message != "" && engErr.Message != tt.message {
				t.Fatalf("message = %q, want %q", engErr.Message, tt.message)
			}
		})
	}
}

func TestEmptyChatReplyIsRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reply":"  "}`))
	})
	if _, err := c.Chat(context.Background(), engine.ResumeSnapshot{}, "hi", nil); !errors.Is(err, engine.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.GenerateInterviewQuestions(context.Background(), engine.ParsedData{}, engine.Analysis{})
	if !errors.Is(err, engine.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on timeout, got %v", err)
	}
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "://nope"} {
		if _, err := New(Config{BaseURL: raw}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
