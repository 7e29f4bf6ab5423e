// Package aiservice talks to the analysis engine over HTTP.
package aiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resume-intel/internal/engine"
	"resume-intel/internal/shared/metrics"
	"resume-intel/internal/shared/telemetry"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "resume-intel/1.0"
	maxResponseBytes = 8 << 20
)

// Config is fixed at construction; the client never reads the environment.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	APIKey    string
	UserAgent string
}

// Client implements engine.Client against the AI service routes.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

// New validates cfg and builds a client with a bounded per-call timeout.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("AI_SERVICE_URL is required")
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid AI_SERVICE_URL %q", raw)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		baseURL:    base,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		userAgent:  ua,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type parseRequest struct {
	Text string `json:"text"`
}

type recommendRequest struct {
	ParsedData engine.ParsedData `json:"parsedData"`
	Analysis   engine.Analysis   `json:"analysis"`
}

type skillsRequest struct {
	Skills []string `json:"skills"`
}

type recommendationsResponse struct {
	Recommendations []engine.JobRecommendation `json:"recommendations"`
}

type skillGapRequest struct {
	ResumeData     engine.ResumeSnapshot `json:"resumeData"`
	TargetJobTitle string                `json:"targetJobTitle"`
}

type chatRequest struct {
	ResumeData          engine.ResumeSnapshot `json:"resumeData"`
	Message             string                `json:"message"`
	ConversationHistory []engine.ChatMessage  `json:"conversationHistory"`
}

type questionsResponse struct {
	Questions []engine.InterviewQuestion `json:"questions"`
}

func (c *Client) ParseResume(ctx context.Context, text string) (engine.ParseResult, error) {
	var out engine.ParseResult
	if err := c.post(ctx, engine.OpParseResume, parseRequest{Text: text}, &out); err != nil {
		return engine.ParseResult{}, err
	}
	return out, nil
}

func (c *Client) RecommendJobs(ctx context.Context, parsed engine.ParsedData, analysis engine.Analysis) ([]engine.JobRecommendation, error) {
	var out recommendationsResponse
	if err := c.post(ctx, engine.OpRecommendJobs, recommendRequest{ParsedData: parsed, Analysis: analysis}, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

func (c *Client) RecommendJobsBySkills(ctx context.Context, skills []string) ([]engine.JobRecommendation, error) {
	var out recommendationsResponse
	if err := c.post(ctx, engine.OpRecommendJobsBySkills, skillsRequest{Skills: skills}, &out); err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

func (c *Client) AnalyzeSkillGap(ctx context.Context, snapshot engine.ResumeSnapshot, targetRole string) (engine.SkillGapReport, error) {
	var out engine.SkillGapReport
	req := skillGapRequest{ResumeData: snapshot, TargetJobTitle: targetRole}
	if err := c.post(ctx, engine.OpAnalyzeSkillGap, req, &out); err != nil {
		return engine.SkillGapReport{}, err
	}
	return out, nil
}

func (c *Client) Chat(ctx context.Context, snapshot engine.ResumeSnapshot, message string, history []engine.ChatMessage) (engine.ChatReply, error) {
	if history == nil {
		history = []engine.ChatMessage{}
	}
	var out engine.ChatReply
	req := chatRequest{ResumeData: snapshot, Message: message, ConversationHistory: history}
	if err := c.post(ctx, engine.OpChat, req, &out); err != nil {
		return engine.ChatReply{}, err
	}
	if strings.TrimSpace(out.Reply) == "" {
		return engine.ChatReply{}, engine.Rejected(engine.OpChat, http.StatusOK, "empty reply")
	}
	return out, nil
}

func (c *Client) GenerateInterviewQuestions(ctx context.Context, parsed engine.ParsedData, analysis engine.Analysis) ([]engine.InterviewQuestion, error) {
	var out questionsResponse
	if err := c.post(ctx, engine.OpInterviewQuestions, recommendRequest{ParsedData: parsed, Analysis: analysis}, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

func (c *Client) post(ctx context.Context, op string, in, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveEngineCall(time.Since(start), err != nil)
		if err != nil {
			telemetry.Warn("engine.call_failed", map[string]any{
				"op":          op,
				"duration_ms": time.Since(start).Milliseconds(),
				"error":       err.Error(),
			})
		}
	}()

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("engine %s: encode request: %w", op, err)
	}
	endpoint := c.baseURL.JoinPath(op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("engine %s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return engine.Unavailable(op, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return engine.Unavailable(op, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyFailure(op, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return engine.Rejected(op, resp.StatusCode, "malformed response: "+err.Error())
	}
	return nil
}

// classifyFailure separates outages from structured refusals. Gateway
// statuses are always outages; any other status counts as a refusal only
// when the body carries a readable error message.
func classifyFailure(op string, status int, body []byte) error {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests:
		return engine.Unavailable(op, status, nil)
	}
	if msg, ok := errorMessage(body); ok {
		return engine.Rejected(op, status, msg)
	}
	return engine.Unavailable(op, status, errors.New(http.StatusText(status)))
}

type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

func errorMessage(body []byte) (string, bool) {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return "", false
	}
	for _, raw := range []json.RawMessage{eb.Detail, eb.Error} {
		if msg := rawMessage(raw); msg != "" {
			return msg, true
		}
	}
	if msg := strings.TrimSpace(eb.Message); msg != "" {
		return msg, true
	}
	return "", false
}

// rawMessage accepts a plain string, an object with a message field, or
// a FastAPI validation list.
func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if m := strings.TrimSpace(obj.Message); m != "" {
			return m
		}
		return strings.TrimSpace(obj.Msg)
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if m := strings.TrimSpace(item.Msg); m != "" {
				parts = append(parts, m)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

var _ engine.Client = (*Client)(nil)
