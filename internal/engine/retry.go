package engine

import (
	"context"
	"math"
	"time"

	"resume-intel/internal/shared/telemetry"
)

// RetryPolicy bounds how often a caller re-issues an unavailable engine call.
type RetryPolicy struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryPolicy retries twice with a short backoff.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	InitialWait: 300 * time.Millisecond,
	MaxWait:     3 * time.Second,
	Multiplier:  2,
}

type retryingClient struct {
	base   Client
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps base so ErrUnavailable failures are retried per policy.
// Rejections and context cancellation are returned immediately.
func WithRetry(base Client, policy RetryPolicy) Client {
	if base == nil {
		return nil
	}
	if policy.MaxAttempts <= 1 {
		return base
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 1
	}
	return &retryingClient{base: base, policy: policy, sleep: sleepCtx}
}

func retryDo[T any](ctx context.Context, c *retryingClient, op string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !IsUnavailable(err) || ctx.Err() != nil || attempt == c.policy.MaxAttempts-1 {
			break
		}

		wait := c.backoff(attempt)
		telemetry.Warn("engine.retry", map[string]any{
			"op":      op,
			"attempt": attempt + 1,
			"wait_ms": wait.Milliseconds(),
			"error":   err.Error(),
		})
		if err := c.sleep(ctx, wait); err != nil {
			return zero, lastErr
		}
	}
	return zero, lastErr
}

func (c *retryingClient) backoff(attempt int) time.Duration {
	wait := time.Duration(float64(c.policy.InitialWait) * math.Pow(c.policy.Multiplier, float64(attempt)))
	if c.policy.MaxWait > 0 && wait > c.policy.MaxWait {
		wait = c.policy.MaxWait
	}
	return wait
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *retryingClient) ParseResume(ctx context.Context, text string) (ParseResult, error) {
	return retryDo(ctx, c, OpParseResume, func() (ParseResult, error) {
		return c.base.ParseResume(ctx, text)
	})
}

func (c *retryingClient) RecommendJobs(ctx context.Context, parsed ParsedData, analysis Analysis) ([]JobRecommendation, error) {
	return retryDo(ctx, c, OpRecommendJobs, func() ([]JobRecommendation, error) {
		return c.base.RecommendJobs(ctx, parsed, analysis)
	})
}

func (c *retryingClient) RecommendJobsBySkills(ctx context.Context, skills []string) ([]JobRecommendation, error) {
	return retryDo(ctx, c, OpRecommendJobsBySkills, func() ([]JobRecommendation, error) {
		return c.base.RecommendJobsBySkills(ctx, skills)
	})
}

func (c *retryingClient) AnalyzeSkillGap(ctx context.Context, snapshot ResumeSnapshot, targetRole string) (SkillGapReport, error) {
	return retryDo(ctx, c, OpAnalyzeSkillGap, func() (SkillGapReport, error) {
		return c.base.AnalyzeSkillGap(ctx, snapshot, targetRole)
	})
}

func (c *retryingClient) Chat(ctx context.Context, snapshot ResumeSnapshot, message string, history []ChatMessage) (ChatReply, error) {
	return retryDo(ctx, c, OpChat, func() (ChatReply, error) {
		return c.base.Chat(ctx, snapshot, message, history)
	})
}

func (c *retryingClient) GenerateInterviewQuestions(ctx context.Context, parsed ParsedData, analysis Analysis) ([]InterviewQuestion, error) {
	return retryDo(ctx, c, OpInterviewQuestions, func() ([]InterviewQuestion, error) {
		return c.base.GenerateInterviewQuestions(ctx, parsed, analysis)
	})
}
