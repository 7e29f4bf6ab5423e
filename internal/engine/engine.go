// Package engine defines the contract of the external analysis engine.
// Implementations do no retrying and hold no business logic; callers pick
// the retry policy (see WithRetry).
package engine

import "context"

// Client is the request/response surface of the analysis engine.
type Client interface {
	ParseResume(ctx context.Context, text string) (ParseResult, error)
	RecommendJobs(ctx context.Context, parsed ParsedData, analysis Analysis) ([]JobRecommendation, error)
	RecommendJobsBySkills(ctx context.Context, skills []string) ([]JobRecommendation, error)
	AnalyzeSkillGap(ctx context.Context, snapshot ResumeSnapshot, targetRole string) (SkillGapReport, error)
	Chat(ctx context.Context, snapshot ResumeSnapshot, message string, history []ChatMessage) (ChatReply, error)
	GenerateInterviewQuestions(ctx context.Context, parsed ParsedData, analysis Analysis) ([]InterviewQuestion, error)
}

// Operation names, used in errors, logs and metrics.
const (
	OpParseResume           = "parse-resume"
	OpRecommendJobs         = "recommend-jobs"
	OpRecommendJobsBySkills = "recommend-jobs-by-skills"
	OpAnalyzeSkillGap       = "analyze-skill-gap"
	OpChat                  = "chat"
	OpInterviewQuestions    = "generate-interview-questions"
)
