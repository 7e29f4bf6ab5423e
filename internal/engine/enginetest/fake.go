// Package enginetest provides a programmable engine.Client for tests.
package enginetest

import (
	"context"
	"sync"

	"resume-intel/internal/engine"
)

// Fake is an engine.Client whose responses are set per operation. Unset
// operations return canned data. Calls are counted per operation.
type Fake struct {
	ParseFn     func(ctx context.Context, text string) (engine.ParseResult, error)
	RecommendFn func(ctx context.Context, parsed engine.ParsedData, analysis engine.Analysis) ([]engine.JobRecommendation, error)
	BySkillsFn  func(ctx context.Context, skills []string) ([]engine.JobRecommendation, error)
	SkillGapFn  func(ctx context.Context, snapshot engine.ResumeSnapshot, targetRole string) (engine.SkillGapReport, error)
	ChatFn      func(ctx context.Context, snapshot engine.ResumeSnapshot, message string, history []engine.ChatMessage) (engine.ChatReply, error)
	InterviewFn func(ctx context.Context, parsed engine.ParsedData, analysis engine.Analysis) ([]engine.InterviewQuestion, error)

	mu    sync.Mutex
	calls map[string]int
}

// New returns a Fake with canned responses.
func New() *Fake {
	return &Fake{}
}

// Calls returns how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *Fake) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
}

// SampleParse is the canned ParseResume response.
func SampleParse() engine.ParseResult {
	return engine.ParseResult{
		ParsedData: engine.ParsedData{
			Name:   "Ada Lovelace",
			Email:  "ada@example.com",
			Skills: []string{"Go", "PostgreSQL", "Kubernetes"},
			Experience: []engine.Experience{
				{Title: "Backend Engineer", Company: "Analytical Engines", Duration: "2019-2024"},
			},
		},
		Analysis: engine.Analysis{
			SkillLevel:      "Senior",
			PrimaryDomain:   "Backend",
			ExperienceYears: 5,
			Strengths:       []string{"distributed systems"},
		},
	}
}

func (f *Fake) ParseResume(ctx context.Context, text string) (engine.ParseResult, error) {
	f.record(engine.OpParseResume)
	if f.ParseFn != nil {
		return f.ParseFn(ctx, text)
	}
	return SampleParse(), nil
}

func (f *Fake) RecommendJobs(ctx context.Context, parsed engine.ParsedData, analysis engine.Analysis) ([]engine.JobRecommendation, error) {
	f.record(engine.OpRecommendJobs)
	if f.RecommendFn != nil {
		return f.RecommendFn(ctx, parsed, analysis)
	}
	return []engine.JobRecommendation{
		{JobTitle: "Platform Engineer", MatchPercentage: 82, MatchedSkills: []string{"Go"}},
	}, nil
}

func (f *Fake) RecommendJobsBySkills(ctx context.Context, skills []string) ([]engine.JobRecommendation, error) {
	f.record(engine.OpRecommendJobsBySkills)
	if f.BySkillsFn != nil {
		return f.BySkillsFn(ctx, skills)
	}
	return []engine.JobRecommendation{
		{JobTitle: "Backend Developer", MatchPercentage: 70, MatchedSkills: skills},
	}, nil
}

func (f *Fake) AnalyzeSkillGap(ctx context.Context, snapshot engine.ResumeSnapshot, targetRole string) (engine.SkillGapReport, error) {
	f.record(engine.OpAnalyzeSkillGap)
	if f.SkillGapFn != nil {
		return f.SkillGapFn(ctx, snapshot, targetRole)
	}
	return engine.SkillGapReport{
		MatchPercentage: 64,
		UserSkills:      snapshot.ParsedData.Skills,
		RequiredSkills:  []string{"Go", "Terraform"},
		MatchedSkills:   []string{"Go"},
		MissingSkills:   []string{"Terraform"},
		Summary:         "Solid fit for " + targetRole,
	}, nil
}

func (f *Fake) Chat(ctx context.Context, snapshot engine.ResumeSnapshot, message string, history []engine.ChatMessage) (engine.ChatReply, error) {
	f.record(engine.OpChat)
	if f.ChatFn != nil {
		return f.ChatFn(ctx, snapshot, message, history)
	}
	return engine.ChatReply{Reply: "echo: " + message}, nil
}

func (f *Fake) GenerateInterviewQuestions(ctx context.Context, parsed engine.ParsedData, analysis engine.Analysis) ([]engine.InterviewQuestion, error) {
	f.record(engine.OpInterviewQuestions)
	if f.InterviewFn != nil {
		return f.InterviewFn(ctx, parsed, analysis)
	}
	return []engine.InterviewQuestion{
		{Category: "technical", Question: "How does Go schedule goroutines?", Difficulty: "medium"},
	}, nil
}

var _ engine.Client = (*Fake)(nil)
