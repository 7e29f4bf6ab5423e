// Package interview generates practice interview questions for a resume.
// Nothing is stored.
package interview

import (
	"context"
	"strings"

	"resume-intel/internal/engine"
	"resume-intel/internal/resumes"
	"resume-intel/internal/shared/apperr"
	"resume-intel/internal/shared/telemetry"
)

// ResumeLookup fetches a resume owned by a user.
type ResumeLookup interface {
	Get(ctx context.Context, userID, resumeID string) (resumes.Resume, error)
}

type Service struct {
	Resumes ResumeLookup
	Engine  engine.Client
}

// Generate asks the engine for questions tailored to the resume.
func (s *Service) Generate(ctx context.Context, userID, resumeID string) ([]engine.InterviewQuestion, error) {
	resumeID = strings.TrimSpace(resumeID)
	if resumeID == "" {
		return nil, apperr.AtStage(apperr.StageValidation, apperr.Validation("resume id is required"))
	}
	res, err := s.Resumes.Get(ctx, userID, resumeID)
	if err != nil {
		return nil, apperr.AtStage(apperr.StageLookup, err)
	}
	questions, err := s.Engine.GenerateInterviewQuestions(ctx, res.ParsedData, res.Analysis)
	if err != nil {
		return nil, apperr.AtStage(apperr.StageInterview, err)
	}
	if questions == nil {
		questions = []engine.InterviewQuestion{}
	}
	telemetry.Info("interview.generated", map[string]any{
		"user_id":   userID,
		"resume_id": resumeID,
		"questions": len(questions),
	})
	return questions, nil
}
