package skillgap

import (
	"context"
	"strings"
	"time"

	"resume-intel/internal/engine"
	"resume-intel/internal/resumes"
	"resume-intel/internal/shared/apperr"
	"resume-intel/internal/shared/metrics"
	"resume-intel/internal/shared/telemetry"
)

// ResumeLookup is the slice of the resume service this package needs.
type ResumeLookup interface {
	Get(ctx context.Context, userID, resumeID string) (resumes.Resume, error)
	FileNames(ctx context.Context, userID string, ids []string) (map[string]string, error)
}

// Service answers skill-gap requests from the cache or the engine.
type Service struct {
	Repo    Repo
	Resumes ResumeLookup
	Engine  engine.Client
	Now     func() time.Time
}

// Result is an analysis and whether it was served from the cache.
type Result struct {
	Analysis  Analysis
	FromCache bool
}

// Summary is a list entry with the file name of the analysed resume. The
// file name is empty when the resume has since been deleted.
type Summary struct {
	Analysis
	ResumeFileName string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Analyze returns the newest stored analysis for the resume and role unless
// force is set; otherwise it asks the engine and stores a new analysis.
func (s *Service) Analyze(ctx context.Context, userID, resumeID, targetRole string, force bool) (Result, error) {
	resumeID = strings.TrimSpace(resumeID)
	if resumeID == "" {
		return Result{}, apperr.AtStage(apperr.StageValidation, apperr.Validation("resume id is required"))
	}
	if strings.TrimSpace(targetRole) == "" {
		return Result{}, apperr.AtStage(apperr.StageValidation, apperr.Validation("target job title is required"))
	}
	key := RoleKey(targetRole)

	if !force {
		cached, err := s.Repo.LatestForRole(ctx, userID, resumeID, key)
		switch {
		case err == nil:
			metrics.IncSkillGapCacheHit()
			telemetry.Info("skill_gap.cache_hit", map[string]any{
				"user_id":     userID,
				"resume_id":   resumeID,
				"analysis_id": cached.ID,
				"role_key":    key,
			})
			return Result{Analysis: cached, FromCache: true}, nil
		case !apperr.IsNotFound(err):
			return Result{}, apperr.AtStage(apperr.StageLookup, apperr.Persistence(err))
		}
	}
	metrics.IncSkillGapCacheMiss()

	resume, err := s.Resumes.Get(ctx, userID, resumeID)
	if err != nil {
		return Result{}, apperr.AtStage(apperr.StageLookup, err)
	}

	report, err := s.Engine.AnalyzeSkillGap(ctx, resume.Snapshot(false), strings.TrimSpace(targetRole))
	if err != nil {
		return Result{}, apperr.AtStage(apperr.StageSkillGap, err)
	}

	analysis, err := NewAnalysis(userID, resumeID, targetRole, report, s.now())
	if err != nil {
		return Result{}, apperr.AtStage(apperr.StageValidation, err)
	}
	saved, err := s.Repo.Create(ctx, analysis)
	if err != nil {
		return Result{}, apperr.AtStage(apperr.StagePersist, apperr.Persistence(err))
	}

	telemetry.Info("skill_gap.computed", map[string]any{
		"user_id":          userID,
		"resume_id":        resumeID,
		"analysis_id":      saved.ID,
		"role_key":         key,
		"forced":           force,
		"match_percentage": saved.Report.MatchPercentage,
	})
	return Result{Analysis: saved}, nil
}

// Get returns one analysis with the analysed resume's file name.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Summary, error) {
	if strings.TrimSpace(analysisID) == "" {
		return Summary{}, apperr.AtStage(apperr.StageValidation, apperr.Validation("analysis id is required"))
	}
	a, err := s.Repo.GetByID(ctx, userID, strings.TrimSpace(analysisID))
	if err != nil {
		return Summary{}, apperr.AtStage(apperr.StageLookup, apperr.Persistence(err))
	}
	out, err := s.withFileNames(ctx, userID, []Analysis{a})
	if err != nil {
		return Summary{}, err
	}
	return out[0], nil
}

// List returns the user's analyses, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Summary, error) {
	items, err := s.Repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.AtStage(apperr.StageLookup, apperr.Persistence(err))
	}
	return s.withFileNames(ctx, userID, items)
}

func (s *Service) withFileNames(ctx context.Context, userID string, items []Analysis) ([]Summary, error) {
	ids := make([]string, 0, len(items))
	for _, a := range items {
		ids = append(ids, a.ResumeID)
	}
	names, err := s.Resumes.FileNames(ctx, userID, ids)
	if err != nil {
		return nil, apperr.AtStage(apperr.StageLookup, err)
	}
	out := make([]Summary, 0, len(items))
	for _, a := range items {
		out = append(out, Summary{Analysis: a, ResumeFileName: names[a.ResumeID]})
	}
	return out, nil
}

// Delete removes one analysis owned by userID.
func (s *Service) Delete(ctx context.Context, userID, analysisID string) error {
	if strings.TrimSpace(analysisID) == "" {
		return apperr.AtStage(apperr.StageValidation, apperr.Validation("analysis id is required"))
	}
	if err := s.Repo.Delete(ctx, userID, strings.TrimSpace(analysisID)); err != nil {
		return apperr.AtStage(apperr.StagePersist, apperr.Persistence(err))
	}
	return nil
}
