// Package jobs recommends roles from a bare skill list and serves the
// fixed list of job categories.
package jobs

import (
	"context"
	"strings"

	"resume-intel/internal/engine"
	"resume-intel/internal/shared/apperr"
)

// Categories is the fixed list offered to clients when picking a target role.
var Categories = []string{
	"Frontend Development",
	"Backend Development",
	"Full Stack Development",
	"Mobile Development",
	"DevOps Engineering",
	"Data Science",
	"Machine Learning Engineering",
	"AI Engineering",
	"Cloud Architecture",
	"Cybersecurity",
	"Game Development",
	"Blockchain Development",
	"QA/Testing",
	"UI/UX Design",
	"Product Management",
}

type Service struct {
	Engine engine.Client
}

// RecommendBySkills drops blank and duplicate skills before asking the
// engine. An empty list after cleaning is a validation error.
func (s *Service) RecommendBySkills(ctx context.Context, skills []string) ([]engine.JobRecommendation, error) {
	cleaned := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, skill)
	}
	if len(cleaned) == 0 {
		return nil, apperr.AtStage(apperr.StageValidation, apperr.Validation("skills array is required"))
	}

	recs, err := s.Engine.RecommendJobsBySkills(ctx, cleaned)
	if err != nil {
		return nil, apperr.AtStage(apperr.StageRecommend, err)
	}
	out := make([]engine.JobRecommendation, len(recs))
	for i, rec := range recs {
		rec.MatchPercentage = engine.ClampPercentage(rec.MatchPercentage)
		out[i] = rec
	}
	return out, nil
}
