package skillgap

import (
	"time"

	"resume-intel/internal/engine"
)

type analyzeRequest struct {
	ResumeID       string `json:"resumeId"`
	TargetJobTitle string `json:"targetJobTitle"`
	ForceReanalyze bool   `json:"forceReanalyze"`
}

type analyzeResponse struct {
	Message    string                `json:"message"`
	AnalysisID string                `json:"analysisId"`
	FromCache  bool                  `json:"fromCache"`
	Analysis   engine.SkillGapReport `json:"analysis"`
}

// AnalysisResponse is the outward-facing representation of a stored analysis.
type AnalysisResponse struct {
	AnalysisID     string                `json:"analysisId"`
	ResumeID       string                `json:"resumeId"`
	ResumeFileName string                `json:"resumeFileName,omitempty"`
	TargetJobTitle string                `json:"targetJobTitle"`
	Report         engine.SkillGapReport `json:"analysis"`
	CreatedAt      time.Time             `json:"createdAt"`
}

func toAnalyzeResponse(res Result) analyzeResponse {
	msg := "Skill gap analysis completed"
	if res.FromCache {
		msg = "Returning existing analysis"
	}
	return analyzeResponse{
		Message:    msg,
		AnalysisID: res.Analysis.ID,
		FromCache:  res.FromCache,
		Analysis:   res.Analysis.Report,
	}
}

func toResponse(s Summary) AnalysisResponse {
	return AnalysisResponse{
		AnalysisID:     s.ID,
		ResumeID:       s.ResumeID,
		ResumeFileName: s.ResumeFileName,
		TargetJobTitle: s.TargetJobTitle,
		Report:         s.Report,
		CreatedAt:      s.CreatedAt,
	}
}
