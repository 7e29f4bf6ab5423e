package resumes

import (
	"time"

	"resume-intel/internal/engine"
)

// ResumeResponse is the outward-facing representation of an analysed resume.
type ResumeResponse struct {
	ResumeID           string                     `json:"resumeId"`
	FileName           string                     `json:"fileName"`
	FileFormat         string                     `json:"fileFormat"`
	UploadedAt         time.Time                  `json:"uploadedAt"`
	ParsedData         engine.ParsedData          `json:"parsedData"`
	AIAnalysis         engine.Analysis            `json:"aiAnalysis"`
	JobRecommendations []engine.JobRecommendation `json:"jobRecommendations"`
	RawText            string                     `json:"rawText,omitempty"`
}

// ResumeSummary is a list entry.
type ResumeSummary struct {
	ResumeID      string    `json:"resumeId"`
	FileName      string    `json:"fileName"`
	FileFormat    string    `json:"fileFormat"`
	UploadedAt    time.Time `json:"uploadedAt"`
	Name          string    `json:"name,omitempty"`
	PrimaryDomain string    `json:"primaryDomain,omitempty"`
	SkillLevel    string    `json:"skillLevel,omitempty"`
}

type uploadTextRequest struct {
	ResumeText string `json:"resumeText"`
	FileName   string `json:"fileName"`
}

func toResponse(r Resume, withRawText bool) ResumeResponse {
	recs := r.JobRecommendations
	if recs == nil {
		recs = []engine.JobRecommendation{}
	}
	resp := ResumeResponse{
		ResumeID:           r.ID,
		FileName:           r.FileName,
		FileFormat:         string(r.Format),
		UploadedAt:         r.UploadedAt,
		ParsedData:         r.ParsedData,
		AIAnalysis:         r.Analysis,
		JobRecommendations: recs,
	}
	if withRawText {
		resp.RawText = r.RawText
	}
	return resp
}

func toSummary(r Resume) ResumeSummary {
	return ResumeSummary{
		ResumeID:      r.ID,
		FileName:      r.FileName,
		FileFormat:    string(r.Format),
		UploadedAt:    r.UploadedAt,
		Name:          r.ParsedData.Name,
		PrimaryDomain: r.Analysis.PrimaryDomain,
		SkillLevel:    r.Analysis.SkillLevel,
	}
}
