package resumes

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-intel/internal/engine"
	"resume-intel/internal/extract"
	"resume-intel/internal/shared/apperr"
)

// Resume is a fully analysed resume. A record only exists once extraction,
// parsing and job recommendation have all succeeded.
type Resume struct {
	ID                 string                     `bson:"_id"`
	UserID             string                     `bson:"user_id"`
	FileName           string                     `bson:"file_name"`
	Format             extract.Format             `bson:"file_format"`
	StorageKey         string                     `bson:"storage_key,omitempty"`
	RawText            string                     `bson:"raw_text"`
	ParsedData         engine.ParsedData          `bson:"parsed_data"`
	Analysis           engine.Analysis            `bson:"ai_analysis"`
	JobRecommendations []engine.JobRecommendation `bson:"job_recommendations"`
	UploadedAt         time.Time                  `bson:"uploaded_at"`
}

// Draft carries everything needed to build a Resume.
type Draft struct {
	UserID          string
	FileName        string
	Format          extract.Format
	StorageKey      string
	RawText         string
	Parsed          engine.ParseResult
	Recommendations []engine.JobRecommendation
}

// NewResume validates d and stamps it with a fresh id and the supplied time.
func NewResume(d Draft, now time.Time) (Resume, error) {
	if strings.TrimSpace(d.UserID) == "" {
		return Resume{}, apperr.Validation("user id is required")
	}
	if strings.TrimSpace(d.FileName) == "" {
		return Resume{}, apperr.Validation("file name is required")
	}
	if !d.Format.Valid() {
		return Resume{}, apperr.Validation("unknown file format " + string(d.Format))
	}
	if strings.TrimSpace(d.RawText) == "" {
		return Resume{}, apperr.Validation("resume text is empty")
	}
	if now.IsZero() {
		return Resume{}, apperr.Validation("upload time is required")
	}

	recs := make([]engine.JobRecommendation, len(d.Recommendations))
	for i, rec := range d.Recommendations {
		rec.MatchPercentage = engine.ClampPercentage(rec.MatchPercentage)
		recs[i] = rec
	}

	return Resume{
		ID:                 uuid.NewString(),
		UserID:             d.UserID,
		FileName:           strings.TrimSpace(d.FileName),
		Format:             d.Format,
		StorageKey:         d.StorageKey,
		RawText:            d.RawText,
		ParsedData:         d.Parsed.ParsedData,
		Analysis:           d.Parsed.Analysis,
		JobRecommendations: recs,
		UploadedAt:         now.UTC(),
	}, nil
}

// Snapshot is the resume context handed to the engine. Chat also gets the
// raw text; skill-gap analysis does not.
func (r Resume) Snapshot(withRawText bool) engine.ResumeSnapshot {
	snap := engine.ResumeSnapshot{ParsedData: r.ParsedData, Analysis: r.Analysis}
	if withRawText {
		snap.RawText = r.RawText
	}
	return snap
}
