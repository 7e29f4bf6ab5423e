package skillgap

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"resume-intel/internal/engine"
	"resume-intel/internal/shared/apperr"
)

// Analysis is a persisted skill-gap report for one resume and target role.
// Seq is assigned by the repository on insert and orders analyses created
// within the same instant.
type Analysis struct {
	ID             string                `bson:"_id"`
	Seq            int64                 `bson:"seq"`
	UserID         string                `bson:"user_id"`
	ResumeID       string                `bson:"resume_id"`
	TargetJobTitle string                `bson:"target_job_title"`
	RoleKey        string                `bson:"role_key"`
	Report         engine.SkillGapReport `bson:"report"`
	CreatedAt      time.Time             `bson:"created_at"`
}

// RoleKey normalizes a target role for cache lookups: surrounding
// whitespace is dropped and the rest is case folded.
func RoleKey(role string) string {
	return cases.Fold().String(strings.TrimSpace(role))
}

// NewAnalysis builds an unsaved analysis from an engine report.
func NewAnalysis(userID, resumeID, targetRole string, report engine.SkillGapReport, now time.Time) (Analysis, error) {
	switch {
	case strings.TrimSpace(userID) == "":
		return Analysis{}, apperr.Validation("user id is required")
	case strings.TrimSpace(resumeID) == "":
		return Analysis{}, apperr.Validation("resume id is required")
	case strings.TrimSpace(targetRole) == "":
		return Analysis{}, apperr.Validation("target job title is required")
	}
	report.MatchPercentage = engine.ClampPercentage(report.MatchPercentage)
	return Analysis{
		ID:             uuid.NewString(),
		UserID:         userID,
		ResumeID:       resumeID,
		TargetJobTitle: targetRole,
		RoleKey:        RoleKey(targetRole),
		Report:         report,
		CreatedAt:      now.UTC(),
	}, nil
}

// newer reports whether a sorts before b in newest-first order.
func newer(a, b Analysis) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Seq > b.Seq
}
