package resumes

import (
	"errors"
	"testing"
	"time"

	"resume-intel/internal/engine"
	"resume-intel/internal/extract"
	"resume-intel/internal/shared/apperr"
)

func validDraft() Draft {
	return Draft{
		UserID:   "user-1",
		FileName: " cv.pdf ",
		Format:   extract.FormatPDF,
		RawText:  "Ada Lovelace\nBackend Engineer",
		Parsed: engine.ParseResult{
			ParsedData: engine.ParsedData{Name: "Ada Lovelace"},
			Analysis:   engine.Analysis{SkillLevel: "Senior"},
		},
		Recommendations: []engine.JobRecommendation{
			{JobTitle: "A", MatchPercentage: 140},
			{JobTitle: "B", MatchPercentage: -3},
			{JobTitle: "C", MatchPercentage: 55.5},
		},
	}
}

func TestNewResumeClampsAndStamps(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	res, err := NewResume(validDraft(), now)
	if err != nil {
		t.Fatalf("NewResume: %v", err)
	}
	if res.ID == "" {
		t.Fatalf("expected id")
	}
	if res.FileName != "cv.pdf" {
		t.Fatalf("expected trimmed file name, got %q", res.FileName)
	}
	if !res.UploadedAt.Equal(now) || res.UploadedAt.Location() != time.UTC {
		t.Fatalf("expected UTC upload time, got %v", res.UploadedAt)
	}
	want := []float64{100, 0, 55.5}
	for i, rec := range res.JobRecommendations {
		if rec.MatchPercentage != want[i] {
			t.Fatalf("rec %d: expected %v, got %v", i, want[i], rec.MatchPercentage)
		}
	}
}

func TestNewResumeValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Draft)
	}{
		{"missing user", func(d *Draft) { d.UserID = " " }},
		{"missing file name", func(d *Draft) { d.FileName = "" }},
		{"unknown format", func(d *Draft) { d.Format = "rtf" }},
		{"empty text", func(d *Draft) { d.RawText = "\n\t" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			_, err := NewResume(d, time.Now())
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSnapshotRawText(t *testing.T) {
	res, err := NewResume(validDraft(), time.Now())
	if err != nil {
		t.Fatalf("NewResume: %v", err)
	}
	if got := res.Snapshot(false); got.RawText != "" || got.ParsedData.Name != "Ada Lovelace" {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if got := res.Snapshot(true); got.RawText != res.RawText {
		t.Fatalf("expected raw text in chat snapshot")
	}
}
