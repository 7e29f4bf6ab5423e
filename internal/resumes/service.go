package resumes

import (
	"bytes"
	"context"
	"strings"
	"time"

	"resume-intel/internal/engine"
	"resume-intel/internal/extract"
	"resume-intel/internal/shared/apperr"
	"resume-intel/internal/shared/metrics"
	"resume-intel/internal/shared/storage/object"
	"resume-intel/internal/shared/telemetry"
)

// DefaultTextFileName names resumes submitted as pasted text.
const DefaultTextFileName = "text-input.txt"

const blobCleanupTimeout = 10 * time.Second

// Service runs the ingestion pipeline: extract, parse, recommend, persist.
type Service struct {
	Repo   Repo
	Store  object.ObjectStore
	Engine engine.Client
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

type ingestJob struct {
	userID   string
	fileName string
	format   extract.Format
	text     string
	original []byte
}

// Ingest extracts text from an uploaded file and analyses it. An empty
// format is detected from the file name and content. Nothing is persisted
// unless every stage succeeds.
func (s *Service) Ingest(ctx context.Context, userID string, data []byte, fileName string, format extract.Format) (Resume, error) {
	fileName = strings.TrimSpace(fileName)
	switch {
	case strings.TrimSpace(userID) == "":
		return Resume{}, apperr.AtStage(apperr.StageValidation, apperr.Validation("user id is required"))
	case fileName == "":
		return Resume{}, apperr.AtStage(apperr.StageValidation, apperr.Validation("file name is required"))
	case len(data) == 0:
		return Resume{}, apperr.AtStage(apperr.StageValidation, apperr.Validation("file is empty"))
	}

	if format == "" {
		detected, err := extract.DetectFormat(fileName, data)
		if err != nil {
			return Resume{}, apperr.AtStage(apperr.StageExtraction, err)
		}
		format = detected
	}

	metrics.IncIngestStarted()
	text, err := extract.Extract(ctx, data, format)
	if err != nil {
		return Resume{}, s.fail(userID, fileName, apperr.AtStage(apperr.StageExtraction, err))
	}

	return s.run(ctx, ingestJob{
		userID:   userID,
		fileName: fileName,
		format:   format,
		text:     text,
		original: data,
	})
}

// IngestText analyses pasted resume text; there is no extraction step and
// no stored original.
func (s *Service) IngestText(ctx context.Context, userID, rawText, fileName string) (Resume, error) {
	if strings.TrimSpace(userID) == "" {
		return Resume{}, apperr.AtStage(apperr.StageValidation, apperr.Validation("user id is required"))
	}
	if strings.TrimSpace(rawText) == "" {
		return Resume{}, apperr.AtStage(apperr.StageValidation, apperr.Validation("resume text is required"))
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		fileName = DefaultTextFileName
	}

	metrics.IncIngestStarted()
	return s.run(ctx, ingestJob{
		userID:   userID,
		fileName: fileName,
		format:   extract.FormatText,
		text:     rawText,
	})
}

func (s *Service) run(ctx context.Context, job ingestJob) (Resume, error) {
	parsed, err := s.Engine.ParseResume(ctx, job.text)
	if err != nil {
		return Resume{}, s.fail(job.userID, job.fileName, apperr.AtStage(apperr.StageParse, err))
	}

	recs, err := s.Engine.RecommendJobs(ctx, parsed.ParsedData, parsed.Analysis)
	if err != nil {
		return Resume{}, s.fail(job.userID, job.fileName, apperr.AtStage(apperr.StageRecommend, err))
	}

	if err := ctx.Err(); err != nil {
		return Resume{}, s.fail(job.userID, job.fileName, apperr.AtStage(apperr.StageStorage, err))
	}

	var storageKey string
	if len(job.original) > 0 && s.Store != nil {
		key, _, _, err := s.Store.Save(ctx, job.userID, job.fileName, bytes.NewReader(job.original))
		if err != nil {
			return Resume{}, s.fail(job.userID, job.fileName, apperr.AtStage(apperr.StageStorage, apperr.Persistence(err)))
		}
		storageKey = key
	}

	resume, err := NewResume(Draft{
		UserID:          job.userID,
		FileName:        job.fileName,
		Format:          job.format,
		StorageKey:      storageKey,
		RawText:         job.text,
		Parsed:          parsed,
		Recommendations: recs,
	}, s.now())
	if err != nil {
		s.discardBlob(ctx, storageKey)
		return Resume{}, s.fail(job.userID, job.fileName, apperr.AtStage(apperr.StagePersist, err))
	}

	if err := ctx.Err(); err != nil {
		s.discardBlob(ctx, storageKey)
		return Resume{}, s.fail(job.userID, job.fileName, apperr.AtStage(apperr.StagePersist, err))
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		s.discardBlob(ctx, storageKey)
		return Resume{}, s.fail(job.userID, job.fileName, apperr.AtStage(apperr.StagePersist, apperr.Persistence(err)))
	}

	metrics.IncIngestCompleted()
	telemetry.Info("resume.ingested", map[string]any{
		"user_id":         job.userID,
		"resume_id":       resume.ID,
		"file_format":     string(job.format),
		"recommendations": len(resume.JobRecommendations),
	})
	return resume, nil
}

func (s *Service) fail(userID, fileName string, err error) error {
	metrics.IncIngestFailed()
	stage, _ := apperr.StageOf(err)
	telemetry.Warn("resume.ingest_failed", map[string]any{
		"user_id":   userID,
		"file_name": fileName,
		"stage":     string(stage),
		"error":     err.Error(),
	})
	return err
}

// discardBlob removes an original saved for a resume that was never
// committed. It runs detached from ctx so a cancelled request still cleans up.
func (s *Service) discardBlob(ctx context.Context, key string) {
	if key == "" || s.Store == nil {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), blobCleanupTimeout)
	defer cancel()
	if err := s.Store.Delete(cleanupCtx, key); err != nil {
		telemetry.Warn("resume.blob_cleanup_failed", map[string]any{"storage_key": key, "error": err.Error()})
	}
}

// Get returns one resume owned by userID.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (Resume, error) {
	if strings.TrimSpace(resumeID) == "" {
		return Resume{}, apperr.AtStage(apperr.StageValidation, apperr.Validation("resume id is required"))
	}
	res, err := s.Repo.GetByID(ctx, userID, strings.TrimSpace(resumeID))
	if err != nil {
		return Resume{}, apperr.AtStage(apperr.StageLookup, apperr.Persistence(err))
	}
	return res, nil
}

// List returns the user's resumes, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	out, err := s.Repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.AtStage(apperr.StageLookup, apperr.Persistence(err))
	}
	return out, nil
}

// FileNames maps the given resume ids to file names. Ids that no longer
// resolve for userID are left out.
func (s *Service) FileNames(ctx context.Context, userID string, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if _, seen := out[id]; seen || id == "" {
			continue
		}
		res, err := s.Repo.GetByID(ctx, userID, id)
		if err != nil {
			if apperr.IsNotFound(err) {
				continue
			}
			return nil, apperr.Persistence(err)
		}
		out[id] = res.FileName
	}
	return out, nil
}

// Delete removes the resume record, then best-effort removes the stored
// original. A failed blob delete is logged and does not fail the call.
func (s *Service) Delete(ctx context.Context, userID, resumeID string) error {
	res, err := s.Get(ctx, userID, resumeID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, userID, res.ID); err != nil {
		return apperr.AtStage(apperr.StagePersist, apperr.Persistence(err))
	}
	if res.StorageKey != "" && s.Store != nil {
		if err := s.Store.Delete(ctx, res.StorageKey); err != nil {
			telemetry.Warn("resume.blob_delete_failed", map[string]any{
				"user_id":     userID,
				"resume_id":   res.ID,
				"storage_key": res.StorageKey,
				"error":       err.Error(),
			})
		}
	}
	telemetry.Info("resume.deleted", map[string]any{"user_id": userID, "resume_id": res.ID})
	return nil
}
