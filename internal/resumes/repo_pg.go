package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"resume-intel/internal/engine"
	"resume-intel/internal/extract"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, file_name, file_format, storage_key, raw_text, parsed_data, ai_analysis, job_recommendations, uploaded_at`

// Create inserts the complete resume in a single statement.
func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (
    id,
    user_id,
    file_name,
    file_format,
    storage_key,
    raw_text,
    parsed_data,
    ai_analysis,
    job_recommendations,
    uploaded_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	parsed, err := json.Marshal(res.ParsedData)
	if err != nil {
		return fmt.Errorf("marshal parsed data: %w", err)
	}
	analysis, err := json.Marshal(res.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	recs := res.JobRecommendations
	if recs == nil {
		recs = []engine.JobRecommendation{}
	}
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	var storageKey sql.NullString
	if res.StorageKey != "" {
		storageKey = sql.NullString{String: res.StorageKey, Valid: true}
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		res.ID,
		res.UserID,
		res.FileName,
		string(res.Format),
		storageKey,
		res.RawText,
		parsed,
		analysis,
		recsJSON,
		res.UploadedAt,
	)
	return err
}

// GetByID fetches a resume by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, resumeID string) (Resume, error) {
	query := `SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1 AND id = $2
LIMIT 1`
	res, err := scanResume(r.DB.QueryRowContext(ctx, query, userID, resumeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

// ListByUser lists resumes ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1
ORDER BY uploaded_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resume{}
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Delete removes the catalog record.
func (r *PGRepo) Delete(ctx context.Context, userID, resumeID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE user_id = $1 AND id = $2`, userID, resumeID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var (
		res        Resume
		format     string
		storageKey sql.NullString
		parsed     []byte
		analysis   []byte
		recs       []byte
	)
	if err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.FileName,
		&format,
		&storageKey,
		&res.RawText,
		&parsed,
		&analysis,
		&recs,
		&res.UploadedAt,
	); err != nil {
		return Resume{}, err
	}
	res.Format = extract.Format(format)
	if storageKey.Valid {
		res.StorageKey = storageKey.String
	}
	if err := unmarshalColumn(parsed, &res.ParsedData); err != nil {
		return Resume{}, fmt.Errorf("parsed_data: %w", err)
	}
	if err := unmarshalColumn(analysis, &res.Analysis); err != nil {
		return Resume{}, fmt.Errorf("ai_analysis: %w", err)
	}
	if err := unmarshalColumn(recs, &res.JobRecommendations); err != nil {
		return Resume{}, fmt.Errorf("job_recommendations: %w", err)
	}
	return res, nil
}

func unmarshalColumn(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

var _ Repo = (*PGRepo)(nil)
