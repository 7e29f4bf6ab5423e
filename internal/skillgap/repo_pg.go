package skillgap

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `id, seq, user_id, resume_id, target_job_title, role_key, report, created_at`

// Create inserts the analysis; seq comes from the table's sequence.
func (r *PGRepo) Create(ctx context.Context, a Analysis) (Analysis, error) {
	const query = `
INSERT INTO skill_gap_analyses (
    id,
    user_id,
    resume_id,
    target_job_title,
    role_key,
    match_percentage,
    report,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING seq`

	report, err := json.Marshal(a.Report)
	if err != nil {
		return Analysis{}, fmt.Errorf("marshal report: %w", err)
	}
	if err := r.DB.QueryRowContext(
		ctx,
		query,
		a.ID,
		a.UserID,
		a.ResumeID,
		a.TargetJobTitle,
		a.RoleKey,
		a.Report.MatchPercentage,
		report,
		a.CreatedAt,
	).Scan(&a.Seq); err != nil {
		return Analysis{}, err
	}
	return a, nil
}

// LatestForRole returns the newest analysis; equal timestamps fall back to seq.
func (r *PGRepo) LatestForRole(ctx context.Context, userID, resumeID, roleKey string) (Analysis, error) {
	query := `SELECT ` + analysisColumns + `
FROM skill_gap_analyses
WHERE user_id = $1 AND resume_id = $2 AND role_key = $3
ORDER BY created_at DESC, seq DESC
LIMIT 1`
	return r.one(ctx, query, userID, resumeID, roleKey)
}

func (r *PGRepo) GetByID(ctx context.Context, userID, analysisID string) (Analysis, error) {
	query := `SELECT ` + analysisColumns + `
FROM skill_gap_analyses
WHERE user_id = $1 AND id = $2
LIMIT 1`
	return r.one(ctx, query, userID, analysisID)
}

func (r *PGRepo) one(ctx context.Context, query string, args ...any) (Analysis, error) {
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + analysisColumns + `
FROM skill_gap_analyses
WHERE user_id = $1
ORDER BY created_at DESC, seq DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, userID, analysisID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM skill_gap_analyses WHERE user_id = $1 AND id = $2`, userID, analysisID)
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

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a      Analysis
		report []byte
	)
	if err := row.Scan(
		&a.ID,
		&a.Seq,
		&a.UserID,
		&a.ResumeID,
		&a.TargetJobTitle,
		&a.RoleKey,
		&report,
		&a.CreatedAt,
	); err != nil {
		return Analysis{}, err
	}
	if len(report) > 0 {
		if err := json.Unmarshal(report, &a.Report); err != nil {
			return Analysis{}, fmt.Errorf("report: %w", err)
		}
	}
	return a, nil
}

var _ Repo = (*PGRepo)(nil)
