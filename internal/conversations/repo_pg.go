package conversations

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. Messages live in their own table
// keyed by (conversation_id, position).
type PGRepo struct {
	DB *sql.DB
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertMessage = `
INSERT INTO conversation_messages (conversation_id, position, role, content, created_at)
VALUES ($1, $2, $3, $4, $5)`

// Create inserts the conversation and its seed messages in one transaction.
func (r *PGRepo) Create(ctx context.Context, c Conversation) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO conversations (id, user_id, resume_id, title, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.UserID, c.ResumeID, c.Title, c.CreatedAt, c.UpdatedAt,
	); err != nil {
		return err
	}
	if err := insertMessages(ctx, tx, c.ID, 0, c.Messages); err != nil {
		return err
	}
	return tx.Commit()
}

func insertMessages(ctx context.Context, db execer, conversationID string, start int, msgs []Message) error {
	for i, m := range msgs {
		if _, err := db.ExecContext(ctx, insertMessage, conversationID, start+i, string(m.Role), m.Content, m.Timestamp); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID, conversationID string) (Conversation, error) {
	var c Conversation
	err := r.DB.QueryRowContext(ctx, `
SELECT id, user_id, resume_id, title, created_at, updated_at
FROM conversations
WHERE user_id = $1 AND id = $2`, userID, conversationID,
	).Scan(&c.ID, &c.UserID, &c.ResumeID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Conversation{}, ErrNotFound
		}
		return Conversation{}, err
	}

	rows, err := r.DB.QueryContext(ctx, `
SELECT role, content, created_at
FROM conversation_messages
WHERE conversation_id = $1
ORDER BY position ASC`, c.ID)
	if err != nil {
		return Conversation{}, err
	}
	defer rows.Close()

	c.Messages = []Message{}
	for rows.Next() {
		var (
			m    Message
			role string
		)
		if err := rows.Scan(&role, &m.Content, &m.Timestamp); err != nil {
			return Conversation{}, err
		}
		m.Role = Role(role)
		c.Messages = append(c.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return Conversation{}, err
	}
	return c, nil
}

// AppendTurn locks the conversation row so concurrent appends to the same
// conversation take positions one after another.
func (r *PGRepo) AppendTurn(ctx context.Context, userID, conversationID string, turn Turn, at time.Time) (Conversation, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Conversation{}, err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE user_id = $1 AND id = $2 FOR UPDATE`,
		userID, conversationID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Conversation{}, ErrNotFound
		}
		return Conversation{}, err
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM conversation_messages WHERE conversation_id = $1`,
		id,
	).Scan(&next); err != nil {
		return Conversation{}, err
	}

	if err := insertMessages(ctx, tx, id, next, []Message{turn.User, turn.Assistant}); err != nil {
		return Conversation{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = $1 WHERE id = $2`,
		at.UTC(), id,
	); err != nil {
		return Conversation{}, err
	}
	if err := tx.Commit(); err != nil {
		return Conversation{}, err
	}
	return r.GetByID(ctx, userID, id)
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, `
SELECT c.id, c.user_id, c.resume_id, c.title, c.created_at, c.updated_at,
       (SELECT COUNT(*) FROM conversation_messages m WHERE m.conversation_id = c.id)
FROM conversations c
WHERE c.user_id = $1
ORDER BY c.updated_at DESC, c.id DESC
LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.UserID, &s.ResumeID, &s.Title, &s.CreatedAt, &s.UpdatedAt, &s.MessageCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the conversation; its messages go with it (ON DELETE CASCADE).
func (r *PGRepo) Delete(ctx context.Context, userID, conversationID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM conversations WHERE user_id = $1 AND id = $2`, userID, conversationID)
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

var _ Repo = (*PGRepo)(nil)
