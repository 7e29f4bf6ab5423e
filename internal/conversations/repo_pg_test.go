package conversations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoAppendTurnLocksAndPositions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	at := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
	turn, err := NewTurn("question", "answer", at)
	if err != nil {
		t.Fatalf("NewTurn: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM conversations WHERE user_id = \\$1 AND id = \\$2 FOR UPDATE").
		WithArgs("user-1", "conv-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("conv-1"))
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(position\\) \\+ 1, 0\\)").
		WithArgs("conv-1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(2))
	mock.ExpectExec("INSERT INTO conversation_messages").
		WithArgs("conv-1", 2, "user", "question", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO conversation_messages").
		WithArgs("conv-1", 3, "assistant", "answer", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE conversations SET updated_at").
		WithArgs(at, "conv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created := at.Add(-time.Hour)
	mock.ExpectQuery("SELECT id, user_id, resume_id, title, created_at, updated_at FROM conversations").
		WithArgs("user-1", "conv-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "resume_id", "title", "created_at", "updated_at"}).
			AddRow("conv-1", "user-1", "res-1", "hello", created, at))
	mock.ExpectQuery("FROM conversation_messages").
		WithArgs("conv-1").
		WillReturnRows(sqlmock.NewRows([]string{"role", "content", "created_at"}).
			AddRow("user", "hello", created).
			AddRow("assistant", "hi", created).
			AddRow("user", "question", at).
			AddRow("assistant", "answer", at))

	conv, err := repo.AppendTurn(context.Background(), "user-1", "conv-1", turn, at)
	if err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	if len(conv.Messages) != 4 || conv.Messages[3].Role != RoleAssistant {
		t.Fatalf("unexpected conversation %+v", conv)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoAppendTurnForeignConversation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	turn, _ := NewTurn("q", "a", time.Now())

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("user-2", "conv-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	if _, err := repo.AppendTurn(context.Background(), "user-2", "conv-1", turn, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
