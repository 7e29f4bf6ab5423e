package conversations

import (
	"errors"
	"strings"
	"testing"
	"time"

	"resume-intel/internal/shared/apperr"
)

func TestDeriveTitle(t *testing.T) {
	fifty := strings.Repeat("a", 50)
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "How do I improve my resume?", "How do I improve my resume?"},
		{"exactly fifty", fifty, fifty},
		{"fifty one", fifty + "b", fifty + "..."},
		{"multibyte", strings.Repeat("é", 51), strings.Repeat("é", 50) + "..."},
		{"surrounding space kept", "  hello  ", "  hello  "},
		{"leading space counts", " " + fifty, " " + fifty[:49] + "..."},
		{"trailing space counts", fifty + " ", fifty + "..."},
		{"fifty with spaces", " " + fifty[:48] + " ", " " + fifty[:48] + " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.in); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewTurnRejectsBlankContent(t *testing.T) {
	now := time.Now()
	if _, err := NewTurn(" ", "reply", now); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := NewTurn("hi", "", now); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	turn, err := NewTurn("hi", "hello", now)
	if err != nil {
		t.Fatalf("NewTurn: %v", err)
	}
	if turn.User.Role != RoleUser || turn.Assistant.Role != RoleAssistant {
		t.Fatalf("unexpected roles %+v", turn)
	}
}

func TestNewConversationSeedsTurn(t *testing.T) {
	turn, _ := NewTurn("first question", "first answer", time.Now())
	c, err := NewConversation("user-1", "res-1", turn, time.Now())
	if err != nil {
		t.Fatalf("NewConversation: %v", err)
	}
	if len(c.Messages) != 2 || c.Messages[0].Content != "first question" || c.Messages[1].Content != "first answer" {
		t.Fatalf("unexpected messages %+v", c.Messages)
	}
	if c.Title != "first question" || !c.CreatedAt.Equal(c.UpdatedAt) {
		t.Fatalf("unexpected conversation %+v", c)
	}
}
