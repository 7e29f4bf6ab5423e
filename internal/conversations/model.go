package conversations

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"resume-intel/internal/shared/apperr"
)

// Role tags who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	titleMaxRunes = 50
	titleEllipsis = "..."
)

// Message is one entry of a conversation log.
type Message struct {
	Role      Role      `bson:"role"`
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
}

// Turn is a user message and the assistant reply to it. Turns are always
// stored together, user first.
type Turn struct {
	User      Message
	Assistant Message
}

// Conversation is an append-only chat thread about one resume.
type Conversation struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	ResumeID  string    `bson:"resume_id"`
	Title     string    `bson:"title"`
	Messages  []Message `bson:"messages"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Summary describes a conversation without its messages.
type Summary struct {
	ID             string
	UserID         string
	ResumeID       string
	Title          string
	MessageCount   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResumeFileName string
}

// NewMessage validates and timestamps a message.
func NewMessage(role Role, content string, at time.Time) (Message, error) {
	if role != RoleUser && role != RoleAssistant {
		return Message{}, apperr.Validation("unknown message role " + string(role))
	}
	if strings.TrimSpace(content) == "" {
		return Message{}, apperr.Validation("message content is empty")
	}
	return Message{Role: role, Content: content, Timestamp: at.UTC()}, nil
}

// NewTurn builds the user/assistant pair for one exchange.
func NewTurn(userMessage, reply string, at time.Time) (Turn, error) {
	u, err := NewMessage(RoleUser, userMessage, at)
	if err != nil {
		return Turn{}, err
	}
	a, err := NewMessage(RoleAssistant, reply, at)
	if err != nil {
		return Turn{}, err
	}
	return Turn{User: u, Assistant: a}, nil
}

// DeriveTitle returns the first 50 characters of the message as sent, with
// "..." appended when it was longer. Whitespace counts.
func DeriveTitle(message string) string {
	if utf8.RuneCountInString(message) <= titleMaxRunes {
		return message
	}
	runes := []rune(message)
	return string(runes[:titleMaxRunes]) + titleEllipsis
}

// NewConversation starts a thread seeded with its first turn.
func NewConversation(userID, resumeID string, first Turn, now time.Time) (Conversation, error) {
	if strings.TrimSpace(userID) == "" {
		return Conversation{}, apperr.Validation("user id is required")
	}
	if strings.TrimSpace(resumeID) == "" {
		return Conversation{}, apperr.Validation("resume id is required")
	}
	now = now.UTC()
	return Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		ResumeID:  resumeID,
		Title:     DeriveTitle(first.User.Content),
		Messages:  []Message{first.User, first.Assistant},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (c Conversation) summary() Summary {
	return Summary{
		ID:           c.ID,
		UserID:       c.UserID,
		ResumeID:     c.ResumeID,
		Title:        c.Title,
		MessageCount: len(c.Messages),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
