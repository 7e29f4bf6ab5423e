package conversations

import (
	"context"
	"time"
)

// Repo persists conversations. Reads and writes are scoped by user id.
type Repo interface {
	Create(ctx context.Context, c Conversation) error
	GetByID(ctx context.Context, userID, conversationID string) (Conversation, error)
	// AppendTurn atomically appends both messages of turn, sets the
	// conversation's updated time and returns the stored result.
	AppendTurn(ctx context.Context, userID, conversationID string, turn Turn, at time.Time) (Conversation, error)
	// ListByUser returns summaries ordered by most recent activity.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Summary, error)
	Delete(ctx context.Context, userID, conversationID string) error
}
