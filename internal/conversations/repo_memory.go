package conversations

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo. Appends to the same
// conversation are serialized by the repository mutex.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Conversation
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Conversation)}
}

func (r *MemoryRepo) Create(ctx context.Context, c Conversation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[c.ID] = cloneConversation(c)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, conversationID string) (Conversation, error) {
	if err := ctx.Err(); err != nil {
		return Conversation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.data[conversationID]
	if !ok || c.UserID != userID {
		return Conversation{}, ErrNotFound
	}
	return cloneConversation(c), nil
}

func (r *MemoryRepo) AppendTurn(ctx context.Context, userID, conversationID string, turn Turn, at time.Time) (Conversation, error) {
	if err := ctx.Err(); err != nil {
		return Conversation{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[conversationID]
	if !ok || c.UserID != userID {
		return Conversation{}, ErrNotFound
	}
	c = cloneConversation(c)
	c.Messages = append(c.Messages, turn.User, turn.Assistant)
	c.UpdatedAt = at.UTC()
	r.data[conversationID] = c
	return cloneConversation(c), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Summary, 0)
	for _, c := range r.data {
		if c.UserID == userID {
			out = append(out, c.summary())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []Summary{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, conversationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[conversationID]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	delete(r.data, conversationID)
	return nil
}

func cloneConversation(c Conversation) Conversation {
	c.Messages = append([]Message(nil), c.Messages...)
	return c
}

var _ Repo = (*MemoryRepo)(nil)
