package conversations

import (
	"context"
	"strings"
	"time"

	"resume-intel/internal/engine"
	"resume-intel/internal/resumes"
	"resume-intel/internal/shared/apperr"
	"resume-intel/internal/shared/metrics"
	"resume-intel/internal/shared/telemetry"
)

// ResumeLookup is the slice of the resume service this package needs.
type ResumeLookup interface {
	Get(ctx context.Context, userID, resumeID string) (resumes.Resume, error)
	FileNames(ctx context.Context, userID string, ids []string) (map[string]string, error)
}

// Service runs chat turns against a resume and keeps the conversation log.
type Service struct {
	Repo    Repo
	Resumes ResumeLookup
	Engine  engine.Client
	Now     func() time.Time
}

// SendInput is one chat message from a user. History is the caller's view
// of the prior turns and is forwarded to the engine as-is.
type SendInput struct {
	UserID         string
	ResumeID       string
	Message        string
	ConversationID string
	History        []engine.ChatMessage
}

// SendResult carries the reply and the stored log after the turn was appended.
type SendResult struct {
	Reply          string
	History        []Message
	ConversationID string
}

// Detail is a conversation with the resume it discusses. Resume is nil when
// the resume has since been deleted.
type Detail struct {
	Conversation
	Resume *resumes.Resume
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Send asks the engine for a reply and records the user message and the
// reply as one turn. Without a conversation id a new conversation is started.
func (s *Service) Send(ctx context.Context, in SendInput) (SendResult, error) {
	in.ResumeID = strings.TrimSpace(in.ResumeID)
	in.ConversationID = strings.TrimSpace(in.ConversationID)
	if in.ResumeID == "" {
		return SendResult{}, apperr.AtStage(apperr.StageValidation, apperr.Validation("resume id is required"))
	}
	if strings.TrimSpace(in.Message) == "" {
		return SendResult{}, apperr.AtStage(apperr.StageValidation, apperr.Validation("message is required"))
	}

	resume, err := s.Resumes.Get(ctx, in.UserID, in.ResumeID)
	if err != nil {
		return SendResult{}, apperr.AtStage(apperr.StageLookup, err)
	}

	if in.ConversationID != "" {
		conv, err := s.Repo.GetByID(ctx, in.UserID, in.ConversationID)
		if err != nil {
			return SendResult{}, apperr.AtStage(apperr.StageLookup, apperr.Persistence(err))
		}
		if conv.ResumeID != resume.ID {
			return SendResult{}, apperr.AtStage(apperr.StageValidation,
				apperr.Validation("conversation belongs to a different resume"))
		}
	}

	history := in.History
	if history == nil {
		history = []engine.ChatMessage{}
	}
	reply, err := s.Engine.Chat(ctx, resume.Snapshot(true), in.Message, history)
	if err != nil {
		return SendResult{}, apperr.AtStage(apperr.StageChat, err)
	}

	now := s.now()
	turn, err := NewTurn(in.Message, reply.Reply, now)
	if err != nil {
		return SendResult{}, apperr.AtStage(apperr.StageChat, err)
	}

	var conv Conversation
	if in.ConversationID != "" {
		conv, err = s.Repo.AppendTurn(ctx, in.UserID, in.ConversationID, turn, now)
		if err != nil {
			return SendResult{}, apperr.AtStage(apperr.StagePersist, apperr.Persistence(err))
		}
	} else {
		conv, err = NewConversation(in.UserID, resume.ID, turn, now)
		if err != nil {
			return SendResult{}, apperr.AtStage(apperr.StageValidation, err)
		}
		if err := s.Repo.Create(ctx, conv); err != nil {
			return SendResult{}, apperr.AtStage(apperr.StagePersist, apperr.Persistence(err))
		}
	}

	metrics.IncChatTurn()
	telemetry.Info("chat.turn", map[string]any{
		"user_id":         in.UserID,
		"resume_id":       resume.ID,
		"conversation_id": conv.ID,
		"new":             in.ConversationID == "",
		"messages":        len(conv.Messages),
	})
	return SendResult{Reply: reply.Reply, History: conv.Messages, ConversationID: conv.ID}, nil
}

// Get returns a conversation with its resume.
func (s *Service) Get(ctx context.Context, userID, conversationID string) (Detail, error) {
	if strings.TrimSpace(conversationID) == "" {
		return Detail{}, apperr.AtStage(apperr.StageValidation, apperr.Validation("conversation id is required"))
	}
	conv, err := s.Repo.GetByID(ctx, userID, strings.TrimSpace(conversationID))
	if err != nil {
		return Detail{}, apperr.AtStage(apperr.StageLookup, apperr.Persistence(err))
	}
	d := Detail{Conversation: conv}
	res, err := s.Resumes.Get(ctx, userID, conv.ResumeID)
	switch {
	case err == nil:
		d.Resume = &res
	case !apperr.IsNotFound(err):
		return Detail{}, apperr.AtStage(apperr.StageLookup, err)
	}
	return d, nil
}

// List returns conversation summaries, most recently active first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Summary, error) {
	items, err := s.Repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.AtStage(apperr.StageLookup, apperr.Persistence(err))
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ResumeID)
	}
	names, err := s.Resumes.FileNames(ctx, userID, ids)
	if err != nil {
		return nil, apperr.AtStage(apperr.StageLookup, err)
	}
	for i := range items {
		items[i].ResumeFileName = names[items[i].ResumeID]
	}
	return items, nil
}

// Delete removes a conversation and all of its messages.
func (s *Service) Delete(ctx context.Context, userID, conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return apperr.AtStage(apperr.StageValidation, apperr.Validation("conversation id is required"))
	}
	if err := s.Repo.Delete(ctx, userID, strings.TrimSpace(conversationID)); err != nil {
		return apperr.AtStage(apperr.StagePersist, apperr.Persistence(err))
	}
	return nil
}
