package conversations

import (
	"time"

	"resume-intel/internal/engine"
)

type chatRequest struct {
	ResumeID            string               `json:"resumeId"`
	Message             string               `json:"message"`
	ConversationID      string               `json:"conversationId"`
	ConversationHistory []engine.ChatMessage `json:"conversationHistory"`
}

// MessageResponse is one entry of a conversation log.
type MessageResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type chatResponse struct {
	Reply               string            `json:"reply"`
	ConversationHistory []MessageResponse `json:"conversationHistory"`
	ConversationID      string            `json:"conversationId"`
}

// SummaryResponse is a conversation list entry.
type SummaryResponse struct {
	ConversationID string    `json:"conversationId"`
	ResumeID       string    `json:"resumeId"`
	ResumeFileName string    `json:"resumeFileName,omitempty"`
	Title          string    `json:"title"`
	MessageCount   int       `json:"messageCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ResumeRef identifies the resume a conversation is about.
type ResumeRef struct {
	ResumeID   string            `json:"resumeId"`
	FileName   string            `json:"fileName"`
	ParsedData engine.ParsedData `json:"parsedData"`
}

// DetailResponse is a full conversation.
type DetailResponse struct {
	ConversationID string            `json:"conversationId"`
	ResumeID       string            `json:"resumeId"`
	Resume         *ResumeRef        `json:"resume,omitempty"`
	Title          string            `json:"title"`
	Messages       []MessageResponse `json:"messages"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func toMessages(msgs []Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageResponse{Role: string(m.Role), Content: m.Content, Timestamp: m.Timestamp})
	}
	return out
}

func toSummaryResponse(s Summary) SummaryResponse {
	return SummaryResponse{
		ConversationID: s.ID,
		ResumeID:       s.ResumeID,
		ResumeFileName: s.ResumeFileName,
		Title:          s.Title,
		MessageCount:   s.MessageCount,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func toDetailResponse(d Detail) DetailResponse {
	resp := DetailResponse{
		ConversationID: d.ID,
		ResumeID:       d.ResumeID,
		Title:          d.Title,
		Messages:       toMessages(d.Messages),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.Resume != nil {
		resp.Resume = &ResumeRef{
			ResumeID:   d.Resume.ID,
			FileName:   d.Resume.FileName,
			ParsedData: d.Resume.ParsedData,
		}
	}
	return resp
}
