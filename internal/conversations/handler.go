package conversations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-intel/internal/shared/server/middleware"
	"resume-intel/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches chatbot conversation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, engineLimit gin.HandlerFunc) {
	if engineLimit == nil {
		engineLimit = func(c *gin.Context) { c.Next() }
	}
	rg.POST("/chatbot/chat", engineLimit, h.chat)
	rg.GET("/chatbot/conversations", h.list)
	rg.GET("/chatbot/conversations/:id", h.get)
	rg.DELETE("/chatbot/conversations/:id", h.delete)
}

func (h *Handler) chat(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	c.Set("resumeId", req.ResumeID)
	if req.ConversationID != "" {
		c.Set("conversationId", req.ConversationID)
	}

	res, err := h.Svc.Send(c.Request.Context(), SendInput{
		UserID:         userID,
		ResumeID:       req.ResumeID,
		Message:        req.Message,
		ConversationID: req.ConversationID,
		History:        req.ConversationHistory,
	})
	if err != nil {
		respond.FromError(c, err)
		return
	}

	c.Set("conversationId", res.ConversationID)
	respond.OK(c, chatResponse{
		Reply:               res.Reply,
		ConversationHistory: toMessages(res.History),
		ConversationID:      res.ConversationID,
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := respond.Page(c)

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	resp := make([]SummaryResponse, 0, len(items))
	for _, s := range items {
		resp = append(resp, toSummaryResponse(s))
	}
	respond.OK(c, gin.H{"conversations": resp})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("conversationId", id)

	d, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, toDetailResponse(d))
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("conversationId", id)

	if err := h.Svc.Delete(c.Request.Context(), userID, id); err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, gin.H{"message": "conversation deleted"})
}
