package interview

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-intel/internal/shared/server/middleware"
	"resume-intel/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, engineLimit gin.HandlerFunc) {
	if engineLimit == nil {
		engineLimit = func(c *gin.Context) { c.Next() }
	}
	rg.POST("/chatbot/interview-questions", engineLimit, h.generate)
}

type generateRequest struct {
	ResumeID string `json:"resumeId"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	c.Set("resumeId", req.ResumeID)

	questions, err := h.Svc.Generate(c.Request.Context(), middleware.UserIDFromContext(c), req.ResumeID)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, gin.H{"questions": questions})
}
