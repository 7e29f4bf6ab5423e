package skillgap

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

// RegisterRoutes attaches skill-gap routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, engineLimit gin.HandlerFunc) {
	if engineLimit == nil {
		engineLimit = func(c *gin.Context) { c.Next() }
	}
	rg.POST("/skill-gap/analyze", engineLimit, h.analyze)
	rg.GET("/skill-gap", h.list)
	rg.GET("/skill-gap/:id", h.get)
	rg.DELETE("/skill-gap/:id", h.delete)
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	c.Set("resumeId", req.ResumeID)

	res, err := h.Svc.Analyze(c.Request.Context(), userID, req.ResumeID, req.TargetJobTitle, req.ForceReanalyze)
	if err != nil {
		respond.FromError(c, err)
		return
	}

	c.Set("analysisId", res.Analysis.ID)
	respond.OK(c, toAnalyzeResponse(res))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := respond.Page(c)

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	resp := make([]AnalysisResponse, 0, len(items))
	for _, s := range items {
		resp = append(resp, toResponse(s))
	}
	respond.OK(c, gin.H{"analyses": resp})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("analysisId", id)

	s, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, toResponse(s))
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("analysisId", id)

	if err := h.Svc.Delete(c.Request.Context(), userID, id); err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, gin.H{"message": "analysis deleted"})
}
