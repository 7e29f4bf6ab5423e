package jobs

import (
	"net/http"

	"github.com/gin-gonic/gin"

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
	rg.POST("/jobs/recommend-by-skills", engineLimit, h.recommendBySkills)
	rg.GET("/jobs/categories", h.categories)
}

type recommendRequest struct {
	Skills []string `json:"skills"`
}

func (h *Handler) recommendBySkills(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}
	recs, err := h.Svc.RecommendBySkills(c.Request.Context(), req.Skills)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, gin.H{"recommendations": recs})
}

func (h *Handler) categories(c *gin.Context) {
	respond.OK(c, gin.H{"categories": Categories})
}
