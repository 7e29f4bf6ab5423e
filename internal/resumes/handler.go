package resumes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-intel/internal/extract"
	"resume-intel/internal/shared/apperr"
	"resume-intel/internal/shared/server/middleware"
	"resume-intel/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group. Routes that
// call the analysis engine go through engineLimit.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, engineLimit gin.HandlerFunc) {
	if engineLimit == nil {
		engineLimit = func(c *gin.Context) { c.Next() }
	}
	rg.POST("/resumes/upload", engineLimit, h.upload)
	rg.POST("/resumes/upload-text", engineLimit, h.uploadText)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.DELETE("/resumes/:id", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "file exceeds 10MB limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "resume file is required", nil)
		return
	}
	if !allowedExtension(fileHeader.Filename) {
		respond.FromError(c, apperr.AtStage(apperr.StageValidation,
			fmt.Errorf("%w: only %s files are accepted", extract.ErrUnsupportedFormat, strings.Join(extract.AllowedExtensions, ", "))))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "unable to read file", nil)
		return
	}

	res, err := h.Svc.Ingest(c.Request.Context(), userID, data, fileHeader.Filename, "")
	if err != nil {
		respond.FromError(c, err)
		return
	}

	c.Set("resumeId", res.ID)
	respond.JSON(c, http.StatusCreated, toResponse(res, false))
}

func (h *Handler) uploadText(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req uploadTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	res, err := h.Svc.IngestText(c.Request.Context(), userID, req.ResumeText, req.FileName)
	if err != nil {
		respond.FromError(c, err)
		return
	}

	c.Set("resumeId", res.ID)
	respond.JSON(c, http.StatusCreated, toResponse(res, false))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := respond.Page(c)

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.FromError(c, err)
		return
	}

	resp := make([]ResumeSummary, 0, len(items))
	for _, r := range items {
		resp = append(resp, toSummary(r))
	}
	respond.OK(c, gin.H{"resumes": resp})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("resumeId", id)

	res, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, toResponse(res, true))
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	id := c.Param("id")
	c.Set("resumeId", id)

	if err := h.Svc.Delete(c.Request.Context(), userID, id); err != nil {
		respond.FromError(c, err)
		return
	}
	respond.OK(c, gin.H{"message": "resume deleted"})
}

func allowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range extract.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
