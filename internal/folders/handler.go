package folders

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/middleware"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/folders", h.list)
	rg.POST("/folders", h.create)
	rg.GET("/folders/:name", h.get)
	rg.DELETE("/folders/:name", h.delete)
	rg.PUT("/folders/:name/columns", h.setColumns)
	rg.PUT("/folders/:name/job-description", h.setJobDescription)
}

type createRequest struct {
	Name           string `json:"name"`
	JobDescription string `json:"jobDescription"`
}

type columnsRequest struct {
	Columns []string `json:"columns"`
}

type jobDescriptionRequest struct {
	JobDescription string `json:"jobDescription"`
}

func (h *Handler) list(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	items, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"folders": items, "availableColumns": DefaultColumns})
}

func (h *Handler) create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	folder, err := h.Svc.Create(c.Request.Context(), userID, req.Name, req.JobDescription)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, folder)
}

func (h *Handler) get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	folder, err := h.Svc.Get(c.Request.Context(), userID, c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, folder)
}

func (h *Handler) delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setColumns(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req columnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	columns, err := h.Svc.SetVisibleColumns(c.Request.Context(), userID, c.Param("name"), req.Columns)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"visibleColumns": columns})
}

func (h *Handler) setJobDescription(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req jobDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	if err := h.Svc.SetJobDescription(c.Request.Context(), userID, c.Param("name"), req.JobDescription); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func requireUser(c *gin.Context) (string, bool) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
		return "", false
	}
	return userID, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "folder not found", nil)
	case errors.Is(err, ErrAlreadyExists):
		respond.Error(c, http.StatusConflict, respond.CodeConflict, "folder already exists", nil)
	case errors.Is(err, ErrInvalidName):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "folder name must be 1-100 characters", nil)
	case errors.Is(err, ErrInvalidColumn):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, ErrDefaultFolder):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "default folder cannot be deleted", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeStorage, "folder operation failed", nil)
	}
}
