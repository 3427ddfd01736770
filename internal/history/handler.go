package history

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sourabhsahu334/newsUserBackend/internal/folders"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/middleware"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/respond"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history", h.list)
	rg.GET("/history/search", h.search)
	rg.GET("/history/export", h.export)
	rg.GET("/history/:id", h.get)
	rg.POST("/history/move", h.move)
	rg.POST("/history/copy", h.copy)
	rg.POST("/history/delete", h.delete)
}

type moveRequest struct {
	IDs          []string `json:"ids"`
	SourceFolder string   `json:"sourceFolder"`
	TargetFolder string   `json:"targetFolder"`
}

type deleteRequest struct {
	IDs        []string `json:"ids"`
	FolderName string   `json:"folderName"`
}

func (h *Handler) list(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	page, pageSize := pagination(c)
	result, err := h.Svc.List(c.Request.Context(), userID, Filter{
		Folder: c.Query("folder"),
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
	}, page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) search(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	page, pageSize := pagination(c)
	result, err := h.Svc.Search(c.Request.Context(), userID, c.Query("q"), Filter{Folder: c.Query("folder")}, page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	rec, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, rec)
}

func (h *Handler) export(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	folder := strings.TrimSpace(c.Query("folder"))
	if folder == "" {
		folder = folders.DefaultName
	}
	data, err := h.Svc.Export(c.Request.Context(), userID, folder)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Attachment(c, exportFileName(folder), xlsxContentType, data)
}

func (h *Handler) move(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	n, err := h.Svc.Move(c.Request.Context(), userID, req.IDs, req.SourceFolder, req.TargetFolder)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"affected": n})
}

func (h *Handler) copy(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	n, err := h.Svc.Copy(c.Request.Context(), userID, req.IDs, req.TargetFolder)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"affected": n})
}

// delete removes records outright, or only from folderName when it is given.
func (h *Handler) delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	var n int
	var err error
	if strings.TrimSpace(req.FolderName) != "" {
		n, err = h.Svc.RemoveFromFolder(c.Request.Context(), userID, req.IDs, req.FolderName)
	} else {
		n, err = h.Svc.Delete(c.Request.Context(), userID, req.IDs)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"affected": n})
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultPageSize)))
	return page, pageSize
}

func exportFileName(folder string) string {
	var b strings.Builder
	for _, r := range folder {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return "candidates-" + b.String() + ".xlsx"
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
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "history record not found", nil)
	case errors.Is(err, folders.ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "folder not found", nil)
	case errors.Is(err, ErrNoIDs),
		errors.Is(err, ErrInvalidFolder),
		errors.Is(err, ErrSameFolder),
		errors.Is(err, ErrEmptyQuery),
		errors.Is(err, ErrInvalidStatus):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeStorage, "history operation failed", nil)
	}
}
