package batch

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sourabhsahu334/newsUserBackend/internal/credits"
	"github.com/sourabhsahu334/newsUserBackend/internal/extract"
	"github.com/sourabhsahu334/newsUserBackend/internal/folders"
	"github.com/sourabhsahu334/newsUserBackend/internal/history"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/middleware"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/respond"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/util"
)

const (
	formFiles          = "pdfs"
	formJobDescription = "jobDescription"
	formFolder         = "folderName"
	defaultMaxBytes    = 10 << 20
)

type Handler struct {
	Orchestrator   *Orchestrator
	MaxUploadBytes int64
}

func NewHandler(o *Orchestrator, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxBytes
	}
	return &Handler{Orchestrator: o, MaxUploadBytes: maxUploadBytes}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/batches", h.create)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
		return
	}

	limit := h.MaxUploadBytes*int64(h.Orchestrator.maxDocuments()) + (1 << 20)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodeValidation, "upload too large", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "multipart form with pdfs is required", nil)
		return
	}

	files := form.File[formFiles]
	if len(files) == 0 {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "at least one PDF is required", gin.H{"field": formFiles})
		return
	}
	if limit := h.Orchestrator.maxDocuments(); len(files) > limit {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, fmt.Sprintf("at most %d PDFs per batch", limit), gin.H{"field": formFiles})
		return
	}

	docs := make([]Document, 0, len(files))
	for _, fh := range files {
		doc, msg := h.readFile(fh)
		if msg != "" {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, msg, gin.H{"field": formFiles, "filename": fh.Filename})
			return
		}
		docs = append(docs, doc)
	}
	c.Set("batchDocuments", len(docs))

	outcome, err := h.Orchestrator.ProcessBatch(c.Request.Context(), Request{
		AccountID:      userID,
		Documents:      docs,
		FolderName:     firstValue(form, formFolder),
		JobDescription: firstValue(form, formJobDescription),
		Source:         history.SourceUpload,
	})
	if err != nil {
		WriteError(c, err, outcome)
		return
	}
	c.Set("creditsCharged", outcome.CreditsCharged)
	respond.OK(c, outcome)
}

func (h *Handler) readFile(fh *multipart.FileHeader) (Document, string) {
	name, err := util.SanitizeFileName(fh.Filename)
	if err != nil {
		return Document{}, "invalid file name"
	}
	if fh.Size > h.MaxUploadBytes {
		return Document{}, fmt.Sprintf("%s exceeds the %d byte limit", name, h.MaxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return Document{}, "unreadable file"
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.MaxUploadBytes+1))
	if err != nil {
		return Document{}, "unreadable file"
	}
	if len(data) == 0 {
		return Document{}, name + " is empty"
	}
	if int64(len(data)) > h.MaxUploadBytes {
		return Document{}, fmt.Sprintf("%s exceeds the %d byte limit", name, h.MaxUploadBytes)
	}
	if !extract.IsPDF(data) {
		return Document{}, name + " is not a PDF"
	}
	return Document{Filename: name, Data: data}, ""
}

func firstValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// WriteError maps orchestrator errors to the HTTP error envelope.
func WriteError(c *gin.Context, err error, outcome Outcome) {
	var vErr *ValidationError
	var credErr *credits.InsufficientCreditError
	switch {
	case errors.As(err, &vErr):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, vErr.Message, gin.H{"field": vErr.Field})
	case errors.Is(err, folders.ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "folder not found", nil)
	case errors.As(err, &credErr):
		respond.Error(c, http.StatusPaymentRequired, respond.CodeInsufficientCredit, credErr.Error(), gin.H{
			"available": credErr.Available,
			"required":  credErr.Required,
		})
	case outcome.CreditsCharged > 0:
		respond.Error(c, http.StatusInternalServerError, respond.CodeStorage, "failed to save results", gin.H{
			"creditsCharged": outcome.CreditsCharged,
			"results":        outcome.Results,
		})
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeStorage, "batch could not be processed", nil)
	}
}
