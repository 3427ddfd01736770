package inbox

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sourabhsahu334/newsUserBackend/internal/batch"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/middleware"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/respond"
)

// TokenHeader carries the caller's Google access token.
const TokenHeader = "X-Google-Access-Token"

type Handler struct {
	Svc       *Service
	Mailboxes MailboxFactory
}

func NewHandler(svc *Service, factory MailboxFactory) *Handler {
	if factory == nil {
		factory = NewGmailMailbox
	}
	return &Handler{Svc: svc, Mailboxes: factory}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/inbox/gmail/messages", h.list)
	rg.POST("/inbox/gmail/process", h.process)
}

type processBody struct {
	Emails         []EmailRef `json:"emails"`
	FolderName     string     `json:"folderName"`
	JobDescription string     `json:"jobDescription"`
}

func (h *Handler) list(c *gin.Context) {
	mb, ok := h.open(c)
	if !ok {
		return
	}
	max, _ := strconv.Atoi(c.Query("max"))
	items, err := h.Svc.List(c.Request.Context(), mb, c.Query("q"), max)
	if err != nil {
		writeMailboxError(c, err)
		return
	}
	respond.OK(c, gin.H{"messages": items})
}

func (h *Handler) process(c *gin.Context) {
	var body processBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	mb, ok := h.open(c)
	if !ok {
		return
	}

	out, err := h.Svc.Process(c.Request.Context(), mb, ProcessRequest{
		AccountID:      middleware.UserIDFromContext(c),
		Emails:         body.Emails,
		FolderName:     body.FolderName,
		JobDescription: body.JobDescription,
	})
	switch {
	case err == nil:
		c.Set("batchDocuments", len(out.Results))
		c.Set("creditsCharged", out.CreditsCharged)
		respond.OK(c, out)
	case errors.Is(err, ErrNoEmails):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "no emails provided", gin.H{"field": "emails"})
	case errors.Is(err, ErrNoAttachments):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "no PDF attachments found", gin.H{"skipped": out.Skipped})
	case errors.Is(err, ErrPermissionDenied):
		writeMailboxError(c, err)
	default:
		batch.WriteError(c, err, out.Outcome)
	}
}

func (h *Handler) open(c *gin.Context) (Mailbox, bool) {
	if middleware.UserIDFromContext(c) == "" {
		respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
		return nil, false
	}
	mb, err := h.Mailboxes(c.Request.Context(), c.GetHeader(TokenHeader))
	if err != nil {
		if errors.Is(err, ErrMissingToken) {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "missing Google access token", gin.H{"header": TokenHeader})
			return nil, false
		}
		respond.Error(c, http.StatusBadGateway, respond.CodeUpstream, "mailbox unavailable", nil)
		return nil, false
	}
	return mb, true
}

func writeMailboxError(c *gin.Context, err error) {
	if errors.Is(err, ErrPermissionDenied) {
		respond.Error(c, http.StatusForbidden, respond.CodeForbidden, "Gmail permissions missing. Please re-authenticate.", nil)
		return
	}
	respond.Error(c, http.StatusBadGateway, respond.CodeUpstream, "mailbox request failed", nil)
}
