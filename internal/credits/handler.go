package credits

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/middleware"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/respond"
)

// Handler exposes ledger endpoints.
type Handler struct {
	Svc           *Service
	WebhookSecret string
	Now           func() time.Time
}

// NewHandler constructs a credits handler.
func NewHandler(svc *Service, webhookSecret string) *Handler {
	return &Handler{Svc: svc, WebhookSecret: webhookSecret, Now: time.Now}
}

// RegisterRoutes attaches ledger routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/credits", h.getBalance)
	rg.GET("/credits/events", h.listEvents)
	rg.POST("/credits/topup", h.topUp)
}

// RegisterDevRoutes attaches self-service grants for local testing.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/credits/grant", h.devGrant)
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now().UTC()
	}
	return h.Now().UTC()
}

func (h *Handler) getBalance(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
		return
	}
	bal, err := h.Svc.Available(c.Request.Context(), userID, h.now())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeStorage, "failed to load credits", nil)
		return
	}
	respond.OK(c, bal)
}

func (h *Handler) listEvents(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	events, err := h.Svc.Events(c.Request.Context(), userID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeStorage, "failed to load credit events", nil)
		return
	}
	if events == nil {
		events = []Event{}
	}
	respond.OK(c, gin.H{"events": events})
}

type topUpRequest struct {
	AccountID    string `json:"accountId"`
	Plan         string `json:"plan"`
	Amount       int    `json:"amount"`
	ValidityDays int    `json:"validityDays"`
	Reference    string `json:"reference"`
}

// topUp is called by the payment integration once a payment is confirmed.
func (h *Handler) topUp(c *gin.Context) {
	secret := strings.TrimSpace(h.WebhookSecret)
	given := strings.TrimSpace(c.GetHeader("X-Webhook-Secret"))
	if secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(given)) != 1 {
		respond.Error(c, http.StatusForbidden, respond.CodeForbidden, "invalid webhook secret", nil)
		return
	}

	var req topUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	req.AccountID = strings.TrimSpace(req.AccountID)
	if req.AccountID == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "accountId is required", nil)
		return
	}

	amount, validity := req.Amount, req.ValidityDays
	reason := "payment"
	if req.Plan != "" {
		plan, err := LookupPlan(req.Plan)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unknown plan", gin.H{"plan": req.Plan})
			return
		}
		amount, validity = plan.Credits, plan.ValidityDays
		reason = "plan:" + plan.Name
	}
	if req.Reference != "" {
		reason += " ref:" + req.Reference
	}

	bal, err := h.Svc.TopUp(c.Request.Context(), req.AccountID, amount, validity, reason, h.now())
	if err != nil {
		h.writeTopUpError(c, err)
		return
	}
	respond.OK(c, bal)
}

type grantRequest struct {
	Amount       int `json:"amount"`
	ValidityDays int `json:"validityDays"`
}

func (h *Handler) devGrant(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
		return
	}
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	bal, err := h.Svc.TopUp(c.Request.Context(), userID, req.Amount, req.ValidityDays, "dev grant", h.now())
	if err != nil {
		h.writeTopUpError(c, err)
		return
	}
	respond.OK(c, bal)
}

func (h *Handler) writeTopUpError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidAmount) {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "amount and validityDays must be positive", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, respond.CodeStorage, "failed to update credits", nil)
}
