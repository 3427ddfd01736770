package account

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/middleware"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/respond"
)

// Onboard ensures every authenticated caller has an account before the
// request reaches a handler. Anonymous requests pass through.
func Onboard(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		if userID == "" || svc == nil {
			c.Next()
			return
		}
		err := svc.Ensure(c.Request.Context(), Identity{
			ID:    userID,
			Email: middleware.UserEmailFromContext(c),
			Name:  middleware.UserNameFromContext(c),
		})
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, respond.CodeStorage, "failed to prepare account", nil)
			return
		}
		c.Next()
	}
}

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "missing or invalid token", nil)
		return
	}
	profile, err := h.Svc.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "account not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeStorage, "failed to load account", nil)
		return
	}
	respond.OK(c, profile)
}
