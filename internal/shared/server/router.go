package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sourabhsahu334/newsUserBackend/internal/shared/config"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/metrics"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/server/middleware"
)

const apiPrefix = "/api/v1"

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// DevRouteRegistrar exposes routes that only exist in dev-like environments.
type DevRouteRegistrar interface {
	RegisterDevRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries everything NewRouter wires.
type RouterDeps struct {
	Config    config.Config
	Health    *Health
	Onboard   gin.HandlerFunc
	Handlers  []RouteRegistrar
	RateRules map[string]middleware.RateLimitRule
}

// Rate limit groups.
const (
	RateGroupBatch = "BATCH"
	RateGroupInbox = "INBOX"
)

// DefaultRateRules limits the credit-spending routes per caller.
func DefaultRateRules() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		RateGroupBatch: {Rate: 0.5, Burst: 5},
		RateGroupInbox: {Rate: 1, Burst: 10},
	}
}

func rateGroupFor(c *gin.Context) string {
	path := c.Request.URL.Path
	switch {
	case strings.HasPrefix(path, apiPrefix+"/batches"):
		return RateGroupBatch
	case strings.HasPrefix(path, apiPrefix+"/inbox"):
		return RateGroupInbox
	default:
		return ""
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsDevLike() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	rules := deps.RateRules
	if rules == nil {
		rules = DefaultRateRules()
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(apiPrefix+"/health", apiPrefix+"/credits/topup", "/metrics"),
	)
	if deps.Onboard != nil {
		r.Use(deps.Onboard)
	}
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules:    rules,
		GroupFor: rateGroupFor,
	}))

	r.GET("/metrics", metrics.Handler())

	api := r.Group(apiPrefix)
	api.GET("/health", func(c *gin.Context) {
		status := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
	for _, h := range deps.Handlers {
		h.RegisterRoutes(api)
	}
	if deps.Config.IsDevLike() {
		dev := api.Group("/dev")
		for _, h := range deps.Handlers {
			if d, ok := h.(DevRouteRegistrar); ok {
				d.RegisterDevRoutes(dev)
			}
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
