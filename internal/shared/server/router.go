package server

import (
	"github.com/gin-gonic/gin"

	"resume-intel/internal/shared/auth"
	"resume-intel/internal/shared/config"
	"resume-intel/internal/shared/metrics"
	"resume-intel/internal/shared/server/middleware"
)

// FeatureRoutes is implemented by every authenticated feature handler.
// engineLimit guards the routes that call the analysis engine.
type FeatureRoutes interface {
	RegisterRoutes(rg *gin.RouterGroup, engineLimit gin.HandlerFunc)
}

// PublicRoutes is implemented by handlers mounted before authentication.
type PublicRoutes interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries handlers and shared infrastructure into NewRouter.
type RouterDeps struct {
	Config      config.Config
	Verifier    *auth.Verifier
	RateLimiter *middleware.RateLimiter
	Health      PublicRoutes
	Features    []FeatureRoutes
}

const engineGroup = "ENGINE"

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logging(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	if deps.Health != nil {
		deps.Health.RegisterRoutes(api)
	}
	api.GET("/metrics", metrics.Handler())

	engineLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			engineGroup: {Rate: deps.Config.EngineRateLimitRPS, Burst: deps.Config.EngineRateLimitBurst},
		},
		DefaultGroup: engineGroup,
		Limiter:      deps.RateLimiter,
	})

	authed := api.Group("")
	authed.Use(middleware.Auth(deps.Verifier))
	for _, f := range deps.Features {
		if f != nil {
			f.RegisterRoutes(authed, engineLimit)
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
