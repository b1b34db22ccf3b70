// Package router assembles the portal's gin engine: middleware ordering,
// role-gated route groups and the demo mount.
package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/nexusgg/partner-portal/internal/domain/identity"
	"github.com/nexusgg/partner-portal/internal/infrastructure/config"
	"github.com/nexusgg/partner-portal/internal/infrastructure/logger"
	"github.com/nexusgg/partner-portal/internal/infrastructure/session"
	"github.com/nexusgg/partner-portal/internal/interfaces/http/handler"
	"github.com/nexusgg/partner-portal/internal/interfaces/http/middleware"
)

// Handlers carries everything the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Agent     *handler.AgentHandler
	Affiliate *handler.AffiliateHandler
	Health    *handler.HealthHandler
	Demo      *handler.DemoHandler
}

// New builds the configured gin engine.
func New(cfg *config.Config, sessions session.Store, h Handlers, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(requestid.New())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.SecurityHeaders())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	h.Health.RegisterRoutes(engine)

	api := engine.Group("/api/v1")
	authenticated := middleware.SessionRequired(sessions)

	var limited []gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		rl := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limited = append(limited, rl.Middleware())
	}
	h.Auth.RegisterRoutes(api, authenticated, limited...)

	agentGroup := api.Group("", authenticated, middleware.RoleRequired(identity.RoleAgent))
	h.Agent.RegisterRoutes(agentGroup)

	affiliateGroup := api.Group("", authenticated, middleware.RoleRequired(identity.RoleAffiliate))
	h.Affiliate.RegisterRoutes(affiliateGroup)

	if cfg.Demo.Enabled && h.Demo != nil {
		h.Demo.RegisterRoutes(api, authenticated)
	}

	return engine
}
