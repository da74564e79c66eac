// Package server exposes the generation pipeline over HTTP.
package server

import (
	"net/http"
	"time"

	"visaverse-copilot/internal/common/config"
	"visaverse-copilot/internal/common/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// GeneratePath is where the requester posts by default.
const GeneratePath = "/functions/v1/generate-visa-roadmap"

type RouterConfig struct {
	Handlers *Handlers
	Logger   logger.Logger

	// Limiter is only consulted when RateLimit.Enabled is set.
	Limiter   WindowCounter
	RateLimit config.RateLimitConfig

	// DisableMetrics leaves /metrics unregistered.
	DisableMetrics bool

	// ServiceName turns on otelgin request spans when set.
	ServiceName string

	// TrustedProxies may set X-Forwarded-For / X-Real-IP. Empty trusts no one.
	TrustedProxies []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		cfg.Logger.Warn("invalid trusted proxies, trusting none", map[string]interface{}{"error": err})
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(RequestID())
	r.Use(RequestLogger(cfg.Logger))
	r.Use(CORS())

	r.GET("/health", cfg.Handlers.Health)
	r.GET("/ready", cfg.Handlers.Ready)
	if !cfg.DisableMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	gen := r.Group(GeneratePath)
	if cfg.RateLimit.Enabled && cfg.Limiter != nil {
		gen.Use(RateLimit(cfg.Limiter, cfg.RateLimit, cfg.Logger))
	}
	gen.OPTIONS("", cfg.Handlers.Preflight)
	gen.POST("", cfg.Handlers.Generate)

	return r
}

// NewHTTPServer wraps handler with the configured listener timeouts.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       config.GetDuration(cfg.ReadTimeout),
		WriteTimeout:      config.GetDuration(cfg.WriteTimeout),
	}
}
