package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"visaverse-copilot/internal/common/config"
	apperrors "visaverse-copilot/internal/common/errors"
	"visaverse-copilot/internal/common/logger"
	"visaverse-copilot/internal/common/metrics"
	"visaverse-copilot/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
)

// AllowedHeaders are the request headers browsers may send cross-origin.
var AllowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// CORS allows every origin. The allow headers are written on every
// response, including requests without an Origin header, which
// gin-contrib/cors passes through untouched.
func CORS() gin.HandlerFunc {
	allowHeaders := strings.Join(AllowedHeaders, ", ")
	handler := cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              AllowedHeaders,
		OptionsResponseStatusCode: http.StatusOK,
	})
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		handler(c)
	}
}

// RequestID reuses an incoming X-Request-ID or mints a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request at a level chosen by status.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        path,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  c.GetString(requestIDKey),
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields)
		case status >= 400:
			log.Warn("HTTP request", fields)
		default:
			log.Info("HTTP request", fields)
		}
	}
}

// WindowCounter counts hits inside a fixed expiring window.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimit rejects clients that exceed cfg.Requests per window. Clients are
// keyed by gin's ClientIP, so forwarded headers only count when the engine
// trusts the peer. Counter failures let the request through.
func RateLimit(counter WindowCounter, cfg config.RateLimitConfig, log logger.Logger) gin.HandlerFunc {
	window := time.Duration(cfg.WindowSeconds) * time.Second
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		count, ttl, err := counter.IncrWindow(c.Request.Context(), "ratelimit:"+c.ClientIP(), window)
		if err != nil {
			log.Warn("rate limiter unavailable", map[string]interface{}{"error": err})
			c.Next()
			return
		}
		if count > int64(cfg.Requests) {
			metrics.RateLimitRejections.Inc()
			retry := int(ttl.Round(time.Second) / time.Second)
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{Error: apperrors.MsgRateLimited})
			return
		}
		c.Next()
	}
}
