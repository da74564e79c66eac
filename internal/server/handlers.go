package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "visaverse-copilot/internal/common/errors"
	"visaverse-copilot/internal/common/logger"
	"visaverse-copilot/internal/common/metrics"
	"visaverse-copilot/internal/models"

	"github.com/gin-gonic/gin"
)

// Generator produces a roadmap for one request.
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	generator Generator
	ready     []Pinger
	logger    logger.Logger
}

func NewHandlers(generator Generator, log logger.Logger, ready ...Pinger) *Handlers {
	return &Handlers{
		generator: generator,
		ready:     ready,
		logger:    log.With(map[string]interface{}{"component": "server"}),
	}
}

// Generate decodes the profile, runs the pipeline and writes either the
// roadmap or {error}.
func (h *Handlers) Generate(c *gin.Context) {
	start := time.Now()

	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, start, apperrors.NewInvalidRequestError(err))
		return
	}

	resp, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, start, apperrors.Normalize(err))
		return
	}

	h.observe(http.StatusOK, start)
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) respondError(c *gin.Context, start time.Time, stdErr *apperrors.StandardError) {
	status := stdErr.HTTPStatus
	if status == 0 {
		status = apperrors.HTTPStatusFor(stdErr.Code)
	}
	h.logger.Error("roadmap generation failed", map[string]interface{}{
		"code":       stdErr.Code,
		"details":    stdErr.Details,
		"status":     status,
		"request_id": c.GetString(requestIDKey),
	})
	h.observe(status, start)
	c.JSON(status, models.ErrorResponse{Error: stdErr.Message})
}

func (h *Handlers) observe(status int, start time.Time) {
	label := strconv.Itoa(status)
	metrics.RoadmapRequests.WithLabelValues(label).Inc()
	metrics.RoadmapRequestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
}

// Preflight answers OPTIONS with an empty 200. Browsers sending an Origin are
// answered by the CORS middleware before this runs.
func (h *Handlers) Preflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", strings.Join(AllowedHeaders, ", "))
	c.Status(http.StatusOK)
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings every registered dependency.
func (h *Handlers) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	for _, p := range h.ready {
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", map[string]interface{}{"error": err})
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
