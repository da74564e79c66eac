// internal/workers/roadmap/generate-roadmap/handler.go
package generateroadmap

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"visaverse-copilot/internal/common/errors"
	"visaverse-copilot/internal/common/logger"
	"visaverse-copilot/internal/common/metrics"
	"visaverse-copilot/internal/common/validation"
	"visaverse-copilot/internal/models"
	"visaverse-copilot/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-roadmap"
)

// Generator is the generation pipeline shared with the HTTP endpoint.
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error)
}

type Handler struct {
	config      *Config
	generator   Generator
	inputSchema map[string]interface{}
	errors      *errors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(config *Config, generator Generator, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		generator:   generator,
		inputSchema: inputSchema(),
		errors:      errors.NewErrorHandler(log),
		logger:      log,
	}
}

// RegistryTimeout is the activity timeout declared in the registry, or zero.
func RegistryTimeout() time.Duration {
	reg, err := registry.Default()
	if err != nil {
		return 0
	}
	a, ok := reg.Find(TaskType)
	if !ok {
		return 0
	}
	return a.TimeoutDuration(0)
}

func inputSchema() map[string]interface{} {
	if reg, err := registry.Default(); err == nil {
		if a, ok := reg.Find(TaskType); ok && len(a.InputSchema) > 0 {
			return a.InputSchema
		}
	}
	return map[string]interface{}{"type": "object"}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
		"retries":     job.Retries,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewInvalidRequestError(fmt.Errorf("parse input: %w", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		// The job deadline may already have passed; report on a fresh context.
		h.failJob(context.Background(), client, job, err)
		return
	}

	h.completeJob(context.Background(), client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := validation.Validate(h.inputSchema, input.GenerationRequest)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, errors.NewInvalidProfileError(strings.Join(result.GetErrorMessages(), "; "))
	}

	resp, err := h.generator.Generate(ctx, input.GenerationRequest)
	if err != nil {
		return nil, err
	}

	h.logger.Info("roadmap generated", map[string]interface{}{
		"destination": resp.Destination,
		"length":      len(resp.Roadmap),
	})

	return &Output{
		Roadmap:     resp.Roadmap,
		Destination: resp.Destination,
		GeneratedAt: resp.GeneratedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

// failJob leaves the retry-or-throw decision to the shared error handler:
// rate limits and quota exhaustion become BPMN errors the process can catch.
func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
