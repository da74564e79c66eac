// internal/workers/roadmap/validate-student-profile/handler.go
package validatestudentprofile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"visaverse-copilot/internal/common/errors"
	"visaverse-copilot/internal/common/logger"
	"visaverse-copilot/internal/common/metrics"
	"visaverse-copilot/internal/common/validation"
	"visaverse-copilot/internal/models"
	"visaverse-copilot/internal/profile"
	"visaverse-copilot/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-student-profile"
)

type Handler struct {
	config      *Config
	inputSchema map[string]interface{}
	errors      *errors.ErrorHandler
	logger      logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		inputSchema: inputSchema(log),
		errors:      errors.NewErrorHandler(log),
		logger:      log,
	}
}

func inputSchema(log logger.Logger) map[string]interface{} {
	if reg, err := registry.Default(); err == nil {
		if a, ok := reg.Find(TaskType); ok && len(a.InputSchema) > 0 {
			return a.InputSchema
		}
	}
	log.Warn("no registry input schema, accepting any object", nil)
	return map[string]interface{}{"type": "object"}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewInvalidRequestError(fmt.Errorf("parse input: %w", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(context.Background(), client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	shape, err := validation.Validate(h.inputSchema, input)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !shape.Valid {
		return nil, errors.NewInvalidRequestError(fmt.Errorf("%s", strings.Join(shape.GetErrorMessages(), "; ")))
	}

	result, err := profile.Check(input.Profile)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	output := &Output{
		IsValid:          result.Valid,
		ValidationErrors: []validation.ValidationError{},
	}
	if !result.Valid {
		output.ValidationErrors = result.Errors
	} else {
		p, err := decodeProfile(input.Profile)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		output.Profile = &p
	}

	h.logger.Info("validation completed", map[string]interface{}{
		"isValid":    output.IsValid,
		"errorCount": len(output.ValidationErrors),
	})
	return output, nil
}

func decodeProfile(raw map[string]interface{}) (models.Profile, error) {
	var p models.Profile
	data, err := json.Marshal(raw)
	if err != nil {
		return p, err
	}
	err = json.Unmarshal(data, &p)
	return p, err
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
