// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler fails or throws Zeebe jobs from a StandardError.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError fails the job with retries when the error is transient and
// the job has retries left; otherwise it throws a BPMN error so the process
// can route on the error code.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	retries, throw := Decide(job.Retries, stdErr)
	h.logError(job, stdErr, bpmnErr, retries, throw)

	vars, _ := json.Marshal(bpmnErr.ToErrorVariables())

	if throw {
		cmd := client.NewThrowErrorCommand().
			JobKey(job.Key).
			ErrorCode(bpmnErr.Code).
			ErrorMessage(bpmnErr.Message)
		if withVars, verr := cmd.VariablesFromString(string(vars)); verr == nil {
			cmd = withVars
		}
		if _, sendErr := cmd.Send(ctx); sendErr != nil {
			h.logSendError("throw error command failed", job, bpmnErr, sendErr)
		}
		return
	}

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage(bpmnErr.Message)
	if withVars, verr := cmd.VariablesFromString(string(vars)); verr == nil {
		if _, sendErr := withVars.Send(ctx); sendErr != nil {
			h.logSendError("fail job command failed", job, bpmnErr, sendErr)
		}
		return
	}
	if _, sendErr := cmd.Send(ctx); sendErr != nil {
		h.logSendError("fail job command failed", job, bpmnErr, sendErr)
	}
}

func (h *ErrorHandler) logSendError(msg string, job entities.Job, bpmnErr *BPMNError, err error) {
	h.logger.Error(msg, map[string]interface{}{
		"jobKey":    job.Key,
		"jobType":   job.Type,
		"errorCode": bpmnErr.Code,
		"error":     err.Error(),
	})
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// Decide returns the retries to report on a failed job and whether the
// error should be thrown as a BPMN error instead. Capacity errors are always
// thrown so the process model can route on RATE_LIMITED or QUOTA_EXHAUSTED.
// Remaining retries never exceed what Zeebe granted the job or what the code
// allows.
func Decide(jobRetries int32, stdErr *StandardError) (int, bool) {
	if !stdErr.Retryable || GetErrorCategory(stdErr.Code) == "CAPACITY" {
		return 0, true
	}
	remaining := int(jobRetries) - 1
	if limit := GetRetryCount(stdErr.Code); remaining > limit {
		remaining = limit
	}
	if remaining <= 0 {
		return 0, true
	}
	return remaining, false
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, bpmnErr *BPMNError, retries int, throw bool) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          retries,
		"thrown":           throw,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})
}
