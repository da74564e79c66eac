// Package errors provides the standardized error model shared by the
// generation endpoint and the workflow workers.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMissingAPIKey   ErrorCode = "MISSING_API_KEY"
	ErrCodeRateLimited     ErrorCode = "RATE_LIMITED"
	ErrCodeQuotaExhausted  ErrorCode = "QUOTA_EXHAUSTED"
	ErrCodeProviderFailed  ErrorCode = "PROVIDER_FAILED"
	ErrCodeProviderTimeout ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeEmptyCompletion ErrorCode = "EMPTY_COMPLETION"
	ErrCodeInvalidProfile  ErrorCode = "INVALID_PROFILE"
	ErrCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrCodeWorkflowEngine  ErrorCode = "WORKFLOW_ENGINE_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// Client-visible messages.
const (
	MsgRateLimited      = "Rate limit exceeded. Please try again in a moment."
	MsgQuotaExhausted   = "Service temporarily unavailable. Please try again later."
	MsgGenerationFailed = "Failed to generate roadmap"
	MsgNotConfigured    = "Roadmap generation is not configured"
	MsgInvalidRequest   = "Invalid request body"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Retryable  bool                   `json:"retryable"`
	HTTPStatus int                    `json:"-"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:       code,
		Message:    message,
		Details:    details,
		Retryable:  retryable,
		HTTPStatus: HTTPStatusFor(code),
		Timestamp:  time.Now().UTC(),
	}
}

// NewMissingAPIKeyError is a deployment problem, never retried.
func NewMissingAPIKeyError(envVar string) *StandardError {
	return newError(ErrCodeMissingAPIKey, MsgNotConfigured, fmt.Sprintf("%s is not configured", envVar), false)
}

// NewRateLimitedError maps an upstream 429.
func NewRateLimitedError(details string) *StandardError {
	return newError(ErrCodeRateLimited, MsgRateLimited, details, true)
}

// NewQuotaExhaustedError maps an upstream 402.
func NewQuotaExhaustedError(details string) *StandardError {
	return newError(ErrCodeQuotaExhausted, MsgQuotaExhausted, details, false)
}

// NewProviderFailedError covers every other upstream failure. The upstream
// status belongs in Details, which is logged but never sent to clients.
func NewProviderFailedError(err error) *StandardError {
	return newError(ErrCodeProviderFailed, MsgGenerationFailed, errDetails(err), true)
}

func NewProviderTimeoutError(err error) *StandardError {
	return newError(ErrCodeProviderTimeout, MsgGenerationFailed, errDetails(err), true)
}

func NewEmptyCompletionError() *StandardError {
	return newError(ErrCodeEmptyCompletion, MsgGenerationFailed, "no content in model response", true)
}

func NewInvalidProfileError(details string) *StandardError {
	return newError(ErrCodeInvalidProfile, "Student profile is incomplete or invalid", details, false)
}

func NewInvalidRequestError(err error) *StandardError {
	return newError(ErrCodeInvalidRequest, MsgInvalidRequest, errDetails(err), false)
}

// NewWorkflowEngineError wraps a failed Zeebe command. Connection and
// timeout failures are retryable.
func NewWorkflowEngineError(operation string, err error, retryable bool) *StandardError {
	stdErr := newError(ErrCodeWorkflowEngine, "Workflow engine request failed", errDetails(err), retryable)
	stdErr.Metadata = map[string]interface{}{"operation": operation}
	return stdErr
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, MsgGenerationFailed, errDetails(err), false)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// HTTPStatusFor maps an error code to the status the endpoint responds with.
func HTTPStatusFor(code ErrorCode) int {
	switch code {
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeQuotaExhausted:
		return http.StatusPaymentRequired
	case ErrCodeInvalidRequest, ErrCodeInvalidProfile:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProviderFailed, ErrCodeEmptyCompletion:
		return 2
	case ErrCodeProviderTimeout, ErrCodeRateLimited:
		return 1
	default:
		return 0 // business and configuration errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "PROVIDER") || code == ErrCodeEmptyCompletion:
		return "PROVIDER"
	case code == ErrCodeRateLimited || code == ErrCodeQuotaExhausted:
		return "CAPACITY"
	case strings.HasPrefix(codeStr, "INVALID"):
		return "VALIDATION"
	case code == ErrCodeMissingAPIKey:
		return "CONFIGURATION"
	case code == ErrCodeWorkflowEngine:
		return "INFRASTRUCTURE"
	default:
		return "OTHER"
	}
}
