// Package requester is the client side of roadmap generation: it resolves the
// profile codes to display labels, makes exactly one call to the generation
// endpoint and returns the roadmap text.
package requester

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"visaverse-copilot/internal/catalog"
	"visaverse-copilot/internal/common/config"
	commonhttp "visaverse-copilot/internal/common/http"
	"visaverse-copilot/internal/common/logger"
	"visaverse-copilot/internal/models"
)

// Kind classifies a generation failure.
type Kind string

const (
	KindTransport   Kind = "transport"
	KindRateLimited Kind = "rate_limited"
	KindQuota       Kind = "quota_exhausted"
	KindServer      Kind = "server"
	KindNoContent   Kind = "no_content"
)

const genericMessage = "Failed to generate roadmap"

// GenerationError is returned for any failed generation. Status is zero for
// transport failures.
type GenerationError struct {
	Status  int
	Kind    Kind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsGenerationError reports whether err is, or wraps, a *GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

type Requester struct {
	endpoint string
	client   *commonhttp.Client
	logger   logger.Logger
}

// New builds a requester for cfg.EndpointURL. A nil httpClient gets one bound
// to cfg.Timeout.
func New(cfg config.RequesterConfig, httpClient *commonhttp.Client, log logger.Logger) *Requester {
	if httpClient == nil {
		httpClient = commonhttp.NewClient(config.GetDuration(cfg.Timeout))
	}
	return &Requester{
		endpoint: cfg.EndpointURL,
		client:   httpClient,
		logger:   log.With(map[string]interface{}{"component": "requester"}),
	}
}

// BuildRequest maps a profile to the endpoint body. Education level, field of
// study and budget become labels; the destination stays a code.
func BuildRequest(p models.Profile) models.GenerationRequest {
	return models.GenerationRequest{
		CurrentCountry:     p.CurrentCountry,
		DestinationCountry: p.DestinationCountry,
		EducationLevel:     catalog.Label(catalog.EducationLevels(), p.EducationLevel),
		FieldOfStudy:       catalog.Label(catalog.StudyFields(), p.FieldOfStudy),
		BudgetRange:        catalog.Label(catalog.BudgetRanges(), p.BudgetRange),
	}
}

// Generate issues one request and returns the roadmap text. Every failure is
// a *GenerationError.
func (r *Requester) Generate(ctx context.Context, p models.Profile) (string, error) {
	start := time.Now()
	body := BuildRequest(p)

	resp, err := r.client.PostJSON(ctx, r.endpoint, nil, body)
	if err != nil {
		r.logger.Error("generation request failed", map[string]interface{}{
			"error":       err,
			"destination": p.DestinationCountry,
		})
		return "", &GenerationError{Kind: KindTransport, Message: genericMessage, Err: err}
	}

	if !resp.OK() {
		gerr := &GenerationError{
			Status:  resp.StatusCode,
			Kind:    kindFor(resp.StatusCode),
			Message: genericMessage,
		}
		var er models.ErrorResponse
		if json.Unmarshal(resp.Body, &er) == nil && er.Error != "" {
			gerr.Message = er.Error
		}
		r.logger.Warn("generation endpoint returned an error", map[string]interface{}{
			"status":  resp.StatusCode,
			"message": gerr.Message,
		})
		return "", gerr
	}

	var out models.GenerationResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", &GenerationError{Status: resp.StatusCode, Kind: KindNoContent, Message: "no content", Err: err}
	}
	if out.Roadmap == "" {
		return "", &GenerationError{Status: resp.StatusCode, Kind: KindNoContent, Message: "no content"}
	}

	r.logger.Info("roadmap received", map[string]interface{}{
		"destination": p.DestinationCountry,
		"durationMs":  time.Since(start).Milliseconds(),
	})
	return out.Roadmap, nil
}

func kindFor(status int) Kind {
	switch status {
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusPaymentRequired:
		return KindQuota
	default:
		return KindServer
	}
}
