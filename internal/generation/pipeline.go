// Package generation is the server side of roadmap generation: check the
// provider key, look up the destination's knowledge snippet, assemble the
// prompt, call the model once and classify the outcome.
package generation

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"visaverse-copilot/internal/catalog"
	"visaverse-copilot/internal/common/config"
	apperrors "visaverse-copilot/internal/common/errors"
	"visaverse-copilot/internal/common/logger"
	"visaverse-copilot/internal/common/metrics"
	"visaverse-copilot/internal/common/observability"
	"visaverse-copilot/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "visaverse-copilot/generation"

type Pipeline struct {
	apiKeyEnv string
	timeout   time.Duration
	provider  Provider
	logger    logger.Logger
	obs       *observability.Observability
	now       func() time.Time
	getenv    func(string) string
}

// New builds a pipeline. obs may be nil.
func New(cfg config.ProviderConfig, provider Provider, log logger.Logger, obs *observability.Observability) *Pipeline {
	return &Pipeline{
		apiKeyEnv: cfg.APIKeyEnv,
		timeout:   config.GetDuration(cfg.Timeout),
		provider:  provider,
		logger:    log.With(map[string]interface{}{"component": "generation"}),
		obs:       obs,
		now:       time.Now,
		getenv:    os.Getenv,
	}
}

// Generate runs one request through the pipeline. Failures are always
// *apperrors.StandardError.
func (p *Pipeline) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	start := p.now()
	resp, stdErr := p.run(ctx, req)

	status := "success"
	if stdErr != nil {
		status = string(stdErr.Code)
	}
	p.obs.RecordGeneration(ctx, p.now().Sub(start), status)

	if stdErr != nil {
		return nil, stdErr
	}
	return resp, nil
}

func (p *Pipeline) run(ctx context.Context, req models.GenerationRequest) (*models.GenerationResponse, *apperrors.StandardError) {
	p.logger.Info("generating visa roadmap", map[string]interface{}{
		"currentCountry":     req.CurrentCountry,
		"destinationCountry": req.DestinationCountry,
		"educationLevel":     req.EducationLevel,
		"fieldOfStudy":       req.FieldOfStudy,
		"budgetRange":        req.BudgetRange,
	})

	// read on every request, never cached
	apiKey := p.getenv(p.apiKeyEnv)
	if apiKey == "" {
		p.logger.Error("provider api key missing", map[string]interface{}{"env": p.apiKeyEnv})
		return nil, apperrors.NewMissingAPIKeyError(p.apiKeyEnv)
	}

	snippet := catalog.SnippetOrPlaceholder(req.DestinationCountry)

	messages, err := BuildMessages(ctx, req, snippet)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	callCtx, span := otel.Tracer(tracerName).Start(callCtx, "provider.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("roadmap.destination", req.DestinationCountry)),
	)
	text, err := p.provider.Complete(callCtx, apiKey, messages)
	if err != nil {
		stdErr := p.classify(err)
		metrics.ProviderCalls.WithLabelValues(string(stdErr.Code)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		span.End()
		return nil, stdErr
	}
	span.SetAttributes(attribute.Int("roadmap.length", len(text)))
	span.End()
	metrics.ProviderCalls.WithLabelValues("success").Inc()

	p.logger.Info("roadmap generated", map[string]interface{}{
		"destinationCountry": req.DestinationCountry,
		"length":             len(text),
	})
	return &models.GenerationResponse{
		Roadmap:     text,
		Destination: req.DestinationCountry,
		GeneratedAt: p.now().UTC(),
	}, nil
}

func (p *Pipeline) classify(err error) *apperrors.StandardError {
	var se *StatusError
	if errors.As(err, &se) {
		p.logger.Error("provider error", map[string]interface{}{
			"status": se.Status,
			"body":   se.Body,
		})
		switch se.Status {
		case 429:
			return apperrors.NewRateLimitedError(se.Error())
		case 402:
			return apperrors.NewQuotaExhaustedError(se.Error())
		default:
			return apperrors.NewProviderFailedError(se)
		}
	}

	if errors.Is(err, ErrEmptyCompletion) {
		p.logger.Error("provider returned no content", nil)
		return apperrors.NewEmptyCompletionError()
	}

	p.logger.Error("provider call failed", map[string]interface{}{"error": err})
	if isTimeout(err) {
		return apperrors.NewProviderTimeoutError(err)
	}
	return apperrors.NewProviderFailedError(err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
