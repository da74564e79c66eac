package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"visaverse-copilot/internal/common/config"
	commonhttp "visaverse-copilot/internal/common/http"

	"github.com/cloudwego/eino/schema"
)

var ErrEmptyCompletion = errors.New("model response has no content")

// Provider completes a chat conversation.
type Provider interface {
	Complete(ctx context.Context, apiKey string, messages []*schema.Message) (string, error)
}

// StatusError is a non-2xx answer from the provider.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Body)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ProviderClient talks to an OpenAI-compatible chat completions endpoint.
type ProviderClient struct {
	url         string
	model       string
	maxTokens   int
	temperature float64
	client      *commonhttp.Client
}

func NewProviderClient(cfg config.ProviderConfig, httpClient *commonhttp.Client) *ProviderClient {
	if httpClient == nil {
		httpClient = commonhttp.NewClient(config.GetDuration(cfg.Timeout))
	}
	return &ProviderClient{
		url:         strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      httpClient,
	}
}

// Complete makes exactly one call. Non-2xx answers come back as *StatusError
// and a reply without text as ErrEmptyCompletion.
func (p *ProviderClient) Complete(ctx context.Context, apiKey string, messages []*schema.Message) (string, error) {
	body := chatRequest{
		Model:       p.model,
		Messages:    make([]chatMessage, 0, len(messages)),
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}
	for _, m := range messages {
		body.Messages = append(body.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	resp, err := p.client.PostJSON(ctx, p.url, map[string]string{
		"Authorization": "Bearer " + apiKey,
	}, body)
	if err != nil {
		return "", fmt.Errorf("call provider: %w", err)
	}
	if !resp.OK() {
		return "", &StatusError{Status: resp.StatusCode, Body: string(resp.Body)}
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEmptyCompletion, err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}
