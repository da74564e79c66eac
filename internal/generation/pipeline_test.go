package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"visaverse-copilot/internal/catalog"
	"visaverse-copilot/internal/common/config"
	apperrors "visaverse-copilot/internal/common/errors"
	"visaverse-copilot/internal/common/logger"
	"visaverse-copilot/internal/models"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyEnv = "VISAVERSE_TEST_PROVIDER_KEY"

type fakeProvider struct {
	calls    int
	gotKey   string
	gotMsgs  []*schema.Message
	response string
	err      error
}

func (f *fakeProvider) Complete(_ context.Context, apiKey string, messages []*schema.Message) (string, error) {
	f.calls++
	f.gotKey = apiKey
	f.gotMsgs = messages
	return f.response, f.err
}

func testRequest(destination string) models.GenerationRequest {
	return models.GenerationRequest{
		CurrentCountry:     "india",
		DestinationCountry: destination,
		EducationLevel:     "Postgraduate (Master's)",
		FieldOfStudy:       "Computer Science & IT",
		BudgetRange:        "Moderate ($15,000 - $30,000/year)",
	}
}

func newPipeline(t *testing.T, provider Provider) *Pipeline {
	t.Helper()
	cfg := config.ProviderConfig{APIKeyEnv: testKeyEnv, Timeout: 1000}
	return New(cfg, provider, logger.NewTestLogger(t), nil)
}

func TestPipeline_Success(t *testing.T) {
	t.Setenv(testKeyEnv, "secret")
	fp := &fakeProvider{response: "## 📋 Required Documents Checklist\n- Passport"}
	p := newPipeline(t, fp)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	resp, err := p.Generate(context.Background(), testRequest("canada"))
	require.NoError(t, err)
	assert.Equal(t, "## 📋 Required Documents Checklist\n- Passport", resp.Roadmap)
	assert.Equal(t, "canada", resp.Destination)
	assert.Equal(t, fixed, resp.GeneratedAt)

	assert.Equal(t, 1, fp.calls)
	assert.Equal(t, "secret", fp.gotKey)
	require.Len(t, fp.gotMsgs, 2)
	assert.Equal(t, schema.System, fp.gotMsgs[0].Role)
	assert.Equal(t, schema.User, fp.gotMsgs[1].Role)

	snippet, _ := catalog.Snippet("canada")
	assert.Contains(t, fp.gotMsgs[1].Content, snippet)
}

func TestPipeline_MissingKeyNeverCallsProvider(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	fp := &fakeProvider{response: "unused"}

	_, err := newPipeline(t, fp).Generate(context.Background(), testRequest("canada"))

	var se *apperrors.StandardError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, apperrors.ErrCodeMissingAPIKey, se.Code)
	assert.Equal(t, http.StatusInternalServerError, se.HTTPStatus)
	assert.Equal(t, apperrors.MsgNotConfigured, se.Message)
	assert.Zero(t, fp.calls)
}

func TestPipeline_UnknownDestinationUsesPlaceholder(t *testing.T) {
	t.Setenv(testKeyEnv, "secret")
	fp := &fakeProvider{response: "ok"}

	_, err := newPipeline(t, fp).Generate(context.Background(), testRequest("atlantis"))
	require.NoError(t, err)
	assert.Contains(t, fp.gotMsgs[1].Content, catalog.NoRulesPlaceholder)
}

func TestPipeline_Classification(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    apperrors.ErrorCode
		wantStatus  int
		wantMessage string
	}{
		{"rate limited", &StatusError{Status: 429, Body: "slow"}, apperrors.ErrCodeRateLimited, 429, "Rate limit exceeded. Please try again in a moment."},
		{"quota", &StatusError{Status: 402, Body: "pay"}, apperrors.ErrCodeQuotaExhausted, 402, "Service temporarily unavailable. Please try again later."},
		{"upstream 503", &StatusError{Status: 503, Body: "down"}, apperrors.ErrCodeProviderFailed, 500, "Failed to generate roadmap"},
		{"empty", ErrEmptyCompletion, apperrors.ErrCodeEmptyCompletion, 500, "Failed to generate roadmap"},
		{"timeout", fmt.Errorf("call provider: %w", context.DeadlineExceeded), apperrors.ErrCodeProviderTimeout, 500, "Failed to generate roadmap"},
		{"transport", errors.New("connection refused"), apperrors.ErrCodeProviderFailed, 500, "Failed to generate roadmap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(testKeyEnv, "secret")
			fp := &fakeProvider{err: tt.err}

			resp, err := newPipeline(t, fp).Generate(context.Background(), testRequest("japan"))
			assert.Nil(t, resp)

			var se *apperrors.StandardError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.wantCode, se.Code)
			assert.Equal(t, tt.wantStatus, se.HTTPStatus)
			assert.Equal(t, tt.wantMessage, se.Message)
			assert.Equal(t, 1, fp.calls, "exactly one provider call, no retry")
		})
	}
}

func TestPipeline_UpstreamStatusNotInClientMessage(t *testing.T) {
	t.Setenv(testKeyEnv, "secret")
	fp := &fakeProvider{err: &StatusError{Status: 503, Body: "overloaded"}}

	_, err := newPipeline(t, fp).Generate(context.Background(), testRequest("germany"))
	var se *apperrors.StandardError
	require.True(t, errors.As(err, &se))
	assert.NotContains(t, se.Message, "503")
	assert.Contains(t, se.Details, "503")
}

func TestBuildMessages(t *testing.T) {
	msgs, err := BuildMessages(context.Background(), testRequest("germany"), "GERMANY RULES")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, systemPrompt, msgs[0].Content)

	user := msgs[1].Content
	assert.Contains(t, user, "- Current Country: india\n")
	assert.Contains(t, user, "- Destination: germany\n")
	assert.Contains(t, user, "- Education Level: Postgraduate (Master's)\n")
	assert.Contains(t, user, "COUNTRY VISA RULES:\nGERMANY RULES\n")
	assert.Contains(t, user, "(budget: Moderate ($15,000 - $30,000/year), field: Computer Science & IT, level: Postgraduate (Master's))")

	headings := []string{
		"## 📋 Required Documents Checklist",
		"## 📅 Step-by-Step Timeline",
		"## 💰 Estimated Cost Breakdown",
		"## ⚠️ Common Rejection Risks",
		"## 🎯 Your Next Immediate Action",
		"## 💡 Personalized Tips",
	}
	last := -1
	for _, h := range headings {
		idx := strings.Index(user, h)
		require.GreaterOrEqual(t, idx, 0, h)
		assert.Greater(t, idx, last, "%s out of order", h)
		last = idx
	}
}

func TestBuildMessages_SnippetWithBracesIsLiteral(t *testing.T) {
	msgs, err := BuildMessages(context.Background(), testRequest("japan"), "fees {not a placeholder}")
	require.NoError(t, err)
	assert.Contains(t, msgs[1].Content, "fees {not a placeholder}")
}
