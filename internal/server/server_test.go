package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"visaverse-copilot/internal/common/config"
	"visaverse-copilot/internal/common/database"
	apperrors "visaverse-copilot/internal/common/errors"
	"visaverse-copilot/internal/common/logger"
	"visaverse-copilot/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	calls int
	got   models.GenerationRequest
	resp  *models.GenerationResponse
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, req models.GenerationRequest) (*models.GenerationResponse, error) {
	f.calls++
	f.got = req
	return f.resp, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

const validBody = `{"currentCountry":"india","destinationCountry":"canada","educationLevel":"Doctoral (PhD)","fieldOfStudy":"Law & Legal Studies","budgetRange":"Flexible (> $50,000/year)"}`

func newTestRouter(t *testing.T, gen Generator, mutate ...func(*RouterConfig)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewTestLogger(t)
	cfg := RouterConfig{
		Handlers:       NewHandlers(gen, log),
		Logger:         log,
		DisableMetrics: true,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return NewRouter(cfg)
}

func post(r http.Handler, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, GeneratePath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGenerate_Success(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	gen := &fakeGenerator{resp: &models.GenerationResponse{Roadmap: "## 📋 Required Documents Checklist", Destination: "canada", GeneratedAt: at}}
	r := newTestRouter(t, gen)

	rec := post(r, validBody, "Origin", "https://app.example")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "## 📋 Required Documents Checklist", body["roadmap"])
	assert.Equal(t, "canada", body["destination"])
	assert.Equal(t, "2026-05-01T09:30:00Z", body["generatedAt"])

	assert.Equal(t, "canada", gen.got.DestinationCountry)
	assert.Equal(t, "Law & Legal Studies", gen.got.FieldOfStudy)
}

func TestGenerate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"rate limited", apperrors.NewRateLimitedError("upstream 429"), 429, `{"error":"Rate limit exceeded. Please try again in a moment."}`},
		{"quota", apperrors.NewQuotaExhaustedError("upstream 402"), 402, `{"error":"Service temporarily unavailable. Please try again later."}`},
		{"provider", apperrors.NewProviderFailedError(errors.New("status 503")), 500, `{"error":"Failed to generate roadmap"}`},
		{"missing key", apperrors.NewMissingAPIKeyError("LOVABLE_API_KEY"), 500, `{"error":"Roadmap generation is not configured"}`},
		{"plain error", errors.New("boom"), 500, `{"error":"Failed to generate roadmap"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, &fakeGenerator{err: tt.err})
			rec := post(r, validBody, "Origin", "https://app.example")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

			noOrigin := post(newTestRouter(t, &fakeGenerator{err: tt.err}), validBody)
			assert.Equal(t, tt.wantStatus, noOrigin.Code)
			assert.Equal(t, "*", noOrigin.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "authorization, x-client-info, apikey, content-type", noOrigin.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestGenerate_CORSWithoutOrigin(t *testing.T) {
	gen := &fakeGenerator{resp: &models.GenerationResponse{Roadmap: "x", Destination: "canada"}}
	r := newTestRouter(t, gen)

	ok := post(r, validBody)
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "*", ok.Header().Get("Access-Control-Allow-Origin"))

	bad := post(r, `{"currentCountry":`)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Equal(t, "*", bad.Header().Get("Access-Control-Allow-Origin"))
}

func TestGenerate_InvalidBody(t *testing.T) {
	gen := &fakeGenerator{}
	r := newTestRouter(t, gen)

	rec := post(r, `{"currentCountry":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String())
	assert.Zero(t, gen.calls)
}

func TestPreflight(t *testing.T) {
	gen := &fakeGenerator{}
	r := newTestRouter(t, gen)

	t.Run("browser", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, GeneratePath, nil)
		req.Header.Set("Origin", "https://app.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, GeneratePath, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "x-client-info")
	})

	assert.Zero(t, gen.calls, "preflight never reaches the pipeline")
}

func TestRequestID_Propagated(t *testing.T) {
	gen := &fakeGenerator{resp: &models.GenerationResponse{Roadmap: "x"}}
	r := newTestRouter(t, gen)

	rec := post(r, validBody, RequestIDHeader, "req-123")
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestHealthAndReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.NewNoOpLogger()

	healthy := NewRouter(RouterConfig{Handlers: NewHandlers(&fakeGenerator{}, log, fakePinger{}), Logger: log, DisableMetrics: true})
	down := NewRouter(RouterConfig{Handlers: NewHandlers(&fakeGenerator{}, log, fakePinger{err: errors.New("redis down")}), Logger: log, DisableMetrics: true})

	for _, tc := range []struct {
		router *gin.Engine
		path   string
		want   int
	}{
		{healthy, "/health", http.StatusOK},
		{healthy, "/ready", http.StatusOK},
		{down, "/health", http.StatusOK},
		{down, "/ready", http.StatusServiceUnavailable},
	} {
		rec := httptest.NewRecorder()
		tc.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.want, rec.Code, tc.path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.NewNoOpLogger()
	r := NewRouter(RouterConfig{Handlers: NewHandlers(&fakeGenerator{resp: &models.GenerationResponse{Roadmap: "x"}}, log), Logger: log})

	post(r, validBody)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "roadmap_requests_total")
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	gen := &fakeGenerator{resp: &models.GenerationResponse{Roadmap: "x"}}
	r := newTestRouter(t, gen, func(c *RouterConfig) {
		c.Limiter = rc
		c.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 2, WindowSeconds: 60}
	})

	assert.Equal(t, http.StatusOK, post(r, validBody).Code)
	assert.Equal(t, http.StatusOK, post(r, validBody).Code)

	rec := post(r, validBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Rate limit exceeded. Please try again in a moment."}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 2, gen.calls)

	mr.FastForward(61 * time.Second)
	assert.Equal(t, http.StatusOK, post(r, validBody).Code)
}

func TestRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	gen := &fakeGenerator{resp: &models.GenerationResponse{Roadmap: "x"}}
	r := newTestRouter(t, gen, func(c *RouterConfig) {
		c.Limiter = rc
		c.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 1, WindowSeconds: 60}
	})

	var codes []int
	for i := 0; i < 5; i++ {
		rec := post(r, validBody, "X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{200, 429, 429, 429, 429}, codes)
	assert.Equal(t, 1, gen.calls)
}

func TestRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	gen := &fakeGenerator{resp: &models.GenerationResponse{Roadmap: "x"}}
	r := newTestRouter(t, gen, func(c *RouterConfig) {
		c.Limiter = rc
		c.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 1, WindowSeconds: 60}
		// httptest.NewRequest uses 192.0.2.1 as the peer address.
		c.TrustedProxies = []string{"192.0.2.1"}
	})

	assert.Equal(t, http.StatusOK, post(r, validBody, "X-Forwarded-For", "203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, post(r, validBody, "X-Forwarded-For", "203.0.113.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, validBody, "X-Forwarded-For", "203.0.113.1").Code)
	assert.Equal(t, 2, gen.calls)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	mr.Close()

	gen := &fakeGenerator{resp: &models.GenerationResponse{Roadmap: "x"}}
	r := newTestRouter(t, gen, func(c *RouterConfig) {
		c.Limiter = rc
		c.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 1, WindowSeconds: 60}
	})

	assert.Equal(t, http.StatusOK, post(r, validBody).Code)
	assert.Equal(t, http.StatusOK, post(r, validBody).Code)
}

func TestRouter_TracingMiddleware(t *testing.T) {
	gen := &fakeGenerator{resp: &models.GenerationResponse{Roadmap: "x", Destination: "canada"}}
	r := newTestRouter(t, gen, func(c *RouterConfig) { c.ServiceName = "visaverse-copilot" })

	rec := post(r, validBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, gen.calls)
}
