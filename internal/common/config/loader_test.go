package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_ShippedConfig(t *testing.T) {
	cfg, err := LoadFromFile("../../../configs/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "visaverse-copilot", cfg.App.Name)
	assert.Equal(t, DefaultModel, cfg.Provider.Model)
	assert.Equal(t, DefaultAPIKeyEnv, cfg.Provider.APIKeyEnv)
	assert.Equal(t, 60000, cfg.Provider.Timeout)
	assert.Equal(t, 90000, cfg.Requester.Timeout)
	assert.False(t, cfg.Camunda.Enabled)

	gen := cfg.Workers["generate-roadmap"]
	assert.True(t, gen.Enabled)
	assert.Equal(t, 2, gen.MaxRetries)

	validate := cfg.Workers["validate-student-profile"]
	assert.Equal(t, 3, validate.MaxRetries)
	assert.Equal(t, 10, validate.MaxJobsActive)
}

func TestLoadFromFile_DefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("PROVIDER_MODEL", "openai/gpt-4o-mini")
	t.Setenv("VISAVERSE_TEST_BASE", "http://gateway.internal/v1")

	cfg, err := LoadFromFile(writeConfig(t, "provider:\n  base_url: ${VISAVERSE_TEST_BASE}\n"))
	require.NoError(t, err)

	assert.Equal(t, "openai/gpt-4o-mini", cfg.Provider.Model)
	assert.Equal(t, "http://gateway.internal/v1", cfg.Provider.BaseURL)
	assert.Equal(t, 2000, cfg.Provider.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Provider.Temperature, 0.0001)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.NotNil(t, cfg.Workers)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"temperature out of range", "provider:\n  temperature: 3\n"},
		{"no tokens", "provider:\n  max_tokens: -1\n"},
		{"rate limit without window", "rate_limit:\n  enabled: true\n  window_seconds: 0\n"},
		{"camunda without broker", "camunda:\n  enabled: true\n  broker_address: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWorkerHelpers(t *testing.T) {
	cfg := &Config{
		Camunda: CamundaConfig{Enabled: true, MaxJobsActive: 4, Timeout: 30000},
		Workers: map[string]WorkerConfig{"generate-roadmap": {Enabled: false}},
	}

	assert.False(t, IsWorkerEnabled(cfg, "generate-roadmap"))
	assert.True(t, IsWorkerEnabled(cfg, "validate-student-profile"))

	wc := GetWorkerConfig(cfg, "validate-student-profile")
	assert.Equal(t, 4, wc.MaxJobsActive)
	assert.Equal(t, 30*time.Second, GetDuration(wc.Timeout))

	cfg.Camunda.Enabled = false
	assert.False(t, IsWorkerEnabled(cfg, "validate-student-profile"))
}
