// internal/workers/roadmap/generate-roadmap/config.go
package generateroadmap

import (
	"time"

	"visaverse-copilot/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig falls back to the registry timeout when the worker config has
// none.
func LoadConfig(wc config.WorkerConfig, registryTimeout time.Duration) *Config {
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = registryTimeout
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Config{Timeout: timeout}
}
