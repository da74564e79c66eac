// cmd/roadmap-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"visaverse-copilot/internal/common/camunda"
	"visaverse-copilot/internal/common/config"
	"visaverse-copilot/internal/common/database"
	commonhttp "visaverse-copilot/internal/common/http"
	"visaverse-copilot/internal/common/logger"
	"visaverse-copilot/internal/common/observability"
	"visaverse-copilot/internal/generation"
	"visaverse-copilot/internal/server"

	gr "visaverse-copilot/internal/workers/roadmap/generate-roadmap"
	vsp "visaverse-copilot/internal/workers/roadmap/validate-student-profile"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// tracingServiceName is the otelgin service name, empty when tracing is off.
func tracingServiceName(cfg *config.Config) string {
	if !cfg.Tracing.Enabled {
		return ""
	}
	return cfg.App.Name
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting roadmap server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	shutdownTracing := observability.InitTracing(ctx, cfg.Tracing, cfg.App, log)
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(tctx)
	}()

	var ready []server.Pinger

	// --- Redis (rate limiting only) ---
	var limiter server.WindowCounter
	if cfg.RateLimit.Enabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return rdb.Ping(pingCtx)
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected", zap.String("address", cfg.Database.Redis.Address))
		limiter = rdb
		ready = append(ready, rdb)
	}

	providerHTTP := commonhttp.NewClient(config.GetDuration(cfg.Provider.Timeout))
	if cfg.Tracing.Enabled {
		providerHTTP = commonhttp.NewClientWithTransport(
			config.GetDuration(cfg.Provider.Timeout),
			otelhttp.NewTransport(http.DefaultTransport),
		)
	}
	pipeline := generation.New(cfg.Provider, generation.NewProviderClient(cfg.Provider, providerHTTP), log, obs)

	// --- Zeebe workers ---
	var workers []*camunda.CamundaWorker
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("failed to create zeebe client", zap.Error(err))
		}
		defer func() {
			if err := zeebe.Close(); err != nil {
				zapLog.Error("Error closing Zeebe client", zap.Error(err))
			}
		}()
		ready = append(ready, zeebe)

		if config.IsWorkerEnabled(cfg, vsp.TaskType) {
			handler := vsp.NewHandler(vsp.LoadConfig(config.GetWorkerConfig(cfg, vsp.TaskType)), log)
			workers = append(workers, camunda.NewWorker(zeebe.GetClient(), vsp.TaskType, config.GetWorkerConfig(cfg, vsp.TaskType), handler, log))
		}
		if config.IsWorkerEnabled(cfg, gr.TaskType) {
			wc := config.GetWorkerConfig(cfg, gr.TaskType)
			handler := gr.NewHandler(gr.LoadConfig(wc, gr.RegistryTimeout()), pipeline, log)
			workers = append(workers, camunda.NewWorker(zeebe.GetClient(), gr.TaskType, wc, handler, log))
		}
		for _, w := range workers {
			w.Start()
		}
		zapLog.Info("workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP ---
	router := server.NewRouter(server.RouterConfig{
		Handlers:       server.NewHandlers(pipeline, log, ready...),
		Logger:         log,
		Limiter:        limiter,
		RateLimit:      cfg.RateLimit,
		ServiceName:    tracingServiceName(cfg),
		TrustedProxies: cfg.Server.TrustedProxies,
	})
	srv := server.NewHTTPServer(cfg.Server, router)

	go func() {
		zapLog.Info("Roadmap server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}

	zapLog.Info("Roadmap server stopped gracefully")
}
