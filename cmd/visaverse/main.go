package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"visaverse-copilot/internal/cli"
	"visaverse-copilot/internal/common/config"
	"visaverse-copilot/internal/common/logger"
	"visaverse-copilot/internal/render"
	"visaverse-copilot/internal/requester"

	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The terminal belongs to the form and the results view, so logs only
	// go somewhere when VISAVERSE_LOG_FILE names a file.
	log := logger.NewNoOpLogger()
	if path := os.Getenv("VISAVERSE_LOG_FILE"); path != "" {
		zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, path)
		defer zapLog.Sync()
		log = logger.NewZapAdapter(zapLog)
	}

	app := &cli.App{
		Generator: requester.New(cfg.Requester, nil, log),
		Exporter:  render.HTMLExporter{},
		ExportDir: os.Getenv("VISAVERSE_EXPORT_DIR"),
		Logger:    log,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
