// Package cli is the interactive front end: a huh form collects the profile,
// a bubbletea model shows the generated roadmap merged with the country data.
package cli

import (
	"context"

	"visaverse-copilot/internal/common/logger"
	"visaverse-copilot/internal/models"
	"visaverse-copilot/internal/render"

	"github.com/spf13/cobra"
)

// Generator produces the roadmap text for a submitted profile.
type Generator interface {
	Generate(ctx context.Context, p models.Profile) (string, error)
}

// App holds what the commands need.
type App struct {
	Generator Generator
	Exporter  render.Exporter
	ExportDir string
	Logger    logger.Logger

	// IsInteractive reports whether stdin is a terminal. Nil means yes.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "visaverse" command.
func NewRootCmd(app *App) *cobra.Command {
	if app.Exporter == nil {
		app.Exporter = render.HTMLExporter{}
	}
	if app.ExportDir == "" {
		app.ExportDir = "."
	}
	if app.Logger == nil {
		app.Logger = logger.NewNoOpLogger()
	}

	root := &cobra.Command{
		Use:           "visaverse",
		Short:         "Personalized student visa roadmaps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPlanCmd(app),
		newCountriesCmd(),
		newShowCmd(app),
	)

	return root
}
