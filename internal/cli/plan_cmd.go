package cli

import (
	"context"
	"errors"
	"fmt"

	"visaverse-copilot/internal/models"
	"visaverse-copilot/internal/profile"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	flags := make(map[string]string, len(formFields))
	var from, to, level, field, budget string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Collect your profile and generate a visa roadmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags[models.FieldCurrentCountry] = from
			flags[models.FieldDestinationCountry] = to
			flags[models.FieldEducationLevel] = level
			flags[models.FieldFieldOfStudy] = field
			flags[models.FieldBudgetRange] = budget
			return runPlan(cmd, app, flags)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "country you are from (e.g. india)")
	cmd.Flags().StringVar(&to, "to", "", "destination country (e.g. canada)")
	cmd.Flags().StringVar(&level, "level", "", "education level (e.g. postgraduate)")
	cmd.Flags().StringVar(&field, "field", "", "field of study (e.g. engineering)")
	cmd.Flags().StringVar(&budget, "budget", "", "annual budget range (e.g. moderate)")
	cmd.Flags().StringVar(&app.ExportDir, "export-dir", app.ExportDir, "directory for exported roadmaps")
	return cmd
}

// ErrNotInteractive is returned by plan when stdin is not a terminal.
var ErrNotInteractive = errors.New("plan needs an interactive terminal; use \"show <country>\" instead")

// runPlan loops form -> request -> results until the user quits. A failed
// request or a reset returns to a cleared form.
func runPlan(cmd *cobra.Command, app *App, flags map[string]string) error {
	if app.IsInteractive != nil && !app.IsInteractive() {
		return ErrNotInteractive
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := app.Logger.With(map[string]interface{}{"component": "cli"})

	pf := profile.NewForm()
	fromFlags, err := profileFromFlags(pf, flags)
	if err != nil {
		return err
	}

	for {
		var p models.Profile
		if fromFlags {
			p, err = submit(pf)
			fromFlags = false
		} else {
			p, err = collectProfile(pf)
		}
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		model := newResultsModel(ctx, app.Generator, p, app.Exporter, app.ExportDir)
		final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if err != nil {
			return resultsExitErr(ctx, err)
		}

		result := final.(resultsModel)
		switch result.outcome {
		case outcomeFailed:
			log.Warn("Roadmap generation failed", map[string]interface{}{
				"destination": p.DestinationCountry,
				"error":       result.err.Error(),
			})
			fmt.Fprintln(out, styleError.Render(MsgGenerationFailed))
			pf.Reset()
		case outcomeReset:
			pf.Reset()
		default:
			return nil
		}
	}
}

// resultsExitErr treats an interrupted results program as a clean exit.
func resultsExitErr(ctx context.Context, err error) error {
	if errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("results view: %w", err)
}
