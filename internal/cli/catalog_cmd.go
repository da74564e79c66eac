package cli

import (
	"fmt"

	"visaverse-copilot/internal/catalog"
	"visaverse-copilot/internal/render"

	"github.com/spf13/cobra"
)

func newCountriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List supported destination countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styleHeader.Render("Destinations"))
			for _, o := range catalog.Destinations() {
				rec, ok := catalog.Record(o.Value)
				if !ok {
					fmt.Fprintf(out, "  %s %-16s %s\n", o.Flag, o.Value, styleDim.Render("no data"))
					continue
				}
				fmt.Fprintf(out, "  %s %-16s %s  %s\n", o.Flag, o.Value, rec.VisaType, styleDim.Render(rec.ProcessingTime))
			}
			return nil
		},
	}
}

// newShowCmd renders the static country data without a generated roadmap.
func newShowCmd(app *App) *cobra.Command {
	var export bool

	cmd := &cobra.Command{
		Use:   "show <country>",
		Short: "Show documents, timeline, costs and risks for a destination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := render.NewView(args[0], "")
			fmt.Fprintln(cmd.OutOrStdout(), render.Terminal(v))
			if !export {
				return nil
			}
			path, err := render.SaveExport(app.Exporter, v, app.ExportDir)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render(render.MsgExportFailed))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleGood.Render(render.MsgExportSucceeded), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&export, "export", false, "also save the view as a document")
	cmd.Flags().StringVar(&app.ExportDir, "export-dir", app.ExportDir, "directory for exported roadmaps")
	return cmd
}
