package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/internal/adapters/report"
	"github.com/notecompacter/compacter/pkg/ui"
)

var (
	statsHTML string
	statsJSON bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [project]",
	Short: "Show project statistics",
	Long: `Analyze a project's archive and master document.

Includes:
  - Component count and archived bytes
  - Oldest and newest ingestion
  - Whether the master still matches a rebuild
  - Per-component sizes

With --html an interactive bar chart of component sizes is written too.

Examples:
  compacter stats reading
  compacter stats reading --html reading.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsHTML, "html", "", "Write an HTML chart of component sizes to this file")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print statistics as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	project, err := resolveProject(ctx, args)
	if err != nil {
		return handleCanceled(err)
	}

	stats, err := statsService.Execute(ctx, project.ID)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to analyze project"))
		return err
	}

	if statsHTML != "" {
		if err := report.WriteComponentChart(expandHome(statsHTML), stats); err != nil {
			return err
		}
	}

	if statsJSON {
		return printJSON(stats)
	}

	fmt.Println(ui.FormatTitle(ui.IconProject + " " + stats.Name))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Components", fmt.Sprintf("%d", stats.Count())))
	fmt.Println(ui.RenderKeyValue("Archived", ui.FormatBytes(stats.ComponentBytes)))
	fmt.Println(ui.RenderKeyValue("Master", ui.FormatBytes(stats.MasterBytes)))
	if stats.Oldest != "" {
		fmt.Println(ui.RenderKeyValue("Oldest", stats.Oldest))
		fmt.Println(ui.RenderKeyValue("Newest", stats.Newest))
	}
	if stats.Drifted() {
		fmt.Println(ui.RenderKeyValue("Status", ui.StyleWarning.Render("differs from a rebuild (edited or partially ingested)")))
	} else {
		fmt.Println(ui.RenderKeyValue("Status", ui.StyleSuccess.Render("matches the archive")))
	}

	if stats.Count() > 0 {
		fmt.Println()
		table := ui.NewTable([]ui.TableColumn{
			{Header: "Original", Width: 24, Align: "left"},
			{Header: "Added", Width: 24, Align: "left"},
			{Header: "Size", Width: 10, Align: "right"},
		})
		table.MaxCellWidth = appConfig.TableWidth
		for _, c := range stats.Components {
			table.AddRow([]string{c.OriginalName, c.DisplayAddedAt(), ui.FormatBytes(c.Bytes)})
		}
		fmt.Print(table.Render())
	}

	if statsHTML != "" {
		fmt.Println()
		fmt.Println(ui.FormatSuccess("Chart written to " + statsHTML))
	}
	return nil
}
