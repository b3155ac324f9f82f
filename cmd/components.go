package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/pkg/ui"
)

var componentsJSON bool

// componentsCmd represents the components command
var componentsCmd = &cobra.Command{
	Use:     "components [project]",
	Aliases: []string{"comps"},
	Short:   "List a project's archived components, newest first",
	Long: `List every component archived in a project, newest first.

Components whose metadata sidecar is missing are shown with an unknown
original name and no timestamp.

Examples:
  compacter components reading
  compacter comps reading --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runComponents,
}

func init() {
	componentsCmd.Flags().BoolVar(&componentsJSON, "json", false, "Print components as JSON")
}

func runComponents(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	project, err := resolveProject(ctx, args)
	if err != nil {
		return handleCanceled(err)
	}

	items, err := projectStore.ListComponents(ctx, project.ID)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list components"))
		return err
	}

	if componentsJSON {
		return printJSON(items)
	}

	if len(items) == 0 {
		fmt.Println(ui.FormatWarning("No components in " + project.Name))
		fmt.Println(ui.FormatInfo("Add some with: compacter ingest " + project.ID))
		return nil
	}

	fmt.Println(ui.FormatTitle(ui.IconArchive + " " + project.Name))
	fmt.Println()

	table := ui.NewTable([]ui.TableColumn{
		{Header: "Added", Width: 24, Align: "left"},
		{Header: "Original", Width: 24, Align: "left"},
		{Header: "Internal", Width: 34, Align: "left"},
	})
	table.MaxCellWidth = appConfig.TableWidth

	for _, c := range items {
		table.AddRow([]string{c.DisplayAddedAt(), c.OriginalName, c.InternalName})
	}

	fmt.Print(table.Render())
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("Total: %d components", len(items))))
	return nil
}
