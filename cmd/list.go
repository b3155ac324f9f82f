package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/pkg/ui"
)

var listJSON bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all projects",
	Aliases: []string{"ls"},
	Long: `List all projects sorted by name.

Examples:
  compacter list
  compacter ls --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print projects as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	projects, err := projectStore.ListProjects(ctx)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list projects"))
		return err
	}

	if listJSON {
		return printJSON(projects)
	}

	// Handle empty results
	if len(projects) == 0 {
		fmt.Println(ui.FormatWarning("No projects found"))
		fmt.Println(ui.FormatInfo("Create your first project with: compacter new \"My Project\""))
		return nil
	}

	fmt.Println(ui.FormatTitle("Projects"))
	fmt.Println()

	table := ui.NewTable([]ui.TableColumn{
		{Header: "Name", Width: 30, Align: "left"},
		{Header: "ID", Width: 36, Align: "left"},
	})
	table.MaxCellWidth = appConfig.TableWidth

	for _, p := range projects {
		table.AddRow([]string{p.Name, p.ID})
	}

	fmt.Print(table.Render())
	fmt.Println()

	fmt.Println(ui.FormatMuted(fmt.Sprintf("Total: %d projects", len(projects))))
	return nil
}
