package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/pkg/ui"
)

var newJSON bool

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new project",
	Long: `Create a new, empty project.

A blank name is replaced with "Project <id>".

Examples:
  compacter new "Reading notes"
  compacter new Meeting minutes 2024`,
	RunE: runNew,
}

func init() {
	newCmd.Flags().BoolVar(&newJSON, "json", false, "Print the result as JSON")
}

func runNew(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")

	ctx := getContext()
	res, err := projectStore.CreateProject(ctx, name)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to create project"))
		return err
	}

	if newJSON {
		return printJSON(res)
	}

	doc, err := projectStore.ReadMaster(ctx, res.ID)
	if err != nil {
		return err
	}

	fmt.Println(ui.FormatSuccess("Project created successfully!"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Name", doc.Name))
	fmt.Println(ui.RenderKeyValue("ID", res.ID))
	fmt.Println(ui.RenderKeyValue("Path", appVault.ProjectPath(res.ID)))
	return nil
}
