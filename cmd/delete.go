package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/pkg/ui"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete [project]",
	Aliases: []string{"rm"},
	Short:   "Delete a project and all of its data",
	Long: `Delete a project: its metadata, master document and every archived
component. This cannot be undone.

Examples:
  compacter delete reading
  compacter rm reading --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	project, err := resolveProject(ctx, args)
	if err != nil {
		return handleCanceled(err)
	}

	items, err := projectStore.ListComponents(ctx, project.ID)
	if err != nil {
		return err
	}

	if !deleteForce {
		fmt.Println(ui.RenderKeyValue("Project", project.Name))
		fmt.Println(ui.RenderKeyValue("ID", project.ID))
		fmt.Println(ui.RenderKeyValue("Components", fmt.Sprintf("%d", len(items))))
		fmt.Println()
		if !confirm(cmd.InOrStdin(), "Delete this project permanently?") {
			fmt.Println(ui.FormatInfo("Operation cancelled."))
			return nil
		}
	}

	if err := projectStore.DeleteProject(ctx, project.ID); err != nil {
		fmt.Println(ui.FormatError("Failed to delete project"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Deleted " + project.Name))
	return nil
}
