package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/pkg/ui"
)

var (
	rebuildForce bool
	rebuildJSON  bool
)

// rebuildCmd represents the rebuild command
var rebuildCmd = &cobra.Command{
	Use:   "rebuild [project]",
	Short: "Regenerate the master document from the component archive",
	Long: `Rebuild the master document from every archived component, oldest
first. Manual edits to the master are discarded.

Examples:
  compacter rebuild reading
  compacter rebuild reading --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRebuild,
}

func init() {
	rebuildCmd.Flags().BoolVarP(&rebuildForce, "force", "f", false, "Skip the confirmation prompt")
	rebuildCmd.Flags().BoolVar(&rebuildJSON, "json", false, "Print the result as JSON")
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	project, err := resolveProject(ctx, args)
	if err != nil {
		return handleCanceled(err)
	}

	if !rebuildForce {
		stats, err := statsService.Execute(ctx, project.ID)
		if err != nil {
			return err
		}
		proceed, err := allowRebuild(cmd.InOrStdin(), stats.Drifted(), rebuildJSON)
		if err != nil {
			return err
		}
		if !proceed {
			fmt.Println(ui.FormatInfo("Operation cancelled."))
			return nil
		}
	}

	if !rebuildJSON {
		fmt.Println(ui.FormatInfo(ui.IconRebuild + " Rebuilding master of " + project.Name + "..."))
	}
	res, err := projectStore.RebuildMaster(ctx, project.ID)
	if err != nil {
		fmt.Println(ui.FormatError("Rebuild failed"))
		return err
	}

	if rebuildJSON {
		return printJSON(res)
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Rebuilt from %d components (%s)", res.Built, ui.FormatBytes(res.Bytes))))
	return nil
}

// allowRebuild decides whether a rebuild may discard the current master.
// JSON output cannot carry a prompt, so a drifted master needs --force there.
func allowRebuild(in io.Reader, drifted, jsonOut bool) (bool, error) {
	if !drifted {
		return true, nil
	}
	if jsonOut {
		return false, fmt.Errorf("the master differs from its components; pass --force to discard manual edits")
	}
	return confirm(in, "The master differs from its components. Discard manual edits?"), nil
}
