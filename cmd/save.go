package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/pkg/ui"
)

var saveFrom string

// saveCmd represents the save command
var saveCmd = &cobra.Command{
	Use:   "save [project]",
	Short: "Replace a project's master document",
	Long: `Overwrite the master document with text from a file or stdin.

The previous master is replaced in full; components are not touched, so
'compacter rebuild' can always regenerate the master from the archive.

Examples:
  compacter save reading --from edited.txt
  cat edited.txt | compacter save reading`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVarP(&saveFrom, "from", "f", "-", "File to read the master from (- for stdin)")
}

func runSave(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	project, err := resolveProject(ctx, args)
	if err != nil {
		return handleCanceled(err)
	}

	var data []byte
	if saveFrom == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(saveFrom)
	}
	if err != nil {
		return fmt.Errorf("failed to read master text: %w", err)
	}

	if err := projectStore.SaveMaster(ctx, project.ID, string(data)); err != nil {
		fmt.Println(ui.FormatError("Failed to save master"))
		return err
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Master of %s saved (%s)", project.Name, ui.FormatBytes(len(data)))))
	return nil
}
