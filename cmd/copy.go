package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/internal/adapters/clipboard"
	"github.com/notecompacter/compacter/pkg/ui"
)

// copyCmd represents the copy command
var copyCmd = &cobra.Command{
	Use:     "copy [project]",
	Aliases: []string{"cp"},
	Short:   "Copy a project's master document to the clipboard",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runCopy,
}

func runCopy(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	project, err := resolveProject(ctx, args)
	if err != nil {
		return handleCanceled(err)
	}

	n, err := projectStore.CopyMaster(ctx, project.ID, clipboard.System{})
	if err != nil {
		fmt.Println(ui.FormatError(err.Error()))
		return err
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Copied master of %s to clipboard (%s)", project.Name, ui.FormatBytes(n))))
	return nil
}
