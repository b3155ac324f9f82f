package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/internal/adapters/dialog"
	"github.com/notecompacter/compacter/internal/core/ports"
	"github.com/notecompacter/compacter/pkg/ui"
)

var (
	exportOutput string
	exportJSON   bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [project]",
	Short: "Write a project's master document to a file",
	Long: `Export the master document verbatim to a file of your choosing.

Without --output you are prompted for a path (Esc cancels). A directory
receives the configured default file name.

Examples:
  compacter export reading -o ~/Desktop/reading.txt
  compacter export reading`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Destination file or directory")
	exportCmd.Flags().BoolVar(&exportJSON, "json", false, "Print the result as JSON")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	project, err := resolveProject(ctx, args)
	if err != nil {
		return handleCanceled(err)
	}

	var target ports.SaveTarget
	if exportOutput != "" {
		target = dialog.StaticSaveTarget{Path: expandHome(exportOutput)}
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = dialog.NewPromptSaveTarget(wd)
	}

	res, err := projectStore.ExportMaster(ctx, project.ID, target)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to export master"))
		return err
	}

	if exportJSON {
		return printJSON(res)
	}
	if !res.Saved {
		fmt.Println(ui.FormatInfo("Export cancelled."))
		return nil
	}

	fmt.Println(ui.FormatSuccess("Master exported to " + res.Path))
	return nil
}
