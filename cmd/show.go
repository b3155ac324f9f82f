package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/pkg/ui"
)

var (
	showRaw       bool
	showHighlight bool
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [project]",
	Short: "Print a project's master document",
	Long: `Print the master document of a project.

With --raw only the master text is written, byte for byte, so it can be
piped elsewhere.

Examples:
  compacter show reading
  compacter show reading --raw > master.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print only the master text")
	showCmd.Flags().BoolVar(&showHighlight, "highlight", false, "Color component banners")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	project, err := resolveProject(ctx, args)
	if err != nil {
		return handleCanceled(err)
	}

	doc, err := projectStore.ReadMaster(ctx, project.ID)
	if err != nil {
		return err
	}

	if showRaw {
		fmt.Print(doc.Text)
		return nil
	}

	fmt.Println(ui.FormatTitle(ui.IconMaster + " " + doc.Name))
	fmt.Println(ui.FormatMuted(fmt.Sprintf("%s • %s", project.ID, ui.FormatBytes(len(doc.Text)))))
	fmt.Println()

	if doc.Text == "" {
		fmt.Println(ui.FormatMuted("(empty master)"))
		return nil
	}

	text := doc.Text
	if showHighlight || appConfig.SyntaxHighlighting {
		text = ui.HighlightMaster(text)
	}
	fmt.Print(text)
	return nil
}
