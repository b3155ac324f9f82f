package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/pkg/ui"
)

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit [project]",
	Short: "Edit a project's master document in your editor",
	Long: `Open the master document in $EDITOR (or the configured editor).

The text is edited in a temporary file and saved back when the editor
exits. Nothing is written if the text did not change.

Examples:
  compacter edit reading
  EDITOR=nano compacter edit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	project, err := resolveProject(ctx, args)
	if err != nil {
		return handleCanceled(err)
	}

	doc, err := projectStore.ReadMaster(ctx, project.ID)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "compacter-master-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(doc.Text); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	fmt.Println(ui.FormatInfo("Opening master of " + ui.StyleBold.Render(doc.Name) + " in " + GetPreferredEditor()))
	if err := runEditor(tmpPath); err != nil {
		fmt.Println(ui.FormatError("Editor exited with an error, master left unchanged"))
		return err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to read edited text: %w", err)
	}
	if string(edited) == doc.Text {
		fmt.Println(ui.FormatMuted("No changes."))
		return nil
	}

	if err := projectStore.SaveMaster(ctx, project.ID, string(edited)); err != nil {
		fmt.Println(ui.FormatError("Failed to save master"))
		return err
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Master saved (%s)", ui.FormatBytes(len(edited)))))
	return nil
}
