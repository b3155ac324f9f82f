package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/pkg/config"
	"github.com/notecompacter/compacter/pkg/ui"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize compacter storage and config",
	Long: `Initialize the compacter storage directory and write a default config.

This creates the managed store at ~/.local/share/compacter/ with the following structure:
  - projects/          : One directory per project
  - data/              : Reserved for application data
  - store.marker.json  : Storage marker

Other commands create the storage on first use; init additionally writes
config.yaml with every setting spelled out.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if appVault.Exists() {
		fmt.Println(ui.FormatWarning("Storage already initialized"))
		fmt.Println(ui.FormatMuted("Location: " + appVault.RootPath))
	} else {
		fmt.Println(ui.FormatRocket("Initializing compacter storage..."))
		fmt.Println()

		if err := appVault.Initialize(); err != nil {
			fmt.Println(ui.FormatError("Failed to initialize storage"))
			return err
		}
		fmt.Println(ui.FormatSuccess("Storage initialized successfully!"))
	}

	// Create default config
	if _, err := os.Stat(appVault.ConfigPath); os.IsNotExist(err) {
		if err := config.DefaultConfig().Save(appVault.ConfigPath); err != nil {
			// Config is optional
			fmt.Println(ui.FormatWarning("Failed to create default config: " + err.Error()))
		} else {
			fmt.Println(ui.FormatSuccess("Default config created"))
		}
	}

	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Location", appVault.RootPath))
	fmt.Println(ui.RenderKeyValue("Config", appVault.ConfigPath))
	fmt.Println()
	fmt.Println(ui.FormatInfo("Next steps:"))
	fmt.Println(ui.FormatMuted("  1. Create a project: compacter new \"Reading notes\""))
	fmt.Println(ui.FormatMuted("  2. Ingest text files: compacter ingest \"Reading notes\""))
	fmt.Println(ui.FormatMuted("  3. Browse everything: compacter dashboard"))

	return nil
}
