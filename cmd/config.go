package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the compacter configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appVault.ConfigPath

		// Write defaults first so there is something to edit
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := appConfig.Save(path); err != nil {
				return err
			}
		}

		fmt.Println(ui.FormatInfo("Opening config: " + path))
		return runEditor(path)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := appConfig.Marshal()
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appVault.ConfigPath)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
