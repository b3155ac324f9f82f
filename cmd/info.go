package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/pkg/ui"
)

var infoJSON bool

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show where compacter stores its data",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Print storage info as JSON")
}

func runInfo(cmd *cobra.Command, args []string) error {
	info := projectStore.StorageInfo(getContext())

	if infoJSON {
		return printJSON(info)
	}

	if !info.OK {
		fmt.Println(ui.FormatError("Storage unavailable: " + info.Error))
		return nil
	}

	fmt.Println(ui.FormatTitle("Storage"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Root", info.Info.Root))
	fmt.Println(ui.RenderKeyValue("Data", info.Info.DataDir))
	fmt.Println(ui.RenderKeyValue("Marker", info.Info.MarkerName))
	fmt.Println(ui.RenderKeyValue("Config", appVault.ConfigPath))

	if len(info.Marker) > 0 {
		keys := make([]string, 0, len(info.Marker))
		for k := range info.Marker {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Println()
		for _, k := range keys {
			fmt.Println(ui.FormatMuted(fmt.Sprintf("  %s: %v", k, info.Marker[k])))
		}
	}
	return nil
}
