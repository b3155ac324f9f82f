package cmd

import (
	"fmt"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/pkg/ui"
)

var (
	componentRaw  bool
	componentJSON bool
)

// componentCmd represents the component command
var componentCmd = &cobra.Command{
	Use:   "component [project] [internal-name]",
	Short: "Print one archived component",
	Long: `Print the verbatim text of an archived component together with its
provenance. Without an internal name a fuzzy finder lists the components.

Examples:
  compacter component reading 1709294401000_00a1b2c3d4e5f607.txt
  compacter component reading --raw`,
	Args: cobra.MaximumNArgs(2),
	RunE: runComponent,
}

func init() {
	componentCmd.Flags().BoolVar(&componentRaw, "raw", false, "Print only the component text")
	componentCmd.Flags().BoolVar(&componentJSON, "json", false, "Print the component as JSON")
}

func runComponent(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	project, err := resolveProject(ctx, args[:min(len(args), 1)])
	if err != nil {
		return handleCanceled(err)
	}

	var internalName string
	if len(args) == 2 {
		internalName = args[1]
	} else {
		items, err := projectStore.ListComponents(ctx, project.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println(ui.FormatWarning("No components in " + project.Name))
			return nil
		}

		idx, err := fuzzyfinder.Find(
			items,
			func(i int) string {
				return fmt.Sprintf("%s  %s", items[i].DisplayAddedAt(), items[i].OriginalName)
			},
			fuzzyfinder.WithContext(ctx),
			fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
				if i == -1 {
					return ""
				}
				c, err := projectStore.ReadComponent(ctx, project.ID, items[i].InternalName)
				if err != nil {
					return fmt.Sprintf("Error loading preview: %v", err)
				}
				return fmt.Sprintf("Internal: %s\n\n%s", c.InternalName, headLines(c.Text, h-2))
			}),
		)
		if err != nil {
			fmt.Println(ui.FormatInfo("Operation cancelled."))
			return nil
		}
		internalName = items[idx].InternalName
	}

	c, err := projectStore.ReadComponent(ctx, project.ID, internalName)
	if err != nil {
		fmt.Println(ui.FormatError("Component not found: " + internalName))
		return err
	}

	switch {
	case componentJSON:
		return printJSON(c)
	case componentRaw:
		fmt.Print(c.Text)
		return nil
	}

	printComponentHeader(c)
	fmt.Print(c.Text)
	if c.Text != "" && c.Text[len(c.Text)-1] != '\n' {
		fmt.Println()
	}
	return nil
}

func printComponentHeader(c *domain.Component) {
	fmt.Println(ui.RenderKeyValue("Original", c.OriginalName))
	fmt.Println(ui.RenderKeyValue("Internal", c.InternalName))
	fmt.Println(ui.RenderKeyValue("Added", c.DisplayAddedAt()))
	fmt.Println(ui.RenderKeyValue("Size", ui.FormatBytes(len(c.Text))))
	fmt.Println()
}
