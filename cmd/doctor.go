package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/pkg/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of your compacter storage",
	Long: `Diagnose issues with your compacter setup.

Checks for:
  - Storage directory integrity and the storage marker
  - Configuration file existence
  - Editor and clipboard availability
  - Projects with missing metadata
  - Components without a sidecar
  - Masters that no longer match a rebuild`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	fmt.Println(ui.FormatTitle("🏥 Compacter Doctor"))
	fmt.Println()

	// 1. Check storage structure
	failed := 0
	failed += checkStep("Storage Directory", func() error {
		if !appVault.Exists() {
			return fmt.Errorf("not found at %s", appVault.RootPath)
		}
		return nil
	})

	failed += checkStep("Projects Directory", func() error {
		if _, err := os.Stat(appVault.ProjectsPath); os.IsNotExist(err) {
			return fmt.Errorf("missing at %s", appVault.ProjectsPath)
		}
		return nil
	})

	failed += checkStep("Storage Marker", func() error {
		info := projectStore.StorageInfo(ctx)
		if !info.OK {
			return fmt.Errorf("%s", info.Error)
		}
		if info.Marker == nil {
			return fmt.Errorf("missing (run 'compacter init' to write it)")
		}
		return nil
	})

	// 2. Check config
	failed += checkStep("Configuration File", func() error {
		if _, err := os.Stat(appVault.ConfigPath); os.IsNotExist(err) {
			return fmt.Errorf("missing at %s (defaults in use)", appVault.ConfigPath)
		}
		return nil
	})

	// 3. Check environment
	failed += checkStep("Editor", func() error {
		editor := strings.Fields(GetPreferredEditor())
		if len(editor) == 0 {
			return fmt.Errorf("no editor configured")
		}
		if _, err := exec.LookPath(editor[0]); err != nil {
			return fmt.Errorf("%s not found in PATH (required for 'compacter edit')", editor[0])
		}
		return nil
	})

	failed += checkStep("Clipboard", func() error {
		if clipboard.Unsupported {
			return fmt.Errorf("no clipboard utility (required for 'compacter copy')")
		}
		return nil
	})

	fmt.Println()
	fmt.Println(ui.FormatInfo("Checking project integrity..."))

	projects, err := projectStore.ListProjects(ctx)
	if err != nil {
		return err
	}

	failed += checkStep("Project Metadata", func() error {
		var broken []string
		for _, p := range projects {
			if p.Name == domain.UnnamedProject {
				broken = append(broken, p.ID)
			}
		}
		if len(broken) > 0 {
			return fmt.Errorf("unreadable project.json in %s", strings.Join(broken, ", "))
		}
		return nil
	})

	failed += checkStep("Component Sidecars", func() error {
		missing := 0
		for _, p := range projects {
			items, err := projectStore.ListComponents(ctx, p.ID)
			if err != nil {
				return err
			}
			for _, c := range items {
				if !c.HasTimestamp() {
					fmt.Printf("    %s -> %s (no sidecar)\n", p.Name, c.InternalName)
					missing++
				}
			}
		}
		if missing > 0 {
			return fmt.Errorf("found %d components without metadata", missing)
		}
		return nil
	})

	failed += checkStep("Master Consistency", func() error {
		var drifted []string
		for _, p := range projects {
			stats, err := statsService.Execute(ctx, p.ID)
			if err != nil {
				return err
			}
			if stats.Drifted() {
				drifted = append(drifted, p.Name)
			}
		}
		if len(drifted) > 0 {
			return fmt.Errorf("master differs from its components in %s (edited, or run 'compacter rebuild')", strings.Join(drifted, ", "))
		}
		return nil
	})

	fmt.Println()
	if failed > 0 {
		fmt.Println(ui.FormatWarning(fmt.Sprintf("%d checks reported problems", failed)))
	} else {
		fmt.Println(ui.FormatSuccess("Everything looks healthy"))
	}
	return nil
}

// checkStep runs a check function, prints the result and returns 1 on failure
func checkStep(name string, check func() error) int {
	err := check()
	if err == nil {
		fmt.Printf("%s %s\n", ui.StyleSuccess.Render(ui.IconSuccess), name)
		return 0
	}
	fmt.Printf("%s %s\n", ui.StyleError.Render(ui.IconError), name)
	fmt.Printf("    %s\n", ui.StyleMuted.Render(err.Error()))
	return 1
}
