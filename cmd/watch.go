package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notecompacter/compacter/internal/adapters/watcher"
	"github.com/notecompacter/compacter/pkg/ui"
)

var (
	watchDir   string
	watchQuiet bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [project]",
	Short: "Ingest files dropped into a directory automatically",
	Long: `Watch a directory and ingest new or rewritten text files into a project.

Changes are collected until the directory has been quiet for
watch_debounce_ms (config) and then ingested as one batch. Only files with
one of the configured ingest_extensions are picked up; hidden files and
editor backups are ignored.

Use --quiet to suppress batch notifications.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "Directory to watch (default: current directory)")
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Suppress batch notifications")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	project, err := resolveProject(ctx, args)
	if err != nil {
		return handleCanceled(err)
	}

	dir := watchDir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return err
		}
	}
	dir = expandHome(dir)

	inbox := watcher.NewInbox(
		dir,
		time.Duration(appConfig.WatchDebounceMS)*time.Millisecond,
		appConfig.HasExtension,
		appLogger,
	)

	if !watchQuiet {
		fmt.Println(ui.FormatRocket("Watching for new files..."))
		fmt.Println(ui.FormatMuted("Directory: " + dir))
		fmt.Println(ui.FormatMuted("Project:   " + project.Name))
		fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
		fmt.Println()
	}

	err = inbox.Run(ctx, func(ctx context.Context, paths []string) {
		res, err := inboxService.Ingest(ctx, project.ID, paths)
		if err != nil {
			appLogger.Error(ctx, "inbox ingest failed", zap.Error(err))
			if !watchQuiet {
				fmt.Println(ui.FormatError("Ingest failed: " + err.Error()))
			}
			return
		}
		if !watchQuiet {
			fmt.Println(ui.FormatSuccess(fmt.Sprintf("Ingested %d files (%s appended)", res.Copied, ui.FormatBytes(res.AppendedBytes))))
		}
	})
	if err != nil {
		return err
	}

	if !watchQuiet {
		fmt.Println()
		fmt.Println(ui.FormatMuted("Watcher stopped"))
	}
	return nil
}
