package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/internal/adapters/dialog"
	"github.com/notecompacter/compacter/internal/core/ports"
	"github.com/notecompacter/compacter/pkg/ui"
)

var (
	ingestDir     string
	ingestPattern string
	ingestJSON    bool
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [project] [files...]",
	Short: "Archive text files into a project and append them to its master",
	Long: `Ingest text files into a project.

Each file is copied verbatim into the project's component archive and
appended to the master document wrapped in a banner that records its
original name, internal name and time of ingestion.

Files can be given as arguments. Without files, a fuzzy finder offers every
file under --dir matching --pattern (Tab marks several, Enter confirms).

If a file fails, the rest of the batch is skipped and the master is left
as it was; components already archived stay and 'compacter rebuild'
brings the master back in line.

Examples:
  compacter ingest reading notes/*.txt
  compacter ingest reading --dir ~/Downloads --pattern "**/*.txt"`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestDir, "dir", "d", "", "Directory the picker searches (default: current directory)")
	ingestCmd.Flags().StringVarP(&ingestPattern, "pattern", "p", "", "Glob for the picker, ** matches nested directories (default: config ingest_pattern)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "Print the result as JSON")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	project, err := resolveProject(ctx, args[:min(len(args), 1)])
	if err != nil {
		return handleCanceled(err)
	}

	selector, err := ingestSelector(args, func(path string) {
		fmt.Fprintln(os.Stderr, ui.FormatWarning(skippedMessage(path, appConfig.IngestExtensions)))
	})
	if err != nil {
		return err
	}

	res, err := projectStore.IngestFiles(ctx, project.ID, selector)
	if errors.Is(err, dialog.ErrNoCandidates) {
		fmt.Println(ui.FormatWarning(err.Error()))
		return nil
	}
	if err != nil {
		fmt.Println(ui.FormatError("Ingest stopped: " + err.Error()))
		if res != nil && res.Copied > 0 {
			fmt.Println(ui.FormatInfo(fmt.Sprintf("%d files were archived before the failure; run 'compacter rebuild %s' to refresh the master", res.Copied, project.ID)))
		}
		return err
	}

	if ingestJSON {
		return printJSON(res)
	}

	if res.Copied == 0 {
		fmt.Println(ui.FormatInfo("Nothing ingested."))
		return nil
	}

	fmt.Println(ui.FormatSuccess(fmt.Sprintf("Ingested %d files into %s", res.Copied, project.Name)))
	fmt.Println(ui.FormatMuted(fmt.Sprintf("Appended %s to the master", ui.FormatBytes(res.AppendedBytes))))
	return nil
}

// skippedMessage explains why an explicitly named file was not ingested
func skippedMessage(path string, extensions []string) string {
	return fmt.Sprintf("Skipped %s: extension is not one of %s (see ingest_extensions)",
		filepath.Base(path), strings.Join(extensions, ", "))
}

// ingestSelector picks explicit paths when given, the fuzzy finder otherwise.
// onSkip is told about explicit paths dropped by the extension filter.
func ingestSelector(args []string, onSkip func(string)) (ports.FileSelector, error) {
	if len(args) > 1 {
		paths := make([]string, 0, len(args)-1)
		for _, p := range args[1:] {
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, err
			}
			paths = append(paths, abs)
		}
		return dialog.StaticSelector{Paths: paths, OnSkip: onSkip}, nil
	}

	dir := ingestDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}
	pattern := ingestPattern
	if pattern == "" {
		pattern = appConfig.IngestPattern
	}
	return dialog.NewFuzzySelector(expandHome(dir), pattern), nil
}
