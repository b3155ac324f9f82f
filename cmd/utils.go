package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/pkg/ui"
)

// errCanceled signals that the user dismissed a picker or prompt
var errCanceled = errors.New("operation cancelled")

// GetPreferredEditor returns the editor command from config, env, or default
func GetPreferredEditor() string {
	// 1. Check Config
	if appConfig != nil && strings.TrimSpace(appConfig.Editor) != "" {
		return appConfig.Editor
	}
	// 2. Check Environment
	if env := os.Getenv("EDITOR"); strings.TrimSpace(env) != "" {
		return env
	}
	// 3. Fallback
	return "vi"
}

// editorCommand splits the preferred editor on spaces so editors configured
// with arguments ("code --wait") work, and falls back to vi when it is blank
func editorCommand(path string) *exec.Cmd {
	parts := strings.Fields(GetPreferredEditor())
	if len(parts) == 0 {
		parts = []string{"vi"}
	}
	return exec.Command(parts[0], append(parts[1:], path)...)
}

// runEditor opens path in the preferred editor and waits for it to exit
func runEditor(path string) error {
	c := editorCommand(path)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

// matchProjects narrows projects by query: exact id, then exact name
// (case-insensitive), then name or id substring
func matchProjects(projects []domain.ProjectSummary, query string) []domain.ProjectSummary {
	query = strings.TrimSpace(query)
	if query == "" {
		return projects
	}

	for _, p := range projects {
		if p.ID == query {
			return []domain.ProjectSummary{p}
		}
	}

	lower := strings.ToLower(query)
	var exact, partial []domain.ProjectSummary
	for _, p := range projects {
		name := strings.ToLower(p.Name)
		switch {
		case name == lower:
			exact = append(exact, p)
		case strings.Contains(name, lower), strings.HasPrefix(p.ID, query):
			partial = append(partial, p)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partial
}

// resolveProject picks a project from args[0] or interactively
func resolveProject(ctx context.Context, args []string) (*domain.ProjectSummary, error) {
	projects, err := projectStore.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("no projects yet, create one with 'compacter new <name>'")
	}

	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	candidates := matchProjects(projects, query)

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("no project matching %q", query)
	case 1:
		return &candidates[0], nil
	}

	idx, err := fuzzyfinder.Find(
		candidates,
		func(i int) string {
			return candidates[i].Name
		},
		fuzzyfinder.WithContext(ctx),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			p := candidates[i]
			preview := fmt.Sprintf("Name: %s\nID: %s", p.Name, p.ID)
			if doc, err := projectStore.ReadMaster(ctx, p.ID); err == nil {
				preview += fmt.Sprintf("\nMaster: %d bytes\n\n%s", len(doc.Text), headLines(doc.Text, h-4))
			}
			return preview
		}),
	)
	if err != nil {
		// User cancelled (Ctrl+C or ESC)
		return nil, errCanceled
	}
	return &candidates[idx], nil
}

// headLines returns at most n leading lines of text
func headLines(text string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.SplitN(text, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

// handleCanceled turns a dismissed picker into a quiet exit
func handleCanceled(err error) error {
	if errors.Is(err, errCanceled) {
		fmt.Println(ui.FormatInfo("Operation cancelled."))
		return nil
	}
	return err
}

// confirm asks a yes/no question on stdin
func confirm(in io.Reader, question string) bool {
	fmt.Print(ui.StyleWarning.Render(question + " (y/N): "))
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// printJSON writes v as indented JSON to stdout
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
