package dialog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/internal/core/ports"
	"github.com/notecompacter/compacter/pkg/ui"
)

// PromptSaveTarget asks for an export destination on the terminal
type PromptSaveTarget struct {
	// Dir is where relative answers are resolved; empty means the working directory
	Dir    string
	input  io.Reader
	output io.Writer
}

var _ ports.SaveTarget = (*PromptSaveTarget)(nil)

// NewPromptSaveTarget creates a prompt that resolves relative paths against dir
func NewPromptSaveTarget(dir string) *PromptSaveTarget {
	return &PromptSaveTarget{Dir: dir}
}

// SelectSaveTarget runs the prompt until the user confirms or cancels
func (p *PromptSaveTarget) SelectSaveTarget(ctx context.Context, req domain.SaveRequest) (domain.SaveDestination, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.input != nil {
		opts = append(opts, tea.WithInput(p.input))
	}
	if p.output != nil {
		opts = append(opts, tea.WithOutput(p.output))
	}

	final, err := tea.NewProgram(NewSavePromptModel(req), opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return domain.SaveDestination{Canceled: true}, nil
		}
		return domain.SaveDestination{}, fmt.Errorf("save prompt failed: %w", err)
	}

	m, ok := final.(SavePromptModel)
	if !ok {
		return domain.SaveDestination{}, fmt.Errorf("unexpected prompt model %T", final)
	}
	return m.Destination(p.Dir, req.DefaultName), nil
}

// SavePromptModel is a single-line path prompt
type SavePromptModel struct {
	title    string
	input    textinput.Model
	done     bool
	canceled bool
}

// NewSavePromptModel creates the prompt pre-filled with the default name
func NewSavePromptModel(req domain.SaveRequest) SavePromptModel {
	ti := textinput.New()
	ti.Placeholder = req.DefaultName
	ti.SetValue(req.DefaultName)
	ti.CharLimit = 4096
	ti.Width = 60
	ti.Focus()

	return SavePromptModel{title: req.Title, input: ti}
}

func (m SavePromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SavePromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.done = true
			m.canceled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m SavePromptModel) View() string {
	if m.done {
		return ""
	}
	var s strings.Builder
	s.WriteString(ui.StyleHeader.Render(m.title))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString(ui.StyleMuted.Render("enter: save • esc: cancel"))
	s.WriteString("\n")
	return s.String()
}

// Value returns the current answer
func (m SavePromptModel) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// Canceled reports whether the prompt was dismissed
func (m SavePromptModel) Canceled() bool {
	return m.canceled
}

// Destination turns the answer into a save destination. Relative paths
// resolve against dir, "~/" expands to the home directory, and an
// existing directory receives defaultName.
func (m SavePromptModel) Destination(dir, defaultName string) domain.SaveDestination {
	if m.canceled || !m.done {
		return domain.SaveDestination{Canceled: true}
	}
	path := m.Value()
	if path == "" {
		return domain.SaveDestination{Canceled: true}
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	return domain.SaveDestination{Path: resolveSavePath(path, defaultName)}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
