package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/notecompacter/compacter/internal/adapters/clipboard"
	"github.com/notecompacter/compacter/internal/adapters/dialog"
	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/internal/core/ports"
	"github.com/notecompacter/compacter/internal/core/services"
	"github.com/notecompacter/compacter/pkg/ui"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Launch interactive dashboard (alias: dash)",
	Long: `Launch a full-screen interactive dashboard for managing projects.

The dashboard provides:
- Project list sorted by name
- Master view with highlighted component banners
- Component archive browser
- Quick actions: create, ingest, rebuild, export, copy, delete

Edits made with 'e' stay in the session until saved with 's'. Unsaved
edits are saved automatically before switching to another project,
ingesting or exporting, and when the dashboard exits.

Keyboard Shortcuts:
  Navigation:
    ↑/k         Move up
    ↓/j         Move down
    g           Jump to top
    G           Jump to bottom
    Enter       Open project / component
    Tab         Switch master and components
    Esc         Back

  Actions:
    n           New project
    i           Ingest files
    e           Edit master
    s           Save master
    r           Rebuild master from components
    x           Export master
    c           Copy master to clipboard
    d           Delete project

  General:
    ?           Show help
    q           Quit dashboard
    Ctrl+C      Force quit`,
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	m := newDashboardModel(ctx, dashboardOptions{
		store:     projectStore,
		clipboard: clipboard.System{},
		selector: func() ports.FileSelector {
			return dialog.NewFuzzySelector(wd, appConfig.IngestPattern)
		},
		exportDir:  wd,
		exportName: appConfig.ExportDefaultName,
	})

	// Run the TUI
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}

	// Edits still pending when the user quit
	if fm, ok := final.(dashboardModel); ok && fm.dirty && fm.current != nil {
		if err := projectStore.SaveMaster(ctx, fm.current.ID, fm.draft); err != nil {
			fmt.Println(ui.FormatError("Failed to save unsaved edits of " + fm.current.Name))
			return err
		}
		fmt.Println(ui.FormatSuccess("Saved unsaved edits of " + fm.current.Name))
	}

	return nil
}

// Dashboard view modes
type viewMode int

const (
	modeProjects viewMode = iota
	modeMaster
	modeComponents
	modeComponent
	modeNewProject
	modeExport
	modeConfirm
	modeHelp
)

// UI state values persisted per project
const (
	uiViewKey        = "view"
	uiViewMaster     = "master"
	uiViewComponents = "components"
)

type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmDelete
	confirmRebuild
)

// dashboardOptions carries the collaborators of the dashboard
type dashboardOptions struct {
	store      *services.ProjectStore
	clipboard  ports.Clipboard
	selector   func() ports.FileSelector
	exportDir  string
	exportName string
}

// Dashboard model
type dashboardModel struct {
	ctx  context.Context
	opts dashboardOptions

	projects []domain.ProjectSummary
	cursor   int // Selected project index
	offset   int // Scroll offset of the project list

	// Session state of the open project
	current    *domain.ProjectSummary
	draft      string // Master text as displayed, possibly unsaved
	dirty      bool
	components []domain.ComponentSummary
	compCursor int
	compOffset int
	component  *domain.Component

	mode     viewMode
	prevMode viewMode // Mode to return to from dialogs
	pending  confirmAction
	target   *domain.ProjectSummary // Project a dialog acts on

	input    textinput.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	width    int
	height   int
	ready    bool

	message       string // Status message
	messageStyle  lipgloss.Style
	messageExpiry time.Time
}

// Key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Open      key.Binding
	Back      key.Binding
	Switch    key.Binding
	New       key.Binding
	Ingest    key.Binding
	Edit      key.Binding
	Save      key.Binding
	Rebuild   key.Binding
	Export    key.Binding
	Copy      key.Binding
	Delete    key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Switch, k.Ingest, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Open, k.Back, k.Switch},
		{k.New, k.Ingest, k.Edit, k.Save, k.Rebuild},
		{k.Export, k.Copy, k.Delete, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "bottom"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter", "o"),
		key.WithHelp("enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Switch: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "master/components"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new project"),
	),
	Ingest: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "ingest files"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit master"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save master"),
	),
	Rebuild: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rebuild"),
	),
	Export: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "export"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete project"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "force quit"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

func newDashboardModel(ctx context.Context, opts dashboardOptions) dashboardModel {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 60

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle().Foreground(ui.ColorDefault)

	return dashboardModel{
		ctx:      ctx,
		opts:     opts,
		mode:     modeProjects,
		input:    ti,
		viewport: vp,
		help:     help.New(),
		keys:     keys,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.loadProjects("")
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(msg.Height-9, 5)
		m.adjustProjectOffset()
		m.adjustComponentOffset()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}

		// Handle mode-specific key bindings
		switch m.mode {
		case modeHelp:
			return m.updateHelp(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeNewProject, modeExport:
			return m.updateInput(msg)
		case modeMaster:
			return m.updateMaster(msg)
		case modeComponents:
			return m.updateComponents(msg)
		case modeComponent:
			return m.updateComponent(msg)
		default:
			return m.updateProjects(msg)
		}

	case statusMsg:
		m.setStatus(msg.message, msg.style)
		return m, nil

	case clearMessageMsg:
		if time.Now().After(m.messageExpiry) {
			m.message = ""
		}
		return m, nil

	case projectsLoadedMsg:
		if msg.err != nil {
			m.setStatus("Failed to load projects: "+msg.err.Error(), ui.StyleError)
			return m, nil
		}
		m.projects = msg.projects
		if msg.selectID != "" {
			for i, p := range m.projects {
				if p.ID == msg.selectID {
					m.cursor = i
					break
				}
			}
		}
		m.clampProjectCursor()
		return m, nil

	case projectOpenedMsg:
		return m.handleProjectOpened(msg)

	case refreshMsg:
		if msg.err != nil {
			m.setStatus("Failed to reload project: "+msg.err.Error(), ui.StyleError)
			return m, nil
		}
		if m.current == nil || m.current.ID != msg.id {
			return m, nil
		}
		m.draft = msg.text
		m.dirty = false
		m.components = msg.components
		m.clampComponentCursor()
		m.refreshMasterView()
		return m, nil

	case componentLoadedMsg:
		if msg.err != nil {
			m.setStatus("Failed to read component: "+msg.err.Error(), ui.StyleError)
			return m, nil
		}
		m.component = msg.component
		m.mode = modeComponent
		m.viewport.SetContent(msg.component.Text)
		m.viewport.GotoTop()
		return m, nil

	case editorDoneMsg:
		if msg.err != nil {
			m.setStatus("Editor error: "+msg.err.Error(), ui.StyleError)
			return m, nil
		}
		if m.current == nil || m.current.ID != msg.id {
			return m, nil
		}
		if msg.text == m.draft {
			m.setStatus("No changes", ui.StyleMuted)
			return m, nil
		}
		m.draft = msg.text
		m.dirty = true
		m.refreshMasterView()
		m.setStatus("Master edited, press s to save", ui.StyleWarning)
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.setStatus("Failed to save master: "+msg.err.Error(), ui.StyleError)
			return m, nil
		}
		if m.current != nil && m.current.ID == msg.id && m.draft == msg.text {
			m.dirty = false
		}
		m.setStatus(fmt.Sprintf("%s Master saved (%s)", ui.IconSuccess, ui.FormatBytes(len(msg.text))), ui.StyleSuccess)
		return m, nil

	case ingestDoneMsg:
		return m.handleIngestDone(msg)

	case rebuildDoneMsg:
		if msg.err != nil {
			m.setStatus("Rebuild failed: "+msg.err.Error(), ui.StyleError)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("%s Rebuilt master from %d components (%s)", ui.IconRebuild, msg.result.Built, ui.FormatBytes(msg.result.Bytes)), ui.StyleSuccess)
		return m, m.refresh(msg.id)

	case exportDoneMsg:
		if msg.err != nil {
			m.setStatus("Export failed: "+msg.err.Error(), ui.StyleError)
			return m, nil
		}
		if msg.flushed {
			m.markFlushed(msg.id)
		}
		if !msg.result.Saved {
			m.setStatus("Export cancelled", ui.StyleMuted)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("%s Exported to %s", ui.IconSuccess, msg.result.Path), ui.StyleSuccess)
		return m, nil

	case copyDoneMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), ui.StyleError)
			return m, nil
		}
		if msg.flushed {
			m.markFlushed(msg.id)
		}
		m.setStatus(fmt.Sprintf("%s Copied master to clipboard (%s)", ui.IconSuccess, ui.FormatBytes(msg.bytes)), ui.StyleSuccess)
		return m, nil

	case projectCreatedMsg:
		if msg.err != nil {
			m.setStatus("Failed to create project: "+msg.err.Error(), ui.StyleError)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("%s Created project %s", ui.IconSuccess, msg.id), ui.StyleSuccess)
		return m, m.loadProjects(msg.id)

	case projectDeletedMsg:
		if msg.err != nil {
			m.setStatus("Failed to delete: "+msg.err.Error(), ui.StyleError)
			return m, nil
		}
		if m.current != nil && m.current.ID == msg.id {
			m.closeProject()
			m.mode = modeProjects
		}
		m.setStatus(fmt.Sprintf("%s Deleted %s", ui.IconSuccess, msg.name), ui.StyleSuccess)
		return m, m.loadProjects("")
	}

	return m, nil
}

func (m dashboardModel) updateProjects(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.prevMode = m.mode
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.adjustProjectOffset()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.projects)-1 {
			m.cursor++
			m.adjustProjectOffset()
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.adjustProjectOffset()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(len(m.projects)-1, 0)
		m.adjustProjectOffset()
		return m, nil

	case key.Matches(msg, m.keys.New):
		return m.startInput(modeNewProject, nil, "Project name", "")
	}

	p := m.selectedProject()
	if p == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		if m.current != nil && m.current.ID == p.ID {
			m.mode = modeMaster
			m.refreshMasterView()
			return m, m.saveView(p.ID, uiViewMaster)
		}
		return m, m.openProject(*p)

	case key.Matches(msg, m.keys.Ingest):
		return m, m.ingest(*p)

	case key.Matches(msg, m.keys.Rebuild):
		return m.startConfirm(confirmRebuild, p)

	case key.Matches(msg, m.keys.Delete):
		return m.startConfirm(confirmDelete, p)

	case key.Matches(msg, m.keys.Export):
		return m.startInput(modeExport, p, "Export to", filepath.Join(m.opts.exportDir, m.opts.exportName))

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyMaster(*p)
	}

	return m, nil
}

func (m dashboardModel) updateMaster(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.prevMode = m.mode
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.mode = modeProjects
		return m, nil

	case key.Matches(msg, m.keys.Switch):
		m.mode = modeComponents
		return m, m.saveView(m.current.ID, uiViewComponents)

	case key.Matches(msg, m.keys.Edit):
		return m, m.editDraft()

	case key.Matches(msg, m.keys.Save):
		if !m.dirty {
			m.setStatus("Nothing to save", ui.StyleMuted)
			return m, nil
		}
		return m, m.saveDraft()

	case key.Matches(msg, m.keys.Ingest):
		return m, m.ingest(*m.current)

	case key.Matches(msg, m.keys.Rebuild):
		return m.startConfirm(confirmRebuild, m.current)

	case key.Matches(msg, m.keys.Delete):
		return m.startConfirm(confirmDelete, m.current)

	case key.Matches(msg, m.keys.Export):
		return m.startInput(modeExport, m.current, "Export to", filepath.Join(m.opts.exportDir, m.opts.exportName))

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyMaster(*m.current)
	}

	// Scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m dashboardModel) updateComponents(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.prevMode = m.mode
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.mode = modeProjects
		return m, nil

	case key.Matches(msg, m.keys.Switch):
		m.mode = modeMaster
		m.refreshMasterView()
		return m, m.saveView(m.current.ID, uiViewMaster)

	case key.Matches(msg, m.keys.Up):
		if m.compCursor > 0 {
			m.compCursor--
			m.adjustComponentOffset()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.compCursor < len(m.components)-1 {
			m.compCursor++
			m.adjustComponentOffset()
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.compCursor = 0
		m.adjustComponentOffset()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.compCursor = max(len(m.components)-1, 0)
		m.adjustComponentOffset()
		return m, nil

	case key.Matches(msg, m.keys.Open):
		if len(m.components) == 0 {
			return m, nil
		}
		return m, m.loadComponent(m.current.ID, m.components[m.compCursor].InternalName)

	case key.Matches(msg, m.keys.Ingest):
		return m, m.ingest(*m.current)

	case key.Matches(msg, m.keys.Rebuild):
		return m.startConfirm(confirmRebuild, m.current)
	}

	return m, nil
}

func (m dashboardModel) updateComponent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.component = nil
		m.mode = modeComponents
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m dashboardModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
		m.mode = m.prevMode
	}
	return m, nil
}

func (m dashboardModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		action, target := m.pending, m.target
		m.mode = m.prevMode
		m.pending = confirmNone
		m.target = nil
		if target == nil {
			return m, nil
		}
		switch action {
		case confirmDelete:
			return m, m.deleteProject(*target)
		case confirmRebuild:
			return m, m.rebuild(*target)
		}
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.mode = m.prevMode
		m.pending = confirmNone
		m.target = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.mode == modeExport {
			m.setStatus("Export cancelled", ui.StyleMuted)
		}
		m.input.Blur()
		m.mode = m.prevMode
		m.target = nil
		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode, target := m.mode, m.target
		m.input.Blur()
		m.mode = m.prevMode
		m.target = nil

		if mode == modeNewProject {
			return m, m.createProject(value)
		}
		if target == nil {
			return m, nil
		}
		return m, m.export(*target, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m dashboardModel) startConfirm(action confirmAction, target *domain.ProjectSummary) (tea.Model, tea.Cmd) {
	p := *target
	m.prevMode = m.mode
	m.mode = modeConfirm
	m.pending = action
	m.target = &p
	return m, nil
}

func (m dashboardModel) startInput(mode viewMode, target *domain.ProjectSummary, prompt, value string) (tea.Model, tea.Cmd) {
	if target != nil {
		p := *target
		m.target = &p
	}
	m.prevMode = m.mode
	m.mode = mode
	m.input.Prompt = prompt + ": "
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m dashboardModel) handleProjectOpened(msg projectOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus(msg.err.Error(), ui.StyleError)
		return m, nil
	}

	p := msg.project
	m.current = &p
	m.draft = msg.text
	m.dirty = false
	m.components = msg.components
	m.compCursor = 0
	m.compOffset = 0
	m.component = nil

	if msg.view == uiViewComponents {
		m.mode = modeComponents
	} else {
		m.mode = modeMaster
	}
	m.refreshMasterView()

	if msg.flushed != "" {
		m.setStatus("Saved unsaved edits of "+msg.flushed, ui.StyleSuccess)
	}
	return m, nil
}

func (m dashboardModel) handleIngestDone(msg ingestDoneMsg) (tea.Model, tea.Cmd) {
	if msg.flushed {
		m.markFlushed(msg.id)
	}

	switch {
	case errors.Is(msg.err, dialog.ErrNoCandidates):
		m.setStatus(msg.err.Error(), ui.StyleWarning)
		return m, nil

	case msg.err != nil:
		text := "Ingest stopped: " + msg.err.Error()
		if msg.result != nil && msg.result.Copied > 0 {
			text += fmt.Sprintf(" (%d archived, rebuild to refresh the master)", msg.result.Copied)
		}
		m.setStatus(text, ui.StyleError)
		return m, m.refresh(msg.id)

	case msg.result == nil || msg.result.Copied == 0:
		m.setStatus("Nothing ingested", ui.StyleMuted)
		return m, nil
	}

	m.setStatus(fmt.Sprintf("%s Ingested %d files (%s appended)", ui.IconArchive, msg.result.Copied, ui.FormatBytes(msg.result.AppendedBytes)), ui.StyleSuccess)
	return m, m.refresh(msg.id)
}

func (m *dashboardModel) setStatus(message string, style lipgloss.Style) {
	m.message = message
	m.messageStyle = style
	m.messageExpiry = time.Now().Add(4 * time.Second)
}

// markFlushed clears the dirty flag after a pending draft was written
func (m *dashboardModel) markFlushed(id string) {
	if m.current != nil && m.current.ID == id {
		m.dirty = false
	}
}

func (m *dashboardModel) closeProject() {
	m.current = nil
	m.draft = ""
	m.dirty = false
	m.components = nil
	m.component = nil
	m.compCursor = 0
	m.compOffset = 0
}

func (m *dashboardModel) refreshMasterView() {
	if m.draft == "" {
		m.viewport.SetContent(ui.StyleMuted.Render("Master is empty. Press i to ingest files."))
	} else {
		m.viewport.SetContent(ui.HighlightMaster(m.draft))
	}
}

func (m dashboardModel) selectedProject() *domain.ProjectSummary {
	if m.cursor < 0 || m.cursor >= len(m.projects) {
		return nil
	}
	return &m.projects[m.cursor]
}

// pendingDraft returns the unsaved master of id, if any
func (m dashboardModel) pendingDraft(id string) *draftFlush {
	if !m.dirty || m.current == nil || m.current.ID != id {
		return nil
	}
	return &draftFlush{id: id, name: m.current.Name, text: m.draft}
}

func (m dashboardModel) listHeight() int {
	return max(m.height-9, 3)
}

func (m *dashboardModel) clampProjectCursor() {
	if m.cursor >= len(m.projects) {
		m.cursor = len(m.projects) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustProjectOffset()
}

func (m *dashboardModel) clampComponentCursor() {
	if m.compCursor >= len(m.components) {
		m.compCursor = len(m.components) - 1
	}
	if m.compCursor < 0 {
		m.compCursor = 0
	}
	m.adjustComponentOffset()
}

func (m *dashboardModel) adjustProjectOffset() {
	m.offset = scrollOffset(m.cursor, m.offset, m.listHeight())
}

func (m *dashboardModel) adjustComponentOffset() {
	m.compOffset = scrollOffset(m.compCursor, m.compOffset, m.listHeight())
}

func scrollOffset(cursor, offset, height int) int {
	if cursor >= offset+height {
		return cursor - height + 1
	}
	if cursor < offset {
		return cursor
	}
	return offset
}

// Views

func (m dashboardModel) View() string {
	if !m.ready {
		return "\n  Loading projects..."
	}

	var body string
	switch m.mode {
	case modeHelp:
		return m.viewHelp()
	case modeConfirm:
		body = m.viewConfirm()
	case modeNewProject, modeExport:
		body = m.viewInput()
	case modeMaster:
		body = m.viewMaster()
	case modeComponents:
		body = m.viewComponents()
	case modeComponent:
		body = m.viewComponent()
	default:
		body = m.viewProjects()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m dashboardModel) renderHeader() string {
	title := ui.StyleTitle.Render(ui.IconProject + " Compacter")

	var info string
	switch {
	case m.current != nil && m.mode != modeProjects:
		info = m.current.Name
		if m.dirty {
			info += ui.StyleWarning.Render(" [modified]")
		}
	default:
		info = fmt.Sprintf("%d projects", len(m.projects))
	}
	info = ui.StyleMuted.Render(info)

	spacer := max(m.width-lipgloss.Width(title)-lipgloss.Width(info)-2, 1)
	return lipgloss.NewStyle().Padding(0, 1).Render(title + strings.Repeat(" ", spacer) + info)
}

func (m dashboardModel) viewProjects() string {
	var s strings.Builder

	if len(m.projects) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Padding(2, 2)
		return emptyStyle.Render("No projects yet. Press n to create one.")
	}

	end := min(m.offset+m.listHeight(), len(m.projects))
	for i := m.offset; i < end; i++ {
		s.WriteString(m.renderProjectItem(m.projects[i], i == m.cursor))
	}
	return s.String()
}

func (m dashboardModel) renderProjectItem(p domain.ProjectSummary, selected bool) string {
	cursor := "  "
	nameStyle := lipgloss.NewStyle().Foreground(ui.ColorDefault)
	if selected {
		cursor = ui.StylePrimary.Render("▶ ")
		nameStyle = ui.StylePrimary.Bold(true)
	}

	marker := " "
	if m.current != nil && m.current.ID == p.ID {
		marker = ui.StyleAccent.Render("•")
		if m.dirty {
			marker = ui.StyleWarning.Render("●")
		}
	}

	maxName := max(m.width-50, 20)
	line := fmt.Sprintf("%s%s %s  %s",
		cursor,
		marker,
		nameStyle.Render(truncateText(p.Name, maxName)),
		ui.StyleMuted.Render(p.ID),
	)
	return padRight(line, m.width) + "\n"
}

func (m dashboardModel) viewMaster() string {
	hint := ui.StyleMuted.Render(fmt.Sprintf("%s Master · %s · %d components · %d%%",
		ui.IconMaster,
		ui.FormatBytes(len(m.draft)),
		len(m.components),
		int(m.viewport.ScrollPercent()*100),
	))
	return lipgloss.JoinVertical(lipgloss.Left, hint, m.viewport.View())
}

func (m dashboardModel) viewComponents() string {
	var s strings.Builder
	s.WriteString(ui.StyleMuted.Render(fmt.Sprintf("%s %d components, newest first", ui.IconArchive, len(m.components))))
	s.WriteString("\n")

	if len(m.components) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Padding(1, 2)
		s.WriteString(emptyStyle.Render("No components. Press i to ingest files."))
		return s.String()
	}

	end := min(m.compOffset+m.listHeight(), len(m.components))
	for i := m.compOffset; i < end; i++ {
		s.WriteString(m.renderComponentItem(m.components[i], i == m.compCursor))
	}
	return s.String()
}

func (m dashboardModel) renderComponentItem(c domain.ComponentSummary, selected bool) string {
	cursor := "  "
	nameStyle := lipgloss.NewStyle().Foreground(ui.ColorDefault)
	if selected {
		cursor = ui.StylePrimary.Render("▶ ")
		nameStyle = ui.StylePrimary.Bold(true)
	}

	maxName := max(m.width-70, 20)
	line := fmt.Sprintf("%s%s  %s  %s",
		cursor,
		nameStyle.Render(padRight(truncateText(c.OriginalName, maxName), maxName)),
		ui.StyleInfo.Render(c.DisplayAddedAt()),
		ui.StyleMuted.Render(c.InternalName),
	)
	return padRight(line, m.width) + "\n"
}

func (m dashboardModel) viewComponent() string {
	if m.component == nil {
		return ""
	}
	c := m.component
	header := lipgloss.JoinVertical(lipgloss.Left,
		ui.StylePrimary.Bold(true).Render(c.OriginalName),
		ui.StyleMuted.Render(fmt.Sprintf("%s · added %s · %s", c.InternalName, c.DisplayAddedAt(), ui.FormatBytes(len(c.Text)))),
	)

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMuted)

	return lipgloss.JoinVertical(lipgloss.Left, header, borderStyle.Render(m.viewport.View()))
}

func (m dashboardModel) viewInput() string {
	title := "New project"
	note := "Leave blank for a generated name."
	if m.mode == modeExport && m.target != nil {
		title = "Export master of " + m.target.Name
		note = "A directory receives " + m.opts.exportName + "."
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			ui.StyleTitle.Render(title),
			"",
			m.input.View(),
			"",
			ui.StyleMuted.Render(note+"  [enter] confirm  [esc] cancel"),
		))

	return lipgloss.Place(m.width, m.listHeight()+2, lipgloss.Center, lipgloss.Center, box)
}

func (m dashboardModel) viewConfirm() string {
	if m.target == nil {
		return ""
	}

	var question, detail string
	switch m.pending {
	case confirmDelete:
		question = "Delete project " + ui.StyleBold.Render(m.target.Name) + "?"
		detail = "The master and every archived component are removed."
	case confirmRebuild:
		question = "Rebuild master of " + ui.StyleBold.Render(m.target.Name) + "?"
		detail = "The master is replaced by all components, oldest first."
		if m.pendingDraft(m.target.ID) != nil {
			detail += "\nUnsaved edits are discarded."
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorWarning).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			ui.StyleWarning.Render(ui.IconWarning+" "+question),
			"",
			ui.StyleMuted.Render(detail),
			"",
			ui.StyleMuted.Render("[y] confirm  [n/esc] cancel"),
		))

	return lipgloss.Place(m.width, m.listHeight()+2, lipgloss.Center, lipgloss.Center, box)
}

func (m dashboardModel) viewHelp() string {
	helpStyle := lipgloss.NewStyle().Padding(1, 2)
	return helpStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		ui.StyleTitle.Render("Keyboard Shortcuts"),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		ui.StyleMuted.Render("Press ? or esc to return"),
	))
}

func (m dashboardModel) renderFooter() string {
	var statusLine string
	if m.message != "" && time.Now().Before(m.messageExpiry) {
		statusLine = m.messageStyle.Render(m.message)
	} else {
		statusLine = ui.StyleMuted.Render("Ready")
	}

	var hint string
	switch m.mode {
	case modeMaster:
		hint = "[↑↓/PgUp/PgDn] Scroll  [e] Edit  [s] Save  [tab] Components  [i] Ingest  [r] Rebuild  [x] Export  [esc] Back"
	case modeComponents:
		hint = "[↑↓/jk] Navigate  [enter] View  [tab] Master  [i] Ingest  [r] Rebuild  [esc] Back"
	case modeComponent:
		hint = "[↑↓/PgUp/PgDn] Scroll  [esc] Back"
	default:
		hint = "[↑↓/jk] Navigate  [enter] Open  [n] New  [i] Ingest  [d] Delete  [?] Help  [q] Quit"
	}

	footerStyle := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1)

	return footerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, statusLine, ui.StyleMuted.Render(hint)))
}

func padRight(s string, width int) string {
	realLen := lipgloss.Width(s)
	if realLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-realLen)
}

func truncateText(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return string(r[:limit])
	}
	return string(r[:limit-1]) + "…"
}

// Commands

type statusMsg struct {
	message string
	style   lipgloss.Style
}

type clearMessageMsg struct{}

type projectsLoadedMsg struct {
	projects []domain.ProjectSummary
	selectID string
	err      error
}

type projectOpenedMsg struct {
	project    domain.ProjectSummary
	text       string
	components []domain.ComponentSummary
	view       string
	flushed    string // Name of the project whose edits were saved first
	err        error
}

type refreshMsg struct {
	id         string
	text       string
	components []domain.ComponentSummary
	err        error
}

type componentLoadedMsg struct {
	component *domain.Component
	err       error
}

type editorDoneMsg struct {
	id   string
	text string
	err  error
}

type savedMsg struct {
	id   string
	text string
	err  error
}

type ingestDoneMsg struct {
	id      string
	result  *domain.IngestResult
	flushed bool
	err     error
}

type rebuildDoneMsg struct {
	id     string
	result *domain.RebuildResult
	err    error
}

type exportDoneMsg struct {
	id      string
	result  *domain.ExportResult
	flushed bool
	err     error
}

type copyDoneMsg struct {
	id      string
	bytes   int
	flushed bool
	err     error
}

type projectCreatedMsg struct {
	id  string
	err error
}

type projectDeletedMsg struct {
	id   string
	name string
	err  error
}

// draftFlush is an unsaved master that must reach disk before another
// store operation reads the master
type draftFlush struct {
	id   string
	name string
	text string
}

func (f *draftFlush) apply(ctx context.Context, store *services.ProjectStore) error {
	if f == nil {
		return nil
	}
	if err := store.SaveMaster(ctx, f.id, f.text); err != nil {
		return fmt.Errorf("failed to save unsaved edits of %s: %w", f.name, err)
	}
	return nil
}

func (m dashboardModel) loadProjects(selectID string) tea.Cmd {
	store, ctx := m.opts.store, m.ctx
	return func() tea.Msg {
		projects, err := store.ListProjects(ctx)
		return projectsLoadedMsg{projects: projects, selectID: selectID, err: err}
	}
}

// openProject switches the session to p, saving the previous project's
// unsaved edits first
func (m dashboardModel) openProject(p domain.ProjectSummary) tea.Cmd {
	store, ctx := m.opts.store, m.ctx
	var flush *draftFlush
	if m.current != nil {
		flush = m.pendingDraft(m.current.ID)
	}

	return func() tea.Msg {
		msg := projectOpenedMsg{project: p}
		if err := flush.apply(ctx, store); err != nil {
			msg.err = err
			return msg
		}
		if flush != nil {
			msg.flushed = flush.name
		}

		doc, err := store.ReadMaster(ctx, p.ID)
		if err != nil {
			msg.err = fmt.Errorf("failed to open %s: %w", p.Name, err)
			return msg
		}
		components, err := store.ListComponents(ctx, p.ID)
		if err != nil {
			msg.err = fmt.Errorf("failed to list components of %s: %w", p.Name, err)
			return msg
		}
		state, _ := store.ReadUIState(ctx, p.ID)

		msg.project.Name = doc.Name
		msg.text = doc.Text
		msg.components = components
		if view, ok := state[uiViewKey].(string); ok {
			msg.view = view
		}
		return msg
	}
}

func (m dashboardModel) refresh(id string) tea.Cmd {
	store, ctx := m.opts.store, m.ctx
	return func() tea.Msg {
		doc, err := store.ReadMaster(ctx, id)
		if err != nil {
			return refreshMsg{id: id, err: err}
		}
		components, err := store.ListComponents(ctx, id)
		return refreshMsg{id: id, text: doc.Text, components: components, err: err}
	}
}

func (m dashboardModel) saveView(id, view string) tea.Cmd {
	store, ctx := m.opts.store, m.ctx
	return func() tea.Msg {
		state, _ := store.ReadUIState(ctx, id)
		if state == nil {
			state = map[string]any{}
		}
		state[uiViewKey] = view
		if err := store.SaveUIState(ctx, id, state); err != nil {
			return statusMsg{message: "Failed to remember view: " + err.Error(), style: ui.StyleWarning}
		}
		return nil
	}
}

func (m dashboardModel) loadComponent(id, internalName string) tea.Cmd {
	store, ctx := m.opts.store, m.ctx
	return func() tea.Msg {
		c, err := store.ReadComponent(ctx, id, internalName)
		return componentLoadedMsg{component: c, err: err}
	}
}

func (m dashboardModel) saveDraft() tea.Cmd {
	store, ctx := m.opts.store, m.ctx
	id, text := m.current.ID, m.draft
	return func() tea.Msg {
		return savedMsg{id: id, text: text, err: store.SaveMaster(ctx, id, text)}
	}
}

// editDraft opens the session's master text in the preferred editor. The
// result replaces the draft and marks it dirty; nothing is saved yet.
func (m dashboardModel) editDraft() tea.Cmd {
	id := m.current.ID

	tmp, err := os.CreateTemp("", "compacter-master-*.txt")
	if err != nil {
		return statusCmd("Failed to create temp file: "+err.Error(), ui.StyleError)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(m.draft); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return statusCmd("Failed to write temp file: "+err.Error(), ui.StyleError)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return statusCmd("Failed to write temp file: "+err.Error(), ui.StyleError)
	}

	c := editorCommand(tmpPath)

	return tea.ExecProcess(c, func(err error) tea.Msg {
		defer os.Remove(tmpPath)
		if err != nil {
			return editorDoneMsg{id: id, err: err}
		}
		data, err := os.ReadFile(tmpPath)
		return editorDoneMsg{id: id, text: string(data), err: err}
	})
}

// ingest suspends the dashboard while the file picker owns the terminal
func (m dashboardModel) ingest(p domain.ProjectSummary) tea.Cmd {
	if m.opts.selector == nil {
		return statusCmd("No file picker available", ui.StyleError)
	}
	run := &ingestExec{
		ctx:      m.ctx,
		store:    m.opts.store,
		id:       p.ID,
		selector: m.opts.selector(),
		flush:    m.pendingDraft(p.ID),
	}
	return tea.Exec(run, func(error) tea.Msg {
		return run.done()
	})
}

// ingestExec runs an ingestion as a tea.ExecCommand so an interactive
// selector gets the real terminal
type ingestExec struct {
	ctx      context.Context
	store    *services.ProjectStore
	id       string
	selector ports.FileSelector
	flush    *draftFlush

	result  *domain.IngestResult
	flushed bool
	err     error
}

func (e *ingestExec) Run() error {
	if err := e.flush.apply(e.ctx, e.store); err != nil {
		e.err = err
		return err
	}
	e.flushed = e.flush != nil
	e.result, e.err = e.store.IngestFiles(e.ctx, e.id, e.selector)
	return e.err
}

func (e *ingestExec) SetStdin(io.Reader)  {}
func (e *ingestExec) SetStdout(io.Writer) {}
func (e *ingestExec) SetStderr(io.Writer) {}

func (e *ingestExec) done() ingestDoneMsg {
	return ingestDoneMsg{id: e.id, result: e.result, flushed: e.flushed, err: e.err}
}

func (m dashboardModel) rebuild(p domain.ProjectSummary) tea.Cmd {
	store, ctx := m.opts.store, m.ctx
	return func() tea.Msg {
		res, err := store.RebuildMaster(ctx, p.ID)
		return rebuildDoneMsg{id: p.ID, result: res, err: err}
	}
}

func (m dashboardModel) export(p domain.ProjectSummary, path string) tea.Cmd {
	store, ctx := m.opts.store, m.ctx
	flush := m.pendingDraft(p.ID)
	target := dialog.StaticSaveTarget{Path: expandHome(path)}
	return func() tea.Msg {
		if err := flush.apply(ctx, store); err != nil {
			return exportDoneMsg{id: p.ID, err: err}
		}
		res, err := store.ExportMaster(ctx, p.ID, target)
		return exportDoneMsg{id: p.ID, result: res, flushed: flush != nil, err: err}
	}
}

func (m dashboardModel) copyMaster(p domain.ProjectSummary) tea.Cmd {
	store, ctx, clip := m.opts.store, m.ctx, m.opts.clipboard
	flush := m.pendingDraft(p.ID)
	return func() tea.Msg {
		if err := flush.apply(ctx, store); err != nil {
			return copyDoneMsg{id: p.ID, err: err}
		}
		n, err := store.CopyMaster(ctx, p.ID, clip)
		return copyDoneMsg{id: p.ID, bytes: n, flushed: flush != nil, err: err}
	}
}

func (m dashboardModel) createProject(name string) tea.Cmd {
	store, ctx := m.opts.store, m.ctx
	return func() tea.Msg {
		res, err := store.CreateProject(ctx, name)
		if err != nil {
			return projectCreatedMsg{err: err}
		}
		return projectCreatedMsg{id: res.ID}
	}
}

func (m dashboardModel) deleteProject(p domain.ProjectSummary) tea.Cmd {
	store, ctx := m.opts.store, m.ctx
	return func() tea.Msg {
		return projectDeletedMsg{id: p.ID, name: p.Name, err: store.DeleteProject(ctx, p.ID)}
	}
}

func statusCmd(message string, style lipgloss.Style) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{message: message, style: style}
	}
}
