package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/notecompacter/compacter/internal/adapters/dialog"
	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/internal/core/ports"
	"github.com/notecompacter/compacter/internal/core/ports/mocks"
	"github.com/notecompacter/compacter/internal/core/services"
)

type dashboardFixture struct {
	store    *services.ProjectStore
	repo     *mocks.MockRepository
	files    *mocks.MockFiles
	clip     *mocks.MockClipboard
	selector *mocks.MockFileSelector
	model    dashboardModel
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()

	repo := mocks.NewMockRepository()
	files := mocks.NewMockFiles()
	ids := 0
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := services.NewProjectStore(repo, files,
		services.WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("p%d", ids)
		}),
		services.WithClock(func() time.Time {
			now = now.Add(time.Second)
			return now
		}),
	)

	f := &dashboardFixture{
		store:    store,
		repo:     repo,
		files:    files,
		clip:     &mocks.MockClipboard{},
		selector: &mocks.MockFileSelector{},
	}
	f.model = newDashboardModel(context.Background(), dashboardOptions{
		store:      store,
		clipboard:  f.clip,
		selector:   func() ports.FileSelector { return f.selector },
		exportDir:  t.TempDir(),
		exportName: "master.txt",
	})
	return f
}

// createProjects adds projects through the store and loads them into the model
func (f *dashboardFixture) createProjects(t *testing.T, names ...string) []string {
	t.Helper()
	var created []string
	for _, name := range names {
		res, err := f.store.CreateProject(context.Background(), name)
		if err != nil {
			t.Fatalf("CreateProject(%q) failed: %v", name, err)
		}
		created = append(created, res.ID)
	}
	f.model = run(t, f.model, f.model.loadProjects(""))
	return created
}

func update(t *testing.T, m dashboardModel, msg tea.Msg) (dashboardModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	dm, ok := updated.(dashboardModel)
	if !ok {
		t.Fatalf("Update returned %T, want dashboardModel", updated)
	}
	return dm, cmd
}

// run executes a store command and feeds its message back into the model
func run(t *testing.T, m dashboardModel, cmd tea.Cmd) dashboardModel {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	msg := cmd()
	if msg == nil {
		return m
	}
	m, _ = update(t, m, msg)
	return m
}

func press(t *testing.T, m dashboardModel, k string) (dashboardModel, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	return update(t, m, msg)
}

// open selects the project at index i and opens it
func (f *dashboardFixture) open(t *testing.T, i int) {
	t.Helper()
	f.model.cursor = i
	m, cmd := press(t, f.model, "enter")
	f.model = run(t, m, cmd)
}

func TestDashboardModelInitialization(t *testing.T) {
	f := newDashboardFixture(t)
	m := f.model

	if m.mode != modeProjects {
		t.Errorf("Expected mode to be modeProjects, got %v", m.mode)
	}
	if m.ready {
		t.Error("Expected ready to be false initially")
	}
	if m.current != nil {
		t.Error("Expected no open project")
	}

	f.createProjects(t, "beta", "Alpha")
	m = run(t, m, m.Init())
	if len(m.projects) != 2 {
		t.Fatalf("Expected 2 projects, got %d", len(m.projects))
	}
	if m.projects[0].Name != "Alpha" {
		t.Errorf("Expected projects sorted by name, got %v", m.projects)
	}
}

func TestDashboardNavigation(t *testing.T) {
	f := newDashboardFixture(t)
	f.createProjects(t, "a", "b", "c")
	m := f.model

	m, _ = press(t, m, "up")
	if m.cursor != 0 {
		t.Errorf("Cursor should stay at 0, got %d", m.cursor)
	}

	m, _ = press(t, m, "down")
	m, _ = press(t, m, "j")
	if m.cursor != 2 {
		t.Errorf("Expected cursor at 2, got %d", m.cursor)
	}

	m, _ = press(t, m, "down")
	if m.cursor != 2 {
		t.Errorf("Cursor should stay at 2, got %d", m.cursor)
	}

	m, _ = press(t, m, "g")
	if m.cursor != 0 {
		t.Errorf("Expected cursor at top, got %d", m.cursor)
	}

	m, _ = press(t, m, "G")
	if m.cursor != 2 {
		t.Errorf("Expected cursor at bottom, got %d", m.cursor)
	}
}

func TestDashboardCreateProject(t *testing.T) {
	f := newDashboardFixture(t)
	m := f.model

	m, _ = press(t, m, "n")
	if m.mode != modeNewProject {
		t.Fatalf("Expected modeNewProject, got %v", m.mode)
	}

	m, _ = press(t, m, "Reading list")
	m, cmd := press(t, m, "enter")
	if m.mode != modeProjects {
		t.Errorf("Expected to return to modeProjects, got %v", m.mode)
	}

	// Created message triggers a reload that selects the new project
	updated, reload := update(t, m, cmd())
	m = run(t, updated, reload)

	if len(m.projects) != 1 || m.projects[0].Name != "Reading list" {
		t.Fatalf("Expected the new project in the list, got %v", m.projects)
	}
	if m.projects[m.cursor].ID != "p1" {
		t.Errorf("Expected cursor on the new project")
	}
}

func TestDashboardCreateProjectCancel(t *testing.T) {
	f := newDashboardFixture(t)
	m := f.model

	m, _ = press(t, m, "n")
	m, _ = press(t, m, "Draft")
	m, cmd := press(t, m, "esc")

	if m.mode != modeProjects {
		t.Errorf("Expected modeProjects after cancel, got %v", m.mode)
	}
	if cmd != nil {
		t.Error("Expected no command after cancel")
	}
	projects, _ := f.store.ListProjects(context.Background())
	if len(projects) != 0 {
		t.Errorf("Expected no project created, got %v", projects)
	}
}

func TestDashboardOpenProject(t *testing.T) {
	f := newDashboardFixture(t)
	ids := f.createProjects(t, "Notes")
	if err := f.store.SaveMaster(context.Background(), ids[0], "hello"); err != nil {
		t.Fatal(err)
	}

	f.open(t, 0)
	m := f.model

	if m.mode != modeMaster {
		t.Errorf("Expected modeMaster, got %v", m.mode)
	}
	if m.current == nil || m.current.ID != ids[0] {
		t.Fatalf("Expected current project %s, got %v", ids[0], m.current)
	}
	if m.draft != "hello" {
		t.Errorf("Expected draft %q, got %q", "hello", m.draft)
	}
	if m.dirty {
		t.Error("Freshly opened project should not be dirty")
	}
}

func TestDashboardRemembersView(t *testing.T) {
	f := newDashboardFixture(t)
	ids := f.createProjects(t, "Notes")
	ctx := context.Background()

	f.open(t, 0)
	m, cmd := press(t, f.model, "tab")
	if m.mode != modeComponents {
		t.Fatalf("Expected modeComponents, got %v", m.mode)
	}
	m = run(t, m, cmd)

	state, err := f.store.ReadUIState(ctx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if state[uiViewKey] != uiViewComponents {
		t.Errorf("Expected persisted view %q, got %v", uiViewComponents, state[uiViewKey])
	}

	// A fresh session reopens the last view
	f.model = newDashboardModel(ctx, m.opts)
	f.model = run(t, f.model, f.model.loadProjects(""))
	f.open(t, 0)
	if f.model.mode != modeComponents {
		t.Errorf("Expected reopened project in modeComponents, got %v", f.model.mode)
	}
}

func TestDashboardEditAndSave(t *testing.T) {
	f := newDashboardFixture(t)
	ids := f.createProjects(t, "Notes")
	f.open(t, 0)

	m, _ := update(t, f.model, editorDoneMsg{id: ids[0], text: "edited text"})
	if !m.dirty || m.draft != "edited text" {
		t.Fatalf("Expected dirty draft, got dirty=%v draft=%q", m.dirty, m.draft)
	}

	stored, _ := f.store.ReadMaster(context.Background(), ids[0])
	if stored.Text != "" {
		t.Errorf("Edit must not write before save, got %q", stored.Text)
	}

	m, cmd := press(t, m, "s")
	m = run(t, m, cmd)
	if m.dirty {
		t.Error("Expected draft clean after save")
	}
	stored, _ = f.store.ReadMaster(context.Background(), ids[0])
	if stored.Text != "edited text" {
		t.Errorf("Expected saved master, got %q", stored.Text)
	}
}

func TestDashboardEditWithoutChanges(t *testing.T) {
	f := newDashboardFixture(t)
	ids := f.createProjects(t, "Notes")
	f.open(t, 0)

	m, _ := update(t, f.model, editorDoneMsg{id: ids[0], text: ""})
	if m.dirty {
		t.Error("Unchanged text should not mark the draft dirty")
	}

	_, cmd := press(t, m, "s")
	if cmd != nil {
		t.Error("Save without changes should not issue a command")
	}
}

func TestDashboardAutoSaveOnSwitch(t *testing.T) {
	f := newDashboardFixture(t)
	ids := f.createProjects(t, "Alpha", "Beta")
	ctx := context.Background()

	f.open(t, 0)
	m, _ := update(t, f.model, editorDoneMsg{id: ids[0], text: "unsaved alpha"})
	m, _ = press(t, m, "esc")
	if m.mode != modeProjects {
		t.Fatalf("Expected modeProjects, got %v", m.mode)
	}
	if !m.dirty {
		t.Fatal("Going back to the list keeps the session draft")
	}

	f.model = m
	f.open(t, 1)
	m = f.model

	if m.current == nil || m.current.ID != ids[1] {
		t.Fatalf("Expected Beta to be open, got %v", m.current)
	}
	if m.dirty {
		t.Error("Switched project should start clean")
	}
	stored, _ := f.store.ReadMaster(ctx, ids[0])
	if stored.Text != "unsaved alpha" {
		t.Errorf("Expected Alpha's edits saved before switching, got %q", stored.Text)
	}
	if !strings.Contains(m.message, "Alpha") {
		t.Errorf("Expected status to mention the saved project, got %q", m.message)
	}
}

func TestDashboardIngest(t *testing.T) {
	f := newDashboardFixture(t)
	ids := f.createProjects(t, "Notes")
	f.files.Put("/inbox/a.txt", "alpha")
	f.selector.Selection = domain.Selection{Paths: []string{"/inbox/a.txt"}}

	f.open(t, 0)
	m, cmd := press(t, f.model, "i")
	if cmd == nil {
		t.Fatal("Expected ingest command")
	}

	exec := &ingestExec{ctx: context.Background(), store: f.store, id: ids[0], selector: f.selector}
	if err := exec.Run(); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	m, refresh := update(t, m, exec.done())
	if !strings.Contains(m.message, "Ingested 1 files") {
		t.Errorf("Unexpected status %q", m.message)
	}
	m = run(t, m, refresh)

	if len(m.components) != 1 {
		t.Fatalf("Expected 1 component, got %d", len(m.components))
	}
	if !strings.HasPrefix(m.draft, "=== COMPONENT START ===\nOriginal: a.txt\n") {
		t.Errorf("Expected banner-wrapped master, got %q", m.draft)
	}
}

func TestDashboardIngestSavesDraftFirst(t *testing.T) {
	f := newDashboardFixture(t)
	ids := f.createProjects(t, "Notes")
	f.files.Put("/inbox/a.txt", "alpha")
	f.selector.Selection = domain.Selection{Paths: []string{"/inbox/a.txt"}}

	f.open(t, 0)
	m, _ := update(t, f.model, editorDoneMsg{id: ids[0], text: "my intro"})

	exec := &ingestExec{ctx: context.Background(), store: f.store, id: ids[0], selector: f.selector, flush: m.pendingDraft(ids[0])}
	if err := exec.Run(); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	m, refresh := update(t, m, exec.done())
	if m.dirty {
		t.Error("Expected draft marked clean after the flush")
	}
	m = run(t, m, refresh)

	if !strings.HasPrefix(m.draft, "my intro\n=== COMPONENT START ===") {
		t.Errorf("Expected section appended to the edited text, got %q", m.draft)
	}
}

func TestDashboardIngestOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		msg     ingestDoneMsg
		wantMsg string
		reload  bool
	}{
		{
			name:    "nothing selected",
			msg:     ingestDoneMsg{id: "p1", result: &domain.IngestResult{}},
			wantMsg: "Nothing ingested",
		},
		{
			name:    "no candidates",
			msg:     ingestDoneMsg{id: "p1", err: fmt.Errorf("file selection failed: %w", dialog.ErrNoCandidates)},
			wantMsg: dialog.ErrNoCandidates.Error(),
		},
		{
			name:    "partial failure",
			msg:     ingestDoneMsg{id: "p1", result: &domain.IngestResult{Copied: 2}, err: fmt.Errorf("failed to read /x.txt")},
			wantMsg: "2 archived",
			reload:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDashboardFixture(t)
			m, cmd := update(t, f.model, tt.msg)
			if !strings.Contains(m.message, tt.wantMsg) {
				t.Errorf("Expected status containing %q, got %q", tt.wantMsg, m.message)
			}
			if (cmd != nil) != tt.reload {
				t.Errorf("Expected reload=%v, got command %v", tt.reload, cmd != nil)
			}
		})
	}
}

func TestDashboardRebuild(t *testing.T) {
	f := newDashboardFixture(t)
	ids := f.createProjects(t, "Notes")
	ctx := context.Background()

	f.files.Put("/inbox/a.txt", "alpha")
	f.files.Put("/inbox/b.txt", "beta")
	if _, err := f.store.IngestFiles(ctx, ids[0], &mocks.MockFileSelector{Selection: domain.Selection{Paths: []string{"/inbox/a.txt", "/inbox/b.txt"}}}); err != nil {
		t.Fatal(err)
	}
	ingested, _ := f.store.ReadMaster(ctx, ids[0])
	if err := f.store.SaveMaster(ctx, ids[0], "scribbles"); err != nil {
		t.Fatal(err)
	}

	f.open(t, 0)
	m, _ := press(t, f.model, "r")
	if m.mode != modeConfirm || m.pending != confirmRebuild {
		t.Fatalf("Expected rebuild confirmation, got mode %v", m.mode)
	}

	m, cmd := press(t, m, "y")
	if m.mode != modeMaster {
		t.Errorf("Expected to return to modeMaster, got %v", m.mode)
	}
	m, refresh := update(t, m, cmd())
	m = run(t, m, refresh)

	if m.draft != ingested.Text {
		t.Errorf("Expected rebuilt master to match the ingested one\nwant %q\ngot  %q", ingested.Text, m.draft)
	}
}

func TestDashboardConfirmDelete(t *testing.T) {
	f := newDashboardFixture(t)
	ids := f.createProjects(t, "Doomed")
	ctx := context.Background()

	m, _ := press(t, f.model, "d")
	if m.mode != modeConfirm || m.pending != confirmDelete {
		t.Fatalf("Expected delete confirmation, got mode %v", m.mode)
	}

	// Declining keeps the project
	m, cmd := press(t, m, "n")
	if m.mode != modeProjects || cmd != nil {
		t.Fatalf("Expected cancel back to modeProjects")
	}
	if projects, _ := f.store.ListProjects(ctx); len(projects) != 1 {
		t.Fatalf("Project should survive a declined delete")
	}

	f.model = m
	f.open(t, 0)
	m, _ = press(t, f.model, "d")
	m, cmd = press(t, m, "y")
	m, reload := update(t, m, cmd())
	m = run(t, m, reload)

	if m.current != nil {
		t.Error("Deleting the open project should close it")
	}
	if m.mode != modeProjects {
		t.Errorf("Expected modeProjects, got %v", m.mode)
	}
	if len(m.projects) != 0 {
		t.Errorf("Expected empty project list, got %v", m.projects)
	}
	if f.repo.ComponentCount(ids[0]) != 0 {
		t.Error("Expected no components left")
	}
}

func TestDashboardExport(t *testing.T) {
	f := newDashboardFixture(t)
	ids := f.createProjects(t, "Notes")
	if err := f.store.SaveMaster(context.Background(), ids[0], "export me"); err != nil {
		t.Fatal(err)
	}

	m, _ := press(t, f.model, "x")
	if m.mode != modeExport {
		t.Fatalf("Expected modeExport, got %v", m.mode)
	}
	want := filepath.Join(m.opts.exportDir, "master.txt")
	if m.input.Value() != want {
		t.Errorf("Expected default destination %q, got %q", want, m.input.Value())
	}

	m, cmd := press(t, m, "enter")
	m = run(t, m, cmd)

	got, ok := f.files.Get(want)
	if !ok || got != "export me" {
		t.Errorf("Expected master exported to %s, got %q (found=%v)", want, got, ok)
	}
	if !strings.Contains(m.message, "Exported to") {
		t.Errorf("Unexpected status %q", m.message)
	}
}

func TestDashboardExportCancel(t *testing.T) {
	f := newDashboardFixture(t)
	f.createProjects(t, "Notes")

	m, _ := press(t, f.model, "x")
	m, cmd := press(t, m, "esc")

	if cmd != nil {
		t.Error("Cancelled export should not issue a command")
	}
	if m.mode != modeProjects {
		t.Errorf("Expected modeProjects, got %v", m.mode)
	}
	if _, ok := f.files.Get(filepath.Join(m.opts.exportDir, "master.txt")); ok {
		t.Error("Cancelled export must not write a file")
	}
}

func TestDashboardCopy(t *testing.T) {
	f := newDashboardFixture(t)
	ids := f.createProjects(t, "Notes")
	if err := f.store.SaveMaster(context.Background(), ids[0], "clip me"); err != nil {
		t.Fatal(err)
	}

	m, cmd := press(t, f.model, "c")
	m = run(t, m, cmd)

	if f.clip.Text != "clip me" {
		t.Errorf("Expected clipboard text %q, got %q", "clip me", f.clip.Text)
	}
	if !strings.Contains(m.message, "Copied") {
		t.Errorf("Unexpected status %q", m.message)
	}
}

func TestDashboardComponentView(t *testing.T) {
	f := newDashboardFixture(t)
	ids := f.createProjects(t, "Notes")
	f.files.Put("/inbox/a.txt", "component body")
	if _, err := f.store.IngestFiles(context.Background(), ids[0], &mocks.MockFileSelector{Selection: domain.Selection{Paths: []string{"/inbox/a.txt"}}}); err != nil {
		t.Fatal(err)
	}

	f.open(t, 0)
	m, _ := press(t, f.model, "tab")
	if len(m.components) != 1 {
		t.Fatalf("Expected 1 component, got %d", len(m.components))
	}

	m, cmd := press(t, m, "enter")
	m = run(t, m, cmd)
	if m.mode != modeComponent {
		t.Fatalf("Expected modeComponent, got %v", m.mode)
	}
	if m.component == nil || m.component.Text != "component body" {
		t.Errorf("Expected component text, got %v", m.component)
	}

	m, _ = press(t, m, "esc")
	if m.mode != modeComponents || m.component != nil {
		t.Errorf("Expected back in modeComponents")
	}
}

func TestDashboardHelpToggle(t *testing.T) {
	f := newDashboardFixture(t)

	m, _ := press(t, f.model, "?")
	if m.mode != modeHelp {
		t.Fatalf("Expected modeHelp, got %v", m.mode)
	}
	m, _ = press(t, m, "?")
	if m.mode != modeProjects {
		t.Errorf("Expected return to previous mode, got %v", m.mode)
	}
}

func TestDashboardView(t *testing.T) {
	f := newDashboardFixture(t)
	f.createProjects(t, "Garden notes")

	m := f.model
	if !strings.Contains(m.View(), "Loading") {
		t.Error("Expected loading view before the first window size")
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	for _, want := range []string{"Compacter", "Garden notes", "1 projects", "Ready"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}

	m, _ = press(t, m, "?")
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("Expected help view")
	}
}

func TestDashboardForceQuit(t *testing.T) {
	f := newDashboardFixture(t)
	_, cmd := update(t, f.model, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestScrollOffset(t *testing.T) {
	tests := []struct {
		cursor, offset, height, want int
	}{
		{0, 0, 5, 0},
		{4, 0, 5, 0},
		{5, 0, 5, 1},
		{2, 3, 5, 2},
		{9, 2, 3, 7},
	}

	for _, tt := range tests {
		got := scrollOffset(tt.cursor, tt.offset, tt.height)
		if got != tt.want {
			t.Errorf("scrollOffset(%d, %d, %d) = %d, want %d", tt.cursor, tt.offset, tt.height, got, tt.want)
		}
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated text", 6, "trunc…"},
		{"émile zola", 3, "ém…"},
	}

	for _, tt := range tests {
		if got := truncateText(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncateText(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
