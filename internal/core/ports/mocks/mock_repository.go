package mocks

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/notecompacter/compacter/internal/core/domain"
)

// MockRepository is an in-memory implementation of ports.Repository for testing
type MockRepository struct {
	mu         sync.RWMutex
	projects   map[string]*mockProject
	FailWrites map[string]error // originalName -> error returned by WriteComponent
}

type mockProject struct {
	meta       *domain.Project // nil simulates missing metadata
	master     *string
	components map[string]domain.Component
	uiState    map[string]any
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		projects:   make(map[string]*mockProject),
		FailWrites: make(map[string]error),
	}
}

// ListProjects returns all project summaries
func (m *MockRepository) ListProjects(ctx context.Context) ([]domain.ProjectSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.projects))
	for id := range m.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.ProjectSummary, 0, len(ids))
	for _, id := range ids {
		p := m.projects[id]
		summary := domain.ProjectSummary{ID: id, Name: domain.UnnamedProject}
		if p.meta != nil {
			if p.meta.ID != "" {
				summary.ID = p.meta.ID
			}
			if p.meta.Name != "" {
				summary.Name = p.meta.Name
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

// CreateProject stores a project
func (m *MockRepository) CreateProject(ctx context.Context, project domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	meta := project
	empty := ""
	p, ok := m.projects[project.ID]
	if !ok {
		p = &mockProject{components: make(map[string]domain.Component)}
		m.projects[project.ID] = p
	}
	p.meta = &meta
	if p.master == nil {
		p.master = &empty
	}
	p.uiState = map[string]any{}
	return nil
}

// LoadProject returns project metadata
func (m *MockRepository) LoadProject(ctx context.Context, id string) (*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok || p.meta == nil {
		return nil, fmt.Errorf("project not found: %s: %w", id, os.ErrNotExist)
	}
	meta := *p.meta
	return &meta, nil
}

// DeleteProject removes a project; missing projects are not an error
func (m *MockRepository) DeleteProject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.projects, id)
	return nil
}

// ReadMaster returns the master text or ""
func (m *MockRepository) ReadMaster(ctx context.Context, id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok || p.master == nil {
		return "", nil
	}
	return *p.master, nil
}

// WriteMaster overwrites the master text
func (m *MockRepository) WriteMaster(ctx context.Context, id string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return fmt.Errorf("project not found: %s: %w", id, os.ErrNotExist)
	}
	p.master = &text
	return nil
}

// ListComponents returns summaries ordered by internal name
func (m *MockRepository) ListComponents(ctx context.Context, id string) ([]domain.ComponentSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return []domain.ComponentSummary{}, nil
	}
	names := make([]string, 0, len(p.components))
	for name := range p.components {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.ComponentSummary, 0, len(names))
	for _, name := range names {
		out = append(out, p.components[name].ComponentSummary)
	}
	return out, nil
}

// ReadComponent returns a stored component
func (m *MockRepository) ReadComponent(ctx context.Context, id, internalName string) (*domain.Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrComponentNotFound, internalName)
	}
	c, ok := p.components[internalName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrComponentNotFound, internalName)
	}
	return &c, nil
}

// WriteComponent stores a component
func (m *MockRepository) WriteComponent(ctx context.Context, id string, component domain.Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.FailWrites[component.OriginalName]; ok {
		return err
	}
	p, ok := m.projects[id]
	if !ok {
		return fmt.Errorf("project not found: %s: %w", id, os.ErrNotExist)
	}
	p.components[component.InternalName] = component
	return nil
}

// ReadUIState returns the UI state or an empty map
func (m *MockRepository) ReadUIState(ctx context.Context, id string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := map[string]any{}
	if p, ok := m.projects[id]; ok {
		for k, v := range p.uiState {
			out[k] = v
		}
	}
	return out, nil
}

// WriteUIState replaces the UI state
func (m *MockRepository) WriteUIState(ctx context.Context, id string, state map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return fmt.Errorf("project not found: %s: %w", id, os.ErrNotExist)
	}
	p.uiState = state
	return nil
}

// Helper methods for testing

// AddRawComponent stores a component directly, bypassing ingestion
func (m *MockRepository) AddRawComponent(id string, component domain.Component) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		p = &mockProject{components: make(map[string]domain.Component)}
		m.projects[id] = p
	}
	p.components[component.InternalName] = component
}

// AddBareProject registers a project directory with no metadata
func (m *MockRepository) AddBareProject(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.projects[id] = &mockProject{components: make(map[string]domain.Component)}
}

// ComponentCount returns the number of stored components for a project
func (m *MockRepository) ComponentCount(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.projects[id]; ok {
		return len(p.components)
	}
	return 0
}

// Clear removes all projects
func (m *MockRepository) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.projects = make(map[string]*mockProject)
}
