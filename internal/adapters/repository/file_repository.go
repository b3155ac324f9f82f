package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/internal/core/ports"
	"github.com/notecompacter/compacter/pkg/vault"
)

// FileRepository stores projects as directories under the vault
type FileRepository struct {
	vault *vault.Vault
	mu    sync.RWMutex
}

// NewFileRepository creates a new file-based repository
func NewFileRepository(v *vault.Vault) *FileRepository {
	return &FileRepository{
		vault: v,
	}
}

// Ensure it implements the interface
var _ ports.Repository = (*FileRepository)(nil)

// ListProjects returns a summary per project directory. Metadata that is
// missing or unreadable yields the directory name and "(unnamed)".
func (r *FileRepository) ListProjects(ctx context.Context) ([]domain.ProjectSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(r.vault.ProjectsPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create projects directory: %w", err)
	}

	entries, err := os.ReadDir(r.vault.ProjectsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects directory: %w", err)
	}

	projects := make([]domain.ProjectSummary, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirName := entry.Name()
		summary := domain.ProjectSummary{ID: dirName, Name: domain.UnnamedProject}

		var meta domain.Project
		if err := readJSON(r.vault.ProjectFilePath(dirName), &meta); err == nil {
			if meta.ID != "" {
				summary.ID = meta.ID
			}
			if meta.Name != "" {
				summary.Name = meta.Name
			}
		}
		projects = append(projects, summary)
	}

	return projects, nil
}

// CreateProject lays out a new project directory
func (r *FileRepository) CreateProject(ctx context.Context, project domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.vault.ComponentsPath(project.ID), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	if err := writeJSON(r.vault.ProjectFilePath(project.ID), project); err != nil {
		return fmt.Errorf("failed to write project metadata: %w", err)
	}

	masterPath := r.vault.MasterPath(project.ID)
	if _, err := os.Stat(masterPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(masterPath, nil, 0644); err != nil {
			return fmt.Errorf("failed to create master: %w", err)
		}
	}

	if err := writeJSON(r.vault.UIStatePath(project.ID), map[string]any{}); err != nil {
		return fmt.Errorf("failed to write ui state: %w", err)
	}

	return nil
}

// LoadProject reads project metadata
func (r *FileRepository) LoadProject(ctx context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var meta domain.Project
	if err := readJSON(r.vault.ProjectFilePath(id), &meta); err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", id, err)
	}
	return &meta, nil
}

// DeleteProject removes the project directory tree. Missing projects are fine.
func (r *FileRepository) DeleteProject(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.RemoveAll(r.vault.ProjectPath(id)); err != nil {
		return fmt.Errorf("failed to remove project %s: %w", id, err)
	}
	return nil
}

// ReadMaster returns the master text, or "" when the file does not exist
func (r *FileRepository) ReadMaster(ctx context.Context, id string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.vault.MasterPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read master: %w", err)
	}
	return string(data), nil
}

// WriteMaster overwrites the master text
func (r *FileRepository) WriteMaster(ctx context.Context, id string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return safeWriteFile(r.vault.MasterPath(id), []byte(text))
}

// ListComponents returns summaries for every .txt file in the components
// directory, in directory order. The directory is created when the project
// exists but has none yet.
func (r *FileRepository) ListComponents(ctx context.Context, id string) ([]domain.ComponentSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir := r.vault.ComponentsPath(id)
	if _, err := os.Stat(r.vault.ProjectPath(id)); err == nil {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create components directory: %w", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.ComponentSummary{}, nil
		}
		return nil, fmt.Errorf("failed to read components directory: %w", err)
	}

	items := make([]domain.ComponentSummary, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !domain.IsComponentFile(entry.Name()) {
			continue
		}
		items = append(items, domain.SummaryFromMeta(entry.Name(), r.readMeta(id, entry.Name())))
	}
	return items, nil
}

// ReadComponent returns a component. A missing content file is reported as
// domain.ErrComponentNotFound.
func (r *FileRepository) ReadComponent(ctx context.Context, id, internalName string) (*domain.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.vault.ComponentPath(id, internalName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrComponentNotFound, internalName)
		}
		return nil, fmt.Errorf("failed to read component %s: %w", internalName, err)
	}

	return &domain.Component{
		ComponentSummary: domain.SummaryFromMeta(internalName, r.readMeta(id, internalName)),
		Text:             string(data),
	}, nil
}

// WriteComponent stores the component text and its sidecar
func (r *FileRepository) WriteComponent(ctx context.Context, id string, component domain.Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.vault.ComponentsPath(id), 0755); err != nil {
		return fmt.Errorf("failed to create components directory: %w", err)
	}

	if err := safeWriteFile(r.vault.ComponentPath(id, component.InternalName), []byte(component.Text)); err != nil {
		return err
	}

	meta := domain.ComponentMeta{
		OriginalName: component.OriginalName,
		AddedAt:      component.AddedAt,
	}
	if err := writeJSON(r.vault.ComponentMetaPath(id, component.InternalName), meta); err != nil {
		return fmt.Errorf("failed to write component metadata: %w", err)
	}
	return nil
}

// ReadUIState returns the stored UI state, or an empty map
func (r *FileRepository) ReadUIState(ctx context.Context, id string) (map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state := map[string]any{}
	if err := readJSON(r.vault.UIStatePath(id), &state); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if state == nil {
		state = map[string]any{}
	}
	return state, nil
}

// WriteUIState replaces the stored UI state
func (r *FileRepository) WriteUIState(ctx context.Context, id string, state map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.vault.ProjectPath(id)); err != nil {
		return fmt.Errorf("project %s not found: %w", id, err)
	}
	return writeJSON(r.vault.UIStatePath(id), state)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// readMeta returns nil when the sidecar is missing or unparseable
func (r *FileRepository) readMeta(id, internalName string) *domain.ComponentMeta {
	var meta domain.ComponentMeta
	if err := readJSON(r.vault.ComponentMetaPath(id, internalName), &meta); err != nil {
		return nil
	}
	return &meta
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return safeWriteFile(path, data)
}

// safeWriteFile writes to a temp file and renames it into place
func safeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
