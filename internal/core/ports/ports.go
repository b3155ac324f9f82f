package ports

import (
	"context"

	"github.com/notecompacter/compacter/internal/core/domain"
)

// Repository defines the port for project persistence operations
type Repository interface {
	// ListProjects returns one summary per project directory (unsorted).
	// Directories with unreadable metadata are still listed.
	ListProjects(ctx context.Context) ([]domain.ProjectSummary, error)

	// CreateProject writes metadata, an empty master, UI state and the components container
	CreateProject(ctx context.Context, project domain.Project) error

	// LoadProject reads project metadata
	LoadProject(ctx context.Context, id string) (*domain.Project, error)

	// DeleteProject removes a project and everything it owns
	DeleteProject(ctx context.Context, id string) error

	// ReadMaster returns the master text, or "" if none exists
	ReadMaster(ctx context.Context, id string) (string, error)

	// WriteMaster overwrites the master text
	WriteMaster(ctx context.Context, id string, text string) error

	// ListComponents returns component summaries in storage order
	ListComponents(ctx context.Context, id string) ([]domain.ComponentSummary, error)

	// ReadComponent returns a component's text and metadata
	ReadComponent(ctx context.Context, id, internalName string) (*domain.Component, error)

	// WriteComponent stores component text and its metadata sidecar
	WriteComponent(ctx context.Context, id string, component domain.Component) error

	// ReadUIState returns the opaque UI state record
	ReadUIState(ctx context.Context, id string) (map[string]any, error)

	// WriteUIState replaces the opaque UI state record
	WriteUIState(ctx context.Context, id string, state map[string]any) error
}

// ExternalFiles defines the port for files outside the store
// (ingestion sources and export destinations)
type ExternalFiles interface {
	// ReadText reads a whole file as text
	ReadText(path string) (string, error)

	// WriteText writes a whole file
	WriteText(path string, text string) error
}

// FileSelector is the host's file-selection dialog
type FileSelector interface {
	SelectFiles(ctx context.Context, req domain.OpenRequest) (domain.Selection, error)
}

// SaveTarget is the host's file-save dialog
type SaveTarget interface {
	SelectSaveTarget(ctx context.Context, req domain.SaveRequest) (domain.SaveDestination, error)
}

// StorageInspector reports where the store keeps its data
type StorageInspector interface {
	StoragePaths() (domain.StoragePaths, error)
	ReadMarker() (map[string]any, error)
}

// Clipboard defines the port for the system clipboard
type Clipboard interface {
	WriteAll(text string) error
}
