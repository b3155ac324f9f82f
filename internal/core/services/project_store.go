package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/internal/core/ports"
	"github.com/notecompacter/compacter/pkg/logging"
)

const (
	// DefaultExportName is suggested to the save dialog when exporting a master
	DefaultExportName = "master.txt"
)

// ProjectStore is the directory-backed persistence and aggregation engine.
// It keeps no state between calls beyond what the repository persists; the
// host passes the current project id into every call.
type ProjectStore struct {
	repo       ports.Repository
	files      ports.ExternalFiles
	storage    ports.StorageInspector
	logger     *logging.Logger
	now        func() time.Time
	random     io.Reader
	newID      func() string
	exportName string
	extensions []string
}

// Option configures a ProjectStore
type Option func(*ProjectStore)

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(s *ProjectStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for ids and timestamps
func WithClock(now func() time.Time) Option {
	return func(s *ProjectStore) { s.now = now }
}

// WithRandom overrides the random source used for component names
func WithRandom(r io.Reader) Option {
	return func(s *ProjectStore) { s.random = r }
}

// WithIDGenerator overrides project id generation
func WithIDGenerator(gen func() string) Option {
	return func(s *ProjectStore) { s.newID = gen }
}

// WithStorage sets the inspector used by StorageInfo
func WithStorage(inspector ports.StorageInspector) Option {
	return func(s *ProjectStore) { s.storage = inspector }
}

// WithExportName sets the default file name offered when exporting
func WithExportName(name string) Option {
	return func(s *ProjectStore) {
		if name != "" {
			s.exportName = name
		}
	}
}

// WithExtensions sets the file extensions offered by the ingest dialog
func WithExtensions(exts []string) Option {
	return func(s *ProjectStore) {
		if len(exts) > 0 {
			s.extensions = exts
		}
	}
}

// NewProjectStore creates a project store
func NewProjectStore(repo ports.Repository, files ports.ExternalFiles, opts ...Option) *ProjectStore {
	s := &ProjectStore{
		repo:       repo,
		files:      files,
		logger:     logging.NewNop(),
		now:        time.Now,
		newID:      uuid.NewString,
		exportName: DefaultExportName,
		extensions: []string{domain.ComponentExt},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ProjectStore) opContext(ctx context.Context, op, id string) context.Context {
	ctx = logging.WithOperation(ctx, op)
	if id != "" {
		ctx = logging.WithProject(ctx, id)
	}
	return ctx
}

// ListProjects returns all projects sorted by name using locale-aware collation
func (s *ProjectStore) ListProjects(ctx context.Context) ([]domain.ProjectSummary, error) {
	ctx = s.opContext(ctx, "list_projects", "")

	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	col := collate.New(language.Und)
	sort.SliceStable(projects, func(i, j int) bool {
		return col.CompareString(projects[i].Name, projects[j].Name) < 0
	})

	s.logger.Debug(ctx, "listed projects", zap.Int("count", len(projects)))
	return projects, nil
}

// CreateProject creates a new project. A blank name becomes "Project <id>".
func (s *ProjectStore) CreateProject(ctx context.Context, name string) (*domain.CreateResult, error) {
	id := s.newID()
	ctx = s.opContext(ctx, "create_project", id)

	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	project := domain.NewProject(id, name, s.now())
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info(ctx, "project created", zap.String("name", project.Name))
	return &domain.CreateResult{ID: id}, nil
}

// ReadMaster returns the project name and master text. Missing data
// degrades to "(unnamed)" and "" rather than failing.
func (s *ProjectStore) ReadMaster(ctx context.Context, id string) (*domain.MasterDocument, error) {
	ctx = s.opContext(ctx, "read_master", id)
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	text, err := s.repo.ReadMaster(ctx, id)
	if err != nil {
		s.logger.Warn(ctx, "master unreadable, using empty text", zap.Error(err))
		text = ""
	}

	return &domain.MasterDocument{
		Name: s.projectName(ctx, id),
		Text: text,
	}, nil
}

func (s *ProjectStore) projectName(ctx context.Context, id string) string {
	meta, err := s.repo.LoadProject(ctx, id)
	if err != nil {
		s.logger.Warn(ctx, "project metadata unreadable", zap.Error(err))
		return domain.UnnamedProject
	}
	if meta.Name == "" {
		return domain.UnnamedProject
	}
	return meta.Name
}

// SaveMaster overwrites the master text in full
func (s *ProjectStore) SaveMaster(ctx context.Context, id, text string) error {
	ctx = s.opContext(ctx, "save_master", id)
	if err := domain.ValidateID(id); err != nil {
		return err
	}

	if err := s.repo.WriteMaster(ctx, id, text); err != nil {
		return fmt.Errorf("failed to save master: %w", err)
	}

	s.logger.Debug(ctx, "master saved", zap.Int("bytes", len(text)))
	return nil
}

// DeleteProject removes a project and all of its data. Deleting an unknown
// project is not an error.
func (s *ProjectStore) DeleteProject(ctx context.Context, id string) error {
	ctx = s.opContext(ctx, "delete_project", id)
	if err := domain.ValidateID(id); err != nil {
		return err
	}

	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logger.Info(ctx, "project deleted")
	return nil
}

// ReadUIState returns the project's opaque UI state
func (s *ProjectStore) ReadUIState(ctx context.Context, id string) (map[string]any, error) {
	ctx = s.opContext(ctx, "read_ui_state", id)
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	state, err := s.repo.ReadUIState(ctx, id)
	if err != nil || state == nil {
		if err != nil {
			s.logger.Warn(ctx, "ui state unreadable, using empty state", zap.Error(err))
		}
		return map[string]any{}, nil
	}
	return state, nil
}

// SaveUIState replaces the project's opaque UI state
func (s *ProjectStore) SaveUIState(ctx context.Context, id string, state map[string]any) error {
	ctx = s.opContext(ctx, "save_ui_state", id)
	if err := domain.ValidateID(id); err != nil {
		return err
	}
	if state == nil {
		state = map[string]any{}
	}
	if err := s.repo.WriteUIState(ctx, id, state); err != nil {
		return fmt.Errorf("failed to save ui state: %w", err)
	}
	return nil
}

// StorageInfo reports storage locations. Failures are returned in the
// result rather than as an error.
func (s *ProjectStore) StorageInfo(ctx context.Context) domain.StorageInfo {
	ctx = s.opContext(ctx, "storage_info", "")

	if s.storage == nil {
		return domain.StorageInfo{OK: false, Error: "storage location not configured"}
	}

	paths, err := s.storage.StoragePaths()
	if err != nil {
		s.logger.Warn(ctx, "storage paths unavailable", zap.Error(err))
		return domain.StorageInfo{OK: false, Error: err.Error()}
	}

	marker, err := s.storage.ReadMarker()
	if err != nil || marker == nil {
		marker = map[string]any{}
	}

	return domain.StorageInfo{OK: true, Info: paths, Marker: marker}
}
