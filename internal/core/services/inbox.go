package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/pkg/logging"
)

// InboxService ingests batches of files reported by a directory watcher
type InboxService struct {
	store  *ProjectStore
	logger *logging.Logger
}

// NewInboxService creates an inbox service
func NewInboxService(store *ProjectStore, logger *logging.Logger) *InboxService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &InboxService{store: store, logger: logger.Named("inbox")}
}

// Ingest archives paths into the project as one batch
func (s *InboxService) Ingest(ctx context.Context, id string, paths []string) (*domain.IngestResult, error) {
	ctx = logging.WithProject(ctx, id)
	if len(paths) == 0 {
		return &domain.IngestResult{}, nil
	}

	s.logger.Info(ctx, "inbox batch", zap.Strings("paths", paths))
	return s.store.IngestFiles(ctx, id, batchSelector(paths))
}

// batchSelector answers the ingest dialog with a fixed batch
type batchSelector []string

func (b batchSelector) SelectFiles(ctx context.Context, req domain.OpenRequest) (domain.Selection, error) {
	return domain.Selection{Paths: b}, nil
}
