package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/internal/core/ports"
)

// IngestFiles asks the selector for source files, archives each one as a
// component and appends its banner-wrapped text to the master.
//
// The master is written once after the batch. If a file fails, the rest of
// the batch is skipped and the error is returned together with the counts
// so far; components already archived stay in place and RebuildMaster can
// bring the master back in line.
func (s *ProjectStore) IngestFiles(ctx context.Context, id string, selector ports.FileSelector) (*domain.IngestResult, error) {
	ctx = s.opContext(ctx, "ingest", id)
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	selection, err := selector.SelectFiles(ctx, domain.OpenRequest{
		Title:      "Select text files to ingest",
		Extensions: s.extensions,
		Multiple:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("file selection failed: %w", err)
	}

	result := &domain.IngestResult{}
	if selection.Empty() {
		s.logger.Debug(ctx, "ingest canceled")
		return result, nil
	}

	last := s.newestStamp(ctx, id)

	master, err := s.repo.ReadMaster(ctx, id)
	if err != nil {
		s.logger.Warn(ctx, "master unreadable, starting from empty text", zap.Error(err))
		master = ""
	}

	for _, path := range selection.Paths {
		last = nextStamp(s.now(), last)
		section, err := s.ingestOne(ctx, id, path, last)
		if err != nil {
			s.logger.Error(ctx, "ingest aborted", zap.String("path", path), zap.Int("copied", result.Copied), zap.Error(err))
			return result, err
		}
		master = domain.AppendSection(master, section)
		result.Copied++
		result.AppendedBytes += len(section)
	}

	if err := s.repo.WriteMaster(ctx, id, master); err != nil {
		return result, fmt.Errorf("failed to write master: %w", err)
	}

	s.logger.Info(ctx, "files ingested", zap.Int("copied", result.Copied), zap.Int("appended_bytes", result.AppendedBytes))
	return result, nil
}

// newestStamp returns the latest addedAt already archived in the project,
// or the zero time when there is none
func (s *ProjectStore) newestStamp(ctx context.Context, id string) time.Time {
	items, err := s.repo.ListComponents(ctx, id)
	if err != nil {
		s.logger.Warn(ctx, "could not list components before ingest", zap.Error(err))
		return time.Time{}
	}
	var newest time.Time
	for _, item := range items {
		if t, ok := domain.ParseTimestamp(item.AddedAt); ok && t.After(newest) {
			newest = t
		}
	}
	return newest
}

// nextStamp truncates now to the millisecond and keeps it at least one
// millisecond past last, so addedAt strings sort in ingestion order
func nextStamp(now, last time.Time) time.Time {
	now = now.UTC().Truncate(time.Millisecond)
	if !last.IsZero() && !now.After(last) {
		return last.Add(time.Millisecond)
	}
	return now
}

func (s *ProjectStore) ingestOne(ctx context.Context, id, path string, now time.Time) (string, error) {
	text, err := s.files.ReadText(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	internalName, err := domain.NewInternalName(now, s.random)
	if err != nil {
		return "", err
	}

	component := domain.Component{
		ComponentSummary: domain.ComponentSummary{
			InternalName: internalName,
			OriginalName: filepath.Base(path),
			AddedAt:      domain.FormatTimestamp(now),
		},
		Text: text,
	}
	if err := s.repo.WriteComponent(ctx, id, component); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", component.OriginalName, err)
	}

	s.logger.Debug(ctx, "component stored",
		zap.String("internal_name", internalName),
		zap.String("original_name", component.OriginalName))
	return domain.Section(component), nil
}
