package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/internal/core/ports"
)

// ExportMaster asks the save target for a destination and writes the
// master there verbatim. Cancellation returns Saved=false.
func (s *ProjectStore) ExportMaster(ctx context.Context, id string, target ports.SaveTarget) (*domain.ExportResult, error) {
	ctx = s.opContext(ctx, "export", id)
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	dest, err := target.SelectSaveTarget(ctx, domain.SaveRequest{
		Title:       "Export master as .txt",
		DefaultName: s.exportName,
		Extensions:  []string{domain.ComponentExt},
	})
	if err != nil {
		return nil, fmt.Errorf("save dialog failed: %w", err)
	}
	if dest.Canceled || dest.Path == "" {
		return &domain.ExportResult{Saved: false}, nil
	}

	contents, err := s.repo.ReadMaster(ctx, id)
	if err != nil {
		s.logger.Warn(ctx, "master unreadable, exporting empty text", zap.Error(err))
		contents = ""
	}

	if err := s.files.WriteText(dest.Path, contents); err != nil {
		return nil, fmt.Errorf("failed to export master: %w", err)
	}

	s.logger.Info(ctx, "master exported", zap.String("path", dest.Path), zap.Int("bytes", len(contents)))
	return &domain.ExportResult{Saved: true, Path: dest.Path}, nil
}

// RenderMaster returns the text RebuildMaster would write: every archived
// component wrapped in banners, oldest first. Nothing is written.
func (s *ProjectStore) RenderMaster(ctx context.Context, id string) (string, int, error) {
	comps, err := s.ListComponents(ctx, id)
	if err != nil {
		return "", 0, err
	}

	master := ""
	for i := len(comps) - 1; i >= 0; i-- {
		c, err := s.repo.ReadComponent(ctx, id, comps[i].InternalName)
		if err != nil {
			return "", 0, fmt.Errorf("failed to read component %s: %w", comps[i].InternalName, err)
		}
		master = domain.AppendSection(master, domain.Section(*c))
	}
	return master, len(comps), nil
}

// RebuildMaster regenerates the master from the component archive,
// oldest first, replacing whatever the master held before.
func (s *ProjectStore) RebuildMaster(ctx context.Context, id string) (*domain.RebuildResult, error) {
	master, built, err := s.RenderMaster(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx = s.opContext(ctx, "rebuild", id)

	if err := s.repo.WriteMaster(ctx, id, master); err != nil {
		return nil, fmt.Errorf("failed to write master: %w", err)
	}

	s.logger.Info(ctx, "master rebuilt", zap.Int("built", built), zap.Int("bytes", len(master)))
	return &domain.RebuildResult{Built: built, Bytes: len(master)}, nil
}

// CopyMaster places the master text on the clipboard and returns its size
func (s *ProjectStore) CopyMaster(ctx context.Context, id string, clip ports.Clipboard) (int, error) {
	doc, err := s.ReadMaster(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := clip.WriteAll(doc.Text); err != nil {
		return 0, fmt.Errorf("clipboard unavailable: %w", err)
	}
	return len(doc.Text), nil
}
