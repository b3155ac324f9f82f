package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/notecompacter/compacter/internal/core/domain"
)

// ListComponents returns component summaries newest first. Timestamps are
// compared as plain strings; a missing timestamp compares as "".
func (s *ProjectStore) ListComponents(ctx context.Context, id string) ([]domain.ComponentSummary, error) {
	ctx = s.opContext(ctx, "list_components", id)
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}

	items, err := s.repo.ListComponents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	if items == nil {
		items = []domain.ComponentSummary{}
	}

	sortNewestFirst(items)
	s.logger.Debug(ctx, "listed components", zap.Int("count", len(items)))
	return items, nil
}

func sortNewestFirst(items []domain.ComponentSummary) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].AddedAt > items[j].AddedAt
	})
}

// ReadComponent returns a component's text and provenance. A missing
// content file is an error; a missing sidecar is not.
func (s *ProjectStore) ReadComponent(ctx context.Context, id, internalName string) (*domain.Component, error) {
	ctx = s.opContext(ctx, "read_component", id)
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}
	if err := domain.ValidateInternalName(internalName); err != nil {
		return nil, err
	}

	c, err := s.repo.ReadComponent(ctx, id, internalName)
	if err != nil {
		return nil, fmt.Errorf("failed to read component: %w", err)
	}
	return c, nil
}
