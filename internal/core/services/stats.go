package services

import (
	"context"
	"fmt"

	"github.com/notecompacter/compacter/internal/core/domain"
)

// ComponentStat is one archived component and its size
type ComponentStat struct {
	domain.ComponentSummary
	Bytes int `json:"bytes"`
}

// ProjectStats summarizes a project's archive and master
type ProjectStats struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	MasterBytes    int             `json:"masterBytes"`
	ComponentBytes int             `json:"componentBytes"`
	Components     []ComponentStat `json:"components"`
	Oldest         string          `json:"oldest,omitempty"`
	Newest         string          `json:"newest,omitempty"`
	RebuiltBytes   int             `json:"rebuiltBytes"`
	InSync         bool            `json:"inSync"`
}

// Count returns the number of components
func (p ProjectStats) Count() int {
	return len(p.Components)
}

// Drifted reports whether the master text differs from a rebuild,
// which happens after manual edits or an aborted ingest
func (p ProjectStats) Drifted() bool {
	return !p.InSync
}

// StatsService computes project statistics from the store
type StatsService struct {
	store *ProjectStore
}

// NewStatsService creates a stats service
func NewStatsService(store *ProjectStore) *StatsService {
	return &StatsService{store: store}
}

// Execute gathers statistics for one project; components are newest first
func (s *StatsService) Execute(ctx context.Context, id string) (*ProjectStats, error) {
	doc, err := s.store.ReadMaster(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListComponents(ctx, id)
	if err != nil {
		return nil, err
	}

	rebuilt, _, err := s.store.RenderMaster(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &ProjectStats{
		ID:           id,
		Name:         doc.Name,
		MasterBytes:  len(doc.Text),
		Components:   make([]ComponentStat, 0, len(items)),
		RebuiltBytes: len(rebuilt),
		InSync:       doc.Text == rebuilt,
	}

	for _, item := range items {
		c, err := s.store.ReadComponent(ctx, id, item.InternalName)
		if err != nil {
			return nil, fmt.Errorf("failed to read component %s: %w", item.InternalName, err)
		}
		stats.Components = append(stats.Components, ComponentStat{
			ComponentSummary: item,
			Bytes:            len(c.Text),
		})
		stats.ComponentBytes += len(c.Text)

		if !item.HasTimestamp() {
			continue
		}
		if stats.Newest == "" || item.AddedAt > stats.Newest {
			stats.Newest = item.AddedAt
		}
		if stats.Oldest == "" || item.AddedAt < stats.Oldest {
			stats.Oldest = item.AddedAt
		}
	}

	return stats, nil
}
