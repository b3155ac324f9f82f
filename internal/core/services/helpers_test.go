package services

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/notecompacter/compacter/internal/core/ports/mocks"
	"github.com/notecompacter/compacter/pkg/logging"
)

// stepClock returns a clock that advances by one second per call
func stepClock(start time.Time) func() time.Time {
	current := start.Add(-time.Second)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

// countingReader yields 0x00, 0x01, 0x02, ... so generated names differ
type countingReader struct{ next byte }

func (r *countingReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}
	return len(p), nil
}

type storeFixture struct {
	store *ProjectStore
	repo  *mocks.MockRepository
	files *mocks.MockFiles
	logs  *observer.ObservedLogs
}

func newFixture(t *testing.T, opts ...Option) *storeFixture {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	repo := mocks.NewMockRepository()
	files := mocks.NewMockFiles()

	ids := 0
	base := []Option{
		WithLogger(logging.FromZap(zap.New(core))),
		WithClock(stepClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))),
		WithRandom(&countingReader{}),
		WithIDGenerator(func() string {
			ids++
			return "project-" + string(rune('a'+ids-1))
		}),
	}
	store := NewProjectStore(repo, files, append(base, opts...)...)
	return &storeFixture{store: store, repo: repo, files: files, logs: logs}
}
