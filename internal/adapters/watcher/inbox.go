package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/notecompacter/compacter/pkg/logging"
)

// BatchFunc receives the files that settled during one debounce window
type BatchFunc func(ctx context.Context, paths []string)

// Inbox watches a directory and reports new or rewritten files in batches
type Inbox struct {
	Dir      string
	Debounce time.Duration
	Accept   func(path string) bool

	logger *logging.Logger
	ready  chan struct{}
}

// NewInbox creates a watcher for dir. accept filters event paths; nil accepts all.
func NewInbox(dir string, debounce time.Duration, accept func(string) bool, logger *logging.Logger) *Inbox {
	if logger == nil {
		logger = logging.NewNop()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Inbox{
		Dir:      dir,
		Debounce: debounce,
		Accept:   accept,
		logger:   logger.Named("watcher"),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the directory is being watched
func (w *Inbox) Ready() <-chan struct{} {
	return w.ready
}

// Run blocks until ctx is done, calling handle on the loop goroutine
func (w *Inbox) Run(ctx context.Context, handle BatchFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Dir, err)
	}
	close(w.ready)

	timer := time.NewTimer(w.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.interesting(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			sort.Strings(batch)
			pending = make(map[string]struct{})

			w.logger.Debug(ctx, "inbox settled", zap.Int("files", len(batch)))
			handle(ctx, batch)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, "watcher error", zap.Error(err))

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Inbox) interesting(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	// Editor swap files and hidden temporaries
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") || strings.HasSuffix(base, "~") {
		return false
	}

	if w.Accept != nil && !w.Accept(event.Name) {
		return false
	}
	return true
}
