package dialog

import (
	"context"
	"path/filepath"

	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/internal/core/ports"
)

// StaticSelector answers file dialogs with a fixed list of paths.
// It backs non-interactive commands and the inbox watcher.
type StaticSelector struct {
	Paths []string
	// OnSkip, when set, is told about each path the extension filter drops
	OnSkip func(path string)
}

var _ ports.FileSelector = StaticSelector{}

// SelectFiles returns the configured paths, filtered by the requested
// extensions. No paths behaves like a canceled dialog.
func (s StaticSelector) SelectFiles(ctx context.Context, req domain.OpenRequest) (domain.Selection, error) {
	var paths []string
	for _, p := range s.Paths {
		if hasExtension(p, req.Extensions) {
			paths = append(paths, p)
		} else if s.OnSkip != nil {
			s.OnSkip(p)
		}
	}
	if len(paths) == 0 {
		return domain.Selection{Canceled: true}, nil
	}
	return domain.Selection{Paths: paths}, nil
}

// StaticSaveTarget answers save dialogs with a fixed path. An empty path
// behaves like a canceled dialog; a directory gets the default name.
type StaticSaveTarget struct {
	Path string
}

var _ ports.SaveTarget = StaticSaveTarget{}

// SelectSaveTarget implements ports.SaveTarget
func (s StaticSaveTarget) SelectSaveTarget(ctx context.Context, req domain.SaveRequest) (domain.SaveDestination, error) {
	if s.Path == "" {
		return domain.SaveDestination{Canceled: true}, nil
	}
	return domain.SaveDestination{Path: resolveSavePath(s.Path, req.DefaultName)}, nil
}

func resolveSavePath(path, defaultName string) string {
	if isDir(path) && defaultName != "" {
		return filepath.Join(path, defaultName)
	}
	return path
}
