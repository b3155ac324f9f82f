package dialog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/notecompacter/compacter/internal/core/domain"
	"github.com/notecompacter/compacter/internal/core/ports"
)

// ErrNoCandidates is returned when the glob finds nothing to offer
var ErrNoCandidates = errors.New("no matching files")

// FuzzySelector offers files under Root that match Pattern in a fuzzy
// finder. Tab marks entries when the request allows multiple files.
type FuzzySelector struct {
	Root    string
	Pattern string
}

var _ ports.FileSelector = (*FuzzySelector)(nil)

// NewFuzzySelector creates a selector rooted at dir
func NewFuzzySelector(root, pattern string) *FuzzySelector {
	return &FuzzySelector{Root: root, Pattern: pattern}
}

// Candidates returns the files the selector would offer, sorted
func (s *FuzzySelector) Candidates(extensions []string) ([]string, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, err
	}

	pattern := s.Pattern
	if pattern == "" {
		pattern = "**/*"
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		if !hasExtension(match, extensions) {
			continue
		}
		files = append(files, match)
	}
	sort.Strings(files)
	return files, nil
}

// SelectFiles implements ports.FileSelector
func (s *FuzzySelector) SelectFiles(ctx context.Context, req domain.OpenRequest) (domain.Selection, error) {
	files, err := s.Candidates(req.Extensions)
	if err != nil {
		return domain.Selection{}, err
	}
	if len(files) == 0 {
		return domain.Selection{}, fmt.Errorf("%w in %s", ErrNoCandidates, s.Root)
	}

	label := func(i int) string {
		rel, err := filepath.Rel(s.Root, files[i])
		if err != nil {
			return files[i]
		}
		return rel
	}
	opts := []fuzzyfinder.Option{
		fuzzyfinder.WithContext(ctx),
		fuzzyfinder.WithHeader(req.Title),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return previewFile(files[i], h)
		}),
	}

	var picked []int
	if req.Multiple {
		picked, err = fuzzyfinder.FindMulti(files, label, opts...)
	} else {
		var idx int
		idx, err = fuzzyfinder.Find(files, label, opts...)
		picked = []int{idx}
	}
	if err != nil {
		// Esc, Ctrl+C and a canceled context all count as a dismissed dialog
		if errors.Is(err, fuzzyfinder.ErrAbort) || errors.Is(err, context.Canceled) {
			return domain.Selection{Canceled: true}, nil
		}
		return domain.Selection{}, err
	}

	paths := make([]string, 0, len(picked))
	for _, i := range picked {
		paths = append(paths, files[i])
	}
	return domain.Selection{Paths: paths}, nil
}

func hasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// previewFile returns the first lines of a file for the preview pane
func previewFile(path string, height int) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Error loading preview: %v", err)
	}
	lines := strings.Split(string(data), "\n")
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
