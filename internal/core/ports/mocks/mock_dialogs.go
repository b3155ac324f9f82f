package mocks

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/notecompacter/compacter/internal/core/domain"
)

// MockFileSelector returns a canned selection and records requests
type MockFileSelector struct {
	Selection domain.Selection
	Err       error
	Requests  []domain.OpenRequest
}

// SelectFiles returns the configured selection
func (m *MockFileSelector) SelectFiles(ctx context.Context, req domain.OpenRequest) (domain.Selection, error) {
	m.Requests = append(m.Requests, req)
	return m.Selection, m.Err
}

// MockSaveTarget returns a canned destination and records requests
type MockSaveTarget struct {
	Destination domain.SaveDestination
	Err         error
	Requests    []domain.SaveRequest
}

// SelectSaveTarget returns the configured destination
func (m *MockSaveTarget) SelectSaveTarget(ctx context.Context, req domain.SaveRequest) (domain.SaveDestination, error) {
	m.Requests = append(m.Requests, req)
	return m.Destination, m.Err
}

// MockFiles is an in-memory ports.ExternalFiles
type MockFiles struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewMockFiles creates an empty in-memory file set
func NewMockFiles() *MockFiles {
	return &MockFiles{files: make(map[string]string)}
}

// Put stores a file
func (m *MockFiles) Put(path, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = text
}

// Get returns a stored file
func (m *MockFiles) Get(path string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.files[path]
	return text, ok
}

// ReadText returns the stored text or a not-exist error
func (m *MockFiles) ReadText(path string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return text, nil
}

// WriteText stores text at path
func (m *MockFiles) WriteText(path string, text string) error {
	m.Put(path, text)
	return nil
}

// MockClipboard records the last copied text
type MockClipboard struct {
	Text string
	Err  error
}

// WriteAll records text
func (m *MockClipboard) WriteAll(text string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Text = text
	return nil
}

// MockStorage is a canned ports.StorageInspector
type MockStorage struct {
	Paths     domain.StoragePaths
	PathsErr  error
	Marker    map[string]any
	MarkerErr error
}

// StoragePaths returns the configured paths
func (m *MockStorage) StoragePaths() (domain.StoragePaths, error) { return m.Paths, m.PathsErr }

// ReadMarker returns the configured marker
func (m *MockStorage) ReadMarker() (map[string]any, error) { return m.Marker, m.MarkerErr }
