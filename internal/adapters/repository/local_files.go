package repository

import (
	"fmt"
	"os"

	"github.com/notecompacter/compacter/internal/core/ports"
)

// LocalFiles reads ingestion sources and writes export destinations on the
// local file system
type LocalFiles struct{}

var _ ports.ExternalFiles = LocalFiles{}

// ReadText reads a whole file
func (LocalFiles) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// WriteText writes a whole file
func (LocalFiles) WriteText(path string, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
