package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// UnnamedProject is shown for projects whose metadata is missing or unreadable
	UnnamedProject = "(unnamed)"
)

// ErrInvalidID is returned for project ids that cannot name a directory
var ErrInvalidID = errors.New("invalid project id")

// Project is the metadata persisted in project.json
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// ProjectSummary is the lightweight listing entry for a project
type ProjectSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MasterDocument is the aggregated text of a project together with its display name
type MasterDocument struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// NewProject builds the metadata for a freshly created project.
// A blank name is replaced by "Project <id>".
func NewProject(id, name string, now time.Time) Project {
	return Project{
		ID:        id,
		Name:      ResolveProjectName(id, name),
		CreatedAt: FormatTimestamp(now),
	}
}

// ResolveProjectName trims the requested name and falls back to a placeholder
func ResolveProjectName(id, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("Project %s", id)
	}
	return name
}

// ValidateID rejects ids that would escape the projects directory
func ValidateID(id string) error {
	if !isPlainName(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func isPlainName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}
