package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/notecompacter/compacter/internal/core/domain"
)

const (
	appName = "compacter"

	// MarkerName is the storage marker written on first initialization
	MarkerName = "store.marker.json"

	projectFile    = "project.json"
	uiStateFile    = "ui.json"
	masterFile     = "master.txt"
	componentsDir  = "components"
	projectsDir    = "projects"
	dataDir        = "data"
	configFileName = "config.yaml"
)

// Vault represents the managed storage directory for compacter
type Vault struct {
	RootPath     string
	ProjectsPath string
	DataPath     string
	ConfigPath   string
}

// New creates a new Vault instance with XDG-compliant paths
func New() (*Vault, error) {
	rootPath, rootErr := getVaultRoot()
	configPath, configErr := getConfigPath()
	if rootErr != nil {
		return nil, fmt.Errorf("failed to determine vault root: %w", rootErr)
	}
	if configErr != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", configErr)
	}

	v := NewAt(rootPath)
	v.ConfigPath = configPath
	return v, nil
}

// NewAt creates a Vault rooted at an explicit directory.
// The config path is left for the caller to set.
func NewAt(rootPath string) *Vault {
	return &Vault{
		RootPath:     rootPath,
		ProjectsPath: filepath.Join(rootPath, projectsDir),
		DataPath:     filepath.Join(rootPath, dataDir),
	}
}

// getVaultRoot returns the vault root directory path
// Follows XDG Base Directory specification on Unix and uses AppData on Windows
func getVaultRoot() (string, error) {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName), nil
	}

	return filepath.Join(homeDir, ".local", "share", appName), nil
}

// ConfigFilePath returns where the config file lives
func ConfigFilePath() (string, error) {
	return getConfigPath()
}

func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFileName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName+"-config", configFileName), nil
	}

	return filepath.Join(homeDir, ".config", appName, configFileName), nil
}

// Initialize creates the vault directory structure and the storage marker
// if they don't exist
func (v *Vault) Initialize() error {
	directories := []string{
		v.RootPath,
		v.ProjectsPath,
		v.DataPath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if _, err := os.Stat(v.MarkerPath()); os.IsNotExist(err) {
		marker := map[string]any{
			"createdAt": domain.FormatTimestamp(time.Now()),
			"note":      "compacter storage marker",
		}
		data, err := json.MarshalIndent(marker, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode marker: %w", err)
		}
		if err := os.WriteFile(v.MarkerPath(), data, 0644); err != nil {
			return fmt.Errorf("failed to write marker: %w", err)
		}
	}

	return nil
}

// Exists checks if the vault has been initialized
func (v *Vault) Exists() bool {
	info, err := os.Stat(v.RootPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// MarkerPath returns the path of the storage marker
func (v *Vault) MarkerPath() string {
	return filepath.Join(v.RootPath, MarkerName)
}

// ProjectPath returns the directory owned by a project
func (v *Vault) ProjectPath(id string) string {
	return filepath.Join(v.ProjectsPath, id)
}

// ProjectFilePath returns the path of a project's metadata
func (v *Vault) ProjectFilePath(id string) string {
	return filepath.Join(v.ProjectPath(id), projectFile)
}

// UIStatePath returns the path of a project's UI state record
func (v *Vault) UIStatePath(id string) string {
	return filepath.Join(v.ProjectPath(id), uiStateFile)
}

// MasterPath returns the path of a project's master document
func (v *Vault) MasterPath(id string) string {
	return filepath.Join(v.ProjectPath(id), masterFile)
}

// ComponentsPath returns the directory holding a project's components
func (v *Vault) ComponentsPath(id string) string {
	return filepath.Join(v.ProjectPath(id), componentsDir)
}

// ComponentPath returns the path of a component's content file
func (v *Vault) ComponentPath(id, internalName string) string {
	return filepath.Join(v.ComponentsPath(id), internalName)
}

// ComponentMetaPath returns the path of a component's metadata sidecar
func (v *Vault) ComponentMetaPath(id, internalName string) string {
	return filepath.Join(v.ComponentsPath(id), domain.MetaStem(internalName)+domain.MetaExt)
}

// StoragePaths reports the storage locations
func (v *Vault) StoragePaths() (domain.StoragePaths, error) {
	if v.RootPath == "" {
		return domain.StoragePaths{}, fmt.Errorf("vault root not set")
	}
	return domain.StoragePaths{
		Root:       v.RootPath,
		DataDir:    v.DataPath,
		MarkerName: MarkerName,
	}, nil
}

// ReadMarker returns the storage marker contents
func (v *Vault) ReadMarker() (map[string]any, error) {
	data, err := os.ReadFile(v.MarkerPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read marker: %w", err)
	}
	var marker map[string]any
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, fmt.Errorf("failed to parse marker: %w", err)
	}
	return marker, nil
}
