package domain

// CreateResult is returned by project creation
type CreateResult struct {
	ID string `json:"id"`
}

// IngestResult reports how many files were copied and how many bytes of
// banner-wrapped text were appended to the master
type IngestResult struct {
	Copied        int `json:"copied"`
	AppendedBytes int `json:"appendedBytes"`
}

// ExportResult reports where the master was written, if anywhere
type ExportResult struct {
	Saved bool   `json:"saved"`
	Path  string `json:"path,omitempty"`
}

// RebuildResult reports how many components were concatenated and the
// resulting master size in bytes
type RebuildResult struct {
	Built int `json:"built"`
	Bytes int `json:"bytes"`
}

// StorageInfo describes where the store keeps its data.
// Failures are reported through OK and Error rather than a Go error.
type StorageInfo struct {
	OK     bool           `json:"ok"`
	Info   StoragePaths   `json:"info"`
	Marker map[string]any `json:"marker,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// StoragePaths lists the storage locations
type StoragePaths struct {
	Root       string `json:"root"`
	DataDir    string `json:"dataDir"`
	MarkerName string `json:"markerName"`
}
