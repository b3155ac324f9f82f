package domain

// OpenRequest describes what the host's file-selection dialog should offer
type OpenRequest struct {
	Title      string
	Extensions []string
	Multiple   bool
}

// Selection is the outcome of a file-selection dialog.
// Cancellation is a normal result, not an error.
type Selection struct {
	Canceled bool
	Paths    []string
}

// Empty reports whether nothing usable was selected
func (s Selection) Empty() bool {
	return s.Canceled || len(s.Paths) == 0
}

// SaveRequest describes what the host's file-save dialog should offer
type SaveRequest struct {
	Title       string
	DefaultName string
	Extensions  []string
}

// SaveDestination is the outcome of a file-save dialog
type SaveDestination struct {
	Canceled bool
	Path     string
}
