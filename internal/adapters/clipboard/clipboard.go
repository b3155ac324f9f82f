package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"

	"github.com/notecompacter/compacter/internal/core/ports"
)

// ErrUnsupported is returned when no clipboard utility is available
var ErrUnsupported = errors.New("clipboard not supported on this system (install xclip, xsel or wl-clipboard)")

// System writes to the operating system clipboard
type System struct{}

var _ ports.Clipboard = System{}

// WriteAll implements ports.Clipboard
func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}
