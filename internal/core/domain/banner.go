package domain

import (
	"fmt"
	"strings"
)

const (
	bannerStart = "=== COMPONENT START ==="
)

// BannerOpen renders the three header lines placed before a component's text
func BannerOpen(internalName, originalName, addedAt string) string {
	if addedAt == "" {
		addedAt = UnknownOriginal
	}
	return fmt.Sprintf("%s\nOriginal: %s\nInternal: %s | Added: %s\n",
		bannerStart, originalName, internalName, addedAt)
}

// BannerClose renders the footer placed after a component's text
func BannerClose(internalName string) string {
	return fmt.Sprintf("\n=== COMPONENT END (%s) ===\n", internalName)
}

// Section wraps a component's text in its banner
func Section(c Component) string {
	return BannerOpen(c.InternalName, c.OriginalName, c.AddedAt) + c.Text + BannerClose(c.InternalName)
}

// AppendSection joins a section onto master text so exactly one newline
// separates them. An empty master gets no leading newline.
func AppendSection(master, section string) string {
	if master != "" && !strings.HasSuffix(master, "\n") {
		master += "\n"
	}
	return master + section
}
