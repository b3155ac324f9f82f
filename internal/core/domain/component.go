package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// ComponentExt is the suffix of every stored component file
	ComponentExt = ".txt"

	// MetaExt is the suffix of a component's metadata sidecar
	MetaExt = ".meta.json"

	// UnknownOriginal is used when a component has no readable sidecar
	UnknownOriginal = "(unknown)"

	// TimestampLayout is ISO-8601 UTC with millisecond precision
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

	randomBytes = 8
)

// ErrComponentNotFound is returned when a requested component file does not exist
var ErrComponentNotFound = errors.New("component not found")

// ComponentMeta is the content of a component's .meta.json sidecar
type ComponentMeta struct {
	OriginalName string `json:"originalName"`
	AddedAt      string `json:"addedAt"`
}

// ComponentSummary describes a stored component without its text.
// AddedAt is empty when the sidecar is missing or unparseable.
type ComponentSummary struct {
	InternalName string `json:"internalName"`
	OriginalName string `json:"originalName"`
	AddedAt      string `json:"addedAt,omitempty"`
}

// Component is a stored component with its verbatim text
type Component struct {
	ComponentSummary
	Text string `json:"text"`
}

// HasTimestamp reports whether the component carries an ingestion timestamp
func (c ComponentSummary) HasTimestamp() bool {
	return c.AddedAt != ""
}

// DisplayAddedAt returns the timestamp or a placeholder for display
func (c ComponentSummary) DisplayAddedAt() string {
	if c.AddedAt == "" {
		return UnknownOriginal
	}
	return c.AddedAt
}

// SummaryFromMeta merges a sidecar (which may be nil) into a summary,
// applying the defaults used for missing metadata.
func SummaryFromMeta(internalName string, meta *ComponentMeta) ComponentSummary {
	s := ComponentSummary{
		InternalName: internalName,
		OriginalName: UnknownOriginal,
	}
	if meta == nil {
		return s
	}
	if meta.OriginalName != "" {
		s.OriginalName = meta.OriginalName
	}
	s.AddedAt = meta.AddedAt
	return s
}

// FormatTimestamp renders t as an ISO-8601 UTC timestamp with milliseconds
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses an addedAt string; ok is false when it is missing
// or not in TimestampLayout
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NewInternalName generates "<unix-millis>_<16 hex chars>.txt".
// A nil random reader uses crypto/rand.
func NewInternalName(now time.Time, random io.Reader) (string, error) {
	if random == nil {
		random = rand.Reader
	}
	buf := make([]byte, randomBytes)
	if _, err := io.ReadFull(random, buf); err != nil {
		return "", fmt.Errorf("failed to generate component name: %w", err)
	}
	return fmt.Sprintf("%d_%s%s", now.UnixMilli(), hex.EncodeToString(buf), ComponentExt), nil
}

// MetaStem strips the first ".txt" from an internal name to form the sidecar stem
func MetaStem(internalName string) string {
	return strings.Replace(internalName, ComponentExt, "", 1)
}

// IsComponentFile reports whether a directory entry name is component content
func IsComponentFile(name string) bool {
	return strings.HasSuffix(name, ComponentExt)
}

// ValidateInternalName rejects names that are not plain file names
func ValidateInternalName(name string) error {
	if !isPlainName(name) {
		return fmt.Errorf("%w: invalid name %q", ErrComponentNotFound, name)
	}
	return nil
}
