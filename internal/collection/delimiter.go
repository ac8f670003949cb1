package collection

import (
	"fmt"
	"strings"

	"metadata-enricher/internal/common"
)

// Delimiter separates the elements of a joined string collection.
type Delimiter string

const (
	// Semicolon is the default: "," appears too often inside external values.
	Semicolon Delimiter = ";"
	// Comma is accepted for deployments whose local data already uses it.
	Comma Delimiter = ","
)

// ParseDelimiter validates a configured delimiter. An empty string selects
// Semicolon.
func ParseDelimiter(s string) (Delimiter, error) {
	switch Delimiter(s) {
	case "":
		return Semicolon, nil
	case Semicolon, Comma:
		return Delimiter(s), nil
	}

	return "", fmt.Errorf("unsupported delimiter %q: use %q or %q", s, Semicolon, Comma)
}

// String returns the delimiter text.
func (d Delimiter) String() string {
	return string(d)
}

func (d Delimiter) orDefault() string {
	if d == "" {
		return string(Semicolon)
	}

	return string(d)
}

// Split splits a joined collection, trims every segment and drops the empty
// ones.
func Split(s string, d Delimiter) []string {
	return common.TrimmedNonEmpty(strings.Split(s, d.orDefault()))
}

// Join trims the values, drops the empty ones and joins the rest.
func Join(values []string, d Delimiter) string {
	return strings.Join(common.TrimmedNonEmpty(values), d.orDefault())
}

// FirstSegment returns the first element of a joined collection. A delimiter
// at position 0 is treated as part of the value, not as a separator.
func FirstSegment(s string, d Delimiter) (string, bool) {
	if strings.Index(s, d.orDefault()) <= 0 {
		return s, false
	}

	parts := Split(s, d)
	if len(parts) == 0 {
		return "", true
	}

	return parts[0], true
}
