package common

import "strings"

// UnknownStr is rendered for enum values outside their defined range.
const UnknownStr = "unknown"

// IsBlank reports whether s is empty after trimming white space.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// TrimmedNonEmpty trims every element and drops the blank ones.
func TrimmedNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))

	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}

// ContainsFold reports whether values contains s, ignoring case and
// surrounding white space.
func ContainsFold(values []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}

	return false
}

// HasAnyPrefix reports whether s starts with any of the prefixes.
func HasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}

	return false
}
