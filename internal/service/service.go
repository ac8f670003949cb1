// Package service describes calls to an external lookup service: URL
// templates with $placeholder tokens and the serialization of a parameter
// record into a query string.
package service

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"metadata-enricher/internal/errors"
)

var placeholderRe = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// CallSpec is a URL template whose $placeholders are all bound.
type CallSpec struct {
	Template string
	Bindings map[string]string
}

// NewCallSpec validates that every placeholder in template has a binding.
func NewCallSpec(template string, bindings map[string]string) (CallSpec, error) {
	if strings.TrimSpace(template) == "" {
		return CallSpec{}, errors.WrapConfiguration(
			fmt.Errorf("%w: empty url template", errors.ErrInvalidConfig),
			"CallSpec", "NewCallSpec", "validate template")
	}

	var missing []string

	for _, name := range Placeholders(template) {
		if _, ok := bindings[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return CallSpec{}, errors.WrapConfiguration(
			fmt.Errorf("%w: $%s", errors.ErrMissingParameter, strings.Join(missing, ", $")),
			"CallSpec", "NewCallSpec", "bind placeholders")
	}

	b := make(map[string]string, len(bindings))
	for k, v := range bindings {
		b[k] = v
	}

	return CallSpec{Template: template, Bindings: b}, nil
}

// Placeholders returns the distinct placeholder names in template, sorted.
func Placeholders(template string) []string {
	seen := make(map[string]struct{})

	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		seen[m[1]] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// URL substitutes the bound values into the template. Values in the path are
// path-escaped, values after the first '?' are query-escaped.
func (c CallSpec) URL() string {
	query := strings.IndexByte(c.Template, '?')

	var b strings.Builder

	last := 0

	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(c.Template, -1) {
		b.WriteString(c.Template[last:loc[0]])

		value := c.Bindings[c.Template[loc[2]:loc[3]]]
		if query >= 0 && loc[0] > query {
			b.WriteString(url.QueryEscape(value))
		} else {
			b.WriteString(url.PathEscape(value))
		}

		last = loc[1]
	}

	b.WriteString(c.Template[last:])

	return b.String()
}

// With returns a copy of c with extra bindings layered over the existing ones.
func (c CallSpec) With(bindings map[string]string) (CallSpec, error) {
	merged := make(map[string]string, len(c.Bindings)+len(bindings))
	for k, v := range c.Bindings {
		merged[k] = v
	}

	for k, v := range bindings {
		merged[k] = v
	}

	return NewCallSpec(c.Template, merged)
}
