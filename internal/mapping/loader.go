package mapping

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"metadata-enricher/internal/collection"
	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/fetch"
)

// CurrentVersion is the profile schema version this package reads.
const CurrentVersion = "1"

// Selector names accepted in service.selector.
const (
	SelectorFirst        = "first"
	SelectorClosestTitle = "closest_title"
)

// DefaultMinScore is the closest_title threshold when min_score is unset.
const DefaultMinScore = 0.5

//go:embed profiles/openlibrary.yaml
var openLibraryProfile []byte

// LoadFile loads and parses a YAML profile from the given path.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfiguration(err, "Profile", "LoadFile", "read "+path)
	}

	return Parse(data)
}

// Parse parses YAML data into a Profile and applies the defaults.
func Parse(data []byte) (*Profile, error) {
	var p Profile

	err := yaml.Unmarshal(data, &p)
	if err != nil {
		return nil, errors.WrapConfiguration(
			fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
			"Profile", "Parse", "parse profile YAML")
	}

	// Apply defaults and normalize
	applyDefaults(&p)

	return &p, nil
}

// DefaultProfile returns the built-in OpenLibrary book profile.
func DefaultProfile() (*Profile, error) {
	return Parse(openLibraryProfile)
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(p *Profile) {
	if p.Version == "" {
		p.Version = CurrentVersion
	}

	if p.Delimiter == "" {
		p.Delimiter = string(collection.Semicolon)
	}

	if p.Service.Selector == "" {
		p.Service.Selector = SelectorFirst
	}

	if p.Service.MinScore == nil {
		score := DefaultMinScore
		p.Service.MinScore = &score
	}

	for i := range p.Secondary {
		if p.Secondary[i].Kind == "" {
			p.Secondary[i].Kind = "json"
		}
	}

	if p.HTTP.Timeout == 0 {
		p.HTTP.Timeout = fetch.DefaultTimeout
	}

	if p.HTTP.UserAgent == "" {
		p.HTTP.UserAgent = fetch.DefaultUserAgent
	}

	if p.HTTP.RateLimit > 0 && p.HTTP.Burst == 0 {
		p.HTTP.Burst = 1
	}
}

// Marshal serializes a Profile to YAML.
func Marshal(p *Profile) ([]byte, error) {
	return yaml.Marshal(p)
}

// WriteFile writes a Profile to the given path, creating the directory.
func WriteFile(p *Profile, path string) error {
	data, err := Marshal(p)
	if err != nil {
		return errors.WrapConfiguration(err, "Profile", "WriteFile", "marshal profile")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapConfiguration(err, "Profile", "WriteFile", "create directory")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapConfiguration(err, "Profile", "WriteFile", "write "+path)
	}

	return nil
}
