package enrich

import (
	"fmt"
	"strings"

	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/service"
)

// LookupKind selects how a secondary lookup's response is consumed.
type LookupKind string

const (
	// LookupJSON maps the JSON response back through the alias table.
	LookupJSON LookupKind = "json"
	// LookupBytes stores the raw (image) body into a bytes field.
	LookupBytes LookupKind = "bytes"
)

// DefaultKeyBinding is the placeholder a secondary lookup's key is bound to.
const DefaultKeyBinding = "key"

// SecondaryLookup is a follow-up request keyed off the primary result.
type SecondaryLookup struct {
	Name        string
	Kind        LookupKind
	URLTemplate string
	// KeyField names a field of the merged local record holding the key.
	KeyField string
	// KeyPointer is a JSON pointer into the selected raw service candidate.
	// Used when KeyField is empty or absent.
	KeyPointer string
	// KeyBinding is the placeholder the key is bound to; "key" by default.
	KeyBinding string
	Bindings   map[string]string
	// TargetField receives the body of a bytes lookup.
	TargetField string
}

// Config describes the primary lookup and its follow-ups.
type Config struct {
	// SearchURL is the primary lookup URL template. The mapped parameters
	// are appended as the query string.
	SearchURL string
	Bindings  map[string]string
	// CandidatesField names the response field holding the result list.
	// Empty means the response itself is the only candidate.
	CandidatesField string
	// TitleField is the local field substituted for a missing name.
	TitleField string
	// NameField is the local pseudo-field carrying the entity's name.
	NameField         string
	PlaceholderTitles []string
	Secondary         []SecondaryLookup
}

// Validate checks the configuration and the primary URL template.
func (c Config) Validate() error {
	var problems []string

	if _, err := service.NewCallSpec(c.SearchURL, c.Bindings); err != nil {
		problems = append(problems, err.Error())
	}

	if c.NameField == "" {
		problems = append(problems, "name field is empty")
	}

	for i, s := range c.Secondary {
		label := fmt.Sprintf("secondary[%d] %q", i, s.Name)

		if s.KeyField == "" && s.KeyPointer == "" {
			problems = append(problems, label+": neither key field nor key pointer set")
		}

		bindings := map[string]string{s.keyBinding(): ""}
		for k, v := range s.Bindings {
			bindings[k] = v
		}

		if _, err := service.NewCallSpec(s.URLTemplate, bindings); err != nil {
			problems = append(problems, label+": "+err.Error())
		}

		switch s.Kind {
		case LookupJSON:
		case LookupBytes:
			if s.TargetField == "" {
				problems = append(problems, label+": bytes lookup without target field")
			}
		default:
			problems = append(problems, fmt.Sprintf("%s: unknown kind %q", label, s.Kind))
		}
	}

	if len(problems) > 0 {
		return errors.WrapConfiguration(
			fmt.Errorf("%w: %s", errors.ErrInvalidConfig, strings.Join(problems, "; ")),
			"Config", "Validate", "check enrichment config")
	}

	return nil
}

func (s SecondaryLookup) keyBinding() string {
	if s.KeyBinding == "" {
		return DefaultKeyBinding
	}

	return s.KeyBinding
}

// Options carry the per-request flags.
type Options struct {
	// Overwrite lets fetched values replace existing local values.
	Overwrite bool
	// Debug logs intermediate records.
	Debug bool
	// DryRun skips the Emit stage's writes.
	DryRun bool
}
