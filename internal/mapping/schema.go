package mapping

import (
	"time"

	"metadata-enricher/internal/convert"
)

// Profile represents the root of a YAML enricher profile. One profile
// configures the lookups against one external service.
type Profile struct {
	// Version of the profile schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// OneToOne is the shorthand for bidirectional aliases: keys are local
	// attribute names, values are service parameter names.
	// Example: { "BOOK:title": "title", "BOOK:authors": "author_name" }
	OneToOne map[string]string `yaml:"121,omitempty"`

	// Aliases lists aliases with an explicit direction. They are added after
	// the 121 entries, in file order.
	Aliases []AliasDef `yaml:"aliases,omitempty"`

	// Delimiter joins multi-valued local string attributes: ";" or ",".
	Delimiter string `yaml:"delimiter,omitempty"`

	// Types holds the expected local kind per attribute, keyed by MIME type.
	Types map[string]convert.Registry `yaml:"types,omitempty"`

	// Extensions maps a file extension (".pdf") to the MIME type used for
	// entities the host discovers on disk.
	Extensions map[string]string `yaml:"extensions,omitempty"`

	Service   ServiceDef     `yaml:"service"`
	Secondary []SecondaryDef `yaml:"secondary,omitempty"`

	// PlaceholderTitles are entity names replaced by the fetched title.
	PlaceholderTitles StringOrArray `yaml:"placeholder_titles,omitempty"`

	// InternalPrefixes hides matching attributes from the engine. Nil selects
	// the built-in list; an empty list hides nothing.
	InternalPrefixes StringOrArray `yaml:"internal_prefixes,omitempty"`

	HTTP HTTPDef `yaml:"http,omitempty"`
}

// AliasDef is one entry of the aliases list. YAML formats supported:
//   - "SEN:NAME -> q"        (one direction)
//   - "BOOK:isbn <-> isbn"   (both directions)
//   - {source: a, target: b, bidirectional: true}
type AliasDef struct {
	Source        string `yaml:"source"`
	Target        string `yaml:"target"`
	Bidirectional bool   `yaml:"bidirectional,omitempty"`
}

// ServiceDef describes the primary lookup.
type ServiceDef struct {
	// Search is the URL template of the primary lookup. The mapped
	// parameters are appended as the query string.
	Search string `yaml:"search"`

	// Bindings fill the $placeholders of Search.
	Bindings map[string]string `yaml:"bindings,omitempty"`

	// Candidates names the response field holding the result list. Empty
	// means the response itself is the only candidate.
	Candidates string `yaml:"candidates,omitempty"`

	// TitleField is the local attribute used when the entity has a
	// placeholder name.
	TitleField string `yaml:"title_field,omitempty"`

	// Selector picks among several candidates: "first" or "closest_title".
	Selector string `yaml:"selector,omitempty"`

	// QueryFields are the local attributes closest_title compares against
	// candidate titles, in order of preference.
	QueryFields StringOrArray `yaml:"query_fields,omitempty"`

	// MinScore is the similarity closest_title requires, in [0, 1]. Unset
	// means DefaultMinScore; 0 accepts the best match whatever its score.
	MinScore *float64 `yaml:"min_score,omitempty"`
}

// Threshold returns MinScore or DefaultMinScore when it is unset.
func (s ServiceDef) Threshold() float64 {
	if s.MinScore == nil {
		return DefaultMinScore
	}

	return *s.MinScore
}

// SecondaryDef describes a follow-up lookup keyed off the primary result.
type SecondaryDef struct {
	Name string `yaml:"name"`

	// Kind is "json" (mapped back through the aliases) or "bytes" (an image
	// stored into TargetField).
	Kind string `yaml:"kind,omitempty"`

	URL string `yaml:"url"`

	// KeyField is a local attribute of the merged record holding the key.
	KeyField string `yaml:"key_field,omitempty"`

	// KeyPointer is a JSON pointer into the selected service candidate.
	KeyPointer string `yaml:"key_pointer,omitempty"`

	// KeyBinding is the placeholder receiving the key; "key" by default.
	KeyBinding string `yaml:"key_binding,omitempty"`

	Bindings    map[string]string `yaml:"bindings,omitempty"`
	TargetField string            `yaml:"target_field,omitempty"`
}

// HTTPDef configures the remote fetcher.
type HTTPDef struct {
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	UserAgent string        `yaml:"user_agent,omitempty"`

	// RateLimit is the number of requests per second; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit,omitempty"`
	Burst     int     `yaml:"burst,omitempty"`
}
