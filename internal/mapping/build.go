package mapping

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/time/rate"

	"metadata-enricher/internal/alias"
	"metadata-enricher/internal/collection"
	"metadata-enricher/internal/enrich"
	"metadata-enricher/internal/fetch"
	"metadata-enricher/internal/mapper"
	"metadata-enricher/internal/store"
)

// DefaultMimeType is reported for files whose extension has no entry.
const DefaultMimeType = "application/octet-stream"

// AliasEntries expands the 121 shorthand into bidirectional aliases and
// appends the explicit list. The shorthand goes first, ordered by local name,
// so the reverse-alias precedence does not depend on map iteration.
func (p *Profile) AliasEntries() []AliasDef {
	locals := make([]string, 0, len(p.OneToOne))
	for local := range p.OneToOne {
		locals = append(locals, local)
	}

	sort.Strings(locals)

	out := make([]AliasDef, 0, len(locals)+len(p.Aliases))
	for _, local := range locals {
		out = append(out, AliasDef{Source: local, Target: p.OneToOne[local], Bidirectional: true})
	}

	return append(out, p.Aliases...)
}

// AliasTable builds the alias table. The first failing alias aborts.
func (p *Profile) AliasTable(logger *slog.Logger) (*alias.Table, error) {
	tbl := alias.New(logger)

	for _, a := range p.AliasEntries() {
		if err := tbl.AddAlias(a.Source, a.Target, a.Bidirectional); err != nil {
			return nil, err
		}
	}

	return tbl, nil
}

// Mapper builds a record mapper over the profile's aliases and delimiter.
func (p *Profile) Mapper(logger *slog.Logger) (*mapper.Mapper, error) {
	d, err := collection.ParseDelimiter(p.Delimiter)
	if err != nil {
		return nil, configError("Mapper", err)
	}

	tbl, err := p.AliasTable(logger)
	if err != nil {
		return nil, err
	}

	opts := []mapper.Option{mapper.WithDelimiter(d)}
	if logger != nil {
		opts = append(opts, mapper.WithLogger(logger))
	}

	return mapper.New(tbl, opts...), nil
}

// EnrichConfig converts the lookup sections into an orchestrator config.
func (p *Profile) EnrichConfig() enrich.Config {
	cfg := enrich.Config{
		SearchURL:         p.Service.Search,
		Bindings:          p.Service.Bindings,
		CandidatesField:   p.Service.Candidates,
		TitleField:        p.Service.TitleField,
		NameField:         store.NameField,
		PlaceholderTitles: append([]string(nil), p.PlaceholderTitles...),
	}

	for _, s := range p.Secondary {
		cfg.Secondary = append(cfg.Secondary, enrich.SecondaryLookup{
			Name:        s.Name,
			Kind:        enrich.LookupKind(s.Kind),
			URLTemplate: s.URL,
			KeyField:    s.KeyField,
			KeyPointer:  s.KeyPointer,
			KeyBinding:  s.KeyBinding,
			Bindings:    s.Bindings,
			TargetField: s.TargetField,
		})
	}

	return cfg
}

// Selector returns the configured candidate selector.
func (p *Profile) Selector() enrich.CandidateSelector {
	if p.Service.Selector != SelectorClosestTitle {
		return enrich.FirstCandidate{}
	}

	fields := []string(p.Service.QueryFields)
	if len(fields) == 0 {
		fields = []string{p.Service.TitleField, store.NameField}
	}

	return enrich.ClosestTitle{
		QueryFields: fields,
		TitleField:  p.Service.TitleField,
		MinScore:    p.Service.Threshold(),
	}
}

// Filter returns the internal attribute filter.
func (p *Profile) Filter() store.Filter {
	if p.InternalPrefixes == nil {
		return store.DefaultFilter()
	}

	return store.Filter{Prefixes: append([]string(nil), p.InternalPrefixes...)}
}

// MimeType returns the MIME type registered for the file's extension.
func (p *Profile) MimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	for e, mime := range p.Extensions {
		if strings.ToLower(e) == ext {
			return mime
		}
	}

	return DefaultMimeType
}

// FetchOptions returns the fetch client options of the http section.
func (p *Profile) FetchOptions() []fetch.Option {
	opts := []fetch.Option{
		fetch.WithTimeout(p.HTTP.Timeout),
		fetch.WithUserAgent(p.HTTP.UserAgent),
	}

	if p.HTTP.RateLimit > 0 {
		opts = append(opts, fetch.WithRateLimiter(rate.NewLimiter(rate.Limit(p.HTTP.RateLimit), p.HTTP.Burst)))
	}

	return opts
}
