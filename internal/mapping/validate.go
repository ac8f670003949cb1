package mapping

import (
	"fmt"
	"strings"

	"github.com/qri-io/jsonpointer"

	"metadata-enricher/internal/collection"
	"metadata-enricher/internal/diagnostic"
	"metadata-enricher/internal/enrich"
	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/service"
)

// Validate checks a profile before any engine is built from it. It is a
// structural check: URL templates, kinds, key sources and alias consistency.
// Reachability of the service is not tested.
func Validate(p *Profile) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if p == nil {
		res.AddError("profile_is_nil", "profile is nil", "", "")
		return res
	}

	if p.Version != CurrentVersion {
		res.AddError("unsupported_version",
			fmt.Sprintf("profile version %q, expected %q", p.Version, CurrentVersion), "profile", "version")
	}

	validateAliases(res, p)

	if _, err := collection.ParseDelimiter(p.Delimiter); err != nil {
		res.AddError("invalid_delimiter", err.Error(), "profile", "delimiter")
	}

	for mime, reg := range p.Types {
		for field, kind := range reg {
			if !kind.IsValid() {
				res.AddError("invalid_kind", fmt.Sprintf("type of %q for %s is not set", field, mime), "types", field)
			}
		}
	}

	for ext := range p.Extensions {
		if !strings.HasPrefix(ext, ".") {
			res.AddWarning("extension_without_dot",
				fmt.Sprintf("extension %q never matches a file name", ext), "extensions", ext)
		}
	}

	validateService(res, p)

	seen := map[string]struct{}{}

	for i := range p.Secondary {
		s := &p.Secondary[i]

		if _, ok := seen[s.Name]; ok {
			res.AddError("duplicate_secondary", fmt.Sprintf("duplicate secondary lookup %q", s.Name), "secondary", s.Name)
		}

		seen[s.Name] = struct{}{}

		validateSecondary(res, s)
	}

	if p.HTTP.Timeout < 0 {
		res.AddError("invalid_timeout", "http timeout is negative", "http", "timeout")
	}

	if p.HTTP.RateLimit < 0 || p.HTTP.Burst < 0 {
		res.AddError("invalid_rate_limit", "rate limit and burst must not be negative", "http", "rate_limit")
	}

	return res
}

func validateAliases(res *diagnostic.Diagnostics, p *Profile) {
	entries := p.AliasEntries()
	if len(entries) == 0 {
		res.AddError("no_aliases", "profile defines no aliases", "aliases", "")
		return
	}

	for _, a := range entries {
		if a.Source == "" || a.Target == "" {
			res.AddError("empty_alias", fmt.Sprintf("alias %q has an empty side", a.String()), "aliases", a.Source)
		}
	}

	// A dry run over the table surfaces conflicts and its own observations.
	tbl, err := p.AliasTable(nil)
	if err != nil {
		res.AddError("alias_conflict", err.Error(), "aliases", "")
		return
	}

	res.Merge(tbl.Diagnostics())
}

func validateService(res *diagnostic.Diagnostics, p *Profile) {
	svc := &p.Service

	if svc.Search == "" {
		res.AddError("missing_search_url", "service.search is empty", "service", "search")
	} else if _, err := service.NewCallSpec(svc.Search, svc.Bindings); err != nil {
		res.AddError("invalid_search_url", err.Error(), "service", "search")
	}

	switch svc.Selector {
	case SelectorFirst:
	case SelectorClosestTitle:
		if svc.TitleField == "" {
			res.AddError("missing_title_field", "closest_title selector needs service.title_field", "service", "selector")
		}
	default:
		res.AddError("unknown_selector", fmt.Sprintf("unknown selector %q", svc.Selector), "service", "selector")
	}

	if score := svc.Threshold(); score < 0 || score > 1 {
		res.AddError("invalid_min_score", fmt.Sprintf("min_score %v outside [0, 1]", score), "service", "min_score")
	}

	if svc.TitleField != "" && len(p.PlaceholderTitles) == 0 {
		res.AddInfo("no_placeholder_titles", "only blank names are replaced by the title", "profile", "placeholder_titles")
	}
}

func validateSecondary(res *diagnostic.Diagnostics, s *SecondaryDef) {
	if s.Name == "" {
		res.AddError("missing_secondary_name", "secondary lookup without name", "secondary", "")
	}

	if s.KeyField == "" && s.KeyPointer == "" {
		res.AddError("missing_key_source", "secondary lookup needs key_field or key_pointer", "secondary", s.Name)
	}

	if s.KeyPointer != "" {
		if _, err := jsonpointer.Parse(s.KeyPointer); err != nil {
			res.AddError("invalid_key_pointer", fmt.Sprintf("key_pointer %q: %v", s.KeyPointer, err), "secondary", s.Name)
		}
	}

	keyBinding := s.KeyBinding
	if keyBinding == "" {
		keyBinding = enrich.DefaultKeyBinding
	}

	bindings := map[string]string{keyBinding: ""}
	for k, v := range s.Bindings {
		bindings[k] = v
	}

	if s.URL == "" {
		res.AddError("missing_secondary_url", "secondary lookup without url", "secondary", s.Name)
	} else if _, err := service.NewCallSpec(s.URL, bindings); err != nil {
		res.AddError("invalid_secondary_url", err.Error(), "secondary", s.Name)
	}

	switch enrich.LookupKind(s.Kind) {
	case enrich.LookupJSON:
	case enrich.LookupBytes:
		if s.TargetField == "" {
			res.AddError("missing_target_field", "bytes lookup needs target_field", "secondary", s.Name)
		}
	default:
		res.AddError("unknown_lookup_kind", fmt.Sprintf("unknown kind %q", s.Kind), "secondary", s.Name)
	}
}

func configError(method string, err error) error {
	return errors.WrapConfiguration(fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err), "Profile", method, "build")
}
