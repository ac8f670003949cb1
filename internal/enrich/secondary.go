package enrich

import (
	"context"
	"fmt"
	"strconv"

	"github.com/qri-io/jsonpointer"

	"metadata-enricher/internal/collection"
	"metadata-enricher/internal/diagnostic"
	"metadata-enricher/internal/errors"
	"metadata-enricher/internal/fetch"
	"metadata-enricher/internal/record"
	"metadata-enricher/internal/service"
)

// secondary runs the follow-up lookups in configuration order. Only
// configuration errors abort the request.
func (r *request) secondary(ctx context.Context) error {
	for _, lk := range r.o.cfg.Secondary {
		res := r.runSecondary(ctx, lk)
		r.res.Secondary = append(r.res.Secondary, res)

		switch {
		case res.Err == nil:
		case errors.IsConfiguration(res.Err):
			return res.Err
		default:
			r.logger.WarnContext(ctx, "secondary lookup failed", "lookup", lk.Name, "url", res.URL, "error", res.Err)
			r.res.Diagnostics.AddWarning(diagnostic.CodeSecondaryFailed, res.Err.Error(), "secondary", lk.Name)
		}
	}

	return nil
}

func (r *request) runSecondary(ctx context.Context, lk SecondaryLookup) SecondaryResult {
	res := SecondaryResult{Name: lk.Name}

	key, ok := r.secondaryKey(lk)
	if !ok {
		res.Skipped = true
		r.res.Diagnostics.AddInfo(diagnostic.CodeSecondarySkipped, "no key in primary result", "secondary", lk.Name)

		return res
	}

	res.Key = key

	bindings := make(map[string]string, len(lk.Bindings)+1)
	for k, v := range lk.Bindings {
		bindings[k] = v
	}

	bindings[lk.keyBinding()] = key

	call, err := service.NewCallSpec(lk.URLTemplate, bindings)
	if err != nil {
		res.Err = err
		return res
	}

	res.URL = call.URL()

	var result *record.Record

	switch lk.Kind {
	case LookupBytes:
		result, res.Err = r.fetchImage(ctx, res.URL, lk.TargetField)
	default:
		result, res.Err = r.fetchMapped(ctx, res.URL)
	}

	if res.Err != nil {
		return res
	}

	merged, conflicts := Merge(r.merged, result, r.opts.Overwrite)
	r.merged = merged
	r.addConflicts(conflicts)
	res.Fields = result.Names()
	r.dump("secondary "+lk.Name, result)

	return res
}

func (r *request) fetchImage(ctx context.Context, url, target string) (*record.Record, error) {
	data, err := r.o.fetcher.FetchBytes(ctx, url)
	if err != nil {
		return nil, classify(err, errors.WrapFetch, "Secondary", "GET "+url)
	}

	if ct, ok := fetch.SniffImage(data); !ok {
		return nil, errors.WrapFetch(fmt.Errorf("%w: %s is not an image", errors.ErrUnsupported, ct),
			component, "Secondary", "check content type")
	}

	out := record.New()
	out.Set(target, record.Bytes(data))

	return out, nil
}

func (r *request) fetchMapped(ctx context.Context, url string) (*record.Record, error) {
	doc, err := r.o.fetcher.FetchJSON(ctx, url)
	if err != nil {
		return nil, classify(err, errors.WrapFetch, "Secondary", "GET "+url)
	}

	norm, err := collection.Normalize(doc)
	for _, fe := range collection.FieldErrors(err) {
		r.res.Diagnostics.AddWarning(diagnostic.CodeFlattenFailed, fe.Err.Error(), "secondary", fe.Field)
	}

	mapped, diags, err := r.o.mapper.FromServiceParameters(norm, r.registry)
	r.res.Diagnostics.Merge(diags)

	if err != nil {
		return nil, err
	}

	return mapped, nil
}

// secondaryKey extracts the lookup key from the merged record or, through
// the JSON pointer, from the selected raw candidate.
func (r *request) secondaryKey(lk SecondaryLookup) (string, bool) {
	if lk.KeyField != "" {
		if v, ok := r.merged.Get(lk.KeyField, 0); ok {
			if key, ok := keyString(v, r.o.mapper.Delimiter()); ok {
				return key, true
			}
		}
	}

	if lk.KeyPointer == "" {
		return "", false
	}

	ptr, err := jsonpointer.Parse(lk.KeyPointer)
	if err != nil {
		r.logger.Warn("invalid key pointer", "lookup", lk.Name, "pointer", lk.KeyPointer, "error", err)
		return "", false
	}

	// The library returns (nil, nil) for nonexistent paths
	found, err := ptr.Eval(r.raw[r.res.SelectedIndex].ToAny())
	if err != nil || found == nil {
		return "", false
	}

	return anyKey(found)
}

func keyString(v record.Value, d collection.Delimiter) (string, bool) {
	switch tv := v.(type) {
	case record.String:
		s, _ := collection.FirstSegment(string(tv), d)
		return s, s != ""
	case record.Int32, record.Float64, record.Float32:
		return record.Format(v), true
	}

	return "", false
}

func anyKey(v any) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, tv != ""
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(tv), 'f', -1, 32), true
	case int32:
		return strconv.FormatInt(int64(tv), 10), true
	case []any:
		if len(tv) > 0 {
			return anyKey(tv[0])
		}
	case map[string]any:
		// index-keyed array
		if first, ok := tv["0"]; ok {
			return anyKey(first)
		}
	}

	return "", false
}
