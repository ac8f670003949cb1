package service

import (
	"net/url"
	"strconv"
	"strings"

	"metadata-enricher/internal/collection"
	"metadata-enricher/internal/diagnostic"
	"metadata-enricher/internal/record"
)

const componentQuery = "query"

type queryValue struct {
	text string
	ok   bool
}

// queryFormatter renders scalar values for a query string. Bytes and nested
// records have no query representation.
type queryFormatter struct{}

func (queryFormatter) VisitString(v record.String) queryValue {
	s := strings.TrimSpace(string(v))
	return queryValue{s, s != ""}
}

func (queryFormatter) VisitInt32(v record.Int32) queryValue {
	return queryValue{strconv.FormatInt(int64(v), 10), true}
}

func (queryFormatter) VisitFloat64(v record.Float64) queryValue {
	return queryValue{strconv.FormatFloat(float64(v), 'f', -1, 64), true}
}

func (queryFormatter) VisitFloat32(v record.Float32) queryValue {
	return queryValue{strconv.FormatFloat(float64(v), 'f', -1, 32), true}
}

func (queryFormatter) VisitBool(v record.Bool) queryValue {
	return queryValue{strconv.FormatBool(bool(v)), true}
}

func (queryFormatter) VisitBytes(record.Bytes) queryValue   { return queryValue{} }
func (queryFormatter) VisitNested(record.Nested) queryValue { return queryValue{} }

// EncodeQuery serializes a parameter record as name=value pairs in field
// order. Each field contributes its first non-empty value only; a string
// holding a delimited collection contributes its first segment.
func EncodeQuery(params *record.Record, d collection.Delimiter) (string, diagnostic.Diagnostics) {
	var (
		diags diagnostic.Diagnostics
		parts []string
	)

	for f := range params.All() {
		switch f.Kind() {
		case record.KindBytes, record.KindRecord:
			diags.AddInfo(diagnostic.CodeQueryValueSkipped,
				f.Kind().String()+" values cannot be sent as query parameters", componentQuery, f.Name)
			continue
		}

		text, found := firstValue(f.Values)
		if !found {
			diags.AddInfo(diagnostic.CodeQueryValueSkipped, "no non-empty value", componentQuery, f.Name)
			continue
		}

		if first, cut := collection.FirstSegment(text, d); cut {
			diags.AddInfo(diagnostic.CodeQueryListTruncated,
				"collection value reduced to its first element", componentQuery, f.Name)
			text = first
		}

		if len(f.Values) > 1 {
			diags.AddInfo(diagnostic.CodeQueryListTruncated,
				"multi-valued field reduced to its first non-empty value", componentQuery, f.Name)
		}

		parts = append(parts, url.QueryEscape(f.Name)+"="+url.QueryEscape(text))
	}

	return strings.Join(parts, "&"), diags
}

func firstValue(values []record.Value) (string, bool) {
	for _, v := range values {
		if qv := record.Visit[queryValue](v, queryFormatter{}); qv.ok {
			return qv.text, true
		}
	}

	return "", false
}

// WithQuery appends an encoded query to base.
func WithQuery(base, query string) string {
	if query == "" {
		return base
	}

	switch {
	case !strings.Contains(base, "?"):
		return base + "?" + query
	case strings.HasSuffix(base, "?"), strings.HasSuffix(base, "&"):
		return base + query
	default:
		return base + "&" + query
	}
}
