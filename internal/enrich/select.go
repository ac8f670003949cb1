package enrich

import (
	"strings"

	"metadata-enricher/internal/match"
	"metadata-enricher/internal/record"
)

// CandidateSelector picks one of several mapped candidates. It returns an
// index into candidates, which always holds at least one element.
type CandidateSelector interface {
	Select(local *record.Record, candidates []*record.Record) int
	Name() string
}

// FirstCandidate takes the first result in response order.
type FirstCandidate struct{}

func (FirstCandidate) Select(*record.Record, []*record.Record) int { return 0 }

func (FirstCandidate) Name() string { return "first" }

// ClosestTitle picks the candidate whose TitleField is most similar to the
// first non-blank local QueryFields value. Without a query, or when no
// candidate reaches MinScore, it falls back to the first candidate.
type ClosestTitle struct {
	QueryFields []string
	TitleField  string
	MinScore    float64
}

func (c ClosestTitle) Name() string { return "closest_title" }

func (c ClosestTitle) Select(local *record.Record, candidates []*record.Record) int {
	query := ""

	for _, f := range c.QueryFields {
		if v := firstString(local, f); v != "" {
			query = v
			break
		}
	}

	if query == "" {
		return 0
	}

	titles := make([]string, len(candidates))
	for i, cand := range candidates {
		titles[i] = firstString(cand, c.TitleField)
	}

	best := match.RankTitles(query, titles).Best()
	if best == nil || best.Score < c.MinScore {
		return 0
	}

	return best.Index
}

func firstString(rec *record.Record, field string) string {
	if rec == nil {
		return ""
	}

	for _, s := range rec.Strings(field) {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}

	return ""
}
