package match

import (
	"sort"
)

// Candidate is one lookup result scored against the query title.
type Candidate struct {
	// Index is the position of the candidate in the lookup response.
	Index int
	Title string
	Score float64

	NormalizedTitle string
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankTitles scores every title against query. Returns candidates sorted by
// score (descending), ties keep response order.
func RankTitles(query string, titles []string) CandidateList {
	candidates := make(CandidateList, 0, len(titles))
	queryNorm := NormalizeTitle(query)

	for i, title := range titles {
		norm := NormalizeTitle(title)

		candidates = append(candidates, Candidate{
			Index:           i,
			Title:           title,
			Score:           LevenshteinNormalized(queryNorm, norm),
			NormalizedTitle: norm,
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Index < c[j].Index
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if there are none.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].Score-c[1].Score < threshold
}

// AboveThreshold returns candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Scoring thresholds used by the closest-title selector.
const (
	// DefaultMinScore is the minimum similarity for a candidate to win over
	// response order.
	DefaultMinScore = 0.5
	// DefaultAmbiguityThreshold is the score difference that marks ambiguity.
	DefaultAmbiguityThreshold = 0.05
)
