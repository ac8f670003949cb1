package match

import (
	"testing"
)

func TestRankTitles(t *testing.T) {
	candidates := RankTitles("dune.pdf", []string{"Dune Messiah", "Dune", "Children of Dune"})

	if len(candidates) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(candidates))
	}

	best := candidates.Best()
	if best.Index != 1 || best.Title != "Dune" {
		t.Errorf("Expected best match to be index 1 'Dune', got %d %q", best.Index, best.Title)
	}

	if best.Score != 1.0 {
		t.Errorf("Expected exact score, got %f", best.Score)
	}

	if candidates[1].Index != 0 {
		t.Errorf("Expected 'Dune Messiah' second, got %q", candidates[1].Title)
	}
}

func TestRankTitles_TiesKeepResponseOrder(t *testing.T) {
	candidates := RankTitles("x", []string{"Dune", "Dune", "Dune"})

	for i, c := range candidates {
		if c.Index != i {
			t.Errorf("position %d: expected index %d, got %d", i, i, c.Index)
		}
	}

	if !candidates.IsAmbiguous(DefaultAmbiguityThreshold) {
		t.Error("identical scores should be ambiguous")
	}
}

func TestCandidateList_Helpers(t *testing.T) {
	candidates := CandidateList{
		{Index: 0, Score: 0.9},
		{Index: 1, Score: 0.6},
		{Index: 2, Score: 0.3},
	}

	if got := len(candidates.Top(2)); got != 2 {
		t.Errorf("Top(2) returned %d", got)
	}

	if got := len(candidates.Top(10)); got != 3 {
		t.Errorf("Top(10) returned %d", got)
	}

	if got := len(candidates.AboveThreshold(DefaultMinScore)); got != 2 {
		t.Errorf("AboveThreshold returned %d", got)
	}

	if candidates.IsAmbiguous(0.1) {
		t.Error("gap of 0.3 should not be ambiguous")
	}

	var empty CandidateList
	if empty.Best() != nil {
		t.Error("Best on empty list should be nil")
	}
}
