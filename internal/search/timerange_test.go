package search

import (
	"testing"
	"time"
)

func TestTimeRangeLowerBound(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	lower, ok := RangeWeek.LowerBound(now)
	if !ok {
		t.Fatal("LowerBound(week) ok = false, want bound")
	}
	if want := now.Unix() - 7*24*60*60; lower != want {
		t.Errorf("week lower bound = %d, want %d", lower, want)
	}

	if _, ok := RangeAll.LowerBound(now); ok {
		t.Error("LowerBound(all) ok = true, want no bound")
	}

	lower, ok = RangeDay.LowerBound(now)
	if !ok || lower != now.Unix()-24*60*60 {
		t.Errorf("day lower bound = %d, %v", lower, ok)
	}
}

func TestParseTimeRange(t *testing.T) {
	for _, name := range []string{"day", "week", "month", "year", "all"} {
		if _, err := ParseTimeRange(name); err != nil {
			t.Errorf("ParseTimeRange(%q) error = %v", name, err)
		}
	}
	if tr, err := ParseTimeRange(""); err != nil || tr != RangeAll {
		t.Errorf("ParseTimeRange(\"\") = %q, %v, want all", tr, err)
	}
	if _, err := ParseTimeRange("fortnight"); err == nil {
		t.Error("ParseTimeRange(fortnight) error = nil, want validation error")
	}
}

func TestKeywordRelevance(t *testing.T) {
	score := keywordRelevance("go profiling", "Profiling Go services", "a pprof profiling walkthrough for go services")
	if score <= 0 {
		t.Errorf("relevance = %v, want > 0 for overlapping terms", score)
	}

	miss := keywordRelevance("gardening", "Profiling Go services", "pprof walkthrough")
	if miss != 0 {
		t.Errorf("relevance for unrelated query = %v, want 0", miss)
	}

	// Title matches add a bonus on top of the capped content score.
	withTitle := keywordRelevance("profiling", "Profiling Go services", "profiling profiling profiling")
	withoutTitle := keywordRelevance("profiling", "", "profiling profiling profiling")
	if withTitle <= withoutTitle {
		t.Errorf("title match bonus missing: with=%v without=%v", withTitle, withoutTitle)
	}

	if keywordRelevance("the and of", "title", "content") != 0 {
		t.Error("stopword-only query should score 0")
	}
}
