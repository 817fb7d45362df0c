package search

import (
	"strings"
	"testing"
	"time"
)

func TestParseLens(t *testing.T) {
	for _, name := range []string{"trending", "exciting", "deep-dive", "new", "top", "ai-recommended", "rising", "expert-picks"} {
		lens, err := ParseLens(name)
		if err != nil {
			t.Errorf("ParseLens(%q) error = %v", name, err)
		}
		if string(lens) != name {
			t.Errorf("ParseLens(%q) = %q", name, lens)
		}
	}

	if lens, err := ParseLens(""); err != nil || lens != LensAIRecommended {
		t.Errorf("ParseLens(\"\") = %q, %v, want ai-recommended default", lens, err)
	}

	if _, err := ParseLens("sideways"); err == nil {
		t.Error("ParseLens(sideways) error = nil, want validation error")
	}
}

func TestLensRewriteEmbedsQuery(t *testing.T) {
	for lens := range lenses {
		rewritten := lens.Rewrite("quantum computing")
		if !strings.Contains(rewritten, "quantum computing") {
			t.Errorf("lens %s rewrite %q does not contain the query", lens, rewritten)
		}
		if rewritten == "quantum computing" {
			t.Errorf("lens %s left the query unframed", lens)
		}
	}
}

func TestLensFilterFragments(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	deepDive := lenses[LensDeepDive].conditions(now)
	if len(deepDive) != 1 || deepDive[0].Field != "contentLength" || deepDive[0].Gte == nil {
		t.Errorf("deep-dive fragment = %+v, want contentLength lower bound", deepDive)
	}

	trending := lenses[LensTrending].conditions(now)
	if len(trending) != 1 || trending[0].Field != "trending" {
		t.Errorf("trending fragment = %+v, want trending flag match", trending)
	}

	newConds := lenses[LensNew].conditions(now)
	if len(newConds) != 1 || newConds[0].Gte == nil {
		t.Fatalf("new fragment = %+v, want createdTs lower bound", newConds)
	}
	want := float64(now.Add(-48 * time.Hour).Unix())
	if *newConds[0].Gte != want {
		t.Errorf("new lower bound = %v, want %v", *newConds[0].Gte, want)
	}

	if conds := lenses[LensAIRecommended].conditions(now); len(conds) != 0 {
		t.Errorf("ai-recommended fragment = %+v, want none", conds)
	}
}

func TestRecencyBonus(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	fresh := recencyBonus(map[string]any{"createdTs": now.Unix()}, now)
	if fresh < 0.09 {
		t.Errorf("bonus for fresh post = %v, want near 0.1", fresh)
	}
	old := recencyBonus(map[string]any{"createdTs": now.AddDate(0, -1, 0).Unix()}, now)
	if old != 0 {
		t.Errorf("bonus for month-old post = %v, want 0", old)
	}
	if undated := recencyBonus(map[string]any{}, now); undated != 0 {
		t.Errorf("bonus for undated post = %v, want 0", undated)
	}
}
