package ranking

import (
	"math"
	"testing"
	"time"
)

func TestDiversifyKeepsTopCandidate(t *testing.T) {
	cands := []Candidate{
		{ID: "a", Score: 0.9, CategoryID: "tech", AuthorID: "u1"},
		{ID: "b", Score: 0.8, CategoryID: "tech", AuthorID: "u1"},
		{ID: "c", Score: 0.7, CategoryID: "tech", AuthorID: "u1"},
		{ID: "d", Score: 0.6, CategoryID: "tech", AuthorID: "u1"},
		{ID: "e", Score: 0.5, CategoryID: "tech", AuthorID: "u1"},
	}

	got := Diversify(cands, 10, DefaultOptions())
	if len(got) == 0 {
		t.Fatal("Diversify() returned empty list")
	}
	if got[0].ID != "a" {
		t.Errorf("first result = %s, want a (top candidate always kept)", got[0].ID)
	}
	// Everything repeats category and author; only the floor admits more.
	if len(got) != DefaultOptions().MinKeep {
		t.Errorf("Diversify() kept %d candidates, want floor of %d", len(got), DefaultOptions().MinKeep)
	}
}

func TestDiversifyRewardsNewCategoryAndAuthor(t *testing.T) {
	cands := []Candidate{
		{ID: "a", Score: 0.9, CategoryID: "tech", AuthorID: "u1"},
		{ID: "b", Score: 0.8, CategoryID: "tech", AuthorID: "u1"},
		{ID: "c", Score: 0.7, CategoryID: "sci", AuthorID: "u2"},
	}

	got := Diversify(cands, 10, DefaultOptions())
	var c *Candidate
	for i := range got {
		if got[i].ID == "c" {
			c = &got[i]
		}
	}
	if c == nil {
		t.Fatal("Diversify() dropped the diverse candidate c")
	}
	// New category and new author: 0.4 + 0.3. No topics, so the topic
	// signal stays silent.
	if math.Abs(c.Diversity-0.7) > 1e-9 {
		t.Errorf("diversity for c = %v, want 0.7", c.Diversity)
	}
}

func TestDiversifyOutputIsSubset(t *testing.T) {
	cands := []Candidate{
		{ID: "a", Score: 0.9, CategoryID: "tech", AuthorID: "u1", Topics: []string{"go"}},
		{ID: "b", Score: 0.8, CategoryID: "sci", AuthorID: "u2", Topics: []string{"physics"}},
		{ID: "c", Score: 0.7, CategoryID: "art", AuthorID: "u3", Topics: []string{"paint"}},
		{ID: "d", Score: 0.6, CategoryID: "tech", AuthorID: "u1", Topics: []string{"go"}},
	}
	input := make(map[string]bool)
	for _, cand := range cands {
		input[cand.ID] = true
	}

	got := Diversify(cands, 10, DefaultOptions())
	for _, cand := range got {
		if !input[cand.ID] {
			t.Errorf("Diversify() introduced id %s not present in input", cand.ID)
		}
	}
}

func TestDiversifyDedupesKeepingBestScore(t *testing.T) {
	cands := []Candidate{
		{ID: "a", Score: 0.9, CategoryID: "tech", AuthorID: "u1"},
		{ID: "b", Score: 0.8, CategoryID: "sci", AuthorID: "u2"},
		{ID: "a", Score: 0.5, CategoryID: "tech", AuthorID: "u1"},
	}

	got := Diversify(cands, 10, DefaultOptions())
	count := 0
	for _, cand := range got {
		if cand.ID == "a" {
			count++
			if cand.Score < 0.9 {
				t.Errorf("deduped candidate a score = %v, want the best occurrence kept", cand.Score)
			}
		}
	}
	if count != 1 {
		t.Errorf("candidate a appears %d times, want 1", count)
	}
}

func TestDiversifySerendipityTagging(t *testing.T) {
	// e is below the median score but fully diverse: new category, new
	// author, fresh topics.
	cands := []Candidate{
		{ID: "a", Score: 0.9, CategoryID: "tech", AuthorID: "u1", Topics: []string{"go"}},
		{ID: "b", Score: 0.85, CategoryID: "tech", AuthorID: "u1", Topics: []string{"go"}},
		{ID: "c", Score: 0.8, CategoryID: "tech", AuthorID: "u1", Topics: []string{"go"}},
		{ID: "d", Score: 0.75, CategoryID: "tech", AuthorID: "u1", Topics: []string{"go"}},
		{ID: "e", Score: 0.2, CategoryID: "art", AuthorID: "u9", Topics: []string{"paint"}},
	}

	got := Diversify(cands, 10, DefaultOptions())
	var e *Candidate
	for i := range got {
		if got[i].ID == "e" {
			e = &got[i]
		}
	}
	if e == nil {
		t.Fatal("Diversify() dropped fully-diverse candidate e")
	}
	if e.Serendipity == 0 {
		t.Errorf("candidate e serendipity = 0, want tagged as serendipity pick")
	}
	if got[0].ID != "a" {
		t.Errorf("first result = %s, want a (bonus must not dominate ordering)", got[0].ID)
	}
}

func TestDiversifyTruncatesToLimit(t *testing.T) {
	var cands []Candidate
	categories := []string{"tech", "sci", "art", "games", "food", "music"}
	for i, cat := range categories {
		cands = append(cands, Candidate{
			ID:         cat,
			Score:      1 - float64(i)*0.1,
			CategoryID: cat,
			AuthorID:   "u" + cat,
		})
	}

	got := Diversify(cands, 3, DefaultOptions())
	if len(got) != 3 {
		t.Errorf("Diversify() returned %d candidates, want 3", len(got))
	}
}

func TestDiversifyEmptyInput(t *testing.T) {
	if got := Diversify(nil, 10, DefaultOptions()); got != nil {
		t.Errorf("Diversify(nil) = %v, want nil", got)
	}
}

func TestApplyTimeDecay(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	cands := []Candidate{
		{ID: "fresh", Score: 1.0, CreatedAt: now},
		{ID: "old", Score: 1.0, CreatedAt: now.AddDate(0, 0, -10)},
		{ID: "undated", Score: 1.0},
	}

	got := ApplyTimeDecay(cands, now, 0.95)
	if got[0].Score != 1.0 {
		t.Errorf("fresh score = %v, want 1.0", got[0].Score)
	}
	want := math.Pow(0.95, 10)
	if math.Abs(got[1].Score-want) > 1e-9 {
		t.Errorf("old score = %v, want %v", got[1].Score, want)
	}
	if got[2].Score != 1.0 {
		t.Errorf("undated score = %v, want untouched 1.0", got[2].Score)
	}
	// Input is not mutated.
	if cands[1].Score != 1.0 {
		t.Errorf("input mutated: %v", cands[1].Score)
	}
}

func TestApplyTimeDecayInvalidFactor(t *testing.T) {
	now := time.Now()
	cands := []Candidate{{ID: "a", Score: 1.0, CreatedAt: now.AddDate(0, 0, -5)}}
	got := ApplyTimeDecay(cands, now, 0)
	if got[0].Score != 1.0 {
		t.Errorf("score with factor 0 = %v, want unchanged", got[0].Score)
	}
}

func TestDiversifySortsUnorderedInput(t *testing.T) {
	// Time decay can invert the upstream order: stale candidates arrive
	// ahead of a fresh, better-scored one. The fresh candidate must still
	// win the always-kept top slot instead of being squeezed out once the
	// floor is full of same-category entries.
	cands := []Candidate{
		{ID: "old-1", Score: 0.129, CategoryID: "tech", AuthorID: "u1"},
		{ID: "old-2", Score: 0.116, CategoryID: "tech", AuthorID: "u1"},
		{ID: "old-3", Score: 0.103, CategoryID: "tech", AuthorID: "u1"},
		{ID: "fresh", Score: 0.7, CategoryID: "tech", AuthorID: "u1"},
	}

	got := Diversify(cands, 3, DefaultOptions())
	if len(got) == 0 {
		t.Fatal("Diversify() returned empty list")
	}
	if got[0].ID != "fresh" {
		t.Errorf("first result = %s, want fresh (best score regardless of input order)", got[0].ID)
	}
}
