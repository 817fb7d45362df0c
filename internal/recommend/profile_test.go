package recommend

import (
	"strings"
	"testing"
	"time"

	"discourse-ai/internal/storage"
)

func sampleHistory(now time.Time) storage.UserHistory {
	return storage.UserHistory{
		Posts: []storage.Post{
			{ID: "post-1", CategoryID: "cat-tech", Title: "Profiling Go services", CreatedAt: now.AddDate(0, 0, -1)},
		},
		Comments: []storage.Comment{
			{ID: "comment-1", PostID: "post-2", PostCategoryID: "cat-tech", Content: "great profiling tips", CreatedAt: now.AddDate(0, 0, -2)},
		},
		Votes: []storage.Vote{
			{PostID: "post-3", PostCategoryID: "cat-sci", Value: 1, CreatedAt: now.AddDate(0, 0, -3)},
			{PostID: "post-4", PostCategoryID: "cat-art", Value: -1, CreatedAt: now.AddDate(0, 0, -1)},
		},
		Bookmarks: []storage.Bookmark{
			{PostID: "post-5", PostCategoryID: "cat-tech", CreatedAt: now.AddDate(0, 0, -5)},
		},
	}
}

func TestBuildProfileCategoryScores(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	profile := BuildProfile("user-1", sampleHistory(now), now, 0.95)

	if len(profile.Interactions) != 5 {
		t.Fatalf("interactions = %d, want 5", len(profile.Interactions))
	}
	if profile.CategoryScores["cat-tech"] <= profile.CategoryScores["cat-sci"] {
		t.Errorf("cat-tech score %v should exceed cat-sci score %v",
			profile.CategoryScores["cat-tech"], profile.CategoryScores["cat-sci"])
	}
	// The downvoted category carries a negative score.
	if profile.CategoryScores["cat-art"] >= 0 {
		t.Errorf("cat-art score = %v, want negative after downvote", profile.CategoryScores["cat-art"])
	}
}

func TestBuildProfileTimeDecay(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	history := storage.UserHistory{
		Votes: []storage.Vote{
			{PostID: "fresh", PostCategoryID: "cat-tech", Value: 1, CreatedAt: now},
			{PostID: "stale", PostCategoryID: "cat-tech", Value: 1, CreatedAt: now.AddDate(0, 0, -30)},
		},
	}
	profile := BuildProfile("user-1", history, now, 0.95)

	var fresh, stale float64
	for _, in := range profile.Interactions {
		switch in.PostID {
		case "fresh":
			fresh = in.Rating
		case "stale":
			stale = in.Rating
		}
	}
	if stale >= fresh {
		t.Errorf("stale rating %v should be decayed below fresh rating %v", stale, fresh)
	}
}

func TestTopCategoriesSkipsNegative(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	profile := BuildProfile("user-1", sampleHistory(now), now, 0.95)

	cats := profile.TopCategories(5)
	if len(cats) == 0 || cats[0] != "cat-tech" {
		t.Errorf("TopCategories() = %v, want cat-tech first", cats)
	}
	for _, cat := range cats {
		if cat == "cat-art" {
			t.Error("TopCategories() includes downvoted cat-art")
		}
	}
}

func TestTopRatedPostIDs(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	profile := BuildProfile("user-1", sampleHistory(now), now, 0.95)

	ids := profile.TopRatedPostIDs(10)
	if len(ids) == 0 {
		t.Fatal("TopRatedPostIDs() returned nothing")
	}
	if ids[0] != "post-1" {
		t.Errorf("top post = %s, want post-1 (authored, highest weight)", ids[0])
	}
	for _, id := range ids {
		if id == "post-4" {
			t.Error("TopRatedPostIDs() includes downvoted post-4")
		}
	}
}

func TestPseudoDocumentMentionsInterests(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	profile := BuildProfile("user-1", sampleHistory(now), now, 0.95)

	doc := profile.PseudoDocument()
	if !strings.Contains(doc, "profiling") {
		t.Errorf("pseudo-document %q does not mention the dominant topic", doc)
	}
	if !strings.Contains(doc, "cat-tech") {
		t.Errorf("pseudo-document %q does not mention the top category", doc)
	}

	empty := BuildProfile("user-2", storage.UserHistory{}, now, 0.95)
	if doc := empty.PseudoDocument(); doc == "" {
		t.Error("pseudo-document for empty profile is empty")
	}
}

func TestActivityLevel(t *testing.T) {
	cases := []struct {
		interactions int
		want         string
	}{
		{0, ActivityLow},
		{4, ActivityLow},
		{5, ActivityMedium},
		{19, ActivityMedium},
		{20, ActivityHigh},
	}
	for _, tc := range cases {
		if got := activityLevel(tc.interactions); got != tc.want {
			t.Errorf("activityLevel(%d) = %q, want %q", tc.interactions, got, tc.want)
		}
	}
}
