package storage

import (
	"context"
	"database/sql"
	"testing"
)

func seedInteractionDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := t.TempDir() + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	ctx := context.Background()
	for _, u := range []struct{ id, name string }{{"user-1", "alice"}, {"user-2", "bob"}} {
		if err := EnsureUser(ctx, db, u.id, u.name); err != nil {
			t.Fatalf("EnsureUser() error = %v", err)
		}
	}

	cats := NewCategoryRepo(db)
	for _, c := range []Category{
		{ID: "cat-tech", Name: "Technology"},
		{ID: "cat-sci", Name: "Science"},
	} {
		if err := cats.Upsert(ctx, c); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	posts := NewPostRepo(db)
	for _, p := range []Post{
		{ID: "post-1", UserID: "user-2", CategoryID: "cat-tech", Title: "t1", Content: "c"},
		{ID: "post-2", UserID: "user-2", CategoryID: "cat-sci", Title: "t2", Content: "c"},
		{ID: "post-3", UserID: "user-1", CategoryID: "cat-tech", Title: "t3", Content: "c"},
	} {
		if err := posts.Upsert(ctx, &p); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	return db
}

func TestInteractionRepoRecentVotes(t *testing.T) {
	db := seedInteractionDB(t)
	ctx := context.Background()
	repo := NewInteractionRepo(db)

	if err := repo.AddVote(ctx, "post-1", "user-1", 1); err != nil {
		t.Fatalf("AddVote() error = %v", err)
	}
	if err := repo.AddVote(ctx, "post-2", "user-1", -1); err != nil {
		t.Fatalf("AddVote() error = %v", err)
	}
	// Re-voting replaces the value, not adds a row.
	if err := repo.AddVote(ctx, "post-1", "user-1", -1); err != nil {
		t.Fatalf("AddVote() replace error = %v", err)
	}

	votes, err := repo.RecentVotes(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("RecentVotes() error = %v", err)
	}
	if len(votes) != 2 {
		t.Fatalf("RecentVotes() returned %d votes, want 2", len(votes))
	}
	for _, v := range votes {
		if v.PostID == "post-1" {
			if v.Value != -1 {
				t.Errorf("vote on post-1 value = %d, want -1 after replace", v.Value)
			}
			if v.PostCategoryID != "cat-tech" {
				t.Errorf("vote on post-1 category = %q, want cat-tech", v.PostCategoryID)
			}
		}
	}
}

func TestInteractionRepoRecentCommentsJoinsCategory(t *testing.T) {
	db := seedInteractionDB(t)
	ctx := context.Background()
	repo := NewInteractionRepo(db)

	if err := repo.AddComment(ctx, "comment-1", "post-2", "user-1", "interesting"); err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	comments, err := repo.RecentComments(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("RecentComments() error = %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("RecentComments() returned %d comments, want 1", len(comments))
	}
	if comments[0].PostCategoryID != "cat-sci" {
		t.Errorf("comment category = %q, want cat-sci", comments[0].PostCategoryID)
	}
}

func TestInteractionRepoSeenPostIDs(t *testing.T) {
	db := seedInteractionDB(t)
	ctx := context.Background()
	repo := NewInteractionRepo(db)

	if err := repo.AddVote(ctx, "post-1", "user-1", 1); err != nil {
		t.Fatalf("AddVote() error = %v", err)
	}
	if err := repo.AddBookmark(ctx, "post-2", "user-1"); err != nil {
		t.Fatalf("AddBookmark() error = %v", err)
	}
	// Bookmarking twice is a no-op.
	if err := repo.AddBookmark(ctx, "post-2", "user-1"); err != nil {
		t.Fatalf("AddBookmark() repeat error = %v", err)
	}

	seen, err := repo.SeenPostIDs(ctx, "user-1")
	if err != nil {
		t.Fatalf("SeenPostIDs() error = %v", err)
	}
	// post-3 is authored by user-1 and counts as seen.
	for _, id := range []string{"post-1", "post-2", "post-3"} {
		if !seen[id] {
			t.Errorf("SeenPostIDs() missing %s", id)
		}
	}
	if len(seen) != 3 {
		t.Errorf("SeenPostIDs() returned %d ids, want 3", len(seen))
	}

	empty, err := repo.SeenPostIDs(ctx, "user-ghost")
	if err != nil {
		t.Fatalf("SeenPostIDs() for unknown user error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("SeenPostIDs() for unknown user returned %d ids, want 0", len(empty))
	}
}
