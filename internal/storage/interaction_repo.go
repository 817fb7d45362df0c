package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_interaction_store.go -package=mocks discourse-ai/internal/storage InteractionStore

import (
	"context"
	"database/sql"
	"fmt"
)

// InteractionStore defines the interface for reading a user's bounded recent
// interaction history: comments, votes, and bookmarks, each joined with the
// parent post's category for preference aggregation.
type InteractionStore interface {
	RecentComments(ctx context.Context, userID string, limit int) ([]Comment, error)
	RecentVotes(ctx context.Context, userID string, limit int) ([]Vote, error)
	RecentBookmarks(ctx context.Context, userID string, limit int) ([]Bookmark, error)
	// SeenPostIDs returns the set of post ids the user has interacted with
	// in any way, for filtering already-seen recommendations.
	SeenPostIDs(ctx context.Context, userID string) (map[string]bool, error)
}

// InteractionRepo provides methods for interaction history operations.
// It implements the InteractionStore interface.
type InteractionRepo struct {
	db *sql.DB
}

// NewInteractionRepo creates a new InteractionRepo.
func NewInteractionRepo(db *sql.DB) *InteractionRepo {
	return &InteractionRepo{db: db}
}

// RecentComments returns the user's newest comments with post categories.
func (r *InteractionRepo) RecentComments(ctx context.Context, userID string, limit int) ([]Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.post_id, c.user_id, c.content, p.category_id, c.created_at
		 FROM comments c JOIN posts p ON p.id = c.post_id
		 WHERE c.user_id = ? ORDER BY c.created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var comments []Comment
	for rows.Next() {
		var c Comment
		var createdAtStr string
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.PostCategoryID, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if c.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse comment timestamp: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// RecentVotes returns the user's newest votes with post categories.
func (r *InteractionRepo) RecentVotes(ctx context.Context, userID string, limit int) ([]Vote, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT v.post_id, v.user_id, v.value, p.category_id, v.created_at
		 FROM votes v JOIN posts p ON p.id = v.post_id
		 WHERE v.user_id = ? ORDER BY v.created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var votes []Vote
	for rows.Next() {
		var v Vote
		var createdAtStr string
		if err := rows.Scan(&v.PostID, &v.UserID, &v.Value, &v.PostCategoryID, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		if v.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse vote timestamp: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// RecentBookmarks returns the user's newest bookmarks with post categories.
func (r *InteractionRepo) RecentBookmarks(ctx context.Context, userID string, limit int) ([]Bookmark, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.post_id, b.user_id, p.category_id, b.created_at
		 FROM bookmarks b JOIN posts p ON p.id = b.post_id
		 WHERE b.user_id = ? ORDER BY b.created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bookmarks []Bookmark
	for rows.Next() {
		var b Bookmark
		var createdAtStr string
		if err := rows.Scan(&b.PostID, &b.UserID, &b.PostCategoryID, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		if b.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse bookmark timestamp: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// AddVote records or replaces a user's vote on a post.
func (r *InteractionRepo) AddVote(ctx context.Context, postID, userID string, value int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO votes (post_id, user_id, value) VALUES (?, ?, ?)
		 ON CONFLICT(post_id, user_id) DO UPDATE SET value = excluded.value`,
		postID, userID, value)
	if err != nil {
		return fmt.Errorf("failed to add vote: %w", err)
	}
	return nil
}

// AddComment records a comment on a post.
func (r *InteractionRepo) AddComment(ctx context.Context, id, postID, userID, content string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, user_id, content) VALUES (?, ?, ?, ?)`,
		id, postID, userID, content)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

// AddBookmark records a bookmark. Re-bookmarking is a no-op.
func (r *InteractionRepo) AddBookmark(ctx context.Context, postID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bookmarks (post_id, user_id) VALUES (?, ?)
		 ON CONFLICT(post_id, user_id) DO NOTHING`,
		postID, userID)
	if err != nil {
		return fmt.Errorf("failed to add bookmark: %w", err)
	}
	return nil
}

// SeenPostIDs returns every post id the user has voted on, commented on,
// bookmarked, or authored.
func (r *InteractionRepo) SeenPostIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT post_id FROM votes WHERE user_id = ?
		 UNION SELECT post_id FROM comments WHERE user_id = ?
		 UNION SELECT post_id FROM bookmarks WHERE user_id = ?
		 UNION SELECT id FROM posts WHERE user_id = ?`,
		userID, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan seen post id: %w", err)
		}
		seen[id] = true
	}
	return seen, rows.Err()
}
