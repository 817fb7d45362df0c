package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_post_store.go -package=mocks discourse-ai/internal/storage PostStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// PostStore defines the interface for post storage operations.
type PostStore interface {
	// GetByID gets a post by id. Returns nil and ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*Post, error)
	// Upsert inserts a new post or updates an existing one.
	Upsert(ctx context.Context, post *Post) error
	// List returns posts in insertion order for batch indexing.
	List(ctx context.Context, limit, offset int) ([]Post, error)
	// Recent returns the newest posts, excluding those authored by
	// excludeUserID when it is non-empty.
	Recent(ctx context.Context, excludeUserID string, limit int) ([]Post, error)
	// RecentByUser returns the newest posts authored by userID.
	RecentByUser(ctx context.Context, userID string, limit int) ([]Post, error)
	// KeywordSearch returns posts whose title or content contains the
	// query, newest first. It backs degraded-mode search.
	KeywordSearch(ctx context.Context, query string, limit int) ([]Post, error)
	// TopOutsideCategories returns the highest-scored posts whose category
	// is not in excludeCategoryIDs. It feeds serendipity injection.
	TopOutsideCategories(ctx context.Context, excludeCategoryIDs []string, limit int) ([]Post, error)
}

// PostRepo provides methods for post operations.
// It implements the PostStore interface.
type PostRepo struct {
	db *sql.DB
}

// NewPostRepo creates a new PostRepo.
func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{db: db}
}

const postColumns = "id, user_id, category_id, title, content, score, comment_count, trending, created_at"

// GetByID gets a post by id. Returns nil and ErrNotFound if not found.
func (r *PostRepo) GetByID(ctx context.Context, id string) (*Post, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id = ?", id)

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query post: %w", err)
	}
	return post, nil
}

// Upsert inserts a new post or updates an existing one.
func (r *PostRepo) Upsert(ctx context.Context, post *Post) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, category_id, title, content, score, comment_count, trending, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))
		 ON CONFLICT (id) DO UPDATE SET
		 title = excluded.title, content = excluded.content, score = excluded.score,
		 comment_count = excluded.comment_count, trending = excluded.trending`,
		post.ID, post.UserID, post.CategoryID, post.Title, post.Content,
		post.Score, post.CommentCount, boolToInt(post.Trending), timeOrNil(post.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}
	return nil
}

// List returns posts for batch indexing. The order is created_at with id as
// a tiebreaker so pagination stays stable when several posts share the same
// timestamp.
func (r *PostRepo) List(ctx context.Context, limit, offset int) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts ORDER BY created_at, id LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanPosts(rows)
}

// Recent returns the newest posts, excluding those authored by
// excludeUserID when it is non-empty.
func (r *PostRepo) Recent(ctx context.Context, excludeUserID string, limit int) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE (? = '' OR user_id != ?) ORDER BY created_at DESC LIMIT ?",
		excludeUserID, excludeUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent posts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanPosts(rows)
}

// RecentByUser returns the newest posts authored by userID.
func (r *PostRepo) RecentByUser(ctx context.Context, userID string, limit int) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE user_id = ? ORDER BY created_at DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user posts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanPosts(rows)
}

// KeywordSearch returns posts whose title or content contains the query,
// newest first.
func (r *PostRepo) KeywordSearch(ctx context.Context, query string, limit int) ([]Post, error) {
	pattern := "%" + strings.TrimSpace(query) + "%"
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE title LIKE ? OR content LIKE ? ORDER BY created_at DESC LIMIT ?",
		pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to run keyword search: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanPosts(rows)
}

// TopOutsideCategories returns the highest-scored posts whose category is
// not in excludeCategoryIDs.
func (r *PostRepo) TopOutsideCategories(ctx context.Context, excludeCategoryIDs []string, limit int) ([]Post, error) {
	query := "SELECT " + postColumns + " FROM posts"
	args := make([]any, 0, len(excludeCategoryIDs)+1)
	if len(excludeCategoryIDs) > 0 {
		placeholders := strings.Repeat("?,", len(excludeCategoryIDs))
		query += " WHERE category_id NOT IN (" + placeholders[:len(placeholders)-1] + ")"
		for _, id := range excludeCategoryIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY score DESC, created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top posts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanPosts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var post Post
	var trending int
	var createdAtStr string

	err := row.Scan(&post.ID, &post.UserID, &post.CategoryID, &post.Title, &post.Content,
		&post.Score, &post.CommentCount, &trending, &createdAtStr)
	if err != nil {
		return nil, err
	}

	post.Trending = trending != 0
	post.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	return &post, nil
}

func scanPosts(rows *sql.Rows) ([]Post, error) {
	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}
	return posts, nil
}

// parseTimestamp handles the DATETIME formats SQLite emits.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timeOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
