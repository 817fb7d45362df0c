package storage

import "time"

// Post is one discussion post.
type Post struct {
	ID           string
	UserID       string
	CategoryID   string
	Title        string
	Content      string
	Score        int
	CommentCount int
	Trending     bool
	CreatedAt    time.Time
}

// Comment is one comment on a post. PostCategoryID is joined in from the
// parent post for preference aggregation.
type Comment struct {
	ID             string
	PostID         string
	UserID         string
	Content        string
	PostCategoryID string
	CreatedAt      time.Time
}

// Vote is one up/down vote on a post.
type Vote struct {
	PostID         string
	UserID         string
	Value          int
	PostCategoryID string
	CreatedAt      time.Time
}

// Bookmark marks a post saved by a user.
type Bookmark struct {
	PostID         string
	UserID         string
	PostCategoryID string
	CreatedAt      time.Time
}

// Category is one discussion category.
type Category struct {
	ID          string
	Name        string
	Description string
}

// UserHistory is the bounded recent interaction history backing one
// recommendation request.
type UserHistory struct {
	Posts     []Post
	Comments  []Comment
	Votes     []Vote
	Bookmarks []Bookmark
}

// IsEmpty reports whether the user has no interaction history at all.
func (h UserHistory) IsEmpty() bool {
	return len(h.Posts) == 0 && len(h.Comments) == 0 && len(h.Votes) == 0 && len(h.Bookmarks) == 0
}
