package vectorstore

// Payload field names shared across collections. These are the only fields
// filter predicates may reference; everything else in a payload is
// passthrough metadata.
const (
	FieldType       = "type"
	FieldCategoryID = "categoryId"
	FieldUserID     = "userId"
	FieldCreatedTs  = "createdTs"
)

// Entity type tags stored under FieldType.
const (
	TypePost     = "post"
	TypeComment  = "comment"
	TypeCategory = "category"
	TypeUser     = "user"
	TypeProfile  = "profile"
)

// BasePayload carries the filterable fields common to every indexed entity.
type BasePayload struct {
	Type       string
	CategoryID string
	UserID     string
	CreatedTs  int64
	// Extra holds per-type extension fields that need no filter index.
	Extra map[string]any
}

func (b BasePayload) toMap() map[string]any {
	m := make(map[string]any, 4+len(b.Extra))
	m[FieldType] = b.Type
	if b.CategoryID != "" {
		m[FieldCategoryID] = b.CategoryID
	}
	if b.UserID != "" {
		m[FieldUserID] = b.UserID
	}
	if b.CreatedTs != 0 {
		m[FieldCreatedTs] = b.CreatedTs
	}
	for k, v := range b.Extra {
		m[k] = v
	}
	return m
}

// PostPayload is the indexed metadata for a post.
type PostPayload struct {
	BasePayload
	Title         string
	ContentLength int
	Score         int
	CommentCount  int
	Trending      bool
}

// ToMap flattens the payload for upsert.
func (p PostPayload) ToMap() map[string]any {
	m := p.BasePayload.toMap()
	m["title"] = p.Title
	m["contentLength"] = int64(p.ContentLength)
	m["score"] = int64(p.Score)
	m["commentCount"] = int64(p.CommentCount)
	m["trending"] = p.Trending
	return m
}

// CommentPayload is the indexed metadata for a comment.
type CommentPayload struct {
	BasePayload
	PostID string
}

// ToMap flattens the payload for upsert.
func (p CommentPayload) ToMap() map[string]any {
	m := p.BasePayload.toMap()
	m["postId"] = p.PostID
	return m
}

// ProfilePayload is the snapshot metadata for a user interaction profile in
// the recommendations collection.
type ProfilePayload struct {
	BasePayload
	// CandidatePostIDs are the user's top-rated post ids, harvested by the
	// collaborative branch when this profile surfaces as a neighbor.
	CandidatePostIDs []string
	ActivityLevel    string
}

// ToMap flattens the payload for upsert.
func (p ProfilePayload) ToMap() map[string]any {
	m := p.BasePayload.toMap()
	ids := make([]any, len(p.CandidatePostIDs))
	for i, id := range p.CandidatePostIDs {
		ids[i] = id
	}
	m["candidatePostIds"] = ids
	m["activityLevel"] = p.ActivityLevel
	return m
}

// PayloadString reads a string field from a search result payload.
func PayloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	s, _ := payload[key].(string)
	return s
}

// PayloadInt reads an integer field from a search result payload, tolerating
// the numeric widenings the store round-trip introduces.
func PayloadInt(payload map[string]any, key string) int64 {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// PayloadStrings reads a string-list field from a search result payload.
func PayloadStrings(payload map[string]any, key string) []string {
	if payload == nil {
		return nil
	}
	raw, ok := payload[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
