package recommend

import (
	"math"
	"sort"
	"strings"
	"time"

	"discourse-ai/internal/storage"
	"discourse-ai/internal/textprep"
)

// Interaction weights. Authored posts signal the strongest preference,
// downvotes push a category away from the profile.
const (
	weightAuthored = 1.0
	weightComment  = 0.8
	weightBookmark = 0.6
	weightUpvote   = 0.5
	weightDownvote = -0.3
)

// Activity level bands by weighted interaction count.
const (
	ActivityLow    = "low"
	ActivityMedium = "medium"
	ActivityHigh   = "high"
)

// Interaction is one weighted, time-decayed user action over a post.
type Interaction struct {
	PostID     string
	CategoryID string
	// Rating is the interaction weight after time decay.
	Rating float64
	When   time.Time
}

// Profile is a user's aggregated interaction view: the input to every
// recommendation branch.
type Profile struct {
	UserID       string
	Interactions []Interaction
	// CategoryScores accumulates decayed ratings per category.
	CategoryScores map[string]float64
	// InterestTags are the topic tokens harvested from authored post
	// titles and comment texts.
	InterestTags  []string
	ActivityLevel string
}

// BuildProfile folds a user's bounded recent history into a profile. Each
// interaction's rating is its base weight decayed by decayFactor^ageDays.
func BuildProfile(userID string, history storage.UserHistory, now time.Time, decayFactor float64) *Profile {
	p := &Profile{
		UserID:         userID,
		CategoryScores: make(map[string]float64),
	}

	decay := func(when time.Time) float64 {
		if when.IsZero() || decayFactor <= 0 || decayFactor >= 1 {
			return 1
		}
		ageDays := now.Sub(when).Hours() / 24
		if ageDays <= 0 {
			return 1
		}
		return math.Pow(decayFactor, ageDays)
	}

	tagCounts := make(map[string]int)
	addTags := func(text string) {
		for _, token := range textprep.FilterStopwords(textprep.Tokenize(text)) {
			tagCounts[token]++
		}
	}

	for _, post := range history.Posts {
		p.add(Interaction{
			PostID:     post.ID,
			CategoryID: post.CategoryID,
			Rating:     weightAuthored * decay(post.CreatedAt),
			When:       post.CreatedAt,
		})
		addTags(post.Title)
	}
	for _, comment := range history.Comments {
		p.add(Interaction{
			PostID:     comment.PostID,
			CategoryID: comment.PostCategoryID,
			Rating:     weightComment * decay(comment.CreatedAt),
			When:       comment.CreatedAt,
		})
		addTags(comment.Content)
	}
	for _, vote := range history.Votes {
		weight := weightUpvote
		if vote.Value < 0 {
			weight = weightDownvote
		}
		p.add(Interaction{
			PostID:     vote.PostID,
			CategoryID: vote.PostCategoryID,
			Rating:     weight * decay(vote.CreatedAt),
			When:       vote.CreatedAt,
		})
	}
	for _, bookmark := range history.Bookmarks {
		p.add(Interaction{
			PostID:     bookmark.PostID,
			CategoryID: bookmark.PostCategoryID,
			Rating:     weightBookmark * decay(bookmark.CreatedAt),
			When:       bookmark.CreatedAt,
		})
	}

	p.InterestTags = topTags(tagCounts, 12)
	p.ActivityLevel = activityLevel(len(p.Interactions))
	return p
}

func (p *Profile) add(in Interaction) {
	p.Interactions = append(p.Interactions, in)
	if in.CategoryID != "" {
		p.CategoryScores[in.CategoryID] += in.Rating
	}
}

// PositiveInteractionCount counts interactions with a positive rating. The
// collaborative branch activates at 3 or more.
func (p *Profile) PositiveInteractionCount() int {
	n := 0
	for _, in := range p.Interactions {
		if in.Rating > 0 {
			n++
		}
	}
	return n
}

// TopCategories returns up to n category ids by descending preference score,
// skipping categories the user has net-negative feelings about.
func (p *Profile) TopCategories(n int) []string {
	type entry struct {
		id    string
		score float64
	}
	entries := make([]entry, 0, len(p.CategoryScores))
	for id, score := range p.CategoryScores {
		if score > 0 {
			entries = append(entries, entry{id, score})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].id < entries[j].id
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// TopRatedPostIDs returns up to n post ids by descending rating. They become
// the profile snapshot's candidate list for collaborative neighbors.
func (p *Profile) TopRatedPostIDs(n int) []string {
	interactions := make([]Interaction, len(p.Interactions))
	copy(interactions, p.Interactions)
	sort.SliceStable(interactions, func(i, j int) bool {
		return interactions[i].Rating > interactions[j].Rating
	})

	seen := make(map[string]bool)
	ids := make([]string, 0, n)
	for _, in := range interactions {
		if in.Rating <= 0 || seen[in.PostID] {
			continue
		}
		seen[in.PostID] = true
		ids = append(ids, in.PostID)
		if len(ids) == n {
			break
		}
	}
	return ids
}

// PseudoDocument renders the profile as a natural-language document for the
// content-based branch to embed.
func (p *Profile) PseudoDocument() string {
	var b strings.Builder
	b.WriteString("A reader interested in ")
	if len(p.InterestTags) > 0 {
		b.WriteString(strings.Join(p.InterestTags, ", "))
	} else {
		b.WriteString("community discussions")
	}
	if cats := p.TopCategories(3); len(cats) > 0 {
		b.WriteString(". Follows the ")
		b.WriteString(strings.Join(cats, ", "))
		b.WriteString(" categories closely")
	}
	b.WriteString(".")
	return b.String()
}

func activityLevel(interactions int) string {
	switch {
	case interactions >= 20:
		return ActivityHigh
	case interactions >= 5:
		return ActivityMedium
	default:
		return ActivityLow
	}
}

func topTags(counts map[string]int, n int) []string {
	type entry struct {
		tag   string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for tag, count := range counts {
		entries = append(entries, entry{tag, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].tag < entries[j].tag
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	tags := make([]string, len(entries))
	for i, e := range entries {
		tags[i] = e.tag
	}
	return tags
}
