package search

import (
	"fmt"
	"strings"
	"time"

	"discourse-ai/internal/vectorstore"
)

// Lens steers a semantic search toward one editorial intent. Each lens
// carries a prompt-rewrite template, a score threshold, a payload filter
// fragment, and a scoring strategy.
type Lens string

const (
	LensTrending      Lens = "trending"
	LensExciting      Lens = "exciting"
	LensDeepDive      Lens = "deep-dive"
	LensNew           Lens = "new"
	LensTop           Lens = "top"
	LensAIRecommended Lens = "ai-recommended"
	LensRising        Lens = "rising"
	LensExpertPicks   Lens = "expert-picks"
)

// lensSpec is one row of the lens dispatch table. The scoring strategy is a
// small pure function so each lens's relevance blend is testable on its own.
type lensSpec struct {
	// template frames the raw query so the embedding leans toward the
	// lens's intent. %s is replaced with the query.
	template string
	// threshold is the minimum cosine score unless the caller overrides it.
	threshold float32
	// conditions returns the lens's payload filter fragment.
	conditions func(now time.Time) []vectorstore.Condition
	// bonus computes the lens-specific relevance bonus from a hit's
	// payload, blended with the keyword-overlap base score.
	bonus func(payload map[string]any, now time.Time) float64
}

const deepDiveMinContentLength = 1200

var lenses = map[Lens]lensSpec{
	LensTrending: {
		template:  "What's buzzing right now in %s? Popular recent updates and active discussions.",
		threshold: 0.25,
		conditions: func(time.Time) []vectorstore.Condition {
			return []vectorstore.Condition{vectorstore.Eq("trending", true)}
		},
		bonus: func(payload map[string]any, _ time.Time) float64 {
			return float64(vectorstore.PayloadInt(payload, "commentCount")) * 0.005
		},
	},
	LensExciting: {
		template:  "The most exciting and talked-about developments in %s. High-energy discussions people can't stop replying to.",
		threshold: 0.25,
		conditions: func(time.Time) []vectorstore.Condition {
			return []vectorstore.Condition{vectorstore.Gte("commentCount", 5)}
		},
		bonus: func(payload map[string]any, _ time.Time) float64 {
			return float64(vectorstore.PayloadInt(payload, "score")) * 0.002
		},
	},
	LensDeepDive: {
		template:  "An in-depth, detailed exploration of %s. Long-form analysis, thorough explanations, and technical depth.",
		threshold: 0.3,
		conditions: func(time.Time) []vectorstore.Condition {
			return []vectorstore.Condition{vectorstore.Gte("contentLength", deepDiveMinContentLength)}
		},
		bonus: func(payload map[string]any, _ time.Time) float64 {
			length := float64(vectorstore.PayloadInt(payload, "contentLength"))
			if length > 8000 {
				length = 8000
			}
			return length / 80000
		},
	},
	LensNew: {
		template:  "The latest news and newest posts about %s. Fresh content from the last couple of days.",
		threshold: 0.2,
		conditions: func(now time.Time) []vectorstore.Condition {
			cutoff := now.Add(-48 * time.Hour).Unix()
			return []vectorstore.Condition{vectorstore.Gte(vectorstore.FieldCreatedTs, float64(cutoff))}
		},
		bonus: recencyBonus,
	},
	LensTop: {
		template:  "The best and most appreciated content about %s. Highly upvoted posts the community values.",
		threshold: 0.25,
		conditions: func(time.Time) []vectorstore.Condition {
			return []vectorstore.Condition{vectorstore.Gte("score", 25)}
		},
		bonus: func(payload map[string]any, _ time.Time) float64 {
			return float64(vectorstore.PayloadInt(payload, "score")) * 0.002
		},
	},
	LensAIRecommended: {
		template:  "Content closely related to %s that a reader interested in this topic would want next.",
		threshold: 0.45,
		conditions: func(time.Time) []vectorstore.Condition { return nil },
		bonus:      func(map[string]any, time.Time) float64 { return 0 },
	},
	LensRising: {
		template:  "Up-and-coming discussions about %s gaining momentum. Recently posted and quickly attracting replies.",
		threshold: 0.2,
		conditions: func(now time.Time) []vectorstore.Condition {
			cutoff := now.Add(-7 * 24 * time.Hour).Unix()
			return []vectorstore.Condition{
				vectorstore.Gte(vectorstore.FieldCreatedTs, float64(cutoff)),
				vectorstore.Gte("commentCount", 3),
			}
		},
		bonus: recencyBonus,
	},
	LensExpertPicks: {
		template:  "Authoritative, expert-level writing on %s. Substantive posts with strong community endorsement.",
		threshold: 0.3,
		conditions: func(time.Time) []vectorstore.Condition {
			return []vectorstore.Condition{vectorstore.Gte("score", 50)}
		},
		bonus: func(payload map[string]any, _ time.Time) float64 {
			length := float64(vectorstore.PayloadInt(payload, "contentLength"))
			if length > 4000 {
				length = 4000
			}
			return length / 40000
		},
	},
}

// recencyBonus rewards hits from the last week, scaling linearly from 0.1
// (just posted) to 0 (a week old or undated).
func recencyBonus(payload map[string]any, now time.Time) float64 {
	ts := vectorstore.PayloadInt(payload, vectorstore.FieldCreatedTs)
	if ts == 0 {
		return 0
	}
	age := now.Sub(time.Unix(ts, 0))
	week := 7 * 24 * time.Hour
	if age < 0 || age > week {
		return 0
	}
	return 0.1 * (1 - float64(age)/float64(week))
}

// ParseLens validates a lens name. The empty string maps to ai-recommended.
func ParseLens(s string) (Lens, error) {
	if s == "" {
		return LensAIRecommended, nil
	}
	lens := Lens(strings.ToLower(s))
	if _, ok := lenses[lens]; !ok {
		return "", &ValidationError{Field: "lens", Message: fmt.Sprintf("unknown lens %q", s)}
	}
	return lens, nil
}

// Rewrite frames the raw query with the lens's prompt template.
func (l Lens) Rewrite(query string) string {
	spec, ok := lenses[l]
	if !ok {
		return query
	}
	return fmt.Sprintf(spec.template, query)
}

func (l Lens) spec() lensSpec {
	return lenses[l]
}
