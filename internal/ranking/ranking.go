// Package ranking implements diversity-aware re-ranking over scored
// candidate lists. All functions are pure: they return new slices and never
// mutate their input.
package ranking

import (
	"math"
	"sort"
	"time"
)

// Candidate is one scored retrieval or recommendation result entering a
// ranking pass. Diversity and Serendipity are filled in by Diversify.
type Candidate struct {
	ID          string
	Score       float64
	CategoryID  string
	AuthorID    string
	Topics      []string
	CreatedAt   time.Time
	Diversity   float64
	Serendipity float64
}

// Options holds the ranking weights. The defaults are hand-tuned values
// carried over from production; they are exposed here rather than inlined so
// they can be re-tuned without a code change.
type Options struct {
	// CategoryWeight is the diversity contribution of an unseen category.
	CategoryWeight float64
	// AuthorWeight is the diversity contribution of an unseen author.
	AuthorWeight float64
	// TopicWeight is the diversity contribution of low topic overlap.
	TopicWeight float64
	// TopicOverlapThreshold is the overlap ratio below which the topic
	// signal fires.
	TopicOverlapThreshold float64
	// MinKeep admits candidates regardless of diversity until the output
	// reaches this size.
	MinKeep int
	// SerendipityDiversity is the accumulated diversity at or above which
	// a below-median candidate is tagged as a serendipity pick.
	SerendipityDiversity float64
	// DiversityBonusWeight and SerendipityBonusWeight fold the secondary
	// scores back into the primary score for final ordering.
	DiversityBonusWeight   float64
	SerendipityBonusWeight float64
	// TimeDecayFactor is the per-day score multiplier used by
	// ApplyTimeDecay.
	TimeDecayFactor float64
}

// DefaultOptions returns the production default weights.
func DefaultOptions() Options {
	return Options{
		CategoryWeight:         0.4,
		AuthorWeight:           0.3,
		TopicWeight:            0.3,
		TopicOverlapThreshold:  0.5,
		MinKeep:                3,
		SerendipityDiversity:   0.6,
		DiversityBonusWeight:   0.1,
		SerendipityBonusWeight: 0.05,
		TimeDecayFactor:        0.95,
	}
}

// ApplyTimeDecay multiplies each candidate's score by factor^ageInDays so
// diversity decisions downstream run on recency-adjusted scores. Candidates
// with a zero CreatedAt are left untouched.
func ApplyTimeDecay(cands []Candidate, now time.Time, factor float64) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	if factor <= 0 || factor >= 1 {
		return out
	}
	for i := range out {
		if out[i].CreatedAt.IsZero() {
			continue
		}
		ageDays := now.Sub(out[i].CreatedAt).Hours() / 24
		if ageDays <= 0 {
			continue
		}
		out[i].Score *= math.Pow(factor, ageDays)
	}
	return out
}

// Diversify filters and reorders a scored candidate list so that categories,
// authors, and topics repeat less. The input is deduplicated by id keeping the
// best-scored occurrence and sorted by score descending before the walk, so
// the best candidate is always kept even when an upstream pass (time decay)
// has reordered the scores. Every subsequent candidate is kept when any
// diversity signal fires, or unconditionally while the output is below the
// MinKeep floor. Below-median candidates with high accumulated diversity are
// tagged as serendipity picks. The output is a subset of the input, truncated
// to limit.
func Diversify(cands []Candidate, limit int, opts Options) []Candidate {
	if len(cands) == 0 || limit <= 0 {
		return nil
	}

	deduped := dedupeByID(cands)
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Score > deduped[j].Score
	})
	median := medianScore(deduped)

	seenCategories := make(map[string]bool)
	seenAuthors := make(map[string]bool)
	seenTopics := make(map[string]bool)

	out := make([]Candidate, 0, len(deduped))
	for i, cand := range deduped {
		if i == 0 {
			out = append(out, cand)
			markSeen(cand, seenCategories, seenAuthors, seenTopics)
			continue
		}

		diversity := 0.0
		if cand.CategoryID != "" && !seenCategories[cand.CategoryID] {
			diversity += opts.CategoryWeight
		}
		if cand.AuthorID != "" && !seenAuthors[cand.AuthorID] {
			diversity += opts.AuthorWeight
		}
		if len(cand.Topics) > 0 && topicOverlap(cand.Topics, seenTopics) < opts.TopicOverlapThreshold {
			diversity += opts.TopicWeight
		}

		if diversity == 0 && len(out) >= opts.MinKeep {
			continue
		}

		cand.Diversity = diversity
		if cand.Score < median && diversity >= opts.SerendipityDiversity {
			cand.Serendipity = diversity
		}
		out = append(out, cand)
		markSeen(cand, seenCategories, seenAuthors, seenTopics)
	}

	for i := range out {
		out[i].Score += opts.DiversityBonusWeight*out[i].Diversity +
			opts.SerendipityBonusWeight*out[i].Serendipity
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dedupeByID keeps the best-scored occurrence of each id, preserving the
// input order of the survivors.
func dedupeByID(cands []Candidate) []Candidate {
	best := make(map[string]int, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, cand := range cands {
		if idx, ok := best[cand.ID]; ok {
			if cand.Score > out[idx].Score {
				out[idx] = cand
			}
			continue
		}
		best[cand.ID] = len(out)
		out = append(out, cand)
	}
	return out
}

func medianScore(cands []Candidate) float64 {
	if len(cands) == 0 {
		return 0
	}
	scores := make([]float64, len(cands))
	for i, cand := range cands {
		scores[i] = cand.Score
	}
	sort.Float64s(scores)
	mid := len(scores) / 2
	if len(scores)%2 == 0 {
		return (scores[mid-1] + scores[mid]) / 2
	}
	return scores[mid]
}

// topicOverlap is the fraction of the candidate's topics already seen.
func topicOverlap(topics []string, seen map[string]bool) float64 {
	if len(topics) == 0 {
		return 0
	}
	hits := 0
	for _, topic := range topics {
		if seen[topic] {
			hits++
		}
	}
	return float64(hits) / float64(len(topics))
}

func markSeen(cand Candidate, categories, authors, topics map[string]bool) {
	if cand.CategoryID != "" {
		categories[cand.CategoryID] = true
	}
	if cand.AuthorID != "" {
		authors[cand.AuthorID] = true
	}
	for _, topic := range cand.Topics {
		topics[topic] = true
	}
}
