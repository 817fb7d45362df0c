package vectorstore

import (
	"math"
	"sort"
)

// DefaultRRFConstant is the standard rank-fusion damping constant.
const DefaultRRFConstant = 60

// FuseRRF merges ranked lists by reciprocal rank fusion: each candidate's
// fused score is the sum of 1/(k+rank) across every list it appears in.
// Ties break by earliest appearance, which keeps the fusion deterministic.
// The winning payload for a duplicated id comes from its first appearance.
func FuseRRF(k float64, lists ...[]SearchResult) []SearchResult {
	if k <= 0 {
		k = DefaultRRFConstant
	}

	type fused struct {
		result SearchResult
		score  float64
		order  int
	}
	byID := make(map[string]*fused)
	arrival := 0

	for _, list := range lists {
		for rank, result := range list {
			contribution := 1.0 / (k + float64(rank+1))
			if f, ok := byID[result.ID]; ok {
				f.score += contribution
				continue
			}
			byID[result.ID] = &fused{result: result, score: contribution, order: arrival}
			arrival++
		}
	}

	out := make([]SearchResult, 0, len(byID))
	ordered := make([]*fused, 0, len(byID))
	for _, f := range byID {
		ordered = append(ordered, f)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].order < ordered[j].order
	})
	for _, f := range ordered {
		r := f.result
		r.Score = float32(f.score)
		out = append(out, r)
	}
	return out
}

// FuseDBSF merges ranked lists by distribution-based score fusion: each
// list's raw scores are normalized to zero mean and unit deviation before
// summing, so lists with very different score scales contribute evenly.
func FuseDBSF(lists ...[]SearchResult) []SearchResult {
	type fused struct {
		result SearchResult
		score  float64
		order  int
	}
	byID := make(map[string]*fused)
	arrival := 0

	for _, list := range lists {
		mean, std := scoreStats(list)
		for _, result := range list {
			normalized := float64(result.Score) - mean
			if std > 0 {
				normalized /= std
			}
			if f, ok := byID[result.ID]; ok {
				f.score += normalized
				continue
			}
			byID[result.ID] = &fused{result: result, score: normalized, order: arrival}
			arrival++
		}
	}

	ordered := make([]*fused, 0, len(byID))
	for _, f := range byID {
		ordered = append(ordered, f)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].order < ordered[j].order
	})

	out := make([]SearchResult, 0, len(ordered))
	for _, f := range ordered {
		r := f.result
		r.Score = float32(f.score)
		out = append(out, r)
	}
	return out
}

func scoreStats(list []SearchResult) (mean, std float64) {
	if len(list) == 0 {
		return 0, 0
	}
	for _, r := range list {
		mean += float64(r.Score)
	}
	mean /= float64(len(list))

	var variance float64
	for _, r := range list {
		d := float64(r.Score) - mean
		variance += d * d
	}
	variance /= float64(len(list))
	return mean, math.Sqrt(variance)
}
