package search

import (
	"discourse-ai/internal/textprep"
)

const (
	relevanceLengthScale = 10.0
	maxKeywordRelevance  = 0.4
	titleMatchBonus      = 0.1
)

// keywordRelevance computes a lightweight lexical relevance score for a post
// relative to a query. The score is normalized to stay in a predictable range
// so lens-specific bonuses can be blended on top without dominating.
func keywordRelevance(query, title, content string) float64 {
	queryTokens := textprep.FilterStopwords(textprep.Tokenize(query))
	if len(queryTokens) == 0 {
		return 0
	}

	contentTokens := textprep.Tokenize(content)
	contentFreq := make(map[string]int, len(contentTokens))
	for _, token := range contentTokens {
		contentFreq[token]++
	}

	var rawMatches int
	for _, token := range queryTokens {
		rawMatches += contentFreq[token]
	}

	score := (float64(rawMatches) / (1 + float64(len(contentTokens)))) * relevanceLengthScale
	if score > maxKeywordRelevance {
		score = maxKeywordRelevance
	}

	if title != "" {
		titleSet := make(map[string]struct{})
		for _, token := range textprep.Tokenize(title) {
			titleSet[token] = struct{}{}
		}
		for _, token := range queryTokens {
			if _, ok := titleSet[token]; ok {
				score += titleMatchBonus
			}
		}
	}

	if score < 0 {
		return 0
	}
	return score
}
