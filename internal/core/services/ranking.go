package services

import (
	"math"
	"strings"
)

// Snippet extraction windows. Heuristic defaults preserved from the original
// ranking behavior; tunable via SearchServiceConfig.
const (
	snippetContextBefore = 60
	snippetContextAfter  = 160
	snippetMaxWindow     = 220
	snippetFallbackLen   = 400
)

// lexicalScore computes the term-match relevance of content for a query.
// For every query term: tf = number of content words containing the term
// (case-insensitive); tf > 0 contributes ln(1+tf) plus a flat 1.0 substring
// bonus. The sum is normalized by ln(1+wordCount) so long chunks do not win
// on volume alone. Empty query or empty content scores 0.
func lexicalScore(content, query string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	lowerContent := strings.ToLower(content)
	words := strings.Fields(lowerContent)
	if len(terms) == 0 || len(words) == 0 {
		return 0
	}

	var score float64
	for _, term := range terms {
		tf := 0
		for _, word := range words {
			if strings.Contains(word, term) {
				tf++
			}
		}
		if tf > 0 {
			score += math.Log(1 + float64(tf))
		}
		if strings.Contains(lowerContent, term) {
			score += 1.0
		}
	}

	return score / math.Log(1+float64(len(words)))
}

// extractSnippet returns a human-readable window of content around the first
// case-insensitive occurrence of the full query, with ellipsis markers where
// the window truncates the content. The returned offsets index into content
// such that content[start:start+length] equals the query modulo case;
// (-1, 0) means no literal match and the snippet is the head of the content.
func extractSnippet(content, query string) (snippet string, start, length int) {
	idx := -1
	if query != "" {
		idx = strings.Index(strings.ToLower(content), strings.ToLower(query))
	}

	if idx < 0 {
		if len(content) > snippetFallbackLen {
			return content[:snippetFallbackLen] + "…", -1, 0
		}
		return content, -1, 0
	}

	from := idx - snippetContextBefore
	if from < 0 {
		from = 0
	}
	to := idx + len(query) + snippetContextAfter
	if to-from > snippetMaxWindow {
		to = from + snippetMaxWindow
	}
	if to > len(content) {
		to = len(content)
	}

	snippet = content[from:to]
	if from > 0 {
		snippet = "…" + snippet
	}
	if to < len(content) {
		snippet += "…"
	}

	return snippet, idx, len(query)
}
