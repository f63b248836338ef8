// Package fuzzy ranks symbol names against a query string. The exact
// heuristic is a pluggable strategy behind the Scorer interface; the index
// only relies on the contract that scoring is deterministic for a fixed
// (query, name) pair.
package fuzzy

import (
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
)

// Scorer decides whether a symbol name matches a query and how well.
// Implementations must be pure functions of their inputs: identical inputs
// always produce identical results, and calls must be safe concurrently.
type Scorer interface {
	// Score returns a relevance score for name against query, and whether
	// the name matches at all. An empty query matches every name.
	Score(query, name string) (float64, bool)
}

// Match class base scores. The similarity tie-breaker added on top is in
// [0, 1], so classes never overlap.
const (
	scoreExact     = 4.0
	scorePrefix    = 3.0
	scoreSubstring = 2.0
	scoreSubseq    = 1.0
)

// DefaultScorer matches case-insensitive substrings and subsequences,
// ranking exact > prefix > substring > subsequence and breaking ties with
// Jaro-Winkler similarity.
type DefaultScorer struct{}

// NewDefaultScorer returns the scorer used when no strategy is configured.
func NewDefaultScorer() *DefaultScorer {
	return &DefaultScorer{}
}

// Score implements Scorer.
func (s *DefaultScorer) Score(query, name string) (float64, bool) {
	if query == "" {
		return scoreExact, true
	}

	q := strings.ToLower(query)
	n := strings.ToLower(name)

	var base float64
	switch {
	case q == n:
		base = scoreExact
	case strings.HasPrefix(n, q):
		base = scorePrefix
	case strings.Contains(n, q):
		base = scoreSubstring
	case isSubsequence(q, n):
		base = scoreSubseq
	default:
		return 0, false
	}

	return base + similarity(q, n), true
}

// similarity returns a [0, 1] Jaro-Winkler score. go-edlib only fails on
// unknown algorithm constants, so errors degrade to zero.
func similarity(query, name string) float64 {
	score, err := edlib.StringsSimilarity(query, name, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(score)
}

// isSubsequence reports whether every rune of query appears in name in
// order, e.g. "fbb" matches "fooBarBaz".
func isSubsequence(query, name string) bool {
	remaining := []rune(query)
	for _, r := range name {
		if len(remaining) == 0 {
			return true
		}
		if unicode.ToLower(r) == remaining[0] {
			remaining = remaining[1:]
		}
	}
	return len(remaining) == 0
}
