package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyQueryMatchesEverything(t *testing.T) {
	s := NewDefaultScorer()

	for _, name := range []string{"", "f", "vector", "make_vector"} {
		_, ok := s.Score("", name)
		assert.True(t, ok, "empty query must match %q", name)
	}
}

func TestMatchClassesRankInOrder(t *testing.T) {
	s := NewDefaultScorer()

	exact, ok := s.Score("vector", "vector")
	assert.True(t, ok)
	prefix, ok := s.Score("vec", "vector")
	assert.True(t, ok)
	substring, ok := s.Score("ect", "vector")
	assert.True(t, ok)
	subseq, ok := s.Score("vtr", "vector")
	assert.True(t, ok)

	assert.Greater(t, exact, prefix)
	assert.Greater(t, prefix, substring)
	assert.Greater(t, substring, subseq)
}

func TestCaseInsensitive(t *testing.T) {
	s := NewDefaultScorer()

	_, ok := s.Score("fooBar", "FOOBAR")
	assert.True(t, ok)

	_, ok = s.Score("FB", "fooBar")
	assert.True(t, ok, "subsequence matching ignores case")
}

func TestNonMatches(t *testing.T) {
	s := NewDefaultScorer()

	_, ok := s.Score("xyz", "vector")
	assert.False(t, ok)

	// Subsequence requires query runes in order.
	_, ok = s.Score("rot", "vector")
	assert.False(t, ok)
}

func TestDeterministic(t *testing.T) {
	s := NewDefaultScorer()

	first, ok1 := s.Score("vec", "vector")
	second, ok2 := s.Score("vec", "vector")
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}
