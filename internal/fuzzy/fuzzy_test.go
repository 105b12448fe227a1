package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "", 3},
		{"same", "same", 0},
		{"flaw", "lawn", 2},
		{"ăla", "ala", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestTolerance(t *testing.T) {
	assert.Equal(t, 0, Tolerance("ab"))
	assert.Equal(t, 1, Tolerance("abc"))
	assert.Equal(t, 1, Tolerance("abcd"))
	assert.Equal(t, 2, Tolerance("abcde"))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		target string
		want   bool
	}{
		{"empty query matches anything", "", "whatever", true},
		{"empty query matches empty target", "", "", true},
		{"blank query matches", "   ", "x", true},
		{"empty target never matches", "x", "", false},
		{"substring containment", "cat", "category", true},
		{"case insensitive", "LAPTOP", "Gaming laptop 15", true},
		{"typo within tolerance", "laptpo", "gaming laptop", true},
		{"short word needs exact", "tv", "tw stand", false},
		{"every word must match", "gaming mouse", "gaming laptop", false},
		{"words can match different tokens", "laptop gaming", "gaming laptop", true},
		{"full target is a candidate", "ing lap", "gaming laptop", true},
		{"four letter word one edit", "mose", "wireless mouse", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.query, tt.target))
		})
	}
}
