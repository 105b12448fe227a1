// Package fuzzy implements the approximate matcher behind the search boxes.
//
// A query matches a target when every query word matches at least one target
// token, either by substring containment or by a Levenshtein distance within a
// tolerance that grows with the word length.
package fuzzy

import "strings"

// Match reports whether every word of query approximately occurs in target.
// An empty query matches everything; an empty target matches nothing else.
func Match(query, target string) bool {
	words := tokenize(query)
	if len(words) == 0 {
		return true
	}
	lowered := strings.ToLower(target)
	if strings.TrimSpace(lowered) == "" {
		return false
	}

	tokens := append(tokenize(lowered), lowered)
	for _, w := range words {
		if !matchesAny(w, tokens) {
			return false
		}
	}
	return true
}

func matchesAny(word string, tokens []string) bool {
	tol := Tolerance(word)
	for _, tok := range tokens {
		if strings.Contains(tok, word) {
			return true
		}
		if Levenshtein(word, tok) <= tol {
			return true
		}
	}
	return false
}

// Tolerance is the edit distance accepted for a query word:
// 0 up to 2 characters, 1 up to 4, 2 beyond.
func Tolerance(word string) int {
	n := len([]rune(word))
	switch {
	case n <= 2:
		return 0
	case n <= 4:
		return 1
	default:
		return 2
	}
}

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// tokenize lowercases s and splits it on spaces, dropping empty parts.
func tokenize(s string) []string {
	parts := strings.Split(strings.ToLower(s), " ")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
