package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics decomposes s, drops combining marks and recomposes it, so
// "Masă științifică" becomes "Masa stiintifica".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

const romanianDiacritics = "ăâîșțşţĂÂÎȘȚŞŢ"

// HasRomanianDiacritics reports whether s contains any Romanian letter with
// a diacritic, comma-below and cedilla forms alike.
func HasRomanianDiacritics(s string) bool {
	return strings.ContainsAny(s, romanianDiacritics)
}

var englishStopwords = map[string]struct{}{
	"the": {}, "and": {}, "with": {}, "for": {}, "this": {}, "that": {},
	"is": {}, "are": {}, "of": {}, "to": {}, "in": {}, "your": {}, "you": {},
	"it": {}, "from": {}, "on": {},
}

// englishStopwordThreshold is the number of stopword hits that marks a
// text as English.
const englishStopwordThreshold = 3

// LooksEnglish is the untranslated-description heuristic: at least three
// common English stopwords and no Romanian diacritics.
func LooksEnglish(s string) bool {
	if HasRomanianDiacritics(s) {
		return false
	}
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	hits := 0
	for _, w := range words {
		if _, ok := englishStopwords[w]; ok {
			hits++
			if hits >= englishStopwordThreshold {
				return true
			}
		}
	}
	return false
}
