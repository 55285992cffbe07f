package utils

import (
	"strings"
	"unicode"
)

// IsBoundary checks if a rune delimits words: whitespace, punctuation from
// the boundary set, the underscore, or typographic quotes.
func IsBoundary(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '.', ',', '!', '?', ';', ':', '\'', '"',
		'(', ')', '[', ']', '{', '}', '<', '>',
		'/', '-', '—', '–', '_',
		'„', '“', '”':
		return true
	}
	return false
}

// HasBoundary reports whether s contains at least one boundary rune.
func HasBoundary(s string) bool {
	return strings.IndexFunc(s, IsBoundary) >= 0
}

// IsWholeSpan reports whether text[start:end] is delimited on both sides by a
// boundary rune or the edge of the text.
// Out of range spans are never whole.
func IsWholeSpan(text []rune, start, end int) bool {
	if start < 0 || end < start || end > len(text) {
		return false
	}
	if start > 0 && !IsBoundary(text[start-1]) {
		return false
	}
	if end < len(text) && !IsBoundary(text[end]) {
		return false
	}
	return true
}

// WordRun is a maximal run of non-boundary runes.
type WordRun struct {
	Start int
	End   int
}

// SplitWords returns the maximal non-boundary runs of text with their rune
// offsets.
func SplitWords(text []rune) []WordRun {
	var runs []WordRun
	start := -1
	for i, r := range text {
		if IsBoundary(r) {
			if start >= 0 {
				runs = append(runs, WordRun{Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		runs = append(runs, WordRun{Start: start, End: len(text)})
	}
	return runs
}

// IsValidInput checks if a line is worth annotating: it must contain at least
// one letter.
func IsValidInput(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
