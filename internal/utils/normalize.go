package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizePattern canonicalizes a dictionary key: NFC, lowercase, trimmed,
// internal whitespace runs collapsed to a single space.
func NormalizePattern(s string) string {
	s = norm.NFC.String(s)
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	for i, f := range fields {
		fields[i] = strings.Map(unicode.ToLower, f)
	}
	return strings.Join(fields, " ")
}

// LowerRunes lowercases text one rune at a time so the result has exactly as
// many runes as the input and offsets stay aligned.
func LowerRunes(text string) []rune {
	runes := []rune(text)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
