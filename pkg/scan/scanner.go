// Package scan finds raw candidate matches of dictionary entries in a text.
//
// Two walks run over the lowercased text. The word-walk feeds each maximal
// run of non-boundary runes through the rune automaton and reports every
// output whose window fits inside the run. The phrase-walk runs a substring
// search over the whole text for phrase entries and for any pattern that
// contains a boundary rune, since such patterns are unreachable from a single
// word. Every candidate must be a whole span (see utils.IsWholeSpan).
//
// Candidates may overlap; resolving them is the job of package resolve.
package scan

import (
	"unicode/utf8"

	"github.com/bastiangx/wordlens/internal/utils"
	"github.com/bastiangx/wordlens/pkg/automaton"
	"github.com/bastiangx/wordlens/pkg/domain"
)

// Scanner is safe for concurrent use once created.
type Scanner struct {
	auto    *automaton.Automaton
	phrases *phraseIndex
	lengths map[*domain.Entry]int
}

// New creates a scanner over a built automaton. entries must be the entries
// the automaton was built from.
func New(a *automaton.Automaton, entries []*domain.Entry) (*Scanner, error) {
	if a == nil || !a.Ready() {
		return nil, &domain.NotBuiltError{Op: "create scanner"}
	}

	lengths := make(map[*domain.Entry]int, len(entries))
	var phraseEntries []*domain.Entry
	for _, e := range entries {
		lengths[e] = utf8.RuneCountInString(e.Pattern)
		if e.Kind == domain.Phrase || utils.HasBoundary(e.Pattern) {
			phraseEntries = append(phraseEntries, e)
		}
	}

	return &Scanner{
		auto:    a,
		phrases: newPhraseIndex(phraseEntries),
		lengths: lengths,
	}, nil
}

// PhraseCount returns how many entries the phrase-walk searches for.
func (s *Scanner) PhraseCount() int {
	return s.phrases.len()
}

// Scan returns candidates in encounter order: word-walk matches by position,
// then phrase-walk matches by position. A candidate found by both walks is
// reported once.
func (s *Scanner) Scan(text string) []domain.Match {
	if text == "" {
		return nil
	}
	input := []rune(text)
	lower := utils.LowerRunes(text)
	filter := utils.NewSpanFilter()

	var matches []domain.Match
	emit := func(e *domain.Entry, start, end int) {
		if !utils.IsWholeSpan(lower, start, end) {
			return
		}
		if !filter.ShouldInclude(e.Pattern, start, end) {
			return
		}
		matches = append(matches, domain.Match{
			Entry: e,
			Start: start,
			End:   end,
			Text:  string(input[start:end]),
		})
	}

	s.walkWords(lower, emit)
	s.phrases.walk(lower, emit)
	return matches
}

// walkWords runs the automaton over each word run independently.
func (s *Scanner) walkWords(lower []rune, emit func(*domain.Entry, int, int)) {
	for _, run := range utils.SplitWords(lower) {
		state := s.auto.Root()
		for i := run.Start; i < run.End; i++ {
			state = s.auto.Next(state, lower[i])
			for _, e := range s.auto.Outputs(state) {
				n, ok := s.lengths[e]
				if !ok {
					n = utf8.RuneCountInString(e.Pattern)
				}
				end := i + 1
				start := end - n
				if start < run.Start || start < 0 {
					continue
				}
				emit(e, start, end)
			}
		}
	}
}
