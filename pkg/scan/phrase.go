package scan

import (
	"sort"
	"unicode/utf8"

	"github.com/bastiangx/wordlens/internal/utils"
	"github.com/bastiangx/wordlens/pkg/domain"
	aho "github.com/petar-dambovaliev/aho-corasick"
)

// phraseIndex is a byte level substring matcher over the phrase patterns.
type phraseIndex struct {
	ac      aho.AhoCorasick
	entries []*domain.Entry
}

// newPhraseIndex registers patterns longest first. Overlapping iteration
// reports every occurrence regardless of order, so the order only decides
// which candidates come out first at a shared end position.
func newPhraseIndex(entries []*domain.Entry) *phraseIndex {
	if len(entries) == 0 {
		return &phraseIndex{}
	}
	sorted := append([]*domain.Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i].Pattern) > utf8.RuneCountInString(sorted[j].Pattern)
	})

	patterns := make([]string, len(sorted))
	for i, e := range sorted {
		patterns[i] = e.Pattern
	}
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		AsciiCaseInsensitive: false,
		MatchOnlyWholeWords:  false,
		MatchKind:            aho.StandardMatch,
		DFA:                  false,
	})
	return &phraseIndex{ac: builder.Build(patterns), entries: sorted}
}

func (p *phraseIndex) len() int {
	return len(p.entries)
}

// walk reports every occurrence of every phrase, converting byte offsets of
// the lowered text to rune offsets.
func (p *phraseIndex) walk(lower []rune, emit func(*domain.Entry, int, int)) {
	if len(p.entries) == 0 {
		return
	}
	haystack := string(lower)
	index := utils.NewRuneIndex(haystack)
	defer index.Release()

	type hit struct {
		entry      *domain.Entry
		start, end int
	}
	var hits []hit
	iter := p.ac.IterOverlapping(haystack)
	for m := iter.Next(); m != nil; m = iter.Next() {
		idx := m.Pattern()
		if idx < 0 || idx >= len(p.entries) {
			continue
		}
		hits = append(hits, hit{
			entry: p.entries[idx],
			start: index.Rune(m.Start()),
			end:   index.Rune(m.End()),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].start < hits[j].start
	})
	for _, h := range hits {
		emit(h.entry, h.start, h.end)
	}
}
