// Package resolve turns overlapping candidate matches into a set of pairwise
// disjoint annotations.
//
// Candidates are ranked by a strict total order: phrases before words, longer
// spans before shorter ones, earlier starts first, and finally the insertion
// sequence of the dictionary entry. A greedy sweep accepts each candidate that
// overlaps nothing accepted so far. A rejected candidate is attached as
// related to the accepted span it overlaps most (earliest start on a tie).
// Spans that only touch, end == otherStart, do not conflict.
package resolve

import (
	"sort"

	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/charmbracelet/log"
	"github.com/emirpasic/gods/trees/redblacktree"
)

// Less reports whether candidate a outranks candidate b.
func Less(a, b domain.Match) bool {
	if a.Kind() != b.Kind() {
		return a.Kind() == domain.Phrase
	}
	if a.Len() != b.Len() {
		return a.Len() > b.Len()
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.Entry.Seq < b.Entry.Seq
}

// Validate checks a candidate against the text it came from.
func Validate(m domain.Match, textLen int) error {
	if m.Entry == nil || m.Start < 0 || m.End <= m.Start || m.End > textLen {
		return &domain.InvalidSpanWarning{Pattern: m.Pattern(), Start: m.Start, End: m.End, TextLen: textLen}
	}
	return nil
}

// Resolve selects the non-overlapping annotations among matches. textLen is
// the rune length of the scanned text. Malformed candidates are dropped and
// returned as warnings.
func Resolve(textLen int, matches []domain.Match) ([]domain.Annotation, []error) {
	var warnings []error
	candidates := make([]domain.Match, 0, len(matches))
	for _, m := range matches {
		if err := Validate(m, textLen); err != nil {
			log.Warnf("Dropping candidate: %v", err)
			warnings = append(warnings, err)
			continue
		}
		candidates = append(candidates, m)
	}
	if len(candidates) == 0 {
		return []domain.Annotation{}, warnings
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return Less(candidates[i], candidates[j])
	})

	// accepted spans keyed by start; disjoint, so also ordered by end
	accepted := redblacktree.NewWithIntComparator()
	for _, m := range candidates {
		host := bestOverlap(accepted, m)
		if host == nil {
			ann := newAnnotation(m)
			accepted.Put(m.Start, ann)
			continue
		}
		host.Related = append(host.Related, newRelated(m))
	}

	out := make([]domain.Annotation, 0, accepted.Size())
	it := accepted.Iterator()
	for it.Next() {
		out = append(out, *it.Value().(*domain.Annotation))
	}
	return out, warnings
}

// bestOverlap returns the accepted annotation sharing the most runes with m,
// or nil when m overlaps nothing. Only spans starting before m.End can
// overlap; walking them backwards stops at the first one ending at or before
// m.Start.
func bestOverlap(accepted *redblacktree.Tree, m domain.Match) *domain.Annotation {
	var best *domain.Annotation
	bestLen := 0
	node, found := accepted.Floor(m.End - 1)
	for found {
		ann := node.Value.(*domain.Annotation)
		if ann.End <= m.Start {
			break
		}
		overlap := min(ann.End, m.End) - max(ann.Start, m.Start)
		// walking backwards, so >= keeps the earliest start on ties
		if overlap >= bestLen {
			best = ann
			bestLen = overlap
		}
		node, found = accepted.Floor(ann.Start - 1)
	}
	return best
}

func newAnnotation(m domain.Match) *domain.Annotation {
	return &domain.Annotation{
		Pattern:     m.Entry.Pattern,
		Kind:        m.Entry.Kind,
		Meanings:    domain.CloneMeanings(m.Entry.Meanings),
		Start:       m.Start,
		End:         m.End,
		MatchedText: m.Text,
		Related:     []domain.Related{},
	}
}

func newRelated(m domain.Match) domain.Related {
	return domain.Related{
		Pattern:     m.Entry.Pattern,
		Kind:        m.Entry.Kind,
		Start:       m.Start,
		End:         m.End,
		MatchedText: m.Text,
		Meanings:    domain.CloneMeanings(m.Entry.Meanings),
	}
}
