package resolve

import (
	"math/rand"
	"testing"

	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Helpers
// ============================================================================

var seq int

func entry(pattern string, kind domain.Kind) *domain.Entry {
	seq++
	return &domain.Entry{
		Pattern:  pattern,
		Kind:     kind,
		Meanings: []domain.Meaning{{Translation: pattern, PartOfSpeech: "x", BaseForm: pattern}},
		Seq:      seq,
	}
}

func match(e *domain.Entry, start, end int) domain.Match {
	return domain.Match{Entry: e, Start: start, End: end, Text: e.Pattern}
}

// ============================================================================
// Policy
// ============================================================================

func TestResolve_PhraseBeatsWord(t *testing.T) {
	phrase := entry("good morning", domain.Phrase)
	word := entry("morning", domain.Word)

	got, warnings := Resolve(16, []domain.Match{
		match(word, 5, 12),
		match(phrase, 0, 12),
	})
	assert.Empty(t, warnings)
	require.Len(t, got, 1)
	assert.Equal(t, "good morning", got[0].Pattern)
	require.Len(t, got[0].Related, 1)
	assert.Equal(t, "morning", got[0].Related[0].Pattern)
	assert.Equal(t, 5, got[0].Related[0].Start)
}

func TestResolve_PhraseBeatsLongerWord(t *testing.T) {
	phrase := entry("a b", domain.Phrase)
	word := entry("bcdefgh", domain.Word)

	got, _ := Resolve(20, []domain.Match{match(word, 2, 9), match(phrase, 0, 3)})
	require.Len(t, got, 1)
	assert.Equal(t, domain.Phrase, got[0].Kind)
}

func TestResolve_LongerBeatsShorter(t *testing.T) {
	long := entry("new york city", domain.Phrase)
	short := entry("new york", domain.Phrase)
	city := entry("york city", domain.Phrase)

	got, _ := Resolve(13, []domain.Match{match(short, 0, 8), match(city, 4, 13), match(long, 0, 13)})
	require.Len(t, got, 1)
	assert.Equal(t, "new york city", got[0].Pattern)
	assert.Len(t, got[0].Related, 2)
}

func TestResolve_EarlierStartWinsThenSeq(t *testing.T) {
	a := entry("ab", domain.Word)
	b := entry("bc", domain.Word)

	got, _ := Resolve(3, []domain.Match{match(b, 1, 3), match(a, 0, 2)})
	require.Len(t, got, 1)
	assert.Equal(t, "ab", got[0].Pattern)

	first := entry("x", domain.Word)
	second := entry("x2", domain.Word)
	got, _ = Resolve(1, []domain.Match{match(second, 0, 1), match(first, 0, 1)})
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Pattern, "lower insertion sequence wins an exact tie")
}

func TestResolve_TouchingSpansAllowed(t *testing.T) {
	a := entry("ab", domain.Word)
	b := entry("cd", domain.Word)

	got, _ := Resolve(4, []domain.Match{match(b, 2, 4), match(a, 0, 2)})
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Start)
	assert.Equal(t, 2, got[1].Start)
	assert.Empty(t, got[0].Related)
}

func TestResolve_RelatedGoesToLargestOverlap(t *testing.T) {
	left := entry("aaaa", domain.Phrase)
	right := entry("bbbbbb", domain.Phrase)
	bridge := entry("cc", domain.Word)

	// bridge [3,6) overlaps left [0,4) by 1 and right [4,10) by 2
	got, _ := Resolve(10, []domain.Match{match(left, 0, 4), match(right, 4, 10), match(bridge, 3, 6)})
	require.Len(t, got, 2)
	assert.Empty(t, got[0].Related)
	require.Len(t, got[1].Related, 1)
	assert.Equal(t, "cc", got[1].Related[0].Pattern)
}

func TestResolve_RelatedTieGoesToEarliest(t *testing.T) {
	left := entry("aaa", domain.Phrase)
	right := entry("bbb", domain.Phrase)
	mid := entry("mm", domain.Word)

	got, _ := Resolve(6, []domain.Match{match(left, 0, 3), match(right, 3, 6), match(mid, 2, 4)})
	require.Len(t, got, 2)
	assert.Len(t, got[0].Related, 1)
	assert.Empty(t, got[1].Related)
}

func TestResolve_OutputSortedByStart(t *testing.T) {
	var in []domain.Match
	for i := 9; i >= 0; i-- {
		in = append(in, match(entry("w", domain.Word), i*2, i*2+1))
	}
	got, _ := Resolve(20, in)
	require.Len(t, got, 10)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Start, got[i].Start)
	}
}

// ============================================================================
// Malformed candidates
// ============================================================================

func TestResolve_DropsMalformed(t *testing.T) {
	e := entry("cat", domain.Word)
	got, warnings := Resolve(5, []domain.Match{
		match(e, 3, 1),
		match(e, -1, 2),
		match(e, 2, 2),
		match(e, 3, 9),
		{Start: 0, End: 1},
		match(e, 0, 3),
	})
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Start)
	require.Len(t, warnings, 5)
	for _, w := range warnings {
		assert.ErrorIs(t, w, domain.ErrInvalidSpan)
	}
}

func TestResolve_Empty(t *testing.T) {
	got, warnings := Resolve(0, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, warnings)
}

// ============================================================================
// Invariant
// ============================================================================

func TestResolve_NonOverlapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		textLen := 5 + rng.Intn(60)
		var in []domain.Match
		for i := 0; i < rng.Intn(40); i++ {
			start := rng.Intn(textLen)
			end := start + 1 + rng.Intn(textLen-start)
			kind := domain.Word
			if rng.Intn(3) == 0 {
				kind = domain.Phrase
			}
			in = append(in, match(entry("p", kind), start, end))
		}

		got, warnings := Resolve(textLen, in)
		require.Empty(t, warnings)

		related := 0
		for i := range got {
			related += len(got[i].Related)
			for j := range got {
				if i == j {
					continue
				}
				assert.False(t, domain.Overlaps(got[i].Start, got[i].End, got[j].Start, got[j].End),
					"round %d: [%d,%d) overlaps [%d,%d)", round, got[i].Start, got[i].End, got[j].Start, got[j].End)
			}
		}
		assert.Equal(t, len(in), len(got)+related, "every candidate is accepted or related")
	}
}
