// Package domain holds the value types shared by the matching engine: pattern
// kinds, meanings, dictionary entries, candidate matches and the resolved
// annotations handed to renderers.
package domain

import "fmt"

// Kind distinguishes single-word entries from multi-word phrases.
type Kind int

const (
	Word Kind = iota
	Phrase
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Phrase:
		return "phrase"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText renders the kind as "word" or "phrase" for every text based
// codec (JSON, YAML, TOML, msgpack string mode).
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Word, Phrase:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown kind %d", int(k))
}

func (k *Kind) UnmarshalText(b []byte) error {
	kind, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseKind parses "word" or "phrase".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "word", "":
		return Word, nil
	case "phrase":
		return Phrase, nil
	}
	return Word, fmt.Errorf("unknown kind %q", s)
}

// Meaning is one interpretation of a pattern.
type Meaning struct {
	Translation      string `json:"translation" msgpack:"translation"`
	PartOfSpeech     string `json:"partOfSpeech" msgpack:"partOfSpeech"`
	BaseForm         string `json:"baseForm" msgpack:"baseForm"`
	BaseTranslation  string `json:"baseTranslation,omitempty" msgpack:"baseTranslation,omitempty"`
	ProficiencyLevel string `json:"proficiencyLevel,omitempty" msgpack:"proficiencyLevel,omitempty"`
	SourceID         string `json:"sourceId,omitempty" msgpack:"sourceId,omitempty"`
}

// Entry is a normalized pattern with its meanings. Seq is the insertion
// sequence of the first registration.
type Entry struct {
	Pattern  string
	Kind     Kind
	Meanings []Meaning
	Seq      int
}

// Match is an unresolved candidate produced by the scanner. Start and End are
// half-open rune offsets into the scanned text.
type Match struct {
	Entry *Entry
	Start int
	End   int
	Text  string
}

func (m Match) Pattern() string {
	if m.Entry == nil {
		return ""
	}
	return m.Entry.Pattern
}

func (m Match) Kind() Kind {
	if m.Entry == nil {
		return Word
	}
	return m.Entry.Kind
}

// Len is the span length in runes.
func (m Match) Len() int { return m.End - m.Start }

// Overlaps reports whether two half-open spans share at least one rune.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// Related summarizes a candidate suppressed by an accepted annotation.
type Related struct {
	Pattern     string    `json:"pattern" msgpack:"pattern"`
	Kind        Kind      `json:"kind" msgpack:"kind"`
	Start       int       `json:"start" msgpack:"start"`
	End         int       `json:"end" msgpack:"end"`
	MatchedText string    `json:"matchedText" msgpack:"matchedText"`
	Meanings    []Meaning `json:"meanings" msgpack:"meanings"`
}

// CloneMeanings returns an independent copy of ms.
func CloneMeanings(ms []Meaning) []Meaning {
	return append(make([]Meaning, 0, len(ms)), ms...)
}

// Annotation is one accepted, non-overlapping span.
type Annotation struct {
	Pattern     string    `json:"pattern" msgpack:"pattern"`
	Kind        Kind      `json:"kind" msgpack:"kind"`
	Meanings    []Meaning `json:"meanings" msgpack:"meanings"`
	Start       int       `json:"start" msgpack:"start"`
	End         int       `json:"end" msgpack:"end"`
	MatchedText string    `json:"matchedText" msgpack:"matchedText"`
	Related     []Related `json:"related" msgpack:"related"`
}

// CloneAnnotations deep copies anns so callers may modify the result freely.
// The returned slice is never nil.
func CloneAnnotations(anns []Annotation) []Annotation {
	out := make([]Annotation, len(anns))
	for i, a := range anns {
		out[i] = a
		out[i].Meanings = CloneMeanings(a.Meanings)
		out[i].Related = make([]Related, len(a.Related))
		for j, r := range a.Related {
			out[i].Related[j] = r
			out[i].Related[j].Meanings = CloneMeanings(r.Meanings)
		}
	}
	return out
}
