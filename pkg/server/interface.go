/*
Package server implements the stdin/stdout IPC used by editors and readers to
annotate text with dictionary matches.

Messages are msgpack by default and newline delimited JSON when the server is
configured with the json codec. Requests are processed synchronously in
arrival order and every response echoes the request id.

# IPC

Each request names a command and carries the fields that command needs:

	{"id": "r1", "cmd": "find", "text": "Han springer fort."}

The server answers with non-overlapping annotations ordered by start. Offsets
are rune offsets into the request text:

	{"id": "r1", "annotations": [{"pattern": "springer", "kind": "word", "start": 4, "end": 12, ...}], "count": 1, "t": 85}

Other commands:

	{"id": "r2", "cmd": "complete", "prefix": "spr", "limit": 5}
	{"id": "r3", "cmd": "lookup", "pattern": "på"}
	{"id": "r4", "cmd": "load", "path": "/dicts/no_phrases.json"}
	{"id": "r5", "cmd": "remove", "dict": "no_phrases"}
	{"id": "r6", "cmd": "list"}
	{"id": "r7", "cmd": "stats"}
	{"id": "r8", "cmd": "config", "max_text_length": 20000}
	{"id": "r9", "cmd": "health"}

Failures are reported as

	{"id": "r1", "e": "text exceeds maximum length of 100000 characters", "c": 413}

Codes follow HTTP conventions: 400 for malformed requests, 404 for unknown
patterns or dictionaries, 413 for oversized text, 503 while dictionaries are
loading, 500 otherwise.
*/
package server

import (
	"github.com/bastiangx/wordlens/pkg/dictionary"
	"github.com/bastiangx/wordlens/pkg/domain"
)

// Error codes
const (
	CodeBadRequest  = 400
	CodeNotFound    = 404
	CodeTooLarge    = 413
	CodeInternal    = 500
	CodeUnavailable = 503
)

// Request is the envelope for every command. Fields a command does not use
// are ignored.
type Request struct {
	ID      string `json:"id" msgpack:"id"`
	Command string `json:"cmd" msgpack:"cmd"`
	Text    string `json:"text,omitempty" msgpack:"text,omitempty"`
	Prefix  string `json:"prefix,omitempty" msgpack:"prefix,omitempty"`
	Limit   int    `json:"limit,omitempty" msgpack:"limit,omitempty"`
	Pattern string `json:"pattern,omitempty" msgpack:"pattern,omitempty"`
	Path    string `json:"path,omitempty" msgpack:"path,omitempty"`
	Dict    string `json:"dict,omitempty" msgpack:"dict,omitempty"`
	// config updates
	MaxTextLength *int  `json:"max_text_length,omitempty" msgpack:"max_text_length,omitempty"`
	CacheSize     *int  `json:"cache_size,omitempty" msgpack:"cache_size,omitempty"`
	ShowRelated   *bool `json:"show_related,omitempty" msgpack:"show_related,omitempty"`
}

// MeaningItem - one meaning of a pattern
type MeaningItem struct {
	Translation      string `json:"translation" msgpack:"translation"`
	PartOfSpeech     string `json:"partOfSpeech" msgpack:"partOfSpeech"`
	BaseForm         string `json:"baseForm" msgpack:"baseForm"`
	BaseTranslation  string `json:"baseTranslation,omitempty" msgpack:"baseTranslation,omitempty"`
	ProficiencyLevel string `json:"proficiencyLevel,omitempty" msgpack:"proficiencyLevel,omitempty"`
	Source           string `json:"source,omitempty" msgpack:"source,omitempty"`
}

// RelatedItem - a suppressed match attached to an annotation
type RelatedItem struct {
	Pattern     string        `json:"pattern" msgpack:"pattern"`
	Kind        string        `json:"kind" msgpack:"kind"`
	Start       int           `json:"start" msgpack:"start"`
	End         int           `json:"end" msgpack:"end"`
	MatchedText string        `json:"matchedText" msgpack:"matchedText"`
	Meanings    []MeaningItem `json:"meanings" msgpack:"meanings"`
}

// AnnotationItem - one accepted span
type AnnotationItem struct {
	Pattern     string        `json:"pattern" msgpack:"pattern"`
	Kind        string        `json:"kind" msgpack:"kind"`
	Start       int           `json:"start" msgpack:"start"`
	End         int           `json:"end" msgpack:"end"`
	MatchedText string        `json:"matchedText" msgpack:"matchedText"`
	Meanings    []MeaningItem `json:"meanings" msgpack:"meanings"`
	Related     []RelatedItem `json:"related" msgpack:"related"`
}

// FindResponse - annotations for a find request
type FindResponse struct {
	ID          string           `json:"id" msgpack:"id"`
	Annotations []AnnotationItem `json:"annotations" msgpack:"annotations"`
	Count       int              `json:"count" msgpack:"count"`
	TimeTaken   int64            `json:"t" msgpack:"t"` // microseconds
}

// CompletionItem - one completion suggestion
type CompletionItem struct {
	Pattern     string `json:"pattern" msgpack:"pattern"`
	Kind        string `json:"kind" msgpack:"kind"`
	Translation string `json:"translation,omitempty" msgpack:"translation,omitempty"`
	Meanings    int    `json:"meanings" msgpack:"meanings"`
	Rank        uint16 `json:"rank" msgpack:"rank"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string           `json:"id" msgpack:"id"`
	Suggestions []CompletionItem `json:"suggestions" msgpack:"suggestions"`
	Count       int              `json:"count" msgpack:"count"`
	TimeTaken   int64            `json:"t" msgpack:"t"`
}

// LookupResponse - entry for a single pattern
type LookupResponse struct {
	ID       string        `json:"id" msgpack:"id"`
	Pattern  string        `json:"pattern" msgpack:"pattern"`
	Kind     string        `json:"kind" msgpack:"kind"`
	Meanings []MeaningItem `json:"meanings" msgpack:"meanings"`
}

// DictionaryItem - one loaded dictionary
type DictionaryItem struct {
	ID      string `json:"id" msgpack:"id"`
	Kind    string `json:"kind" msgpack:"kind"`
	Path    string `json:"path,omitempty" msgpack:"path,omitempty"`
	Entries int    `json:"entries" msgpack:"entries"`
	Skipped int    `json:"skipped" msgpack:"skipped"`
}

// DictionaryResponse - dictionary operation response
type DictionaryResponse struct {
	ID           string           `json:"id" msgpack:"id"`
	Status       string           `json:"status" msgpack:"status"`
	Dictionaries []DictionaryItem `json:"dictionaries" msgpack:"dictionaries"`
	Patterns     int              `json:"patterns,omitempty" msgpack:"patterns,omitempty"`
	Skipped      int              `json:"skipped,omitempty" msgpack:"skipped,omitempty"`
}

// StatsResponse - manager statistics
type StatsResponse struct {
	ID    string           `json:"id" msgpack:"id"`
	Stats dictionary.Stats `json:"stats" msgpack:"stats"`
}

// ConfigResponse - config operation response
type ConfigResponse struct {
	ID            string `json:"id" msgpack:"id"`
	Status        string `json:"status" msgpack:"status"`
	Codec         string `json:"codec" msgpack:"codec"`
	MaxTextLength int    `json:"max_text_length" msgpack:"max_text_length"`
	CacheSize     int    `json:"cache_size" msgpack:"cache_size"`
	ShowRelated   bool   `json:"show_related" msgpack:"show_related"`
}

// StatusResponse - health and ready messages
type StatusResponse struct {
	ID      string   `json:"id,omitempty" msgpack:"id,omitempty"`
	Status  string   `json:"status" msgpack:"status"`
	Ready   bool     `json:"ready" msgpack:"ready"`
	Formats []string `json:"formats,omitempty" msgpack:"formats,omitempty"`
}

// ErrorResponse holds basic error information for any failed request
type ErrorResponse struct {
	ID    string `json:"id" msgpack:"id"`
	Error string `json:"e" msgpack:"e"`
	Code  int    `json:"c" msgpack:"c"`
}

func toMeaningItems(ms []domain.Meaning) []MeaningItem {
	items := make([]MeaningItem, len(ms))
	for i, m := range ms {
		items[i] = MeaningItem{
			Translation:      m.Translation,
			PartOfSpeech:     m.PartOfSpeech,
			BaseForm:         m.BaseForm,
			BaseTranslation:  m.BaseTranslation,
			ProficiencyLevel: m.ProficiencyLevel,
			Source:           m.SourceID,
		}
	}
	return items
}

func toAnnotationItems(anns []domain.Annotation) []AnnotationItem {
	items := make([]AnnotationItem, len(anns))
	for i, a := range anns {
		related := make([]RelatedItem, len(a.Related))
		for j, r := range a.Related {
			related[j] = RelatedItem{
				Pattern:     r.Pattern,
				Kind:        r.Kind.String(),
				Start:       r.Start,
				End:         r.End,
				MatchedText: r.MatchedText,
				Meanings:    toMeaningItems(r.Meanings),
			}
		}
		items[i] = AnnotationItem{
			Pattern:     a.Pattern,
			Kind:        a.Kind.String(),
			Start:       a.Start,
			End:         a.End,
			MatchedText: a.MatchedText,
			Meanings:    toMeaningItems(a.Meanings),
			Related:     related,
		}
	}
	return items
}

func toDictionaryItems(infos []dictionary.DictionaryInfo) []DictionaryItem {
	items := make([]DictionaryItem, len(infos))
	for i, info := range infos {
		items[i] = DictionaryItem{
			ID:      info.ID,
			Kind:    info.Kind.String(),
			Path:    info.Path,
			Entries: info.Entries,
			Skipped: info.Skipped,
		}
	}
	return items
}
