package dictionary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bastiangx/wordlens/pkg/domain"
)

// Source is one parsed dictionary: every entry already mapped to a typed
// meaning, not yet validated.
type Source struct {
	ID      string
	Kind    domain.Kind
	Path    string
	Entries []RawEntry
}

// RawEntry is a source key with its mapped meaning. Pattern is the key up to
// its first underscore ("springer_verb" -> "springer").
type RawEntry struct {
	Key     string
	Pattern string
	Meaning domain.Meaning
}

// fieldAliases lists accepted source field names per meaning field, in
// lookup order.
var fieldAliases = map[string][]string{
	"translation":      {"translation", "vertimas"},
	"partOfSpeech":     {"partOfSpeech", "part_of_speech", "pos", "kalbos dalis"},
	"baseForm":         {"baseForm", "base_form", "bazinė forma"},
	"baseTranslation":  {"baseTranslation", "base_translation", "bazė vertimas"},
	"proficiencyLevel": {"proficiencyLevel", "proficiency_level", "level", "CERF", "cefr", "CEFR"},
}

// PatternFromKey strips the disambiguation suffix of a source key.
func PatternFromKey(key string) string {
	pattern, _, _ := strings.Cut(key, "_")
	return strings.TrimSpace(pattern)
}

// NewSource maps decoded fields onto typed entries. Keys are processed in
// sorted order so insertion sequence is stable across formats.
func NewSource(id string, kind domain.Kind, raw map[string]map[string]any) Source {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	src := Source{ID: id, Kind: kind, Entries: make([]RawEntry, 0, len(keys))}
	for _, key := range keys {
		fields := raw[key]
		src.Entries = append(src.Entries, RawEntry{
			Key:     key,
			Pattern: PatternFromKey(key),
			Meaning: domain.Meaning{
				Translation:      lookupField(fields, "translation"),
				PartOfSpeech:     lookupField(fields, "partOfSpeech"),
				BaseForm:         lookupField(fields, "baseForm"),
				BaseTranslation:  lookupField(fields, "baseTranslation"),
				ProficiencyLevel: lookupField(fields, "proficiencyLevel"),
				SourceID:         id,
			},
		})
	}
	return src
}

func lookupField(fields map[string]any, name string) string {
	for _, alias := range fieldAliases[name] {
		v, ok := fields[alias]
		if !ok || v == nil {
			continue
		}
		var s string
		switch tv := v.(type) {
		case string:
			s = tv
		case []byte:
			s = string(tv)
		default:
			s = fmt.Sprint(tv)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
