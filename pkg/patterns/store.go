// Package patterns is the normalized pattern store: every dictionary key maps
// to a single entry holding its kind and one or more meanings. The store is
// filled incrementally and frozen when the automaton is built.
package patterns

import (
	"github.com/bastiangx/wordlens/internal/utils"
	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Store indexes entries by normalized pattern. It is not safe for concurrent
// mutation; the dictionary manager serializes writers.
type Store struct {
	trie     *patricia.Trie
	entries  []*domain.Entry
	meanings int
	frozen   bool
}

// NewStore creates an empty, mutable store.
func NewStore() *Store {
	return &Store{trie: patricia.NewTrie()}
}

// Add registers meanings under the normalized pattern. A pattern added again
// grows its meaning list; identical meanings are kept once. The kind of the
// first registration wins.
func (s *Store) Add(pattern string, kind domain.Kind, meanings ...domain.Meaning) (*domain.Entry, error) {
	key := utils.NormalizePattern(pattern)
	if s.frozen {
		return nil, &domain.BuildStateError{Op: "add pattern", Pattern: key}
	}
	if key == "" {
		return nil, domain.ErrEmptyPattern
	}
	if len(meanings) == 0 {
		return nil, &domain.MalformedEntryError{Key: key, Missing: []string{"meanings"}}
	}

	if item := s.trie.Get(patricia.Prefix(key)); item != nil {
		entry := item.(*domain.Entry)
		if entry.Kind != kind {
			log.Debugf("Pattern %q registered as %s, ignoring kind %s", key, entry.Kind, kind)
		}
		for _, m := range meanings {
			if !containsMeaning(entry.Meanings, m) {
				entry.Meanings = append(entry.Meanings, m)
				s.meanings++
			}
		}
		return entry, nil
	}

	entry := &domain.Entry{
		Pattern:  key,
		Kind:     kind,
		Meanings: append([]domain.Meaning(nil), meanings...),
		Seq:      len(s.entries),
	}
	s.trie.Insert(patricia.Prefix(key), entry)
	s.entries = append(s.entries, entry)
	s.meanings += len(entry.Meanings)
	return entry, nil
}

func containsMeaning(list []domain.Meaning, m domain.Meaning) bool {
	for _, existing := range list {
		if existing == m {
			return true
		}
	}
	return false
}

// Get returns the entry for a pattern, normalizing the lookup key.
func (s *Store) Get(pattern string) (*domain.Entry, bool) {
	item := s.trie.Get(patricia.Prefix(utils.NormalizePattern(pattern)))
	if item == nil {
		return nil, false
	}
	return item.(*domain.Entry), true
}

// Entries returns the entries in insertion order. The slice is shared and
// must not be modified.
func (s *Store) Entries() []*domain.Entry {
	return s.entries
}

// Len returns the number of distinct patterns.
func (s *Store) Len() int {
	return len(s.entries)
}

// MeaningCount returns the number of meanings across all patterns.
func (s *Store) MeaningCount() int {
	return s.meanings
}

// Freeze makes the store read-only.
func (s *Store) Freeze() {
	s.frozen = true
}

// Frozen reports whether Freeze was called.
func (s *Store) Frozen() bool {
	return s.frozen
}

// WalkPrefix visits every entry whose pattern starts with the normalized
// prefix, in trie order. Returning an error from fn stops the walk.
func (s *Store) WalkPrefix(prefix string, fn func(*domain.Entry) error) error {
	key := utils.NormalizePattern(prefix)
	return s.trie.VisitSubtree(patricia.Prefix(key), func(_ patricia.Prefix, item patricia.Item) error {
		return fn(item.(*domain.Entry))
	})
}
