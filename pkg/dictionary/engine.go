package dictionary

import (
	"unicode/utf8"

	"github.com/bastiangx/wordlens/pkg/automaton"
	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/bastiangx/wordlens/pkg/patterns"
	"github.com/bastiangx/wordlens/pkg/resolve"
	"github.com/bastiangx/wordlens/pkg/scan"
)

// engine bundles one generation of store, automaton and scanner. It is
// mutable until build and read-only afterwards.
type engine struct {
	store   *patterns.Store
	auto    *automaton.Automaton
	scanner *scan.Scanner
	ready   bool
}

func newEngine() *engine {
	return &engine{store: patterns.NewStore(), auto: automaton.New()}
}

func (e *engine) add(pattern string, kind domain.Kind, meanings ...domain.Meaning) error {
	if e.ready {
		return &domain.BuildStateError{Op: "add pattern", Pattern: pattern}
	}
	_, err := e.store.Add(pattern, kind, meanings...)
	return err
}

// build freezes the store and compiles the automaton and scanner once.
func (e *engine) build() error {
	if e.ready {
		return nil
	}
	e.store.Freeze()
	for _, entry := range e.store.Entries() {
		if err := e.auto.Add(entry); err != nil {
			return err
		}
	}
	e.auto.Build()
	scanner, err := scan.New(e.auto, e.store.Entries())
	if err != nil {
		return err
	}
	e.scanner = scanner
	e.ready = true
	return nil
}

// find scans and resolves text.
func (e *engine) find(text string) ([]domain.Annotation, []error) {
	matches := e.scanner.Scan(text)
	return resolve.Resolve(utf8.RuneCountInString(text), matches)
}
