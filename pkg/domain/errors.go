package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across the matching engine.
var (
	ErrAlreadyBuilt   = errors.New("automaton already built")
	ErrNotBuilt       = errors.New("automaton not built")
	ErrMalformedEntry = errors.New("malformed dictionary entry")
	ErrInvalidSpan    = errors.New("invalid match span")
	ErrEmptyPattern   = errors.New("empty pattern")
)

// BuildStateError is returned when patterns are mutated after the automaton
// has been built.
type BuildStateError struct {
	Op      string
	Pattern string
}

func (e *BuildStateError) Error() string {
	if e.Pattern == "" {
		return fmt.Sprintf("%s: %v", e.Op, ErrAlreadyBuilt)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Pattern, ErrAlreadyBuilt)
}

func (e *BuildStateError) Unwrap() error { return ErrAlreadyBuilt }

// AlreadyBuiltError is the name the dictionary tooling uses for BuildStateError.
type AlreadyBuiltError = BuildStateError

// NotBuiltError is returned by queries issued before the first build or while
// a rebuild is in progress.
type NotBuiltError struct {
	Op string
}

func (e *NotBuiltError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, ErrNotBuilt)
}

func (e *NotBuiltError) Unwrap() error { return ErrNotBuilt }

// MalformedEntryError describes a source entry that is missing required
// meaning fields. Loaders skip such entries and count them.
type MalformedEntryError struct {
	Source  string
	Key     string
	Missing []string
}

func (e *MalformedEntryError) Error() string {
	var b strings.Builder
	b.WriteString("malformed entry")
	if e.Source != "" {
		fmt.Fprintf(&b, " in %s", e.Source)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing %s", strings.Join(e.Missing, ", "))
	}
	return b.String()
}

func (e *MalformedEntryError) Unwrap() error { return ErrMalformedEntry }

// InvalidSpanWarning reports a candidate match with inconsistent offsets.
// The candidate is dropped and the search continues.
type InvalidSpanWarning struct {
	Pattern string
	Start   int
	End     int
	TextLen int
}

func (w *InvalidSpanWarning) Error() string {
	return fmt.Sprintf("%v: %q [%d,%d) in text of length %d", ErrInvalidSpan, w.Pattern, w.Start, w.End, w.TextLen)
}

func (w *InvalidSpanWarning) Unwrap() error { return ErrInvalidSpan }
