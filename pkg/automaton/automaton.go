// Package automaton implements the Aho-Corasick matcher behind word
// recognition: a rune trie over every registered pattern, failure links
// computed breadth first, and output lists inherited along the failure chain.
//
// Nodes live in a dense arena and refer to each other by index, so the
// failure graph (which points back to arbitrary shallower nodes) needs no
// pointers. The automaton is mutable until Build and read-only afterwards,
// which makes concurrent Next/Outputs calls safe.
package automaton

import (
	"time"

	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/charmbracelet/log"
)

// root is the arena index of the root node.
const root = 0

type node struct {
	children map[rune]int
	// edges keeps child runes in insertion order for a deterministic BFS.
	edges    []rune
	fail     int
	outputs  []*domain.Entry
	terminal bool
	pattern  string
	depth    int
}

// Automaton is the trie plus failure links.
type Automaton struct {
	nodes   []node
	entries []*domain.Entry
	ready   bool
	stats   Stats
}

// Stats describes a built automaton.
type Stats struct {
	Nodes     int
	Patterns  int
	MaxDepth  int
	BuildTime time.Duration
}

// New creates an empty automaton holding only the root.
func New() *Automaton {
	return &Automaton{nodes: []node{newNode(0)}}
}

func newNode(depth int) node {
	return node{children: make(map[rune]int), fail: root, depth: depth}
}

// Add registers an entry for the next Build.
func (a *Automaton) Add(entry *domain.Entry) error {
	if a.ready {
		pattern := ""
		if entry != nil {
			pattern = entry.Pattern
		}
		return &domain.BuildStateError{Op: "add pattern", Pattern: pattern}
	}
	if entry == nil || entry.Pattern == "" {
		return domain.ErrEmptyPattern
	}
	a.entries = append(a.entries, entry)
	return nil
}

// Ready reports whether Build has completed.
func (a *Automaton) Ready() bool {
	return a.ready
}

// Build inserts every registered pattern, links failure transitions and
// propagates outputs. Calling Build on a ready automaton does nothing.
func (a *Automaton) Build() {
	if a.ready {
		return
	}
	start := time.Now()

	for _, e := range a.entries {
		a.insert(e)
	}
	a.link()

	a.ready = true
	a.stats.Nodes = len(a.nodes)
	a.stats.Patterns = len(a.entries)
	a.stats.BuildTime = time.Since(start)
	log.Debugf("Automaton built: %d patterns, %d nodes, max depth %d in %v",
		a.stats.Patterns, a.stats.Nodes, a.stats.MaxDepth, a.stats.BuildTime)
}

// insert walks pattern runes from the root, creating nodes as needed.
func (a *Automaton) insert(e *domain.Entry) {
	cur := root
	for _, r := range e.Pattern {
		next, ok := a.nodes[cur].children[r]
		if !ok {
			next = len(a.nodes)
			a.nodes = append(a.nodes, newNode(a.nodes[cur].depth+1))
			a.nodes[cur].children[r] = next
			a.nodes[cur].edges = append(a.nodes[cur].edges, r)
		}
		cur = next
	}
	n := &a.nodes[cur]
	n.terminal = true
	n.pattern = e.Pattern
	n.outputs = append(n.outputs, e)
	if n.depth > a.stats.MaxDepth {
		a.stats.MaxDepth = n.depth
	}
}

// link computes failure links breadth first. A node's outputs become its own
// terminal entry followed by the outputs of its failure target; targets are
// always shallower, so they are final by the time a node is dequeued.
func (a *Automaton) link() {
	queue := make([]int, 0, len(a.nodes))
	for _, r := range a.nodes[root].edges {
		child := a.nodes[root].children[r]
		a.nodes[child].fail = root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, r := range a.nodes[cur].edges {
			child := a.nodes[cur].children[r]
			queue = append(queue, child)

			f := a.nodes[cur].fail
			for f != root {
				if _, ok := a.nodes[f].children[r]; ok {
					break
				}
				f = a.nodes[f].fail
			}
			target := root
			if next, ok := a.nodes[f].children[r]; ok && next != child {
				target = next
			}
			a.nodes[child].fail = target

			if inherited := a.nodes[target].outputs; len(inherited) > 0 {
				own := a.nodes[child].outputs
				merged := make([]*domain.Entry, 0, len(own)+len(inherited))
				merged = append(merged, own...)
				merged = append(merged, inherited...)
				a.nodes[child].outputs = merged
			}
		}
	}
}

// Root returns the start state.
func (a *Automaton) Root() int {
	return root
}

// Next follows the goto function from state on rune r, falling back along
// failure links. It returns the root when no prefix survives.
func (a *Automaton) Next(state int, r rune) int {
	for {
		if next, ok := a.nodes[state].children[r]; ok {
			return next
		}
		if state == root {
			return root
		}
		state = a.nodes[state].fail
	}
}

// Outputs returns every entry whose pattern is a suffix of the path to state.
// The slice is shared and must not be modified.
func (a *Automaton) Outputs(state int) []*domain.Entry {
	return a.nodes[state].outputs
}

// Fail returns the failure link of state.
func (a *Automaton) Fail(state int) int {
	return a.nodes[state].fail
}

// Depth returns the length in runes of the path to state.
func (a *Automaton) Depth(state int) int {
	return a.nodes[state].depth
}

// Terminal reports whether a pattern ends exactly at state, and which.
func (a *Automaton) Terminal(state int) (string, bool) {
	n := a.nodes[state]
	return n.pattern, n.terminal
}

// Stats returns build statistics. Zero until Build.
func (a *Automaton) Stats() Stats {
	return a.stats
}
