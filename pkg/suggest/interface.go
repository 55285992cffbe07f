// Package suggest provides prefix completion over the pattern store, used by
// the server and the repl to help users look up dictionary patterns.
package suggest

// ICompleter defines the interface for pattern completion engines
type ICompleter interface {
	// Complete returns suggestions for a given prefix with a limit
	Complete(prefix string, limit int) []Suggestion
}
