package utils

// spanKey identifies one occurrence of a pattern.
type spanKey struct {
	pattern    string
	start, end int
}

// SpanFilter drops repeated (pattern, start, end) candidates. Not safe for
// concurrent use; create one per scan.
type SpanFilter struct {
	seen map[spanKey]struct{}
}

// NewSpanFilter creates an empty filter.
func NewSpanFilter() *SpanFilter {
	return &SpanFilter{seen: make(map[spanKey]struct{})}
}

// ShouldInclude returns true the first time a pattern occurrence is seen.
func (f *SpanFilter) ShouldInclude(pattern string, start, end int) bool {
	key := spanKey{pattern: pattern, start: start, end: end}
	if _, ok := f.seen[key]; ok {
		return false
	}
	f.seen[key] = struct{}{}
	return true
}
