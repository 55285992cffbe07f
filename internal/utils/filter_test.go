package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBoundary(t *testing.T) {
	for _, r := range " \t\n.,!?;:'\"()[]{}<>/-—–_„“”" {
		assert.True(t, IsBoundary(r), "expected %q to be a boundary", r)
	}
	for _, r := range "aZå9ßж" {
		assert.False(t, IsBoundary(r), "expected %q not to be a boundary", r)
	}
}

func TestIsWholeSpan(t *testing.T) {
	tests := []struct {
		text       string
		start, end int
		want       bool
	}{
		{"category", 0, 3, false},
		{"the cat sat", 4, 7, true},
		{"cat", 0, 3, true},
		{"(cat)", 1, 4, true},
		{"my_cat_", 3, 6, true},
		{"bobcat", 3, 6, false},
		{"cat", 0, 0, true},
		{"cat", 2, 1, false},
		{"cat", -1, 2, false},
		{"cat", 1, 9, false},
	}
	for _, tt := range tests {
		got := IsWholeSpan([]rune(tt.text), tt.start, tt.end)
		assert.Equal(t, tt.want, got, "%q [%d,%d)", tt.text, tt.start, tt.end)
	}
}

func TestSplitWords(t *testing.T) {
	runs := SplitWords([]rune("  Han springer—fort."))
	require.Len(t, runs, 3)
	assert.Equal(t, WordRun{Start: 2, End: 5}, runs[0])
	assert.Equal(t, WordRun{Start: 6, End: 14}, runs[1])
	assert.Equal(t, WordRun{Start: 15, End: 19}, runs[2])

	assert.Empty(t, SplitWords([]rune(" ,. ")))
	assert.Equal(t, []WordRun{{0, 4}}, SplitWords([]rune("word")))
}

func TestNormalizePattern(t *testing.T) {
	assert.Equal(t, "good morning", NormalizePattern("  Good \t Morning "))
	assert.Equal(t, "på", NormalizePattern("PÅ"))
	// decomposed a + combining ring composes to the single rune form
	assert.Equal(t, "p\u00e5", NormalizePattern("pa\u030a"))
	assert.Equal(t, "", NormalizePattern("   "))
}

func TestLowerRunes_PreservesLength(t *testing.T) {
	in := "Æble ÅR İstanbul"
	out := LowerRunes(in)
	assert.Equal(t, RuneLen(in), len(out))
	assert.Equal(t, 'æ', out[0])
}

func TestRuneIndex(t *testing.T) {
	s := "på vej"
	ri := NewRuneIndex(s)
	defer ri.Release()

	assert.Equal(t, 0, ri.Rune(0))
	assert.Equal(t, 1, ri.Rune(1))
	assert.Equal(t, 1, ri.Rune(2), "second byte of å")
	assert.Equal(t, 2, ri.Rune(3))
	assert.Equal(t, 6, ri.Rune(len(s)))
}

func TestSpanFilter(t *testing.T) {
	f := NewSpanFilter()
	assert.True(t, f.ShouldInclude("cat", 0, 3))
	assert.False(t, f.ShouldInclude("cat", 0, 3))
	assert.True(t, f.ShouldInclude("cat", 4, 7))
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.yaml", ".hidden.json", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	files, err := ListFiles(dir, func(name string) bool {
		ext := filepath.Ext(name)
		return ext == ".json" || ext == ".yaml"
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.json")}, files)
}

func TestExtractHelpers(t *testing.T) {
	data := map[string]any{
		"paths": []any{"a", 3, "b"},
		"level": "debug",
		"size":  int64(12),
		"watch": true,
	}
	paths, ok := ExtractStringSlice(data, "paths")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, paths)

	level, ok := ExtractString(data, "level")
	assert.True(t, ok)
	assert.Equal(t, "debug", level)

	size, ok := ExtractInt64(data, "size")
	assert.True(t, ok)
	assert.Equal(t, 12, size)

	_, ok = ExtractBool(data, "missing")
	assert.False(t, ok)
}
