package utils

import (
	"sync"
	"unicode/utf8"
)

// Offset tables are pooled to reduce allocations on repeated scans.
var offsetPool = sync.Pool{
	New: func() any {
		buf := make([]int, 0, 1024)
		return &buf
	},
}

// RuneIndex maps byte offsets of an encoded string to rune offsets.
type RuneIndex struct {
	byteToRune *[]int
}

// NewRuneIndex builds the index for s. Release must be called when done.
func NewRuneIndex(s string) *RuneIndex {
	buf := offsetPool.Get().(*[]int)
	table := (*buf)[:0]
	if cap(table) < len(s)+1 {
		table = make([]int, 0, len(s)+1)
	}
	table = table[:len(s)+1]

	n := 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		for j := 0; j < size; j++ {
			table[i+j] = n
		}
		i += size
		n++
	}
	table[len(s)] = n
	*buf = table
	return &RuneIndex{byteToRune: buf}
}

// Rune returns the rune offset of byte offset b. Offsets inside a multi-byte
// rune resolve to that rune.
func (ri *RuneIndex) Rune(b int) int {
	table := *ri.byteToRune
	if b < 0 {
		return 0
	}
	if b >= len(table) {
		return table[len(table)-1]
	}
	return table[b]
}

// Release returns the table to the pool.
func (ri *RuneIndex) Release() {
	if ri.byteToRune == nil {
		return
	}
	offsetPool.Put(ri.byteToRune)
	ri.byteToRune = nil
}
