package dictionary

import (
	"sync/atomic"

	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ResultCache memoizes resolved annotations per input text. A nil or
// zero-sized cache misses every lookup.
type ResultCache struct {
	lru    *lru.Cache[string, []domain.Annotation]
	size   int
	hits   atomic.Int64
	misses atomic.Int64
}

// NewResultCache creates a cache holding up to size texts.
func NewResultCache(size int) *ResultCache {
	rc := &ResultCache{}
	if size <= 0 {
		return rc
	}
	cache, err := lru.New[string, []domain.Annotation](size)
	if err != nil {
		log.Warnf("Result cache disabled: %v", err)
		return rc
	}
	rc.lru = cache
	rc.size = size
	return rc
}

// Get returns a deep copy of the cached annotations for text.
func (rc *ResultCache) Get(text string) ([]domain.Annotation, bool) {
	if rc == nil || rc.lru == nil {
		return nil, false
	}
	anns, ok := rc.lru.Get(text)
	if !ok {
		rc.misses.Add(1)
		return nil, false
	}
	rc.hits.Add(1)
	return domain.CloneAnnotations(anns), true
}

// Add stores a private copy of annotations for text.
func (rc *ResultCache) Add(text string, anns []domain.Annotation) {
	if rc == nil || rc.lru == nil {
		return
	}
	rc.lru.Add(text, domain.CloneAnnotations(anns))
}

// Purge drops every entry. Called whenever the engine changes.
func (rc *ResultCache) Purge() {
	if rc == nil || rc.lru == nil {
		return
	}
	rc.lru.Purge()
}

// Stats reports cache occupancy and hit counters.
func (rc *ResultCache) Stats() map[string]int {
	if rc == nil {
		return map[string]int{}
	}
	entries := 0
	if rc.lru != nil {
		entries = rc.lru.Len()
	}
	return map[string]int{
		"cacheEntries": entries,
		"cacheSize":    rc.size,
		"cacheHits":    int(rc.hits.Load()),
		"cacheMisses":  int(rc.misses.Load()),
	}
}
