package dictionary

import (
	"errors"
	"sync"
	"time"

	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/bastiangx/wordlens/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Manager owns the pattern store, automaton and scanner lifecycle and is the
// single entry point for queries. All methods are safe for concurrent use.
// Queries only take a read lock; loads swap in a freshly built engine and
// queries issued meanwhile fail with NotBuiltError.
type Manager struct {
	mu     sync.RWMutex
	loadMu sync.Mutex // serializes writers

	eng     *engine
	sources []Source
	infos   []DictionaryInfo
	skipped int

	cache *ResultCache

	statsMu       sync.Mutex
	searches      int64
	searchTime    time.Duration
	droppedSpans  int64
	lastSearch    time.Duration
	lastBuildTime time.Duration
}

// DictionaryInfo summarizes one loaded source.
type DictionaryInfo struct {
	ID      string      `json:"id" msgpack:"id"`
	Kind    domain.Kind `json:"kind" msgpack:"kind"`
	Path    string      `json:"path,omitempty" msgpack:"path,omitempty"`
	Entries int         `json:"entries" msgpack:"entries"`
	Skipped int         `json:"skipped" msgpack:"skipped"`
}

// LoadStats reports the outcome of LoadDictionaries.
type LoadStats struct {
	Sources  int
	Entries  int
	Patterns int
	Skipped  int
	Errors   []error
	Duration time.Duration
}

// Stats is a snapshot of the manager state and query counters.
type Stats struct {
	Ready              bool          `json:"ready"`
	TotalEntries       int           `json:"totalEntries"`
	Patterns           int           `json:"patterns"`
	Words              int           `json:"words"`
	Phrases            int           `json:"phrases"`
	Nodes              int           `json:"nodes"`
	LoadedDictionaries int           `json:"loadedDictionaries"`
	SkippedEntries     int           `json:"skippedEntries"`
	Searches           int64         `json:"searches"`
	AverageSearchTime  time.Duration `json:"averageSearchTime"`
	LastSearchTime     time.Duration `json:"lastSearchTime"`
	BuildTime          time.Duration `json:"buildTime"`
	DroppedSpans       int64         `json:"droppedSpans"`
	CacheHits          int           `json:"cacheHits"`
	CacheMisses        int           `json:"cacheMisses"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithCacheSize enables the result cache for up to n distinct texts.
func WithCacheSize(n int) Option {
	return func(m *Manager) {
		m.cache = NewResultCache(n)
	}
}

// NewManager creates an empty, unbuilt manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{eng: newEngine(), cache: NewResultCache(0)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddPattern registers a pattern with its meanings. It fails with a
// BuildStateError once the automaton is built.
func (m *Manager) AddPattern(pattern string, kind domain.Kind, meanings ...domain.Meaning) error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eng.add(pattern, kind, meanings...)
}

// Build compiles the automaton. Building a built manager does nothing.
func (m *Manager) Build() error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.eng.ready {
		return nil
	}
	start := time.Now()
	if err := m.eng.build(); err != nil {
		return err
	}
	m.cache.Purge()
	m.setBuildTime(time.Since(start))
	return nil
}

// SetCacheSize replaces the result cache. n <= 0 disables caching.
func (m *Manager) SetCacheSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = NewResultCache(n)
}

// Ready reports whether queries are currently accepted.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.eng != nil && m.eng.ready
}

// FindInText returns the resolved annotations of text, ordered by start.
// Offsets are rune offsets into text.
func (m *Manager) FindInText(text string) ([]domain.Annotation, error) {
	start := time.Now()

	m.mu.RLock()
	eng := m.eng
	if eng == nil || !eng.ready {
		m.mu.RUnlock()
		return nil, &domain.NotBuiltError{Op: "find in text"}
	}
	if cached, ok := m.cache.Get(text); ok {
		m.mu.RUnlock()
		m.recordSearch(time.Since(start), 0)
		return cached, nil
	}
	anns, warnings := eng.find(text)
	m.cache.Add(text, anns)
	m.mu.RUnlock()

	elapsed := time.Since(start)
	m.recordSearch(elapsed, len(warnings))
	log.Debugf("Found %d annotations in %d bytes of text in %v", len(anns), len(text), elapsed)
	return anns, nil
}

// Clear resets the manager to an empty, unbuilt state and forgets every
// loaded source.
func (m *Manager) Clear() {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.eng = newEngine()
	m.sources = nil
	m.infos = nil
	m.skipped = 0
	m.cache.Purge()
}

// LoadDictionaries replaces everything with the given sources: the store is
// reset, every valid entry is added, and the automaton is built once at the
// end. Invalid entries are skipped and counted.
func (m *Manager) LoadDictionaries(sources []Source) LoadStats {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	return m.load(sources)
}

// AddDictionary adds a source, replacing any loaded source with the same id,
// and rebuilds.
func (m *Manager) AddDictionary(src Source) LoadStats {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	sources := make([]Source, 0, len(m.sources)+1)
	replaced := false
	for _, s := range m.sources {
		if s.ID == src.ID {
			sources = append(sources, src)
			replaced = true
			continue
		}
		sources = append(sources, s)
	}
	if !replaced {
		sources = append(sources, src)
	}
	return m.load(sources)
}

// RemoveDictionary drops a source by id and rebuilds from the remaining ones.
// It reports whether the id was loaded.
func (m *Manager) RemoveDictionary(id string) (bool, LoadStats) {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	remaining := make([]Source, 0, len(m.sources))
	found := false
	for _, s := range m.sources {
		if s.ID == id {
			found = true
			continue
		}
		remaining = append(remaining, s)
	}
	if !found {
		return false, LoadStats{}
	}
	return true, m.load(remaining)
}

// load must be called with loadMu held.
func (m *Manager) load(sources []Source) LoadStats {
	start := time.Now()

	m.mu.Lock()
	m.eng = nil
	m.cache.Purge()
	m.mu.Unlock()

	eng := newEngine()
	stats := LoadStats{Sources: len(sources)}
	infos := make([]DictionaryInfo, 0, len(sources))
	for _, src := range sources {
		info := DictionaryInfo{ID: src.ID, Kind: src.Kind, Path: src.Path}
		for _, raw := range src.Entries {
			if err := addRaw(eng, src, raw); err != nil {
				log.Debugf("Skipping entry: %v", err)
				stats.Errors = append(stats.Errors, err)
				info.Skipped++
				continue
			}
			info.Entries++
		}
		stats.Entries += info.Entries
		stats.Skipped += info.Skipped
		infos = append(infos, info)
	}
	if err := eng.build(); err != nil {
		// build only fails on state errors, impossible on a fresh engine
		log.Errorf("Failed to build automaton: %v", err)
	}
	stats.Patterns = eng.store.Len()
	stats.Duration = time.Since(start)

	m.mu.Lock()
	m.eng = eng
	m.sources = append([]Source(nil), sources...)
	m.infos = infos
	m.skipped = stats.Skipped
	m.mu.Unlock()

	m.setBuildTime(stats.Duration)
	if stats.Skipped > 0 {
		log.Warnf("Skipped %d malformed dictionary entries", stats.Skipped)
	}
	log.Debugf("Loaded %d dictionaries: %d entries, %d patterns in %v",
		stats.Sources, stats.Entries, stats.Patterns, stats.Duration)
	return stats
}

func addRaw(eng *engine, src Source, raw RawEntry) error {
	if err := domain.ValidateMeaning(raw.Meaning); err != nil {
		var me *domain.MalformedEntryError
		if errors.As(err, &me) {
			me.Source = src.ID
			me.Key = raw.Key
		}
		return err
	}
	meaning := raw.Meaning
	if meaning.SourceID == "" {
		meaning.SourceID = src.ID
	}
	if err := eng.add(raw.Pattern, src.Kind, meaning); err != nil {
		if errors.Is(err, domain.ErrEmptyPattern) {
			return &domain.MalformedEntryError{Source: src.ID, Key: raw.Key, Missing: []string{"pattern"}}
		}
		return err
	}
	return nil
}

// Sources returns the loaded sources in load order.
func (m *Manager) Sources() []Source {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Source(nil), m.sources...)
}

// Dictionaries lists loaded sources in load order.
func (m *Manager) Dictionaries() []DictionaryInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]DictionaryInfo(nil), m.infos...)
}

// DictionaryWords returns word-kind patterns in insertion order.
func (m *Manager) DictionaryWords() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.eng == nil {
		return nil
	}
	var words []string
	for _, e := range m.eng.store.Entries() {
		if e.Kind == domain.Word {
			words = append(words, e.Pattern)
		}
	}
	return words
}

// Lookup returns a copy of the entry stored for pattern.
func (m *Manager) Lookup(pattern string) (domain.Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.eng == nil {
		return domain.Entry{}, false
	}
	e, ok := m.eng.store.Get(pattern)
	if !ok {
		return domain.Entry{}, false
	}
	out := *e
	out.Meanings = domain.CloneMeanings(e.Meanings)
	return out, true
}

// Complete returns up to limit patterns starting with prefix.
func (m *Manager) Complete(prefix string, limit int) []suggest.Suggestion {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.eng == nil {
		return []suggest.Suggestion{}
	}
	return suggest.Complete(m.eng.store, prefix, limit)
}

// Statistics returns a snapshot of the manager.
func (m *Manager) Statistics() Stats {
	m.mu.RLock()
	s := Stats{
		LoadedDictionaries: len(m.infos),
		SkippedEntries:     m.skipped,
	}
	if eng := m.eng; eng != nil {
		s.Ready = eng.ready
		s.Patterns = eng.store.Len()
		s.TotalEntries = eng.store.MeaningCount()
		for _, e := range eng.store.Entries() {
			if e.Kind == domain.Phrase {
				s.Phrases++
			} else {
				s.Words++
			}
		}
		s.Nodes = eng.auto.Stats().Nodes
	}
	cache := m.cache.Stats()
	m.mu.RUnlock()

	s.CacheHits = cache["cacheHits"]
	s.CacheMisses = cache["cacheMisses"]

	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	s.Searches = m.searches
	s.DroppedSpans = m.droppedSpans
	s.LastSearchTime = m.lastSearch
	s.BuildTime = m.lastBuildTime
	if m.searches > 0 {
		s.AverageSearchTime = m.searchTime / time.Duration(m.searches)
	}
	return s
}

func (m *Manager) recordSearch(elapsed time.Duration, dropped int) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	m.searches++
	m.searchTime += elapsed
	m.lastSearch = elapsed
	m.droppedSpans += int64(dropped)
}

func (m *Manager) setBuildTime(d time.Duration) {
	m.statsMu.Lock()
	m.lastBuildTime = d
	m.statsMu.Unlock()
}

// GroupByPattern groups annotations by pattern, preserving text order within
// each group.
func GroupByPattern(anns []domain.Annotation) map[string][]domain.Annotation {
	groups := make(map[string][]domain.Annotation)
	for _, a := range anns {
		groups[a.Pattern] = append(groups[a.Pattern], a)
	}
	return groups
}
