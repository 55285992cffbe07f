package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/bastiangx/wordlens/internal/utils"
	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// DefaultPhraseMarker marks phrase dictionaries by name, e.g. lt_phrases.json.
const DefaultPhraseMarker = "phrases"

// Loader reads dictionary files into sources. It never touches the matching
// engine; hand the result to Manager.LoadDictionaries.
type Loader struct {
	phraseMarker string
	workers      int
}

// LoaderStats provides statistics about one loading pass
type LoaderStats struct {
	Files    int
	Loaded   int
	Failed   int
	Entries  int
	Duration time.Duration
}

// NewLoader creates a loader. An empty marker uses DefaultPhraseMarker and a
// non-positive worker count uses GOMAXPROCS.
func NewLoader(phraseMarker string, workers int) *Loader {
	if phraseMarker == "" {
		phraseMarker = DefaultPhraseMarker
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Loader{phraseMarker: phraseMarker, workers: workers}
}

// KindFor returns Phrase when the source id contains the phrase marker.
func (l *Loader) KindFor(id string) domain.Kind {
	if strings.Contains(strings.ToLower(id), strings.ToLower(l.phraseMarker)) {
		return domain.Phrase
	}
	return domain.Word
}

// ParseSource decodes one source from r.
func (l *Loader) ParseSource(id string, r io.Reader, format FileFormat, compressed bool) (Source, error) {
	raw, err := Decode(r, format, compressed)
	if err != nil {
		return Source{}, fmt.Errorf("parse %s: %w", id, err)
	}
	return NewSource(id, l.KindFor(id), raw), nil
}

// LoadFile reads and parses a single dictionary file.
func (l *Loader) LoadFile(path string) (Source, error) {
	format, compressed, err := DetectFileFormat(path)
	if err != nil {
		return Source{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to open dictionary %s: %w", path, err)
	}
	defer file.Close()

	src, err := l.ParseSource(SourceID(path), file, format, compressed)
	if err != nil {
		return Source{}, err
	}
	src.Path = path
	log.Debugf("Loaded dictionary %s: %d entries (%s)", src.ID, len(src.Entries), src.Kind)
	return src, nil
}

// ExpandPaths turns files and directories into a flat, sorted list of
// dictionary files. Directories contribute their supported files.
func ExpandPaths(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, p := range paths {
		if utils.IsDir(p) {
			found, err := utils.ListFiles(p, IsDictionaryFile)
			if err != nil {
				return nil, fmt.Errorf("failed to scan dictionary dir %s: %w", p, err)
			}
			for _, f := range found {
				if !seen[f] {
					seen[f] = true
					files = append(files, f)
				}
			}
			continue
		}
		if !utils.FileExists(p) {
			return nil, fmt.Errorf("dictionary path %s: %w", p, os.ErrNotExist)
		}
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	return files, nil
}

// HasDictionaries reports whether dir holds at least one supported file.
func HasDictionaries(dir string) bool {
	files, err := utils.ListFiles(dir, IsDictionaryFile)
	return err == nil && len(files) > 0
}

// LoadPaths expands paths and parses every file concurrently. Sources come
// back in path order. Files that fail to parse are skipped, logged, and
// reported in the joined error alongside the sources that did load; only
// context cancellation aborts the pass.
func (l *Loader) LoadPaths(ctx context.Context, paths []string) ([]Source, LoaderStats, error) {
	start := time.Now()
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, LoaderStats{}, err
	}

	results := make([]Source, len(files))
	failures := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := l.LoadFile(path)
			if err != nil {
				log.Warnf("Skipping dictionary %s: %v", path, err)
				failures[i] = err
				return nil
			}
			results[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, LoaderStats{}, err
	}

	stats := LoaderStats{Files: len(files)}
	sources := make([]Source, 0, len(files))
	for i := range files {
		if failures[i] != nil {
			stats.Failed++
			continue
		}
		sources = append(sources, results[i])
		stats.Loaded++
		stats.Entries += len(results[i].Entries)
	}
	stats.Duration = time.Since(start)
	log.Debugf("Loaded %d/%d dictionaries (%d entries) in %v", stats.Loaded, stats.Files, stats.Entries, stats.Duration)
	return sources, stats, errors.Join(failures...)
}
