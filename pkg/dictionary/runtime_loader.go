package dictionary

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bastiangx/wordlens/internal/logger"
	"github.com/bastiangx/wordlens/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last file event
// before reloading.
const DefaultDebounce = 250 * time.Millisecond

// RuntimeLoader loads the configured dictionary paths into a manager and can
// keep them in sync with the filesystem while the server runs.
type RuntimeLoader struct {
	manager  *Manager
	loader   *Loader
	paths    []string
	debounce time.Duration
	wlog     *log.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	timer    *time.Timer
	done     chan struct{}
	onReload func(LoadStats, error)
	reloads  int
}

// NewRuntimeLoader creates a runtime loader for paths. A non-positive
// debounce uses DefaultDebounce.
func NewRuntimeLoader(manager *Manager, loader *Loader, paths []string, debounce time.Duration) *RuntimeLoader {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &RuntimeLoader{
		manager:  manager,
		loader:   loader,
		paths:    append([]string(nil), paths...),
		debounce: debounce,
		wlog:     logger.New("watch"),
	}
}

// OnReload registers a callback invoked after every watcher triggered reload.
func (rl *RuntimeLoader) OnReload(fn func(LoadStats, error)) {
	rl.mu.Lock()
	rl.onReload = fn
	rl.mu.Unlock()
}

// Reload parses every configured path and replaces the dictionaries loaded
// from them. Sources loaded from elsewhere, such as files added over IPC, are
// kept. Files that fail to parse are skipped; their errors are returned joined
// while the remaining sources are still loaded.
func (rl *RuntimeLoader) Reload(ctx context.Context) (LoadStats, error) {
	return rl.reload(ctx, rl.paths)
}

// reloadExisting is the watcher variant of Reload: configured files that
// were deleted are skipped so their dictionaries get unloaded.
func (rl *RuntimeLoader) reloadExisting(ctx context.Context) (LoadStats, error) {
	paths := make([]string, 0, len(rl.paths))
	for _, p := range rl.paths {
		if utils.IsDir(p) || utils.FileExists(p) {
			paths = append(paths, p)
			continue
		}
		rl.wlog.Infof("Dictionary %s is gone, unloading it", p)
	}
	return rl.reload(ctx, paths)
}

func (rl *RuntimeLoader) reload(ctx context.Context, paths []string) (LoadStats, error) {
	sources, fileStats, err := rl.loader.LoadPaths(ctx, paths)
	if sources == nil && err != nil {
		return LoadStats{}, err
	}
	kept := rl.external(sources)
	stats := rl.manager.LoadDictionaries(append(sources, kept...))

	rl.mu.Lock()
	rl.reloads++
	rl.mu.Unlock()

	log.Infof("Loaded %d/%d dictionaries: %d patterns, %d skipped entries",
		fileStats.Loaded, fileStats.Files, stats.Patterns, stats.Skipped)
	if len(kept) > 0 {
		log.Debugf("Kept %d dictionaries loaded outside the configured paths", len(kept))
	}
	return stats, err
}

// external returns the manager's sources that none of the configured paths
// own and whose id is not reloaded from them.
func (rl *RuntimeLoader) external(reloaded []Source) []Source {
	ids := make(map[string]bool, len(reloaded))
	for _, src := range reloaded {
		ids[src.ID] = true
	}
	var kept []Source
	for _, src := range rl.manager.Sources() {
		if ids[src.ID] || rl.owns(src.Path) {
			continue
		}
		kept = append(kept, src)
	}
	return kept
}

// owns reports whether path is one of the configured paths or lies below one.
func (rl *RuntimeLoader) owns(path string) bool {
	if path == "" {
		return false
	}
	path = filepath.Clean(utils.GetAbsolutePath(path))
	for _, p := range rl.paths {
		rel, err := filepath.Rel(filepath.Clean(utils.GetAbsolutePath(p)), path)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

// Reloads returns how many reloads have completed.
func (rl *RuntimeLoader) Reloads() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.reloads
}

// Watch starts watching the configured paths and reloads after changes to
// dictionary files settle. It returns once the watcher is running; cancel ctx
// or call Stop to end it.
func (rl *RuntimeLoader) Watch(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.watcher != nil {
		return fmt.Errorf("dictionary watcher already running")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create dictionary watcher: %w", err)
	}
	watched := make(map[string]bool)
	for _, p := range rl.paths {
		dir := p
		if !utils.IsDir(p) {
			dir = filepath.Dir(p)
		}
		if watched[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched[dir] = true
		rl.wlog.Debugf("Watching dictionary dir %s", dir)
	}

	rl.watcher = fw
	rl.done = make(chan struct{})
	go rl.loop(ctx, fw, rl.done)
	return nil
}

func (rl *RuntimeLoader) loop(ctx context.Context, fw *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !IsDictionaryFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				rl.wlog.Debugf("Dictionary changed: %s (%s)", event.Name, event.Op)
				rl.schedule(ctx)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			rl.wlog.Warnf("Dictionary watcher error: %v", err)
		case <-ctx.Done():
			rl.Stop()
			return
		case <-done:
			return
		}
	}
}

// schedule restarts the debounce timer.
func (rl *RuntimeLoader) schedule(ctx context.Context) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.timer != nil {
		rl.timer.Stop()
	}
	rl.timer = time.AfterFunc(rl.debounce, func() {
		stats, err := rl.reloadExisting(ctx)
		if err != nil {
			rl.wlog.Warnf("Dictionary reload finished with errors: %v", err)
		}
		rl.mu.Lock()
		fn := rl.onReload
		rl.mu.Unlock()
		if fn != nil {
			fn(stats, err)
		}
	})
}

// Stop ends watching. Safe to call multiple times.
func (rl *RuntimeLoader) Stop() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.watcher == nil {
		return
	}
	if rl.timer != nil {
		rl.timer.Stop()
		rl.timer = nil
	}
	close(rl.done)
	if err := rl.watcher.Close(); err != nil {
		rl.wlog.Debugf("Closing dictionary watcher: %v", err)
	}
	rl.watcher = nil
}
