package pipeline

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the file watcher
type WatcherConfig struct {
	// Root is the directory to watch
	Root string

	// ExcludedDirs are directory names never watched
	ExcludedDirs []string

	// Ignore lists files whose changes are not reported, such as the
	// graph the run writes. Temporary siblings written while saving them
	// are ignored too.
	Ignore []string

	// DebounceDelay is how long to wait for more changes before reporting
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// Watcher watches an input root and reports batches of changed files.
// Writes that leave a file's bytes unchanged are not reported.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// Debouncing: collect changes before reporting
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // path → most recent operation

	// State tracking for change detection
	hashMu sync.RWMutex
	hashes map[string]string // relative path → content hash

	changes chan []string
}

// NewWatcher creates a new file watcher
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = 500 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		logger:  logger,
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string]string),
		changes: make(chan []string, 1),
	}, nil
}

// Changes returns the channel of changed-file batches. It is closed when
// the watcher stops.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Start begins watching the root for changes
func (w *Watcher) Start(ctx context.Context) error {
	// Add watches recursively
	if err := w.addWatchesRecursive(w.config.Root); err != nil {
		return err
	}

	// Start the event processing goroutine
	go w.processEvents(ctx)

	w.logger.Info("File watcher started",
		"root", w.config.Root,
		"debounce", w.config.DebounceDelay)

	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// SetHash records the hash for a file
func (w *Watcher) SetHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

// GetHash returns the recorded hash for a file
func (w *Watcher) GetHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

func (w *Watcher) ignored(path string) bool {
	dir, base := filepath.Split(path)
	for _, ig := range w.config.Ignore {
		if path == ig {
			return true
		}
		igDir, igBase := filepath.Split(ig)
		if dir == igDir && strings.HasPrefix(base, "."+igBase+".") && strings.HasSuffix(base, ".tmp") {
			return true
		}
	}
	return false
}

func (w *Watcher) excluded(dir string) bool {
	return dir != w.config.Root && slices.Contains(w.config.ExcludedDirs, filepath.Base(dir))
}

// addWatchesRecursive adds watches to all directories
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Only watch directories
		if !d.IsDir() {
			return nil
		}
		if w.excluded(path) {
			return filepath.SkipDir
		}

		// Add watch
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}

		return nil
	})
}

// processEvents handles fsnotify events with debouncing
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.changes)

	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			if batch := w.flushPending(); len(batch) > 0 {
				select {
				case w.changes <- batch:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleFSEvent processes a single fsnotify event
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	// New directories get their own watches
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.excluded(path) {
				if err := w.addWatchesRecursive(path); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if w.ignored(path) {
		return
	}

	// Accumulate pending changes
	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("File change detected",
		"path", path,
		"op", event.Op.String())
}

// flushPending returns the relative paths whose content changed since the
// last flush
func (w *Watcher) flushPending() []string {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return nil
	}

	// Copy and clear pending
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var changed []string
	for path, op := range toProcess {
		relPath, err := filepath.Rel(w.config.Root, path)
		if err != nil {
			continue
		}
		relPath = filepath.ToSlash(relPath)

		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			w.hashMu.Lock()
			delete(w.hashes, relPath)
			w.hashMu.Unlock()
			changed = append(changed, relPath)
			continue
		}

		hash, err := fileHash(path)
		if err != nil {
			// Gone or unreadable; the next run decides
			changed = append(changed, relPath)
			continue
		}
		if old, ok := w.GetHash(relPath); ok && old == hash {
			continue
		}
		w.SetHash(relPath, hash)
		changed = append(changed, relPath)
	}
	sort.Strings(changed)
	return changed
}
