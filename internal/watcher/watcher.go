// Package watcher observes a directory tree for CSV export activity and
// reports it as debounced export events. Recording software and
// spreadsheet tools flush exports incrementally, so raw file system
// notifications are coalesced per path before anything downstream reacts.
package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ethogram/borisrec/internal/config"
)

// EventOp represents the type of export file activity
type EventOp int

const (
	// OpCreated indicates a new export appeared
	OpCreated EventOp = iota
	// OpUpdated indicates an existing export was written to
	OpUpdated
	// OpRemoved indicates an export was removed or renamed away
	OpRemoved
)

// String returns a human-readable representation of the operation
func (op EventOp) String() string {
	switch op {
	case OpCreated:
		return "created"
	case OpUpdated:
		return "updated"
	case OpRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// ExportEvent represents file system activity on a watched export
type ExportEvent struct {
	Path      string    // Absolute path to the export
	Op        EventOp   // Type of operation
	Timestamp time.Time // When the event was emitted
}

// Watcher watches a directory tree for export file changes
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan ExportEvent
	errors  chan error
	done    chan struct{}
	rootDir string
	pattern string // e.g., "*.csv"

	mu            sync.Mutex
	debounceDelay time.Duration
	debounceMap   map[string]*time.Timer
	closed        bool
}

// DefaultDebounceDelay is the default delay for coalescing rapid writes.
// Spreadsheet tools can take several flushes to finish an export, so the
// delay is generous compared to the underlying notification latency.
const DefaultDebounceDelay = 500 * time.Millisecond

// New creates a Watcher for the given root directory and file name pattern
func New(rootDir, pattern string) (*Watcher, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(rootDir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		rootDir = filepath.Join(home, rootDir[1:])
	}

	rootDir = filepath.Clean(rootDir)

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:       fsWatcher,
		events:        make(chan ExportEvent, 100),
		errors:        make(chan error, 10),
		done:          make(chan struct{}),
		rootDir:       rootDir,
		pattern:       pattern,
		debounceDelay: DefaultDebounceDelay,
		debounceMap:   make(map[string]*time.Timer),
	}

	// Add the root directory and all subdirectories
	if err := w.addRecursive(rootDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	// Start the event processing goroutine
	go w.processEvents()

	return w, nil
}

// addRecursive adds the directory and all its subdirectories to the
// watcher. Dot-directories are skipped; the tool's own state directory can
// live inside a watched tree.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// If the directory doesn't exist, that's ok - skip it
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if base := filepath.Base(path); strings.HasPrefix(base, ".") && path != dir {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			// Ignore permission errors for directories we can't access
			if os.IsPermission(err) {
				return nil
			}
			return err
		}
		return nil
	})
}

// processEvents converts fsnotify notifications into ExportEvents
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Error channel full, drop the error
			}
		}
	}
}

// handleEvent processes a single fsnotify event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	// Handle new directories - add them to the watcher
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if err := w.addRecursive(path); err != nil {
				select {
				case w.errors <- err:
				default:
				}
			}
			return
		}
	}

	if !w.matchesPattern(path) {
		return
	}

	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreated
	case event.Has(fsnotify.Write):
		op = OpUpdated
	case event.Has(fsnotify.Remove):
		op = OpRemoved
	case event.Has(fsnotify.Rename):
		// Treat rename as remove (file moved away)
		op = OpRemoved
	default:
		// Ignore chmod events
		return
	}

	// A freshly created export is usually still being flushed, so creates
	// are debounced together with writes. Removals go out immediately.
	if op == OpRemoved {
		w.sendEvent(path, op)
	} else {
		w.debounce(path, op)
	}
}

// matchesPattern checks if the file path counts as a watched export
func (w *Watcher) matchesPattern(path string) bool {
	return MatchesExport(w.pattern, path)
}

// MatchesExport checks if a file path counts as an export under the given
// name pattern. Watch sessions write project files back into the watched
// tree, so those outputs and the lock and temp files around them never
// match, regardless of pattern.
func MatchesExport(pattern, path string) bool {
	filename := filepath.Base(path)

	if strings.HasSuffix(filename, config.OutputExtension) ||
		strings.HasSuffix(filename, ".lock") ||
		strings.HasPrefix(filename, ".tmp-") {
		return false
	}

	if pattern == "" {
		return true
	}
	matched, err := filepath.Match(pattern, filename)
	if err != nil {
		return false
	}
	return matched
}

// FindExisting walks the directory tree and returns every file already
// present that counts as an export, sorted by path. A watch session uses
// this to work through the backlog before reacting to live events.
func FindExisting(rootDir, pattern string) ([]string, error) {
	var exports []string
	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if info.IsDir() {
			if base := filepath.Base(path); strings.HasPrefix(base, ".") && path != rootDir {
				return filepath.SkipDir
			}
			return nil
		}

		if MatchesExport(pattern, path) {
			exports = append(exports, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(exports)
	return exports, nil
}

// debounce coalesces rapid activity on the same export. The last operation
// within the window wins.
func (w *Watcher) debounce(path string, op EventOp) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if timer, exists := w.debounceMap[path]; exists {
		timer.Stop()
	}

	w.debounceMap[path] = time.AfterFunc(w.debounceDelay, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()

		w.sendEvent(path, op)
	})
}

// sendEvent sends an ExportEvent to the events channel
func (w *Watcher) sendEvent(path string, op EventOp) {
	event := ExportEvent{
		Path:      path,
		Op:        op,
		Timestamp: time.Now(),
	}

	select {
	case w.events <- event:
	case <-w.done:
	default:
		// Events channel full, drop the event
	}
}

// Events returns the channel for receiving export events
func (w *Watcher) Events() <-chan ExportEvent {
	return w.events
}

// Errors returns the channel for receiving errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and releases resources
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true

	// Cancel all pending debounce timers
	for _, timer := range w.debounceMap {
		timer.Stop()
	}
	w.debounceMap = nil
	w.mu.Unlock()

	// Signal done to stop the event processing goroutine
	close(w.done)

	return w.watcher.Close()
}

// RootDir returns the root directory being watched
func (w *Watcher) RootDir() string {
	return w.rootDir
}

// Pattern returns the file name pattern being matched
func (w *Watcher) Pattern() string {
	return w.pattern
}

// SetDebounceDelay sets the debounce delay for coalescing rapid activity.
// This should only be called before the watcher starts receiving events.
func (w *Watcher) SetDebounceDelay(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounceDelay = delay
}
