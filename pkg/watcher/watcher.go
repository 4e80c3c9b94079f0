package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/topology-lens/pkg/finder"
	"github.com/ritzau/topology-lens/pkg/logging"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	// ChangeTypeWritten covers created or rewritten documents
	ChangeTypeWritten ChangeType = iota
	// ChangeTypeRemoved covers removed or renamed-away documents
	ChangeTypeRemoved
)

func (t ChangeType) String() string {
	switch t {
	case ChangeTypeWritten:
		return "written"
	case ChangeTypeRemoved:
		return "removed"
	default:
		return fmt.Sprintf("change(%d)", int(t))
	}
}

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

// batchDelay groups bursts of raw events (editors often write twice)
const batchDelay = 100 * time.Millisecond

// FileWatcher watches topology documents for changes.
// The parent directories are watched so documents replaced by rename are
// still seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool // cleaned absolute paths
	dirs     map[string]bool // any document directly inside counts
	events   chan ChangeEvent
	stopOnce sync.Once
}

// NewFileWatcher creates a watcher for a set of document paths
func NewFileWatcher(paths ...string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: watcher,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		events:  make(chan ChangeEvent, 100),
	}

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		fw.files[filepath.Clean(abs)] = true
	}

	return fw, nil
}

// WatchDirectory adds a document directory. Documents created there after
// Start are reported like the named files. Subdirectories existing now are
// included; hidden ones are skipped the way the document finder skips them.
// Must be called before Start.
func (fw *FileWatcher) WatchDirectory(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	abs = filepath.Clean(abs)

	return filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != abs && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		fw.dirs[path] = true
		return nil
	})
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	dirs := make(map[string]bool)
	for file := range fw.files {
		dirs[filepath.Dir(file)] = true
	}
	for dir := range fw.dirs {
		dirs[dir] = true
	}

	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	logging.Info("started watching topology documents", "files", len(fw.files), "directories", len(dirs))

	// Process events
	go fw.processEvents(ctx)

	return nil
}

// classify maps a raw event on a watched document to a change type
func (fw *FileWatcher) classify(event fsnotify.Event) (ChangeType, bool) {
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return 0, false
	}
	abs = filepath.Clean(abs)
	if !fw.files[abs] && !fw.inWatchedDirectory(abs) {
		return 0, false
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return ChangeTypeRemoved, true
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		return ChangeTypeWritten, true
	default:
		return 0, false
	}
}

func (fw *FileWatcher) inWatchedDirectory(path string) bool {
	if !fw.dirs[filepath.Dir(path)] || strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return finder.IsDocument(path)
}

// processEvents processes file system events and batches them by type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	// Batch events to avoid sending one event per write
	batches := make(map[ChangeType][]string)

	flushTimer := time.NewTimer(batchDelay)
	flushTimer.Stop()

	flush := func() {
		for _, changeType := range []ChangeType{ChangeTypeRemoved, ChangeTypeWritten} {
			if paths := batches[changeType]; len(paths) > 0 {
				fw.events <- ChangeEvent{
					Type:      changeType,
					Paths:     paths,
					Timestamp: time.Now(),
				}
			}
		}
		batches = make(map[ChangeType][]string)
	}

	defer close(fw.events)

	for {
		select {
		case <-ctx.Done():
			fw.Stop()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				flush()
				return
			}

			changeType, relevant := fw.classify(event)
			if !relevant {
				continue
			}
			logging.Trace("document changed", "path", event.Name, "op", event.Op.String())
			batches[changeType] = appendUnique(batches[changeType], event.Name)
			flushTimer.Reset(batchDelay)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

func appendUnique(paths []string, path string) []string {
	for _, p := range paths {
		if p == path {
			return paths
		}
	}
	return append(paths, path)
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		err = fw.watcher.Close()
	})
	return err
}
