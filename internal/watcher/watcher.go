// Package watcher imports JSON Lines files as they appear in a directory.
package watcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/nickcecere/vecdoc/internal/importer"
)

const (
	// ImportExt is the extension of files the watcher imports.
	ImportExt = ".jsonl"

	// IgnoreFileName holds gitignore-style patterns for files the watcher skips.
	IgnoreFileName = ".vecdocignore"
)

// Watcher watches a drop directory and imports every new or changed JSONL file.
// Records appended to a file already imported are imported on their own. A file
// whose earlier content changed is imported again in full.
type Watcher struct {
	dir      string
	importer *importer.Importer
	opts     importer.Options

	// debounce holds the time of the last event per pending file
	debounce     map[string]time.Time
	debounceMu   sync.Mutex
	debounceTime time.Duration

	// imported tracks how much of each file has been imported
	imported map[string]importState

	ignorePatterns []string
	ignorer        *gitignore.GitIgnore

	// callback for status updates
	onEvent func(event string, path string)
}

// importState records the imported prefix of a file.
type importState struct {
	offset int
	hash   uint64 // xxhash of data[:offset]
}

// Option configures the watcher.
type Option func(*Watcher)

// WithDebounceTime sets the debounce duration for batching events.
func WithDebounceTime(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceTime = d
	}
}

// WithEventCallback sets a callback for file events.
func WithEventCallback(fn func(event string, path string)) Option {
	return func(w *Watcher) {
		w.onEvent = fn
	}
}

// WithImportOptions sets the options used for every import.
func WithImportOptions(opts importer.Options) Option {
	return func(w *Watcher) {
		w.opts = opts
	}
}

// WithIgnorePatterns adds gitignore-style patterns for files to skip.
func WithIgnorePatterns(patterns []string) Option {
	return func(w *Watcher) {
		w.ignorePatterns = append(w.ignorePatterns, patterns...)
	}
}

// New creates a watcher for dir. Patterns in dir/.vecdocignore are combined
// with those given through WithIgnorePatterns.
func New(dir string, im *importer.Importer, opts ...Option) (*Watcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("watch directory does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absDir)
	}

	w := &Watcher{
		dir:          absDir,
		importer:     im,
		debounce:     make(map[string]time.Time),
		debounceTime: 500 * time.Millisecond,
		imported:     make(map[string]importState),
		onEvent:      func(string, string) {}, // noop default
	}

	for _, opt := range opts {
		opt(w)
	}

	w.initIgnorer()

	return w, nil
}

// initIgnorer compiles the ignore patterns.
func (w *Watcher) initIgnorer() {
	patterns := append([]string{}, w.ignorePatterns...)

	ignorePath := filepath.Join(w.dir, IgnoreFileName)
	if data, err := os.ReadFile(ignorePath); err == nil {
		patterns = append(patterns, strings.Split(string(data), "\n")...)
	} else if !os.IsNotExist(err) {
		log.Warn("Failed to read ignore file", "path", ignorePath, "error", err)
	}

	w.ignorer = gitignore.CompileIgnoreLines(patterns...)
}

// shouldImport reports whether path is an import file not matched by an ignore pattern.
func (w *Watcher) shouldImport(path string) bool {
	if !isImportFile(path) {
		return false
	}
	if w.ignorer != nil && w.ignorer.MatchesPath(filepath.Base(path)) {
		log.Debug("Ignored import file", "file", filepath.Base(path))
		return false
	}
	return true
}

// Start imports files already in the directory, then watches for changes.
// Blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	// Files dropped before the watcher started
	if err := w.importExisting(ctx); err != nil {
		return err
	}

	log.Info("Watching for import files", "dir", w.dir)

	// Start debounce processor
	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) importExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", w.dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !w.shouldImport(e.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		w.importFile(ctx, filepath.Join(w.dir, e.Name()))
	}
	return nil
}

// handleEvent queues a created or written import file.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.shouldImport(event.Name) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	// Restart the quiet period for this file
	w.debounceMu.Lock()
	w.debounce[event.Name] = time.Now()
	w.debounceMu.Unlock()
}

// isImportFile reports whether name is a visible JSONL file.
func isImportFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ImportExt)
}

// processDebounced imports files once they have been quiet for the debounce time.
func (w *Watcher) processDebounced(ctx context.Context) {
	interval := w.debounceTime / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.flushDebounced(ctx)
		}
	}
}

// flushDebounced imports pending files with no event in the last debounce time.
func (w *Watcher) flushDebounced(ctx context.Context) {
	now := time.Now()

	w.debounceMu.Lock()
	var paths []string
	for path, last := range w.debounce {
		if now.Sub(last) >= w.debounceTime {
			paths = append(paths, path)
			delete(w.debounce, path)
		}
	}
	w.debounceMu.Unlock()

	sort.Strings(paths)
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.importFile(ctx, path)
	}
}

// importFile imports the records of path not imported yet. When the content
// imported before is still the start of the file, only the rest is read.
func (w *Watcher) importFile(ctx context.Context, path string) {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Debug("Import file not readable", "file", name, "error", err)
		return
	}
	if len(data) == 0 {
		// Created but not yet written
		return
	}

	start := 0
	if prev, ok := w.imported[path]; ok {
		if prev.offset <= len(data) && xxhash.Sum64(data[:prev.offset]) == prev.hash {
			start = prev.offset
		} else {
			log.Info("File rewritten, importing again", "file", name)
		}
	}

	end := completeRecords(data, start)
	if end == start {
		log.Debug("No new records", "file", name)
		return
	}

	p, err := w.importer.Import(ctx, bytes.NewReader(data[start:end]), w.opts)
	if err != nil {
		log.Error("Failed to import file", "file", name, "error", err)
		return
	}

	w.imported[path] = importState{offset: end, hash: xxhash.Sum64(data[:end])}
	w.onEvent("import", name)
	log.Info("Imported", "file", name, "offset", start, "inserted", p.Inserted, "invalid", p.Invalid)
}

// completeRecords returns the end of the last complete record in data[start:].
// A last line without a newline counts only once it is valid JSON.
func completeRecords(data []byte, start int) int {
	end := start
	if i := bytes.LastIndexByte(data[start:], '\n'); i >= 0 {
		end = start + i + 1
	}
	if rest := bytes.TrimSpace(data[end:]); len(rest) > 0 && json.Valid(rest) {
		end = len(data)
	}
	return end
}
