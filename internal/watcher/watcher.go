// Package watcher feeds filesystem changes back into ingestion so a
// watched directory stays queryable while it is being edited.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/lectern-cli/internal/core/domain"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lectern-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lectern-cli/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driving.WatchService = (*Watcher)(nil)

// DefaultDebounce is the quiet period after the last filesystem event
// before the changed paths are re-ingested.
const DefaultDebounce = 500 * time.Millisecond

// Watcher re-ingests files as they change under a watched root.
// Changes are debounced, so editors that write in bursts trigger one
// re-ingestion per file rather than one per write. Deletions are not
// propagated; stale sources persist until the next full ingestion.
type Watcher struct {
	ingest   driving.IngestService
	registry driven.LoaderRegistry
	debounce time.Duration
	onReport func(root string, report *domain.IngestionReport, err error)
}

// New creates a watcher that feeds changed paths back into ingestion.
// The registry decides which extensions are worth re-ingesting.
func New(ingest driving.IngestService, registry driven.LoaderRegistry) *Watcher {
	return &Watcher{
		ingest:   ingest,
		registry: registry,
		debounce: DefaultDebounce,
	}
}

// SetDebounce overrides the debounce interval. Non-positive values
// are ignored.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// OnReport registers a callback invoked after every ingestion run the
// watcher triggers, the initial one included. Set it before Watch.
func (w *Watcher) OnReport(fn func(root string, report *domain.IngestionReport, err error)) {
	w.onReport = fn
}

// Watch ingests root once, then blocks re-ingesting changed files
// until the context is cancelled. Only created and modified files
// schedule work; the filter matches what a fresh ingest of the root
// would pick up.
func (w *Watcher) Watch(ctx context.Context, root string, opts driving.IngestOptions) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch root: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	// A single-file root watches its parent directory and reacts to
	// that file alone, bypassing the extension filter the same way
	// candidate resolution does.
	dir := root
	only := ""
	if !info.IsDir() {
		dir = filepath.Dir(root)
		only = root
	}

	// Watches are registered before the initial ingestion so changes
	// made while it runs are not lost.
	if err := w.addWatches(fsw, dir, opts.Recursive && only == ""); err != nil {
		return err
	}

	logger.Section("Watch")
	report, err := w.ingest.Ingest(ctx, root, opts)
	w.notify(root, report, err)
	if err != nil {
		return err
	}

	logger.Info("Watching %s for changes (debounce %s)", root, w.debounce)

	wanted := w.wantedExtensions(opts.FileTypes)
	pending := make(map[string]struct{})
	var flush <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			path, ok := w.relevant(fsw, event, dir, only, wanted, opts.Recursive)
			if !ok {
				continue
			}
			pending[path] = struct{}{}
			flush = time.After(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watch error: %v", err)

		case <-flush:
			flush = nil
			w.reingest(ctx, pending, opts)
			pending = make(map[string]struct{})
		}
	}
}

// addWatches registers dir with the notifier, and its subdirectories
// when recursive. Hidden directories are skipped, mirroring candidate
// resolution.
func (w *Watcher) addWatches(fsw *fsnotify.Watcher, dir string, recursive bool) error {
	if !recursive {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// relevant maps one filesystem event to a path worth re-ingesting.
// Directory creations under a recursive root extend the watch set and
// are scheduled whole, so files dropped in by a move are picked up.
func (w *Watcher) relevant(
	fsw *fsnotify.Watcher, event fsnotify.Event,
	dir, only string, wanted map[string]bool, recursive bool,
) (string, bool) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return "", false
	}

	path := event.Name
	if only != "" {
		return path, path == only
	}
	if hidden(dir, path) {
		return "", false
	}

	info, err := os.Stat(path)
	if err != nil {
		// Already gone, e.g. an editor temp file.
		return "", false
	}

	if info.IsDir() {
		if recursive && event.Op&fsnotify.Create != 0 {
			if err := w.addWatches(fsw, path, true); err != nil {
				logger.Warn("%v", err)
				return "", false
			}
			return path, true
		}
		return "", false
	}

	return path, wanted[extension(path)]
}

// reingest runs one ingestion per scheduled path, in stable order.
// Failures are reported and logged; the watch keeps running.
func (w *Watcher) reingest(ctx context.Context, pending map[string]struct{}, opts driving.IngestOptions) {
	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		logger.Info("Change detected, re-ingesting %s", path)
		report, err := w.ingest.Ingest(ctx, path, opts)
		w.notify(path, report, err)
		if err != nil {
			logger.Warn("Re-ingestion of %s failed: %v", path, err)
		}
	}
}

func (w *Watcher) notify(root string, report *domain.IngestionReport, err error) {
	if w.onReport != nil {
		w.onReport(root, report, err)
	}
}

// wantedExtensions mirrors the resolver's filter so the watch
// re-ingests exactly what a fresh ingest of the root would accept.
func (w *Watcher) wantedExtensions(fileTypes []string) map[string]bool {
	supported := make(map[string]bool)
	for _, ext := range w.registry.SupportedExtensions() {
		supported[ext] = true
	}
	if len(fileTypes) == 0 {
		return supported
	}

	wanted := make(map[string]bool, len(fileTypes))
	for _, ext := range fileTypes {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if supported[ext] {
			wanted[ext] = true
		}
	}
	return wanted
}

// hidden reports whether any path component below root is
// dot-prefixed. The root itself may legitimately live under a hidden
// directory; only components the watch discovered below it count.
func hidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

func extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
