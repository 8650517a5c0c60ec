// Package watcher monitors the project root for file system changes and
// feeds them into the project model, debounced so editor save bursts and
// build output churn collapse into one batch.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/codebind/internal/config"
	"github.com/standardbeagle/codebind/internal/debug"
	"github.com/standardbeagle/codebind/internal/project"
	"github.com/standardbeagle/codebind/internal/types"
)

type eventType int

const (
	eventCreate eventType = iota
	eventWrite
	eventRemove
)

// Watcher monitors the configured root and applies debounced file events
// to the project model. The model's listeners (the binding service) see
// the resulting FileAdded/FileChanged/FileRemoved calls.
type Watcher struct {
	watcher   *fsnotify.Watcher
	cfg       *config.Config
	scanner   *project.Scanner
	model     *project.Model
	debouncer *debouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	// applyMu serializes batch application; a flush may fire while the
	// previous one is still draining into the model
	applyMu sync.Mutex
}

// New creates a watcher over the model's collection. Call Start to begin
// receiving events.
func New(cfg *config.Config, scanner *project.Scanner, model *project.Model) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher: fsw,
		cfg:     cfg,
		scanner: scanner,
		model:   model,
		ctx:     ctx,
		cancel:  cancel,
	}
	w.debouncer = newDebouncer(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond, w.applyBatch)
	return w, nil
}

// Start adds recursive watches under the project root and begins
// processing events.
func (w *Watcher) Start() error {
	if err := w.addWatches(w.cfg.Project.Root); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.processEvents()

	debug.LogWatcher("watching %s\n", w.cfg.Project.Root)
	return nil
}

// Stop cancels event processing and waits for the worker to exit. Events
// pending in the debouncer are dropped.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	w.debouncer.stop()
	return err
}

// addWatches walks the root and watches every directory that is not
// excluded. Symlink cycles are broken by tracking resolved paths.
func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true

		if w.excludedDir(path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			debug.LogWatcher("cannot watch %s: %v\n", path, err)
		}
		return nil
	})
}

// excludedDir reports whether a directory subtree is excluded from
// scanning, using the same patterns as the scanner.
func (w *Watcher) excludedDir(path string) bool {
	rel := w.relPath(path)
	if rel == "" {
		return false
	}
	return w.scanner.ExcludesDir(rel)
}

func (w *Watcher) relPath(path string) string {
	rel, err := filepath.Rel(w.cfg.Project.Root, path)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
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
			debug.LogWatcher("fsnotify error: %v\n", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	info, err := os.Stat(path)
	if err != nil {
		// Gone already: removes and renames both surface as removal
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.matchesFile(path) {
			w.debouncer.add(path, eventRemove)
		}
		return
	}

	if info.IsDir() {
		// New directories need their own watch
		if event.Op&fsnotify.Create != 0 && !w.excludedDir(path) {
			if err := w.watcher.Add(path); err != nil {
				debug.LogWatcher("cannot watch new directory %s: %v\n", path, err)
			}
		}
		return
	}

	if w.cfg.Scan.MaxFileSize > 0 && info.Size() > w.cfg.Scan.MaxFileSize {
		return
	}
	if !w.matchesFile(path) {
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		w.debouncer.add(path, eventCreate)
	case event.Op&fsnotify.Write != 0:
		w.debouncer.add(path, eventWrite)
	}
}

func (w *Watcher) matchesFile(path string) bool {
	rel := w.relPath(path)
	if rel == "" {
		return false
	}
	return w.scanner.Matches(rel)
}

// applyBatch pushes one debounced batch into the model. Removals first so
// a rename (remove + create) never leaves a stale entry in between.
func (w *Watcher) applyBatch(events map[string]eventType) {
	w.applyMu.Lock()
	defer w.applyMu.Unlock()

	coll := w.model.Collection()
	if coll == nil || len(coll.Projects) == 0 {
		return
	}
	proj := w.targetProject(coll)

	var creates, writes, removes []string
	for path, et := range events {
		switch et {
		case eventCreate:
			creates = append(creates, path)
		case eventWrite:
			writes = append(writes, path)
		case eventRemove:
			removes = append(removes, path)
		}
	}

	debug.LogWatcher("applying %d debounced events\n", len(events))

	for _, path := range removes {
		w.model.RemoveFile(path)
	}
	for _, path := range writes {
		// A write for an unseen path (e.g. created before Start) is an add
		if w.model.FileByPath(path) != nil {
			w.model.ChangeFile(path)
		} else {
			w.model.AddFile(proj, path)
		}
	}
	for _, path := range creates {
		w.model.AddFile(proj, path)
	}
}

func (w *Watcher) targetProject(coll *types.Collection) *types.Project {
	return coll.Projects[0]
}

// debouncer collapses a burst of events per path into one batch; only the
// latest event per path survives.
type debouncer struct {
	mu     sync.Mutex
	events map[string]eventType
	delay  time.Duration
	timer  *time.Timer
	flush  func(map[string]eventType)
}

func newDebouncer(delay time.Duration, flush func(map[string]eventType)) *debouncer {
	return &debouncer{
		events: make(map[string]eventType),
		delay:  delay,
		flush:  flush,
	}
}

func (d *debouncer) add(path string, et eventType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// A create followed by a write is still a create for the model
	if prev, ok := d.events[path]; ok && prev == eventCreate && et == eventWrite {
		et = eventCreate
	}
	d.events[path] = et

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	events := d.events
	d.events = make(map[string]eventType)
	d.mu.Unlock()

	if len(events) == 0 {
		return
	}
	d.flush(events)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.events = make(map[string]eventType)
}
