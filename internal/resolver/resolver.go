// Package resolver maintains the class database: every class, struct, and
// record declaration found in the collection's C# sources, keyed by
// fully-qualified name and by declaring file. It notifies listeners when
// class information changes so the binding table can re-point its entries.
package resolver

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codebind/internal/debug"
	"github.com/standardbeagle/codebind/internal/types"
)

// ChangeListener receives class change notifications. Delivery is
// synchronous on the goroutine that applied the change.
type ChangeListener interface {
	ClassInformationChanged(cs *types.ClassChangeSet)
}

// Resolver is the class database. Reads and writes are mutex-guarded so
// the watcher goroutine and query surfaces can share one instance.
type Resolver struct {
	mu        sync.RWMutex
	byName    map[types.ProjectID]map[string]*types.ClassDescriptor
	byFile    map[string][]*types.ClassDescriptor // nil entry = never analyzed
	hashes    map[string]uint64
	listeners []ChangeListener
	threshold float64
	workers   int
}

// New creates an empty resolver. suggestThreshold is the minimum
// Jaro-Winkler similarity for Suggest hits; workers bounds the parallelism
// of AnalyzeCollection (0 means one worker).
func New(suggestThreshold float64, workers int) *Resolver {
	if workers < 1 {
		workers = 1
	}
	return &Resolver{
		byName:    make(map[types.ProjectID]map[string]*types.ClassDescriptor),
		byFile:    make(map[string][]*types.ClassDescriptor),
		hashes:    make(map[string]uint64),
		threshold: suggestThreshold,
		workers:   workers,
	}
}

// AddListener registers a change listener.
func (r *Resolver) AddListener(l ChangeListener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, l)
	r.mu.Unlock()
}

// IsSourceFile reports whether the resolver analyzes this path.
func IsSourceFile(path string) bool {
	return strings.EqualFold(pathExt(path), ".cs")
}

// AnalyzeFile parses one source file and applies the resulting class
// changes. Unchanged content (by hash) is skipped entirely. Listeners are
// notified once with the combined change set.
func (r *Resolver) AnalyzeFile(projectID types.ProjectID, path string, content []byte) error {
	if !IsSourceFile(path) {
		return nil
	}

	hash := xxhash.Sum64(content)
	r.mu.RLock()
	prev, seen := r.hashes[path]
	r.mu.RUnlock()
	if seen && prev == hash {
		return nil
	}

	parser, err := newCSharpParser()
	if err != nil {
		return err
	}
	defer parser.close()

	decls := parser.classes(content)
	cs := r.apply(projectID, path, decls, hash)
	r.notify(cs)
	return nil
}

// AnalyzeFileFromDisk reads and analyzes path. Unreadable files are
// treated as removed: their classes drop out of the database.
func (r *Resolver) AnalyzeFileFromDisk(projectID types.ProjectID, path string) error {
	if !IsSourceFile(path) {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		r.RemoveFile(path)
		return nil
	}
	return r.AnalyzeFile(projectID, path, content)
}

// RemoveFile drops every class declared in path and notifies listeners.
func (r *Resolver) RemoveFile(path string) {
	cs := r.apply(0, path, nil, 0)
	r.mu.Lock()
	delete(r.hashes, path)
	delete(r.byFile, path)
	r.mu.Unlock()
	r.notify(cs)
}

// AnalyzeCollection parses every source file of every project in the
// collection, with bounded parallelism. Changes are folded into a single
// notification at the end.
func (r *Resolver) AnalyzeCollection(ctx context.Context, c *types.Collection) error {
	type parsed struct {
		projectID types.ProjectID
		path      string
		decls     []classDecl
		hash      uint64
	}

	results := make(chan parsed, r.workers)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	var applyWG sync.WaitGroup
	combined := &types.ClassChangeSet{}
	applyWG.Add(1)
	go func() {
		defer applyWG.Done()
		for res := range results {
			cs := r.apply(res.projectID, res.path, res.decls, res.hash)
			combined.Removed = append(combined.Removed, cs.Removed...)
			combined.Added = append(combined.Added, cs.Added...)
			combined.Modified = append(combined.Modified, cs.Modified...)
		}
	}()

	for _, p := range c.Projects {
		for _, f := range p.Files() {
			if !IsSourceFile(f.Path) {
				continue
			}
			projectID, path := p.ID, f.Path
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				content, err := os.ReadFile(path)
				if err != nil {
					// Files that vanish mid-scan are simply absent
					return nil
				}

				hash := xxhash.Sum64(content)
				r.mu.RLock()
				prev, seen := r.hashes[path]
				r.mu.RUnlock()
				if seen && prev == hash {
					return nil
				}

				parser, err := newCSharpParser()
				if err != nil {
					return err
				}
				defer parser.close()

				results <- parsed{projectID, path, parser.classes(content), hash}
				return nil
			})
		}
	}

	err := g.Wait()
	close(results)
	applyWG.Wait()

	debug.LogResolver("collection scan: +%d -%d ~%d classes\n",
		len(combined.Added), len(combined.Removed), len(combined.Modified))
	r.notify(combined)
	return err
}

// Resolve returns the descriptor for a fully-qualified name within a
// project, or nil when no such class is known.
func (r *Resolver) Resolve(projectID types.ProjectID, fullName string) *types.ClassDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[projectID][fullName]
}

// ClassesInFile returns the classes declared in path, or nil when the file
// has never been analyzed. An analyzed file with no classes returns a
// non-nil empty slice.
func (r *Resolver) ClassesInFile(path string) []*types.ClassDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byFile[path]
}

// Suggest returns the known fully-qualified name closest to fullName, for
// resolution-miss diagnostics. ok is false when nothing clears the
// similarity threshold.
func (r *Resolver) Suggest(fullName string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.suggestLocked(fullName)
}

// apply replaces the class set of one file and returns the change set.
// decls == nil with hash == 0 means the file is gone.
func (r *Resolver) apply(projectID types.ProjectID, path string, decls []classDecl, hash uint64) *types.ClassChangeSet {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.byFile[path]
	oldByName := make(map[string]*types.ClassDescriptor, len(old))
	for _, d := range old {
		oldByName[d.FullName] = d
		if projectID == 0 {
			projectID = d.ProjectID
		}
	}

	fresh := make([]*types.ClassDescriptor, 0, len(decls))
	freshByName := make(map[string]*types.ClassDescriptor, len(decls))
	for _, decl := range decls {
		// Duplicate names within one file (partial declarations) keep the
		// first descriptor
		if _, dup := freshByName[decl.fullName]; dup {
			continue
		}
		// A persisting name keeps its descriptor, with positions updated
		// in place, so bindings holding the pointer stay valid
		d := oldByName[decl.fullName]
		if d != nil {
			d.Line = decl.line
			d.EndLine = decl.endLine
			d.Kind = decl.kind
		} else {
			d = &types.ClassDescriptor{
				FullName:  decl.fullName,
				FilePath:  path,
				Line:      decl.line,
				EndLine:   decl.endLine,
				Kind:      decl.kind,
				ProjectID: projectID,
			}
		}
		fresh = append(fresh, d)
		freshByName[d.FullName] = d
	}

	cs := &types.ClassChangeSet{}
	for name, oldDesc := range oldByName {
		if _, still := freshByName[name]; !still {
			cs.Removed = append(cs.Removed, oldDesc)
			r.dropName(projectID, path, name)
		}
	}
	for name, newDesc := range freshByName {
		if _, was := oldByName[name]; was {
			cs.Modified = append(cs.Modified, newDesc)
		} else {
			cs.Added = append(cs.Added, newDesc)
		}
		r.setName(projectID, name, newDesc)
	}

	if decls == nil && hash == 0 {
		// Removal path; byFile/hashes cleanup happens in RemoveFile
		return cs
	}

	r.byFile[path] = fresh
	r.hashes[path] = hash
	return cs
}

func (r *Resolver) setName(projectID types.ProjectID, name string, d *types.ClassDescriptor) {
	if r.byName[projectID] == nil {
		r.byName[projectID] = make(map[string]*types.ClassDescriptor)
	}
	r.byName[projectID][name] = d
}

// dropName removes the per-name entry when it points into path. Another
// file declaring the same name (partial classes) takes over the entry.
func (r *Resolver) dropName(projectID types.ProjectID, path, name string) {
	names := r.byName[projectID]
	if names == nil {
		return
	}
	current := names[name]
	if current == nil || current.FilePath != path {
		return
	}
	delete(names, name)

	for otherPath, classes := range r.byFile {
		if otherPath == path {
			continue
		}
		for _, d := range classes {
			if d.FullName == name && d.ProjectID == projectID {
				names[name] = d
				return
			}
		}
	}
}

func (r *Resolver) notify(cs *types.ClassChangeSet) {
	if cs.Empty() {
		return
	}
	r.mu.RLock()
	listeners := make([]ChangeListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()

	for _, l := range listeners {
		l.ClassInformationChanged(cs)
	}
}

func pathExt(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i:]
	}
	return ""
}
