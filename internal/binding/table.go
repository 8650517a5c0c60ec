// Package binding maintains the live mapping from project files to their
// code-behind classes. The table is populated from file lifecycle events,
// re-pointed when the resolver's class information changes, and rebuilt
// when the provider set changes.
package binding

import (
	"github.com/standardbeagle/codebind/internal/debug"
	"github.com/standardbeagle/codebind/internal/provider"
	"github.com/standardbeagle/codebind/internal/types"
)

// ClassResolver is the slice of the resolver the table consumes.
type ClassResolver interface {
	Resolve(projectID types.ProjectID, fullName string) *types.ClassDescriptor
	ClassesInFile(path string) []*types.ClassDescriptor
}

// ClassUpdatedHandler observes binding changes from the class side.
type ClassUpdatedHandler func(types.Binding)

// FileUpdatedHandler observes binding changes from the file side.
type FileUpdatedHandler func(*types.ProjectFile)

// Table maps project files to their code-behind bindings. A file has an
// entry if and only if some provider currently reports a code-behind class
// name for it; absence means "not code-behind".
//
// The table is single-threaded: all operations must run on one goroutine,
// and event handlers must not mutate the table re-entrantly. Wrap it in a
// Service when multiple goroutines need access.
type Table struct {
	bindings   map[*types.ProjectFile]types.Binding
	registry   *provider.Registry
	resolver   ClassResolver
	collection *types.Collection

	classSubs []ClassUpdatedHandler
	fileSubs  []FileUpdatedHandler
}

// NewTable creates an empty binding table over the given provider registry
// and resolver. The table registers itself for provider-set changes.
func NewTable(registry *provider.Registry, resolver ClassResolver) *Table {
	t := &Table{
		bindings: make(map[*types.ProjectFile]types.Binding),
		registry: registry,
		resolver: resolver,
	}
	registry.AddListener(t)
	return t
}

// SubscribeClassUpdated registers a handler for class-side binding changes.
// Handlers run synchronously in subscription order. The returned function
// unsubscribes.
func (t *Table) SubscribeClassUpdated(h ClassUpdatedHandler) func() {
	t.classSubs = append(t.classSubs, h)
	idx := len(t.classSubs) - 1
	return func() { t.classSubs[idx] = nil }
}

// SubscribeFileUpdated registers a handler for file-side binding changes.
func (t *Table) SubscribeFileUpdated(h FileUpdatedHandler) func() {
	t.fileSubs = append(t.fileSubs, h)
	idx := len(t.fileSubs) - 1
	return func() { t.fileSubs[idx] = nil }
}

func (t *Table) fireClassUpdated(b types.Binding) {
	for _, h := range t.classSubs {
		if h != nil {
			h(b)
		}
	}
}

func (t *Table) fireFileUpdated(f *types.ProjectFile) {
	for _, h := range t.fileSubs {
		if h != nil {
			h(f)
		}
	}
}

// Evaluate recomputes the binding for one file: the first provider that
// reports a class name wins, the name is resolved or recorded as
// unresolved, and subscribers are notified of any change. Repeated calls
// with unchanged state fire nothing.
func (t *Table) Evaluate(f *types.ProjectFile) {
	name, ok := t.registry.ClassName(f)
	old, had := t.bindings[f]

	if !ok {
		if !had {
			return
		}
		delete(t.bindings, f)
		debug.LogBinding("binding removed: %s\n", f.Path)
		t.fireFileUpdated(f)
		t.fireClassUpdated(old)
		return
	}

	fresh := types.UnresolvedBinding(name)
	if cls := t.resolver.Resolve(projectID(f), name); cls != nil {
		fresh = types.ResolvedBinding(cls)
	}

	if had && old.Same(fresh) {
		return
	}

	t.bindings[f] = fresh
	debug.LogBinding("binding set: %s -> %s\n", f.Path, fresh.FullName())
	t.fireClassUpdated(fresh)
	t.fireFileUpdated(f)
	if had {
		t.fireClassUpdated(old)
	}
}

// Remove drops the file's entry, firing the same notifications as an
// evaluation with no matching provider. Used on file removal.
func (t *Table) Remove(f *types.ProjectFile) {
	old, had := t.bindings[f]
	if !had {
		return
	}
	delete(t.bindings, f)
	debug.LogBinding("binding removed: %s\n", f.Path)
	t.fireFileUpdated(f)
	t.fireClassUpdated(old)
}

// replacement is one pending table update computed during the scan pass of
// ClassInformationChanged.
type replacement struct {
	file  *types.ProjectFile
	old   types.Binding
	fresh types.Binding
}

// ClassInformationChanged re-points table entries affected by a resolver
// change set. The table is scanned first and mutated second, so one
// entry's update is never observed mid-scan by the same pass.
//
// Notifications follow the exclusive-or rule: an entry is touched only
// when it transitions between resolved and unresolved, and class-updated
// fires for whichever endpoint is resolved.
func (t *Table) ClassInformationChanged(cs *types.ClassChangeSet) {
	removed := nameSet(cs.Removed)
	added := nameIndex(cs.Added)
	modified := nameIndex(cs.Modified)

	var pending []replacement
	for f, b := range t.bindings {
		name := b.FullName()

		var fresh types.Binding
		if _, gone := removed[name]; gone {
			fresh = types.UnresolvedBinding(name)
		} else if d := added[name]; d != nil {
			fresh = types.ResolvedBinding(d)
		} else if d := modified[name]; d != nil {
			fresh = types.ResolvedBinding(d)
		} else {
			continue
		}

		pending = append(pending, replacement{file: f, old: b, fresh: fresh})
	}

	for _, rep := range pending {
		if rep.old.IsUnresolved() == rep.fresh.IsUnresolved() {
			continue
		}
		t.bindings[rep.file] = rep.fresh
		debug.LogBinding("binding re-pointed: %s -> %s\n", rep.file.Path, rep.fresh.FullName())
		if !rep.old.IsUnresolved() {
			t.fireClassUpdated(rep.old)
		}
		if !rep.fresh.IsUnresolved() {
			t.fireClassUpdated(rep.fresh)
		}
	}
}

// CollectionOpened evaluates every file of every project in the
// collection.
func (t *Table) CollectionOpened(c *types.Collection) {
	t.collection = c
	for _, p := range c.Projects {
		for _, f := range p.Files() {
			t.Evaluate(f)
		}
	}
}

// CollectionClosed silently removes every entry belonging to the
// collection's projects: the collection and everything observing it is
// going away, so no notifications fire.
func (t *Table) CollectionClosed(c *types.Collection) {
	for _, p := range c.Projects {
		for _, f := range p.Files() {
			delete(t.bindings, f)
		}
	}
	if t.collection == c {
		t.collection = nil
	}
}

// ProviderAdded implements provider.RegistryListener. Provider precedence
// may have changed for any file, so the table is rebuilt while a
// collection is open.
func (t *Table) ProviderAdded(provider.Provider) { t.rebuild() }

// ProviderRemoved implements provider.RegistryListener.
func (t *Table) ProviderRemoved(provider.Provider) { t.rebuild() }

func (t *Table) rebuild() {
	if t.collection == nil {
		return
	}
	current := t.collection
	if len(t.bindings) > 0 {
		t.CollectionClosed(current)
	}
	t.CollectionOpened(current)
}

// AddProvider registers a detection strategy with the underlying
// registry; the registry listener then triggers the rebuild.
func (t *Table) AddProvider(p provider.Provider) error {
	return t.registry.Add(p)
}

// RemoveProvider drops a detection strategy.
func (t *Table) RemoveProvider(p provider.Provider) {
	t.registry.Remove(p)
}

// Binding returns the current binding for f. The zero Binding means the
// file has no code-behind entry. Pure read: never triggers evaluation.
func (t *Table) Binding(f *types.ProjectFile) types.Binding {
	return t.bindings[f]
}

// IsBoundClass reports whether cls is the value of some table entry.
// Identity comparison, not name equality.
func (t *Table) IsBoundClass(cls *types.ClassDescriptor) bool {
	if cls == nil {
		return false
	}
	for _, b := range t.bindings {
		if b.Class() == cls {
			return true
		}
	}
	return false
}

// ContainsOnlyCodeBehind reports whether the resolver knows at least one
// class for the file and every such class is bound in the table. False
// when the resolver has no information for the file.
func (t *Table) ContainsOnlyCodeBehind(f *types.ProjectFile) bool {
	classes := t.resolver.ClassesInFile(f.Path)
	if len(classes) == 0 {
		return false
	}
	for _, cls := range classes {
		if !t.IsBoundClass(cls) {
			return false
		}
	}
	return true
}

// BoundClasses returns the resolved classes bound to the project's files.
func (t *Table) BoundClasses(p *types.Project) []*types.ClassDescriptor {
	var out []*types.ClassDescriptor
	for _, f := range p.Files() {
		if cls := t.bindings[f].Class(); cls != nil {
			out = append(out, cls)
		}
	}
	return out
}

// Len returns the number of table entries.
func (t *Table) Len() int {
	return len(t.bindings)
}

func projectID(f *types.ProjectFile) types.ProjectID {
	if f.Project != nil {
		return f.Project.ID
	}
	return 0
}

func nameSet(descs []*types.ClassDescriptor) map[string]struct{} {
	out := make(map[string]struct{}, len(descs))
	for _, d := range descs {
		out[d.FullName] = struct{}{}
	}
	return out
}

func nameIndex(descs []*types.ClassDescriptor) map[string]*types.ClassDescriptor {
	out := make(map[string]*types.ClassDescriptor, len(descs))
	for _, d := range descs {
		out[d.FullName] = d
	}
	return out
}
