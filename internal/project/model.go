// Package project implements the host project model: the collection of
// projects and files the binding service observes, plus the file lifecycle
// notifications it consumes.
package project

import (
	"path/filepath"

	"github.com/standardbeagle/codebind/internal/debug"
	"github.com/standardbeagle/codebind/internal/types"
)

// Listener receives file and collection lifecycle notifications.
// Delivery is synchronous, in subscription order, on the caller's goroutine.
type Listener interface {
	FileAdded(f *types.ProjectFile)
	FileChanged(f *types.ProjectFile)
	FileRemoved(f *types.ProjectFile)
	CollectionOpened(c *types.Collection)
	CollectionClosed(c *types.Collection)
}

// Model owns the open collection and fans lifecycle events out to listeners.
// It is not safe for concurrent use; callers sequence all mutations.
type Model struct {
	collection *types.Collection
	byPath     map[string]*types.ProjectFile
	listeners  []Listener
	nextFileID types.FileID
}

// NewModel creates an empty project model with no open collection.
func NewModel() *Model {
	return &Model{
		byPath: make(map[string]*types.ProjectFile),
	}
}

// AddListener registers a lifecycle listener.
func (m *Model) AddListener(l Listener) {
	m.listeners = append(m.listeners, l)
}

// Collection returns the currently open collection, or nil.
func (m *Model) Collection() *types.Collection {
	return m.collection
}

// FileByPath returns the project file for an absolute path, or nil.
func (m *Model) FileByPath(path string) *types.ProjectFile {
	return m.byPath[normalize(path)]
}

// OpenCollection makes c the current collection and notifies listeners.
// Any previously open collection is closed first.
func (m *Model) OpenCollection(c *types.Collection) {
	if m.collection != nil {
		m.CloseCollection()
	}

	m.collection = c
	for _, p := range c.Projects {
		for _, f := range p.Files() {
			m.registerFile(f)
		}
	}

	debug.Log("PROJECT", "collection %s opened with %d files\n", c.Name, len(m.byPath))
	for _, l := range m.listeners {
		l.CollectionOpened(c)
	}
}

// CloseCollection closes the current collection and notifies listeners.
func (m *Model) CloseCollection() {
	if m.collection == nil {
		return
	}

	closed := m.collection
	for _, l := range m.listeners {
		l.CollectionClosed(closed)
	}
	m.collection = nil
	m.byPath = make(map[string]*types.ProjectFile)
	debug.Log("PROJECT", "collection %s closed\n", closed.Name)
}

// AddFile creates a project file under p and notifies listeners.
// Adding an already-known path returns the existing file without notifying.
func (m *Model) AddFile(p *types.Project, path string) *types.ProjectFile {
	path = normalize(path)
	if existing := m.byPath[path]; existing != nil {
		return existing
	}

	f := &types.ProjectFile{Path: path}
	m.registerFile(f)
	p.AddFile(f)

	for _, l := range m.listeners {
		l.FileAdded(f)
	}
	return f
}

// ChangeFile notifies listeners that a known file's content changed.
// Unknown paths are ignored: a change event for a file outside the model
// carries no information the model can act on.
func (m *Model) ChangeFile(path string) {
	f := m.byPath[normalize(path)]
	if f == nil {
		return
	}
	for _, l := range m.listeners {
		l.FileChanged(f)
	}
}

// RemoveFile drops a file from its project and notifies listeners.
func (m *Model) RemoveFile(path string) {
	path = normalize(path)
	f := m.byPath[path]
	if f == nil {
		return
	}

	delete(m.byPath, path)
	if f.Project != nil {
		f.Project.RemoveFile(f)
	}
	for _, l := range m.listeners {
		l.FileRemoved(f)
	}
}

func (m *Model) registerFile(f *types.ProjectFile) {
	if f.ID == 0 {
		m.nextFileID++
		f.ID = m.nextFileID
	}
	f.Path = normalize(f.Path)
	m.byPath[f.Path] = f
}

func normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
