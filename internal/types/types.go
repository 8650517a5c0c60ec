// Package types defines the core identity types shared across the codebind
// system: project files, projects, collections, and resolved class
// descriptors. These types provide the vocabulary between the project model,
// the class resolver, and the binding table.
package types

import "fmt"

// ProjectID identifies a project within a collection
type ProjectID uint32

// FileID identifies a file within the project model
type FileID uint32

// ClassKind describes the C# declaration kind backing a descriptor
type ClassKind uint8

const (
	ClassKindClass ClassKind = iota
	ClassKindStruct
	ClassKindRecord
)

func (k ClassKind) String() string {
	switch k {
	case ClassKindClass:
		return "class"
	case ClassKindStruct:
		return "struct"
	case ClassKindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// ProjectFile represents a single file under a project. Identity is pointer
// identity: the project model allocates one ProjectFile per path and every
// subsystem holds the same pointer. The binding table keys on it.
type ProjectFile struct {
	ID      FileID
	Path    string // absolute, slash-normalized
	Project *Project
}

func (f *ProjectFile) String() string {
	return f.Path
}

// Project groups the files of one buildable unit. Files keeps insertion
// order so event replay is deterministic.
type Project struct {
	ID    ProjectID
	Name  string
	Root  string
	files []*ProjectFile
}

// Files returns the project's files in insertion order.
// The returned slice must not be mutated.
func (p *Project) Files() []*ProjectFile {
	return p.files
}

// AddFile appends a file to the project and sets its back-reference.
func (p *Project) AddFile(f *ProjectFile) {
	f.Project = p
	p.files = append(p.files, f)
}

// RemoveFile drops a file from the project, preserving order of the rest.
func (p *Project) RemoveFile(f *ProjectFile) {
	for i, pf := range p.files {
		if pf == f {
			p.files = append(p.files[:i], p.files[i+1:]...)
			return
		}
	}
}

// FileByPath returns the project file for path, or nil.
func (p *Project) FileByPath(path string) *ProjectFile {
	for _, pf := range p.files {
		if pf.Path == path {
			return pf
		}
	}
	return nil
}

// Collection is the set of projects currently open (the solution).
type Collection struct {
	Name     string
	Projects []*Project
}

// AllFiles returns every file of every project in the collection.
func (c *Collection) AllFiles() []*ProjectFile {
	var out []*ProjectFile
	for _, p := range c.Projects {
		out = append(out, p.Files()...)
	}
	return out
}

// ClassDescriptor describes one class declaration known to the resolver.
// Identity is pointer identity: on reanalysis the resolver keeps the
// descriptor of a persisting name and updates its positions in place, so
// holders of the pointer stay current.
type ClassDescriptor struct {
	FullName  string // namespace-qualified, e.g. "App.MainWindow"
	FilePath  string // declaring source file
	Line      int    // 1-based declaration line
	EndLine   int
	Kind      ClassKind
	ProjectID ProjectID
}

func (c *ClassDescriptor) String() string {
	return fmt.Sprintf("%s %s (%s:%d)", c.Kind, c.FullName, c.FilePath, c.Line)
}

// ClassChangeSet carries one resolver change notification: descriptors that
// disappeared, appeared, or were re-parsed under the same full name.
type ClassChangeSet struct {
	Removed  []*ClassDescriptor
	Added    []*ClassDescriptor
	Modified []*ClassDescriptor
}

// Empty reports whether the change set carries no changes at all.
func (cs *ClassChangeSet) Empty() bool {
	return len(cs.Removed) == 0 && len(cs.Added) == 0 && len(cs.Modified) == 0
}
