package binding

import (
	"context"
	"sync"

	"github.com/standardbeagle/codebind/internal/provider"
	"github.com/standardbeagle/codebind/internal/resolver"
	"github.com/standardbeagle/codebind/internal/types"
)

// Service glues the resolver and the binding table to the project model's
// lifecycle events and serializes all access behind one mutex, so a
// watcher goroutine and query surfaces (CLI, MCP) can share the table.
//
// The resolver notifies its listeners synchronously on the mutating
// goroutine, so the nested table update runs under the same lock
// acquisition; the service must therefore be the only code driving the
// resolver.
type Service struct {
	mu       sync.Mutex
	table    *Table
	resolver *resolver.Resolver
}

// NewService wires the table to the resolver's change notifications and
// returns the serialized facade.
func NewService(table *Table, res *resolver.Resolver) *Service {
	s := &Service{table: table, resolver: res}
	res.AddListener(tableListener{table})
	return s
}

// tableListener forwards resolver change sets into the table. It runs on
// the goroutine that mutated the resolver, which already holds the
// service lock.
type tableListener struct {
	table *Table
}

func (l tableListener) ClassInformationChanged(cs *types.ClassChangeSet) {
	l.table.ClassInformationChanged(cs)
}

// FileAdded implements project.Listener.
func (s *Service) FileAdded(f *types.ProjectFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver.AnalyzeFileFromDisk(fileProjectID(f), f.Path)
	s.table.Evaluate(f)
}

// FileChanged implements project.Listener.
func (s *Service) FileChanged(f *types.ProjectFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver.AnalyzeFileFromDisk(fileProjectID(f), f.Path)
	s.table.Evaluate(f)
}

// FileRemoved implements project.Listener.
func (s *Service) FileRemoved(f *types.ProjectFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver.RemoveFile(f.Path)
	s.table.Remove(f)
}

// CollectionOpened implements project.Listener: the class database is
// primed first so the initial evaluation pass resolves against it.
func (s *Service) CollectionOpened(c *types.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver.AnalyzeCollection(context.Background(), c)
	s.table.CollectionOpened(c)
}

// CollectionClosed implements project.Listener.
func (s *Service) CollectionClosed(c *types.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.CollectionClosed(c)
}

// Binding returns the current binding for f.
func (s *Service) Binding(f *types.ProjectFile) types.Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Binding(f)
}

// IsBoundClass reports whether cls is bound to some file.
func (s *Service) IsBoundClass(cls *types.ClassDescriptor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.IsBoundClass(cls)
}

// ContainsOnlyCodeBehind reports whether every class in the file is a
// bound code-behind class.
func (s *Service) ContainsOnlyCodeBehind(f *types.ProjectFile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.ContainsOnlyCodeBehind(f)
}

// BoundClasses returns the resolved classes bound to the project's files.
func (s *Service) BoundClasses(p *types.Project) []*types.ClassDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.BoundClasses(p)
}

// Len returns the number of binding entries.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Len()
}

// AddProvider registers a detection strategy and rebuilds the table.
func (s *Service) AddProvider(p provider.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.AddProvider(p)
}

// RemoveProvider drops a detection strategy and rebuilds the table.
func (s *Service) RemoveProvider(p provider.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.RemoveProvider(p)
}

// Suggest proxies the resolver's nearest-name lookup for diagnostics.
func (s *Service) Suggest(fullName string) (string, bool) {
	return s.resolver.Suggest(fullName)
}

// SubscribeClassUpdated registers a class-side handler. Handlers must not
// call back into the service.
func (s *Service) SubscribeClassUpdated(h ClassUpdatedHandler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.SubscribeClassUpdated(h)
}

// SubscribeFileUpdated registers a file-side handler.
func (s *Service) SubscribeFileUpdated(h FileUpdatedHandler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.SubscribeFileUpdated(h)
}

func fileProjectID(f *types.ProjectFile) types.ProjectID {
	if f.Project != nil {
		return f.Project.ID
	}
	return 0
}
