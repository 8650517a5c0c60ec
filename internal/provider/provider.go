// Package provider defines the pluggable code-behind detection strategies
// and the ordered registry that holds them. A provider answers one question:
// given a project file, what fully-qualified class name backs it, if any?
package provider

import (
	"github.com/standardbeagle/codebind/internal/debug"
	cberrors "github.com/standardbeagle/codebind/internal/errors"
	"github.com/standardbeagle/codebind/internal/types"
)

// Provider is one code-behind detection strategy.
type Provider interface {
	// Name identifies the provider in logs and diagnostics.
	Name() string

	// ClassName returns the fully-qualified code-behind class name for the
	// file. ok is false when the provider does not recognize the file.
	ClassName(f *types.ProjectFile) (name string, ok bool)
}

// RegistryListener is notified when the provider set changes.
type RegistryListener interface {
	ProviderAdded(p Provider)
	ProviderRemoved(p Provider)
}

// Registry holds providers in precedence order: the first provider that
// returns a class name for a file wins. Not safe for concurrent use.
type Registry struct {
	providers []Provider
	listeners []RegistryListener
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddListener registers a change listener.
func (r *Registry) AddListener(l RegistryListener) {
	r.listeners = append(r.listeners, l)
}

// Add appends a provider at the end of the precedence order.
// A nil provider is a fatal registration error: it indicates a broken
// host integration rather than a runtime condition.
func (r *Registry) Add(p Provider) error {
	if p == nil {
		return cberrors.NewRegistrationError("", "provider is nil")
	}
	for _, existing := range r.providers {
		if existing == p {
			return cberrors.NewRegistrationError(p.Name(), "provider already registered")
		}
	}

	r.providers = append(r.providers, p)
	debug.LogBinding("provider %s registered (%d total)\n", p.Name(), len(r.providers))
	for _, l := range r.listeners {
		l.ProviderAdded(p)
	}
	return nil
}

// Remove drops a provider. Removing an unknown provider is a no-op.
func (r *Registry) Remove(p Provider) {
	for i, existing := range r.providers {
		if existing == p {
			r.providers = append(r.providers[:i], r.providers[i+1:]...)
			debug.LogBinding("provider %s removed (%d remain)\n", p.Name(), len(r.providers))
			for _, l := range r.listeners {
				l.ProviderRemoved(p)
			}
			return
		}
	}
}

// Providers returns the providers in precedence order.
// The returned slice must not be mutated.
func (r *Registry) Providers() []Provider {
	return r.providers
}

// ClassName walks the providers in order and returns the first hit.
func (r *Registry) ClassName(f *types.ProjectFile) (string, bool) {
	for _, p := range r.providers {
		if name, ok := p.ClassName(f); ok && name != "" {
			return name, true
		}
	}
	return "", false
}
