package types

// Binding is the value side of the binding table: either a class descriptor
// the resolver currently knows, or an unresolved placeholder carrying the
// expected fully-qualified name. The zero Binding is "no binding".
//
// This is deliberately a small tagged value type rather than a sentinel
// subtype of ClassDescriptor, so resolved/unresolved can never be confused
// by an identity check.
type Binding struct {
	class      *ClassDescriptor
	unresolved string
}

// ResolvedBinding wraps a resolver-backed descriptor.
func ResolvedBinding(class *ClassDescriptor) Binding {
	return Binding{class: class}
}

// UnresolvedBinding records a code-behind class name that did not resolve.
func UnresolvedBinding(fullName string) Binding {
	return Binding{unresolved: fullName}
}

// IsZero reports whether the binding is absent.
func (b Binding) IsZero() bool {
	return b.class == nil && b.unresolved == ""
}

// IsUnresolved reports whether the binding is the unresolved placeholder.
func (b Binding) IsUnresolved() bool {
	return b.class == nil && b.unresolved != ""
}

// Class returns the resolver-backed descriptor, or nil for unresolved/zero.
func (b Binding) Class() *ClassDescriptor {
	return b.class
}

// FullName returns the bound class name for both resolved and unresolved
// bindings, and "" for the zero binding.
func (b Binding) FullName() string {
	if b.class != nil {
		return b.class.FullName
	}
	return b.unresolved
}

// Same reports whether two bindings are identical: same descriptor pointer
// for resolved bindings, same expected name for unresolved ones.
func (b Binding) Same(other Binding) bool {
	if b.class != nil || other.class != nil {
		return b.class == other.class
	}
	return b.unresolved == other.unresolved
}
