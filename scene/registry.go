package scene

import "reflect"

// ComponentFactory constructs a fresh, detached component instance.
type ComponentFactory func() Component

// ComponentRegistry maps persisted component type names to factories. Each
// registry is an independent namespace; deserialization resolves names
// through a TypeResolver holding one built-in and one user namespace.
type ComponentRegistry struct {
	factories map[string]ComponentFactory
}

// NewComponentRegistry creates an empty component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{factories: make(map[string]ComponentFactory)}
}

// Register binds a factory to a type name, replacing any previous binding.
func (r *ComponentRegistry) Register(name string, factory ComponentFactory) {
	r.factories[name] = factory
}

// Lookup returns the factory bound to name.
func (r *ComponentRegistry) Lookup(name string) (ComponentFactory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered type names, in no particular order.
func (r *ComponentRegistry) Names() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	return out
}

// RegisterComponent registers a component type under its bare struct name,
// the same name components serialize under.
func RegisterComponent[T Component](r *ComponentRegistry, factory func() T) {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.Register(t.Name(), func() Component { return factory() })
}

// TypeResolver resolves persisted component type names, probing the built-in
// namespace first and the user-defined namespace second.
type TypeResolver struct {
	builtin *ComponentRegistry
	user    *ComponentRegistry
}

// NewTypeResolver creates a resolver over the two namespaces. Either registry
// may be nil.
func NewTypeResolver(builtin, user *ComponentRegistry) *TypeResolver {
	return &TypeResolver{builtin: builtin, user: user}
}

// Resolve returns the factory for a persisted type name, or false if neither
// namespace knows it.
func (tr *TypeResolver) Resolve(name string) (ComponentFactory, bool) {
	if tr == nil {
		return nil, false
	}
	if tr.builtin != nil {
		if f, ok := tr.builtin.Lookup(name); ok {
			return f, true
		}
	}
	if tr.user != nil {
		if f, ok := tr.user.Lookup(name); ok {
			return f, true
		}
	}
	return nil, false
}
