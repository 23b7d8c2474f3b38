package scene

import (
	"reflect"
	"sync/atomic"
)

// EntityID is a unique identifier for an entity. Ids are allocated from a
// process-wide counter and never reused; deserialized entities keep their
// persisted id and advance the counter past it.
type EntityID uint64

var nextEntityID atomic.Uint64

func newEntityID() EntityID {
	return EntityID(nextEntityID.Add(1))
}

// reserveEntityID makes sure future allocations land strictly above id.
func reserveEntityID(id EntityID) {
	for {
		cur := nextEntityID.Load()
		if cur >= uint64(id) {
			return
		}
		if nextEntityID.CompareAndSwap(cur, uint64(id)) {
			return
		}
	}
}

// Entity is a composition root: a stable id, a display name, at most one
// component per concrete type, an optional parent, an ordered list of
// children, a tag set and an integer layer. Entities are owned by exactly one
// Scene at a time.
type Entity struct {
	id       EntityID
	name     string
	enabled  bool
	parent   *Entity
	children []*Entity
	tags     map[string]struct{}
	layer    int
	scene    *Scene

	components map[reflect.Type]Component
	compOrder  []reflect.Type
	handles    map[reflect.Type]Handle

	destroyed bool
}

// NewEntity creates a detached, enabled entity with a fresh id. Most callers
// want Scene.CreateEntity instead, which also registers the entity.
func NewEntity(name string) *Entity {
	return newEntityWithID(newEntityID(), name)
}

func newEntityWithID(id EntityID, name string) *Entity {
	reserveEntityID(id)
	return &Entity{
		id:         id,
		name:       name,
		enabled:    true,
		tags:       make(map[string]struct{}),
		components: make(map[reflect.Type]Component),
		handles:    make(map[reflect.Type]Handle),
	}
}

func (e *Entity) ID() EntityID      { return e.id }
func (e *Entity) Name() string      { return e.name }
func (e *Entity) SetName(n string)  { e.name = n }
func (e *Entity) Layer() int        { return e.layer }
func (e *Entity) SetLayer(n int)    { e.layer = n }
func (e *Entity) Enabled() bool     { return e.enabled }
func (e *Entity) Parent() *Entity   { return e.parent }
func (e *Entity) Scene() *Scene     { return e.scene }

// AddComponent attaches the component, overwriting any existing instance of
// the same concrete type (the old instance is removed first, firing its
// OnRemove). OnAdd fires after the map is updated. Returns the component.
func (e *Entity) AddComponent(c Component) Component {
	t := componentKey(c)
	if _, exists := e.components[t]; exists {
		e.RemoveComponent(t)
	}
	e.components[t] = c
	e.compOrder = append(e.compOrder, t)
	c.SetEntity(e)
	if e.scene != nil {
		e.handles[t] = e.scene.pools.put(t, e, c)
	}
	c.OnAdd()
	return c
}

// RemoveComponent detaches the component of the given type, firing OnRemove
// before removal and clearing its entity back-reference. Reports whether a
// component of that type was present.
func (e *Entity) RemoveComponent(t reflect.Type) bool {
	c, ok := e.components[t]
	if !ok {
		return false
	}
	c.OnRemove()
	c.SetEntity(nil)
	delete(e.components, t)
	for i, key := range e.compOrder {
		if key == t {
			e.compOrder = append(e.compOrder[:i], e.compOrder[i+1:]...)
			break
		}
	}
	if e.scene != nil {
		e.scene.pools.release(t, e.handles[t])
		delete(e.handles, t)
	}
	return true
}

// Component returns the component of the given type, or nil.
func (e *Entity) Component(t reflect.Type) Component {
	return e.components[t]
}

// HasComponent reports whether a component of the given type is attached.
func (e *Entity) HasComponent(t reflect.Type) bool {
	_, ok := e.components[t]
	return ok
}

// Components returns the attached components in attachment order.
func (e *Entity) Components() []Component {
	out := make([]Component, 0, len(e.compOrder))
	for _, t := range e.compOrder {
		out = append(out, e.components[t])
	}
	return out
}

// ComponentOf returns the entity's component of concrete type T.
func ComponentOf[T Component](e *Entity) (T, bool) {
	c, ok := e.components[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return c.(T), true
}

// HasComponentOf reports whether a component of concrete type T is attached.
func HasComponentOf[T Component](e *Entity) bool {
	return e.HasComponent(reflect.TypeFor[T]())
}

// RemoveComponentOf removes the entity's component of concrete type T.
func RemoveComponentOf[T Component](e *Entity) bool {
	return e.RemoveComponent(reflect.TypeFor[T]())
}

// componentKey is the map key for a component instance: its concrete
// (pointer) type.
func componentKey(c Component) reflect.Type {
	return reflect.TypeOf(c)
}

// AddChild parents the entity under e, detaching it from any prior parent
// first. The child appears exactly once in e's child list and child.Parent()
// == e afterwards. If the child is registered in a scene it leaves that
// scene's root list.
func (e *Entity) AddChild(child *Entity) *Entity {
	if child == nil || child == e {
		return child
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	if child.scene != nil {
		child.scene.removeRoot(child)
	}
	return child
}

// RemoveChild detaches the child, clearing both sides of the relation.
// Reports whether the entity was actually a child. A detached child that is
// still registered in a scene rejoins that scene's root list.
func (e *Entity) RemoveChild(child *Entity) bool {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			if child.scene != nil {
				child.scene.addRoot(child)
			}
			return true
		}
	}
	return false
}

// Children returns a copy of the child list.
func (e *Entity) Children() []*Entity {
	out := make([]*Entity, len(e.children))
	copy(out, e.children)
	return out
}

// ChildByName returns the first direct child with the given name, or nil.
// Child lists are expected to stay small; this is a linear scan.
func (e *Entity) ChildByName(name string) *Entity {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// ChildByID returns the direct child with the given id, or nil.
func (e *Entity) ChildByID(id EntityID) *Entity {
	for _, c := range e.children {
		if c.id == id {
			return c
		}
	}
	return nil
}

func (e *Entity) AddTag(tag string) { e.tags[tag] = struct{}{} }

func (e *Entity) RemoveTag(tag string) bool {
	if _, ok := e.tags[tag]; !ok {
		return false
	}
	delete(e.tags, tag)
	return true
}

func (e *Entity) HasTag(tag string) bool {
	_, ok := e.tags[tag]
	return ok
}

// Tags returns the tag set as a slice, in no particular order.
func (e *Entity) Tags() []string {
	out := make([]string, 0, len(e.tags))
	for tag := range e.tags {
		out = append(out, tag)
	}
	return out
}

// Enable raises the entity flag and forwards an enable transition to every
// owned component.
func (e *Entity) Enable() {
	e.enabled = true
	for _, t := range e.compOrder {
		EnableComponent(e.components[t])
	}
}

// Disable lowers the entity flag and forwards a disable transition to every
// owned component.
func (e *Entity) Disable() {
	e.enabled = false
	for _, t := range e.compOrder {
		DisableComponent(e.components[t])
	}
}

// Destroy tears the entity down: children first (post-order), then every
// component (each firing OnRemove), then the parent link, then the owning
// scene's registry entry. Destroy is idempotent.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true

	for _, child := range e.Children() {
		child.Destroy()
	}

	for _, t := range append([]reflect.Type(nil), e.compOrder...) {
		e.RemoveComponent(t)
	}

	if e.parent != nil {
		e.parent.RemoveChild(e)
	}

	if e.scene != nil {
		e.scene.RemoveEntity(e)
	}
}
