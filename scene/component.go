package scene

import (
	"encoding/json"
	"reflect"
)

// Component is the contract for data-and-behavior units attached to exactly
// one entity. An entity holds at most one component per concrete type.
// Implementations embed BaseComponent to pick up the default lifecycle hooks
// and only override the hooks they care about.
type Component interface {
	// Entity returns the owning entity, or nil while detached.
	Entity() *Entity
	// SetEntity binds the owning entity. Called by Entity.AddComponent and
	// cleared (with nil) by Entity.RemoveComponent.
	SetEntity(e *Entity)

	Enabled() bool
	SetEnabled(enabled bool)

	// OnAdd fires once, after the component has been inserted into the
	// entity's component map.
	OnAdd()
	// OnRemove fires once, before the component is removed from the map.
	OnRemove()
	// OnEnable and OnDisable fire on every enabled-flag transition.
	OnEnable()
	OnDisable()

	// Update is invoked once per frame by whichever system chooses to drive
	// components of this type. The contract itself does not self-schedule.
	Update(dt float64)
}

// Serializable is implemented by components that persist into the scene
// document. Components without it are silently omitted from the persisted
// form.
type Serializable interface {
	Serialize() any
}

// Deserializable is implemented by components that restore state from the
// scene document. The raw data is the JSON value produced by Serialize.
type Deserializable interface {
	Deserialize(data json.RawMessage) error
}

// BaseComponent provides the default Component implementation. The zero value
// is enabled and detached.
type BaseComponent struct {
	entity   *Entity
	disabled bool
}

func (b *BaseComponent) Entity() *Entity          { return b.entity }
func (b *BaseComponent) SetEntity(e *Entity)      { b.entity = e }
func (b *BaseComponent) Enabled() bool            { return !b.disabled }
func (b *BaseComponent) SetEnabled(enabled bool)  { b.disabled = !enabled }
func (b *BaseComponent) OnAdd()                   {}
func (b *BaseComponent) OnRemove()                {}
func (b *BaseComponent) OnEnable()                {}
func (b *BaseComponent) OnDisable()               {}
func (b *BaseComponent) Update(dt float64)        {}

// EnableComponent raises the component's enabled flag, firing OnEnable on the
// false→true transition only.
func EnableComponent(c Component) {
	if !c.Enabled() {
		c.SetEnabled(true)
		c.OnEnable()
	}
}

// DisableComponent lowers the component's enabled flag, firing OnDisable on
// the true→false transition only.
func DisableComponent(c Component) {
	if c.Enabled() {
		c.SetEnabled(false)
		c.OnDisable()
	}
}

// EffectiveEnabled reports whether the component should receive per-frame
// work: its own flag is up, it is attached, and its entity is enabled and
// still registered in a scene.
func EffectiveEnabled(c Component) bool {
	e := c.Entity()
	return c.Enabled() && e != nil && e.Enabled() && e.Scene() != nil
}

// componentTypeName is the name components are persisted and resolved under:
// the bare struct name, without package qualifier or pointer marker.
func componentTypeName(c Component) string {
	t := reflect.TypeOf(c)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
