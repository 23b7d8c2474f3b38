package scene

import (
	"crypto/rand"
	"encoding/hex"
	"iter"
	"log"
	"reflect"
	"sort"

	"github.com/kamstrup/intmap"
)

// Scene owns one simulated world: the sole registry of its entities, the
// root-entity index used for traversal and serialization, and the ordered
// list of systems that process it every frame.
type Scene struct {
	id   string
	name string
	path string

	entities []*Entity // registration order
	index    *intmap.Map[EntityID, *Entity]
	roots    []*Entity

	systems []System
	active  bool

	pools    poolSet
	resolver *TypeResolver
	logger   *log.Logger
}

// NewScene creates an empty, inactive scene with a fresh id.
func NewScene(name string) *Scene {
	return &Scene{
		id:     newSceneID(),
		name:   name,
		index:  intmap.New[EntityID, *Entity](64),
		pools:  newPoolSet(),
		logger: log.Default(),
	}
}

func newSceneID() string {
	var b [8]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func (s *Scene) ID() string        { return s.id }
func (s *Scene) Name() string      { return s.name }
func (s *Scene) SetName(n string)  { s.name = n }
func (s *Scene) Path() string      { return s.path }
func (s *Scene) Active() bool      { return s.active }

// Activate marks the scene active. It only sets the flag; SceneManager is
// responsible for keeping at most one scene active and for whatever
// became-active behavior callers need (script starting included).
func (s *Scene) Activate() { s.active = true }

// Deactivate clears the active flag.
func (s *Scene) Deactivate() { s.active = false }

// SetResolver installs the component type resolver used by Load.
func (s *Scene) SetResolver(r *TypeResolver) { s.resolver = r }

// SetLogger redirects the scene's diagnostics. The default is log.Default().
func (s *Scene) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// CreateEntity allocates an entity and registers it. Having no parent yet, it
// also joins the root list.
func (s *Scene) CreateEntity(name string) *Entity {
	return s.AddEntity(NewEntity(name))
}

// AddEntity registers the entity, pools its already-attached components, and
// indexes it as a root if it has no parent.
func (s *Scene) AddEntity(e *Entity) *Entity {
	if _, ok := s.index.Get(e.id); ok {
		return e
	}
	s.entities = append(s.entities, e)
	s.index.Put(e.id, e)
	e.scene = s
	for _, t := range e.compOrder {
		e.handles[t] = s.pools.put(t, e, e.components[t])
	}
	if e.parent == nil {
		s.addRoot(e)
	}
	return e
}

// RemoveEntity drops the entity from the registry and root list, releases its
// pooled components and clears its scene back-reference. Systems implementing
// EntityObserver are notified. Reports whether the entity was registered.
func (s *Scene) RemoveEntity(e *Entity) bool {
	if _, ok := s.index.Get(e.id); !ok {
		return false
	}
	s.index.Del(e.id)
	for i, cur := range s.entities {
		if cur == e {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
	s.removeRoot(e)
	for t, h := range e.handles {
		s.pools.release(t, h)
		delete(e.handles, t)
	}
	e.scene = nil
	for _, sys := range s.systems {
		if obs, ok := sys.(EntityObserver); ok {
			obs.OnEntityRemoved(e)
		}
	}
	return true
}

func (s *Scene) addRoot(e *Entity) {
	for _, r := range s.roots {
		if r == e {
			return
		}
	}
	s.roots = append(s.roots, e)
}

func (s *Scene) removeRoot(e *Entity) {
	for i, r := range s.roots {
		if r == e {
			s.roots = append(s.roots[:i], s.roots[i+1:]...)
			return
		}
	}
}

// Entity returns the registered entity with the given id, or nil.
func (s *Scene) Entity(id EntityID) *Entity {
	e, _ := s.index.Get(id)
	return e
}

// Entities returns all registered entities in registration order.
func (s *Scene) Entities() []*Entity {
	out := make([]*Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// Roots returns the entities that currently have no parent.
func (s *Scene) Roots() []*Entity {
	out := make([]*Entity, len(s.roots))
	copy(out, s.roots)
	return out
}

// EntitiesWithComponent returns every entity holding a component of the given
// type, in registration order. This is a plain linear filter; for contiguous
// same-type iteration use ComponentsOf.
func (s *Scene) EntitiesWithComponent(t reflect.Type) []*Entity {
	var out []*Entity
	for _, e := range s.entities {
		if e.HasComponent(t) {
			out = append(out, e)
		}
	}
	return out
}

// EntitiesWithTag returns every entity carrying the tag, in registration
// order.
func (s *Scene) EntitiesWithTag(tag string) []*Entity {
	var out []*Entity
	for _, e := range s.entities {
		if e.HasTag(tag) {
			out = append(out, e)
		}
	}
	return out
}

// EntityByName returns the first registered entity with the given name. Name
// collisions are not an error; resolution order is registration order.
func (s *Scene) EntityByName(name string) *Entity {
	for _, e := range s.entities {
		if e.name == name {
			return e
		}
	}
	return nil
}

// ComponentsOf iterates all attached components of the given type over the
// scene's dense pool, pairing each with its owner.
func (s *Scene) ComponentsOf(t reflect.Type) iter.Seq2[*Entity, Component] {
	return s.pools.iter(t)
}

// ComponentCount returns how many components of the given type are pooled.
func (s *Scene) ComponentCount(t reflect.Type) int {
	return s.pools.count(t)
}

// AddSystem registers the system, fires its Initialize hook and re-sorts the
// system list by ascending priority. The sort is stable: equal priorities
// keep their relative registration order.
func (s *Scene) AddSystem(sys System) System {
	s.systems = append(s.systems, sys)
	sort.SliceStable(s.systems, func(i, j int) bool {
		return s.systems[i].Priority() < s.systems[j].Priority()
	})
	sys.Initialize(s)
	return sys
}

// RemoveSystem drops the system, firing its Shutdown hook. Reports whether it
// was registered.
func (s *Scene) RemoveSystem(sys System) bool {
	for i, cur := range s.systems {
		if cur == sys {
			s.systems = append(s.systems[:i], s.systems[i+1:]...)
			sys.Shutdown()
			return true
		}
	}
	return false
}

// GetSystem returns the first registered system of the given concrete type,
// or nil.
func (s *Scene) GetSystem(t reflect.Type) System {
	for _, sys := range s.systems {
		if reflect.TypeOf(sys) == t {
			return sys
		}
	}
	return nil
}

// Systems returns the registered systems in execution order.
func (s *Scene) Systems() []System {
	out := make([]System, len(s.systems))
	copy(out, s.systems)
	return out
}

// Update runs one frame tick: every enabled system's Update, in priority
// order. Disabled systems are skipped entirely.
func (s *Scene) Update(dt float64) {
	for _, sys := range s.systems {
		if sys.Enabled() {
			sys.Update(dt)
		}
	}
}

// Render runs the render pass: every enabled system's Render hook, in
// priority order, after all updates for the frame.
func (s *Scene) Render() {
	for _, sys := range s.systems {
		if sys.Enabled() {
			sys.Render()
		}
	}
}

// Clear destroys every entity (cascading through hierarchies) and empties the
// registry and root list. Systems stay registered.
func (s *Scene) Clear() {
	for _, e := range s.Entities() {
		e.Destroy()
	}
	s.entities = s.entities[:0]
	s.roots = s.roots[:0]
	s.index.Clear()
}
