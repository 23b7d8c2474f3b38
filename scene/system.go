package scene

// System is a per-frame processor registered on a Scene. Systems run in
// ascending priority order (ties keep registration order) and are skipped
// entirely while disabled. Implementations embed BaseSystem.
type System interface {
	Priority() int

	Enabled() bool
	Enable()
	Disable()

	// Initialize fires once when the system is registered on a scene.
	Initialize(s *Scene)
	// Update fires once per frame while the system is enabled.
	Update(dt float64)
	// Render fires once per frame after all updates, during the render pass.
	Render()
	// Shutdown fires once when the system is removed from its scene.
	Shutdown()
}

// EntityObserver is an optional interface for systems that track entities.
// The scene notifies observers when an entity leaves its registry, so
// per-entity state (script instances, caches) can be torn down.
type EntityObserver interface {
	OnEntityRemoved(e *Entity)
}

// BaseSystem provides the default System implementation. The zero value is
// enabled with priority 0.
type BaseSystem struct {
	priority int
	disabled bool
	scene    *Scene
}

// NewBaseSystem returns a BaseSystem with the given priority, for embedding.
func NewBaseSystem(priority int) BaseSystem {
	return BaseSystem{priority: priority}
}

func (b *BaseSystem) Priority() int            { return b.priority }
func (b *BaseSystem) SetPriority(priority int) { b.priority = priority }
func (b *BaseSystem) Enabled() bool            { return !b.disabled }
func (b *BaseSystem) Enable()                  { b.disabled = false }
func (b *BaseSystem) Disable()                 { b.disabled = true }

// Scene returns the scene the system is registered on, or nil.
func (b *BaseSystem) Scene() *Scene { return b.scene }

// Initialize stores the owning scene. Overriding systems should call through:
//
//	func (s *MySystem) Initialize(sc *scene.Scene) {
//		s.BaseSystem.Initialize(sc)
//		...
//	}
func (b *BaseSystem) Initialize(s *Scene) { b.scene = s }

func (b *BaseSystem) Update(dt float64) {}
func (b *BaseSystem) Render()           {}
func (b *BaseSystem) Shutdown()         {}
