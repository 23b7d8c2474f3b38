package scene

// Script is a multi-phase behavior bound to one entity. Scripts live in the
// scheduler's per-entity instance lists, not in the entity's component map,
// so any number of behaviors can stack on one entity. Implementations embed
// BaseScript and override the phases they need.
type Script interface {
	Entity() *Entity
	SetEntity(e *Entity)

	Enabled() bool
	SetEnabled(enabled bool)

	// OnAdd fires once, right after the instance is bound to its entity.
	OnAdd()
	// OnRemove fires once, when the instance is detached. A detached
	// instance is discarded and never comes back.
	OnRemove()
	OnEnable()
	OnDisable()

	// Start fires once, when the owning scene's scripts are started (or
	// immediately on creation if they already were).
	Start()

	// Update runs every frame with the variable frame delta.
	Update(dt float64)
	// FixedUpdate runs zero or more times per frame, always with the
	// configured fixed step.
	FixedUpdate(dt float64)
	// LateUpdate runs every frame after all fixed-update passes.
	LateUpdate(dt float64)

	OnCollisionEnter(other *Entity)
	OnCollisionStay(other *Entity)
	OnCollisionExit(other *Entity)
	OnTriggerEnter(other *Entity)
	OnTriggerStay(other *Entity)
	OnTriggerExit(other *Entity)

	// OnDestroy fires when the owning entity is destroyed.
	OnDestroy()
}

// BaseScript provides the default no-op Script implementation. The zero value
// is enabled and detached.
type BaseScript struct {
	entity   *Entity
	disabled bool
}

func (b *BaseScript) Entity() *Entity         { return b.entity }
func (b *BaseScript) SetEntity(e *Entity)     { b.entity = e }
func (b *BaseScript) Enabled() bool           { return !b.disabled }
func (b *BaseScript) SetEnabled(enabled bool) { b.disabled = !enabled }

func (b *BaseScript) OnAdd()     {}
func (b *BaseScript) OnRemove()  {}
func (b *BaseScript) OnEnable()  {}
func (b *BaseScript) OnDisable() {}
func (b *BaseScript) Start()     {}

func (b *BaseScript) Update(dt float64)      {}
func (b *BaseScript) FixedUpdate(dt float64) {}
func (b *BaseScript) LateUpdate(dt float64)  {}

func (b *BaseScript) OnCollisionEnter(other *Entity) {}
func (b *BaseScript) OnCollisionStay(other *Entity)  {}
func (b *BaseScript) OnCollisionExit(other *Entity)  {}
func (b *BaseScript) OnTriggerEnter(other *Entity)   {}
func (b *BaseScript) OnTriggerStay(other *Entity)    {}
func (b *BaseScript) OnTriggerExit(other *Entity)    {}

func (b *BaseScript) OnDestroy() {}

// ScriptFactory constructs a fresh, unbound script instance.
type ScriptFactory func() Script

// ScriptSource is one location behavior definitions come from: a plugin, a
// game package, a test fixture. The scheduler rebuilds its behavior registry
// from its sources on initialization and on ReloadScripts; later sources and
// later reloads overwrite earlier definitions of the same name.
type ScriptSource interface {
	Scripts() map[string]ScriptFactory
}

// ScriptMap is the simplest ScriptSource: a literal name→factory table.
type ScriptMap map[string]ScriptFactory

func (m ScriptMap) Scripts() map[string]ScriptFactory { return m }

// ScriptState tracks an instance through its lifecycle. Instances only move
// forward: Attached → Started → Detached.
//
//go:generate go run golang.org/x/tools/cmd/stringer -type=ScriptState
type ScriptState int

const (
	// StateAttached: created and bound, OnAdd fired, Start not yet.
	StateAttached ScriptState = iota
	// StateStarted: Start fired; receives per-frame phases while eligible.
	StateStarted
	// StateDetached: OnRemove fired, instance discarded.
	StateDetached
)
