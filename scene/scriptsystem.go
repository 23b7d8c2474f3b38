package scene

import (
	"log"
	"math"

	"github.com/kamstrup/intmap"
)

const (
	// DefaultFixedStep is the fixed-update step used unless configured.
	DefaultFixedStep = 1.0 / 60.0
	// DefaultMaxFixedSteps caps fixed-update catch-up passes per tick. When
	// the cap is hit the backlog beyond one step is dropped, trading
	// simulation-time drift for a bounded frame.
	DefaultMaxFixedSteps = 8
)

type scriptInstance struct {
	name   string
	script Script
	state  ScriptState
}

type entityScripts struct {
	entity    *Entity
	instances []*scriptInstance
}

type contactKind int

const (
	contactCollisionEnter contactKind = iota
	contactCollisionStay
	contactCollisionExit
	contactTriggerEnter
	contactTriggerStay
	contactTriggerExit
)

var contactPhaseNames = map[contactKind]string{
	contactCollisionEnter: "OnCollisionEnter",
	contactCollisionStay:  "OnCollisionStay",
	contactCollisionExit:  "OnCollisionExit",
	contactTriggerEnter:   "OnTriggerEnter",
	contactTriggerStay:    "OnTriggerStay",
	contactTriggerExit:    "OnTriggerExit",
}

type contactEvent struct {
	kind   contactKind
	acting *Entity
	other  *Entity
}

// ScriptSystem is the dynamic-behavior scheduler. It resolves behavior types
// by name from its configured sources, owns the per-entity script instance
// lists, and drives the per-frame phases: variable update, then fixed-step
// catch-up, then late update, then pending collision/trigger dispatch. A
// panic inside any single script call is recovered and logged; the frame
// always completes.
type ScriptSystem struct {
	BaseSystem

	sources  []ScriptSource
	registry map[string]ScriptFactory

	tracked []*entityScripts // attachment order across entities
	index   *intmap.Map[EntityID, *entityScripts]

	fixedStep     float64
	maxFixedSteps int
	accumulator   float64

	pending []contactEvent
	running bool
	logger  *log.Logger
}

// NewScriptSystem creates a scheduler with the given system priority and
// behavior sources. The registry is built from the sources on Initialize.
func NewScriptSystem(priority int, sources ...ScriptSource) *ScriptSystem {
	return &ScriptSystem{
		BaseSystem:    NewBaseSystem(priority),
		sources:       sources,
		registry:      make(map[string]ScriptFactory),
		index:         intmap.New[EntityID, *entityScripts](64),
		fixedStep:     DefaultFixedStep,
		maxFixedSteps: DefaultMaxFixedSteps,
		logger:        log.Default(),
	}
}

// SetLogger redirects the scheduler's diagnostics. The default is
// log.Default().
func (s *ScriptSystem) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// FixedStep returns the configured fixed-update step in seconds.
func (s *ScriptSystem) FixedStep() float64 { return s.fixedStep }

// SetFixedStep configures the fixed-update step. Non-positive values are
// ignored.
func (s *ScriptSystem) SetFixedStep(step float64) {
	if step > 0 {
		s.fixedStep = step
	}
}

// SetMaxFixedSteps configures the catch-up cap per tick.
func (s *ScriptSystem) SetMaxFixedSteps(n int) {
	if n > 0 {
		s.maxFixedSteps = n
	}
}

// Initialize registers the scheduler on its scene and builds the behavior
// registry from the configured sources.
func (s *ScriptSystem) Initialize(sc *Scene) {
	s.BaseSystem.Initialize(sc)
	s.rebuildRegistry()
}

// AddSource appends a behavior source and merges its definitions into the
// registry, overwriting same-name entries. Live instances are untouched; use
// ReloadScripts to re-instantiate them against the new definitions.
func (s *ScriptSystem) AddSource(src ScriptSource) {
	s.sources = append(s.sources, src)
	for name, factory := range src.Scripts() {
		s.registry[name] = factory
	}
}

func (s *ScriptSystem) rebuildRegistry() {
	s.registry = make(map[string]ScriptFactory)
	for _, src := range s.sources {
		for name, factory := range src.Scripts() {
			s.registry[name] = factory
		}
	}
}

// CreateScript instantiates the named behavior, binds it to the entity,
// appends it to the entity's instance list and fires OnAdd. If scripts are
// already running the instance is started immediately. Unknown names are
// reported and return nil.
func (s *ScriptSystem) CreateScript(name string, e *Entity) Script {
	factory, ok := s.registry[name]
	if !ok {
		s.logger.Printf("unknown script %q requested for entity %q", name, e.Name())
		return nil
	}
	inst := &scriptInstance{name: name, script: factory()}
	inst.script.SetEntity(e)

	es, ok := s.index.Get(e.ID())
	if !ok {
		es = &entityScripts{entity: e}
		s.index.Put(e.ID(), es)
		s.tracked = append(s.tracked, es)
	}
	es.instances = append(es.instances, inst)

	s.safeCall(inst, "OnAdd", inst.script.OnAdd)
	if s.running {
		s.startInstance(inst)
	}
	return inst.script
}

// ScriptsFor returns the entity's script instances in attachment order.
func (s *ScriptSystem) ScriptsFor(e *Entity) []Script {
	es, ok := s.index.Get(e.ID())
	if !ok {
		return nil
	}
	out := make([]Script, len(es.instances))
	for i, inst := range es.instances {
		out[i] = inst.script
	}
	return out
}

// RemoveScript detaches one instance, firing OnRemove. Reports whether the
// script was attached to the entity.
func (s *ScriptSystem) RemoveScript(e *Entity, script Script) bool {
	es, ok := s.index.Get(e.ID())
	if !ok {
		return false
	}
	for i, inst := range es.instances {
		if inst.script == script {
			es.instances = append(es.instances[:i], es.instances[i+1:]...)
			s.detachInstance(inst)
			return true
		}
	}
	return false
}

// StartScripts fires Start exactly once on every attached instance and turns
// per-frame dispatch on. Instances created afterwards start immediately.
func (s *ScriptSystem) StartScripts() {
	s.running = true
	for _, es := range s.snapshot() {
		for _, inst := range snapshotInstances(es) {
			s.startInstance(inst)
		}
	}
}

// StopScripts turns per-frame dispatch off without detaching instances.
// Pending contact events are discarded.
func (s *ScriptSystem) StopScripts() {
	s.running = false
	s.pending = s.pending[:0]
}

// Running reports whether per-frame dispatch is on.
func (s *ScriptSystem) Running() bool { return s.running }

func (s *ScriptSystem) startInstance(inst *scriptInstance) {
	if inst.state != StateAttached {
		return
	}
	inst.state = StateStarted
	s.safeCall(inst, "Start", inst.script.Start)
}

func (s *ScriptSystem) detachInstance(inst *scriptInstance) {
	if inst.state == StateDetached {
		return
	}
	s.safeCall(inst, "OnRemove", inst.script.OnRemove)
	inst.script.SetEntity(nil)
	inst.state = StateDetached
}

// eligible gates per-frame dispatch: the instance has been started, its own
// flag is up, and its entity is enabled and still registered.
func (s *ScriptSystem) eligible(inst *scriptInstance) bool {
	if inst.state != StateStarted || !inst.script.Enabled() {
		return false
	}
	e := inst.script.Entity()
	return e != nil && e.Enabled() && e.Scene() != nil
}

// Update drives one frame of script work, in fixed order: variable update,
// zero or more fixed-update passes, late update, then pending contact
// dispatch.
func (s *ScriptSystem) Update(dt float64) {
	if !s.running {
		return
	}

	s.eachEligible("Update", func(inst *scriptInstance) {
		inst.script.Update(dt)
	})

	s.accumulator += dt
	steps := 0
	for s.accumulator >= s.fixedStep && steps < s.maxFixedSteps {
		s.accumulator -= s.fixedStep
		steps++
		s.eachEligible("FixedUpdate", func(inst *scriptInstance) {
			inst.script.FixedUpdate(s.fixedStep)
		})
	}
	if s.accumulator >= s.fixedStep {
		dropped := s.accumulator - math.Mod(s.accumulator, s.fixedStep)
		s.logger.Printf("fixed update fell behind, dropping %.3fs of backlog", dropped)
		s.accumulator = math.Mod(s.accumulator, s.fixedStep)
	}

	s.eachEligible("LateUpdate", func(inst *scriptInstance) {
		inst.script.LateUpdate(dt)
	})

	s.dispatchContacts()
}

// eachEligible runs one phase across all tracked entities. Both the entity
// list and each instance list are snapshotted first, so scripts may create or
// destroy entities and scripts mid-phase.
func (s *ScriptSystem) eachEligible(phase string, fn func(inst *scriptInstance)) {
	for _, es := range s.snapshot() {
		for _, inst := range snapshotInstances(es) {
			if s.eligible(inst) {
				s.safeCall(inst, phase, func() { fn(inst) })
			}
		}
	}
}

func (s *ScriptSystem) snapshot() []*entityScripts {
	out := make([]*entityScripts, len(s.tracked))
	copy(out, s.tracked)
	return out
}

func snapshotInstances(es *entityScripts) []*scriptInstance {
	out := make([]*scriptInstance, len(es.instances))
	copy(out, es.instances)
	return out
}

// safeCall is the isolation boundary around every script entry point: a panic
// inside one call is recovered and logged with the script's declared name, and
// nothing else that frame is affected.
func (s *ScriptSystem) safeCall(inst *scriptInstance, phase string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("script %q panicked in %s: %v", inst.name, phase, r)
		}
	}()
	fn()
}

// OnCollisionEnter queues a collision-enter notification for the acting
// entity. The physics collaborator calls these entry points on contact
// transitions; the queue drains at the end of the scheduler's next Update.
func (s *ScriptSystem) OnCollisionEnter(acting, other *Entity) {
	s.queueContact(contactCollisionEnter, acting, other)
}

func (s *ScriptSystem) OnCollisionStay(acting, other *Entity) {
	s.queueContact(contactCollisionStay, acting, other)
}

func (s *ScriptSystem) OnCollisionExit(acting, other *Entity) {
	s.queueContact(contactCollisionExit, acting, other)
}

func (s *ScriptSystem) OnTriggerEnter(acting, other *Entity) {
	s.queueContact(contactTriggerEnter, acting, other)
}

func (s *ScriptSystem) OnTriggerStay(acting, other *Entity) {
	s.queueContact(contactTriggerStay, acting, other)
}

func (s *ScriptSystem) OnTriggerExit(acting, other *Entity) {
	s.queueContact(contactTriggerExit, acting, other)
}

func (s *ScriptSystem) queueContact(kind contactKind, acting, other *Entity) {
	if acting == nil || !s.running {
		return
	}
	s.pending = append(s.pending, contactEvent{kind: kind, acting: acting, other: other})
}

func (s *ScriptSystem) dispatchContacts() {
	if len(s.pending) == 0 {
		return
	}
	events := make([]contactEvent, len(s.pending))
	copy(events, s.pending)
	s.pending = s.pending[:0]

	for _, ev := range events {
		es, ok := s.index.Get(ev.acting.ID())
		if !ok {
			continue
		}
		phase := contactPhaseNames[ev.kind]
		for _, inst := range snapshotInstances(es) {
			if !s.eligible(inst) {
				continue
			}
			s.safeCall(inst, phase, func() {
				switch ev.kind {
				case contactCollisionEnter:
					inst.script.OnCollisionEnter(ev.other)
				case contactCollisionStay:
					inst.script.OnCollisionStay(ev.other)
				case contactCollisionExit:
					inst.script.OnCollisionExit(ev.other)
				case contactTriggerEnter:
					inst.script.OnTriggerEnter(ev.other)
				case contactTriggerStay:
					inst.script.OnTriggerStay(ev.other)
				case contactTriggerExit:
					inst.script.OnTriggerExit(ev.other)
				}
			})
		}
	}
}

// ReloadScripts rebuilds the behavior registry from the sources and
// re-instantiates every live instance against the new definitions, keeping
// entity binding, enabled flag and started state. Instances whose name no
// longer resolves are detached with a diagnostic.
func (s *ScriptSystem) ReloadScripts() {
	s.rebuildRegistry()

	for _, es := range s.snapshot() {
		kept := es.instances[:0]
		for _, inst := range snapshotInstances(es) {
			factory, ok := s.registry[inst.name]
			if !ok {
				s.logger.Printf("script %q gone after reload, detaching from entity %q", inst.name, es.entity.Name())
				s.detachInstance(inst)
				continue
			}

			wasStarted := inst.state == StateStarted
			enabled := inst.script.Enabled()
			s.detachInstance(inst)

			fresh := &scriptInstance{name: inst.name, script: factory()}
			fresh.script.SetEntity(es.entity)
			fresh.script.SetEnabled(enabled)
			kept = append(kept, fresh)
			s.safeCall(fresh, "OnAdd", fresh.script.OnAdd)
			if s.running && wasStarted {
				s.startInstance(fresh)
			}
		}
		es.instances = kept
	}
}

// OnEntityRemoved tears down the entity's instances: OnDestroy on each, then
// detachment, then the list itself is dropped.
func (s *ScriptSystem) OnEntityRemoved(e *Entity) {
	es, ok := s.index.Get(e.ID())
	if !ok {
		return
	}
	for _, inst := range snapshotInstances(es) {
		s.safeCall(inst, "OnDestroy", inst.script.OnDestroy)
		s.detachInstance(inst)
	}
	es.instances = nil
	s.index.Del(e.ID())
	for i, cur := range s.tracked {
		if cur == es {
			s.tracked = append(s.tracked[:i], s.tracked[i+1:]...)
			break
		}
	}
}

// Shutdown detaches every instance and clears the instance lists and the
// behavior registry.
func (s *ScriptSystem) Shutdown() {
	for _, es := range s.snapshot() {
		for _, inst := range snapshotInstances(es) {
			s.detachInstance(inst)
		}
		es.instances = nil
	}
	s.tracked = nil
	s.index.Clear()
	s.registry = make(map[string]ScriptFactory)
	s.running = false
	s.accumulator = 0
	s.pending = nil
}
