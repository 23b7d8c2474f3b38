package scene_test

import (
	"encoding/json"
	"errors"
	"io"
	"log"

	"github.com/plus3/scenekit/scene"
)

// Common test components and scripts shared across the package tests.

// recorder counts every lifecycle hook it receives.
type recorder struct {
	scene.BaseComponent
	added    int
	removed  int
	enabled  int
	disabled int
}

func (r *recorder) OnAdd()     { r.added++ }
func (r *recorder) OnRemove()  { r.removed++ }
func (r *recorder) OnEnable()  { r.enabled++ }
func (r *recorder) OnDisable() { r.disabled++ }

// marker has no Serialize hook, so it never reaches the persisted form.
type marker struct {
	scene.BaseComponent
}

// note is the simplest serializable component.
type note struct {
	scene.BaseComponent
	Text string
}

type noteData struct {
	Text string `json:"text"`
}

func (n *note) Serialize() any { return noteData{Text: n.Text} }

func (n *note) Deserialize(data json.RawMessage) error {
	var d noteData
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	n.Text = d.Text
	return nil
}

// brokenData always fails to deserialize.
type brokenData struct {
	scene.BaseComponent
}

func (b *brokenData) Serialize() any { return map[string]any{} }

func (b *brokenData) Deserialize(json.RawMessage) error {
	return errDeserialize
}

var errDeserialize = errors.New("bad component data")

// tickSystem appends its label to a shared log every update.
type tickSystem struct {
	scene.BaseSystem
	label string
	log   *[]string
}

func newTickSystem(priority int, label string, log *[]string) *tickSystem {
	return &tickSystem{BaseSystem: scene.NewBaseSystem(priority), label: label, log: log}
}

func (t *tickSystem) Update(dt float64) { *t.log = append(*t.log, t.label) }

// phaseScript records every phase call it receives.
type phaseScript struct {
	scene.BaseScript
	log       *[]string
	label     string
	starts    int
	updates   int
	fixed     int
	late      int
	destroyed int
}

func (p *phaseScript) record(phase string) {
	if p.log != nil {
		*p.log = append(*p.log, p.label+":"+phase)
	}
}

func (p *phaseScript) Start()                { p.starts++; p.record("start") }
func (p *phaseScript) Update(dt float64)     { p.updates++; p.record("update") }
func (p *phaseScript) FixedUpdate(dt float64) { p.fixed++; p.record("fixed") }
func (p *phaseScript) LateUpdate(dt float64) { p.late++; p.record("late") }
func (p *phaseScript) OnDestroy()            { p.destroyed++; p.record("destroy") }

// panicScript blows up in every phase it is asked to run.
type panicScript struct {
	scene.BaseScript
	calls int
}

func (p *panicScript) Update(dt float64) {
	p.calls++
	panic("boom")
}

// contactScript records collision/trigger notifications.
type contactScript struct {
	scene.BaseScript
	log   *[]string
	label string
}

func (c *contactScript) note(kind string, other *scene.Entity) {
	name := "<nil>"
	if other != nil {
		name = other.Name()
	}
	*c.log = append(*c.log, c.label+":"+kind+":"+name)
}

func (c *contactScript) OnCollisionEnter(other *scene.Entity) { c.note("collision-enter", other) }
func (c *contactScript) OnCollisionStay(other *scene.Entity)  { c.note("collision-stay", other) }
func (c *contactScript) OnCollisionExit(other *scene.Entity)  { c.note("collision-exit", other) }
func (c *contactScript) OnTriggerEnter(other *scene.Entity)   { c.note("trigger-enter", other) }
func (c *contactScript) OnTriggerStay(other *scene.Entity)    { c.note("trigger-stay", other) }
func (c *contactScript) OnTriggerExit(other *scene.Entity)    { c.note("trigger-exit", other) }

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestResolver() *scene.TypeResolver {
	builtin := scene.NewComponentRegistry()
	scene.RegisterComponent(builtin, func() *note { return &note{} })
	user := scene.NewComponentRegistry()
	scene.RegisterComponent(user, func() *brokenData { return &brokenData{} })
	return scene.NewTypeResolver(builtin, user)
}
