// Package components carries the built-in serializable component set and the
// registration entry point for the built-in type namespace.
package components

import (
	"encoding/json"

	"github.com/plus3/scenekit/scene"
)

// Register binds every built-in component into the given registry, which is
// normally the built-in namespace of a scene.TypeResolver.
func Register(r *scene.ComponentRegistry) {
	scene.RegisterComponent(r, func() *Transform { return NewTransform() })
	scene.RegisterComponent(r, func() *Render { return NewRender("", "") })
	scene.RegisterComponent(r, func() *Physics { return NewPhysics(1.0, false) })
	scene.RegisterComponent(r, func() *Camera { return NewCamera() })
}

// Vec3 is a plain 3-component vector. Components keep their spatial state in
// these; the math-heavy consumers live behind the rendering and physics
// collaborators.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

// Transform places an entity in space: position, Euler rotation and scale.
type Transform struct {
	scene.BaseComponent
	Position Vec3
	Rotation Vec3
	Scale    Vec3
}

func NewTransform() *Transform {
	return &Transform{Scale: Vec3{X: 1, Y: 1, Z: 1}}
}

// Translate moves the transform by the given offsets.
func (t *Transform) Translate(x, y, z float64) {
	t.Position = t.Position.Add(Vec3{X: x, Y: y, Z: z})
}

// Rotate adds the given Euler angles.
func (t *Transform) Rotate(x, y, z float64) {
	t.Rotation = t.Rotation.Add(Vec3{X: x, Y: y, Z: z})
}

// SetScale replaces the scale.
func (t *Transform) SetScale(x, y, z float64) {
	t.Scale = Vec3{X: x, Y: y, Z: z}
}

type transformData struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
	Scale    Vec3 `json:"scale"`
}

func (t *Transform) Serialize() any {
	return transformData{Position: t.Position, Rotation: t.Rotation, Scale: t.Scale}
}

func (t *Transform) Deserialize(data json.RawMessage) error {
	var d transformData
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	t.Position, t.Rotation, t.Scale = d.Position, d.Rotation, d.Scale
	return nil
}

// Render marks an entity drawable. Mesh and material are resource ids
// resolved by the rendering collaborator; the core only round-trips them.
type Render struct {
	scene.BaseComponent
	Mesh     string
	Material string
	Visible  bool
}

func NewRender(mesh, material string) *Render {
	return &Render{Mesh: mesh, Material: material, Visible: true}
}

type renderData struct {
	Mesh     string `json:"mesh"`
	Material string `json:"material"`
	Visible  bool   `json:"visible"`
}

func (r *Render) Serialize() any {
	return renderData{Mesh: r.Mesh, Material: r.Material, Visible: r.Visible}
}

func (r *Render) Deserialize(data json.RawMessage) error {
	var d renderData
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	r.Mesh, r.Material, r.Visible = d.Mesh, d.Material, d.Visible
	return nil
}

// Physics carries the body state the physics collaborator integrates.
type Physics struct {
	scene.BaseComponent
	Mass        float64
	Static      bool
	Velocity    Vec3
	Restitution float64
	Friction    float64
}

func NewPhysics(mass float64, static bool) *Physics {
	return &Physics{Mass: mass, Static: static, Restitution: 0.5, Friction: 0.5}
}

type physicsData struct {
	Mass        float64 `json:"mass"`
	Static      bool    `json:"static"`
	Velocity    Vec3    `json:"velocity"`
	Restitution float64 `json:"restitution"`
	Friction    float64 `json:"friction"`
}

func (p *Physics) Serialize() any {
	return physicsData{
		Mass:        p.Mass,
		Static:      p.Static,
		Velocity:    p.Velocity,
		Restitution: p.Restitution,
		Friction:    p.Friction,
	}
}

func (p *Physics) Deserialize(data json.RawMessage) error {
	var d physicsData
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	p.Mass, p.Static, p.Velocity = d.Mass, d.Static, d.Velocity
	p.Restitution, p.Friction = d.Restitution, d.Friction
	return nil
}

// Camera defines a view frustum. At most one camera should be active per
// scene; the rendering collaborator enforces that.
type Camera struct {
	scene.BaseComponent
	FOV    float64
	Near   float64
	Far    float64
	Active bool
}

func NewCamera() *Camera {
	return &Camera{FOV: 60, Near: 0.1, Far: 1000}
}

type cameraData struct {
	FOV    float64 `json:"fov"`
	Near   float64 `json:"near"`
	Far    float64 `json:"far"`
	Active bool    `json:"active"`
}

func (c *Camera) Serialize() any {
	return cameraData{FOV: c.FOV, Near: c.Near, Far: c.Far, Active: c.Active}
}

func (c *Camera) Deserialize(data json.RawMessage) error {
	var d cameraData
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	c.FOV, c.Near, c.Far, c.Active = d.FOV, d.Near, d.Far, d.Active
	return nil
}
