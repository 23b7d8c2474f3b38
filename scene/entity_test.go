package scene_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/scenekit/scene"
)

func TestAddRemoveChild(t *testing.T) {
	a := scene.NewEntity("a")
	b := scene.NewEntity("b")

	a.AddChild(b)
	assert.Same(t, a, b.Parent())
	require.Len(t, a.Children(), 1)
	assert.Same(t, b, a.Children()[0])

	// Re-adding must not duplicate the child.
	a.AddChild(b)
	assert.Len(t, a.Children(), 1)

	assert.True(t, a.RemoveChild(b))
	assert.Nil(t, b.Parent())
	assert.Empty(t, a.Children())

	// Detaching an unparented entity is a no-op.
	assert.False(t, a.RemoveChild(b))
}

func TestAddChildReparents(t *testing.T) {
	a := scene.NewEntity("a")
	b := scene.NewEntity("b")
	c := scene.NewEntity("c")

	a.AddChild(c)
	b.AddChild(c)

	assert.Same(t, b, c.Parent())
	assert.Empty(t, a.Children())
	assert.Len(t, b.Children(), 1)
}

func TestAddComponentOverwritesSameType(t *testing.T) {
	e := scene.NewEntity("e")

	first := &recorder{}
	second := &recorder{}
	e.AddComponent(first)
	e.AddComponent(second)

	assert.Equal(t, 1, first.added)
	assert.Equal(t, 1, first.removed)
	assert.Nil(t, first.Entity())

	got, ok := scene.ComponentOf[*recorder](e)
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Len(t, e.Components(), 1)
}

func TestRemoveComponent(t *testing.T) {
	e := scene.NewEntity("e")
	r := &recorder{}
	e.AddComponent(r)

	assert.True(t, scene.RemoveComponentOf[*recorder](e))
	assert.Equal(t, 1, r.removed)
	assert.Nil(t, r.Entity())
	assert.False(t, scene.HasComponentOf[*recorder](e))

	// Removing again reports absence without firing hooks.
	assert.False(t, scene.RemoveComponentOf[*recorder](e))
	assert.Equal(t, 1, r.removed)
}

func TestEnableDisableCascade(t *testing.T) {
	e := scene.NewEntity("e")
	r := &recorder{}
	e.AddComponent(r)

	e.Disable()
	assert.False(t, e.Enabled())
	assert.Equal(t, 1, r.disabled)
	assert.False(t, scene.EffectiveEnabled(r))

	e.Enable()
	assert.True(t, e.Enabled())
	assert.Equal(t, 1, r.enabled)

	// Repeated enables do not re-fire the transition on components.
	e.Enable()
	assert.Equal(t, 1, r.enabled)
}

func TestEffectiveEnabled(t *testing.T) {
	s := scene.NewScene("s")
	e := s.CreateEntity("e")
	r := &recorder{}
	e.AddComponent(r)

	assert.True(t, scene.EffectiveEnabled(r))

	r.SetEnabled(false)
	assert.False(t, scene.EffectiveEnabled(r))
	r.SetEnabled(true)

	e.Disable()
	assert.False(t, scene.EffectiveEnabled(r))
	e.Enable()

	s.RemoveEntity(e)
	assert.False(t, scene.EffectiveEnabled(r), "unregistered entity is not effectively enabled")
}

func TestDestroyCascade(t *testing.T) {
	s := scene.NewScene("s")
	parent := s.CreateEntity("parent")
	child := s.CreateEntity("child")
	grandchild := s.CreateEntity("grandchild")
	parent.AddChild(child)
	child.AddChild(grandchild)

	pc := &recorder{}
	cc := &recorder{}
	gc := &recorder{}
	parent.AddComponent(pc)
	child.AddComponent(cc)
	grandchild.AddComponent(gc)

	parent.Destroy()

	for _, r := range []*recorder{pc, cc, gc} {
		assert.Equal(t, 1, r.removed, "OnRemove must fire exactly once per component")
	}
	assert.Nil(t, s.Entity(parent.ID()))
	assert.Nil(t, s.Entity(child.ID()))
	assert.Nil(t, s.Entity(grandchild.ID()))
	assert.Empty(t, s.Entities())
	assert.Empty(t, s.Roots())

	// Destroy is idempotent.
	parent.Destroy()
	assert.Equal(t, 1, pc.removed)
}

func TestDestroyDetachesFromParent(t *testing.T) {
	s := scene.NewScene("s")
	parent := s.CreateEntity("parent")
	child := s.CreateEntity("child")
	parent.AddChild(child)

	child.Destroy()

	assert.Empty(t, parent.Children())
	assert.Nil(t, s.Entity(child.ID()))
	assert.NotNil(t, s.Entity(parent.ID()))
}

func TestChildLookup(t *testing.T) {
	a := scene.NewEntity("a")
	b := scene.NewEntity("b")
	c := scene.NewEntity("c")
	a.AddChild(b)
	a.AddChild(c)

	assert.Same(t, b, a.ChildByName("b"))
	assert.Nil(t, a.ChildByName("missing"))
	assert.Same(t, c, a.ChildByID(c.ID()))
	assert.Nil(t, a.ChildByID(scene.EntityID(0)))
}

func TestTags(t *testing.T) {
	e := scene.NewEntity("e")
	e.AddTag("enemy")
	e.AddTag("boss")

	assert.True(t, e.HasTag("enemy"))
	assert.ElementsMatch(t, []string{"enemy", "boss"}, e.Tags())
	assert.True(t, e.RemoveTag("boss"))
	assert.False(t, e.RemoveTag("boss"))
	assert.False(t, e.HasTag("boss"))
}

func TestEntityIDsNeverReused(t *testing.T) {
	seen := make(map[scene.EntityID]bool)
	for i := 0; i < 100; i++ {
		e := scene.NewEntity("e")
		assert.False(t, seen[e.ID()])
		seen[e.ID()] = true
	}
}

func TestComponentLookupByType(t *testing.T) {
	e := scene.NewEntity("e")
	n := &note{Text: "hi"}
	e.AddComponent(n)

	typ := reflect.TypeFor[*note]()
	assert.True(t, e.HasComponent(typ))
	assert.Same(t, n, e.Component(typ).(*note))
	assert.Nil(t, e.Component(reflect.TypeFor[*marker]()))
}
