package scene_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/scenekit/scene"
)

func newTestManager() *scene.SceneManager {
	m := scene.NewSceneManager(newTestResolver())
	m.SetLogger(quietLogger())
	return m
}

func TestSetActiveScene(t *testing.T) {
	m := newTestManager()
	a := m.CreateScene("a")
	b := m.CreateScene("b")

	require.True(t, m.SetActiveScene(a.ID()))
	assert.Same(t, a, m.ActiveScene())
	assert.True(t, a.Active())

	require.True(t, m.SetActiveScene(b.ID()))
	assert.Same(t, b, m.ActiveScene())
	assert.False(t, a.Active(), "previous scene is deactivated")
	assert.True(t, b.Active())

	assert.False(t, m.SetActiveScene("nope"))
	assert.Same(t, b, m.ActiveScene(), "unknown id leaves the active scene alone")
	assert.True(t, b.Active())
}

func TestUpdateForwardsToActiveSceneOnly(t *testing.T) {
	m := newTestManager()
	a := m.CreateScene("a")
	b := m.CreateScene("b")

	var aLog, bLog []string
	a.AddSystem(newTickSystem(0, "a", &aLog))
	b.AddSystem(newTickSystem(0, "b", &bLog))

	m.Update(0.016) // no active scene yet
	assert.Empty(t, aLog)

	m.SetActiveScene(a.ID())
	m.Update(0.016)
	assert.Equal(t, []string{"a"}, aLog)
	assert.Empty(t, bLog)

	m.SetActiveScene(b.ID())
	m.Update(0.016)
	assert.Equal(t, []string{"a"}, aLog)
	assert.Equal(t, []string{"b"}, bLog)
}

func TestSceneLookup(t *testing.T) {
	m := newTestManager()
	a := m.CreateScene("dup")
	b := m.CreateScene("dup")

	assert.Same(t, a, m.Scene(a.ID()))
	assert.Nil(t, m.Scene("nope"))
	assert.Same(t, a, m.SceneByName("dup"), "first registered scene wins")
	assert.Equal(t, []*scene.Scene{a, b}, m.Scenes())
}

func TestRemoveSceneClearsActive(t *testing.T) {
	m := newTestManager()
	a := m.CreateScene("a")
	m.SetActiveScene(a.ID())

	assert.True(t, m.RemoveScene(a.ID()))
	assert.Nil(t, m.ActiveScene())
	assert.Nil(t, m.Scene(a.ID()))
	assert.False(t, m.RemoveScene(a.ID()))
}

func TestLoadSaveReload(t *testing.T) {
	m := newTestManager()
	path := filepath.Join(t.TempDir(), "level.json")

	src := m.CreateScene("level")
	e := src.CreateEntity("e")
	e.AddComponent(&note{Text: "v1"})
	require.NoError(t, m.SaveScene(src.ID(), path))

	// Load the document into a fresh manager, as an editor restart would.
	m2 := newTestManager()
	loaded, err := m2.LoadScene(path)
	require.NoError(t, err)
	assert.Equal(t, "level", loaded.Name())
	assert.Equal(t, src.ID(), loaded.ID(), "the persisted scene id survives")
	assert.Same(t, loaded, m2.Scene(loaded.ID()))
	require.NotNil(t, loaded.EntityByName("e"))

	// Mutate the live copy, then reload from the remembered path.
	loaded.EntityByName("e").Destroy()
	loaded.CreateEntity("scratch")
	require.NoError(t, m2.ReloadScene(loaded.ID()))
	assert.NotNil(t, loaded.EntityByName("e"))
	assert.Nil(t, loaded.EntityByName("scratch"))
}

func TestSaveSceneUsesRememberedPath(t *testing.T) {
	m := newTestManager()
	path := filepath.Join(t.TempDir(), "level.json")

	s := m.CreateScene("level")
	s.CreateEntity("e")
	require.NoError(t, m.SaveScene(s.ID(), path))

	s.CreateEntity("later")
	require.NoError(t, m.SaveScene(s.ID(), ""))

	loaded, err := newTestManager().LoadScene(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Entities(), 2)
}

func TestSaveSceneUnknownID(t *testing.T) {
	m := newTestManager()
	assert.Error(t, m.SaveScene("nope", "anywhere.json"))
}

func TestReloadSceneWithoutPath(t *testing.T) {
	m := newTestManager()
	s := m.CreateScene("transient")
	assert.Error(t, m.ReloadScene(s.ID()))
	assert.Error(t, m.ReloadScene("nope"))
}

func TestLoadSceneBadFile(t *testing.T) {
	m := newTestManager()
	_, err := m.LoadScene(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
	assert.Empty(t, m.Scenes(), "failed loads register nothing")
}

func TestManagerClear(t *testing.T) {
	m := newTestManager()
	a := m.CreateScene("a")
	a.CreateEntity("e")
	m.SetActiveScene(a.ID())

	m.Clear()
	assert.Empty(t, m.Scenes())
	assert.Nil(t, m.ActiveScene())
	assert.Empty(t, a.Entities())
}
