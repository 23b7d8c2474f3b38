package scene

import (
	"fmt"
	"log"
)

// SceneManager owns the registry of scenes, keeps at most one of them active,
// and remembers the backing file path per scene name so scenes can be
// reloaded.
type SceneManager struct {
	scenes   map[string]*Scene
	order    []*Scene // registration order, for name resolution
	active   *Scene
	paths    map[string]string // scene name -> last-used file path
	resolver *TypeResolver
	logger   *log.Logger
}

// NewSceneManager creates an empty manager. The resolver (may be nil) is
// handed to every scene the manager creates or loads.
func NewSceneManager(resolver *TypeResolver) *SceneManager {
	return &SceneManager{
		scenes:   make(map[string]*Scene),
		paths:    make(map[string]string),
		resolver: resolver,
		logger:   log.Default(),
	}
}

// SetLogger redirects the manager's diagnostics. The default is
// log.Default().
func (m *SceneManager) SetLogger(l *log.Logger) {
	if l != nil {
		m.logger = l
		for _, s := range m.order {
			s.SetLogger(l)
		}
	}
}

// CreateScene allocates a scene, wires the manager's resolver into it and
// registers it.
func (m *SceneManager) CreateScene(name string) *Scene {
	s := NewScene(name)
	s.SetResolver(m.resolver)
	return m.AddScene(s)
}

// AddScene registers the scene under its id.
func (m *SceneManager) AddScene(s *Scene) *Scene {
	if _, exists := m.scenes[s.id]; exists {
		return s
	}
	m.scenes[s.id] = s
	m.order = append(m.order, s)
	return s
}

// RemoveScene drops the scene from the registry, clearing the active
// reference if it pointed there. Reports whether the id was known.
func (m *SceneManager) RemoveScene(id string) bool {
	s, ok := m.scenes[id]
	if !ok {
		return false
	}
	if m.active == s {
		m.active = nil
	}
	delete(m.scenes, id)
	for i, cur := range m.order {
		if cur == s {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Scene returns the registered scene with the given id, or nil.
func (m *SceneManager) Scene(id string) *Scene {
	return m.scenes[id]
}

// Scenes returns all registered scenes in registration order.
func (m *SceneManager) Scenes() []*Scene {
	out := make([]*Scene, len(m.order))
	copy(out, m.order)
	return out
}

// SceneByName returns the first registered scene with the given name, or nil.
func (m *SceneManager) SceneByName(name string) *Scene {
	for _, s := range m.order {
		if s.name == name {
			return s
		}
	}
	return nil
}

// SetActiveScene deactivates the previously active scene (if any) and
// activates the requested one. An unknown id leaves the previous active scene
// untouched and reports failure.
func (m *SceneManager) SetActiveScene(id string) bool {
	s, ok := m.scenes[id]
	if !ok {
		return false
	}
	if m.active != nil {
		m.active.Deactivate()
	}
	m.active = s
	s.Activate()
	return true
}

// ActiveScene returns the currently active scene, or nil.
func (m *SceneManager) ActiveScene() *Scene {
	return m.active
}

// LoadScene instantiates an empty scene, loads the document at path into it,
// and on success registers it and remembers the path under the scene's name.
func (m *SceneManager) LoadScene(path string) (*Scene, error) {
	s := NewScene("")
	s.SetResolver(m.resolver)
	s.SetLogger(m.logger)
	if err := s.Load(path); err != nil {
		return nil, fmt.Errorf("loading scene from %s: %w", path, err)
	}
	m.AddScene(s)
	m.paths[s.name] = path
	return s, nil
}

// SaveScene saves the identified scene. With an empty path the scene's
// remembered path is used; a successful save with an explicit path updates
// the remembered path.
func (m *SceneManager) SaveScene(id, path string) error {
	s, ok := m.scenes[id]
	if !ok {
		return fmt.Errorf("unknown scene id %q", id)
	}
	if err := s.Save(path); err != nil {
		return err
	}
	if path != "" {
		m.paths[s.name] = path
	}
	return nil
}

// ReloadScene re-runs Load on the scene's own remembered path. It fails if
// the scene never had one.
func (m *SceneManager) ReloadScene(id string) error {
	s, ok := m.scenes[id]
	if !ok {
		return fmt.Errorf("unknown scene id %q", id)
	}
	if s.path == "" {
		return fmt.Errorf("scene %q has no backing path to reload", s.name)
	}
	return s.Load(s.path)
}

// Update forwards the frame tick to the active scene; a no-op when none is
// active.
func (m *SceneManager) Update(dt float64) {
	if m.active != nil {
		m.active.Update(dt)
	}
}

// Render forwards the render pass to the active scene; a no-op when none is
// active.
func (m *SceneManager) Render() {
	if m.active != nil {
		m.active.Render()
	}
}

// Clear clears every scene and empties the registry and active reference.
func (m *SceneManager) Clear() {
	for _, s := range m.order {
		s.Clear()
	}
	m.scenes = make(map[string]*Scene)
	m.order = m.order[:0]
	m.paths = make(map[string]string)
	m.active = nil
}
