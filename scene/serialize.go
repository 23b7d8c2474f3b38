package scene

import (
	"encoding/json"
	"fmt"
	"os"
)

// sceneFile is the persisted scene document: the scene header plus the root
// entity trees, serialized recursively.
type sceneFile struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Entities []entityNode `json:"entities"`
}

type entityNode struct {
	ID         EntityID        `json:"id"`
	Name       string          `json:"name"`
	Enabled    bool            `json:"enabled"`
	Tags       []string        `json:"tags"`
	Layer      int             `json:"layer"`
	Components []componentNode `json:"components"`
	Children   []entityNode    `json:"children"`
}

type componentNode struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Save walks the root entities and writes the whole tree as one indented JSON
// document. With an empty path the scene's remembered path is used. On
// success the path is remembered for later saves and reloads.
func (s *Scene) Save(path string) error {
	if path == "" {
		path = s.path
	}
	if path == "" {
		return fmt.Errorf("scene %q has no backing path", s.name)
	}

	doc := sceneFile{
		ID:       s.id,
		Name:     s.name,
		Entities: make([]entityNode, 0, len(s.roots)),
	}
	for _, root := range s.roots {
		node, err := serializeEntity(root)
		if err != nil {
			s.logger.Printf("scene %q: save failed: %v", s.name, err)
			return err
		}
		doc.Entities = append(doc.Entities, node)
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		s.logger.Printf("scene %q: save failed: %v", s.name, err)
		return fmt.Errorf("encoding scene %q: %w", s.name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Printf("scene %q: save failed: %v", s.name, err)
		return fmt.Errorf("writing scene %q: %w", s.name, err)
	}
	s.path = path
	return nil
}

func serializeEntity(e *Entity) (entityNode, error) {
	node := entityNode{
		ID:         e.id,
		Name:       e.name,
		Enabled:    e.enabled,
		Tags:       e.Tags(),
		Layer:      e.layer,
		Components: make([]componentNode, 0, len(e.compOrder)),
		Children:   make([]entityNode, 0, len(e.children)),
	}

	// Components without a Serialize hook are deliberately dropped from the
	// persisted form.
	for _, c := range e.Components() {
		sz, ok := c.(Serializable)
		if !ok {
			continue
		}
		raw, err := json.Marshal(sz.Serialize())
		if err != nil {
			return entityNode{}, fmt.Errorf("serializing %s on entity %q: %w", componentTypeName(c), e.name, err)
		}
		node.Components = append(node.Components, componentNode{
			Type: componentTypeName(c),
			Data: raw,
		})
	}

	for _, child := range e.children {
		childNode, err := serializeEntity(child)
		if err != nil {
			return entityNode{}, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

// Load reads a scene document and reconstructs the entity tree. The whole
// tree is built detached first and committed only once every node has been
// rebuilt, so a failed load leaves the scene exactly as it was. Unknown
// component type names are skipped with a diagnostic, not fatal; a failing
// Deserialize hook aborts the load.
func (s *Scene) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Printf("scene %q: load failed: %v", s.name, err)
		return fmt.Errorf("reading scene file: %w", err)
	}

	var doc sceneFile
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Printf("scene %q: load failed: %v", s.name, err)
		return fmt.Errorf("decoding scene file %s: %w", path, err)
	}

	roots := make([]*Entity, 0, len(doc.Entities))
	for i := range doc.Entities {
		root, err := s.buildEntity(&doc.Entities[i])
		if err != nil {
			s.logger.Printf("scene %q: load failed: %v", s.name, err)
			return err
		}
		roots = append(roots, root)
	}

	// Commit: the replacement tree is complete, drop the old state.
	s.Clear()
	if doc.ID != "" {
		s.id = doc.ID
	}
	if doc.Name != "" {
		s.name = doc.Name
	}
	s.path = path
	for _, root := range roots {
		s.adoptTree(root)
	}
	return nil
}

// buildEntity reconstructs one persisted entity and its subtree, detached
// from the live scene.
func (s *Scene) buildEntity(node *entityNode) (*Entity, error) {
	var e *Entity
	if node.ID != 0 {
		e = newEntityWithID(node.ID, node.Name)
	} else {
		e = NewEntity(node.Name)
	}
	e.enabled = node.Enabled
	e.layer = node.Layer
	for _, tag := range node.Tags {
		e.AddTag(tag)
	}

	for _, cn := range node.Components {
		factory, ok := s.resolver.Resolve(cn.Type)
		if !ok {
			s.logger.Printf("scene %q: unknown component type %q on entity %q, skipping", s.name, cn.Type, node.Name)
			continue
		}
		c := e.AddComponent(factory())
		if d, ok := c.(Deserializable); ok && len(cn.Data) > 0 {
			if err := d.Deserialize(cn.Data); err != nil {
				return nil, fmt.Errorf("deserializing %s on entity %q: %w", cn.Type, node.Name, err)
			}
		}
	}

	for i := range node.Children {
		child, err := s.buildEntity(&node.Children[i])
		if err != nil {
			return nil, err
		}
		e.AddChild(child)
	}
	return e, nil
}

// adoptTree registers a detached tree: parents before children, so the child
// never transiently appears in the root list.
func (s *Scene) adoptTree(e *Entity) {
	s.AddEntity(e)
	for _, child := range e.children {
		s.adoptTree(child)
	}
}
