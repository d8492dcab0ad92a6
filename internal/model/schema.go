package model

import (
	"github.com/google/uuid"

	"github.com/mrdrprofuroboros/constellation/internal/graph"
)

// Rel declares one relationship field of a schema: the edge label and
// direction to traverse, and the entity type found on the other end. The
// declaration is the contract; direction and label are never discovered
// from data.
type Rel struct {
	Label  string
	Dir    graph.Direction
	Target *Schema
}

// Schema declares one entity type: its node label, its scalar fields, which
// field (if any) is the identity attribute, and its relationship fields.
// Types with an empty Identity are identified by a store-assigned surrogate
// id.
type Schema struct {
	Label    string
	Identity string
	Fields   []string
	Rels     map[string]Rel
}

func (s *Schema) hasField(name string) bool {
	for _, f := range s.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// New builds an unpersisted entity from attribute values. Every key must be
// a declared scalar field; unrecognized keys fail with a ValidationError
// rather than being silently dropped.
func (s *Schema) New(values map[string]any) (*Entity, error) {
	node := &graph.Node{
		ID:    uuid.New().String(),
		Label: s.Label,
		Props: make(map[string]any, len(values)),
	}
	for key, value := range values {
		if !s.hasField(key) {
			return nil, &ValidationError{Label: s.Label, Field: key}
		}
		node.Props[key] = value
	}
	node.Key = s.identityOf(node)

	return &Entity{schema: s, node: node}, nil
}

// identityOf derives the store key for a node: the identity attribute value
// for identity-bearing types, the surrogate id otherwise.
func (s *Schema) identityOf(node *graph.Node) string {
	if s.Identity == "" {
		return node.ID
	}
	if v, ok := node.Props[s.Identity].(string); ok {
		return v
	}
	return ""
}
