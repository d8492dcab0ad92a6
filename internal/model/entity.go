package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/mrdrprofuroboros/constellation/internal/graph"
)

// Entity is a transient in-memory projection of one graph node, valid for
// the lifetime of the arena that produced it. Relationship fields resolve
// lazily on first access and are memoized on the handle.
type Entity struct {
	schema *Schema
	node   *graph.Node
	arena  *Arena

	persisted bool

	mu   sync.Mutex
	rels map[string][]*Entity
}

// ID returns the store-assigned surrogate id.
func (e *Entity) ID() string {
	return e.node.ID
}

// Identity returns the value of the identity attribute (the surrogate id
// for types without one).
func (e *Entity) Identity() string {
	return e.schema.identityOf(e.node)
}

// Schema returns the entity's declared type.
func (e *Entity) Schema() *Schema {
	return e.schema
}

// Get returns the current value of a scalar field, or nil when unset.
func (e *Entity) Get(field string) any {
	return e.node.Props[field]
}

// GetString returns a scalar field coerced to string.
func (e *Entity) GetString(field string) string {
	v, _ := e.node.Props[field].(string)
	return v
}

// GetBool returns a scalar field coerced to bool.
func (e *Entity) GetBool(field string) bool {
	v, _ := e.node.Props[field].(bool)
	return v
}

// GetInt returns a scalar field coerced to int, tolerating the int64 and
// float64 representations that the store backends round-trip through.
func (e *Entity) GetInt(field string) (int, bool) {
	switch v := e.node.Props[field].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Set updates a scalar field in memory; Persist writes it back.
func (e *Entity) Set(field string, value any) error {
	if !e.schema.hasField(field) {
		return &ValidationError{Label: e.schema.Label, Field: field}
	}
	e.node.Props[field] = value
	return nil
}

// invalidateRels drops the memoized sets of every relationship field that
// traverses the given edge label.
func (e *Entity) invalidateRels(edgeLabel string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for field, rel := range e.schema.Rels {
		if rel.Label == edgeLabel {
			delete(e.rels, field)
		}
	}
}

// Resolve returns all entities related through the declared relationship
// field, issuing the traversal on first access only. Repeated calls on the
// same handle return the same set. Resolution failures are not cached.
func (e *Entity) Resolve(ctx context.Context, relField string) ([]*Entity, error) {
	rel, ok := e.schema.Rels[relField]
	if !ok {
		return nil, fmt.Errorf("%s has no relationship %q", e.schema.Label, relField)
	}

	e.mu.Lock()
	if cached, done := e.rels[relField]; done {
		e.mu.Unlock()
		return cached, nil
	}
	e.mu.Unlock()

	nodes, err := e.arena.reg.store.Traverse(ctx, e.node.ID, rel.Label, rel.Dir, rel.Target.Label)
	if err != nil {
		return nil, fmt.Errorf("traversing %s.%s: %w", e.schema.Label, relField, err)
	}

	related := make([]*Entity, 0, len(nodes))
	for _, node := range nodes {
		related = append(related, e.arena.intern(rel.Target, node))
	}

	e.mu.Lock()
	if e.rels == nil {
		e.rels = make(map[string][]*Entity)
	}
	e.rels[relField] = related
	e.mu.Unlock()

	return related, nil
}
