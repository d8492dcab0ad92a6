package model

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrdrprofuroboros/constellation/internal/graph"
)

// Registry is the domain layer's handle on the graph store. It is created
// once at process start with an explicit store connection; per-request state
// lives in Arenas.
type Registry struct {
	store graph.Store
	log   *zap.Logger
}

// NewRegistry wraps a store connection.
func NewRegistry(store graph.Store, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: store, log: logger.Named("model")}
}

// Store exposes the underlying connection for transport-level wiring.
func (r *Registry) Store() graph.Store {
	return r.store
}

// NewArena starts a request-scoped resolution arena.
func (r *Registry) NewArena() *Arena {
	return &Arena{
		reg:      r,
		entities: make(map[string]*Entity),
	}
}

// Arena is a request-scoped set of resolved entity handles, keyed by the
// store-assigned node id. Traversals that reach an already-seen node get the
// same handle back, so cyclic relationship chains converge instead of
// producing fresh unbounded instances.
type Arena struct {
	reg      *Registry
	entities map[string]*Entity
}

// intern returns the arena's handle for a node, creating it on first sight.
func (a *Arena) intern(schema *Schema, node *graph.Node) *Entity {
	if e, seen := a.entities[node.ID]; seen {
		return e
	}
	e := &Entity{
		schema:    schema,
		node:      node,
		arena:     a,
		persisted: true,
	}
	a.entities[node.ID] = e
	return e
}

// Adopt binds an unpersisted entity (built by Schema.New) to this arena so
// it can be persisted and resolved.
func (a *Arena) Adopt(e *Entity) *Entity {
	e.arena = a
	a.entities[e.node.ID] = e
	return e
}

// FetchByIdentity looks up the unique entity of the schema's type whose
// identity equals key. Zero matches is a NotFoundError; more than one is an
// InconsistencyError, never an arbitrary pick.
func (a *Arena) FetchByIdentity(ctx context.Context, schema *Schema, key string) (*Entity, error) {
	if schema.Identity == "" {
		node, err := a.reg.store.GetNode(ctx, key)
		if err != nil {
			return nil, wrapStoreErr(err, schema.Label, key)
		}
		if node.Label != schema.Label {
			return nil, &NotFoundError{Label: schema.Label, Key: key}
		}
		return a.intern(schema, node), nil
	}

	nodes, err := a.reg.store.MatchNodes(ctx, schema.Label, schema.Identity, key)
	if err != nil {
		return nil, fmt.Errorf("matching %s by %s: %w", schema.Label, schema.Identity, err)
	}
	switch len(nodes) {
	case 0:
		return nil, &NotFoundError{Label: schema.Label, Key: key}
	case 1:
		return a.intern(schema, nodes[0]), nil
	default:
		return nil, &InconsistencyError{Label: schema.Label, Key: key, Matches: len(nodes)}
	}
}

// FetchAll returns every entity of the schema's type. Each call re-issues
// the underlying scan; no ordering is guaranteed.
func (a *Arena) FetchAll(ctx context.Context, schema *Schema) ([]*Entity, error) {
	nodes, err := a.reg.store.MatchAll(ctx, schema.Label)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", schema.Label, err)
	}
	entities := make([]*Entity, 0, len(nodes))
	for _, node := range nodes {
		entities = append(entities, a.intern(schema, node))
	}
	return entities, nil
}

// Persist upserts all current scalar attribute values of the entity. The
// first persist creates the node and surfaces DuplicateIdentityError when
// the identity is already taken; later persists replace the whole property
// set. Attached relationships are not persisted; see Relate.
func (a *Arena) Persist(ctx context.Context, e *Entity) error {
	e.node.Key = e.schema.identityOf(e.node)

	if !e.persisted {
		if err := a.reg.store.CreateNode(ctx, e.node); err != nil {
			return wrapStoreErr(err, e.schema.Label, e.node.Key)
		}
		e.persisted = true
		a.reg.log.Debug("entity created",
			zap.String("label", e.schema.Label),
			zap.String("id", e.node.ID))
		return nil
	}

	if err := a.reg.store.PushNode(ctx, e.node); err != nil {
		return wrapStoreErr(err, e.schema.Label, e.node.Key)
	}
	return nil
}

// Relate creates the edge behind a declared relationship field of from,
// pointing at to. The edge label and direction come from the declaration.
// Symmetric (Any-direction) relationships are stored as a single edge in
// canonical node-id order, so relating the same pair from either side
// collides with the same (source, target, label) triple and fails as a
// duplicate.
func (a *Arena) Relate(ctx context.Context, from *Entity, relField string, to *Entity) error {
	rel, ok := from.schema.Rels[relField]
	if !ok {
		return fmt.Errorf("%s has no relationship %q", from.schema.Label, relField)
	}
	if to.schema != rel.Target {
		return fmt.Errorf("%s.%s relates to %s, not %s",
			from.schema.Label, relField, rel.Target.Label, to.schema.Label)
	}

	edge := &graph.Edge{Source: from.node.ID, Target: to.node.ID, Label: rel.Label}
	switch {
	case rel.Dir == graph.Incoming:
		edge.Source, edge.Target = edge.Target, edge.Source
	case rel.Dir == graph.Any && edge.Source > edge.Target:
		edge.Source, edge.Target = edge.Target, edge.Source
	}

	if err := a.reg.store.CreateEdge(ctx, edge); err != nil {
		return err
	}

	// Invalidate memoized sets on both endpoints so the next Resolve of any
	// field sharing this edge label sees the new edge.
	from.invalidateRels(rel.Label)
	to.invalidateRels(rel.Label)
	return nil
}
