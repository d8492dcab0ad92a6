package graph

import (
	"context"
	"errors"
)

// Direction selects which way a traversal follows edges relative to the
// starting node. Symmetric relationships (FRIENDS, RELATED_WITH) traverse
// with Any.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
	Any
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	default:
		return "any"
	}
}

var (
	// ErrDuplicateIdentity is returned by CreateNode when a node with the
	// same (label, key) pair already exists. The backend's own uniqueness
	// constraint is the authoritative signal; callers must not pre-check.
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrDuplicateEdge is returned by CreateEdge when an edge with the same
	// (source, target, label) ordered triple already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrNodeMissing is returned when an operation references a node id
	// that does not exist in the store.
	ErrNodeMissing = errors.New("node not found")
)

// Node is a stored graph record for one entity instance. ID is the
// store-assigned surrogate identifier. Key is the value of the entity's
// identity attribute and is unique per Label; surrogate-identified entity
// types reuse the ID as Key.
type Node struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Key   string         `json:"key"`
	Props map[string]any `json:"props"`
}

// Edge is a directed, labeled relationship between two nodes.
type Edge struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Label  string         `json:"label"`
	Props  map[string]any `json:"props,omitempty"`
}

// Store is the graph storage boundary. Implementations provide atomic
// single-node upsert and enforce identity uniqueness themselves; the domain
// layer above never relies on check-then-write.
type Store interface {
	// CreateNode inserts a new node, failing with ErrDuplicateIdentity when
	// the (label, key) pair is already taken.
	CreateNode(ctx context.Context, node *Node) error

	// GetNode returns the node with the given surrogate id, or a wrapped
	// ErrNodeMissing.
	GetNode(ctx context.Context, id string) (*Node, error)

	// MatchNodes returns all nodes of the given label whose property equals
	// the given value.
	MatchNodes(ctx context.Context, label, property string, value any) ([]*Node, error)

	// MatchAll returns every node of the given label. Each call re-issues
	// the scan; no ordering is guaranteed.
	MatchAll(ctx context.Context, label string) ([]*Node, error)

	// PushNode replaces all scalar properties of an existing node.
	PushNode(ctx context.Context, node *Node) error

	// CreateEdge inserts a directed labeled edge between two existing nodes.
	CreateEdge(ctx context.Context, edge *Edge) error

	// Traverse returns all nodes of targetLabel reachable from the node over
	// exactly one edge of relLabel in the given direction.
	Traverse(ctx context.Context, nodeID, relLabel string, dir Direction, targetLabel string) ([]*Node, error)

	// EnsureConstraints installs the backend's uniqueness constraints.
	EnsureConstraints(ctx context.Context) error

	Close(ctx context.Context) error
}
