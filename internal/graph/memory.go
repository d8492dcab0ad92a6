package graph

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// MemoryStore is a fast, ephemeral, in-memory implementation of Store. It
// backs the test suites and short-lived local runs where persistence isn't
// required.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[string]*Node            // node id -> node
	keys  map[string]string           // label + "\x00" + key -> node id
	edges map[string]map[string]*Edge // source id -> (target id + "\x00" + label) -> edge
	log   *zap.Logger
}

var _ Store = (*MemoryStore)(nil)

// NewMemory creates a new, empty in-memory store.
func NewMemory(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		nodes: make(map[string]*Node),
		keys:  make(map[string]string),
		edges: make(map[string]map[string]*Edge),
		log:   logger.Named("MemoryStore"),
	}
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func (s *MemoryStore) EnsureConstraints(ctx context.Context) error { return nil }

func identityKey(label, key string) string { return label + "\x00" + key }

func edgeKey(target, label string) string { return target + "\x00" + label }

// CreateNode inserts a new node, enforcing (label, key) uniqueness.
func (s *MemoryStore) CreateNode(ctx context.Context, node *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ik := identityKey(node.Label, node.Key)
	if _, exists := s.keys[ik]; exists {
		return fmt.Errorf("%s %q: %w", node.Label, node.Key, ErrDuplicateIdentity)
	}

	s.nodes[node.ID] = cloneNode(node)
	s.keys[ik] = node.ID
	s.log.Debug("node created", zap.String("id", node.ID), zap.String("label", node.Label))
	return nil
}

// GetNode retrieves a node by its surrogate id.
func (s *MemoryStore) GetNode(ctx context.Context, id string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, exists := s.nodes[id]
	if !exists {
		return nil, fmt.Errorf("%q: %w", id, ErrNodeMissing)
	}
	return cloneNode(node), nil
}

// MatchNodes returns all nodes of label whose property equals value.
func (s *MemoryStore) MatchNodes(ctx context.Context, label, property string, value any) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*Node
	for _, node := range s.nodes {
		if node.Label == label && node.Props[property] == value {
			matches = append(matches, cloneNode(node))
		}
	}
	return matches, nil
}

// MatchAll returns every node of the given label.
func (s *MemoryStore) MatchAll(ctx context.Context, label string) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*Node
	for _, node := range s.nodes {
		if node.Label == label {
			matches = append(matches, cloneNode(node))
		}
	}
	return matches, nil
}

// PushNode replaces all properties of an existing node.
func (s *MemoryStore) PushNode(ctx context.Context, node *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.nodes[node.ID]
	if !exists {
		return fmt.Errorf("%s %q: %w", node.Label, node.ID, ErrNodeMissing)
	}

	if node.Key != stored.Key {
		ik := identityKey(node.Label, node.Key)
		if other, taken := s.keys[ik]; taken && other != node.ID {
			return fmt.Errorf("%s %q: %w", node.Label, node.Key, ErrDuplicateIdentity)
		}
		delete(s.keys, identityKey(stored.Label, stored.Key))
		s.keys[ik] = node.ID
	}

	s.nodes[node.ID] = cloneNode(node)
	return nil
}

// CreateEdge inserts a directed labeled edge between two existing nodes.
func (s *MemoryStore) CreateEdge(ctx context.Context, edge *Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[edge.Source]; !exists {
		return fmt.Errorf("%s: %w", edge.Source, ErrNodeMissing)
	}
	if _, exists := s.nodes[edge.Target]; !exists {
		return fmt.Errorf("%s: %w", edge.Target, ErrNodeMissing)
	}

	ek := edgeKey(edge.Target, edge.Label)
	if s.edges[edge.Source] == nil {
		s.edges[edge.Source] = make(map[string]*Edge)
	}
	if _, exists := s.edges[edge.Source][ek]; exists {
		return fmt.Errorf("%s %s->%s: %w", edge.Label, edge.Source, edge.Target, ErrDuplicateEdge)
	}

	s.edges[edge.Source][ek] = &Edge{
		Source: edge.Source,
		Target: edge.Target,
		Label:  edge.Label,
		Props:  edge.Props,
	}
	s.log.Debug("edge created",
		zap.String("label", edge.Label),
		zap.String("source", edge.Source),
		zap.String("target", edge.Target))
	return nil
}

// Traverse returns all targetLabel nodes reachable over one relLabel edge.
func (s *MemoryStore) Traverse(ctx context.Context, nodeID, relLabel string, dir Direction, targetLabel string) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var results []*Node

	collect := func(id string) {
		node, exists := s.nodes[id]
		if !exists || node.Label != targetLabel {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		results = append(results, cloneNode(node))
	}

	if dir == Outgoing || dir == Any {
		for _, edge := range s.edges[nodeID] {
			if edge.Label == relLabel {
				collect(edge.Target)
			}
		}
	}
	if dir == Incoming || dir == Any {
		for source, targets := range s.edges {
			for _, edge := range targets {
				if edge.Label == relLabel && edge.Target == nodeID {
					collect(source)
				}
			}
		}
	}
	return results, nil
}

// RemoveNode drops a node without touching edges that reference it. Test
// hook for simulating dangling relationship targets.
func (s *MemoryStore) RemoveNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node, exists := s.nodes[id]; exists {
		delete(s.keys, identityKey(node.Label, node.Key))
		delete(s.nodes, id)
	}
}

func cloneNode(node *Node) *Node {
	clone := &Node{
		ID:    node.ID,
		Label: node.Label,
		Key:   node.Key,
		Props: make(map[string]any, len(node.Props)),
	}
	for k, v := range node.Props {
		clone.Props[k] = v
	}
	return clone
}
