package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jStore implements Store against a Neo4j server.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	labels   []string
}

// Neo4jConfig holds Neo4j connection configuration.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string

	// Labels lists the node labels whose key property gets a uniqueness
	// constraint in EnsureConstraints.
	Labels []string
}

// NewNeo4j connects to Neo4j and verifies connectivity.
func NewNeo4j(ctx context.Context, cfg Neo4jConfig) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("connecting to neo4j: %w", err)
	}

	database := cfg.Database
	if database == "" {
		database = "neo4j"
	}

	return &Neo4jStore{driver: driver, database: database, labels: cfg.Labels}, nil
}

// Close closes the Neo4j connection.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
}

// EnsureConstraints installs a uniqueness constraint on the key property of
// every configured label. The constraint, not a pre-read, is what makes
// concurrent duplicate creation fail.
func (s *Neo4jStore) EnsureConstraints(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	for _, label := range s.labels {
		query := fmt.Sprintf(
			"CREATE CONSTRAINT %s_key_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.key IS UNIQUE",
			strings.ToLower(label), label,
		)
		if _, err := session.Run(ctx, query, nil); err != nil {
			return fmt.Errorf("creating constraint for %s: %w", label, err)
		}
	}
	return nil
}

// CreateNode inserts a new node. A constraint violation from the server is
// mapped to ErrDuplicateIdentity.
func (s *Neo4jStore) CreateNode(ctx context.Context, node *Node) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf("CREATE (n:%s $props) RETURN n.id", node.Label)
		_, err := tx.Run(ctx, query, map[string]any{"props": nodeProps(node)})
		return nil, err
	})
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%s %q: %w", node.Label, node.Key, ErrDuplicateIdentity)
		}
		return fmt.Errorf("creating %s node: %w", node.Label, err)
	}
	return nil
}

// GetNode retrieves a node by its surrogate id.
func (s *Neo4jStore) GetNode(ctx context.Context, id string) (*Node, error) {
	nodes, err := s.readNodes(ctx, "MATCH (n {id: $id}) RETURN n", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%q: %w", id, ErrNodeMissing)
	}
	return nodes[0], nil
}

// MatchNodes returns all nodes of label whose property equals value.
func (s *Neo4jStore) MatchNodes(ctx context.Context, label, property string, value any) ([]*Node, error) {
	query := fmt.Sprintf("MATCH (n:%s {%s: $value}) RETURN n", label, property)
	return s.readNodes(ctx, query, map[string]any{"value": value})
}

// MatchAll returns every node of the given label.
func (s *Neo4jStore) MatchAll(ctx context.Context, label string) ([]*Node, error) {
	query := fmt.Sprintf("MATCH (n:%s) RETURN n", label)
	return s.readNodes(ctx, query, nil)
}

// PushNode replaces all properties of an existing node.
func (s *Neo4jStore) PushNode(ctx context.Context, node *Node) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf("MATCH (n:%s {id: $id}) SET n = $props RETURN n.id", node.Label)
		result, err := tx.Run(ctx, query, map[string]any{
			"id":    node.ID,
			"props": nodeProps(node),
		})
		if err != nil {
			return nil, err
		}
		if !result.Next(ctx) {
			return nil, fmt.Errorf("%s %q: %w", node.Label, node.ID, ErrNodeMissing)
		}
		return nil, nil
	})
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%s %q: %w", node.Label, node.Key, ErrDuplicateIdentity)
		}
		return err
	}
	return nil
}

// CreateEdge inserts a directed labeled edge between two existing nodes. The
// count-then-create runs inside one managed transaction.
func (s *Neo4jStore) CreateEdge(ctx context.Context, edge *Edge) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		check := fmt.Sprintf(
			"MATCH (a {id: $source})-[r:%s]->(b {id: $target}) RETURN count(r) AS c",
			edge.Label,
		)
		result, err := tx.Run(ctx, check, map[string]any{
			"source": edge.Source,
			"target": edge.Target,
		})
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			if c, _ := result.Record().Get("c"); c.(int64) > 0 {
				return nil, fmt.Errorf("%s %s->%s: %w", edge.Label, edge.Source, edge.Target, ErrDuplicateEdge)
			}
		}

		create := fmt.Sprintf(`
			MATCH (a {id: $source})
			MATCH (b {id: $target})
			CREATE (a)-[r:%s $props]->(b)
			RETURN r
		`, edge.Label)
		props := edge.Props
		if props == nil {
			props = map[string]any{}
		}
		result, err = tx.Run(ctx, create, map[string]any{
			"source": edge.Source,
			"target": edge.Target,
			"props":  props,
		})
		if err != nil {
			return nil, err
		}
		if !result.Next(ctx) {
			return nil, fmt.Errorf("%s or %s: %w", edge.Source, edge.Target, ErrNodeMissing)
		}
		return nil, nil
	})
	return err
}

// Traverse returns all targetLabel nodes reachable over one relLabel edge.
func (s *Neo4jStore) Traverse(ctx context.Context, nodeID, relLabel string, dir Direction, targetLabel string) ([]*Node, error) {
	var pattern string
	switch dir {
	case Outgoing:
		pattern = "(a {id: $id})-[:%s]->(n:%s)"
	case Incoming:
		pattern = "(a {id: $id})<-[:%s]-(n:%s)"
	default:
		pattern = "(a {id: $id})-[:%s]-(n:%s)"
	}
	query := fmt.Sprintf("MATCH "+pattern+" RETURN n", relLabel, targetLabel)
	return s.readNodes(ctx, query, map[string]any{"id": nodeID})
}

func (s *Neo4jStore) readNodes(ctx context.Context, query string, params map[string]any) ([]*Node, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}

		// Undirected traversals yield one row per matching edge; collapse
		// them so a node appears once regardless of edge multiplicity.
		seen := make(map[string]struct{})
		var nodes []*Node
		for result.Next(ctx) {
			record := result.Record()
			value, _ := record.Get("n")
			node := fromNeo4jNode(value.(neo4j.Node))
			if _, dup := seen[node.ID]; dup {
				continue
			}
			seen[node.ID] = struct{}{}
			nodes = append(nodes, node)
		}
		return nodes, result.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]*Node), nil
}

// nodeProps flattens a Node into the property map stored on the server.
// Domain scalars are flat, so no JSON round-trip is needed.
func nodeProps(node *Node) map[string]any {
	props := make(map[string]any, len(node.Props)+2)
	for k, v := range node.Props {
		props[k] = v
	}
	props["id"] = node.ID
	props["key"] = node.Key
	return props
}

func fromNeo4jNode(n neo4j.Node) *Node {
	node := &Node{Props: make(map[string]any, len(n.Props))}
	if len(n.Labels) > 0 {
		node.Label = n.Labels[0]
	}
	for k, v := range n.Props {
		switch k {
		case "id":
			node.ID, _ = v.(string)
		case "key":
			node.Key, _ = v.(string)
		default:
			node.Props[k] = v
		}
	}
	return node
}

func isConstraintViolation(err error) bool {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		return strings.Contains(neoErr.Code, "ConstraintValidationFailed") ||
			strings.Contains(neoErr.Code, "ConstraintViolation")
	}
	return false
}
