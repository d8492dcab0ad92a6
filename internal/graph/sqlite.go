package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using an embedded SQLite database. Useful for
// single-node deployments and local development without a Neo4j server.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite-backed store at dbPath.
func NewSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}

	for _, pragma := range allPragmas() {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	for _, stmt := range allSchemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the SQLite connection.
func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// EnsureConstraints is a no-op: uniqueness lives in the table definitions.
func (s *SQLiteStore) EnsureConstraints(ctx context.Context) error {
	return nil
}

// CreateNode inserts a new node. A UNIQUE violation on (label, key) is
// mapped to ErrDuplicateIdentity.
func (s *SQLiteStore) CreateNode(ctx context.Context, node *Node) error {
	propsJSON, err := json.Marshal(node.Props)
	if err != nil {
		return fmt.Errorf("marshaling props: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO nodes (id, label, key, props, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query, node.ID, node.Label, node.Key, string(propsJSON), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s %q: %w", node.Label, node.Key, ErrDuplicateIdentity)
		}
		return fmt.Errorf("inserting node: %w", err)
	}
	return nil
}

// GetNode retrieves a node by its surrogate id.
func (s *SQLiteStore) GetNode(ctx context.Context, id string) (*Node, error) {
	nodes, err := s.queryNodes(ctx, `SELECT id, label, key, props FROM nodes WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%q: %w", id, ErrNodeMissing)
	}
	return nodes[0], nil
}

// MatchNodes returns all nodes of label whose property equals value.
func (s *SQLiteStore) MatchNodes(ctx context.Context, label, property string, value any) ([]*Node, error) {
	query := `
		SELECT id, label, key, props FROM nodes
		WHERE label = ? AND json_extract(props, '$.' || ?) = ?
	`
	return s.queryNodes(ctx, query, label, property, value)
}

// MatchAll returns every node of the given label.
func (s *SQLiteStore) MatchAll(ctx context.Context, label string) ([]*Node, error) {
	query := `SELECT id, label, key, props FROM nodes WHERE label = ?`
	return s.queryNodes(ctx, query, label)
}

// PushNode replaces all properties of an existing node.
func (s *SQLiteStore) PushNode(ctx context.Context, node *Node) error {
	propsJSON, err := json.Marshal(node.Props)
	if err != nil {
		return fmt.Errorf("marshaling props: %w", err)
	}

	query := `UPDATE nodes SET key = ?, props = ?, modified_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query,
		node.Key, string(propsJSON), time.Now().UTC().Format(time.RFC3339), node.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s %q: %w", node.Label, node.Key, ErrDuplicateIdentity)
		}
		return fmt.Errorf("updating node: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %q: %w", node.Label, node.ID, ErrNodeMissing)
	}
	return nil
}

// CreateEdge inserts a directed labeled edge between two existing nodes.
func (s *SQLiteStore) CreateEdge(ctx context.Context, edge *Edge) error {
	props := edge.Props
	if props == nil {
		props = map[string]any{}
	}
	propsJSON, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("marshaling props: %w", err)
	}

	query := `
		INSERT INTO edges (source_id, target_id, label, props, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		edge.Source, edge.Target, edge.Label, string(propsJSON),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s %s->%s: %w", edge.Label, edge.Source, edge.Target, ErrDuplicateEdge)
		}
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return fmt.Errorf("%s or %s: %w", edge.Source, edge.Target, ErrNodeMissing)
		}
		return fmt.Errorf("inserting edge: %w", err)
	}
	return nil
}

// Traverse returns all targetLabel nodes reachable over one relLabel edge.
func (s *SQLiteStore) Traverse(ctx context.Context, nodeID, relLabel string, dir Direction, targetLabel string) ([]*Node, error) {
	const outgoing = `
		SELECT n.id, n.label, n.key, n.props FROM edges e
		JOIN nodes n ON n.id = e.target_id
		WHERE e.source_id = ? AND e.label = ? AND n.label = ?
	`
	const incoming = `
		SELECT n.id, n.label, n.key, n.props FROM edges e
		JOIN nodes n ON n.id = e.source_id
		WHERE e.target_id = ? AND e.label = ? AND n.label = ?
	`

	switch dir {
	case Outgoing:
		return s.queryNodes(ctx, outgoing, nodeID, relLabel, targetLabel)
	case Incoming:
		return s.queryNodes(ctx, incoming, nodeID, relLabel, targetLabel)
	default:
		query := outgoing + " UNION " + incoming
		return s.queryNodes(ctx, query, nodeID, relLabel, targetLabel, nodeID, relLabel, targetLabel)
	}
}

func (s *SQLiteStore) queryNodes(ctx context.Context, query string, args ...any) ([]*Node, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []*Node
	for rows.Next() {
		var node Node
		var propsJSON string
		if err := rows.Scan(&node.ID, &node.Label, &node.Key, &propsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(propsJSON), &node.Props); err != nil {
			return nil, fmt.Errorf("unmarshaling props: %w", err)
		}
		nodes = append(nodes, &node)
	}
	return nodes, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
