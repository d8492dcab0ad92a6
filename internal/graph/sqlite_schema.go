package graph

// SQLite schema DDL constants

const schemaNodes = `
CREATE TABLE IF NOT EXISTS nodes (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    key TEXT NOT NULL,
    props TEXT NOT NULL DEFAULT '{}',
    created_at DATETIME NOT NULL,
    modified_at DATETIME NOT NULL,
    UNIQUE(label, key)
)`

const schemaEdges = `
CREATE TABLE IF NOT EXISTS edges (
    rowid INTEGER PRIMARY KEY AUTOINCREMENT,
    source_id TEXT NOT NULL REFERENCES nodes(id),
    target_id TEXT NOT NULL REFERENCES nodes(id),
    label TEXT NOT NULL,
    props TEXT NOT NULL DEFAULT '{}',
    created_at DATETIME NOT NULL,
    UNIQUE(source_id, target_id, label)
)`

const indexNodesLabel = `CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes(label)`
const indexEdgesSource = `CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id, label)`
const indexEdgesTarget = `CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id, label)`

// SQLite pragmas for optimal performance
const pragmaWAL = `PRAGMA journal_mode=WAL`
const pragmaFK = `PRAGMA foreign_keys=ON`
const pragmaBusyTimeout = `PRAGMA busy_timeout=5000`
const pragmaSynchronous = `PRAGMA synchronous=NORMAL`

// allSchemaStatements returns all schema DDL in order
func allSchemaStatements() []string {
	return []string{
		schemaNodes,
		schemaEdges,
		indexNodesLabel,
		indexEdgesSource,
		indexEdgesTarget,
	}
}

// allPragmas returns all pragma statements
func allPragmas() []string {
	return []string{
		pragmaWAL,
		pragmaFK,
		pragmaBusyTimeout,
		pragmaSynchronous,
	}
}
