// Package config loads server configuration from an optional TOML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Backend names for the graph store.
const (
	BackendNeo4j  = "neo4j"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the full server configuration.
type Config struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Debug    bool   `toml:"debug"`
	MaxDepth int    `toml:"max_depth"`
	Store    Store  `toml:"store"`
}

// Store selects and configures the graph storage backend.
type Store struct {
	Backend    string `toml:"backend"`
	SQLitePath string `toml:"sqlite_path"`
	Neo4j      Neo4j  `toml:"neo4j"`
}

// Neo4j holds connection settings for the Neo4j backend.
type Neo4j struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:     "0.0.0.0",
		Port:     "8080",
		MaxDepth: 16,
		Store: Store{
			Backend:    BackendNeo4j,
			SQLitePath: "constellation.db",
			Neo4j: Neo4j{
				URI:      "bolt://localhost:7687",
				Username: "neo4j",
				Password: "password",
				Database: "neo4j",
			},
		},
	}
}

// Load reads configuration: defaults, then the TOML file at path (skipped
// when path is empty or the file does not exist), then environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg.Host = getEnv("CONSTELLATION_HOST", cfg.Host)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Store.Backend = getEnv("CONSTELLATION_STORE", cfg.Store.Backend)
	cfg.Store.SQLitePath = getEnv("CONSTELLATION_SQLITE_PATH", cfg.Store.SQLitePath)
	cfg.Store.Neo4j.URI = getEnv("NEO4J_URI", cfg.Store.Neo4j.URI)
	cfg.Store.Neo4j.Username = getEnv("NEO4J_USER", cfg.Store.Neo4j.Username)
	cfg.Store.Neo4j.Password = getEnv("NEO4J_PASSWORD", cfg.Store.Neo4j.Password)
	cfg.Store.Neo4j.Database = getEnv("NEO4J_DATABASE", cfg.Store.Neo4j.Database)
	if os.Getenv("CONSTELLATION_DEBUG") != "" {
		cfg.Debug = true
	}

	switch cfg.Store.Backend {
	case BackendNeo4j, BackendSQLite, BackendMemory:
	default:
		return cfg, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
