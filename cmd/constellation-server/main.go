package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mrdrprofuroboros/constellation/internal/config"
	"github.com/mrdrprofuroboros/constellation/internal/gql"
	"github.com/mrdrprofuroboros/constellation/internal/graph"
	"github.com/mrdrprofuroboros/constellation/internal/model"
	"github.com/mrdrprofuroboros/constellation/internal/server"
)

func main() {
	configPath := flag.String("config", "constellation.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open graph store", zap.Error(err))
	}
	defer store.Close(ctx)

	if err := store.EnsureConstraints(ctx); err != nil {
		logger.Fatal("Failed to ensure store constraints", zap.Error(err))
	}

	logger.Info("Connected to graph store", zap.String("backend", cfg.Store.Backend))

	reg := model.NewRegistry(store, logger)
	resolver, err := gql.New(reg, logger, cfg.MaxDepth)
	if err != nil {
		logger.Fatal("Failed to build GraphQL schema", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      server.New(resolver, reg, logger).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting constellation server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (graph.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		return graph.NewSQLite(ctx, cfg.Store.SQLitePath)
	case config.BackendMemory:
		return graph.NewMemory(logger), nil
	default:
		return graph.NewNeo4j(ctx, graph.Neo4jConfig{
			URI:      cfg.Store.Neo4j.URI,
			Username: cfg.Store.Neo4j.Username,
			Password: cfg.Store.Neo4j.Password,
			Database: cfg.Store.Neo4j.Database,
			Labels:   model.Labels(),
		})
	}
}
