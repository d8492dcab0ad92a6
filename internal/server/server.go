// Package server is the thin HTTP transport over the GraphQL surface:
// routing, CORS, request logging, and the interactive explorer. No domain
// state lives here.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/graphql-go/handler"
	"go.uber.org/zap"

	"github.com/mrdrprofuroboros/constellation/internal/gql"
	"github.com/mrdrprofuroboros/constellation/internal/model"
)

// Server wires the GraphQL resolver into an HTTP router.
type Server struct {
	resolver *gql.Resolver
	reg      *model.Registry
	log      *zap.Logger
}

// New creates the HTTP server wiring.
func New(resolver *gql.Resolver, reg *model.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{resolver: resolver, reg: reg, log: logger.Named("server")}
}

// Router builds the chi router: /graphql with GraphiQL, /health, JSON 404.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	gqlHandler := handler.New(&handler.Config{
		Schema:   s.resolver.Schema(),
		Pretty:   true,
		GraphiQL: true,
	})

	r.Handle("/graphql", s.withArena(gqlHandler))
	r.Get("/health", s.healthCheck)
	r.NotFound(notFound)

	return r
}

// withArena installs a fresh resolution arena per request.
func (s *Server) withArena(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := gql.WithArena(r.Context(), s.reg.NewArena())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)))
	})
}

// HealthCheck handles GET /health
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "The requested URL was not found on the server.",
	})
}
