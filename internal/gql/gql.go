package gql

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/mrdrprofuroboros/constellation/internal/model"
)

// DefaultMaxDepth bounds recursive shape expansion per request.
const DefaultMaxDepth = 16

// Resolver owns the GraphQL schema and wires its fields to the domain
// model layer.
type Resolver struct {
	reg      *model.Registry
	log      *zap.Logger
	maxDepth int

	userType         *graphql.Object
	playlistType     *graphql.Object
	artistType       *graphql.Object
	genreType        *graphql.Object
	epochType        *graphql.Object
	releaseType      *graphql.Object
	releaseGroupType *graphql.Object
	compositionType  *graphql.Object
	trackType        *graphql.Object

	schema graphql.Schema
}

// New builds a resolver and its schema.
func New(reg *model.Registry, logger *zap.Logger, maxDepth int) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	r := &Resolver{reg: reg, log: logger.Named("gql"), maxDepth: maxDepth}
	r.buildTypes()

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    r.queryType(),
		Mutation: r.mutationType(),
	})
	if err != nil {
		return nil, fmt.Errorf("building schema: %w", err)
	}
	r.schema = schema
	return r, nil
}

// Schema returns the assembled GraphQL schema.
func (r *Resolver) Schema() *graphql.Schema {
	return &r.schema
}

// Do executes a query or mutation, installing a fresh arena when the
// context does not already carry one. Test and embedding convenience; the
// HTTP transport installs the arena itself.
func (r *Resolver) Do(params graphql.Params) *graphql.Result {
	params.Schema = r.schema
	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := arenaFrom(ctx); err != nil {
		ctx = WithArena(ctx, r.reg.NewArena())
	}
	params.Context = ctx
	return graphql.Do(params)
}
