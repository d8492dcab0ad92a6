// Package gql projects the domain model into a GraphQL query/mutation
// schema. Relationship fields resolve lazily through the model layer's
// traversals; resolution failures stay scoped to the field they occurred in.
package gql

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/mrdrprofuroboros/constellation/internal/model"
)

type arenaKey struct{}

// WithArena binds a request-scoped resolution arena to the context. The
// transport installs one per incoming request.
func WithArena(ctx context.Context, arena *model.Arena) context.Context {
	return context.WithValue(ctx, arenaKey{}, arena)
}

// arenaFrom extracts the request's arena.
func arenaFrom(ctx context.Context) (*model.Arena, error) {
	arena, ok := ctx.Value(arenaKey{}).(*model.Arena)
	if !ok {
		return nil, fmt.Errorf("no resolution arena in request context")
	}
	return arena, nil
}

// guardDepth bounds recursive shape expansion. Cyclic relationships
// (mutual FRIENDS, genre influence loops) stay finite because the query
// document is finite, but a hostile or runaway deep query is cut off here
// at the failing field rather than aborting the request.
func (r *Resolver) guardDepth(p graphql.ResolveParams) error {
	if p.Info.Path == nil {
		return nil
	}
	if depth := len(p.Info.Path.AsArray()); depth > r.maxDepth {
		return fmt.Errorf("resolution depth %d exceeds maximum %d", depth, r.maxDepth)
	}
	return nil
}
