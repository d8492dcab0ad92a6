package gql

import (
	"github.com/graphql-go/graphql"

	"github.com/mrdrprofuroboros/constellation/internal/model"
)

// queryType assembles the root query object. A missing root entity is a
// query-level failure; it aborts the whole request with the NotFound text.
func (r *Resolver) queryType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"user": &graphql.Field{
				Type: r.userType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					arena, err := arenaFrom(p.Context)
					if err != nil {
						return nil, err
					}
					username, _ := p.Args["username"].(string)
					e, err := arena.FetchByIdentity(p.Context, model.User, username)
					if err != nil {
						return nil, err
					}
					return newUserShape(arena, e), nil
				},
			},
			"allUsers": &graphql.Field{
				Type: graphql.NewList(r.userType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.fetchAll(p, model.User, wrapUser)
				},
			},
			"artist": r.byIDField(model.Artist, func() *graphql.Object { return r.artistType }),
			"allArtists": &graphql.Field{
				Type: graphql.NewList(r.artistType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.fetchAll(p, model.Artist, wrapShape)
				},
			},
			"genre": r.byIDField(model.Genre, func() *graphql.Object { return r.genreType }),
			"allGenres": &graphql.Field{
				Type: graphql.NewList(r.genreType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.fetchAll(p, model.Genre, wrapShape)
				},
			},
			"playlist": r.byIDField(model.Playlist, func() *graphql.Object { return r.playlistType }),
			"allPlaylists": &graphql.Field{
				Type: graphql.NewList(r.playlistType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.fetchAll(p, model.Playlist, wrapShape)
				},
			},
		},
	})
}

// byIDField builds a fetch-by-surrogate-id root field for one schema.
func (r *Resolver) byIDField(schema *model.Schema, typ func() *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: typ(),
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			arena, err := arenaFrom(p.Context)
			if err != nil {
				return nil, err
			}
			id, _ := p.Args["id"].(string)
			e, err := arena.FetchByIdentity(p.Context, schema, id)
			if err != nil {
				return nil, err
			}
			return wrapShape(arena, e), nil
		},
	}
}

func (r *Resolver) fetchAll(p graphql.ResolveParams, schema *model.Schema, wrap func(*model.Arena, *model.Entity) any) (any, error) {
	arena, err := arenaFrom(p.Context)
	if err != nil {
		return nil, err
	}
	entities, err := arena.FetchAll(p.Context, schema)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(entities))
	for _, e := range entities {
		out = append(out, wrap(arena, e))
	}
	return out, nil
}
