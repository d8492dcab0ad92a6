package gql

import (
	"github.com/graphql-go/graphql"

	"github.com/mrdrprofuroboros/constellation/internal/model"
)

// userShape projects a User entity at the query surface. Scalars are copied
// out when the shape is built; the underlying entity handle is fetched
// lazily on first relationship access, mirroring how the rest of the graph
// is never touched unless a field asks for it. The password digest is
// deliberately absent.
type userShape struct {
	arena    *model.Arena
	username string
	email    string

	entity *model.Entity
}

// newUserShape copies the entity's public scalars into a shape. The entity
// handle itself is not retained: relationship access refetches by username,
// so a user that has since become unresolvable fails only the fields that
// actually need it.
func newUserShape(arena *model.Arena, e *model.Entity) *userShape {
	return &userShape{
		arena:    arena,
		username: e.GetString("username"),
		email:    e.GetString("email"),
	}
}

// resolveEntity returns the shape's backing entity, fetching it by identity
// when the shape was built from bare scalars.
func (u *userShape) resolveEntity(p graphql.ResolveParams) (*model.Entity, error) {
	if u.entity != nil {
		return u.entity, nil
	}
	e, err := u.arena.FetchByIdentity(p.Context, model.User, u.username)
	if err != nil {
		return nil, err
	}
	u.entity = e
	return e, nil
}

// entityShape wraps a surrogate-identified entity for the query surface.
type entityShape struct {
	arena  *model.Arena
	entity *model.Entity
}

func (s *entityShape) str(field string) any {
	if v := s.entity.Get(field); v != nil {
		return s.entity.GetString(field)
	}
	return nil
}

func (s *entityShape) boolean(field string) bool {
	return s.entity.GetBool(field)
}

func (s *entityShape) integer(field string) any {
	if v, ok := s.entity.GetInt(field); ok {
		return v
	}
	return nil
}

// relResolver builds a field resolver that lazily expands one relationship
// of an entityShape source and re-wraps each related entity.
func (r *Resolver) relResolver(relField string, wrap func(*model.Arena, *model.Entity) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if err := r.guardDepth(p); err != nil {
			return nil, err
		}
		shape, ok := p.Source.(*entityShape)
		if !ok {
			return nil, nil
		}
		related, err := shape.entity.Resolve(p.Context, relField)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(related))
		for _, e := range related {
			out = append(out, wrap(shape.arena, e))
		}
		return out, nil
	}
}

// scalarField reads a string scalar off an entityShape source.
func scalarField(field string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if shape, ok := p.Source.(*entityShape); ok {
			return shape.str(field), nil
		}
		return nil, nil
	}
}

func boolField(field string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if shape, ok := p.Source.(*entityShape); ok {
			return shape.boolean(field), nil
		}
		return nil, nil
	}
}

func intField(field string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if shape, ok := p.Source.(*entityShape); ok {
			return shape.integer(field), nil
		}
		return nil, nil
	}
}

func idResolver(p graphql.ResolveParams) (any, error) {
	if shape, ok := p.Source.(*entityShape); ok {
		return shape.entity.ID(), nil
	}
	return nil, nil
}

func wrapShape(arena *model.Arena, e *model.Entity) any {
	return &entityShape{arena: arena, entity: e}
}

func wrapUser(arena *model.Arena, e *model.Entity) any {
	return newUserShape(arena, e)
}

// buildTypes constructs the shape objects. Field sets are thunked because
// several shapes reference each other and themselves.
func (r *Resolver) buildTypes() {
	r.userType = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"username": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (any, error) {
						return p.Source.(*userShape).username, nil
					},
				},
				"email": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (any, error) {
						u := p.Source.(*userShape)
						if u.email == "" {
							return nil, nil
						}
						return u.email, nil
					},
				},
				"friends":   r.userRelField("friends", graphql.NewList(r.userType), wrapUser),
				"playlists": r.userRelField("playlists", graphql.NewList(r.playlistType), wrapShape),
				"artists":   r.userRelField("artists", graphql.NewList(r.artistType), wrapShape),
				"releases":  r.userRelField("releases", graphql.NewList(r.releaseType), wrapShape),
			}
		}),
	})

	r.playlistType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Playlist",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":     &graphql.Field{Type: graphql.ID, Resolve: idResolver},
				"name":   &graphql.Field{Type: graphql.String, Resolve: scalarField("name")},
				"tracks": &graphql.Field{Type: graphql.NewList(r.trackType), Resolve: r.relResolver("tracks", wrapShape)},
			}
		}),
	})

	r.artistType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Artist",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":         &graphql.Field{Type: graphql.ID, Resolve: idResolver},
				"name":       &graphql.Field{Type: graphql.String, Resolve: scalarField("name")},
				"born":       &graphql.Field{Type: graphql.String, Resolve: scalarField("born")},
				"died":       &graphql.Field{Type: graphql.String, Resolve: scalarField("died")},
				"performer":  &graphql.Field{Type: graphql.Boolean, Resolve: boolField("performer")},
				"composer":   &graphql.Field{Type: graphql.Boolean, Resolve: boolField("composer")},
				"producer":   &graphql.Field{Type: graphql.Boolean, Resolve: boolField("producer")},
				"collective": &graphql.Field{Type: graphql.Boolean, Resolve: boolField("collective")},
				"relatedWith": &graphql.Field{
					Type:    graphql.NewList(r.artistType),
					Resolve: r.relResolver("relatedWith", wrapShape),
				},
				"compositions": &graphql.Field{
					Type:    graphql.NewList(r.compositionType),
					Resolve: r.relResolver("compositions", wrapShape),
				},
				"tracks": &graphql.Field{
					Type:    graphql.NewList(r.trackType),
					Resolve: r.relResolver("tracks", wrapShape),
				},
				"releaseGroups": &graphql.Field{
					Type:    graphql.NewList(r.releaseGroupType),
					Resolve: r.relResolver("releaseGroups", wrapShape),
				},
			}
		}),
	})

	r.genreType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Genre",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":   &graphql.Field{Type: graphql.ID, Resolve: idResolver},
				"name": &graphql.Field{Type: graphql.String, Resolve: scalarField("name")},
				"ancestors": &graphql.Field{
					Type:    graphql.NewList(r.genreType),
					Resolve: r.relResolver("ancestors", wrapShape),
				},
				"descendants": &graphql.Field{
					Type:    graphql.NewList(r.genreType),
					Resolve: r.relResolver("descendants", wrapShape),
				},
				"epochs": &graphql.Field{
					Type:    graphql.NewList(r.epochType),
					Resolve: r.relResolver("epochs", wrapShape),
				},
			}
		}),
	})

	r.epochType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Epoch",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":      &graphql.Field{Type: graphql.ID, Resolve: idResolver},
				"name":    &graphql.Field{Type: graphql.String, Resolve: scalarField("name")},
				"started": &graphql.Field{Type: graphql.String, Resolve: scalarField("started")},
				"ended":   &graphql.Field{Type: graphql.String, Resolve: scalarField("ended")},
			}
		}),
	})

	r.trackType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Track",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":   &graphql.Field{Type: graphql.ID, Resolve: idResolver},
				"name": &graphql.Field{Type: graphql.String, Resolve: scalarField("name")},
				"year": &graphql.Field{Type: graphql.Int, Resolve: intField("year")},
			}
		}),
	})

	r.compositionType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Composition",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":       &graphql.Field{Type: graphql.ID, Resolve: idResolver},
				"name":     &graphql.Field{Type: graphql.String, Resolve: scalarField("name")},
				"started":  &graphql.Field{Type: graphql.String, Resolve: scalarField("started")},
				"finished": &graphql.Field{Type: graphql.String, Resolve: scalarField("finished")},
				"tracks": &graphql.Field{
					Type:    graphql.NewList(r.trackType),
					Resolve: r.relResolver("tracks", wrapShape),
				},
			}
		}),
	})

	r.releaseType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Release",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          &graphql.Field{Type: graphql.ID, Resolve: idResolver},
				"name":        &graphql.Field{Type: graphql.String, Resolve: scalarField("name")},
				"date":        &graphql.Field{Type: graphql.String, Resolve: scalarField("date")},
				"label":       &graphql.Field{Type: graphql.String, Resolve: scalarField("label")},
				"album":       &graphql.Field{Type: graphql.Boolean, Resolve: boolField("album")},
				"ep":          &graphql.Field{Type: graphql.Boolean, Resolve: boolField("ep")},
				"single":      &graphql.Field{Type: graphql.Boolean, Resolve: boolField("single")},
				"live":        &graphql.Field{Type: graphql.Boolean, Resolve: boolField("live")},
				"compilation": &graphql.Field{Type: graphql.Boolean, Resolve: boolField("compilation")},
				"tracks": &graphql.Field{
					Type:    graphql.NewList(r.trackType),
					Resolve: r.relResolver("tracks", wrapShape),
				},
				"genres": &graphql.Field{
					Type:    graphql.NewList(r.genreType),
					Resolve: r.relResolver("genres", wrapShape),
				},
			}
		}),
	})

	r.releaseGroupType = graphql.NewObject(graphql.ObjectConfig{
		Name: "ReleaseGroup",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":   &graphql.Field{Type: graphql.ID, Resolve: idResolver},
				"name": &graphql.Field{Type: graphql.String, Resolve: scalarField("name")},
				"date": &graphql.Field{Type: graphql.String, Resolve: scalarField("date")},
				"releases": &graphql.Field{
					Type:    graphql.NewList(r.releaseType),
					Resolve: r.relResolver("releases", wrapShape),
				},
			}
		}),
	})
}

// userRelField resolves a relationship off a userShape source, fetching the
// backing entity first when needed.
func (r *Resolver) userRelField(relField string, typ graphql.Output, wrap func(*model.Arena, *model.Entity) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if err := r.guardDepth(p); err != nil {
				return nil, err
			}
			shape, ok := p.Source.(*userShape)
			if !ok {
				return nil, nil
			}
			entity, err := shape.resolveEntity(p)
			if err != nil {
				return nil, err
			}
			related, err := entity.Resolve(p.Context, relField)
			if err != nil {
				return nil, err
			}
			out := make([]any, 0, len(related))
			for _, e := range related {
				out = append(out, wrap(shape.arena, e))
			}
			return out, nil
		},
	}
}
