package gql

import (
	"errors"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/mrdrprofuroboros/constellation/internal/model"
)

// createUserPayload carries a mutation outcome. Duplicate identity is a
// business failure, not a transport error: ok is false and the message is
// in error, with the request itself still succeeding.
type createUserPayload struct {
	ok     bool
	errMsg string
	user   *userShape
}

type payloadShape struct {
	ok       bool
	errMsg   string
	playlist *entityShape
}

// mutationType assembles the root mutation object.
func (r *Resolver) mutationType() *graphql.Object {
	createUserType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CreateUserPayload",
		Fields: graphql.Fields{
			"ok": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*createUserPayload).ok, nil
				},
			},
			"error": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if msg := p.Source.(*createUserPayload).errMsg; msg != "" {
						return msg, nil
					}
					return nil, nil
				},
			},
			"user": &graphql.Field{
				Type: r.userType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if u := p.Source.(*createUserPayload).user; u != nil {
						return u, nil
					}
					return nil, nil
				},
			},
		},
	})

	okPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OkPayload",
		Fields: graphql.Fields{
			"ok": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*payloadShape).ok, nil
				},
			},
			"error": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if msg := p.Source.(*payloadShape).errMsg; msg != "" {
						return msg, nil
					}
					return nil, nil
				},
			},
		},
	})

	createPlaylistType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CreatePlaylistPayload",
		Fields: graphql.Fields{
			"ok": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*payloadShape).ok, nil
				},
			},
			"error": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if msg := p.Source.(*payloadShape).errMsg; msg != "" {
						return msg, nil
					}
					return nil, nil
				},
			},
			"playlist": &graphql.Field{
				Type: r.playlistType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if pl := p.Source.(*payloadShape).playlist; pl != nil {
						return pl, nil
					}
					return nil, nil
				},
			},
		},
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: createUserType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.createUser,
			},
			"addFriend": &graphql.Field{
				Type: okPayloadType,
				Args: graphql.FieldConfigArgument{
					"username":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"friendUsername": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.addFriend,
			},
			"createPlaylist": &graphql.Field{
				Type: createPlaylistType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.createPlaylist,
			},
			"addTrack": &graphql.Field{
				Type: okPayloadType,
				Args: graphql.FieldConfigArgument{
					"playlistId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"trackId":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.addTrack,
			},
		},
	})
}

// createUser hashes the password and persists a new User. The store's
// uniqueness constraint is the success/failure boundary; there is no
// check-then-write.
func (r *Resolver) createUser(p graphql.ResolveParams) (any, error) {
	arena, err := arenaFrom(p.Context)
	if err != nil {
		return nil, err
	}

	username, _ := p.Args["username"].(string)
	password, _ := p.Args["password"].(string)
	email, _ := p.Args["email"].(string)

	digest, err := model.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := model.NewUser(username, digest, email)
	if err != nil {
		return nil, err
	}
	arena.Adopt(user)

	if err := arena.Persist(p.Context, user); err != nil {
		var dup *model.DuplicateIdentityError
		if errors.As(err, &dup) {
			r.log.Info("duplicate user rejected", zap.String("username", username))
			return &createUserPayload{ok: false, errMsg: dup.Error()}, nil
		}
		return nil, err
	}

	r.log.Info("user created", zap.String("username", username))
	return &createUserPayload{ok: true, user: newUserShape(arena, user)}, nil
}

// addFriend creates a FRIENDS edge between two existing users.
func (r *Resolver) addFriend(p graphql.ResolveParams) (any, error) {
	arena, err := arenaFrom(p.Context)
	if err != nil {
		return nil, err
	}

	username, _ := p.Args["username"].(string)
	friendUsername, _ := p.Args["friendUsername"].(string)

	user, err := arena.FetchByIdentity(p.Context, model.User, username)
	if err != nil {
		return nil, err
	}
	friend, err := arena.FetchByIdentity(p.Context, model.User, friendUsername)
	if err != nil {
		return nil, err
	}

	if err := arena.Relate(p.Context, user, "friends", friend); err != nil {
		return &payloadShape{ok: false, errMsg: err.Error()}, nil
	}
	return &payloadShape{ok: true}, nil
}

// createPlaylist persists a Playlist and a CREATED edge from its owner.
func (r *Resolver) createPlaylist(p graphql.ResolveParams) (any, error) {
	arena, err := arenaFrom(p.Context)
	if err != nil {
		return nil, err
	}

	username, _ := p.Args["username"].(string)
	name, _ := p.Args["name"].(string)

	user, err := arena.FetchByIdentity(p.Context, model.User, username)
	if err != nil {
		return nil, err
	}

	playlist, err := model.NewPlaylist(name)
	if err != nil {
		return nil, err
	}
	arena.Adopt(playlist)

	if err := arena.Persist(p.Context, playlist); err != nil {
		return nil, err
	}
	if err := arena.Relate(p.Context, user, "playlists", playlist); err != nil {
		// The node is already persisted; surface the failed edge as a
		// business failure so the client sees the orphan rather than a
		// transport error.
		r.log.Warn("playlist created without owner edge",
			zap.String("playlist", playlist.ID()),
			zap.String("username", username),
			zap.Error(err))
		return &payloadShape{ok: false, errMsg: err.Error()}, nil
	}

	return &payloadShape{ok: true, playlist: &entityShape{arena: arena, entity: playlist}}, nil
}

// addTrack creates an INCLUDES edge from a playlist to a track.
func (r *Resolver) addTrack(p graphql.ResolveParams) (any, error) {
	arena, err := arenaFrom(p.Context)
	if err != nil {
		return nil, err
	}

	playlistID, _ := p.Args["playlistId"].(string)
	trackID, _ := p.Args["trackId"].(string)

	playlist, err := arena.FetchByIdentity(p.Context, model.Playlist, playlistID)
	if err != nil {
		return nil, err
	}
	track, err := arena.FetchByIdentity(p.Context, model.Track, trackID)
	if err != nil {
		return nil, err
	}

	if err := arena.Relate(p.Context, playlist, "tracks", track); err != nil {
		return &payloadShape{ok: false, errMsg: err.Error()}, nil
	}
	return &payloadShape{ok: true}, nil
}
