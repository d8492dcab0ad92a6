package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdrprofuroboros/constellation/internal/graph"
)

func newTestArena(t *testing.T) (*Arena, *graph.MemoryStore) {
	t.Helper()
	store := graph.NewMemory(nil)
	reg := NewRegistry(store, nil)
	return reg.NewArena(), store
}

func mustUser(t *testing.T, arena *Arena, username string) *Entity {
	t.Helper()
	user, err := NewUser(username, "digest-"+username, username+"@x.test")
	require.NoError(t, err)
	arena.Adopt(user)
	require.NoError(t, arena.Persist(context.Background(), user))
	return user
}

func TestSchemaNew(t *testing.T) {
	t.Run("declared fields accepted", func(t *testing.T) {
		e, err := User.New(map[string]any{"username": "alice", "password": "x", "email": "a@x.test"})
		require.NoError(t, err)
		assert.Equal(t, "alice", e.GetString("username"))
		assert.Equal(t, "alice", e.Identity())
		assert.NotEmpty(t, e.ID())
	})

	t.Run("unrecognized key rejected", func(t *testing.T) {
		_, err := User.New(map[string]any{"username": "alice", "favorite_color": "blue"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "favorite_color", verr.Field)
	})

	t.Run("surrogate identity is the id", func(t *testing.T) {
		e, err := NewPlaylist("mix")
		require.NoError(t, err)
		assert.Equal(t, e.ID(), e.Identity())
	})
}

func TestFetchByIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		arena, _ := newTestArena(t)
		mustUser(t, arena, "alice")

		got, err := arena.FetchByIdentity(ctx, User, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.GetString("username"))
		assert.Equal(t, "alice@x.test", got.GetString("email"))
		assert.Equal(t, "digest-alice", got.GetString("password"))
	})

	t.Run("not found", func(t *testing.T) {
		arena, _ := newTestArena(t)
		_, err := arena.FetchByIdentity(ctx, User, "nobody")
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "User", nf.Label)
		assert.Equal(t, "nobody", nf.Key)
		assert.Contains(t, err.Error(), "nobody")
	})

	t.Run("inconsistency surfaced, not masked", func(t *testing.T) {
		arena, store := newTestArena(t)
		// two nodes with the same username but distinct store keys, planted
		// behind the domain layer's back
		require.NoError(t, store.CreateNode(ctx, &graph.Node{
			ID: "u1", Label: "User", Key: "u1", Props: map[string]any{"username": "twin"},
		}))
		require.NoError(t, store.CreateNode(ctx, &graph.Node{
			ID: "u2", Label: "User", Key: "u2", Props: map[string]any{"username": "twin"},
		}))

		_, err := arena.FetchByIdentity(ctx, User, "twin")
		var inc *InconsistencyError
		require.ErrorAs(t, err, &inc)
		assert.Equal(t, 2, inc.Matches)
	})

	t.Run("surrogate fetch by id", func(t *testing.T) {
		arena, _ := newTestArena(t)
		playlist, err := NewPlaylist("mix")
		require.NoError(t, err)
		arena.Adopt(playlist)
		require.NoError(t, arena.Persist(ctx, playlist))

		got, err := arena.FetchByIdentity(ctx, Playlist, playlist.ID())
		require.NoError(t, err)
		assert.Equal(t, "mix", got.GetString("name"))
	})

	t.Run("surrogate fetch checks label", func(t *testing.T) {
		arena, _ := newTestArena(t)
		playlist, err := NewPlaylist("mix")
		require.NoError(t, err)
		arena.Adopt(playlist)
		require.NoError(t, arena.Persist(ctx, playlist))

		_, err = arena.FetchByIdentity(ctx, Track, playlist.ID())
		var nf *NotFoundError
		assert.ErrorAs(t, err, &nf)
	})
}

func TestPersist(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate identity fails, first wins", func(t *testing.T) {
		arena, _ := newTestArena(t)
		mustUser(t, arena, "bob")

		second, err := NewUser("bob", "other-digest", "")
		require.NoError(t, err)
		arena.Adopt(second)

		err = arena.Persist(ctx, second)
		var dup *DuplicateIdentityError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "bob", dup.Key)

		all, err := arena.FetchAll(ctx, User)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "digest-bob", all[0].GetString("password"))
	})

	t.Run("replace on save", func(t *testing.T) {
		arena, _ := newTestArena(t)
		user := mustUser(t, arena, "alice")

		require.NoError(t, user.Set("email", "moved@x.test"))
		require.NoError(t, arena.Persist(ctx, user))

		fresh := arena.reg.NewArena()
		got, err := fresh.FetchByIdentity(ctx, User, "alice")
		require.NoError(t, err)
		assert.Equal(t, "moved@x.test", got.GetString("email"))
	})

	t.Run("set rejects undeclared field", func(t *testing.T) {
		arena, _ := newTestArena(t)
		user := mustUser(t, arena, "alice")
		assert.Error(t, user.Set("nickname", "al"))
	})
}

func TestFetchAll(t *testing.T) {
	ctx := context.Background()
	arena, _ := newTestArena(t)
	mustUser(t, arena, "alice")
	mustUser(t, arena, "bob")

	all, err := arena.FetchAll(ctx, User)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// each call re-issues the scan
	mustUser(t, arena, "carol")
	all, err = arena.FetchAll(ctx, User)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("lazy and idempotent", func(t *testing.T) {
		arena, _ := newTestArena(t)
		alice := mustUser(t, arena, "alice")
		bob := mustUser(t, arena, "bob")
		require.NoError(t, arena.Relate(ctx, alice, "friends", bob))

		first, err := alice.Resolve(ctx, "friends")
		require.NoError(t, err)
		require.Len(t, first, 1)
		assert.Equal(t, "bob", first[0].GetString("username"))

		second, err := alice.Resolve(ctx, "friends")
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Same(t, first[0], second[0])
	})

	t.Run("symmetric relationship visible from both ends", func(t *testing.T) {
		arena, _ := newTestArena(t)
		alice := mustUser(t, arena, "alice")
		bob := mustUser(t, arena, "bob")
		require.NoError(t, arena.Relate(ctx, alice, "friends", bob))

		bobFriends, err := bob.Resolve(ctx, "friends")
		require.NoError(t, err)
		require.Len(t, bobFriends, 1)
		assert.Equal(t, "alice", bobFriends[0].GetString("username"))
	})

	t.Run("symmetric reverse relate is a duplicate", func(t *testing.T) {
		arena, _ := newTestArena(t)
		alice := mustUser(t, arena, "alice")
		bob := mustUser(t, arena, "bob")
		require.NoError(t, arena.Relate(ctx, alice, "friends", bob))

		// canonical edge storage makes the pair collide regardless of which
		// side relates
		assert.ErrorIs(t, arena.Relate(ctx, bob, "friends", alice), graph.ErrDuplicateEdge)

		friends, err := alice.Resolve(ctx, "friends")
		require.NoError(t, err)
		assert.Len(t, friends, 1)
	})

	t.Run("cyclic traversal converges on arena handles", func(t *testing.T) {
		arena, _ := newTestArena(t)
		alice := mustUser(t, arena, "alice")
		bob := mustUser(t, arena, "bob")
		require.NoError(t, arena.Relate(ctx, alice, "friends", bob))

		friends, err := alice.Resolve(ctx, "friends")
		require.NoError(t, err)
		require.Len(t, friends, 1)

		back, err := friends[0].Resolve(ctx, "friends")
		require.NoError(t, err)
		require.Len(t, back, 1)
		assert.Same(t, alice, back[0], "friend-of-friend must be the same alice handle")
	})

	t.Run("undeclared relationship", func(t *testing.T) {
		arena, _ := newTestArena(t)
		alice := mustUser(t, arena, "alice")
		_, err := alice.Resolve(ctx, "enemies")
		assert.Error(t, err)
	})

	t.Run("relate invalidates memoized set", func(t *testing.T) {
		arena, _ := newTestArena(t)
		alice := mustUser(t, arena, "alice")
		bob := mustUser(t, arena, "bob")
		carol := mustUser(t, arena, "carol")

		require.NoError(t, arena.Relate(ctx, alice, "friends", bob))
		friends, err := alice.Resolve(ctx, "friends")
		require.NoError(t, err)
		require.Len(t, friends, 1)

		require.NoError(t, arena.Relate(ctx, alice, "friends", carol))
		friends, err = alice.Resolve(ctx, "friends")
		require.NoError(t, err)
		assert.Len(t, friends, 2)
	})

	t.Run("relate invalidates the other endpoint's memo", func(t *testing.T) {
		arena, _ := newTestArena(t)
		alice := mustUser(t, arena, "alice")
		bob := mustUser(t, arena, "bob")

		// memoize bob's empty friend set first
		friends, err := bob.Resolve(ctx, "friends")
		require.NoError(t, err)
		require.Empty(t, friends)

		require.NoError(t, arena.Relate(ctx, alice, "friends", bob))

		friends, err = bob.Resolve(ctx, "friends")
		require.NoError(t, err)
		require.Len(t, friends, 1)
		assert.Same(t, alice, friends[0])
	})

	t.Run("relate checks target type", func(t *testing.T) {
		arena, _ := newTestArena(t)
		alice := mustUser(t, arena, "alice")
		bob := mustUser(t, arena, "bob")
		err := arena.Relate(ctx, alice, "playlists", bob)
		assert.Error(t, err)
	})

	t.Run("duplicate edge rejected", func(t *testing.T) {
		arena, _ := newTestArena(t)
		alice := mustUser(t, arena, "alice")
		bob := mustUser(t, arena, "bob")
		require.NoError(t, arena.Relate(ctx, alice, "friends", bob))
		assert.ErrorIs(t, arena.Relate(ctx, alice, "friends", bob), graph.ErrDuplicateEdge)
	})
}

func TestIncomingRelate(t *testing.T) {
	// Relating through an Incoming-declared field stores the edge with the
	// declared direction, so the other side's Outgoing view agrees.
	ctx := context.Background()
	arena, _ := newTestArena(t)

	playlist, err := NewPlaylist("mix")
	require.NoError(t, err)
	arena.Adopt(playlist)
	require.NoError(t, arena.Persist(ctx, playlist))

	alice := mustUser(t, arena, "alice")
	require.NoError(t, arena.Relate(ctx, playlist, "creators", alice))

	playlists, err := alice.Resolve(ctx, "playlists")
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	assert.Equal(t, "mix", playlists[0].GetString("name"))
}
