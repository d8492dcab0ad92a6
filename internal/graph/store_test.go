package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The memory and SQLite backends share one behavioral contract; both run
// through the same suite. The Neo4j backend needs a live server and is
// exercised in deployment, not here.
func storeBackends(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemory(nil)
		},
		"sqlite": func(t *testing.T) Store {
			store, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			t.Cleanup(func() { store.Close(context.Background()) })
			return store
		},
	}
}

func testNode(id, label, key string, props map[string]any) *Node {
	if props == nil {
		props = map[string]any{}
	}
	return &Node{ID: id, Label: label, Key: key, Props: props}
}

func TestStoreContract(t *testing.T) {
	for name, open := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("create and get", func(t *testing.T) {
				store := open(t)
				node := testNode("u1", "User", "alice", map[string]any{"username": "alice"})
				require.NoError(t, store.CreateNode(ctx, node))

				got, err := store.GetNode(ctx, "u1")
				require.NoError(t, err)
				assert.Equal(t, "User", got.Label)
				assert.Equal(t, "alice", got.Key)
				assert.Equal(t, "alice", got.Props["username"])
			})

			t.Run("get missing", func(t *testing.T) {
				store := open(t)
				_, err := store.GetNode(ctx, "nope")
				assert.ErrorIs(t, err, ErrNodeMissing)
			})

			t.Run("duplicate identity rejected", func(t *testing.T) {
				store := open(t)
				require.NoError(t, store.CreateNode(ctx, testNode("u1", "User", "bob", nil)))

				err := store.CreateNode(ctx, testNode("u2", "User", "bob", nil))
				assert.ErrorIs(t, err, ErrDuplicateIdentity)

				all, err := store.MatchAll(ctx, "User")
				require.NoError(t, err)
				assert.Len(t, all, 1)
			})

			t.Run("same key different label allowed", func(t *testing.T) {
				store := open(t)
				require.NoError(t, store.CreateNode(ctx, testNode("u1", "User", "x", nil)))
				require.NoError(t, store.CreateNode(ctx, testNode("g1", "Genre", "x", nil)))
			})

			t.Run("match by property", func(t *testing.T) {
				store := open(t)
				require.NoError(t, store.CreateNode(ctx, testNode("u1", "User", "alice",
					map[string]any{"username": "alice", "email": "a@x.test"})))
				require.NoError(t, store.CreateNode(ctx, testNode("u2", "User", "bob",
					map[string]any{"username": "bob"})))

				matches, err := store.MatchNodes(ctx, "User", "username", "alice")
				require.NoError(t, err)
				require.Len(t, matches, 1)
				assert.Equal(t, "u1", matches[0].ID)

				matches, err = store.MatchNodes(ctx, "User", "username", "nobody")
				require.NoError(t, err)
				assert.Empty(t, matches)
			})

			t.Run("push replaces properties", func(t *testing.T) {
				store := open(t)
				node := testNode("u1", "User", "alice", map[string]any{"username": "alice", "email": "old@x.test"})
				require.NoError(t, store.CreateNode(ctx, node))

				node.Props = map[string]any{"username": "alice", "email": "new@x.test"}
				require.NoError(t, store.PushNode(ctx, node))

				got, err := store.GetNode(ctx, "u1")
				require.NoError(t, err)
				assert.Equal(t, "new@x.test", got.Props["email"])
			})

			t.Run("push missing node", func(t *testing.T) {
				store := open(t)
				err := store.PushNode(ctx, testNode("ghost", "User", "ghost", nil))
				assert.ErrorIs(t, err, ErrNodeMissing)
			})

			t.Run("edges", func(t *testing.T) {
				store := open(t)
				require.NoError(t, store.CreateNode(ctx, testNode("u1", "User", "alice", nil)))
				require.NoError(t, store.CreateNode(ctx, testNode("p1", "Playlist", "p1", nil)))

				edge := &Edge{Source: "u1", Target: "p1", Label: "CREATED"}
				require.NoError(t, store.CreateEdge(ctx, edge))

				// same ordered pair, same label: rejected
				assert.ErrorIs(t, store.CreateEdge(ctx, edge), ErrDuplicateEdge)

				// same ordered pair, different label: fine
				require.NoError(t, store.CreateEdge(ctx, &Edge{Source: "u1", Target: "p1", Label: "LISTENS"}))
			})

			t.Run("edge requires endpoints", func(t *testing.T) {
				store := open(t)
				require.NoError(t, store.CreateNode(ctx, testNode("u1", "User", "alice", nil)))
				err := store.CreateEdge(ctx, &Edge{Source: "u1", Target: "ghost", Label: "FRIENDS"})
				assert.Error(t, err)
			})

			t.Run("traverse directions", func(t *testing.T) {
				store := open(t)
				require.NoError(t, store.CreateNode(ctx, testNode("u1", "User", "alice", map[string]any{"username": "alice"})))
				require.NoError(t, store.CreateNode(ctx, testNode("u2", "User", "bob", map[string]any{"username": "bob"})))
				require.NoError(t, store.CreateNode(ctx, testNode("p1", "Playlist", "p1", map[string]any{"name": "mix"})))
				require.NoError(t, store.CreateEdge(ctx, &Edge{Source: "u1", Target: "u2", Label: "FRIENDS"}))
				require.NoError(t, store.CreateEdge(ctx, &Edge{Source: "u1", Target: "p1", Label: "CREATED"}))

				out, err := store.Traverse(ctx, "u1", "CREATED", Outgoing, "Playlist")
				require.NoError(t, err)
				require.Len(t, out, 1)
				assert.Equal(t, "p1", out[0].ID)

				// playlist side: incoming CREATED finds the creator
				in, err := store.Traverse(ctx, "p1", "CREATED", Incoming, "User")
				require.NoError(t, err)
				require.Len(t, in, 1)
				assert.Equal(t, "u1", in[0].ID)

				// symmetric traversal sees the edge from both ends
				friends, err := store.Traverse(ctx, "u2", "FRIENDS", Any, "User")
				require.NoError(t, err)
				require.Len(t, friends, 1)
				assert.Equal(t, "u1", friends[0].ID)

				friends, err = store.Traverse(ctx, "u1", "FRIENDS", Any, "User")
				require.NoError(t, err)
				require.Len(t, friends, 1)
				assert.Equal(t, "u2", friends[0].ID)

				// label filter: CREATED edge does not leak into FRIENDS
				none, err := store.Traverse(ctx, "u1", "FRIENDS", Any, "Playlist")
				require.NoError(t, err)
				assert.Empty(t, none)
			})

			t.Run("traverse tolerates self cycle", func(t *testing.T) {
				store := open(t)
				require.NoError(t, store.CreateNode(ctx, testNode("g1", "Genre", "g1", map[string]any{"name": "jazz"})))
				require.NoError(t, store.CreateNode(ctx, testNode("g2", "Genre", "g2", map[string]any{"name": "fusion"})))
				require.NoError(t, store.CreateEdge(ctx, &Edge{Source: "g1", Target: "g2", Label: "INFLUENCED_ON"}))
				require.NoError(t, store.CreateEdge(ctx, &Edge{Source: "g2", Target: "g1", Label: "INFLUENCED_ON"}))

				desc, err := store.Traverse(ctx, "g1", "INFLUENCED_ON", Outgoing, "Genre")
				require.NoError(t, err)
				require.Len(t, desc, 1)
				assert.Equal(t, "g2", desc[0].ID)
			})
		})
	}
}

func TestTraverseSkipsDanglingTarget(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(nil)

	require.NoError(t, store.CreateNode(ctx, testNode("u1", "User", "alice", nil)))
	require.NoError(t, store.CreateNode(ctx, testNode("u2", "User", "bob", nil)))
	require.NoError(t, store.CreateNode(ctx, testNode("u3", "User", "carol", nil)))
	require.NoError(t, store.CreateEdge(ctx, &Edge{Source: "u1", Target: "u2", Label: "FRIENDS"}))
	require.NoError(t, store.CreateEdge(ctx, &Edge{Source: "u1", Target: "u3", Label: "FRIENDS"}))

	store.RemoveNode("u2")

	friends, err := store.Traverse(ctx, "u1", "FRIENDS", Any, "User")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "u3", friends[0].ID)
}
