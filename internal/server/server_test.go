package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdrprofuroboros/constellation/internal/gql"
	"github.com/mrdrprofuroboros/constellation/internal/graph"
	"github.com/mrdrprofuroboros/constellation/internal/model"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := model.NewRegistry(graph.NewMemory(nil), nil)
	resolver, err := gql.New(reg, nil, 0)
	require.NoError(t, err)
	ts := httptest.NewServer(New(resolver, reg, nil).Router())
	t.Cleanup(ts.Close)
	return ts
}

func postGraphQL(t *testing.T, ts *httptest.Server, query string) map[string]any {
	t.Helper()
	body, err := json.Marshal(map[string]string{"query": query})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/graphql", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestNotFoundJSON(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/no/such/route")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["message"], "not found")
}

func TestGraphQLEndToEnd(t *testing.T) {
	ts := newTestServer(t)

	created := postGraphQL(t, ts, `
		mutation {
			createUser(username: "alice", password: "pw", email: "a@x.test") {
				ok
				user { username }
			}
		}
	`)
	require.Nil(t, created["errors"])
	payload := created["data"].(map[string]any)["createUser"].(map[string]any)
	assert.Equal(t, true, payload["ok"])
	assert.Equal(t, "alice", payload["user"].(map[string]any)["username"])

	queried := postGraphQL(t, ts, `{ user(username: "alice") { username email } }`)
	require.Nil(t, queried["errors"])
	user := queried["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "a@x.test", user["email"])
}

func TestGraphQLErrorShape(t *testing.T) {
	ts := newTestServer(t)

	out := postGraphQL(t, ts, `{ user(username: "nobody") { username } }`)
	errs, ok := out["errors"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, errs)
	msg := errs[0].(map[string]any)["message"].(string)
	assert.Contains(t, msg, "has not been found")
}

func TestGraphiQLServed(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/graphql", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/html")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/graphql", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.test")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
