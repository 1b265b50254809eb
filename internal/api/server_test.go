package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jnalv414/my-second-brain/internal/api"
	"github.com/jnalv414/my-second-brain/internal/platform"
	"github.com/jnalv414/my-second-brain/pkg/core"
	"github.com/jnalv414/my-second-brain/pkg/vault"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setupServer(t *testing.T, opts ...platform.Option) (*httptest.Server, *vault.Service) {
	t.Helper()

	opts = append([]platform.Option{platform.WithWatchDebounce(10 * time.Millisecond)}, opts...)
	svc, err := platform.New(t.TempDir(), opts...)
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewServer(api.Config{Service: svc, Version: "test"}).Handler())
	t.Cleanup(srv.Close)
	return srv, svc
}

func seed(t *testing.T, svc *vault.Service) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.WriteNote(ctx, "note1.md", "This is note one. See [[note2]].", map[string]any{"title": "Note One"})
	require.NoError(t, err)
	_, err = svc.WriteNote(ctx, "note2.md", "Links to [[note1]] and [[project1]].", map[string]any{"title": "Note Two"})
	require.NoError(t, err)
	_, err = svc.WriteNote(ctx, "Projects/project1.md", "Refers to [[note1#Heading|alias link]].", map[string]any{"title": "Project One"})
	require.NoError(t, err)
}

func do(t *testing.T, method, url, body string, header http.Header) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestServer_Health(t *testing.T) {
	srv, svc := setupServer(t)

	resp := do(t, "GET", srv.URL+"/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(api.RequestIDHeader))

	var health map[string]string
	env := decode(t, resp, &health)
	assert.True(t, env.Success)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "test", health["version"])
	assert.Equal(t, svc.Root(), health["vault"])
}

func TestServer_RequestIDIsEchoed(t *testing.T) {
	srv, _ := setupServer(t)

	resp := do(t, "GET", srv.URL+"/api/v1/health", "", http.Header{api.RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", resp.Header.Get(api.RequestIDHeader))
}

func TestServer_NoteLifecycle(t *testing.T) {
	srv, _ := setupServer(t)
	url := srv.URL + "/api/v1/notes/Projects/Big%20Idea.md"

	resp := do(t, "PUT", url, `{"content":"Body text.","fields":{"title":"Big Idea","tags":["idea"]}}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var written core.Note
	decode(t, resp, &written)
	assert.Equal(t, "Projects/Big Idea.md", written.Path)
	assert.Equal(t, "Big Idea", written.Title)
	assert.Equal(t, []string{"idea"}, written.Metadata.Tags)

	resp = do(t, "GET", url, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)
	var read core.Note
	decode(t, resp, &read)
	assert.Equal(t, "Body text.", read.Content)

	t.Run("Not Modified", func(t *testing.T) {
		resp := do(t, "GET", url, "", http.Header{"If-None-Match": {etag}})
		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	})

	t.Run("Listed", func(t *testing.T) {
		var paths []string
		decode(t, do(t, "GET", srv.URL+"/api/v1/notes?folder=Projects", "", nil), &paths)
		assert.Equal(t, []string{"Projects/Big Idea.md"}, paths)
	})

	resp = do(t, "DELETE", url, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.StatusNotFound, do(t, "GET", url, "", nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, "DELETE", url, "", nil).StatusCode)
}

func TestServer_Errors(t *testing.T) {
	srv, _ := setupServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"Traversal Folder", "GET", "/api/v1/notes?folder=../outside", "", http.StatusBadRequest},
		{"Missing Query", "GET", "/api/v1/search", "", http.StatusBadRequest},
		{"Bad Limit", "GET", "/api/v1/search?q=x&limit=abc", "", http.StatusBadRequest},
		{"Bad Body", "PUT", "/api/v1/notes/a.md", "{not json", http.StatusBadRequest},
		{"Missing Note", "GET", "/api/v1/notes/missing.md", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			env := decode(t, resp, nil)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestServer_Queries(t *testing.T) {
	srv, svc := setupServer(t)
	seed(t, svc)

	t.Run("Search", func(t *testing.T) {
		var results []struct {
			Note  core.Note `json:"note"`
			Score float64   `json:"score"`
		}
		decode(t, do(t, "GET", srv.URL+"/api/v1/search?q=note+one", "", nil), &results)
		require.NotEmpty(t, results)
		assert.Equal(t, "note1.md", results[0].Note.Path)
	})

	t.Run("Backlinks", func(t *testing.T) {
		var refs []core.NoteRef
		decode(t, do(t, "GET", srv.URL+"/api/v1/backlinks/note1", "", nil), &refs)
		assert.ElementsMatch(t, []core.NoteRef{
			{Name: "Note Two", Path: "note2.md"},
			{Name: "Project One", Path: "Projects/project1.md"},
		}, refs)
	})

	t.Run("Outgoing", func(t *testing.T) {
		var refs []core.NoteRef
		decode(t, do(t, "GET", srv.URL+"/api/v1/outgoing/note2.md", "", nil), &refs)
		assert.Equal(t, []core.NoteRef{
			{Name: "note1", Path: "note1.md"},
			{Name: "project1", Path: "Projects/project1.md"},
		}, refs)
	})

	t.Run("Extract", func(t *testing.T) {
		var extracted []map[string]string
		resp := do(t, "POST", srv.URL+"/api/v1/links/extract", `{"content":"[[A#H|x]] and [[B]]"}`, nil)
		decode(t, resp, &extracted)
		require.Len(t, extracted, 2)
		assert.Equal(t, "A", extracted[0]["target"])
		assert.Equal(t, "B", extracted[1]["target"])
	})

	t.Run("Graph", func(t *testing.T) {
		var graph map[string]struct {
			Path      string   `json:"path"`
			Backlinks []string `json:"backlinks"`
		}
		decode(t, do(t, "GET", srv.URL+"/api/v1/graph", "", nil), &graph)
		require.Len(t, graph, 3)
		assert.Equal(t, "Projects/project1.md", graph["project1"].Path)
		assert.ElementsMatch(t, []string{"note2", "project1"}, graph["note1"].Backlinks)
	})

	t.Run("State", func(t *testing.T) {
		var state map[string]any
		decode(t, do(t, "GET", srv.URL+"/api/v1/state", "", nil), &state)
		assert.Equal(t, svc.Root(), state["root"])
	})
}

func TestServer_Events(t *testing.T) {
	srv, svc := setupServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, err = svc.WriteNote(context.Background(), "fresh.md", "hello", nil)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var event core.Event
		require.NoError(t, conn.ReadJSON(&event))
		if event.Path == "fresh.md" {
			assert.Contains(t, []core.EventType{core.EventCreate, core.EventModify}, event.Type)
			return
		}
	}
}

func TestServer_EventsWithoutWatcher(t *testing.T) {
	srv, _ := setupServer(t, platform.WithWatcher(false))

	resp := do(t, "GET", srv.URL+"/api/v1/events", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
