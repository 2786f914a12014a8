package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devfolio-api/internal/domain/entity"
)

type recorded struct {
	method string
	path   string
	body   []byte
}

type fakeES struct {
	mu       sync.Mutex
	requests []recorded
	handle   func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeES) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newIndex(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*ProjectIndex, *fakeES) {
	t.Helper()
	f := &fakeES{handle: handle}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recorded{method: r.Method, path: r.URL.Path, body: body})
		f.mu.Unlock()
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		f.handle(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewProjectIndex(es, "projects"), f
}

func TestProjectIndex_Index(t *testing.T) {
	idx, f := newIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})
	desc := "portfolio site"
	p := &entity.Project{ID: "p1", OwnerID: "u1", Name: "Folio", Tech: "go", Description: &desc, CreatedAt: time.Now(), UpdatedAt: time.Now()}

	require.NoError(t, idx.Index(context.Background(), p))

	req := f.last()
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/projects/_doc/p1", req.path)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(req.body, &doc))
	assert.Equal(t, "u1", doc["owner_id"])
	assert.Equal(t, "portfolio site", doc["description"])
	assert.NotContains(t, doc, "status")
}

func TestProjectIndex_Search(t *testing.T) {
	idx, f := newIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"p2"},{"_id":"p1"}]}}`))
	})

	ids, err := idx.Search(context.Background(), "u1", "folio", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids)

	req := f.last()
	assert.Equal(t, "/projects/_search", req.path)
	var q struct {
		Size  int `json:"size"`
		Query struct {
			Bool struct {
				Filter struct {
					Term map[string]string `json:"term"`
				} `json:"filter"`
			} `json:"bool"`
		} `json:"query"`
	}
	require.NoError(t, json.Unmarshal(req.body, &q))
	assert.Equal(t, 5, q.Size)
	assert.Equal(t, "u1", q.Query.Bool.Filter.Term["owner_id"])
}

func TestProjectIndex_SearchErrorStatus(t *testing.T) {
	idx, _ := newIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"unavailable"}`))
	})

	_, err := idx.Search(context.Background(), "u1", "folio", 5)
	assert.Error(t, err)
}

func TestProjectIndex_DeleteMissingIsNotAnError(t *testing.T) {
	idx, f := newIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})

	require.NoError(t, idx.Delete(context.Background(), "gone"))
	assert.Equal(t, http.MethodDelete, f.last().method)
	assert.Equal(t, "/projects/_doc/gone", f.last().path)
}

func TestProjectIndex_UsesConfiguredIndexName(t *testing.T) {
	idx, f := newIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[]}}`))
	})
	idx.IndexName = "devfolio-projects"

	require.NoError(t, idx.Index(context.Background(), &entity.Project{ID: "p9", OwnerID: "u1", Name: "n", Tech: "t"}))
	assert.Equal(t, "/devfolio-projects/_doc/p9", f.last().path)

	require.NoError(t, idx.Delete(context.Background(), "p9"))
	assert.Equal(t, "/devfolio-projects/_doc/p9", f.last().path)

	_, err := idx.Search(context.Background(), "u1", "n", 5)
	require.NoError(t, err)
	assert.Equal(t, "/devfolio-projects/_search", f.last().path)
}

func TestProjectIndex_EnsureIndex(t *testing.T) {
	exists := false
	idx, f := newIndex(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead && exists:
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		}
	})

	require.NoError(t, idx.EnsureIndex(context.Background()))
	create := f.last()
	assert.Equal(t, http.MethodPut, create.method)
	assert.Equal(t, "/projects", create.path)
	assert.Contains(t, string(create.body), `"owner_id":    {"type": "keyword"}`)

	exists = true
	n := len(f.requests)
	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Len(t, f.requests, n+1)
}
