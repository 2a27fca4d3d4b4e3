package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/williamjxj/images-hub/internal/hub"
)

type stubSearcher struct {
	provider hub.Provider
	calls    int32
}

func (s *stubSearcher) Provider() hub.Provider { return s.provider }

func (s *stubSearcher) Search(ctx context.Context, query string, page int, perPage int) (hub.Page, error) {
	atomic.AddInt32(&s.calls, 1)
	return hub.Page{
		Images: []hub.ImageResult{{
			ID:     string(s.provider) + "-1",
			Source: s.provider,
			Tags:   []string{},
		}},
		Total:      1,
		TotalPages: 1,
	}, nil
}

func newTestServer(auth AuthFunc) (*Server, []*stubSearcher) {
	stubs := []*stubSearcher{
		{provider: hub.Unsplash},
		{provider: hub.Pixabay},
		{provider: hub.Pexels},
	}
	agg := hub.NewAggregator(stubs[0], stubs[1], stubs[2])
	return New(agg, auth, false), stubs
}

func totalCalls(stubs []*stubSearcher) int32 {
	var n int32
	for _, s := range stubs {
		n += atomic.LoadInt32(&s.calls)
	}
	return n
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (kind, message string) {
	t.Helper()
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error, body.Message
}

func TestSearchRequiresQuery(t *testing.T) {
	srv, stubs := newTestServer(nil)

	for _, target := range []string{"/search", "/search?q=", "/search?q=%20%20"} {
		rec := get(t, srv, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		kind, _ := decodeError(t, rec)
		assert.Equal(t, "Bad Request", kind)
	}
	assert.Equal(t, int32(0), totalCalls(stubs), "no provider call before validation passes")
}

func TestSearchDefaults(t *testing.T) {
	srv, stubs := newTestServer(nil)
	rec := get(t, srv, "/search?q=sunset")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp hub.SearchResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sunset", resp.Query)
	assert.Len(t, resp.Providers, 3, "providers defaults to all three")
	assert.Equal(t, int32(3), totalCalls(stubs))

	got := make([]hub.Provider, 0, 3)
	for _, r := range resp.Providers {
		got = append(got, r.Provider)
	}
	assert.Equal(t, []hub.Provider{hub.Unsplash, hub.Pixabay, hub.Pexels}, got)
}

func TestSearchProviderFiltering(t *testing.T) {
	srv, stubs := newTestServer(nil)

	// Unknown names are dropped silently, valid ones kept.
	rec := get(t, srv, "/search?q=sunset&providers=pexels,flickr,%20UNSPLASH")
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp hub.SearchResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Providers, 2)
	assert.Equal(t, int32(2), totalCalls(stubs))

	// Nothing valid left: reject before calling anyone.
	rec = get(t, srv, "/search?q=sunset&providers=flickr,giphy")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(2), totalCalls(stubs))
}

func TestSearchPaginationValidation(t *testing.T) {
	srv, _ := newTestServer(nil)

	for _, target := range []string{
		"/search?q=x&page=0",
		"/search?q=x&page=-1",
		"/search?q=x&page=abc",
		"/search?q=x&per_page=0",
		"/search?q=x&per_page=201",
		"/search?q=x&per_page=abc",
	} {
		rec := get(t, srv, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestSearchAuthGate(t *testing.T) {
	denyAll := func(r *http.Request) (string, bool) { return "", false }
	srv, stubs := newTestServer(denyAll)

	rec := get(t, srv, "/search?q=sunset")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	kind, msg := decodeError(t, rec)
	assert.Equal(t, "Unauthorized", kind)
	assert.Equal(t, "Authentication required", msg)
	assert.Equal(t, int32(0), totalCalls(stubs))

	allowAll := func(r *http.Request) (string, bool) { return "tester", true }
	srv, _ = newTestServer(allowAll)
	rec = get(t, srv, "/search?q=sunset")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRootNotFound(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(t, srv, "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
