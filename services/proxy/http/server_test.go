package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwl-atlas/county-climate-tiles/services/proxy/config"
)

const testKey = "sekret-upstream-key"

func testConfig(upstreamBase string) config.Config {
	return config.Config{
		Port:            8081,
		UpstreamBase:    upstreamBase,
		APIKey:          testKey,
		CacheMaxAge:     24 * time.Hour,
		UpstreamTimeout: 5 * time.Second,
	}
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	srv.Engine().ServeHTTP(w, req)
	return w
}

// assertNoCredential fails if the configured key appears anywhere a client
// could see it.
func assertNoCredential(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.NotContains(t, w.Body.String(), testKey)
	for name, values := range w.Header() {
		for _, v := range values {
			assert.NotContains(t, v, testKey, "header %s leaks the credential", name)
		}
	}
}

func TestHandleTile_RelaysUpstream(t *testing.T) {
	var gotPath, gotKey string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("tile-bytes"))
	}))
	defer upstream.Close()

	srv := New(testConfig(upstream.URL))
	w := doRequest(t, srv, http.MethodGet, "/tiles/3/2/1.pbf")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/3/2/1.pbf", gotPath)
	assert.Equal(t, testKey, gotKey)
	assert.Equal(t, "tile-bytes", w.Body.String())
	assert.Equal(t, "application/x-protobuf", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", w.Header().Get("Cache-Control"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assertNoCredential(t, w)
}

func TestHandleTile_PathValidation(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("upstream must not be called for invalid paths")
	}))
	defer upstream.Close()

	srv := New(testConfig(upstream.URL))

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"wrong prefix", http.MethodGet, "/tile/3/2/1.pbf"},
		{"non-numeric zoom", http.MethodGet, "/tiles/a/2/1.pbf"},
		{"wrong extension", http.MethodGet, "/tiles/3/2/1.png"},
		{"missing extension", http.MethodGet, "/tiles/3/2/1"},
		{"signed zoom", http.MethodGet, "/tiles/+3/2/1.pbf"},
		{"negative x", http.MethodGet, "/tiles/3/-2/1.pbf"},
		{"post method", http.MethodPost, "/tiles/3/2/1.pbf"},
		{"root", http.MethodGet, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, srv, tt.method, tt.path)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assertNoCredential(t, w)
		})
	}
}

func TestPreflight(t *testing.T) {
	srv := New(testConfig("http://unused.invalid"))

	for _, path := range []string{"/tiles/3/2/1.pbf", "/anything", "/"} {
		w := doRequest(t, srv, http.MethodOptions, path)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestHandleTile_MissingCredentialFailsClosed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("upstream must not be called without a credential")
	}))
	defer upstream.Close()

	cfg := testConfig(upstream.URL)
	cfg.APIKey = ""
	srv := New(cfg)

	w := doRequest(t, srv, http.MethodGet, "/tiles/3/2/1.pbf")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"tile service unavailable"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleTile_UpstreamErrorNotEchoed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Upstream-Detail", "internal diagnostics")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("upstream internal detail: key=" + testKey))
	}))
	defer upstream.Close()

	srv := New(testConfig(upstream.URL))
	w := doRequest(t, srv, http.MethodGet, "/tiles/3/2/1.pbf")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"upstream tile error"}`, w.Body.String())
	assert.Empty(t, w.Header().Get("X-Upstream-Detail"))
	assertNoCredential(t, w)
}

func TestHandleTile_TransportFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	upstream.Close() // connection refused from here on

	srv := New(testConfig(upstream.URL))
	w := doRequest(t, srv, http.MethodGet, "/tiles/3/2/1.pbf")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"tile service unavailable"}`, w.Body.String())
	assertNoCredential(t, w)
}

func TestRateLimit(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("tile"))
	}))
	defer upstream.Close()

	cfg := testConfig(upstream.URL)
	cfg.RateLimitQPS = 1
	srv := New(cfg)

	first := doRequest(t, srv, http.MethodGet, "/tiles/3/2/1.pbf")
	second := doRequest(t, srv, http.MethodGet, "/tiles/3/2/1.pbf")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestHealthz(t *testing.T) {
	srv := New(testConfig("http://unused.invalid"))

	w := doRequest(t, srv, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
}
