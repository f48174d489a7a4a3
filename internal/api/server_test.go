package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

type gameFixture struct {
	server  http.Handler
	catalog *mockCatalogStore
	players *mockRegistry
	admin   *mockAdmin
	blobs   *mockBlobStore
}

func newGameFixture() *gameFixture {
	f := &gameFixture{
		catalog: &mockCatalogStore{},
		players: newMockRegistry(),
		admin:   &mockAdmin{password: "hunter2"},
		blobs:   newMockBlobStore(),
	}
	f.server = NewGameServer(testLogger(), GameDeps{
		Catalog:        f.catalog,
		Players:        f.players,
		Admin:          f.admin,
		Blobs:          f.blobs,
		BlobBaseURL:    "https://cdn.example.com/puzzles",
		MaxUploadBytes: 1 << 20,
	})
	return f
}

type assetFixture struct {
	server  http.Handler
	gallery *mockGalleryStore
	blobs   *mockBlobStore
}

func newAssetFixture() *assetFixture {
	f := &assetFixture{
		gallery: newMockGalleryStore(),
		blobs:   newMockBlobStore(),
	}
	f.server = NewAssetServer(testLogger(), AssetDeps{
		Gallery:        f.gallery,
		Blobs:          f.blobs,
		MaxUploadBytes: 1 << 20,
		Dist: fstest.MapFS{
			"index.html":    {Data: []byte("<!doctype html><title>admin</title>")},
			"assets/app.js": {Data: []byte("console.log('admin')")},
		},
	})
	return f
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp.Error
}

func TestOptions_BothServers(t *testing.T) {
	servers := map[string]http.Handler{
		"game":  newGameFixture().server,
		"asset": newAssetFixture().server,
	}
	paths := []string{"/register", "/puzzles", "/api/puzzles", "/api/puzzles/puzzle-1", "/does/not/exist"}

	for name, srv := range servers {
		for _, p := range paths {
			t.Run(name+p, func(t *testing.T) {
				w := doJSON(t, srv, http.MethodOptions, p, "")
				if w.Code != http.StatusOK {
					t.Errorf("status: got %d, want %d", w.Code, http.StatusOK)
				}
				if w.Body.Len() != 0 {
					t.Errorf("body: got %q, want empty", w.Body.String())
				}
				assertCORSHeaders(t, w.Header())
			})
		}
	}
}

func TestGameServer_UnknownPath(t *testing.T) {
	f := newGameFixture()

	w := doJSON(t, f.server, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusNotFound)
	}
	if w.Body.String() != "Not Found" {
		t.Errorf("body: got %q", w.Body.String())
	}
	assertCORSHeaders(t, w.Header())
}

func TestGameServer_WrongMethod(t *testing.T) {
	f := newGameFixture()

	w := doJSON(t, f.server, http.MethodDelete, "/puzzles", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestGameServer_CORSOnJSONResponses(t *testing.T) {
	f := newGameFixture()

	w := doJSON(t, f.server, http.MethodGet, "/puzzles", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type: got %q", ct)
	}
	assertCORSHeaders(t, w.Header())
}

func TestGameServer_OpenAPIDocument(t *testing.T) {
	f := newGameFixture()

	w := doJSON(t, f.server, http.MethodGet, "/openapi.json", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, p := range []string{"/register", "/puzzles", "/score", "/scores/{name}", "/search", "/add-puzzle", "/verify-admin", "/update-admin"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("openapi: missing path %s", p)
		}
	}
}

func TestGameServer_OpenAPIDocumentsCurrentPassword(t *testing.T) {
	f := newGameFixture()
	w := doJSON(t, f.server, http.MethodGet, "/openapi.json", "")

	var doc struct {
		Components struct {
			Schemas map[string]struct {
				Properties map[string]struct {
					Description string `json:"description"`
				} `json:"properties"`
			} `json:"schemas"`
		} `json:"components"`
	}
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	prop, ok := doc.Components.Schemas["UpdateAdminBody"].Properties["currentPassword"]
	if !ok {
		t.Fatal("openapi: UpdateAdminBody.currentPassword missing")
	}
	if !strings.Contains(prop.Description, "Required") {
		t.Errorf("currentPassword description: got %q, want it marked required", prop.Description)
	}
}

func TestServers_MetricsEndpoint(t *testing.T) {
	f := newGameFixture()
	doJSON(t, f.server, http.MethodGet, "/puzzles", "")

	w := doJSON(t, f.server, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `route="/puzzles",service="puzzle-game"`) {
		t.Error("metrics output missing puzzle-game request series")
	}

	a := newAssetFixture()
	serve(a.server, httptest.NewRequest(http.MethodGet, "/api/puzzles", nil))
	w = serve(a.server, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), `service="asset-manager"`) {
		t.Error("metrics output missing asset-manager request series")
	}
}
