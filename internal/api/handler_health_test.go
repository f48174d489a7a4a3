package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func healthServer(backends map[string]Pinger) http.Handler {
	return NewAssetServer(testLogger(), AssetDeps{
		Gallery:  newMockGalleryStore(),
		Blobs:    newMockBlobStore(),
		Backends: backends,
	})
}

func okPing(context.Context) error { return nil }

func TestLivez_ReturnsOK(t *testing.T) {
	w := httptest.NewRecorder()
	healthServer(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status: got %q, want %q", resp["status"], "ok")
	}
}

func TestReadyz_NoBackends_ReturnsOK(t *testing.T) {
	w := httptest.NewRecorder()
	healthServer(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusOK)
	}
}

func TestReadyz_AllHealthy(t *testing.T) {
	server := healthServer(map[string]Pinger{
		"postgres": PingFunc(okPing),
		"redis":    PingFunc(okPing),
	})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d\nbody: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp readyzResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || len(resp.Backends) != 2 {
		t.Errorf("got %+v", resp)
	}
}

func TestReadyz_OneBackendDown(t *testing.T) {
	server := healthServer(map[string]Pinger{
		"postgres": PingFunc(okPing),
		"redis": PingFunc(func(context.Context) error {
			return errors.New("connection refused")
		}),
	})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	var resp readyzResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "unavailable" {
		t.Errorf("status: got %q, want %q", resp.Status, "unavailable")
	}
	if resp.Backends["postgres"].Status != "ok" {
		t.Errorf("postgres: got %q", resp.Backends["postgres"].Status)
	}
	if got := resp.Backends["redis"]; got.Status != "error" || got.Error != "connection refused" {
		t.Errorf("redis: got %+v", got)
	}
}
