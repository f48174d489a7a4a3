package api

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ryanbastic/puzzlebox/internal/blob"
	"github.com/ryanbastic/puzzlebox/internal/metrics"
	"github.com/ryanbastic/puzzlebox/internal/player"
	"github.com/ryanbastic/puzzlebox/internal/storage"
)

// GameDeps are the collaborators of the puzzle-game API.
type GameDeps struct {
	Catalog        storage.CatalogStore
	Players        player.Registry
	Admin          player.AdminCredentials
	Blobs          blob.Store
	BlobBaseURL    string
	MaxUploadBytes int64
	Backends       map[string]Pinger
}

// AssetDeps are the collaborators of the asset-manager API.
type AssetDeps struct {
	Gallery        storage.GalleryStore
	Blobs          blob.Store
	MaxUploadBytes int64
	Backends       map[string]Pinger
	// Dist is the built admin panel. Nil disables the SPA fallback.
	Dist fs.FS
}

func newRouter(service string, logger *slog.Logger, backends map[string]Pinger) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(RequestID)
	mux.Use(metrics.HTTP(service))
	mux.Use(Logging(logger))
	mux.Use(Recovery(logger))
	mux.Use(CORS)

	healthHandler := NewHealthHandler(backends, logger)
	mux.Get("/livez", healthHandler.Livez)
	mux.Get("/readyz", healthHandler.Readyz)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// NewGameServer creates the puzzle-game API. Routes are un-prefixed; the
// OpenAPI document is served at /openapi.json with docs at /docs.
func NewGameServer(logger *slog.Logger, deps GameDeps) http.Handler {
	useErrorModel()
	mux := newRouter(metrics.ServicePuzzleGame, logger, deps.Backends)

	config := huma.DefaultConfig("Puzzle Game API", "1.0.0")
	// No $schema links in response bodies.
	config.CreateHooks = nil
	api := humachi.New(mux, config)

	catalogHandler := NewCatalogHandler(deps.Catalog, deps.Blobs, deps.BlobBaseURL, deps.MaxUploadBytes, logger)
	scoreHandler := NewScoreHandler(deps.Catalog, deps.Players, logger)
	playerHandler := NewPlayerHandler(deps.Players, deps.Admin, logger)

	registerCatalogRoutes(api, catalogHandler)
	registerScoreRoutes(api, scoreHandler)
	registerPlayerRoutes(api, playerHandler)

	mux.Post("/upload-image", catalogHandler.UploadImage)
	mux.Get("/scores/", MissingPlayerName)

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		notFound(w)
	})

	return mux
}

// NewAssetServer creates the asset-manager API under /api, with every other
// path served by the admin panel.
func NewAssetServer(logger *slog.Logger, deps AssetDeps) http.Handler {
	mux := newRouter(metrics.ServiceAssetManager, logger, deps.Backends)

	assetHandler := NewAssetHandler(deps.Gallery, deps.Blobs, deps.MaxUploadBytes, logger)
	mux.Route("/api", func(r chi.Router) {
		assetHandler.Routes(r)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			notFound(w)
		})
	})

	if deps.Dist != nil {
		mux.NotFound(SPA(deps.Dist).ServeHTTP)
	} else {
		mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
			notFound(w)
		})
	}

	return mux
}
