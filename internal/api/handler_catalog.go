package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ryanbastic/puzzlebox/internal/blob"
	"github.com/ryanbastic/puzzlebox/internal/catalog"
	"github.com/ryanbastic/puzzlebox/internal/storage"
)

const svgContentType = "image/svg+xml"

// --- Huma Input/Output types ---

type ListPuzzlesOutput struct {
	Body []catalog.Puzzle
}

type SearchPuzzlesInput struct {
	Q string `query:"q" doc:"Case-insensitive substring of name, description, or tags"`
}

type AddPuzzleBody struct {
	PuzzleID    string   `json:"puzzleId,omitempty" doc:"Puzzle id, usually from upload-image"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Pieces      int      `json:"pieces,omitempty"`
	SVG         string   `json:"svg,omitempty" doc:"Public URL of the puzzle image"`

	_ struct{} `json:"-" additionalProperties:"true"`
}

type AddPuzzleInput struct {
	Body AddPuzzleBody
}

type AddPuzzleResponse struct {
	Message  string `json:"message"`
	PuzzleID string `json:"puzzleId"`
}

type AddPuzzleOutput struct {
	Body AddPuzzleResponse
}

type uploadResponse struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// --- Handler ---

type CatalogHandler struct {
	store          storage.CatalogStore
	blobs          blob.Store
	blobBaseURL    string
	maxUploadBytes int64
	logger         *slog.Logger
	now            func() time.Time
}

func NewCatalogHandler(store storage.CatalogStore, blobs blob.Store, blobBaseURL string, maxUploadBytes int64, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		store:          store,
		blobs:          blobs,
		blobBaseURL:    blobBaseURL,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
		now:            time.Now,
	}
}

func registerCatalogRoutes(api huma.API, h *CatalogHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-puzzles",
		Method:      http.MethodGet,
		Path:        "/puzzles",
		Summary:     "List all puzzles, newest first",
		Tags:        []string{"puzzles"},
	}, h.ListPuzzles)

	huma.Register(api, huma.Operation{
		OperationID: "search-puzzles",
		Method:      http.MethodGet,
		Path:        "/search",
		Summary:     "Search puzzles by name, description, or tags",
		Tags:        []string{"puzzles"},
	}, h.SearchPuzzles)

	huma.Register(api, huma.Operation{
		OperationID: "add-puzzle",
		Method:      http.MethodPost,
		Path:        "/add-puzzle",
		Summary:     "Add a puzzle to the catalog",
		Tags:        []string{"puzzles"},
	}, h.AddPuzzle)
}

func (h *CatalogHandler) ListPuzzles(ctx context.Context, _ *struct{}) (*ListPuzzlesOutput, error) {
	puzzles, err := h.store.ListPuzzles(ctx)
	if err != nil {
		h.logger.Error("failed to list puzzles", "error", err)
		return nil, huma.Error500InternalServerError("internal server error")
	}
	return &ListPuzzlesOutput{Body: puzzles}, nil
}

func (h *CatalogHandler) SearchPuzzles(ctx context.Context, input *SearchPuzzlesInput) (*ListPuzzlesOutput, error) {
	if input.Q == "" {
		return nil, huma.Error400BadRequest("Search query is required")
	}

	puzzles, err := h.store.SearchPuzzles(ctx, input.Q)
	if err != nil {
		h.logger.Error("failed to search puzzles", "query", input.Q, "error", err)
		return nil, huma.Error500InternalServerError("internal server error")
	}
	return &ListPuzzlesOutput{Body: puzzles}, nil
}

func (h *CatalogHandler) AddPuzzle(ctx context.Context, input *AddPuzzleInput) (*AddPuzzleOutput, error) {
	b := input.Body
	if b.PuzzleID == "" || b.Name == "" || b.Pieces == 0 {
		return nil, huma.Error400BadRequest("puzzleId, name, and pieces are required")
	}

	exists, err := h.store.PuzzleExists(ctx, b.PuzzleID)
	if err != nil {
		h.logger.Error("failed to look up puzzle", "puzzle_id", b.PuzzleID, "error", err)
		return nil, huma.Error500InternalServerError("internal server error")
	}
	if exists {
		return nil, huma.Error409Conflict("Puzzle with this ID already exists")
	}

	err = h.store.AddPuzzle(ctx, catalog.Puzzle{
		ID:          b.PuzzleID,
		Name:        b.Name,
		Description: b.Description,
		Tags:        b.Tags,
		Pieces:      b.Pieces,
		SVG:         b.SVG,
	})
	if err != nil {
		// Lost the race against a concurrent add of the same id.
		if errors.Is(err, storage.ErrPuzzleExists) {
			return nil, huma.Error409Conflict("Puzzle with this ID already exists")
		}
		h.logger.Error("failed to add puzzle", "puzzle_id", b.PuzzleID, "error", err)
		return nil, huma.Error500InternalServerError("internal server error")
	}

	h.logger.Info("puzzle added", "puzzle_id", b.PuzzleID)
	return &AddPuzzleOutput{Body: AddPuzzleResponse{Message: "Puzzle added successfully", PuzzleID: b.PuzzleID}}, nil
}

// UploadImage stores the multipart "file" field as an SVG under a fresh
// puzzle id and returns its public URL.
func (h *CatalogHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	id := catalog.NewUploadID(h.now())
	key := catalog.SVGObjectKey(id)
	if err := h.blobs.Put(r.Context(), key, file, header.Size, svgContentType); err != nil {
		h.logger.Error("failed to upload image", "key", key, "error", err)
		writeError(w, blobErrorStatus(err), "failed to upload image")
		return
	}

	h.logger.Info("image uploaded", "key", key, "size", header.Size)
	writeJSON(w, http.StatusOK, uploadResponse{URL: catalog.PublicURL(h.blobBaseURL, key), ID: id})
}

// blobErrorStatus maps a blob store failure to a response status.
func blobErrorStatus(err error) int {
	switch {
	case errors.Is(err, blob.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, blob.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
