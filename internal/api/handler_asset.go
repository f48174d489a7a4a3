package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ryanbastic/puzzlebox/internal/blob"
	"github.com/ryanbastic/puzzlebox/internal/gallery"
	"github.com/ryanbastic/puzzlebox/internal/storage"
)

// formFileFields are the multipart field names accepted for image uploads.
var formFileFields = []string{"files", "files[]"}

// errImageKeyTaken is returned when a new puzzle's image key already holds an
// object, which means another puzzle was created with the same id.
var errImageKeyTaken = errors.New("image key already in use")

// AssetHandler serves the asset-manager puzzle API. Image files live in the
// blob store under <puzzleID>/<filename>.
type AssetHandler struct {
	store          storage.GalleryStore
	blobs          blob.Store
	maxUploadBytes int64
	logger         *slog.Logger
	now            func() time.Time
}

func NewAssetHandler(store storage.GalleryStore, blobs blob.Store, maxUploadBytes int64, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{
		store:          store,
		blobs:          blobs,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
		now:            time.Now,
	}
}

func (h *AssetHandler) Routes(r chi.Router) {
	r.Get("/puzzles", h.ListPuzzles)
	r.Post("/puzzles", h.CreatePuzzle)
	r.Get("/puzzles/{id}", h.GetPuzzle)
	r.Put("/puzzles/{id}", h.UpdatePuzzle)
	r.Delete("/puzzles/{id}", h.DeletePuzzle)
	r.Get("/images/*", h.GetImage)
}

func (h *AssetHandler) ListPuzzles(w http.ResponseWriter, r *http.Request) {
	puzzles, err := h.store.ListPuzzles(r.Context())
	if err != nil {
		h.internalError(w, "failed to list puzzles", err)
		return
	}
	writeJSON(w, http.StatusOK, puzzles)
}

func (h *AssetHandler) GetPuzzle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.store.GetPuzzle(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrPuzzleNotFound) {
			notFound(w)
			return
		}
		h.internalError(w, "failed to get puzzle", err, "id", id)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AssetHandler) CreatePuzzle(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	defer removeMultipart(r)

	fields, err := parseFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	id := gallery.NewID(h.now())
	keys, fresh, err := h.storeFiles(ctx, id, r.MultipartForm, false)
	if err != nil {
		writeError(w, blobErrorStatus(err), "failed to store images")
		return
	}

	created, err := h.store.CreatePuzzle(ctx, gallery.Puzzle{
		ID:     id,
		Name:   fields.Name,
		Desc:   fields.Desc,
		Pieces: fields.Pieces,
		Level:  fields.Level,
		Tags:   fields.Tags,
		Img:    keys,
	})
	if err != nil {
		h.discard(ctx, fresh)
		h.internalError(w, "failed to create puzzle", err, "id", id)
		return
	}

	h.logger.Info("puzzle created", "id", id, "images", len(keys))
	writeJSON(w, http.StatusCreated, created)
}

func (h *AssetHandler) UpdatePuzzle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if _, err := h.store.GetPuzzle(ctx, id); err != nil {
		if errors.Is(err, storage.ErrPuzzleNotFound) {
			notFound(w)
			return
		}
		h.internalError(w, "failed to get puzzle", err, "id", id)
		return
	}

	if !h.parseForm(w, r) {
		return
	}
	defer removeMultipart(r)

	fields, err := parseFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	img, err := parseExistingFiles(r.FormValue("existingFiles"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	keys, fresh, err := h.storeFiles(ctx, id, r.MultipartForm, true)
	if err != nil {
		writeError(w, blobErrorStatus(err), "failed to store images")
		return
	}
	img = append(img, keys...)

	updated, err := h.store.UpdatePuzzle(ctx, id, fields, img)
	if err != nil {
		h.discard(ctx, fresh)
		// Deleted between the lookup and the write.
		if errors.Is(err, storage.ErrPuzzleNotFound) {
			notFound(w)
			return
		}
		h.internalError(w, "failed to update puzzle", err, "id", id)
		return
	}

	h.logger.Info("puzzle updated", "id", id, "images", len(img))
	writeJSON(w, http.StatusOK, updated)
}

// DeletePuzzle removes the puzzle's images, then its row. The first image
// delete failure aborts the request and leaves the row in place.
func (h *AssetHandler) DeletePuzzle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	p, err := h.store.GetPuzzle(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrPuzzleNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.internalError(w, "failed to get puzzle", err, "id", id)
		return
	}

	for _, key := range p.Img {
		if err := h.blobs.Delete(ctx, key); err != nil {
			h.logger.Error("failed to delete image", "id", id, "key", key, "error", err)
			writeError(w, blobErrorStatus(err), "failed to delete images")
			return
		}
	}

	if err := h.store.DeletePuzzle(ctx, id); err != nil {
		h.internalError(w, "failed to delete puzzle", err, "id", id)
		return
	}

	h.logger.Info("puzzle deleted", "id", id, "images", len(p.Img))
	w.WriteHeader(http.StatusNoContent)
}

// GetImage streams a stored image by key.
func (h *AssetHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		notFound(w)
		return
	}

	obj, err := h.blobs.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			notFound(w)
			return
		}
		h.logger.Error("failed to get image", "key", key, "error", err)
		writeError(w, blobErrorStatus(err), "failed to get image")
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn("image stream interrupted", "key", key, "error", err)
	}
}

// parseForm reads a multipart (or urlencoded) body, writing a 400 or 413
// and returning false when it cannot be read.
func (h *AssetHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	err := r.ParseMultipartForm(h.maxUploadBytes)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid form body")
	return false
}

func removeMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}

func parseFields(r *http.Request) (gallery.Fields, error) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		return gallery.Fields{}, errors.New("name is required")
	}

	pieces, err := strconv.Atoi(strings.TrimSpace(r.FormValue("pieces")))
	if err != nil {
		return gallery.Fields{}, errors.New("pieces must be a number")
	}

	level, err := gallery.ParseLevel(r.FormValue("level"))
	if err != nil {
		return gallery.Fields{}, errors.New("level must be one of Easy, Medium, Hard")
	}

	return gallery.Fields{
		Name:   name,
		Desc:   r.FormValue("desc"),
		Pieces: pieces,
		Level:  level,
		Tags:   gallery.SplitTags(r.FormValue("tags")),
	}, nil
}

// parseExistingFiles decodes the JSON list of image keys a client kept.
func parseExistingFiles(raw string) ([]string, error) {
	keys := []string{}
	if strings.TrimSpace(raw) == "" {
		return keys, nil
	}
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, errors.New("existingFiles must be a JSON array of strings")
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// storeFiles uploads every named file in form under puzzleID. It returns all
// keys in upload order and the subset that held no object beforehand; only
// that subset is ever discarded. Unless replace is set, an occupied key fails
// the upload with errImageKeyTaken.
func (h *AssetHandler) storeFiles(ctx context.Context, puzzleID string, form *multipart.Form, replace bool) ([]string, []string, error) {
	keys, fresh := []string{}, []string{}
	if form == nil {
		return keys, fresh, nil
	}

	for _, field := range formFileFields {
		for _, fh := range form.File[field] {
			if fh.Filename == "" {
				continue
			}
			key := gallery.ImageKey(puzzleID, fh.Filename)
			existed, err := h.blobExists(ctx, key)
			if err == nil && existed && !replace {
				err = errImageKeyTaken
			}
			if err == nil {
				err = h.putFile(ctx, key, fh)
			}
			if err != nil {
				h.logger.Error("failed to store image", "id", puzzleID, "key", key, "error", err)
				h.discard(ctx, fresh)
				return nil, nil, err
			}
			keys = append(keys, key)
			if !existed {
				fresh = append(fresh, key)
			}
		}
	}
	return keys, fresh, nil
}

func (h *AssetHandler) blobExists(ctx context.Context, key string) (bool, error) {
	obj, err := h.blobs.Get(ctx, key)
	if errors.Is(err, blob.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	obj.Body.Close()
	return true, nil
}

func (h *AssetHandler) putFile(ctx context.Context, key string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	return h.blobs.Put(ctx, key, f, fh.Size, fileContentType(fh))
}

// discard deletes uploaded blobs whose row write failed. Errors are logged only.
func (h *AssetHandler) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := h.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
			h.logger.Warn("orphaned image left in blob store", "key", key, "error", err)
		}
	}
}

func (h *AssetHandler) internalError(w http.ResponseWriter, msg string, err error, args ...any) {
	h.logger.Error(msg, append(args, "error", err)...)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func fileContentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(path.Ext(fh.Filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// notFound writes the plain-text 404 used by the asset API.
func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	io.WriteString(w, "Not Found")
}
