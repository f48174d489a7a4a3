package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// apiError is the error body returned by huma operations. It keeps the
// {"error": "..."} shape used by the plain chi handlers.
type apiError struct {
	status  int
	Message string `json:"error"`
}

func (e *apiError) Error() string  { return e.Message }
func (e *apiError) GetStatus() int { return e.status }

func newAPIError(status int, msg string, errs ...error) huma.StatusError {
	// Schema validation failures are reported as bad requests.
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
		if len(errs) > 0 && errs[0] != nil {
			msg = errs[0].Error()
		}
	}
	return &apiError{status: status, Message: msg}
}

var installErrorModel sync.Once

func useErrorModel() {
	installErrorModel.Do(func() {
		huma.NewError = newAPIError
	})
}
