package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ryanbastic/puzzlebox/internal/catalog"
	"github.com/ryanbastic/puzzlebox/internal/player"
	"github.com/ryanbastic/puzzlebox/internal/storage"
)

// --- Huma Input/Output types ---

type PostScoreBody struct {
	Name        string `json:"name,omitempty" doc:"Registered player name"`
	PuzzleID    string `json:"puzzleId,omitempty" doc:"Completed puzzle id"`
	TimeSeconds int    `json:"timeSeconds,omitempty" doc:"Completion time in seconds"`

	_ struct{} `json:"-" additionalProperties:"true"`
}

type PostScoreInput struct {
	Body PostScoreBody
}

type GetScoresInput struct {
	Name string `path:"name" doc:"Player name"`
}

type GetScoresOutput struct {
	Body []catalog.ScoreEntry
}

// --- Handler ---

type ScoreHandler struct {
	store   storage.CatalogStore
	players player.Registry
	logger  *slog.Logger
}

func NewScoreHandler(store storage.CatalogStore, players player.Registry, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{store: store, players: players, logger: logger}
}

func registerScoreRoutes(api huma.API, h *ScoreHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "post-score",
		Method:      http.MethodPost,
		Path:        "/score",
		Summary:     "Record a puzzle completion",
		Tags:        []string{"scores"},
	}, h.PostScore)

	huma.Register(api, huma.Operation{
		OperationID: "get-scores",
		Method:      http.MethodGet,
		Path:        "/scores/{name}",
		Summary:     "List a player's completions, newest first",
		Tags:        []string{"scores"},
	}, h.GetScores)
}

func (h *ScoreHandler) PostScore(ctx context.Context, input *PostScoreInput) (*MessageOutput, error) {
	b := input.Body
	if b.Name == "" || b.PuzzleID == "" || b.TimeSeconds == 0 {
		return nil, huma.Error400BadRequest("name, puzzleId, and timeSeconds are required")
	}

	registered, err := h.players.Exists(ctx, b.Name)
	if err != nil {
		h.logger.Error("failed to look up player", "name", b.Name, "error", err)
		return nil, huma.Error500InternalServerError("internal server error")
	}
	if !registered {
		return nil, huma.Error404NotFound("Player not found. Please register first.")
	}

	exists, err := h.store.PuzzleExists(ctx, b.PuzzleID)
	if err != nil {
		h.logger.Error("failed to look up puzzle", "puzzle_id", b.PuzzleID, "error", err)
		return nil, huma.Error500InternalServerError("internal server error")
	}
	if !exists {
		return nil, huma.Error404NotFound("Puzzle not found")
	}

	if _, err := h.store.AddScore(ctx, catalog.NewScore{
		PlayerName:  b.Name,
		PuzzleID:    b.PuzzleID,
		TimeSeconds: b.TimeSeconds,
	}); err != nil {
		h.logger.Error("failed to save score", "name", b.Name, "puzzle_id", b.PuzzleID, "error", err)
		return nil, huma.Error500InternalServerError("internal server error")
	}

	return &MessageOutput{Body: MessageResponse{Message: "Score saved successfully"}}, nil
}

func (h *ScoreHandler) GetScores(ctx context.Context, input *GetScoresInput) (*GetScoresOutput, error) {
	if input.Name == "" {
		return nil, huma.Error400BadRequest("Player name is required")
	}

	entries, err := h.store.ScoresForPlayer(ctx, input.Name)
	if err != nil {
		h.logger.Error("failed to get scores", "name", input.Name, "error", err)
		return nil, huma.Error500InternalServerError("internal server error")
	}
	return &GetScoresOutput{Body: entries}, nil
}

// MissingPlayerName answers /scores/ with no name segment.
func MissingPlayerName(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusBadRequest, "Player name is required")
}
