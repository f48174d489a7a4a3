package storage

import (
	"context"
	"errors"

	"github.com/ryanbastic/puzzlebox/internal/catalog"
	"github.com/ryanbastic/puzzlebox/internal/gallery"
)

var (
	// ErrPuzzleNotFound is returned when a puzzle lookup finds no matching row.
	ErrPuzzleNotFound = errors.New("puzzle not found")

	// ErrPuzzleExists is returned when inserting a puzzle whose id is taken.
	ErrPuzzleExists = errors.New("puzzle already exists")
)

// CatalogStore persists the puzzle-game catalog and its scores.
type CatalogStore interface {
	// ListPuzzles returns every puzzle, newest first.
	ListPuzzles(ctx context.Context) ([]catalog.Puzzle, error)

	// SearchPuzzles matches query case-insensitively against name,
	// description, and the serialized tag list. Results are ordered by name.
	SearchPuzzles(ctx context.Context, query string) ([]catalog.Puzzle, error)

	PuzzleExists(ctx context.Context, id string) (bool, error)

	// AddPuzzle inserts p. Returns ErrPuzzleExists on id collision.
	AddPuzzle(ctx context.Context, p catalog.Puzzle) error

	// AddScore appends one completion row.
	AddScore(ctx context.Context, s catalog.NewScore) (*catalog.Score, error)

	// ScoresForPlayer returns the player's scores joined with their puzzles,
	// most recent completion first.
	ScoresForPlayer(ctx context.Context, playerName string) ([]catalog.ScoreEntry, error)
}

// GalleryStore persists the asset-manager puzzles.
type GalleryStore interface {
	ListPuzzles(ctx context.Context) ([]gallery.Puzzle, error)

	// GetPuzzle returns ErrPuzzleNotFound when id is absent.
	GetPuzzle(ctx context.Context, id string) (*gallery.Puzzle, error)

	CreatePuzzle(ctx context.Context, p gallery.Puzzle) (*gallery.Puzzle, error)

	// UpdatePuzzle rewrites the scalar fields and image list and bumps
	// updated_at. Returns ErrPuzzleNotFound when no row was affected.
	UpdatePuzzle(ctx context.Context, id string, f gallery.Fields, img []string) (*gallery.Puzzle, error)

	// DeletePuzzle removes the row. Deleting an absent id is not an error.
	DeletePuzzle(ctx context.Context, id string) error
}
