// Package catalog holds the immutable puzzle catalog served by the
// puzzle-game API, together with the score records players post against it.
package catalog

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Puzzle is a catalog entry. Tags are persisted as JSON text.
type Puzzle struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Pieces      int      `json:"pieces"`
	SVG         string   `json:"svg"`
}

// Score is one puzzle completion. Rows are append-only.
type Score struct {
	ID          int64     `json:"id"`
	PlayerName  string    `json:"player_name"`
	PuzzleID    string    `json:"puzzle_id"`
	TimeSeconds int       `json:"time_seconds"`
	CompletedAt time.Time `json:"completed_at"`
}

// ScoreEntry is a Score joined with the puzzle it was posted against.
type ScoreEntry struct {
	Score
	PuzzleName        string `json:"puzzle_name"`
	PuzzleDescription string `json:"puzzle_description"`
}

// NewScore is what a caller provides to record a completion.
type NewScore struct {
	PlayerName  string
	PuzzleID    string
	TimeSeconds int
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewUploadID returns an id of the form puzzle-<unixMillis>-<9 base36 chars>.
func NewUploadID(now time.Time) string {
	var b strings.Builder
	b.Grow(9)
	for range 9 {
		b.WriteByte(idAlphabet[rand.IntN(len(idAlphabet))])
	}
	return fmt.Sprintf("puzzle-%s-%s", strconv.FormatInt(now.UnixMilli(), 10), b.String())
}

// SVGObjectKey is the blob key an uploaded image is stored under.
func SVGObjectKey(id string) string {
	return id + ".svg"
}

// PublicURL joins the public bucket prefix and an object key.
func PublicURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + key
}
