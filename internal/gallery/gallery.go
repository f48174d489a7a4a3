// Package gallery holds the mutable puzzle records managed through the
// asset-manager API. Each puzzle owns a list of image keys in the blob store.
package gallery

import (
	"fmt"
	"path"
	"strings"
	"time"
)

type Level string

const (
	LevelEasy   Level = "Easy"
	LevelMedium Level = "Medium"
	LevelHard   Level = "Hard"
)

// ParseLevel accepts Easy, Medium or Hard. An empty string means Easy.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.TrimSpace(s)) {
	case "", LevelEasy:
		return LevelEasy, nil
	case LevelMedium:
		return LevelMedium, nil
	case LevelHard:
		return LevelHard, nil
	}
	return "", fmt.Errorf("invalid level %q", s)
}

type Puzzle struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Desc      string    `json:"desc"`
	Pieces    int       `json:"pieces"`
	Level     Level     `json:"level"`
	Tags      []string  `json:"tags"`
	Img       []string  `json:"img"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fields are the scalar attributes written by create and update.
type Fields struct {
	Name   string
	Desc   string
	Pieces int
	Level  Level
	Tags   []string
}

// NewID returns puzzle-<unixMillis>.
func NewID(now time.Time) string {
	return fmt.Sprintf("puzzle-%d", now.UnixMilli())
}

// SplitTags splits a comma separated list, trimming each entry and dropping empties.
func SplitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ImageKey is the blob key for a file uploaded against a puzzle.
// Directory components of the client filename are discarded.
func ImageKey(puzzleID, filename string) string {
	return puzzleID + "/" + path.Base(strings.ReplaceAll(filename, "\\", "/"))
}
