package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ryanbastic/puzzlebox/internal/catalog"
)

const uniqueViolation = "23505"

// PostgresStore implements CatalogStore on the puzzles and scores tables.
type PostgresStore struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

// NewPostgresStore creates a CatalogStore.
// queryTimeout sets the per-query context deadline; zero means no timeout.
func NewPostgresStore(pool *pgxpool.Pool, queryTimeout time.Duration) *PostgresStore {
	return &PostgresStore{pool: pool, queryTimeout: queryTimeout}
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, s.queryTimeout)
}

// withTimeout derives a child context with the given query timeout.
// If timeout is zero, the parent context is returned unchanged.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return ctx, func() {}
}

func (s *PostgresStore) ListPuzzles(ctx context.Context) ([]catalog.Puzzle, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, tags, pieces, svg_url
		FROM puzzles
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list puzzles: %w", err)
	}
	return collectPuzzles(rows)
}

func (s *PostgresStore) SearchPuzzles(ctx context.Context, query string) ([]catalog.Puzzle, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	term := "%" + strings.ToLower(query) + "%"
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, tags, pieces, svg_url
		FROM puzzles
		WHERE LOWER(name) LIKE $1 ESCAPE ''
		   OR LOWER(description) LIKE $1 ESCAPE ''
		   OR LOWER(tags) LIKE $1 ESCAPE ''
		ORDER BY name
	`, term)
	if err != nil {
		return nil, fmt.Errorf("search puzzles: %w", err)
	}
	return collectPuzzles(rows)
}

func (s *PostgresStore) PuzzleExists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM puzzles WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("puzzle exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) AddPuzzle(ctx context.Context, p catalog.Puzzle) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tags, err := encodeList(p.Tags)
	if err != nil {
		return fmt.Errorf("add puzzle: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO puzzles (id, name, description, tags, pieces, svg_url)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Name, p.Description, tags, p.Pieces, p.SVG)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPuzzleExists
		}
		return fmt.Errorf("add puzzle: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddScore(ctx context.Context, ns catalog.NewScore) (*catalog.Score, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var sc catalog.Score
	err := s.pool.QueryRow(ctx, `
		INSERT INTO scores (player_name, puzzle_id, time_seconds)
		VALUES ($1, $2, $3)
		RETURNING id, player_name, puzzle_id, time_seconds, completed_at
	`, ns.PlayerName, ns.PuzzleID, ns.TimeSeconds).
		Scan(&sc.ID, &sc.PlayerName, &sc.PuzzleID, &sc.TimeSeconds, &sc.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("add score: %w", err)
	}
	return &sc, nil
}

func (s *PostgresStore) ScoresForPlayer(ctx context.Context, playerName string) ([]catalog.ScoreEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.player_name, s.puzzle_id, s.time_seconds, s.completed_at,
		       p.name, p.description
		FROM scores s
		JOIN puzzles p ON s.puzzle_id = p.id
		WHERE s.player_name = $1
		ORDER BY s.completed_at DESC
	`, playerName)
	if err != nil {
		return nil, fmt.Errorf("scores for player: %w", err)
	}
	defer rows.Close()

	entries := []catalog.ScoreEntry{}
	for rows.Next() {
		var e catalog.ScoreEntry
		if err := rows.Scan(&e.ID, &e.PlayerName, &e.PuzzleID, &e.TimeSeconds, &e.CompletedAt,
			&e.PuzzleName, &e.PuzzleDescription); err != nil {
			return nil, fmt.Errorf("scores for player scan: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func collectPuzzles(rows pgx.Rows) ([]catalog.Puzzle, error) {
	defer rows.Close()

	puzzles := []catalog.Puzzle{}
	for rows.Next() {
		var (
			p    catalog.Puzzle
			tags string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &tags, &p.Pieces, &p.SVG); err != nil {
			return nil, fmt.Errorf("scan puzzle: %w", err)
		}
		list, err := decodeList(tags)
		if err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", p.ID, err)
		}
		p.Tags = list
		puzzles = append(puzzles, p)
	}
	return puzzles, rows.Err()
}

// encodeList serializes a string list into the JSON text stored in list
// columns. HTML characters are kept literal so search matches them.
func encodeList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(list); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func decodeList(s string) ([]string, error) {
	list := []string{}
	if s == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
