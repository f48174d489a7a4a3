package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ryanbastic/puzzlebox/internal/gallery"
)

// PostgresGalleryStore implements GalleryStore on the asset_puzzles table.
type PostgresGalleryStore struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

// NewPostgresGalleryStore creates a GalleryStore.
// queryTimeout sets the per-query context deadline; zero means no timeout.
func NewPostgresGalleryStore(pool *pgxpool.Pool, queryTimeout time.Duration) *PostgresGalleryStore {
	return &PostgresGalleryStore{pool: pool, queryTimeout: queryTimeout}
}

const galleryColumns = `id, name, description, pieces, level, tags, img, created_at, updated_at`

func (s *PostgresGalleryStore) ListPuzzles(ctx context.Context) ([]gallery.Puzzle, error) {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT `+galleryColumns+` FROM asset_puzzles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list gallery puzzles: %w", err)
	}
	defer rows.Close()

	puzzles := []gallery.Puzzle{}
	for rows.Next() {
		p, err := scanGalleryPuzzle(rows)
		if err != nil {
			return nil, err
		}
		puzzles = append(puzzles, *p)
	}
	return puzzles, rows.Err()
}

func (s *PostgresGalleryStore) GetPuzzle(ctx context.Context, id string) (*gallery.Puzzle, error) {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, `SELECT `+galleryColumns+` FROM asset_puzzles WHERE id = $1`, id)
	p, err := scanGalleryPuzzle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPuzzleNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PostgresGalleryStore) CreatePuzzle(ctx context.Context, p gallery.Puzzle) (*gallery.Puzzle, error) {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	tags, err := encodeList(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("create gallery puzzle: %w", err)
	}
	img, err := encodeList(p.Img)
	if err != nil {
		return nil, fmt.Errorf("create gallery puzzle: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO asset_puzzles (id, name, description, pieces, level, tags, img)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+galleryColumns,
		p.ID, p.Name, p.Desc, p.Pieces, string(p.Level), tags, img,
	)
	created, err := scanGalleryPuzzle(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPuzzleExists
		}
		return nil, fmt.Errorf("create gallery puzzle: %w", err)
	}
	return created, nil
}

func (s *PostgresGalleryStore) UpdatePuzzle(ctx context.Context, id string, f gallery.Fields, img []string) (*gallery.Puzzle, error) {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	tags, err := encodeList(f.Tags)
	if err != nil {
		return nil, fmt.Errorf("update gallery puzzle: %w", err)
	}
	images, err := encodeList(img)
	if err != nil {
		return nil, fmt.Errorf("update gallery puzzle: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE asset_puzzles
		SET name = $2, description = $3, pieces = $4, level = $5, tags = $6, img = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+galleryColumns,
		id, f.Name, f.Desc, f.Pieces, string(f.Level), tags, images,
	)
	updated, err := scanGalleryPuzzle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPuzzleNotFound
		}
		return nil, fmt.Errorf("update gallery puzzle: %w", err)
	}
	return updated, nil
}

func (s *PostgresGalleryStore) DeletePuzzle(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, s.queryTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, `DELETE FROM asset_puzzles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete gallery puzzle: %w", err)
	}
	return nil
}

func scanGalleryPuzzle(row pgx.Row) (*gallery.Puzzle, error) {
	var (
		p         gallery.Puzzle
		level     string
		tags, img string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Desc, &p.Pieces, &level, &tags, &img, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan gallery puzzle: %w", err)
	}
	p.Level = gallery.Level(level)

	var err error
	if p.Tags, err = decodeList(tags); err != nil {
		return nil, fmt.Errorf("decode tags for %s: %w", p.ID, err)
	}
	if p.Img, err = decodeList(img); err != nil {
		return nil, fmt.Errorf("decode img for %s: %w", p.ID, err)
	}
	return &p, nil
}
