package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	name string
	ddl  string
}

var migrations = []migration{
	{
		name: "puzzles",
		ddl: `
			CREATE TABLE IF NOT EXISTS puzzles (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				tags        TEXT NOT NULL DEFAULT '[]',
				pieces      INTEGER NOT NULL,
				svg_url     TEXT NOT NULL DEFAULT '',
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);

			CREATE INDEX IF NOT EXISTS idx_puzzles_created
				ON puzzles (created_at DESC);
		`,
	},
	{
		name: "scores",
		ddl: `
			CREATE TABLE IF NOT EXISTS scores (
				id           BIGSERIAL PRIMARY KEY,
				player_name  TEXT NOT NULL,
				puzzle_id    TEXT NOT NULL,
				time_seconds INTEGER NOT NULL,
				completed_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);

			CREATE INDEX IF NOT EXISTS idx_scores_player
				ON scores (player_name, completed_at DESC);
		`,
	},
	{
		name: "asset_puzzles",
		ddl: `
			CREATE TABLE IF NOT EXISTS asset_puzzles (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				pieces      INTEGER NOT NULL DEFAULT 0,
				level       TEXT NOT NULL DEFAULT 'Easy',
				tags        TEXT NOT NULL DEFAULT '[]',
				img         TEXT NOT NULL DEFAULT '[]',
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`,
	},
}

// RunMigrations creates every table used by the record store. It is safe to
// run on each start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.ddl); err != nil {
			return fmt.Errorf("migrate %s: %w", m.name, err)
		}
	}
	return nil
}
