package storage

import (
	"strings"
	"testing"
)

func TestMigrations_Idempotent(t *testing.T) {
	for _, m := range migrations {
		for _, stmt := range strings.Split(m.ddl, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if !strings.Contains(stmt, "IF NOT EXISTS") {
				t.Errorf("migration %s: statement is not idempotent: %s", m.name, stmt)
			}
		}
	}
}

func TestMigrations_UniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range migrations {
		if seen[m.name] {
			t.Errorf("duplicate migration name %q", m.name)
		}
		seen[m.name] = true
	}
}

func TestMigrations_CoverTables(t *testing.T) {
	for _, table := range []string{"puzzles", "scores", "asset_puzzles"} {
		found := false
		for _, m := range migrations {
			if strings.Contains(m.ddl, "CREATE TABLE IF NOT EXISTS "+table+" (") {
				found = true
			}
		}
		if !found {
			t.Errorf("no migration creates table %s", table)
		}
	}
}
