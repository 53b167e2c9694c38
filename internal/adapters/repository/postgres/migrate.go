package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the embedded migration file names in apply order.
func Migrations(direction string) ([]string, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	suffix := "." + direction + ".sql"
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	if direction == "down" {
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
	}
	return names, nil
}

// RunMigration executes one embedded migration file. name may be a full
// file name or a unique suffix of one, like "ballot_schema.up".
func RunMigration(ctx context.Context, db *sql.DB, name string) error {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	target := strings.TrimSuffix(name, ".sql") + ".sql"
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), target) {
			continue
		}
		content, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
		return nil
	}
	return fmt.Errorf("migration file not found: %s", name)
}

// Migrate applies every up migration. Files are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	names, err := Migrations("up")
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := RunMigration(ctx, db, name); err != nil {
			return err
		}
	}
	return nil
}
