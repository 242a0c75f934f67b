package postgres

import (
	"context"
	"embed"

	"github.com/kozaktomas/photo-sheet/internal/database/migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending migrations and returns their file names.
func (p *Pool) Migrate(ctx context.Context) ([]string, error) {
	return migrate.Run(ctx, p.db, migrationsFS, "migrations", migrate.Postgres)
}

// MigrationsApplied returns the list of applied migrations
func (p *Pool) MigrationsApplied(ctx context.Context) ([]string, error) {
	return migrate.Applied(ctx, p.db)
}
