package mariadb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/database/migrate"
)

// BackendName is the name the MariaDB store registers under.
const BackendName = "mariadb"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Pool manages a MariaDB connection pool.
type Pool struct {
	db *sql.DB
}

// normalizeDSN forces the options the history queries depend on:
// DATETIME columns scanned as time.Time in UTC.
func normalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse MariaDB DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// openDB opens and sizes the pool without connecting.
func openDB(cfg *config.MariaDBConfig) (*sql.DB, error) {
	if cfg == nil || cfg.DSN == "" {
		return nil, errors.New("MariaDB DSN is required")
	}
	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// NewPool creates a new MariaDB connection pool.
func NewPool(cfg *config.MariaDBConfig) (*Pool, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return &Pool{db: db}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// Migrate applies all pending migrations and returns their file names.
func (p *Pool) Migrate(ctx context.Context) ([]string, error) {
	return migrate.Run(ctx, p.db, migrationsFS, "migrations", migrate.MySQL)
}

// Initialize connects to MariaDB, applies pending migrations and registers
// the history repository as the active backend. The caller owns the
// returned pool.
func Initialize(ctx context.Context, cfg *config.MariaDBConfig) (*Pool, []string, error) {
	pool, err := NewPool(cfg)
	if err != nil {
		return nil, nil, err
	}

	applied, err := pool.Migrate(ctx)
	if err != nil {
		_ = pool.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := NewHistoryRepository(pool)
	database.RegisterHistoryBackend(BackendName, func() database.HistoryWriter { return repo })
	return pool, applied, nil
}
