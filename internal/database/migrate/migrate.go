// Package migrate applies embedded SQL migration files in file name order
// and records each applied file in a schema_migrations table.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Dialect holds the statements that differ between database engines.
type Dialect struct {
	CreateTable string // creates schema_migrations if missing
	Insert      string // records one applied version, single placeholder
	// SplitStatements executes each ';'-terminated statement separately,
	// for drivers that reject multi-statement Exec.
	SplitStatements bool
}

// Postgres is the dialect for lib/pq.
var Postgres = Dialect{
	CreateTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`,
	Insert: "INSERT INTO schema_migrations (version) VALUES ($1)",
}

// MySQL is the dialect for go-sql-driver/mysql against MariaDB or MySQL.
var MySQL = Dialect{
	CreateTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	Insert:          "INSERT INTO schema_migrations (version) VALUES (?)",
	SplitStatements: true,
}

// Applied returns the recorded migration versions in order.
func Applied(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migration versions: %w", err)
	}
	return versions, nil
}

// Pending returns the sorted .sql files in dir that are not in applied.
func Pending(fsys fs.FS, dir string, applied []string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") && !done[e.Name()] {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Statements splits a migration file on ';' line endings, dropping blank
// statements and comment-only lines.
func Statements(content string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			if s := strings.TrimSpace(cur.String()); s != ";" {
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// Run applies every pending migration in dir, each in its own transaction,
// and returns the applied file names.
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, dir string, d Dialect) ([]string, error) {
	if _, err := db.ExecContext(ctx, d.CreateTable); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}
	applied, err := Applied(ctx, db)
	if err != nil {
		return nil, err
	}
	files, err := Pending(fsys, dir, applied)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		content, err := fs.ReadFile(fsys, dir+"/"+file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}

		stmts := []string{string(content)}
		if d.SplitStatements {
			stmts = Statements(string(content))
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin transaction for %s: %w", file, err)
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("execute migration %s: %w", file, err)
			}
		}
		if _, err := tx.ExecContext(ctx, d.Insert, file); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return files, nil
}
