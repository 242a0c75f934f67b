package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kozaktomas/photo-sheet/internal/database"
)

// HistoryRepository provides PostgreSQL-backed photosheet history
type HistoryRepository struct {
	pool *Pool
}

// NewHistoryRepository creates a new PostgreSQL history repository
func NewHistoryRepository(pool *Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// whereClause builds the filter conditions starting at placeholder $1.
func whereClause(filter database.HistoryFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conds = append(conds, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if !filter.Before.IsZero() {
		args = append(args, filter.Before)
		conds = append(conds, fmt.Sprintf("updated_at < $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListPhotosheets returns matching photosheets newest first, without state
func (r *HistoryRepository) ListPhotosheets(ctx context.Context, filter database.HistoryFilter) ([]database.Photosheet, error) {
	where, args := whereClause(filter)
	query := `SELECT id, owner_id, thumbnail_url, copies, created_at, updated_at FROM photosheets` +
		where + ` ORDER BY updated_at DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list photosheets: %w", err)
	}
	defer rows.Close()

	var sheets []database.Photosheet
	for rows.Next() {
		var p database.Photosheet
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.ThumbnailURL, &p.Copies, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan photosheet: %w", err)
		}
		sheets = append(sheets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photosheets: %w", err)
	}
	return sheets, nil
}

// CountPhotosheets returns the number of matching photosheets
func (r *HistoryRepository) CountPhotosheets(ctx context.Context, filter database.HistoryFilter) (int, error) {
	where, args := whereClause(filter)
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM photosheets"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count photosheets: %w", err)
	}
	return count, nil
}

// GetPhotosheet retrieves a photosheet with its state, returns nil if not found
func (r *HistoryRepository) GetPhotosheet(ctx context.Context, id string) (*database.Photosheet, error) {
	query := `
		SELECT id, owner_id, thumbnail_url, copies, state, created_at, updated_at
		FROM photosheets
		WHERE id = $1
	`

	var (
		p     database.Photosheet
		state string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.OwnerID,
		&p.ThumbnailURL,
		&p.Copies,
		&state,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get photosheet: %w", err)
	}
	p.State = []byte(state)
	return &p, nil
}

// SavePhotosheet inserts or updates a photosheet. The stored created_at
// is written back to sheet.
func (r *HistoryRepository) SavePhotosheet(ctx context.Context, sheet *database.Photosheet) error {
	if sheet.ID == "" {
		sheet.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	if sheet.CreatedAt.IsZero() {
		sheet.CreatedAt = now
	}
	sheet.UpdatedAt = now

	state := string(sheet.State)
	if state == "" {
		state = "{}"
	}

	query := `
		INSERT INTO photosheets (id, owner_id, thumbnail_url, copies, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			thumbnail_url = EXCLUDED.thumbnail_url,
			copies = EXCLUDED.copies,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		sheet.ID, sheet.OwnerID, sheet.ThumbnailURL, sheet.Copies, state, sheet.CreatedAt, sheet.UpdatedAt,
	).Scan(&sheet.CreatedAt)
	if err != nil {
		return fmt.Errorf("save photosheet: %w", err)
	}
	return nil
}

// DeletePhotosheet removes a photosheet
func (r *HistoryRepository) DeletePhotosheet(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM photosheets WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete photosheet: %w", err)
	}
	return nil
}

// DeletePhotosheets removes the listed photosheets owned by ownerID
func (r *HistoryRepository) DeletePhotosheets(ctx context.Context, ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.pool.Exec(ctx,
		"DELETE FROM photosheets WHERE owner_id = $1 AND id = ANY($2)", ownerID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete photosheets: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
