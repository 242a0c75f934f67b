package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/photo-sheet/internal/database"
)

// HistoryRepository stores photosheet history in MariaDB.
type HistoryRepository struct {
	pool *Pool
}

// NewHistoryRepository creates a new MariaDB history repository.
func NewHistoryRepository(pool *Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

func whereClause(filter database.HistoryFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.OwnerID != "" {
		conds = append(conds, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if !filter.Before.IsZero() {
		conds = append(conds, "updated_at < ?")
		args = append(args, filter.Before.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListPhotosheets returns matching photosheets newest first, without state.
func (r *HistoryRepository) ListPhotosheets(ctx context.Context, filter database.HistoryFilter) ([]database.Photosheet, error) {
	where, args := whereClause(filter)
	query := "SELECT id, owner_id, thumbnail_url, copies, created_at, updated_at FROM photosheets" +
		where + " ORDER BY updated_at DESC, id"
	switch {
	case filter.Limit > 0:
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	case filter.Offset > 0:
		// MySQL has no OFFSET without LIMIT.
		query += " LIMIT 18446744073709551615 OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
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

// CountPhotosheets returns the number of matching photosheets.
func (r *HistoryRepository) CountPhotosheets(ctx context.Context, filter database.HistoryFilter) (int, error) {
	where, args := whereClause(filter)
	var count int
	if err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM photosheets"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count photosheets: %w", err)
	}
	return count, nil
}

// GetPhotosheet retrieves a photosheet with its state, returns nil if not found.
func (r *HistoryRepository) GetPhotosheet(ctx context.Context, id string) (*database.Photosheet, error) {
	var p database.Photosheet
	err := r.pool.db.QueryRowContext(ctx,
		`SELECT id, owner_id, thumbnail_url, copies, state, created_at, updated_at FROM photosheets WHERE id = ?`, id,
	).Scan(&p.ID, &p.OwnerID, &p.ThumbnailURL, &p.Copies, &p.State, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get photosheet: %w", err)
	}
	return &p, nil
}

// SavePhotosheet upserts a photosheet and reads back the stored created_at.
func (r *HistoryRepository) SavePhotosheet(ctx context.Context, sheet *database.Photosheet) error {
	if sheet.ID == "" {
		sheet.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	if sheet.CreatedAt.IsZero() {
		sheet.CreatedAt = now
	}
	sheet.UpdatedAt = now

	state := sheet.State
	if len(state) == 0 {
		state = []byte("{}")
	}

	tx, err := r.pool.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO photosheets (id, owner_id, thumbnail_url, copies, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			thumbnail_url = VALUES(thumbnail_url),
			copies = VALUES(copies),
			state = VALUES(state),
			updated_at = VALUES(updated_at)`,
		sheet.ID, sheet.OwnerID, sheet.ThumbnailURL, sheet.Copies, state, sheet.CreatedAt.UTC(), sheet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save photosheet: %w", err)
	}
	if err := tx.QueryRowContext(ctx, "SELECT created_at FROM photosheets WHERE id = ?", sheet.ID).Scan(&sheet.CreatedAt); err != nil {
		return fmt.Errorf("read back photosheet: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit photosheet: %w", err)
	}
	return nil
}

// DeletePhotosheet removes a photosheet.
func (r *HistoryRepository) DeletePhotosheet(ctx context.Context, id string) error {
	if _, err := r.pool.db.ExecContext(ctx, "DELETE FROM photosheets WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete photosheet: %w", err)
	}
	return nil
}

// DeletePhotosheets removes the listed photosheets owned by ownerID.
func (r *HistoryRepository) DeletePhotosheets(ctx context.Context, ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	result, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM photosheets WHERE owner_id = ? AND id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("delete photosheets: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
