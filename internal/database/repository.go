package database

import (
	"context"
)

// HistoryReader provides read-only access to saved photosheets
type HistoryReader interface {
	// ListPhotosheets returns photosheets newest first. State is not loaded.
	ListPhotosheets(ctx context.Context, filter HistoryFilter) ([]Photosheet, error)
	// CountPhotosheets returns how many photosheets match the filter, ignoring Limit and Offset
	CountPhotosheets(ctx context.Context, filter HistoryFilter) (int, error)
	// GetPhotosheet retrieves a photosheet by ID, returns nil if not found
	GetPhotosheet(ctx context.Context, id string) (*Photosheet, error)
}

// HistoryWriter provides read-write access to saved photosheets
type HistoryWriter interface {
	HistoryReader

	// SavePhotosheet inserts the photosheet, or updates it when a row with
	// the same ID exists. An empty ID is assigned a new one. CreatedAt is
	// kept on update.
	SavePhotosheet(ctx context.Context, sheet *Photosheet) error
	// DeletePhotosheet removes a photosheet; deleting a missing ID is not an error
	DeletePhotosheet(ctx context.Context, id string) error
	// DeletePhotosheets removes the given IDs owned by ownerID and returns how many were removed
	DeletePhotosheets(ctx context.Context, ownerID string, ids []string) (int, error)
}
