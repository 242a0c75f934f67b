package database

import (
	"time"
)

// Photosheet is one saved editor state in the history.
type Photosheet struct {
	ID           string
	OwnerID      string // anonymous owner cookie value
	ThumbnailURL string // source of the first image at save time
	Copies       int
	State        []byte // JSON snapshot produced by editor.MarshalState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HistoryFilter narrows a history listing.
type HistoryFilter struct {
	OwnerID string    // empty means every owner
	Before  time.Time // zero means no upper bound on updated_at
	Limit   int       // zero means no limit
	Offset  int
}
