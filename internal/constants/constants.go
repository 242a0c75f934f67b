// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Layout constants
const (
	// MaxSlotsPerSheet caps the grid size of an editor session. Layouts that
	// would need more slots produce an empty sheet.
	MaxSlotsPerSheet = 5000

	// MaxImagesPerEditor is the maximum number of images attached to one session
	MaxImagesPerEditor = 100
)

// History constants
const (
	// DefaultHistoryPageSize is the default number of history entries returned per request
	DefaultHistoryPageSize = 50

	// MaxHistoryPageSize is the upper bound for the history limit parameter
	MaxHistoryPageSize = 500

	// MaxBatchDelete is the maximum number of history ids accepted by one batch delete
	MaxBatchDelete = 200
)
