// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sync"

	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/database/memory"
)

// MockHistoryWriter is a mock implementation of database.HistoryWriter.
// Storage is delegated to an in-memory store; the error fields make the
// matching method fail.
type MockHistoryWriter struct {
	store *memory.Store

	mu    sync.Mutex
	calls map[string]int

	// Error injection
	ListError       error
	CountError      error
	GetError        error
	SaveError       error
	DeleteError     error
	DeleteManyError error
}

// NewMockHistoryWriter creates a new mock history writer
func NewMockHistoryWriter() *MockHistoryWriter {
	return &MockHistoryWriter{
		store: memory.NewStore(),
		calls: make(map[string]int),
	}
}

// Register installs the mock as the active history backend
func (m *MockHistoryWriter) Register() {
	database.RegisterHistoryBackend("mock", func() database.HistoryWriter { return m })
}

// AddPhotosheet stores a photosheet directly, assigning an id when empty
func (m *MockHistoryWriter) AddPhotosheet(p database.Photosheet) string {
	_ = m.store.SavePhotosheet(context.Background(), &p)
	return p.ID
}

// Store exposes the backing store, e.g. to pin its clock
func (m *MockHistoryWriter) Store() *memory.Store {
	return m.store
}

// Calls returns how many times a method was invoked
func (m *MockHistoryWriter) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockHistoryWriter) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
}

// ListPhotosheets lists photosheets
func (m *MockHistoryWriter) ListPhotosheets(ctx context.Context, filter database.HistoryFilter) ([]database.Photosheet, error) {
	m.record("ListPhotosheets")
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.store.ListPhotosheets(ctx, filter)
}

// CountPhotosheets counts photosheets
func (m *MockHistoryWriter) CountPhotosheets(ctx context.Context, filter database.HistoryFilter) (int, error) {
	m.record("CountPhotosheets")
	if m.CountError != nil {
		return 0, m.CountError
	}
	return m.store.CountPhotosheets(ctx, filter)
}

// GetPhotosheet retrieves a photosheet by ID
func (m *MockHistoryWriter) GetPhotosheet(ctx context.Context, id string) (*database.Photosheet, error) {
	m.record("GetPhotosheet")
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.store.GetPhotosheet(ctx, id)
}

// SavePhotosheet inserts or updates a photosheet
func (m *MockHistoryWriter) SavePhotosheet(ctx context.Context, sheet *database.Photosheet) error {
	m.record("SavePhotosheet")
	if m.SaveError != nil {
		return m.SaveError
	}
	return m.store.SavePhotosheet(ctx, sheet)
}

// DeletePhotosheet removes a photosheet
func (m *MockHistoryWriter) DeletePhotosheet(ctx context.Context, id string) error {
	m.record("DeletePhotosheet")
	if m.DeleteError != nil {
		return m.DeleteError
	}
	return m.store.DeletePhotosheet(ctx, id)
}

// DeletePhotosheets removes several photosheets
func (m *MockHistoryWriter) DeletePhotosheets(ctx context.Context, ownerID string, ids []string) (int, error) {
	m.record("DeletePhotosheets")
	if m.DeleteManyError != nil {
		return 0, m.DeleteManyError
	}
	return m.store.DeletePhotosheets(ctx, ownerID, ids)
}
