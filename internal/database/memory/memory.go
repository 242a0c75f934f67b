// Package memory provides a process-local history store. Saved photosheets
// are lost on restart.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/photo-sheet/internal/database"
)

// BackendName is the name the store registers under.
const BackendName = "memory"

// Store is a mutex-protected in-memory database.HistoryWriter.
type Store struct {
	mu     sync.RWMutex
	sheets map[string]database.Photosheet
	now    func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sheets: make(map[string]database.Photosheet),
		now:    time.Now,
	}
}

// Register makes s the active history backend.
func Register(s *Store) {
	database.RegisterHistoryBackend(BackendName, func() database.HistoryWriter { return s })
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func matches(p database.Photosheet, f database.HistoryFilter) bool {
	if f.OwnerID != "" && p.OwnerID != f.OwnerID {
		return false
	}
	if !f.Before.IsZero() && !p.UpdatedAt.Before(f.Before) {
		return false
	}
	return true
}

// ListPhotosheets returns matching photosheets, newest first, without state.
func (s *Store) ListPhotosheets(ctx context.Context, filter database.HistoryFilter) ([]database.Photosheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []database.Photosheet
	for _, p := range s.sheets {
		if matches(p, filter) {
			p.State = nil
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b database.Photosheet) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CountPhotosheets counts matching photosheets.
func (s *Store) CountPhotosheets(ctx context.Context, filter database.HistoryFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.sheets {
		if matches(p, filter) {
			n++
		}
	}
	return n, nil
}

// GetPhotosheet returns a copy of the photosheet, or nil if not found.
func (s *Store) GetPhotosheet(ctx context.Context, id string) (*database.Photosheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.sheets[id]
	if !ok {
		return nil, nil
	}
	p.State = slices.Clone(p.State)
	return &p, nil
}

// SavePhotosheet inserts or updates the photosheet.
func (s *Store) SavePhotosheet(ctx context.Context, sheet *database.Photosheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sheet.ID == "" {
		sheet.ID = uuid.New().String()
	}
	now := s.now()
	if existing, ok := s.sheets[sheet.ID]; ok {
		sheet.CreatedAt = existing.CreatedAt
	} else {
		sheet.CreatedAt = now
	}
	sheet.UpdatedAt = now

	stored := *sheet
	stored.State = slices.Clone(sheet.State)
	s.sheets[sheet.ID] = stored
	return nil
}

// DeletePhotosheet removes a photosheet.
func (s *Store) DeletePhotosheet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sheets, id)
	return nil
}

// DeletePhotosheets removes the given ids owned by ownerID.
func (s *Store) DeletePhotosheets(ctx context.Context, ownerID string, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if p, ok := s.sheets[id]; ok && p.OwnerID == ownerID {
			delete(s.sheets, id)
			n++
		}
	}
	return n, nil
}
