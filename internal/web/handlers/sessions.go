package handlers

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/editor"
	"github.com/kozaktomas/photo-sheet/internal/layout"
)

// EditorSession is one editor held in memory for a browser. All access to
// the editor goes through Do, which serializes callers.
type EditorSession struct {
	EventBroadcaster

	ID        string
	OwnerID   string
	CreatedAt time.Time

	mu       sync.Mutex
	editor   *editor.Editor
	lastUsed time.Time
	now      func() time.Time
}

// Do runs fn with exclusive access to the editor and returns the state
// after it. When fn commits a change, listeners receive a state event.
func (s *EditorSession) Do(fn func(e *editor.Editor) error) (StateResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.editor.Revision()
	err := fn(s.editor)
	s.lastUsed = s.now()
	state := s.stateLocked()
	changed := state.Revision != before
	if changed {
		s.SendEvent(EditorEvent{Type: EventState, Data: state})
	}
	return state, changed, err
}

// State returns a snapshot of the editor.
func (s *EditorSession) State() StateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *EditorSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// GridInfo is the column and row count of the current grid.
type GridInfo struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
	Slots   int `json:"slots"`
}

// StateResponse is the full editor state sent to clients.
type StateResponse struct {
	ID             string                `json:"id"`
	Revision       uint64                `json:"revision"`
	Settings       editor.Settings       `json:"settings"`
	Defaults       editor.Settings       `json:"defaults"`
	Display        editor.Display        `json:"display"`
	Page           layout.PageDimensions `json:"page"`
	Grid           GridInfo              `json:"grid"`
	Images         []editor.Image        `json:"images"`
	Sheets         []layout.Sheet        `json:"sheets"`
	CurrentSheet   int                   `json:"currentSheet"`
	SelectedSlotID *int                  `json:"selectedSlotId"`
}

func (s *EditorSession) stateLocked() StateResponse {
	e := s.editor
	grid := e.Grid()
	state := StateResponse{
		ID:           s.ID,
		Revision:     e.Revision(),
		Settings:     e.Settings(),
		Defaults:     e.Defaults(),
		Display:      e.Display(),
		Page:         e.Page(),
		Grid:         GridInfo{Columns: grid.Columns, Rows: grid.Rows, Slots: grid.Len()},
		Images:       e.Images(),
		Sheets:       e.Sheets(),
		CurrentSheet: e.CurrentSheet(),
	}
	if state.Images == nil {
		state.Images = []editor.Image{}
	}
	if id, ok := e.SelectedSlot(); ok {
		state.SelectedSlotID = &id
	}
	return state
}

// EditorManager keeps the live editor sessions and drops idle ones.
type EditorManager struct {
	sessions map[string]*EditorSession
	mu       sync.RWMutex

	defaults editor.Settings
	idle     time.Duration
	logger   *log.Logger
	now      func() time.Time
}

// NewEditorManager creates a manager whose editors start from defaults.
// Sessions untouched for idle are removed by Sweep; zero disables expiry.
func NewEditorManager(defaults editor.Settings, idle time.Duration, logger *log.Logger) *EditorManager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &EditorManager{
		sessions: make(map[string]*EditorSession),
		defaults: defaults,
		idle:     idle,
		logger:   logger,
		now:      time.Now,
	}
}

// Create starts a new editor session for ownerID.
func (m *EditorManager) Create(ownerID string) *EditorSession {
	now := m.now()
	s := &EditorSession{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: now,
		lastUsed:  now,
		now:       m.now,
		editor: editor.New(
			editor.WithDefaults(m.defaults),
			editor.WithLogger(m.logger),
			editor.WithMaxSlots(constants.MaxSlotsPerSheet),
		),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug("editor session created", "id", s.ID)
	return s
}

// Get retrieves a session by ID.
func (m *EditorManager) Get(id string) *EditorSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Delete removes a session and closes its event streams.
func (m *EditorManager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.CloseAll("editor session deleted")
	}
	return ok
}

// Len returns the number of live sessions.
func (m *EditorManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the idle timeout and
// returns how many it removed.
func (m *EditorManager) Sweep() int {
	if m.idle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idle)

	m.mu.Lock()
	var expired []*EditorSession
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) && s.ListenerCount() == 0 {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.CloseAll("editor session expired")
	}
	if len(expired) > 0 {
		m.logger.Info("dropped idle editor sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is cancelled.
func (m *EditorManager) Run(ctx context.Context) {
	ticker := time.NewTicker(constants.SessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Shutdown closes every session's event streams.
func (m *EditorManager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*EditorSession)
	m.mu.Unlock()

	for _, s := range sessions {
		s.CloseAll("server shutting down")
	}
}
