package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/editor"
	"github.com/kozaktomas/photo-sheet/internal/web/middleware"
)

const errHistoryNotFound = "history entry not found"

var errNothingToSave = errors.New("add at least one image before saving")

// HistoryHandler handles saved photosheet endpoints
type HistoryHandler struct {
	manager *EditorManager
	logger  *log.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(manager *EditorManager, logger *log.Logger) *HistoryHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &HistoryHandler{
		manager: manager,
		logger:  logger,
	}
}

// HistoryItem is a saved photosheet as sent to clients. State is only
// included when a single entry is requested.
type HistoryItem struct {
	ID           string          `json:"id"`
	ThumbnailURL string          `json:"thumbnailUrl"`
	Copies       int             `json:"copies"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	State        json.RawMessage `json:"state,omitempty"`
}

// HistoryListResponse is one page of history entries.
type HistoryListResponse struct {
	Items  []HistoryItem `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func toHistoryItem(p database.Photosheet) HistoryItem {
	item := HistoryItem{
		ID:           p.ID,
		ThumbnailURL: p.ThumbnailURL,
		Copies:       p.Copies,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if len(p.State) > 0 {
		item.State = json.RawMessage(p.State)
	}
	return item
}

// historyWriter returns the active history store, answering 503 when none
// is configured.
func historyWriter(w http.ResponseWriter, r *http.Request) (database.HistoryWriter, bool) {
	store, err := database.GetHistoryWriter(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "history is not available")
		return nil, false
	}
	return store, true
}

// ownedPhotosheet loads a history entry and checks it belongs to the
// requesting owner. Entries of other owners are reported as missing.
func (h *HistoryHandler) ownedPhotosheet(w http.ResponseWriter, r *http.Request, store database.HistoryReader, id string) (*database.Photosheet, bool) {
	p, err := store.GetPhotosheet(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load history entry", "id", sanitizeForLog(id), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load history entry")
		return nil, false
	}
	if p == nil || p.OwnerID != middleware.OwnerFromContext(r.Context()) {
		respondError(w, http.StatusNotFound, errHistoryNotFound)
		return nil, false
	}
	return p, true
}

// pageParams reads limit and offset query parameters.
func pageParams(r *http.Request) (limit, offset int) {
	limit = constants.DefaultHistoryPageSize
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = min(n, constants.MaxHistoryPageSize)
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && n > 0 {
		offset = n
	}
	return limit, offset
}

// List returns the owner's saved photosheets, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	store, ok := historyWriter(w, r)
	if !ok {
		return
	}
	limit, offset := pageParams(r)
	filter := database.HistoryFilter{
		OwnerID: middleware.OwnerFromContext(r.Context()),
		Limit:   limit,
		Offset:  offset,
	}

	sheets, err := store.ListPhotosheets(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list history", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	total, err := store.CountPhotosheets(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to count history", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list history")
		return
	}

	items := make([]HistoryItem, 0, len(sheets))
	for _, p := range sheets {
		items = append(items, toHistoryItem(p))
	}
	respondJSON(w, http.StatusOK, HistoryListResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

// Get returns one saved photosheet including its state.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := historyWriter(w, r)
	if !ok {
		return
	}
	p, ok := h.ownedPhotosheet(w, r, store, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toHistoryItem(*p))
}

// Delete removes one saved photosheet.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	store, ok := historyWriter(w, r)
	if !ok {
		return
	}
	p, ok := h.ownedPhotosheet(w, r, store, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := store.DeletePhotosheet(r.Context(), p.ID); err != nil {
		h.logger.Error("failed to delete history entry", "id", p.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete history entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BatchDelete removes several of the owner's saved photosheets.
func (h *HistoryHandler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if !decode(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "ids are required")
		return
	}
	if len(req.IDs) > constants.MaxBatchDelete {
		respondError(w, http.StatusBadRequest, "too many ids")
		return
	}

	store, ok := historyWriter(w, r)
	if !ok {
		return
	}
	n, err := store.DeletePhotosheets(r.Context(), middleware.OwnerFromContext(r.Context()), req.IDs)
	if err != nil {
		h.logger.Error("failed to delete history entries", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete history entries")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// Save stores the editor's current state in the history. With a
// historyId the existing entry is overwritten.
func (h *HistoryHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HistoryID string `json:"historyId"`
	}
	if !decode(w, r, &req) {
		return
	}
	s, ok := lookupSession(h.manager, w, r)
	if !ok {
		return
	}
	store, ok := historyWriter(w, r)
	if !ok {
		return
	}

	sheet := &database.Photosheet{OwnerID: s.OwnerID}
	status := http.StatusCreated
	if req.HistoryID != "" {
		existing, ok := h.ownedPhotosheet(w, r, store, req.HistoryID)
		if !ok {
			return
		}
		sheet = existing
		status = http.StatusOK
	}

	_, _, err := s.Do(func(e *editor.Editor) error {
		images := e.Images()
		if len(images) == 0 {
			return errNothingToSave
		}
		state, err := e.MarshalState()
		if err != nil {
			return err
		}
		sheet.State = state
		sheet.ThumbnailURL = images[0].Src
		sheet.Copies = e.Settings().Copies
		return nil
	})
	if errors.Is(err, errNothingToSave) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respondEditorError(w, err)
		return
	}

	if err := store.SavePhotosheet(r.Context(), sheet); err != nil {
		h.logger.Error("failed to save history entry", "editor", s.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save history entry")
		return
	}
	h.logger.Info("photosheet saved", "id", sheet.ID, "editor", s.ID)
	sheet.State = nil
	respondJSON(w, status, toHistoryItem(*sheet))
}

// Load replaces the editor's state with a saved photosheet.
func (h *HistoryHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HistoryID string `json:"historyId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.HistoryID == "" {
		respondError(w, http.StatusBadRequest, "historyId is required")
		return
	}
	s, ok := lookupSession(h.manager, w, r)
	if !ok {
		return
	}
	store, ok := historyWriter(w, r)
	if !ok {
		return
	}
	p, ok := h.ownedPhotosheet(w, r, store, req.HistoryID)
	if !ok {
		return
	}

	state, changed, err := s.Do(func(e *editor.Editor) error {
		return e.LoadState(p.State)
	})
	if err != nil {
		h.logger.Warn("failed to load history entry", "id", p.ID, "error", err)
		respondEditorError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, MutationResponse{Changed: changed, State: state})
}
