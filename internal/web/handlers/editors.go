package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/editor"
	"github.com/kozaktomas/photo-sheet/internal/layout"
	"github.com/kozaktomas/photo-sheet/internal/units"
	"github.com/kozaktomas/photo-sheet/internal/web/middleware"
)

var (
	errImageNotFound = errors.New("image not found")
	errTooManyImages = fmt.Errorf("an editor holds at most %d images", constants.MaxImagesPerEditor)
)

// EditorsHandler handles editor session endpoints
type EditorsHandler struct {
	manager *EditorManager
	images  *ImageStore
	logger  *log.Logger
}

// NewEditorsHandler creates a new editors handler
func NewEditorsHandler(manager *EditorManager, images *ImageStore, logger *log.Logger) *EditorsHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &EditorsHandler{
		manager: manager,
		images:  images,
		logger:  logger,
	}
}

// MutationResponse is returned by every endpoint that changes an editor.
// Changed is false when the request was a no-op, such as an unknown slot id.
type MutationResponse struct {
	Changed bool          `json:"changed"`
	State   StateResponse `json:"state"`
}

// lookupSession finds the session named by the URL and checks it belongs
// to the requesting owner.
func lookupSession(m *EditorManager, w http.ResponseWriter, r *http.Request) (*EditorSession, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing editor ID")
		return nil, false
	}
	s := m.Get(id)
	if s == nil || s.OwnerID != middleware.OwnerFromContext(r.Context()) {
		respondError(w, http.StatusNotFound, "editor not found")
		return nil, false
	}
	return s, true
}

// respondEditorError maps editor and handler errors to HTTP statuses.
func respondEditorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrInvalidValue), errors.Is(err, errTooManyImages):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errImageNotFound), errors.Is(err, editor.ErrNoState):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, editor.ErrInvalidState):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// apply runs fn against the session's editor and answers with the new state.
func (h *EditorsHandler) apply(w http.ResponseWriter, r *http.Request, fn func(e *editor.Editor) error) {
	s, ok := lookupSession(h.manager, w, r)
	if !ok {
		return
	}
	state, changed, err := s.Do(fn)
	if err != nil {
		respondEditorError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, MutationResponse{Changed: changed, State: state})
}

// decode reads the JSON body, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return false
	}
	return true
}

// unitOr returns u when set, otherwise the editor's display unit.
func unitOr(u *units.Unit, e *editor.Editor) units.Unit {
	if u != nil {
		return *u
	}
	return e.Settings().Unit
}

func validUnit(u *units.Unit) bool {
	return u == nil || u.Valid()
}

// Create starts a new editor session for the requesting owner.
func (h *EditorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.manager.Create(middleware.OwnerFromContext(r.Context()))
	respondJSON(w, http.StatusCreated, s.State())
}

// Get returns the editor state.
func (h *EditorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(h.manager, w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.State())
}

// Delete ends the editor session.
func (h *EditorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(h.manager, w, r)
	if !ok {
		return
	}
	h.manager.Delete(s.ID)
	w.WriteHeader(http.StatusNoContent)
}

type pageRequest struct {
	PageSize    *layout.PageSize    `json:"pageSize"`
	Orientation *layout.Orientation `json:"orientation"`
	Width       *float64            `json:"width"`
	Height      *float64            `json:"height"`
	Unit        *units.Unit         `json:"unit"`
}

// SetPage updates the page size, orientation and custom dimensions.
func (h *EditorsHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if !decode(w, r, &req) {
		return
	}
	switch {
	case req.PageSize != nil && !req.PageSize.Valid():
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid page size %q", *req.PageSize))
		return
	case req.Orientation != nil && !req.Orientation.Valid():
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid orientation %q", *req.Orientation))
		return
	case !validUnit(req.Unit):
		respondError(w, http.StatusBadRequest, "invalid unit")
		return
	}

	h.apply(w, r, func(e *editor.Editor) error {
		if req.PageSize != nil {
			if err := e.SetPageSize(*req.PageSize); err != nil {
				return err
			}
		}
		if req.Orientation != nil {
			if err := e.SetOrientation(*req.Orientation); err != nil {
				return err
			}
		}
		if req.Width != nil || req.Height != nil {
			return e.SetPageDimensions(editor.Size{Width: req.Width, Height: req.Height}, unitOr(req.Unit, e))
		}
		return nil
	})
}

type marginsRequest struct {
	editor.MarginsUpdate
	Unit *units.Unit `json:"unit"`
}

// SetMargins updates any of the four page margins.
func (h *EditorsHandler) SetMargins(w http.ResponseWriter, r *http.Request) {
	var req marginsRequest
	if !decode(w, r, &req) {
		return
	}
	if !validUnit(req.Unit) {
		respondError(w, http.StatusBadRequest, "invalid unit")
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		return e.SetPageMargins(req.MarginsUpdate, unitOr(req.Unit, e))
	})
}

type photoSizeRequest struct {
	editor.Size
	Unit *units.Unit `json:"unit"`
}

// SetPhotoSize updates the photo width and height.
func (h *EditorsHandler) SetPhotoSize(w http.ResponseWriter, r *http.Request) {
	var req photoSizeRequest
	if !decode(w, r, &req) {
		return
	}
	if !validUnit(req.Unit) {
		respondError(w, http.StatusBadRequest, "invalid unit")
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		return e.SetPhotoSize(req.Size, unitOr(req.Unit, e))
	})
}

type spacingRequest struct {
	Value *float64    `json:"value"`
	Unit  *units.Unit `json:"unit"`
}

// SetSpacing updates the gap between photos.
func (h *EditorsHandler) SetSpacing(w http.ResponseWriter, r *http.Request) {
	var req spacingRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Value == nil {
		respondError(w, http.StatusBadRequest, "value is required")
		return
	}
	if !validUnit(req.Unit) {
		respondError(w, http.StatusBadRequest, "invalid unit")
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		return e.SetPhotoSpacing(*req.Value, unitOr(req.Unit, e))
	})
}

// SetUnit switches the display unit.
func (h *EditorsHandler) SetUnit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Unit units.Unit `json:"unit"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		return e.SetUnit(req.Unit)
	})
}

// SetCopies sets how many slots are auto-filled with the first image.
func (h *EditorsHandler) SetCopies(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Copies *int `json:"copies"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Copies == nil {
		respondError(w, http.StatusBadRequest, "copies is required")
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		return e.SetCopies(*req.Copies)
	})
}

// SetBorder updates the border width and color.
func (h *EditorsHandler) SetBorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width *int    `json:"width"`
		Color *string `json:"color"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Color != nil && !editor.ValidColor(*req.Color) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid color %q", *req.Color))
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		if req.Width != nil {
			e.SetBorderWidth(*req.Width)
		}
		if req.Color != nil {
			return e.SetBorderColor(*req.Color)
		}
		return nil
	})
}

// SetSheet selects the active sheet.
func (h *EditorsHandler) SetSheet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Index == nil {
		respondError(w, http.StatusBadRequest, "index is required")
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		e.SetCurrentSheet(*req.Index)
		return nil
	})
}

// SetSelection selects a slot on the active sheet, or clears the
// selection when slotId is null.
func (h *EditorsHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SlotID *int `json:"slotId"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		if req.SlotID == nil {
			e.ClearSelection()
			return nil
		}
		e.SelectSlot(*req.SlotID)
		return nil
	})
}

// UploadImages stores multipart "files" and appends them to the editor.
func (h *EditorsHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(h.manager, w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	switch {
	case len(files) == 0:
		respondError(w, http.StatusBadRequest, "no files provided")
		return
	case len(files) > constants.MaxUploadFiles:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("at most %d files per upload", constants.MaxUploadFiles))
		return
	case len(s.State().Images)+len(files) > constants.MaxImagesPerEditor:
		respondError(w, http.StatusBadRequest, errTooManyImages.Error())
		return
	}

	images, err := h.images.SaveAll(files)
	if err != nil {
		h.logger.Warn("upload rejected", "editor", s.ID, "error", sanitizeForLog(err.Error()))
		respondError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}

	state, changed, err := h.attachImages(s, images)
	if err != nil {
		respondEditorError(w, err)
		return
	}
	h.logger.Debug("images uploaded", "editor", s.ID, "count", len(images))
	respondJSON(w, http.StatusOK, MutationResponse{Changed: changed, State: state})
}

// attachImages appends stored uploads to the session. The limit is checked
// again under the session lock; when the editor refuses them the files are
// discarded.
func (h *EditorsHandler) attachImages(s *EditorSession, images []editor.Image) (StateResponse, bool, error) {
	state, changed, err := s.Do(func(e *editor.Editor) error {
		if len(e.Images())+len(images) > constants.MaxImagesPerEditor {
			return errTooManyImages
		}
		e.AddImages(images...)
		return nil
	})
	if err != nil {
		h.images.Discard(images...)
		return state, false, err
	}
	return state, changed, nil
}

// RemoveImage drops the image at the URL index from the editor.
func (h *EditorsHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	index, ok := intParam(r, "index")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid image index")
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		images := e.Images()
		if index < 0 || index >= len(images) {
			return errImageNotFound
		}
		e.RemoveImage(images[index].Src)
		return nil
	})
}

// Swap exchanges two slots on the active sheet.
func (h *EditorsHandler) Swap(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActiveID *int `json:"activeId"`
		OverID   *int `json:"overId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.ActiveID == nil || req.OverID == nil {
		respondError(w, http.StatusBadRequest, "activeId and overId are required")
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		e.Swap(*req.ActiveID, *req.OverID)
		return nil
	})
}

// slotID parses the slotId URL parameter, answering 400 on failure.
func slotID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := intParam(r, "slotId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid slot ID")
	}
	return id, ok
}

// PlaceImage puts one of the editor's images into a slot.
func (h *EditorsHandler) PlaceImage(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(w, r)
	if !ok {
		return
	}
	var req struct {
		ImageSrc string `json:"imageSrc"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.ImageSrc == "" {
		respondError(w, http.StatusBadRequest, "imageSrc is required")
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		known := slices.ContainsFunc(e.Images(), func(img editor.Image) bool { return img.Src == req.ImageSrc })
		if !known {
			return errImageNotFound
		}
		e.PlaceImage(req.ImageSrc, id)
		return nil
	})
}

// UpdateText sets the overlay text of a slot. Text is stored in NFC so
// visually equal strings compare equal.
func (h *EditorsHandler) UpdateText(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(w, r)
	if !ok {
		return
	}
	var req struct {
		Text *string `json:"text"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Text == nil {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	text := norm.NFC.String(*req.Text)
	h.apply(w, r, func(e *editor.Editor) error {
		e.UpdateText(id, text)
		return nil
	})
}

// UpdateStyle applies a partial text style to a slot.
func (h *EditorsHandler) UpdateStyle(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(w, r)
	if !ok {
		return
	}
	var patch layout.StylePatch
	if !decode(w, r, &patch) {
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		_, err := e.UpdateStyle(id, patch)
		return err
	})
}

// ToggleFit flips a slot between cover and contain.
func (h *EditorsHandler) ToggleFit(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(w, r)
	if !ok {
		return
	}
	h.apply(w, r, func(e *editor.Editor) error {
		e.ToggleFit(id)
		return nil
	})
}

// ResetLayout restores the default layout settings.
func (h *EditorsHandler) ResetLayout(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(e *editor.Editor) error {
		e.ResetLayout()
		return nil
	})
}

// Reset clears the editor back to its initial state.
func (h *EditorsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(e *editor.Editor) error {
		e.ResetAll()
		return nil
	})
}
