package editor

import (
	"math"
	"regexp"
	"slices"

	"github.com/kozaktomas/photo-sheet/internal/layout"
	"github.com/kozaktomas/photo-sheet/internal/units"
)

// Size is a partial width/height update. Nil or NaN fields are ignored.
type Size struct {
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// MarginsUpdate is a partial margins update. Nil or NaN fields are ignored.
type MarginsUpdate struct {
	Top    *float64 `json:"top,omitempty"`
	Right  *float64 `json:"right,omitempty"`
	Bottom *float64 `json:"bottom,omitempty"`
	Left   *float64 `json:"left,omitempty"`
}

var colorPattern = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// ValidColor reports whether c is a #RGB or #RRGGBB color.
func ValidColor(c string) bool {
	return colorPattern.MatchString(c)
}

// assign stores v converted from u into dst unless v is nil, NaN or
// rejected by ok.
func assign(dst *float64, v *float64, u units.Unit, ok func(float64) bool) {
	if v == nil || math.IsNaN(*v) || !ok(*v) {
		return
	}
	*dst = units.ToCm(*v, u)
}

func checkUnit(u units.Unit) error {
	if !u.Valid() {
		return invalidf("unit %q", u)
	}
	return nil
}

// SetPageSize selects a named page size or Custom.
func (e *Editor) SetPageSize(p layout.PageSize) error {
	if !p.Valid() {
		return invalidf("page size %q", p)
	}
	e.update(func(s *Settings) { s.PageSize = p })
	return nil
}

// SetOrientation switches between portrait and landscape.
func (e *Editor) SetOrientation(o layout.Orientation) error {
	if !o.Valid() {
		return invalidf("orientation %q", o)
	}
	e.update(func(s *Settings) { s.Orientation = o })
	return nil
}

// SetPageDimensions updates the custom page size, given in u. The update is
// ignored unless the page size is Custom. Non-positive sides are ignored.
func (e *Editor) SetPageDimensions(size Size, u units.Unit) error {
	if err := checkUnit(u); err != nil {
		return err
	}
	if e.settings.PageSize != layout.PageCustom {
		return nil
	}
	e.update(func(s *Settings) {
		assign(&s.CustomPage.Width, size.Width, u, positive)
		assign(&s.CustomPage.Height, size.Height, u, positive)
	})
	return nil
}

// SetPageMargins updates any subset of the margins, given in u. A negative
// margin rejects the whole update.
func (e *Editor) SetPageMargins(m MarginsUpdate, u units.Unit) error {
	if err := checkUnit(u); err != nil {
		return err
	}
	for _, v := range []*float64{m.Top, m.Right, m.Bottom, m.Left} {
		if v != nil && *v < 0 {
			return invalidf("margin %v", *v)
		}
	}
	e.update(func(s *Settings) {
		assign(&s.Margins.Top, m.Top, u, nonNegative)
		assign(&s.Margins.Right, m.Right, u, nonNegative)
		assign(&s.Margins.Bottom, m.Bottom, u, nonNegative)
		assign(&s.Margins.Left, m.Left, u, nonNegative)
	})
	return nil
}

// SetPhotoSize updates the photo width and/or height, given in u.
// Non-positive values are ignored.
func (e *Editor) SetPhotoSize(size Size, u units.Unit) error {
	if err := checkUnit(u); err != nil {
		return err
	}
	e.update(func(s *Settings) {
		assign(&s.PhotoWidth, size.Width, u, positive)
		assign(&s.PhotoHeight, size.Height, u, positive)
	})
	return nil
}

// SetPhotoSpacing sets the gap between adjacent photos, given in u.
func (e *Editor) SetPhotoSpacing(v float64, u units.Unit) error {
	if err := checkUnit(u); err != nil {
		return err
	}
	if v < 0 {
		return invalidf("spacing %v", v)
	}
	e.update(func(s *Settings) { assign(&s.PhotoSpacing, &v, u, nonNegative) })
	return nil
}

// SetUnit changes the display unit. Geometry is unaffected.
func (e *Editor) SetUnit(u units.Unit) error {
	if err := checkUnit(u); err != nil {
		return err
	}
	e.update(func(s *Settings) { s.Unit = u })
	return nil
}

// SetCopies sets how many slots are auto-populated with the first image.
func (e *Editor) SetCopies(n int) error {
	if n < 0 {
		return invalidf("copies %d", n)
	}
	e.update(func(s *Settings) { s.Copies = n })
	return nil
}

// SetBorderWidth sets the slot border width in pixels, clamped to
// MinBorderWidth..MaxBorderWidth.
func (e *Editor) SetBorderWidth(w int) {
	e.update(func(s *Settings) { s.BorderWidth = clampBorder(w) })
}

// SetBorderColor sets the slot border color.
func (e *Editor) SetBorderColor(c string) error {
	if !ValidColor(c) {
		return invalidf("color %q", c)
	}
	e.update(func(s *Settings) { s.BorderColor = c })
	return nil
}

// SetCurrentSheet activates sheet i, clamped to the existing sheets.
func (e *Editor) SetCurrentSheet(i int) {
	i = min(max(i, 0), max(len(e.sheets)-1, 0))
	if i == e.currentSheet {
		return
	}
	e.currentSheet = i
	e.revision++
}

// SelectSlot selects a slot of the active sheet. It reports false and
// leaves the selection alone when the id is not on that sheet.
func (e *Editor) SelectSlot(id int) bool {
	if e.currentSheet >= len(e.sheets) || e.sheets[e.currentSheet].Index(id) < 0 {
		return false
	}
	if e.selected != nil && *e.selected == id {
		return true
	}
	e.selected = &id
	e.revision++
	return true
}

// ClearSelection drops the selection.
func (e *Editor) ClearSelection() {
	if e.selected == nil {
		return
	}
	e.selected = nil
	e.revision++
}

// SetImages replaces the image list and rebuilds the grid.
func (e *Editor) SetImages(images []Image) {
	e.images = slices.Clone(images)
	e.recompute()
}

// AddImages appends to the image list and rebuilds the grid.
func (e *Editor) AddImages(images ...Image) {
	if len(images) == 0 {
		return
	}
	e.images = append(e.images, images...)
	e.recompute()
}

// RemoveImage removes every image with the given source and rebuilds the
// grid. Slots already showing that source keep it.
func (e *Editor) RemoveImage(src string) bool {
	n := len(e.images)
	e.images = slices.DeleteFunc(e.images, func(img Image) bool { return img.Src == src })
	if len(e.images) == n {
		return false
	}
	e.recompute()
	return true
}

// Swap exchanges the content of two slots on the active sheet.
func (e *Editor) Swap(activeID, overID int) bool {
	return e.commitSheets(layout.Swap(e.sheets, e.currentSheet, activeID, overID))
}

// PlaceImage puts src into a slot of the active sheet, resetting its text
// and style.
func (e *Editor) PlaceImage(src string, slotID int) bool {
	return e.commitSheets(layout.PlaceImage(e.sheets, e.currentSheet, src, slotID))
}

// UpdateText sets the overlay text of the slot on every sheet.
func (e *Editor) UpdateText(slotID int, text string) bool {
	return e.commitSheets(layout.UpdateText(e.sheets, slotID, text))
}

// UpdateStyle applies a partial text style to the slot on every sheet.
func (e *Editor) UpdateStyle(slotID int, patch layout.StylePatch) (bool, error) {
	if err := patch.Validate(); err != nil {
		return false, invalidf("%v", err)
	}
	if patch.TextColor != nil && !ValidColor(*patch.TextColor) {
		return false, invalidf("color %q", *patch.TextColor)
	}
	if patch.Empty() {
		return false, nil
	}
	return e.commitSheets(layout.UpdateStyle(e.sheets, slotID, patch)), nil
}

// ToggleFit flips the slot between cover and contain on every sheet.
func (e *Editor) ToggleFit(slotID int) bool {
	return e.commitSheets(layout.ToggleFit(e.sheets, slotID))
}

// ResetLayout restores every layout setting to its default. Images, copies
// and slot content are kept.
func (e *Editor) ResetLayout() {
	next := e.defaults
	next.Copies = e.settings.Copies
	rebuild := next.geometryKey() != e.settings.geometryKey()
	e.settings = next
	if rebuild {
		e.recompute()
		return
	}
	e.currentSheet = 0
	e.selected = nil
	e.revision++
}

// ResetAll clears images and slot content and restores every setting,
// copies included, to its default.
func (e *Editor) ResetAll() {
	e.images = nil
	e.sheets = nil
	e.settings = e.defaults
	e.recompute()
}
