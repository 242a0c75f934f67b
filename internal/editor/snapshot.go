package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/kozaktomas/photo-sheet/internal/layout"
	"github.com/kozaktomas/photo-sheet/internal/units"
)

// Snapshot is the persisted form of an editor. Lengths are in cm. The
// display* fields are informational and ignored by LoadState.
type Snapshot struct {
	Images             []Image            `json:"images"`
	Copies             int                `json:"copies"`
	Photos             []layout.Sheet     `json:"photos"`
	CurrentSheet       int                `json:"currentSheet"`
	SelectedPhotoID    *int               `json:"selectedPhotoId"`
	BorderWidth        int                `json:"borderWidth"`
	BorderColor        string             `json:"borderColor"`
	PhotoSpacing       float64            `json:"photoSpacing"`
	PhotoWidthCm       float64            `json:"photoWidthCm"`
	PhotoHeightCm      float64            `json:"photoHeightCm"`
	Unit               units.Unit         `json:"unit"`
	PageSize           layout.PageSize    `json:"pageSize"`
	PageWidthCm        float64            `json:"pageWidthCm"`
	PageHeightCm       float64            `json:"pageHeightCm"`
	CustomPageWidthCm  float64            `json:"customPageWidthCm"`
	CustomPageHeightCm float64            `json:"customPageHeightCm"`
	Orientation        layout.Orientation `json:"orientation"`
	PageMarginsCm      layout.Margins     `json:"pageMarginsCm"`
	DisplayPhotoWidth  float64            `json:"displayPhotoWidth"`
	DisplayPhotoHeight float64            `json:"displayPhotoHeight"`
	DisplayPageWidth   float64            `json:"displayPageWidth"`
	DisplayPageHeight  float64            `json:"displayPageHeight"`
	DisplayPageMargins layout.Margins     `json:"displayPageMargins"`
}

// SerializeState returns a self-contained copy of the editor state.
func (e *Editor) SerializeState() Snapshot {
	s := e.settings
	page := s.Page()
	d := displayOf(s)

	var selected *int
	if e.selected != nil {
		id := *e.selected
		selected = &id
	}
	images := e.Images()
	if images == nil {
		images = []Image{}
	}

	return Snapshot{
		Images:             images,
		Copies:             s.Copies,
		Photos:             e.Sheets(),
		CurrentSheet:       e.currentSheet,
		SelectedPhotoID:    selected,
		BorderWidth:        s.BorderWidth,
		BorderColor:        s.BorderColor,
		PhotoSpacing:       s.PhotoSpacing,
		PhotoWidthCm:       s.PhotoWidth,
		PhotoHeightCm:      s.PhotoHeight,
		Unit:               s.Unit,
		PageSize:           s.PageSize,
		PageWidthCm:        page.Width,
		PageHeightCm:       page.Height,
		CustomPageWidthCm:  s.CustomPage.Width,
		CustomPageHeightCm: s.CustomPage.Height,
		Orientation:        s.Orientation,
		PageMarginsCm:      s.Margins,
		DisplayPhotoWidth:  d.PhotoWidth,
		DisplayPhotoHeight: d.PhotoHeight,
		DisplayPageWidth:   d.PageWidth,
		DisplayPageHeight:  d.PageHeight,
		DisplayPageMargins: d.Margins,
	}
}

// MarshalState encodes SerializeState as JSON.
func (e *Editor) MarshalState() ([]byte, error) {
	data, err := json.Marshal(e.SerializeState())
	if err != nil {
		return nil, fmt.Errorf("encoding editor state: %w", err)
	}
	return data, nil
}

// LoadSnapshot restores a typed snapshot with the same rules as LoadState.
func (e *Editor) LoadSnapshot(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return e.LoadState(data)
}

// LoadState restores the editor from JSON produced by MarshalState. It
// returns ErrNoState for empty input and ErrInvalidState when the input is
// not a JSON object. Individual fields that are missing or malformed fall
// back to the editor defaults. On error the editor is left unchanged.
//
// Stored sheets are restored as saved when they match the geometry of the
// restored settings; otherwise the grid is rebuilt and the stored content
// reconciled into it.
func (e *Editor) LoadState(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrNoState
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	d := &fieldDecoder{fields: fields, editor: e}
	def := e.defaults
	s := def

	s.Copies = d.int("copies", def.Copies, func(v int) bool { return v >= 0 })
	s.BorderWidth = clampBorder(d.int("borderWidth", def.BorderWidth, nil))
	s.BorderColor = d.string("borderColor", def.BorderColor, ValidColor)
	s.PhotoSpacing = d.float("photoSpacing", def.PhotoSpacing, nonNegative)
	s.PhotoWidth = d.float("photoWidthCm", def.PhotoWidth, positive)
	s.PhotoHeight = d.float("photoHeightCm", def.PhotoHeight, positive)
	s.Unit = units.Unit(d.string("unit", string(def.Unit), func(v string) bool { return units.Unit(v).Valid() }))
	s.PageSize = layout.PageSize(d.string("pageSize", string(def.PageSize), func(v string) bool { return layout.PageSize(v).Valid() }))
	s.Orientation = layout.Orientation(d.string("orientation", string(def.Orientation), func(v string) bool { return layout.Orientation(v).Valid() }))
	s.Margins = d.margins("pageMarginsCm", def.Margins)
	s.CustomPage = d.customPage(s, def.CustomPage)

	var images []Image
	d.decode("images", &images)
	var stored []layout.Sheet
	d.decode("photos", &stored)

	e.settings = s
	e.images = images
	e.restoreSheets(stored)

	if cur := d.int("currentSheet", 0, nil); cur > 0 && cur < len(e.sheets) {
		e.currentSheet = cur
	}
	var selected *int
	d.decode("selectedPhotoId", &selected)
	if selected != nil && e.currentSheet < len(e.sheets) && e.sheets[e.currentSheet].Index(*selected) >= 0 {
		e.selected = selected
	}
	return nil
}

// restoreSheets installs stored as-is when it fits the current geometry and
// falls back to a rebuild otherwise.
func (e *Editor) restoreSheets(stored []layout.Sheet) {
	e.sheets = nil
	e.recompute()
	if matchesGrid(stored, e.grid) {
		sheet := make(layout.Sheet, len(stored[0]))
		for i, s := range stored[0] {
			sheet[i] = layout.NormalizeSlot(s)
		}
		e.sheets = []layout.Sheet{sheet}
		return
	}
	e.sheets = layout.Reconcile(e.grid, stored, e.autoSrc(), e.settings.Copies)
}

func matchesGrid(stored []layout.Sheet, grid layout.Grid) bool {
	if len(stored) != 1 || len(stored[0]) != grid.Len() || grid.Empty() {
		return false
	}
	const eps = 1e-6
	for i, s := range stored[0] {
		b := grid.Boxes[i]
		if s.ID != i ||
			math.Abs(s.X-b.X) > eps || math.Abs(s.Y-b.Y) > eps ||
			math.Abs(s.Width-b.Width) > eps || math.Abs(s.Height-b.Height) > eps {
			return false
		}
	}
	return true
}

// fieldDecoder decodes snapshot fields one at a time so that a bad field
// only loses itself.
type fieldDecoder struct {
	fields map[string]json.RawMessage
	editor *Editor
}

func (d *fieldDecoder) decode(key string, dst any) bool {
	raw, ok := d.fields[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		d.editor.logger.Warn("malformed snapshot field, using default", "field", key, "err", err)
		return false
	}
	return true
}

func (d *fieldDecoder) int(key string, def int, ok func(int) bool) int {
	var v float64
	if !d.decode(key, &v) || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return def
	}
	if ok != nil && !ok(int(v)) {
		return def
	}
	return int(v)
}

func (d *fieldDecoder) float(key string, def float64, ok func(float64) bool) float64 {
	var v float64
	if !d.decode(key, &v) || !ok(v) {
		return def
	}
	return v
}

func (d *fieldDecoder) string(key, def string, ok func(string) bool) string {
	var v string
	if !d.decode(key, &v) || (ok != nil && !ok(v)) {
		return def
	}
	return v
}

func (d *fieldDecoder) margins(key string, def layout.Margins) layout.Margins {
	var raw map[string]json.RawMessage
	if !d.decode(key, &raw) {
		return def
	}
	sub := &fieldDecoder{fields: raw, editor: d.editor}
	return layout.Margins{
		Top:    sub.float("top", def.Top, nonNegative),
		Right:  sub.float("right", def.Right, nonNegative),
		Bottom: sub.float("bottom", def.Bottom, nonNegative),
		Left:   sub.float("left", def.Left, nonNegative),
	}
}

// customPage reads the custom page size. Older snapshots only carry the
// resolved page size, which for a Custom page is the custom size rotated by
// the orientation.
func (d *fieldDecoder) customPage(s Settings, def layout.PageDimensions) layout.PageDimensions {
	if _, ok := d.fields["customPageWidthCm"]; ok {
		return layout.PageDimensions{
			Width:  d.float("customPageWidthCm", def.Width, positive),
			Height: d.float("customPageHeightCm", def.Height, positive),
		}
	}
	if s.PageSize != layout.PageCustom {
		return def
	}
	w := d.float("pageWidthCm", def.Width, positive)
	h := d.float("pageHeightCm", def.Height, positive)
	if s.Orientation == layout.Landscape {
		w, h = h, w
	}
	return layout.PageDimensions{Width: w, Height: h}
}
