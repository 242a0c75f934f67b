// Package editor holds the state of one photo-sheet editing session: the
// layout inputs, the uploaded images and the derived sheets. Every change to
// a geometry input rebuilds the grid and reconciles slot content back into
// it; content edits work on the existing sheets.
//
// An Editor is not safe for concurrent use. Callers sharing one across
// goroutines serialize access themselves.
package editor

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/kozaktomas/photo-sheet/internal/layout"
	"github.com/kozaktomas/photo-sheet/internal/units"
)

// Image is an uploaded image reference with its pixel dimensions.
type Image struct {
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Editor owns the layout inputs and the sheets derived from them.
type Editor struct {
	settings     Settings
	defaults     Settings
	images       []Image
	sheets       []layout.Sheet
	grid         layout.Grid
	currentSheet int
	selected     *int
	revision     uint64

	logger   *log.Logger
	maxSlots int
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger makes the editor log grid rebuilds at debug level.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDefaults replaces DefaultSettings as the starting and reset state.
func WithDefaults(s Settings) Option {
	return func(e *Editor) {
		e.defaults = s
	}
}

// WithMaxSlots caps the grid size. A layout that would exceed n slots
// produces an empty grid. Zero means no cap.
func WithMaxSlots(n int) Option {
	return func(e *Editor) {
		e.maxSlots = max(n, 0)
	}
}

// New returns an editor initialized with the default settings and an
// already computed grid.
func New(opts ...Option) *Editor {
	e := &Editor{
		defaults: DefaultSettings(),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.settings = e.defaults
	e.recompute()
	return e
}

// Settings returns the current inputs.
func (e *Editor) Settings() Settings {
	return e.settings
}

// Defaults returns the settings used by New and the reset operations.
func (e *Editor) Defaults() Settings {
	return e.defaults
}

// Images returns a copy of the uploaded image list.
func (e *Editor) Images() []Image {
	return slices.Clone(e.images)
}

// Sheets returns a copy of the current sheets. Later changes to the editor
// do not affect the returned value.
func (e *Editor) Sheets() []layout.Sheet {
	return layout.Clone(e.sheets)
}

// Grid returns the geometry of the last rebuild.
func (e *Editor) Grid() layout.Grid {
	return layout.Grid{
		Columns: e.grid.Columns,
		Rows:    e.grid.Rows,
		Boxes:   slices.Clone(e.grid.Boxes),
	}
}

// Page returns the resolved page dimensions in cm.
func (e *Editor) Page() layout.PageDimensions {
	return e.settings.Page()
}

// CurrentSheet returns the index of the active sheet.
func (e *Editor) CurrentSheet() int {
	return e.currentSheet
}

// SelectedSlot returns the selected slot id, if any.
func (e *Editor) SelectedSlot() (int, bool) {
	if e.selected == nil {
		return 0, false
	}
	return *e.selected, true
}

// Revision increases by one with every committed change.
func (e *Editor) Revision() uint64 {
	return e.revision
}

// recompute rebuilds the grid from the current settings and reconciles the
// existing content into it. It resets the active sheet and the selection.
func (e *Editor) recompute() {
	cfg := e.settings.GridConfig()

	var grid layout.Grid
	if n := cfg.SlotCount(); e.maxSlots > 0 && n > e.maxSlots {
		e.logger.Warn("layout exceeds slot limit, grid left empty", "slots", n, "limit", e.maxSlots)
	} else {
		grid = layout.ComputeGrid(cfg)
	}

	e.grid = grid
	e.sheets = layout.Reconcile(grid, e.sheets, e.autoSrc(), e.settings.Copies)
	e.currentSheet = 0
	e.selected = nil
	e.revision++

	e.logger.Debug("recomputed grid",
		"columns", grid.Columns,
		"rows", grid.Rows,
		"slots", grid.Len(),
		"copies", e.settings.Copies,
	)
}

func (e *Editor) autoSrc() string {
	if len(e.images) == 0 {
		return ""
	}
	return e.images[0].Src
}

// update applies fn to a copy of the settings and commits the result. A
// change to a geometry input triggers a rebuild.
func (e *Editor) update(fn func(s *Settings)) {
	next := e.settings
	fn(&next)
	if next == e.settings {
		return
	}
	rebuild := next.geometryKey() != e.settings.geometryKey()
	e.settings = next
	if rebuild {
		e.recompute()
		return
	}
	e.revision++
}

// commitSheets stores the result of a content mutation.
func (e *Editor) commitSheets(sheets []layout.Sheet, changed bool) bool {
	if !changed {
		return false
	}
	e.sheets = sheets
	e.revision++
	return true
}

// Display re-expresses the stored lengths in the current display unit.
type Display struct {
	Unit             units.Unit     `json:"unit"`
	PageWidth        float64        `json:"pageWidth"`
	PageHeight       float64        `json:"pageHeight"`
	CustomPageWidth  float64        `json:"customPageWidth"`
	CustomPageHeight float64        `json:"customPageHeight"`
	Margins          layout.Margins `json:"margins"`
	PhotoWidth       float64        `json:"photoWidth"`
	PhotoHeight      float64        `json:"photoHeight"`
	PhotoSpacing     float64        `json:"photoSpacing"`
}

// Display returns the display values. They are derived on every call and
// never stored.
func (e *Editor) Display() Display {
	return displayOf(e.settings)
}

func displayOf(s Settings) Display {
	u := s.Unit
	page := s.Page()
	conv := func(cm float64) float64 { return units.FromCm(cm, u) }
	return Display{
		Unit:             u,
		PageWidth:        conv(page.Width),
		PageHeight:       conv(page.Height),
		CustomPageWidth:  conv(s.CustomPage.Width),
		CustomPageHeight: conv(s.CustomPage.Height),
		Margins: layout.Margins{
			Top:    conv(s.Margins.Top),
			Right:  conv(s.Margins.Right),
			Bottom: conv(s.Margins.Bottom),
			Left:   conv(s.Margins.Left),
		},
		PhotoWidth:   conv(s.PhotoWidth),
		PhotoHeight:  conv(s.PhotoHeight),
		PhotoSpacing: conv(s.PhotoSpacing),
	}
}
