package editor

import (
	"github.com/kozaktomas/photo-sheet/internal/layout"
	"github.com/kozaktomas/photo-sheet/internal/units"
)

// Border width bounds in pixels.
const (
	MinBorderWidth = 0
	MaxBorderWidth = 10
)

// Settings holds every user-controlled input of an editor. Lengths are in
// centimeters regardless of Unit, which only selects the display unit.
type Settings struct {
	PageSize     layout.PageSize       `yaml:"pageSize" json:"pageSize"`
	Orientation  layout.Orientation    `yaml:"orientation" json:"orientation"`
	CustomPage   layout.PageDimensions `yaml:"customPage" json:"customPage"`
	Margins      layout.Margins        `yaml:"margins" json:"margins"`
	PhotoWidth   float64               `yaml:"photoWidth" json:"photoWidth"`
	PhotoHeight  float64               `yaml:"photoHeight" json:"photoHeight"`
	PhotoSpacing float64               `yaml:"photoSpacing" json:"photoSpacing"`
	Copies       int                   `yaml:"copies" json:"copies"`
	BorderWidth  int                   `yaml:"borderWidth" json:"borderWidth"`
	BorderColor  string                `yaml:"borderColor" json:"borderColor"`
	Unit         units.Unit            `yaml:"unit" json:"unit"`
}

// DefaultSettings returns the settings of a fresh editor: one 3.15x4.15cm
// passport photo on portrait A4.
func DefaultSettings() Settings {
	a4, _ := layout.NominalDimensions(layout.PageA4)
	return Settings{
		PageSize:     layout.PageA4,
		Orientation:  layout.Portrait,
		CustomPage:   a4,
		Margins:      layout.Margins{Top: 0, Right: 0.3, Bottom: 1, Left: 0.3},
		PhotoWidth:   3.15,
		PhotoHeight:  4.15,
		PhotoSpacing: 0.3,
		Copies:       1,
		BorderWidth:  2,
		BorderColor:  "#000000",
		Unit:         units.Centimeters,
	}
}

// Page returns the resolved page dimensions in cm.
func (s Settings) Page() layout.PageDimensions {
	return layout.ResolvePage(s.PageSize, s.CustomPage, s.Orientation)
}

// GridConfig returns the grid configuration derived from s.
func (s Settings) GridConfig() layout.GridConfig {
	return layout.NewGridConfig(s.Page(), s.Margins, s.PhotoWidth, s.PhotoHeight, s.PhotoSpacing)
}

// Validate reports the first enumerated or range field that is out of bounds.
func (s Settings) Validate() error {
	if !s.PageSize.Valid() {
		return invalidf("page size %q", s.PageSize)
	}
	if !s.Orientation.Valid() {
		return invalidf("orientation %q", s.Orientation)
	}
	if !s.Unit.Valid() {
		return invalidf("unit %q", s.Unit)
	}
	if s.Margins.Top < 0 || s.Margins.Right < 0 || s.Margins.Bottom < 0 || s.Margins.Left < 0 {
		return invalidf("negative margin %+v", s.Margins)
	}
	if s.PhotoSpacing < 0 {
		return invalidf("spacing %v", s.PhotoSpacing)
	}
	if s.PhotoWidth <= 0 || s.PhotoHeight <= 0 {
		return invalidf("photo size %vx%v", s.PhotoWidth, s.PhotoHeight)
	}
	if s.CustomPage.Width <= 0 || s.CustomPage.Height <= 0 {
		return invalidf("custom page size %vx%v", s.CustomPage.Width, s.CustomPage.Height)
	}
	if s.Copies < 0 {
		return invalidf("copies %d", s.Copies)
	}
	if s.BorderWidth < MinBorderWidth || s.BorderWidth > MaxBorderWidth {
		return invalidf("border width %d", s.BorderWidth)
	}
	return nil
}

// geometryKey captures the inputs that shape the grid.
type geometryKey struct {
	page    layout.PageDimensions
	margins layout.Margins
	photoW  float64
	photoH  float64
	spacing float64
	copies  int
}

func (s Settings) geometryKey() geometryKey {
	return geometryKey{
		page:    s.Page(),
		margins: s.Margins,
		photoW:  s.PhotoWidth,
		photoH:  s.PhotoHeight,
		spacing: s.PhotoSpacing,
		copies:  s.Copies,
	}
}

func nonNegative(v float64) bool { return v >= 0 }

func positive(v float64) bool { return v > 0 }

func clampBorder(w int) int {
	return min(max(w, MinBorderWidth), MaxBorderWidth)
}
