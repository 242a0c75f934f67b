package layout

import (
	"math"

	"github.com/kozaktomas/photo-sheet/internal/units"
)

// GridConfig holds the grid inputs in millimeters.
type GridConfig struct {
	PageWidthMM    float64
	PageHeightMM   float64
	MarginTopMM    float64
	MarginRightMM  float64
	MarginBottomMM float64
	MarginLeftMM   float64
	PhotoWidthMM   float64
	PhotoHeightMM  float64
	SpacingMM      float64 // gap between adjacent slots, both axes
}

// NewGridConfig scales centimeter inputs to a millimeter grid configuration.
func NewGridConfig(page PageDimensions, margins Margins, photoWidth, photoHeight, spacing float64) GridConfig {
	m := margins.Scale(units.MmPerCm)
	return GridConfig{
		PageWidthMM:    page.Width * units.MmPerCm,
		PageHeightMM:   page.Height * units.MmPerCm,
		MarginTopMM:    m.Top,
		MarginRightMM:  m.Right,
		MarginBottomMM: m.Bottom,
		MarginLeftMM:   m.Left,
		PhotoWidthMM:   photoWidth * units.MmPerCm,
		PhotoHeightMM:  photoHeight * units.MmPerCm,
		SpacingMM:      spacing * units.MmPerCm,
	}
}

// PrintableWidth returns the usable horizontal space.
func (c GridConfig) PrintableWidth() float64 {
	return c.PageWidthMM - c.MarginLeftMM - c.MarginRightMM
}

// PrintableHeight returns the usable vertical space.
func (c GridConfig) PrintableHeight() float64 {
	return c.PageHeightMM - c.MarginTopMM - c.MarginBottomMM
}

// PitchX returns the distance between the left edges of adjacent columns.
func (c GridConfig) PitchX() float64 {
	return c.PhotoWidthMM + c.SpacingMM
}

// PitchY returns the distance between the top edges of adjacent rows.
func (c GridConfig) PitchY() float64 {
	return c.PhotoHeightMM + c.SpacingMM
}

// Columns returns how many photos fit across the printable width.
// The extra spacing added to the printable width cancels the missing
// trailing gap after the last column.
func (c GridConfig) Columns() int {
	if !c.usable() {
		return 0
	}
	return fitCount(c.PrintableWidth(), c.SpacingMM, c.PitchX())
}

// Rows returns how many photos fit down the printable height.
func (c GridConfig) Rows() int {
	if !c.usable() {
		return 0
	}
	return fitCount(c.PrintableHeight(), c.SpacingMM, c.PitchY())
}

// SlotCount returns Columns()*Rows().
func (c GridConfig) SlotCount() int {
	return c.Columns() * c.Rows()
}

// SlotOffset returns the absolute top-left corner of a 0-indexed cell.
func (c GridConfig) SlotOffset(col, row int) (x, y float64) {
	return c.MarginLeftMM + float64(col)*c.PitchX(), c.MarginTopMM + float64(row)*c.PitchY()
}

// SlotRect returns the absolute rectangle of the slot at row-major index i.
func (c GridConfig) SlotRect(i, columns int) SlotRect {
	x, y := c.SlotOffset(i%columns, i/columns)
	return SlotRect{X: x, Y: y, W: c.PhotoWidthMM, H: c.PhotoHeightMM}
}

// usable reports whether the configuration can hold at least one photo.
func (c GridConfig) usable() bool {
	for _, v := range []float64{
		c.PageWidthMM, c.PageHeightMM,
		c.MarginTopMM, c.MarginRightMM, c.MarginBottomMM, c.MarginLeftMM,
		c.PhotoWidthMM, c.PhotoHeightMM, c.SpacingMM,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if c.PhotoWidthMM <= 0 || c.PhotoHeightMM <= 0 {
		return false
	}
	if c.PrintableWidth() <= 0 || c.PrintableHeight() <= 0 {
		return false
	}
	return c.PitchX() > 0 && c.PitchY() > 0
}

// maxAxisCount bounds a single axis so the int conversion cannot overflow.
const maxAxisCount = 1 << 20

func fitCount(printable, spacing, pitch float64) int {
	n := math.Floor((printable + spacing) / pitch)
	if n <= 0 {
		return 0
	}
	if n > maxAxisCount {
		return maxAxisCount
	}
	return int(n)
}

// SlotRect is an absolute slot rectangle in mm, origin at the page's top-left corner.
type SlotRect struct {
	X, Y, W, H float64
}

// Box is a slot bounding box in percent of the page dimensions.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Grid is the computed slot geometry for one sheet.
type Grid struct {
	Columns int   `json:"columns"`
	Rows    int   `json:"rows"`
	Boxes   []Box `json:"boxes"`
}

// Len returns the number of slots in the grid.
func (g Grid) Len() int {
	return len(g.Boxes)
}

// Empty reports whether the grid holds no slots.
func (g Grid) Empty() bool {
	return len(g.Boxes) == 0
}

// ComputeGrid lays out columns x rows slots, top/left anchored. Leftover space
// stays in the right and bottom margins. Degenerate inputs yield an empty grid.
func ComputeGrid(c GridConfig) Grid {
	cols, rows := c.Columns(), c.Rows()
	if cols <= 0 || rows <= 0 {
		return Grid{}
	}

	w := c.PhotoWidthMM / c.PageWidthMM * 100
	h := c.PhotoHeightMM / c.PageHeightMM * 100

	boxes := make([]Box, cols*rows)
	for i := range boxes {
		r := c.SlotRect(i, cols)
		boxes[i] = Box{
			X:      r.X / c.PageWidthMM * 100,
			Y:      r.Y / c.PageHeightMM * 100,
			Width:  w,
			Height: h,
		}
	}
	return Grid{Columns: cols, Rows: rows, Boxes: boxes}
}
