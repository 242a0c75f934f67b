// Package layout computes photo-sheet geometry: resolved page dimensions, the
// top/left anchored slot grid, reconciliation of slot content across grid
// rebuilds, and the content mutations applied to an existing grid.
//
// Everything in this package is a pure function of its inputs. Stored
// geometry is expressed in centimeters; grid arithmetic runs in millimeters;
// slot boxes are reported as percentages of the page.
package layout

import (
	"fmt"
	"slices"
)

// PageSize names a standard paper size or Custom.
type PageSize string

// Supported page sizes.
const (
	PageA4      PageSize = "A4"
	PageLetter  PageSize = "Letter"
	PageLegal   PageSize = "Legal"
	PageTabloid PageSize = "Tabloid"
	PageA3      PageSize = "A3"
	PageA5      PageSize = "A5"
	Page4x6in   PageSize = "4x6in"
	Page5x7in   PageSize = "5x7in"
	PageCustom  PageSize = "Custom"
)

// PageSizes lists every page size in presentation order.
var PageSizes = []PageSize{
	PageA4, PageLetter, PageLegal, PageTabloid, PageA3, PageA5, Page4x6in, Page5x7in, PageCustom,
}

// Orientation of the page.
type Orientation string

// Page orientations.
const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// PageDimensions is a page width and height in centimeters.
type PageDimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Nominal portrait dimensions in cm.
var pageDimensionsCm = map[PageSize]PageDimensions{
	PageA4:      {Width: 21.0, Height: 29.7},
	PageLetter:  {Width: 21.59, Height: 27.94},
	PageLegal:   {Width: 21.59, Height: 35.56},
	PageTabloid: {Width: 27.94, Height: 43.18},
	PageA3:      {Width: 29.7, Height: 42.0},
	PageA5:      {Width: 14.8, Height: 21.0},
	Page4x6in:   {Width: 10.16, Height: 15.24},
	Page5x7in:   {Width: 12.7, Height: 17.78},
}

// Margins holds the four page margins.
type Margins struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Scale multiplies every side by f.
func (m Margins) Scale(f float64) Margins {
	return Margins{Top: m.Top * f, Right: m.Right * f, Bottom: m.Bottom * f, Left: m.Left * f}
}

// Valid reports whether p is a known page size.
func (p PageSize) Valid() bool {
	return slices.Contains(PageSizes, p)
}

// ParsePageSize parses a page size name such as "A4" or "Custom".
func ParsePageSize(s string) (PageSize, error) {
	p := PageSize(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown page size %q", s)
	}
	return p, nil
}

// Valid reports whether o is portrait or landscape.
func (o Orientation) Valid() bool {
	return o == Portrait || o == Landscape
}

// ParseOrientation parses "portrait" or "landscape".
func ParseOrientation(s string) (Orientation, error) {
	o := Orientation(s)
	if !o.Valid() {
		return "", fmt.Errorf("unknown orientation %q", s)
	}
	return o, nil
}

// NominalDimensions returns the portrait dimensions of a named page size.
// The second result is false for Custom and unknown sizes.
func NominalDimensions(p PageSize) (PageDimensions, bool) {
	d, ok := pageDimensionsCm[p]
	return d, ok
}

// ResolvePage returns the page width and height in cm for the given size and
// orientation. custom is used only when size is PageCustom. Landscape swaps
// width and height.
func ResolvePage(size PageSize, custom PageDimensions, orientation Orientation) PageDimensions {
	d, ok := pageDimensionsCm[size]
	if !ok {
		d = custom
	}
	if orientation == Landscape {
		return PageDimensions{Width: d.Height, Height: d.Width}
	}
	return d
}
