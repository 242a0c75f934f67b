package layout

import "fmt"

// TextAlign is the horizontal alignment of a slot's text overlay.
type TextAlign string

// Horizontal alignments.
const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// VerticalAlign is the vertical alignment of a slot's text overlay.
type VerticalAlign string

// Vertical alignments.
const (
	AlignTop    VerticalAlign = "top"
	AlignMiddle VerticalAlign = "middle"
	AlignBottom VerticalAlign = "bottom"
)

// Fit controls how an image maps onto the slot's aspect ratio.
type Fit string

// Fit modes.
const (
	FitCover   Fit = "cover"
	FitContain Fit = "contain"
)

// Style defaults applied to newly populated slots.
const (
	DefaultTextColor         = "#FFFFFF"
	DefaultFontSize          = 8.0 // percent of slot height
	DefaultTextAlign         = AlignCenter
	DefaultTextVerticalAlign = AlignBottom
	DefaultFit               = FitCover
)

// Slot is one photo placement on a sheet. Geometry is in percent of the page.
type Slot struct {
	ID                int           `json:"id"`
	X                 float64       `json:"x"`
	Y                 float64       `json:"y"`
	Width             float64       `json:"width"`
	Height            float64       `json:"height"`
	ImageSrc          string        `json:"imageSrc"`
	Text              string        `json:"text"`
	TextColor         string        `json:"textColor"`
	FontSize          float64       `json:"fontSize"`
	TextAlign         TextAlign     `json:"textAlign"`
	TextVerticalAlign VerticalAlign `json:"textVerticalAlign"`
	Fit               Fit           `json:"fit"`
}

// Sheet is the ordered slot list of one physical page.
type Sheet []Slot

// Content is the movable part of a slot: everything except id and geometry.
type Content struct {
	ImageSrc          string
	Text              string
	TextColor         string
	FontSize          float64
	TextAlign         TextAlign
	TextVerticalAlign VerticalAlign
	Fit               Fit
}

// DefaultContent returns empty content with the default style.
func DefaultContent() Content {
	return Content{
		TextColor:         DefaultTextColor,
		FontSize:          DefaultFontSize,
		TextAlign:         DefaultTextAlign,
		TextVerticalAlign: DefaultTextVerticalAlign,
		Fit:               DefaultFit,
	}
}

// Content returns the slot's movable content.
func (s Slot) Content() Content {
	return Content{
		ImageSrc:          s.ImageSrc,
		Text:              s.Text,
		TextColor:         s.TextColor,
		FontSize:          s.FontSize,
		TextAlign:         s.TextAlign,
		TextVerticalAlign: s.TextVerticalAlign,
		Fit:               s.Fit,
	}
}

// WithContent returns a copy of s carrying c. Id and geometry are kept.
func (s Slot) WithContent(c Content) Slot {
	s.ImageSrc = c.ImageSrc
	s.Text = c.Text
	s.TextColor = c.TextColor
	s.FontSize = c.FontSize
	s.TextAlign = c.TextAlign
	s.TextVerticalAlign = c.TextVerticalAlign
	s.Fit = c.Fit
	return s
}

// Box returns the slot's geometry.
func (s Slot) Box() Box {
	return Box{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// IsEmpty reports whether the slot holds no image.
func (s Slot) IsEmpty() bool {
	return s.ImageSrc == ""
}

// StylePatch is a partial style update. Nil fields are left unchanged.
type StylePatch struct {
	TextColor         *string        `json:"textColor,omitempty"`
	FontSize          *float64       `json:"fontSize,omitempty"`
	TextAlign         *TextAlign     `json:"textAlign,omitempty"`
	TextVerticalAlign *VerticalAlign `json:"textVerticalAlign,omitempty"`
}

// Validate checks the enumerated fields that are set.
func (p StylePatch) Validate() error {
	if p.TextAlign != nil && !p.TextAlign.Valid() {
		return fmt.Errorf("invalid text align %q", *p.TextAlign)
	}
	if p.TextVerticalAlign != nil && !p.TextVerticalAlign.Valid() {
		return fmt.Errorf("invalid vertical align %q", *p.TextVerticalAlign)
	}
	if p.FontSize != nil && (*p.FontSize <= 0 || *p.FontSize > 100) {
		return fmt.Errorf("font size %v out of range (0, 100]", *p.FontSize)
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p StylePatch) Empty() bool {
	return p.TextColor == nil && p.FontSize == nil && p.TextAlign == nil && p.TextVerticalAlign == nil
}

func (p StylePatch) apply(s Slot) Slot {
	if p.TextColor != nil {
		s.TextColor = *p.TextColor
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.TextAlign != nil {
		s.TextAlign = *p.TextAlign
	}
	if p.TextVerticalAlign != nil {
		s.TextVerticalAlign = *p.TextVerticalAlign
	}
	return s
}

// Valid reports whether a is a known alignment.
func (a TextAlign) Valid() bool {
	return a == AlignLeft || a == AlignCenter || a == AlignRight
}

// Valid reports whether a is a known vertical alignment.
func (a VerticalAlign) Valid() bool {
	return a == AlignTop || a == AlignMiddle || a == AlignBottom
}

// Valid reports whether f is cover or contain.
func (f Fit) Valid() bool {
	return f == FitCover || f == FitContain
}

// Toggle flips cover and contain. Anything other than cover becomes cover.
func (f Fit) Toggle() Fit {
	if f == FitCover {
		return FitContain
	}
	return FitCover
}

// Clone returns a deep copy of sheets.
func Clone(sheets []Sheet) []Sheet {
	if sheets == nil {
		return nil
	}
	out := make([]Sheet, len(sheets))
	for i, sh := range sheets {
		out[i] = append(Sheet(nil), sh...)
	}
	return out
}

// SlotCount returns the number of slots across all sheets.
func SlotCount(sheets []Sheet) int {
	n := 0
	for _, sh := range sheets {
		n += len(sh)
	}
	return n
}

// Index returns the position of the slot with the given id, or -1.
func (sh Sheet) Index(id int) int {
	for i := range sh {
		if sh[i].ID == id {
			return i
		}
	}
	return -1
}
