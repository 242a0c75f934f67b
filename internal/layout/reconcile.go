package layout

// Reconcile builds the single sheet for grid and carries content from prev
// into it by slot id. Geometry always comes from grid. Each content field
// falls back independently: an unset image becomes autoSrc for the first
// copies slots, unset style fields take the defaults. Slots of prev whose
// id is outside the new grid are dropped.
//
// prev is searched across all sheets; when an id repeats, the later sheet
// wins. An empty grid yields no sheets.
func Reconcile(grid Grid, prev []Sheet, autoSrc string, copies int) []Sheet {
	if grid.Empty() {
		return []Sheet{}
	}

	existing := make(map[int]Slot, SlotCount(prev))
	for _, sh := range prev {
		for _, s := range sh {
			existing[s.ID] = s
		}
	}

	sheet := make(Sheet, grid.Len())
	for i, b := range grid.Boxes {
		old, ok := existing[i]
		var c Content
		if ok {
			c = old.Content()
		}
		sheet[i] = Slot{
			ID:     i,
			X:      b.X,
			Y:      b.Y,
			Width:  b.Width,
			Height: b.Height,
		}.WithContent(fillContent(c, i, autoSrc, copies))
	}
	return []Sheet{sheet}
}

// fillContent replaces unset fields of c with their defaults.
func fillContent(c Content, i int, autoSrc string, copies int) Content {
	d := DefaultContent()
	if c.ImageSrc == "" && i < copies {
		c.ImageSrc = autoSrc
	}
	if c.TextColor == "" {
		c.TextColor = d.TextColor
	}
	if c.FontSize == 0 {
		c.FontSize = d.FontSize
	}
	if c.TextAlign == "" {
		c.TextAlign = d.TextAlign
	}
	if c.TextVerticalAlign == "" {
		c.TextVerticalAlign = d.TextVerticalAlign
	}
	if c.Fit == "" {
		c.Fit = d.Fit
	}
	return c
}

// NormalizeSlot fills unset content fields of s with the style defaults
// without auto-assigning an image.
func NormalizeSlot(s Slot) Slot {
	return s.WithContent(fillContent(s.Content(), 0, "", 0))
}
