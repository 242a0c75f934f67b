package layout

// The mutations below never modify their input. Each returns the resulting
// sheets and whether a target slot was found; when none was the input slice
// is returned as is. Swap and PlaceImage act on the sheet at index active
// only, the text, style and fit updates act on every sheet holding the id.

// Swap exchanges the content of two slots on the active sheet. Geometry
// stays with the slot. It is a no-op when the ids are equal or either id
// is missing.
func Swap(sheets []Sheet, active, activeID, overID int) ([]Sheet, bool) {
	if activeID == overID || active < 0 || active >= len(sheets) {
		return sheets, false
	}
	sh := sheets[active]
	ai, oi := sh.Index(activeID), sh.Index(overID)
	if ai < 0 || oi < 0 {
		return sheets, false
	}

	out := copyOuter(sheets)
	updated := append(Sheet(nil), sh...)
	ac, oc := sh[ai].Content(), sh[oi].Content()
	updated[ai] = updated[ai].WithContent(oc)
	updated[oi] = updated[oi].WithContent(ac)
	out[active] = updated
	return out, true
}

// PlaceImage puts src into a slot of the active sheet and resets that
// slot's text and style.
func PlaceImage(sheets []Sheet, active int, src string, slotID int) ([]Sheet, bool) {
	if active < 0 || active >= len(sheets) {
		return sheets, false
	}
	sh := sheets[active]
	i := sh.Index(slotID)
	if i < 0 {
		return sheets, false
	}

	c := DefaultContent()
	c.ImageSrc = src

	out := copyOuter(sheets)
	updated := append(Sheet(nil), sh...)
	updated[i] = updated[i].WithContent(c)
	out[active] = updated
	return out, true
}

// UpdateText sets the overlay text of every slot with the given id.
func UpdateText(sheets []Sheet, slotID int, text string) ([]Sheet, bool) {
	return updateAll(sheets, slotID, func(s Slot) Slot {
		s.Text = text
		return s
	})
}

// UpdateStyle applies a partial style to every slot with the given id.
func UpdateStyle(sheets []Sheet, slotID int, patch StylePatch) ([]Sheet, bool) {
	return updateAll(sheets, slotID, patch.apply)
}

// ToggleFit flips cover and contain on every slot with the given id.
func ToggleFit(sheets []Sheet, slotID int) ([]Sheet, bool) {
	return updateAll(sheets, slotID, func(s Slot) Slot {
		s.Fit = s.Fit.Toggle()
		return s
	})
}

func updateAll(sheets []Sheet, slotID int, fn func(Slot) Slot) ([]Sheet, bool) {
	var out []Sheet
	for si, sh := range sheets {
		i := sh.Index(slotID)
		if i < 0 {
			continue
		}
		if out == nil {
			out = copyOuter(sheets)
		}
		updated := append(Sheet(nil), sh...)
		for j := i; j < len(updated); j++ {
			if updated[j].ID == slotID {
				updated[j] = fn(updated[j])
			}
		}
		out[si] = updated
	}
	if out == nil {
		return sheets, false
	}
	return out, true
}

func copyOuter(sheets []Sheet) []Sheet {
	return append([]Sheet(nil), sheets...)
}
