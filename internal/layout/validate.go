package layout

import (
	"fmt"
	"math"
)

// Severity levels of a ValidationWarning.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationWarning describes a layout issue found during validation.
type ValidationWarning struct {
	SheetIndex int    `json:"sheetIndex"`
	SlotID     int    `json:"slotId"`
	Message    string `json:"message"`
	Severity   string `json:"severity"` // "error" or "warning"
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("[%s] sheet %d slot %d: %s", w.Severity, w.SheetIndex, w.SlotID, w.Message)
}

// ValidateSheets checks all sheets for layout integrity issues.
func ValidateSheets(sheets []Sheet, config GridConfig) []ValidationWarning {
	var warnings []ValidationWarning
	for i, sh := range sheets {
		warnings = append(warnings, ValidateSheet(i, sh, config)...)
	}
	return warnings
}

// ValidateSheet checks one sheet: slots must stay on the page, must not
// overlap, must carry unique row-major ids and must sit on the grid pitch
// described by config.
func ValidateSheet(index int, sheet Sheet, config GridConfig) []ValidationWarning {
	var warnings []ValidationWarning
	const eps = 0.01 // percent

	add := func(id int, severity, format string, args ...any) {
		warnings = append(warnings, ValidationWarning{
			SheetIndex: index,
			SlotID:     id,
			Message:    fmt.Sprintf(format, args...),
			Severity:   severity,
		})
	}

	seen := make(map[int]bool, len(sheet))
	for i, s := range sheet {
		if seen[s.ID] {
			add(s.ID, SeverityError, "duplicate slot id %d", s.ID)
		}
		seen[s.ID] = true
		if s.ID != i {
			add(s.ID, SeverityWarning, "slot id %d at position %d breaks row-major order", s.ID, i)
		}

		if s.X < -eps || s.Y < -eps {
			add(s.ID, SeverityError, "origin (%.2f%%, %.2f%%) lies outside the page", s.X, s.Y)
		}
		if s.X+s.Width > 100+eps {
			add(s.ID, SeverityError, "right edge (%.2f%%) extends past the page", s.X+s.Width)
		}
		if s.Y+s.Height > 100+eps {
			add(s.ID, SeverityError, "bottom edge (%.2f%%) extends past the page", s.Y+s.Height)
		}
		if s.Width <= 0 || s.Height <= 0 {
			add(s.ID, SeverityError, "non-positive size %.2f%% x %.2f%%", s.Width, s.Height)
		}
	}

	for i := range sheet {
		for j := i + 1; j < len(sheet); j++ {
			a, b := sheet[i], sheet[j]
			if rectsOverlap(a.X, a.Y, a.Width, a.Height, b.X, b.Y, b.Width, b.Height, eps) {
				add(a.ID, SeverityError, "overlaps slot %d", b.ID)
			}
		}
	}

	warnings = append(warnings, validateGridAlignment(index, sheet, config)...)
	return warnings
}

// validateGridAlignment checks that each slot origin lands on a whole
// multiple of the column and row pitch, measured from the margins.
func validateGridAlignment(index int, sheet Sheet, config GridConfig) []ValidationWarning {
	var warnings []ValidationWarning
	const eps = 0.01 // mm

	if config.PageWidthMM <= 0 || config.PageHeightMM <= 0 || config.PitchX() <= 0 || config.PitchY() <= 0 {
		return nil
	}

	for _, s := range sheet {
		xMM := s.X/100*config.PageWidthMM - config.MarginLeftMM
		yMM := s.Y/100*config.PageHeightMM - config.MarginTopMM
		if !onPitch(xMM, config.PitchX(), eps) {
			warnings = append(warnings, ValidationWarning{
				SheetIndex: index,
				SlotID:     s.ID,
				Message:    fmt.Sprintf("slot X offset %.2fmm does not align with any column edge", xMM),
				Severity:   SeverityWarning,
			})
		}
		if !onPitch(yMM, config.PitchY(), eps) {
			warnings = append(warnings, ValidationWarning{
				SheetIndex: index,
				SlotID:     s.ID,
				Message:    fmt.Sprintf("slot Y offset %.2fmm does not align with any row edge", yMM),
				Severity:   SeverityWarning,
			})
		}
	}
	return warnings
}

func onPitch(offset, pitch, eps float64) bool {
	if offset < -eps {
		return false
	}
	n := math.Round(offset / pitch)
	return math.Abs(offset-n*pitch) < eps
}

// HasErrors reports whether any warning has error severity.
func HasErrors(warnings []ValidationWarning) bool {
	for _, w := range warnings {
		if w.Severity == SeverityError {
			return true
		}
	}
	return false
}

func rectsOverlap(x1, y1, w1, h1, x2, y2, w2, h2, eps float64) bool {
	if x1+w1 <= x2+eps || x2+w2 <= x1+eps {
		return false
	}
	if y1+h1 <= y2+eps || y2+h2 <= y1+eps {
		return false
	}
	return true
}
