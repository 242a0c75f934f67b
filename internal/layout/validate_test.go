package layout

import "testing"

func TestValidateSheet_ComputedGridIsClean(t *testing.T) {
	cfg := a4Config()
	sheets := Reconcile(ComputeGrid(cfg), nil, "img://a", 36)
	if warnings := ValidateSheets(sheets, cfg); len(warnings) != 0 {
		for _, w := range warnings {
			t.Error(w)
		}
	}
}

func TestValidateSheet_SlotOutOfBounds(t *testing.T) {
	cfg := a4Config()
	sheet := Sheet{{ID: 0, X: 90, Y: 0, Width: 15, Height: 10}}
	warnings := ValidateSheet(0, sheet, cfg)

	found := false
	for _, w := range warnings {
		if w.SlotID == 0 && w.Severity == SeverityError {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected error warning for slot extending beyond the page, got none")
	}
	if !HasErrors(warnings) {
		t.Error("HasErrors should report the bounds error")
	}
}

func TestValidateSheet_Overlaps(t *testing.T) {
	cfg := a4Config()
	sheet := Sheet{
		{ID: 0, X: 10, Y: 10, Width: 20, Height: 20},
		{ID: 1, X: 20, Y: 20, Width: 20, Height: 20},
	}
	found := false
	for _, w := range ValidateSheet(0, sheet, cfg) {
		if w.Severity == SeverityError && w.SlotID == 0 && w.Message == "overlaps slot 1" {
			found = true
		}
	}
	if !found {
		t.Error("expected overlap error")
	}
}

func TestValidateSheet_AdjacentSlotsDoNotOverlap(t *testing.T) {
	if rectsOverlap(0, 0, 10, 10, 10, 0, 10, 10, 0.01) {
		t.Error("touching rectangles should not overlap")
	}
	if !rectsOverlap(0, 0, 10, 10, 5, 5, 10, 10, 0.01) {
		t.Error("expected overlap")
	}
}

func TestValidateSheet_DuplicateAndOrder(t *testing.T) {
	cfg := a4Config()
	grid := ComputeGrid(cfg)
	sheet := Reconcile(grid, nil, "", 0)[0][:2]
	sheet[1].ID = 0

	var dup, order bool
	for _, w := range ValidateSheet(0, sheet, cfg) {
		if w.Severity == SeverityError && w.Message == "duplicate slot id 0" {
			dup = true
		}
		if w.Severity == SeverityWarning && w.Message == "slot id 0 at position 1 breaks row-major order" {
			order = true
		}
	}
	if !dup || !order {
		t.Errorf("expected duplicate (%v) and order (%v) findings", dup, order)
	}
}

func TestValidateSheet_OffPitch(t *testing.T) {
	cfg := a4Config()
	sheet := Reconcile(ComputeGrid(cfg), nil, "", 0)[0][:1]
	sheet[0].X += 1 // 2.1mm on A4

	warnings := ValidateSheet(0, sheet, cfg)
	if len(warnings) != 1 || warnings[0].Severity != SeverityWarning {
		t.Fatalf("expected one alignment warning, got %v", warnings)
	}
	if HasErrors(warnings) {
		t.Error("alignment findings are warnings, not errors")
	}
}
