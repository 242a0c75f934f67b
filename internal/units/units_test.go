package units

import (
	"math"
	"testing"
)

func TestConversions(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"1in to cm", InToCm(1), 2.54},
		{"2.54cm to in", CmToIn(2.54), 1.0000005},
		{"A4 width to in", CmToIn(21.0), 8.267721},
		{"zero", CmToIn(0), 0},
		{"ToCm inches", ToCm(2, Inches), 5.08},
		{"ToCm centimeters", ToCm(2, Centimeters), 2},
		{"FromCm inches", FromCm(10, Inches), 3.93701},
		{"FromCm centimeters", FromCm(10, Centimeters), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-6 {
				t.Errorf("expected %.7f, got %.7f", tt.want, tt.got)
			}
		})
	}
}

func TestFromCmDoesNotAccumulate(t *testing.T) {
	stored := 3.15
	// Toggling the display unit many times must always derive from the stored value.
	var shown float64
	for i := range 100 {
		if i%2 == 0 {
			shown = FromCm(stored, Inches)
		} else {
			shown = FromCm(stored, Centimeters)
		}
	}
	if shown != stored {
		t.Errorf("expected %.4f after toggling, got %.4f", stored, shown)
	}
}

func TestParseUnit(t *testing.T) {
	for _, s := range []string{"cm", "in"} {
		u, err := ParseUnit(s)
		if err != nil {
			t.Fatalf("ParseUnit(%q) failed: %v", s, err)
		}
		if string(u) != s {
			t.Errorf("expected %q, got %q", s, u)
		}
	}
	if _, err := ParseUnit("mm"); err == nil {
		t.Error("expected error for unsupported unit")
	}
	if Unit("").Valid() {
		t.Error("empty unit should not be valid")
	}
}
