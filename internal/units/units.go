// Package units converts linear measurements between centimeters and inches.
//
// All stored geometry is kept in centimeters. Display values are produced by a
// single conversion call from the stored centimeter value, never by chaining
// conversions, so repeated unit toggles cannot accumulate drift.
package units

import "fmt"

// Unit is a display unit for linear measurements.
type Unit string

// Supported display units.
const (
	Centimeters Unit = "cm"
	Inches      Unit = "in"
)

// Conversion factors.
const (
	CmPerInch = 2.54
	InchPerCm = 0.393701
	MmPerCm   = 10.0
)

// CmToIn converts centimeters to inches.
func CmToIn(x float64) float64 {
	return x * InchPerCm
}

// InToCm converts inches to centimeters.
func InToCm(x float64) float64 {
	return x * CmPerInch
}

// ToCm converts a value expressed in u to centimeters.
func ToCm(value float64, u Unit) float64 {
	if u == Inches {
		return InToCm(value)
	}
	return value
}

// FromCm expresses a centimeter value in u.
func FromCm(cm float64, u Unit) float64 {
	if u == Inches {
		return CmToIn(cm)
	}
	return cm
}

// Valid reports whether u is a supported unit.
func (u Unit) Valid() bool {
	return u == Centimeters || u == Inches
}

// ParseUnit parses "cm" or "in".
func ParseUnit(s string) (Unit, error) {
	u := Unit(s)
	if !u.Valid() {
		return "", fmt.Errorf("unknown unit %q (expected cm or in)", s)
	}
	return u, nil
}
