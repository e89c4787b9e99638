// Package relief turns a grayscale image into a closed printable relief:
// a top surface whose height follows pixel darkness, a flat bottom at z=0
// and four side walls joining the two.
package relief

import (
	"fmt"

	"img2stl/internal/mathutil"
)

// Params are the thickness settings in millimetres.
type Params struct {
	MinThickness float64 `yaml:"min_thickness"` // relief height of pure white
	MaxThickness float64 `yaml:"max_thickness"` // relief height of pure black
	BaseHeight   float64 `yaml:"base_height"`   // solid plinth under the relief
}

// DefaultParams returns the stock thickness settings.
func DefaultParams() Params {
	return Params{
		MinThickness: 1.0,
		MaxThickness: 3.0,
		BaseHeight:   0.5,
	}
}

// Validate checks the thickness bounds.
func (p Params) Validate() error {
	if !mathutil.IsFinite(p.MinThickness) || !mathutil.IsFinite(p.MaxThickness) || !mathutil.IsFinite(p.BaseHeight) {
		return fmt.Errorf("relief: thickness parameters must be finite: %+v", p)
	}
	if p.MinThickness <= 0 {
		return fmt.Errorf("relief: min thickness is %.4f, must be positive", p.MinThickness)
	}
	if p.MaxThickness < p.MinThickness {
		return fmt.Errorf("relief: max thickness %.4f is below min thickness %.4f", p.MaxThickness, p.MinThickness)
	}
	if p.BaseHeight < 0 {
		return fmt.Errorf("relief: base height is %.4f, must not be negative", p.BaseHeight)
	}
	return nil
}
