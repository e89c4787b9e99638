package relief

import (
	"errors"
	"image"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("relief: image has no pixels")

// DepthMap holds one relief thickness per source pixel, row-major with
// row 0 at the top of the image.
type DepthMap struct {
	Width  int
	Height int
	Values []float64
}

// NewDepthMap maps pixel luminance onto [MinThickness, MaxThickness].
// Darker pixels give thicker relief; pure black maps to MaxThickness.
func NewDepthMap(img *image.Gray, p Params) (*DepthMap, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyImage
	}

	span := p.MaxThickness - p.MinThickness
	dm := &DepthMap{
		Width:  w,
		Height: h,
		Values: make([]float64, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := img.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			dm.Values[y*w+x] = p.MinThickness + span*float64(255-v)/255.0
		}
	}
	return dm, nil
}

// At returns the thickness of pixel (x, y).
func (dm *DepthMap) At(x, y int) float64 {
	return dm.Values[y*dm.Width+x]
}

// Range returns the smallest and largest thickness in the map.
func (dm *DepthMap) Range() (lo, hi float64) {
	lo, hi = dm.Values[0], dm.Values[0]
	for _, v := range dm.Values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// cornerMean averages the pixels touching corner (x, y). Border corners
// touch fewer than four pixels and average over what exists.
func (dm *DepthMap) cornerMean(x, y int) float64 {
	x0, x1 := max(0, x-1), min(dm.Width, x+1)
	y0, y1 := max(0, y-1), min(dm.Height, y+1)

	var sum float64
	for row := y0; row < y1; row++ {
		for col := x0; col < x1; col++ {
			sum += dm.At(col, row)
		}
	}
	return sum / float64((x1-x0)*(y1-y0))
}
