package relief

import (
	"img2stl/internal/mathutil"
)

// Grid is the top-surface vertex lattice: one vertex per pixel corner,
// (Width+1) x (Height+1) in total, row-major. Row 0 is the top edge of the
// image and sits at model y = Height so the relief reads the right way up.
type Grid struct {
	Width  int // pixel columns
	Height int // pixel rows
	Points []mathutil.Vec3
}

// NewGrid places a vertex on every pixel corner, raised by the mean depth of
// the pixels touching that corner plus baseHeight.
func NewGrid(dm *DepthMap, baseHeight float64) *Grid {
	w, h := dm.Width, dm.Height
	g := &Grid{
		Width:  w,
		Height: h,
		Points: make([]mathutil.Vec3, (w+1)*(h+1)),
	}
	for row := 0; row <= h; row++ {
		for col := 0; col <= w; col++ {
			g.Points[row*(w+1)+col] = mathutil.Vec3{
				float64(col),
				float64(h - row),
				dm.cornerMean(col, row) + baseHeight,
			}
		}
	}
	return g
}

// Cols returns the number of vertex columns.
func (g *Grid) Cols() int { return g.Width + 1 }

// Rows returns the number of vertex rows.
func (g *Grid) Rows() int { return g.Height + 1 }

// At returns the vertex at corner (col, row).
func (g *Grid) At(col, row int) mathutil.Vec3 {
	return g.Points[row*(g.Width+1)+col]
}

// ElevationRange returns the lowest and highest vertex elevation.
func (g *Grid) ElevationRange() (lo, hi float64) {
	lo, hi = g.Points[0][2], g.Points[0][2]
	for _, p := range g.Points[1:] {
		lo = min(lo, p[2])
		hi = max(hi, p[2])
	}
	return lo, hi
}
