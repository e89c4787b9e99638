// Package raster draws a shaded orthographic top view of a mesh.
package raster

import (
	"image"
	"math"

	"img2stl/internal/mathutil"
	"img2stl/internal/mesh"
)

// Background is the colour of pixels no triangle covers.
var Background = [4]uint8{0, 0, 0, 0}

// RenderTop renders m seen from +Z with pixelsPerUnit pixels per model unit.
// Model +Y points up in the image. Faces pointing down or edge-on are
// skipped; the z-buffer keeps the highest surface.
func RenderTop(m *mesh.Mesh, pixelsPerUnit float64, lc *LightConfig) *image.NRGBA {
	min, max, ok := m.Bounds()
	if !ok || pixelsPerUnit <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}

	w := max1(int(math.Ceil((max[0] - min[0]) * pixelsPerUnit)))
	h := max1(int(math.Ceil((max[1] - min[1]) * pixelsPerUnit)))
	fb := NewFrameBuffer(w, h, Background)

	project := func(v mathutil.Vec3) mathutil.Vec3 {
		return mathutil.Vec3{
			(v[0] - min[0]) * pixelsPerUnit,
			(max[1] - v[1]) * pixelsPerUnit,
			v[2],
		}
	}

	for _, tri := range m.Triangles {
		n := tri.Normal()
		if n[2] <= 1e-6 {
			continue
		}
		grey := lc.Grey(lc.ComputeShade(n))
		RasterizeTriangle(fb, project(tri[0]), project(tri[1]), project(tri[2]), grey)
	}

	return fb.Image()
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
