package relief

import (
	"image"

	"img2stl/internal/mathutil"
	"img2stl/internal/mesh"
)

// TriangleCount is the number of triangles Extrude emits for a w x h image:
// two per pixel, two for the bottom cap and two per boundary pixel edge.
func TriangleCount(w, h int) int {
	return 2*w*h + 2 + 4*w + 4*h
}

// Extrude closes the vertex grid into a solid. Triangles are emitted in a
// fixed order: top surface, bottom cap, then the back, front, left and
// right walls.
func Extrude(g *Grid) *mesh.Mesh {
	w, h := g.Width, g.Height
	m := mesh.New("relief", TriangleCount(w, h))

	// Top surface, normals +Z. Each pixel splits along its
	// bottom-left to top-right diagonal.
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			v1 := g.At(col, row)
			v2 := g.At(col+1, row)
			v3 := g.At(col, row+1)
			v4 := g.At(col+1, row+1)
			m.Add(v1, v3, v2)
			m.Add(v2, v3, v4)
		}
	}

	// Bottom cap at z=0, normals -Z.
	fw, fh := float64(w), float64(h)
	p0 := mathutil.Vec3{0, 0, 0}
	p1 := mathutil.Vec3{fw, 0, 0}
	p2 := mathutil.Vec3{0, fh, 0}
	p3 := mathutil.Vec3{fw, fh, 0}
	m.Add(p0, p2, p1)
	m.Add(p1, p2, p3)

	// Walls. The top surface walks its back and right borders in one
	// direction and its front and left borders in the other, so the wall
	// quads run the opposite way to stay consistently wound.
	for col := 0; col < w; col++ {
		wall(m, g.At(col, 0), g.At(col+1, 0)) // back, y = h
	}
	for col := 0; col < w; col++ {
		wall(m, g.At(col+1, h), g.At(col, h)) // front, y = 0
	}
	for row := 0; row < h; row++ {
		wall(m, g.At(0, row+1), g.At(0, row)) // left, x = 0
	}
	for row := 0; row < h; row++ {
		wall(m, g.At(w, row), g.At(w, row+1)) // right, x = w
	}

	return m
}

// wall emits the vertical quad under the top edge a→b down to z=0.
// Seen from outside, a is on the right.
func wall(m *mesh.Mesh, a, b mathutil.Vec3) {
	a0, b0 := a.WithZ(0), b.WithZ(0)
	m.Add(a, b, a0)
	m.Add(a0, b, b0)
}

// Build runs the whole pipeline on a grayscale image.
func Build(img *image.Gray, p Params) (*mesh.Mesh, error) {
	dm, err := NewDepthMap(img, p)
	if err != nil {
		return nil, err
	}
	return Extrude(NewGrid(dm, p.BaseHeight)), nil
}
