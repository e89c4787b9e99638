// Package mesh holds flat triangle lists and the closure checks run on them
// before they are serialized.
package mesh

import (
	"img2stl/internal/mathutil"
)

// Triangle is an ordered vertex triple. Counter-clockwise order seen from
// outside the solid gives the outward normal.
type Triangle [3]mathutil.Vec3

// Normal returns the unit normal implied by the winding order.
// Degenerate triangles return the zero vector.
func (t Triangle) Normal() mathutil.Vec3 {
	return t.cross().Normalize()
}

// Area returns the triangle's surface area.
func (t Triangle) Area() float64 {
	return t.cross().Len() / 2
}

func (t Triangle) cross() mathutil.Vec3 {
	return t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
}

// Mesh is an ordered triangle soup. Vertices are not shared; closure is
// established geometrically by Check.
type Mesh struct {
	Name      string
	Triangles []Triangle
}

// New returns an empty mesh with room for n triangles.
func New(name string, n int) *Mesh {
	return &Mesh{
		Name:      name,
		Triangles: make([]Triangle, 0, n),
	}
}

// Add appends a triangle.
func (m *Mesh) Add(a, b, c mathutil.Vec3) {
	m.Triangles = append(m.Triangles, Triangle{a, b, c})
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Triangles) == 0
}

// Bounds returns the axis-aligned bounding box. ok is false for an empty mesh.
func (m *Mesh) Bounds() (min, max mathutil.Vec3, ok bool) {
	if m.IsEmpty() {
		return min, max, false
	}
	min, max = m.Triangles[0][0], m.Triangles[0][0]
	for _, t := range m.Triangles {
		for _, v := range t {
			min = min.Min(v)
			max = max.Max(v)
		}
	}
	return min, max, true
}

// SignedVolume sums the signed tetrahedra spanned by the origin and each
// triangle. For a closed, outward-wound mesh it equals the enclosed volume;
// a negative value means the winding points inward.
func (m *Mesh) SignedVolume() float64 {
	var vol float64
	for _, t := range m.Triangles {
		vol += t[0].Dot(t[1].Cross(t[2]))
	}
	return vol / 6
}

// SurfaceArea returns the total area of all triangles.
func (m *Mesh) SurfaceArea() float64 {
	var area float64
	for _, t := range m.Triangles {
		area += t.Area()
	}
	return area
}

// Degenerate counts triangles whose area is at most eps.
func (m *Mesh) Degenerate(eps float64) int {
	n := 0
	for _, t := range m.Triangles {
		if t.Area() <= eps {
			n++
		}
	}
	return n
}
