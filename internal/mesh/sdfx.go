package mesh

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"img2stl/internal/mathutil"
)

// ToSDFX converts the mesh into the triangle slice the sdfx renderers and
// STL writer consume. Winding order is preserved.
func ToSDFX(m *Mesh) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, len(m.Triangles))
	for i, t := range m.Triangles {
		out[i] = &sdf.Triangle3{toV3(t[0]), toV3(t[1]), toV3(t[2])}
	}
	return out
}

func toV3(v mathutil.Vec3) v3.Vec {
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}
