package mesh

import (
	"math"
	"slices"
)

// quantum is the grid vertices are snapped to before edges are compared.
const quantum = 1e-6

// Report summarizes the edge topology of a mesh.
//
// Edges are compared as directed segments. A segment lying on an
// axis-aligned edge is split at every vertex of the mesh that falls inside
// it, so a long cap edge bordered by many short wall edges still pairs up.
//
// A relief's two-triangle bottom cap meets the wall vertices only at
// T-junctions. A checker that matches whole edges vertex to vertex, as many
// slicers and mesh repair tools do, reports the four long cap edges as open
// boundaries even though this Report counts none.
type Report struct {
	Edges            int // distinct undirected segments
	BoundaryEdges    int // used by a single triangle
	MisorientedEdges int // used twice in the same direction
	NonManifoldEdges int // used by more than two triangles
}

// Watertight reports whether every segment is shared by exactly two
// triangles with opposite directions.
func (r Report) Watertight() bool {
	return r.BoundaryEdges == 0 && r.MisorientedEdges == 0 && r.NonManifoldEdges == 0
}

type vkey [3]int64

func keyOf(v [3]float64) vkey {
	return vkey{
		int64(math.Round(v[0] / quantum)),
		int64(math.Round(v[1] / quantum)),
		int64(math.Round(v[2] / quantum)),
	}
}

func (a vkey) less(b vkey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// lineKey identifies an axis-aligned line: the axis and the two fixed coordinates.
type lineKey struct {
	axis int
	u, v int64
}

func lineOf(k vkey, axis int) lineKey {
	switch axis {
	case 0:
		return lineKey{0, k[1], k[2]}
	case 1:
		return lineKey{1, k[0], k[2]}
	default:
		return lineKey{2, k[0], k[1]}
	}
}

type segment struct{ lo, hi vkey }

type usage struct{ fwd, rev int }

// Check analyses the directed edges of m.
func Check(m *Mesh) Report {
	// Index every vertex by the three axis-aligned lines through it.
	lines := make(map[lineKey][]int64)
	seen := make(map[vkey]struct{})
	for _, t := range m.Triangles {
		for _, v := range t {
			k := keyOf(v)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			for axis := 0; axis < 3; axis++ {
				lk := lineOf(k, axis)
				lines[lk] = append(lines[lk], k[axis])
			}
		}
	}
	for lk := range lines {
		slices.Sort(lines[lk])
	}

	uses := make(map[segment]usage)
	record := func(a, b vkey) {
		if a == b {
			return
		}
		if a.less(b) {
			u := uses[segment{a, b}]
			u.fwd++
			uses[segment{a, b}] = u
		} else {
			u := uses[segment{b, a}]
			u.rev++
			uses[segment{b, a}] = u
		}
	}

	for _, t := range m.Triangles {
		for i := 0; i < 3; i++ {
			a, b := keyOf(t[i]), keyOf(t[(i+1)%3])
			splitEdge(lines, a, b, record)
		}
	}

	var r Report
	r.Edges = len(uses)
	for _, u := range uses {
		switch {
		case u.fwd+u.rev == 1:
			r.BoundaryEdges++
		case u.fwd+u.rev > 2:
			r.NonManifoldEdges++
		case u.fwd != u.rev:
			r.MisorientedEdges++
		}
	}
	return r
}

// splitEdge emits the directed sub-segments of a→b, breaking it at mesh
// vertices that lie strictly inside an axis-aligned edge.
func splitEdge(lines map[lineKey][]int64, a, b vkey, emit func(a, b vkey)) {
	axis := -1
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			if axis >= 0 {
				emit(a, b)
				return
			}
			axis = i
		}
	}
	if axis < 0 {
		return
	}

	coords := lines[lineOf(a, axis)]
	lo, hi := a[axis], b[axis]
	asc := lo < hi
	if !asc {
		lo, hi = hi, lo
	}
	start, _ := slices.BinarySearch(coords, lo+1)
	end, _ := slices.BinarySearch(coords, hi)
	inner := coords[start:end]
	if len(inner) == 0 {
		emit(a, b)
		return
	}

	prev := a
	step := func(c int64) {
		next := a
		next[axis] = c
		emit(prev, next)
		prev = next
	}
	if asc {
		for _, c := range inner {
			step(c)
		}
	} else {
		for i := len(inner) - 1; i >= 0; i-- {
			step(inner[i])
		}
	}
	emit(prev, b)
}
