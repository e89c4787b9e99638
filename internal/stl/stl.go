// Package stl writes and reads triangle meshes in the STL interchange format.
package stl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deadsy/sdfx/render"

	"img2stl/internal/mesh"
)

// Format selects the STL flavour.
type Format string

const (
	Binary Format = "binary"
	ASCII  Format = "ascii"
)

// ParseFormat accepts "binary", "ascii" or "" (binary).
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", Binary:
		return Binary, nil
	case ASCII:
		return ASCII, nil
	default:
		return "", fmt.Errorf("stl: unknown format %q (want binary or ascii)", s)
	}
}

// Save writes m to path. The mesh goes to a temporary file next to path
// first and is renamed into place only once fully written, so a failed
// save never leaves a truncated file behind.
func Save(path string, m *mesh.Mesh, f Format) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("stl: create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".img2stl-*.stl.tmp")
	if err != nil {
		return fmt.Errorf("stl: create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	switch f {
	case ASCII:
		err = WriteASCII(tmp, m)
		if cerr := tmp.Close(); err == nil {
			err = cerr
		}
	case Binary, "":
		tmp.Close()
		err = render.SaveSTL(tmpPath, mesh.ToSDFX(m))
	default:
		tmp.Close()
		err = fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return fmt.Errorf("stl: write %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("stl: rename into %s: %w", path, err)
	}
	return nil
}

// WriteASCII writes m as an ASCII STL solid.
func WriteASCII(w io.Writer, m *mesh.Mesh) error {
	name := solidName(m.Name)
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", name)
	for _, t := range m.Triangles {
		n := t.Normal()
		fmt.Fprintf(bw, "  facet normal %e %e %e\n", n[0], n[1], n[2])
		fmt.Fprintf(bw, "    outer loop\n")
		for _, v := range t {
			fmt.Fprintf(bw, "      vertex %e %e %e\n", v[0], v[1], v[2])
		}
		fmt.Fprintf(bw, "    endloop\n")
		fmt.Fprintf(bw, "  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}

// solidName makes name usable as the single token after "solid".
func solidName(name string) string {
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		return "mesh"
	}
	return name
}
