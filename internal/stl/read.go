package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"img2stl/internal/mathutil"
	"img2stl/internal/mesh"
)

const (
	headerSize   = 80
	facetSize    = 50 // normal + 3 vertices as float32, plus attribute count
	binaryPrefix = headerSize + 4
)

// Read loads a binary or ASCII STL file. Binary is recognised by its exact
// size; anything else starting with "solid" is parsed as ASCII. Binary
// meshes are named after the file.
func Read(path string) (*mesh.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stl: read %s: %w", path, err)
	}
	if len(data) >= binaryPrefix {
		n := binary.LittleEndian.Uint32(data[headerSize:binaryPrefix])
		if int64(len(data)) == binaryPrefix+int64(n)*facetSize {
			m := parseBinary(data, int(n))
			m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			return m, nil
		}
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid")) {
		m, err := parseASCII(data)
		if err != nil {
			return nil, fmt.Errorf("stl: parse %s: %w", path, err)
		}
		return m, nil
	}
	return nil, fmt.Errorf("stl: %s is neither binary nor ASCII STL", path)
}

func parseBinary(data []byte, n int) *mesh.Mesh {
	m := mesh.New("", n)
	f32 := func(off int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off:])))
	}
	for i := 0; i < n; i++ {
		off := binaryPrefix + i*facetSize + 12 // skip the stored normal
		var t mesh.Triangle
		for j := 0; j < 3; j++ {
			o := off + j*12
			t[j] = mathutil.Vec3{f32(o), f32(o + 4), f32(o + 8)}
		}
		m.Triangles = append(m.Triangles, t)
	}
	return m
}

func parseASCII(data []byte) (*mesh.Mesh, error) {
	m := mesh.New("", 0)
	var verts []mathutil.Vec3

	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				m.Name = fields[1]
			}
		case "vertex":
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", line)
			}
			var v mathutil.Vec3
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				v[i] = f
			}
			verts = append(verts, v)
		case "endloop":
			if len(verts) != 3 {
				return nil, fmt.Errorf("line %d: facet has %d vertices", line, len(verts))
			}
			m.Add(verts[0], verts[1], verts[2])
			verts = verts[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
