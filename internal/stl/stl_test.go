package stl

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2stl/internal/mesh"
	"img2stl/internal/relief"
)

func sampleMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(img.Pix, []uint8{0, 64, 128, 192, 255, 32})
	m, err := relief.Build(img, relief.DefaultParams())
	require.NoError(t, err)
	return m
}

func assertSameGeometry(t *testing.T, want, got *mesh.Mesh) {
	t.Helper()
	require.Equal(t, want.TriangleCount(), got.TriangleCount())
	for i := range want.Triangles {
		for j := 0; j < 3; j++ {
			assert.True(t, want.Triangles[i][j].ApproxEqual(got.Triangles[i][j], 1e-5),
				"triangle %d vertex %d: %v != %v", i, j, want.Triangles[i][j], got.Triangles[i][j])
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", Binary, false},
		{"binary", Binary, false},
		{"ASCII", ASCII, false},
		{" ascii ", ASCII, false},
		{"obj", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSaveBinary(t *testing.T) {
	m := sampleMesh(t)
	path := filepath.Join(t.TempDir(), "out", "relief.stl")

	require.NoError(t, Save(path, m, Binary))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(84+50*m.TriangleCount()), info.Size())

	got, err := Read(path)
	require.NoError(t, err)
	assertSameGeometry(t, m, got)
	assert.True(t, mesh.Check(got).Watertight())
}

func TestSaveASCII(t *testing.T) {
	m := sampleMesh(t)
	path := filepath.Join(t.TempDir(), "relief.stl")

	require.NoError(t, Save(path, m, ASCII))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "solid relief\n"))
	assert.Equal(t, m.TriangleCount(), strings.Count(string(data), "facet normal"))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "relief", got.Name)
	assertSameGeometry(t, m, got)
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relief.stl")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	require.NoError(t, Save(path, sampleMesh(t), Binary))
	got, err := Read(path)
	require.NoError(t, err)
	assert.False(t, got.IsEmpty())
}

func TestSaveFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relief.stl")

	err := Save(path, sampleMesh(t), Format("obj"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no output and no temp files")
}

func TestWriteASCIIDefaultName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteASCII(&buf, mesh.New("", 0)))
	assert.Equal(t, "solid mesh\nendsolid mesh\n", buf.String())
}

func TestASCIINameWithSpaces(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "my logo", want: "my_logo"},
		{name: " tab\tand  gaps ", want: "tab_and_gaps"},
		{name: "   ", want: "mesh"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			m := sampleMesh(t)
			m.Name = tt.name
			path := filepath.Join(t.TempDir(), "named.stl")
			require.NoError(t, Save(path, m, ASCII))

			got, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
			assert.Equal(t, m.TriangleCount(), got.TriangleCount())
		})
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.stl")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))
	_, err := Read(path)
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.stl")
	require.NoError(t, os.WriteFile(bad, []byte("solid x\nvertex 1 2\n"), 0644))
	_, err = Read(bad)
	assert.Error(t, err)
}
