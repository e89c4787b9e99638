package preview

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"

	"img2stl/internal/mesh"
	"img2stl/internal/relief"
)

func sampleMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 5, 3))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 17)
	}
	m, err := relief.Build(img, relief.DefaultParams())
	require.NoError(t, err)
	return m
}

func TestRenderSize(t *testing.T) {
	m := sampleMesh(t)

	img, err := Render(m, Options{PixelsPerUnit: 4, Supersample: 2})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 12), img.Bounds())

	img, err = Render(m, Options{PixelsPerUnit: 3})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 15, 9), img.Bounds())
}

func TestRenderErrors(t *testing.T) {
	_, err := Render(mesh.New("empty", 0), DefaultOptions())
	assert.Error(t, err)

	_, err = Render(sampleMesh(t), Options{PixelsPerUnit: 0})
	assert.Error(t, err)
}

func TestSaveWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "preview.webp")
	require.NoError(t, Save(path, sampleMesh(t), DefaultOptions()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := webp.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 12, cfg.Height)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestEncodeThenWrite(t *testing.T) {
	data, err := Encode(sampleMesh(t), Options{PixelsPerUnit: 2, Supersample: 1})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "p.webp")
	require.NoError(t, WriteFile(path, data))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := webp.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Width)
	assert.Equal(t, 6, cfg.Height)
}

func TestSaveFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preview.webp")
	require.Error(t, Save(path, mesh.New("empty", 0), DefaultOptions()))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
