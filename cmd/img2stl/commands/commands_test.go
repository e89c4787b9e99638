package commands

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2stl/internal/convert"
	"img2stl/internal/stl"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 21)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	writePNG(t, "in.png")
	out := filepath.Join("out", "in.stl")

	t.Run("convert", func(t *testing.T) {
		stdout, err := execute(t, "convert", "in.png", "-o", out, "--format", "ascii", "--base", "0", "--log-level", "error")
		require.NoError(t, err)
		assert.Contains(t, stdout, "54 triangles")

		m, err := stl.Read(out)
		require.NoError(t, err)
		lo, _, ok := m.Bounds()
		require.True(t, ok)
		assert.Equal(t, 0.0, lo[2])
	})

	t.Run("inspect stl", func(t *testing.T) {
		stdout, err := execute(t, "inspect", out)
		require.NoError(t, err)
		assert.Regexp(t, `Triangles\s*│\s*54\s`, stdout)
		assert.Regexp(t, `Watertight\s*│\s*true\s`, stdout)
	})

	t.Run("inspect image", func(t *testing.T) {
		stdout, err := execute(t, "inspect", "in.png")
		require.NoError(t, err)
		assert.Contains(t, stdout, "(4x3 px)")
		assert.Regexp(t, `Watertight\s*│\s*true\s`, stdout)
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := execute(t, "convert", "missing.png", "-o", "missing.stl")
		require.Error(t, err)
		assert.True(t, convert.IsNotFound(err))
		assert.NoFileExists(t, "missing.stl")
	})

	t.Run("bad params", func(t *testing.T) {
		_, err := execute(t, "convert", "in.png", "-o", "bad.stl", "--min", "5", "--max", "1")
		require.Error(t, err)
		assert.NoFileExists(t, "bad.stl")
	})

	t.Run("batch", func(t *testing.T) {
		require.NoError(t, os.Mkdir("imgs", 0755))
		writePNG(t, filepath.Join("imgs", "a.png"))
		writePNG(t, filepath.Join("imgs", "b.png"))

		stdout, err := execute(t, "batch", "imgs", "-o", "stls", "--workers", "2")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Converted: 2/2")
		assert.FileExists(t, filepath.Join("stls", "a.stl"))
		assert.FileExists(t, filepath.Join("stls", "b.stl"))
		assert.FileExists(t, filepath.Join("stls", "manifest.json"))
	})
}
