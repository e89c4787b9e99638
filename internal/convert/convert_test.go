package convert

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2stl/internal/mesh"
	"img2stl/internal/preview"
	"img2stl/internal/relief"
	"img2stl/internal/stl"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*37 + y*91) % 256)})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func options(in string) Options {
	return Options{Input: in, Params: relief.DefaultParams(), Format: stl.Binary}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "logo.png")
	writePNG(t, in, 6, 4)

	res, err := Run(context.Background(), options(in))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "logo.stl"), res.Output)
	assert.Equal(t, 6, res.Width)
	assert.Equal(t, 4, res.Height)
	assert.Equal(t, relief.TriangleCount(6, 4), res.Triangles)
	assert.Greater(t, res.Volume, 0.0)

	m, err := stl.Read(res.Output)
	require.NoError(t, err)
	assert.Equal(t, res.Triangles, m.TriangleCount())
	assert.True(t, mesh.Check(m).Watertight())
}

func TestRunWithPreviewAndMaxSide(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "big.png")
	writePNG(t, in, 40, 20)

	opts := options(in)
	opts.Output = filepath.Join(dir, "out", "big.stl")
	opts.Format = stl.ASCII
	opts.MaxSide = 10
	opts.Preview = filepath.Join(dir, "out", "big.webp")
	opts.PreviewOptions = preview.DefaultOptions()

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Width)
	assert.Equal(t, 5, res.Height)
	assert.FileExists(t, res.Output)
	assert.FileExists(t, res.Preview)

	m, err := stl.Read(res.Output)
	require.NoError(t, err)
	assert.Equal(t, "big", m.Name)
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	opts := options(filepath.Join(dir, "nope.png"))

	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsProcessing(err))
	assert.ErrorIs(t, err, os.ErrNotExist)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no output on failure")
}

func TestRunProcessingFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writePNG(t, good, 3, 3)
	corrupt := filepath.Join(dir, "corrupt.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("\x89PNG\r\n\x1a\nbroken"), 0644))

	tests := []struct {
		name string
		opts Options
		op   string
	}{
		{
			name: "corrupt image",
			opts: options(corrupt),
			op:   "load",
		},
		{
			name: "bad params",
			opts: Options{Input: good, Params: relief.Params{MinThickness: 2, MaxThickness: 1}},
			op:   "validate",
		},
		{
			name: "unknown format",
			opts: Options{Input: good, Params: relief.DefaultParams(), Format: "obj"},
			op:   "save",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Output = filepath.Join(dir, tt.name+".stl")
			_, err := Run(context.Background(), tt.opts)
			require.Error(t, err)
			assert.True(t, IsProcessing(err))

			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.op, ce.Op)
			assert.NoFileExists(t, tt.opts.Output)
		})
	}
}

func TestRunPreviewFailureKeepsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writePNG(t, in, 3, 2)
	out := filepath.Join(dir, "a.stl")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0644))

	opts := options(in)
	opts.Output = out
	opts.Preview = filepath.Join(dir, "a.webp")
	opts.PreviewOptions = preview.Options{PixelsPerUnit: 0}

	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "preview", ce.Op)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
	assert.NoFileExists(t, opts.Preview)
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writePNG(t, in, 2, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, options(in))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsProcessing(err))
	assert.NoFileExists(t, OutputPath(in))
}

func TestBuildWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.png")
	writePNG(t, in, 1, 1)

	m, w, h, err := Build(context.Background(), options(in))
	require.NoError(t, err)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, 12, m.TriangleCount())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindNotFound, Op: "load", Path: "x.png", Err: os.ErrNotExist}
	assert.Equal(t, "convert: load x.png: file does not exist", err.Error())
	assert.Equal(t, "not found", KindNotFound.String())
	assert.Equal(t, "processing failure", KindProcessing.String())
	assert.False(t, IsNotFound(nil))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "dir/a.stl", OutputPath("dir/a.png"))
	assert.Equal(t, "dir/a.b.stl", OutputPath("dir/a.b.jpeg"))
	assert.Equal(t, "noext.webp", PreviewPath("noext"))
}
