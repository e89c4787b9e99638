// Package preview writes a hillshaded top view of a relief mesh as WebP.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"

	"img2stl/internal/mesh"
	"img2stl/internal/postprocess"
	"img2stl/internal/raster"
)

// Options controls the preview resolution.
type Options struct {
	PixelsPerUnit float64 `yaml:"pixels_per_unit"`
	Supersample   int     `yaml:"supersample"`
}

// DefaultOptions renders four pixels per source pixel, supersampled twice.
func DefaultOptions() Options {
	return Options{PixelsPerUnit: 4, Supersample: 2}
}

// Render draws m from above and returns the downsampled image.
func Render(m *mesh.Mesh, opts Options) (*image.NRGBA, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("preview: mesh %q is empty", m.Name)
	}
	if opts.PixelsPerUnit <= 0 {
		return nil, fmt.Errorf("preview: pixels per unit must be positive, got %g", opts.PixelsPerUnit)
	}
	ss := opts.Supersample
	if ss < 1 {
		ss = 1
	}

	lc := raster.DefaultLightConfig()
	img := raster.RenderTop(m, opts.PixelsPerUnit*float64(ss), &lc)
	if ss > 1 {
		w, h := postprocess.Shrink(img.Bounds().Dx(), img.Bounds().Dy(), ss)
		img = postprocess.Downsample(img, w, h)
	}
	return img, nil
}

// Encode renders m and returns it as lossless WebP.
func Encode(m *mesh.Mesh, opts Options) ([]byte, error) {
	img, err := Render(m, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("preview: encode %q: %w", m.Name, err)
	}
	return buf.Bytes(), nil
}

// Save renders m and writes it to path as lossless WebP.
func Save(path string, m *mesh.Mesh, opts Options) error {
	data, err := Encode(m, opts)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// WriteFile writes encoded preview data under a temporary name and renames
// it into place.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("preview: create dir %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, ".img2stl-*.webp.tmp")
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", path, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("preview: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("preview: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("preview: rename %s: %w", path, err)
	}
	return nil
}
