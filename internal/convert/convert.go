// Package convert turns one grayscale image into a watertight STL relief.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"img2stl/internal/imageio"
	"img2stl/internal/logger"
	"img2stl/internal/mathutil"
	"img2stl/internal/mesh"
	"img2stl/internal/preview"
	"img2stl/internal/relief"
	"img2stl/internal/stl"
)

// Options describes one conversion.
type Options struct {
	Input   string
	Output  string // defaults to Input with a .stl extension
	Params  relief.Params
	Format  stl.Format
	MaxSide int // downscale the image first, 0 keeps full resolution

	Preview        string // WebP path, empty for none
	PreviewOptions preview.Options
}

// Result summarises a finished conversion.
type Result struct {
	Input     string
	Output    string
	Preview   string
	Width     int
	Height    int
	Triangles int
	Volume    float64
	Duration  time.Duration
}

// OutputPath swaps the extension of input for .stl.
func OutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".stl"
}

// PreviewPath swaps the extension of input for .webp.
func PreviewPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".webp"
}

// Run executes the pipeline. Nothing is written unless the complete mesh
// passed verification and its preview, if any, was encoded. Each file is
// renamed into place whole, so a failure never leaves a truncated file.
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	if opts.Output == "" {
		opts.Output = OutputPath(opts.Input)
	}

	m, w, h, err := Build(ctx, opts)
	if err != nil {
		return nil, err
	}

	// The preview is encoded before anything touches the disk, so a preview
	// that cannot be rendered leaves an existing STL alone.
	var webp []byte
	if opts.Preview != "" {
		if webp, err = preview.Encode(m, opts.PreviewOptions); err != nil {
			return nil, processing("preview", opts.Preview, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, processing("save", opts.Output, err)
	}
	if err := stl.Save(opts.Output, m, opts.Format); err != nil {
		return nil, processing("save", opts.Output, err)
	}
	if webp != nil {
		if err := preview.WriteFile(opts.Preview, webp); err != nil {
			return nil, processing("preview", opts.Preview, err)
		}
	}

	res := &Result{
		Input:     opts.Input,
		Output:    opts.Output,
		Preview:   opts.Preview,
		Width:     w,
		Height:    h,
		Triangles: m.TriangleCount(),
		Volume:    m.SignedVolume(),
		Duration:  time.Since(start),
	}
	logger.Debug("converted",
		zap.String("input", res.Input),
		zap.String("output", res.Output),
		zap.Int("triangles", res.Triangles),
		zap.Duration("took", res.Duration))
	return res, nil
}

// Build runs every stage up to and including verification and returns the
// mesh with the pixel size it was built from. It writes nothing.
func Build(ctx context.Context, opts Options) (*mesh.Mesh, int, int, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, 0, 0, processing("validate", "", err)
	}

	img, err := imageio.LoadGray(opts.Input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, 0, &Error{Kind: KindNotFound, Op: "load", Path: opts.Input, Err: err}
		}
		return nil, 0, 0, processing("load", opts.Input, err)
	}
	img = imageio.Fit(img, opts.MaxSide)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	logger.Debug("image loaded", zap.String("path", opts.Input), zap.Int("width", w), zap.Int("height", h))

	if err := ctx.Err(); err != nil {
		return nil, 0, 0, processing("build", opts.Input, err)
	}
	m, err := relief.Build(img, opts.Params)
	if err != nil {
		return nil, 0, 0, processing("build", opts.Input, err)
	}
	m.Name = strings.TrimSuffix(filepath.Base(opts.Input), filepath.Ext(opts.Input))

	if err := ctx.Err(); err != nil {
		return nil, 0, 0, processing("verify", opts.Input, err)
	}
	if err := verify(m); err != nil {
		return nil, 0, 0, processing("verify", opts.Input, err)
	}
	return m, w, h, nil
}

func verify(m *mesh.Mesh) error {
	r := mesh.Check(m)
	if !r.Watertight() {
		return fmt.Errorf("mesh is not watertight: %d boundary, %d non-manifold, %d misoriented edges",
			r.BoundaryEdges, r.NonManifoldEdges, r.MisorientedEdges)
	}
	if n := m.Degenerate(mathutil.Eps); n > 0 {
		return fmt.Errorf("mesh has %d degenerate triangles", n)
	}
	if v := m.SignedVolume(); v <= 0 {
		return fmt.Errorf("mesh encloses non-positive volume %g", v)
	}
	return nil
}
