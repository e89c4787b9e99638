package raster

import (
	"image"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // elevation per pixel, len = W*H, initialized to -inf
}

// NewFrameBuffer allocates a colour buffer filled with bg and a -inf z-buffer.
func NewFrameBuffer(w, h int, bg [4]uint8) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	color := make([]uint8, n*4)
	for i := 0; i < n; i++ {
		copy(color[i*4:], bg[:])
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  color,
		ZBuf:   zbuf,
	}
}

// Image copies the colour buffer into an NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}
