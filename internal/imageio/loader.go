// Package imageio decodes source rasters into 8-bit grayscale.
package imageio

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

type decoder struct {
	name   string
	exts   []string
	sniff  func(head []byte) bool
	decode func(io.Reader) (image.Image, error)
}

// decoders are tried by extension first, then by header. TGA has no magic
// number, so it is only chosen by extension or as the last resort. The
// package-level image registry is not used because the tga package registers
// itself with an empty magic string that would match every file.
var decoders = []decoder{
	{"png", []string{".png"}, prefix("\x89PNG\r\n\x1a\n"), png.Decode},
	{"jpeg", []string{".jpg", ".jpeg"}, prefix("\xff\xd8"), jpeg.Decode},
	{"gif", []string{".gif"}, prefix("GIF87a", "GIF89a"), gif.Decode},
	{"bmp", []string{".bmp"}, prefix("BM"), bmp.Decode},
	{"tiff", []string{".tif", ".tiff"}, prefix("II*\x00", "MM\x00*"), tiff.Decode},
	{"webp", []string{".webp"}, func(h []byte) bool { return len(h) >= 12 && string(h[:4]) == "RIFF" && string(h[8:12]) == "WEBP" }, webp.Decode},
	{"tga", []string{".tga"}, nil, tga.Decode},
}

func prefix(magics ...string) func([]byte) bool {
	return func(h []byte) bool {
		for _, m := range magics {
			if bytes.HasPrefix(h, []byte(m)) {
				return true
			}
		}
		return false
	}
}

// Supported reports whether path has an extension LoadGray knows.
func Supported(path string) bool {
	return byExtension(path) != nil
}

func byExtension(path string) *decoder {
	ext := strings.ToLower(filepath.Ext(path))
	for i := range decoders {
		for _, e := range decoders[i].exts {
			if e == ext {
				return &decoders[i]
			}
		}
	}
	return nil
}

func byHeader(head []byte) *decoder {
	for i := range decoders {
		if decoders[i].sniff != nil && decoders[i].sniff(head) {
			return &decoders[i]
		}
	}
	return &decoders[len(decoders)-1]
}

// Decode reads one image. The extension of name picks the decoder; when it
// is unknown the header bytes decide.
func Decode(r io.Reader, name string) (image.Image, string, error) {
	br := bufio.NewReader(r)
	d := byExtension(name)
	if d == nil {
		head, _ := br.Peek(12)
		d = byHeader(head)
	}
	img, err := d.decode(br)
	if err != nil {
		return nil, d.name, err
	}
	return img, d.name, nil
}

// LoadGray reads an image file and converts it to 8-bit luminance.
// A missing file yields an error wrapping fs.ErrNotExist.
func LoadGray(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := Decode(f, path)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s as %s: %w", path, format, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("imageio: %s has no pixels", path)
	}
	return ToGray(img), nil
}

// ToGray converts any image to grayscale. Translucent pixels are composited
// over white first, so transparent areas come out as the thinnest relief.
func ToGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(b)
	switch src.(type) {
	case *image.YCbCr, *image.Gray16, *image.CMYK:
		// Opaque formats convert directly.
		draw.Draw(dst, b, src, b.Min, draw.Src)
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				dst.SetGray(x, y, color.GrayModel.Convert(overWhite(c)).(color.Gray))
			}
		}
	}
	return dst
}

func overWhite(c color.NRGBA) color.RGBA {
	if c.A == 255 {
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	a := uint32(c.A)
	blend := func(v uint8) uint8 {
		return uint8((uint32(v)*a + 255*(255-a) + 127) / 255)
	}
	return color.RGBA{blend(c.R), blend(c.G), blend(c.B), 255}
}

// Fit shrinks img so that its longer side is at most maxSide pixels,
// resampling with Catmull-Rom. maxSide <= 0 or a small image returns img.
func Fit(img *image.Gray, maxSide int) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}
	scale := float64(maxSide) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))

	dst := image.NewGray(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
