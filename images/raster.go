package images

import (
	"fmt"
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// ErrInvalidRaster is returned when a raster's dimensions and pixel buffer disagree.
var ErrInvalidRaster = errors.New("invalid raster")

// Color is a four channel color with normalized channels.
//
// No gamma conversion or alpha blending is ever applied to a Color; resampling
// copies it verbatim.
type Color struct {
	R float32 `json:"r" yaml:"r"`
	G float32 `json:"g" yaml:"g"`
	B float32 `json:"b" yaml:"b"`
	A float32 `json:"a" yaml:"a"`
}

// Common colors.
var (
	Transparent = Color{}
	Black       = Color{A: 1}
	White       = Color{R: 1, G: 1, B: 1, A: 1}
	Red         = Color{R: 1, A: 1}
	Green       = Color{G: 1, A: 1}
	Blue        = Color{B: 1, A: 1}
)

// Raster is a decoded image held as a dense, row-major slice of colors.
type Raster struct {
	// Width is the number of columns.
	Width int
	// Height is the number of rows.
	Height int
	// Pix holds Width*Height colors, row 0 first.
	Pix []Color
}

// NewRaster allocates a zeroed raster of the given size.
// Negative dimensions are treated as zero.
func NewRaster(width, height int) *Raster {
	width = max(width, 0)
	height = max(height, 0)
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]Color, width*height),
	}
}

// Empty reports whether the raster has no pixels.
func (r *Raster) Empty() bool {
	return r == nil || r.Width <= 0 || r.Height <= 0
}

// Validate checks that the pixel buffer matches the declared dimensions.
func (r *Raster) Validate() error {
	if r == nil {
		return errors.Wrap(ErrInvalidRaster, "raster is nil")
	}
	if r.Width < 0 || r.Height < 0 {
		return errors.Wrapf(ErrInvalidRaster, "negative dimensions %dx%d", r.Width, r.Height)
	}
	if len(r.Pix) != r.Width*r.Height {
		return errors.Wrapf(ErrInvalidRaster, "%dx%d raster holds %d pixels", r.Width, r.Height, len(r.Pix))
	}
	return nil
}

// At returns the color at (x, y). It panics when either coordinate lies
// outside the raster.
func (r *Raster) At(x, y int) Color {
	return r.Pix[r.offset(x, y)]
}

// Set stores c at (x, y). It panics when either coordinate lies outside the
// raster.
func (r *Raster) Set(x, y int, c Color) {
	r.Pix[r.offset(x, y)] = c
}

// Row returns the slice backing row y. It panics when y lies outside the
// raster.
func (r *Raster) Row(y int) []Color {
	if uint(y) >= uint(r.Height) {
		panic(fmt.Sprintf("images: row %d out of range [0,%d)", y, r.Height))
	}
	return r.Pix[y*r.Width : (y+1)*r.Width]
}

// offset maps (x, y) to an index into Pix. Without the column check an x past
// Width would silently address the next row.
func (r *Raster) offset(x, y int) int {
	if uint(x) >= uint(r.Width) || uint(y) >= uint(r.Height) {
		panic(fmt.Sprintf("images: pixel (%d,%d) out of range %dx%d", x, y, r.Width, r.Height))
	}
	return y*r.Width + x
}

// Fill sets every pixel to c.
func (r *Raster) Fill(c Color) {
	for i := range r.Pix {
		r.Pix[i] = c
	}
}

// FromImage converts any image.Image into a Raster using straight (non
// premultiplied) alpha at 16-bit precision.
//
// Arguments:
//   - img: The image to convert. Its bounds may have a non-zero origin.
//
// Returns:
//   - *Raster: A raster whose (0, 0) maps to img.Bounds().Min.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	dst := NewRaster(b.Dx(), b.Dy())

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < dst.Height; y++ {
			off := (y+b.Min.Y-src.Rect.Min.Y)*src.Stride + (b.Min.X-src.Rect.Min.X)*4
			row := dst.Row(y)
			for x := range row {
				p := src.Pix[off+x*4 : off+x*4+4 : off+x*4+4]
				row[x] = Color{
					R: float32(p[0]) / 255,
					G: float32(p[1]) / 255,
					B: float32(p[2]) / 255,
					A: float32(p[3]) / 255,
				}
			}
		}
		return dst
	}

	for y := 0; y < dst.Height; y++ {
		row := dst.Row(y)
		for x := range row {
			c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			row[x] = Color{
				R: float32(c.R) / 0xffff,
				G: float32(c.G) / 0xffff,
				B: float32(c.B) / 0xffff,
				A: float32(c.A) / 0xffff,
			}
		}
	}
	return dst
}

// ToImage converts the raster to a 16-bit non-premultiplied image anchored at (0, 0).
func (r *Raster) ToImage() *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x, c := range r.Row(y) {
			img.SetNRGBA64(x, y, color.NRGBA64{
				R: channel16(c.R),
				G: channel16(c.G),
				B: channel16(c.B),
				A: channel16(c.A),
			})
		}
	}
	return img
}

// channel16 quantizes a normalized channel to 16 bits, clamping out-of-range values.
func channel16(v float32) uint16 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}

// ToNRGBA converts the raster to an 8-bit non-premultiplied image anchored at (0, 0).
func (r *Raster) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		off := y * img.Stride
		for x, c := range r.Row(y) {
			p := img.Pix[off+x*4 : off+x*4+4 : off+x*4+4]
			p[0] = channel8(c.R)
			p[1] = channel8(c.G)
			p[2] = channel8(c.B)
			p[3] = channel8(c.A)
		}
	}
	return img
}

func channel8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	}
	return uint8(v*0xff + 0.5)
}
