package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 100), B: 7, A: uint8(255 - x)})
		}
	}
	return img
}

func TestNewRaster(t *testing.T) {
	r := NewRaster(3, 2)
	assert.Equal(t, 3, r.Width)
	assert.Equal(t, 2, r.Height)
	assert.Len(t, r.Pix, 6)
	assert.False(t, r.Empty())
	assert.NoError(t, r.Validate())

	neg := NewRaster(-1, 5)
	assert.Equal(t, 0, neg.Width)
	assert.True(t, neg.Empty())
	assert.NoError(t, neg.Validate())
}

func TestRaster_Validate(t *testing.T) {
	var nilRaster *Raster
	assert.True(t, errors.Is(nilRaster.Validate(), ErrInvalidRaster))
	assert.True(t, nilRaster.Empty())

	bad := &Raster{Width: 2, Height: 2, Pix: make([]Color, 3)}
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidRaster))

	neg := &Raster{Width: -2, Height: -2, Pix: make([]Color, 4)}
	assert.True(t, errors.Is(neg.Validate(), ErrInvalidRaster))
}

func TestRaster_AccessorsAreRowMajor(t *testing.T) {
	r := NewRaster(3, 2)
	r.Set(2, 1, Red)
	assert.Equal(t, Red, r.Pix[5])
	assert.Equal(t, Red, r.At(2, 1))
	assert.Equal(t, []Color{{}, {}, Red}, r.Row(1))

	r.Fill(Blue)
	for _, c := range r.Pix {
		assert.Equal(t, Blue, c)
	}
}

func TestRaster_AccessorsRejectOutOfRange(t *testing.T) {
	r := NewRaster(3, 2)

	tests := []struct {
		name string
		fn   func()
	}{
		{"At column past width", func() { r.At(3, 0) }},
		{"At negative column", func() { r.At(-1, 1) }},
		{"At row past height", func() { r.At(0, 2) }},
		{"Set column past width", func() { r.Set(3, 0, Red) }},
		{"Row past height", func() { r.Row(2) }},
		{"Row negative", func() { r.Row(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}
	assert.Equal(t, Color{}, r.At(0, 1), "rejected Set must not spill into the next row")
}

func TestFromImage_NRGBARoundTrip(t *testing.T) {
	src := getTestImage()
	r := FromImage(src)
	require.Equal(t, 4, r.Width)
	require.Equal(t, 3, r.Height)

	assert.Equal(t, src.Pix, r.ToNRGBA().Pix)
}

func TestFromImage_GenericPathMatchesFastPath(t *testing.T) {
	src := getTestImage()

	// NRGBA64 goes through the color model conversion.
	generic := image.NewNRGBA64(src.Rect)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			c := src.NRGBAAt(x, y)
			generic.SetNRGBA64(x, y, color.NRGBA64{
				R: uint16(c.R) * 0x101,
				G: uint16(c.G) * 0x101,
				B: uint16(c.B) * 0x101,
				A: uint16(c.A) * 0x101,
			})
		}
	}

	assert.Equal(t, ComputeChecksum(FromImage(src)), ComputeChecksum(FromImage(generic)))
}

func TestFromImage_NonZeroOrigin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 20, 12, 22))
	img.SetNRGBA(11, 21, color.NRGBA{R: 255, A: 255})

	r := FromImage(img)
	require.Equal(t, 2, r.Width)
	assert.Equal(t, Red, r.At(1, 1))
	assert.Equal(t, Transparent, r.At(0, 0))
}

func TestToImage_SixteenBitRoundTrip(t *testing.T) {
	img := image.NewNRGBA64(image.Rect(0, 0, 2, 1))
	img.SetNRGBA64(0, 0, color.NRGBA64{R: 1, G: 0x8000, B: 0xfffe, A: 0xffff})
	img.SetNRGBA64(1, 0, color.NRGBA64{R: 12345, G: 54321, B: 0, A: 1000})

	back := FromImage(img).ToImage()
	assert.Equal(t, img.Pix, back.Pix)
}

func TestChannelClamping(t *testing.T) {
	r := NewRaster(1, 1)
	r.Set(0, 0, Color{R: -0.5, G: 1.5, B: 0.5, A: 1})

	p := r.ToNRGBA().Pix
	assert.Equal(t, []uint8{0, 255, 128, 255}, p)

	q := r.ToImage().NRGBA64At(0, 0)
	assert.Equal(t, uint16(0), q.R)
	assert.Equal(t, uint16(0xffff), q.G)
}

func TestComputeChecksum(t *testing.T) {
	a := FromImage(getTestImage())
	b := FromImage(getTestImage())
	assert.Equal(t, ComputeChecksum(a), ComputeChecksum(b))

	b.Set(0, 0, White)
	assert.NotEqual(t, ComputeChecksum(a), ComputeChecksum(b))

	// Same pixels, different shape.
	reshaped := &Raster{Width: a.Height, Height: a.Width, Pix: a.Pix}
	assert.NotEqual(t, ComputeChecksum(a), ComputeChecksum(reshaped))

	assert.Equal(t, "empty", ComputeChecksum(NewRaster(0, 4)))
	assert.Equal(t, "empty", ComputeChecksum(nil))
}
