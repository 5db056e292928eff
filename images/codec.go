package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// DefaultQuality is used for lossy formats when EncodeOptions.Quality is zero.
const DefaultQuality = 90

// EncodeOptions tunes Encode.
type EncodeOptions struct {
	// Quality for JPEG and lossy WebP, 1-100. Zero selects DefaultQuality.
	Quality int `json:"quality" yaml:"quality"`
	// Lossless selects lossless WebP.
	Lossless bool `json:"lossless" yaml:"lossless"`
	// Depth16 keeps 16 bits per channel for PNG and TIFF.
	Depth16 bool `json:"depth16" yaml:"depth16"`
}

func (o EncodeOptions) quality() int {
	if o.Quality <= 0 {
		return DefaultQuality
	}
	return min(o.Quality, 100)
}

// Decode parses an encoded image into a raster.
//
// Arguments:
//   - img: The encoded image. Format must be set.
//
// Returns:
//   - *Raster: The decoded pixels.
//   - error: If the data is empty, the format unsupported or the payload corrupt.
func Decode(img Image) (*Raster, error) {
	if len(img.Data) == 0 {
		return nil, errors.New("empty image data")
	}

	decoded, err := decodeImage(bytes.NewReader(img.Data), img.Format)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s image", img.Format)
	}
	return FromImage(decoded), nil
}

func decodeImage(r io.Reader, format ImageFormat) (image.Image, error) {
	switch format {
	case FormatJPEG:
		return jpeg.Decode(r)
	case FormatPNG:
		return png.Decode(r)
	case FormatWebP:
		return webp.Decode(r)
	case FormatBMP:
		return bmp.Decode(r)
	case FormatTIFF:
		return tiff.Decode(r)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
}

// Encode serializes a raster in the requested format.
//
// Arguments:
//   - r: The raster to encode. It must have at least one pixel.
//   - format: The output format.
//   - opts: Format specific options.
//
// Returns:
//   - Image: The encoded image with its dimensions.
//   - error: If the raster is empty or invalid, or the encoder fails.
func Encode(r *Raster, format ImageFormat, opts EncodeOptions) (Image, error) {
	if err := r.Validate(); err != nil {
		return Image{}, err
	}
	if r.Empty() {
		return Image{}, errors.Errorf("cannot encode empty %dx%d raster", r.Width, r.Height)
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, r.ToNRGBA(), &jpeg.Options{Quality: opts.quality()})
	case FormatPNG:
		err = png.Encode(&buf, r.image(opts.Depth16))
	case FormatWebP:
		err = webp.Encode(&buf, r.ToNRGBA(), &webp.Options{
			Lossless: opts.Lossless,
			Quality:  float32(opts.quality()),
		})
	case FormatBMP:
		err = bmp.Encode(&buf, r.ToNRGBA())
	case FormatTIFF:
		err = tiff.Encode(&buf, r.image(opts.Depth16), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return Image{}, errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}
	if err != nil {
		return Image{}, errors.Wrapf(err, "failed to encode %s image", format)
	}

	return Image{
		Format: format,
		Data:   buf.Bytes(),
		Width:  r.Width,
		Height: r.Height,
	}, nil
}

func (r *Raster) image(depth16 bool) image.Image {
	if depth16 {
		return r.ToImage()
	}
	return r.ToNRGBA()
}
