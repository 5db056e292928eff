package benchmark

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"github.com/nvr-ai/go-pointscale/images"
	"github.com/nvr-ai/go-pointscale/resample"
)

// EngineType names a resize implementation.
type EngineType string

const (
	// EnginePointscale is the resample package.
	EnginePointscale EngineType = "pointscale"
	// EngineNFNT is github.com/nfnt/resize with its NearestNeighbor filter.
	EngineNFNT EngineType = "nfnt"
	// EngineXDraw is golang.org/x/image/draw.NearestNeighbor.
	EngineXDraw EngineType = "xdraw"
	// EngineImaging is github.com/disintegration/imaging with its NearestNeighbor filter.
	EngineImaging EngineType = "imaging"
)

// Engines returns every engine type.
func Engines() []EngineType {
	return []EngineType{EnginePointscale, EngineNFNT, EngineXDraw, EngineImaging}
}

// Valid reports whether e names a known engine.
func (e EngineType) Valid() bool {
	switch e {
	case EnginePointscale, EngineNFNT, EngineXDraw, EngineImaging:
		return true
	}
	return false
}

// Engine repeatedly resizes one prepared source. Source conversion happens
// once, outside the timed loop.
type Engine interface {
	Type() EngineType
	Resize(width, height int) error
	// Result returns the last output as a raster.
	Result() *images.Raster
}

// NewEngine prepares src for the given engine.
func NewEngine(t EngineType, src *images.Raster, workers int, pool *resample.Pool) (Engine, error) {
	switch t {
	case EnginePointscale:
		return &pointscaleEngine{
			resizer: resample.NewResizer(resample.Options{Workers: workers, Pool: pool}),
			src:     src,
		}, nil
	case EngineNFNT:
		return &stdEngine{kind: t, src: src.ToNRGBA(), resize: nfntResize}, nil
	case EngineXDraw:
		return &stdEngine{kind: t, src: src.ToNRGBA(), resize: xdrawResize}, nil
	case EngineImaging:
		return &stdEngine{kind: t, src: src.ToNRGBA(), resize: imagingResize}, nil
	}
	return nil, errors.Errorf("unknown engine %q", t)
}

type pointscaleEngine struct {
	resizer *resample.Resizer
	src     *images.Raster
	last    *images.Raster
}

func (e *pointscaleEngine) Type() EngineType { return EnginePointscale }

func (e *pointscaleEngine) Resize(width, height int) error {
	out, err := e.resizer.Resize(e.src, width, height)
	if err != nil {
		return err
	}
	e.last = out
	return nil
}

func (e *pointscaleEngine) Result() *images.Raster { return e.last }

// stdEngine wraps a third-party image.Image resizer. These sample pixel
// centres, so only integer upscales are expected to match pointscale.
type stdEngine struct {
	kind   EngineType
	src    image.Image
	last   image.Image
	resize func(src image.Image, width, height int) image.Image
}

func (e *stdEngine) Type() EngineType { return e.kind }

func (e *stdEngine) Resize(width, height int) error {
	e.last = e.resize(e.src, width, height)
	return nil
}

func (e *stdEngine) Result() *images.Raster {
	if e.last == nil {
		return nil
	}
	return images.FromImage(e.last)
}

func nfntResize(src image.Image, width, height int) image.Image {
	return resize.Resize(uint(width), uint(height), src, resize.NearestNeighbor)
}

func xdrawResize(src image.Image, width, height int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func imagingResize(src image.Image, width, height int) image.Image {
	return imaging.Resize(src, width, height, imaging.NearestNeighbor)
}
