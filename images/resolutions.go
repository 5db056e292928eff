// Package images provides the raster data model, codecs and named resolution
// presets used when resampling sprite sheets, textures and video frames.
package images

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ResolutionKind groups presets by what they are typically used for.
type ResolutionKind string

const (
	// KindTexture is a square power-of-two texture or sprite sheet.
	KindTexture ResolutionKind = "texture"
	// KindVideo is a common display or video frame size.
	KindVideo ResolutionKind = "video"
)

// ResolutionType is the short name of a preset, e.g. "1080p" or "tex256".
type ResolutionType string

// Presets understood by ParseResolution.
const (
	ResolutionTex16   ResolutionType = "tex16"
	ResolutionTex32   ResolutionType = "tex32"
	ResolutionTex64   ResolutionType = "tex64"
	ResolutionTex128  ResolutionType = "tex128"
	ResolutionTex256  ResolutionType = "tex256"
	ResolutionTex512  ResolutionType = "tex512"
	ResolutionTex1024 ResolutionType = "tex1024"
	ResolutionTex2048 ResolutionType = "tex2048"
	ResolutionTex4096 ResolutionType = "tex4096"
	ResolutionNHD     ResolutionType = "360p"
	ResolutionSD      ResolutionType = "480p"
	ResolutionHD      ResolutionType = "720p"
	ResolutionFHD     ResolutionType = "1080p"
	ResolutionQHD     ResolutionType = "1440p"
	Resolution4K      ResolutionType = "4k"
	Resolution8K      ResolutionType = "8k"
)

// ResolutionPixels describes the exact dimensions of a resolution.
type ResolutionPixels struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Resolution is a named target or source size.
type Resolution struct {
	Name   ResolutionType   `json:"name" yaml:"name"`
	Kind   ResolutionKind   `json:"kind" yaml:"kind"`
	Pixels ResolutionPixels `json:"pixels" yaml:"pixels"`
}

// GetMegaPixels returns the pixel count in megapixels rounded to two decimals.
func (r Resolution) GetMegaPixels() float64 {
	if r.Pixels.Width <= 0 || r.Pixels.Height <= 0 {
		return 0.0
	}
	mp := float64(r.Pixels.Width*r.Pixels.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	if r.Name == "" {
		return fmt.Sprintf("%dx%d", r.Pixels.Width, r.Pixels.Height)
	}
	return fmt.Sprintf("%s (%dx%d)", r.Name, r.Pixels.Width, r.Pixels.Height)
}

func texture(name ResolutionType, side int) Resolution {
	return Resolution{Name: name, Kind: KindTexture, Pixels: ResolutionPixels{Width: side, Height: side}}
}

func video(name ResolutionType, w, h int) Resolution {
	return Resolution{Name: name, Kind: KindVideo, Pixels: ResolutionPixels{Width: w, Height: h}}
}

var resolutions = map[ResolutionType]Resolution{
	ResolutionTex16:   texture(ResolutionTex16, 16),
	ResolutionTex32:   texture(ResolutionTex32, 32),
	ResolutionTex64:   texture(ResolutionTex64, 64),
	ResolutionTex128:  texture(ResolutionTex128, 128),
	ResolutionTex256:  texture(ResolutionTex256, 256),
	ResolutionTex512:  texture(ResolutionTex512, 512),
	ResolutionTex1024: texture(ResolutionTex1024, 1024),
	ResolutionTex2048: texture(ResolutionTex2048, 2048),
	ResolutionTex4096: texture(ResolutionTex4096, 4096),
	ResolutionNHD:     video(ResolutionNHD, 640, 360),
	ResolutionSD:      video(ResolutionSD, 854, 480),
	ResolutionHD:      video(ResolutionHD, 1280, 720),
	ResolutionFHD:     video(ResolutionFHD, 1920, 1080),
	ResolutionQHD:     video(ResolutionQHD, 2560, 1440),
	Resolution4K:      video(Resolution4K, 3840, 2160),
	Resolution8K:      video(Resolution8K, 7680, 4320),
}

// GetAllResolutions returns every preset ordered by pixel count, then name.
func GetAllResolutions() []Resolution {
	all := make([]Resolution, 0, len(resolutions))
	for _, res := range resolutions {
		all = append(all, res)
	}
	sort.Slice(all, func(i, j int) bool {
		pi := all[i].Pixels.Width * all[i].Pixels.Height
		pj := all[j].Pixels.Width * all[j].Pixels.Height
		if pi != pj {
			return pi < pj
		}
		return all[i].Name < all[j].Name
	})
	return all
}

// GetResolutionByType retrieves a preset by name.
func GetResolutionByType(t ResolutionType) (Resolution, bool) {
	res, ok := resolutions[ResolutionType(strings.ToLower(string(t)))]
	return res, ok
}

// ParseResolution accepts either a preset name ("1080p", "tex256") or an
// explicit "WIDTHxHEIGHT" pair. Zero is a valid dimension; negatives are not.
//
// Arguments:
//   - s: The user supplied resolution.
//
// Returns:
//   - Resolution: The parsed resolution. Explicit pairs have an empty Name.
//   - error: If s is neither a preset nor a well formed pair.
func ParseResolution(s string) (Resolution, error) {
	s = strings.TrimSpace(s)
	if res, ok := GetResolutionByType(ResolutionType(s)); ok {
		return res, nil
	}

	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return Resolution{}, errors.Errorf("unknown resolution %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Resolution{}, errors.Wrapf(err, "parsing width of %q", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Resolution{}, errors.Wrapf(err, "parsing height of %q", s)
	}
	if width < 0 || height < 0 {
		return Resolution{}, errors.Errorf("negative resolution %q", s)
	}
	return Resolution{Pixels: ResolutionPixels{Width: width, Height: height}}, nil
}
