// Package sprites - Sprite-sheet metadata that must follow its texture when
// the texture is resampled.
package sprites

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SidecarSuffix is appended to an image path to locate its sprite metadata.
const SidecarSuffix = ".sprites.yaml"

// Rect is a sprite's pixel rectangle inside its sheet.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Pivot is a normalized anchor point; (0.5, 0.5) is the sprite center.
type Pivot struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Sprite is one named region of a sheet.
type Sprite struct {
	Name  string `json:"name" yaml:"name"`
	Rect  Rect   `json:"rect" yaml:"rect"`
	Pivot Pivot  `json:"pivot" yaml:"pivot"`
}

// Sheet describes how a texture is cut into sprites.
type Sheet struct {
	// PixelsPerUnit is how many texture pixels make up one world unit.
	PixelsPerUnit float64  `json:"pixelsPerUnit" yaml:"pixelsPerUnit"`
	Sprites       []Sprite `json:"sprites" yaml:"sprites"`
}

// Scale rescales the sheet for a texture resized by sx horizontally and sy
// vertically. Rect positions and sizes scale per axis; pixels-per-unit follows
// the horizontal factor so that sprites keep their world-space size; pivots are
// normalized and stay as they are.
//
// Arguments:
//   - sx: Horizontal factor, newWidth / oldWidth. Must be positive.
//   - sy: Vertical factor, newHeight / oldHeight. Must be positive.
//
// Returns:
//   - error: If either factor is not positive.
func (s *Sheet) Scale(sx, sy float64) error {
	if sx <= 0 || sy <= 0 {
		return errors.Errorf("scale factors must be positive, got %gx%g", sx, sy)
	}

	s.PixelsPerUnit *= sx
	for i := range s.Sprites {
		r := &s.Sprites[i].Rect
		r.X *= sx
		r.Y *= sy
		r.Width *= sx
		r.Height *= sy
	}
	return nil
}

// boundsTolerance absorbs rounding left by fractional Scale factors.
const boundsTolerance = 1e-6

// Validate checks that every sprite has a name and a non-negative rect that
// lies inside a width x height texture.
func (s *Sheet) Validate(width, height int) error {
	seen := make(map[string]struct{}, len(s.Sprites))
	for i, sp := range s.Sprites {
		if sp.Name == "" {
			return errors.Errorf("sprite %d has no name", i)
		}
		if _, dup := seen[sp.Name]; dup {
			return errors.Errorf("duplicate sprite name %q", sp.Name)
		}
		seen[sp.Name] = struct{}{}

		r := sp.Rect
		if r.X < 0 || r.Y < 0 || r.Width < 0 || r.Height < 0 {
			return errors.Errorf("sprite %q has a negative rect", sp.Name)
		}
		if r.X+r.Width > float64(width)+boundsTolerance || r.Y+r.Height > float64(height)+boundsTolerance {
			return errors.Errorf("sprite %q exceeds the %dx%d texture", sp.Name, width, height)
		}
	}
	return nil
}

// Find returns the sprite with the given name.
func (s *Sheet) Find(name string) (Sprite, bool) {
	for _, sp := range s.Sprites {
		if sp.Name == name {
			return sp, true
		}
	}
	return Sprite{}, false
}

// SidecarPath returns where the metadata for imagePath is stored.
func SidecarPath(imagePath string) string {
	return imagePath + SidecarSuffix
}

// IsSidecar reports whether path is a metadata file rather than an image.
func IsSidecar(path string) bool {
	return strings.HasSuffix(path, SidecarSuffix)
}

// Parse decodes a YAML sheet.
func Parse(data []byte) (*Sheet, error) {
	var s Sheet
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "failed to parse sprite sheet")
	}
	return &s, nil
}

// Load reads a YAML sheet from path.
func Load(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sprite sheet %s", path)
	}
	return Parse(data)
}

// Marshal encodes the sheet as YAML.
func (s *Sheet) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode sprite sheet")
	}
	return data, nil
}

// Save writes the sheet to path as YAML.
func (s *Sheet) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write sprite sheet %s", path)
	}
	return nil
}
