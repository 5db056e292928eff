package pipeline

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-pointscale/images"
)

// Config controls how a Pipeline selects target sizes and persists results.
type Config struct {
	// Scale multiplies both source dimensions when no explicit size is set.
	Scale float64 `json:"scale" yaml:"scale"`

	// Width and Height set an explicit target. When only one is positive the
	// other follows the source aspect ratio.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// Workers is the per-resize parallelism (0 = GOMAXPROCS).
	Workers int `json:"workers" yaml:"workers"`

	// Concurrency is the number of files processed at once.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// OutputDir receives the results (empty = overwrite in place).
	OutputDir string `json:"outputDir" yaml:"outputDir"`

	// Format of the written files (empty = keep the source format).
	Format images.ImageFormat `json:"format" yaml:"format"`

	// Quality for lossy encoders, 1-100 (0 = images.DefaultQuality).
	Quality int `json:"quality" yaml:"quality"`

	// Lossless selects lossless WebP output.
	Lossless bool `json:"lossless" yaml:"lossless"`

	// SpriteSheets rescales sprite sidecar metadata next to each image.
	SpriteSheets bool `json:"spriteSheets" yaml:"spriteSheets"`

	// Recursive descends into subdirectories during discovery.
	Recursive bool `json:"recursive" yaml:"recursive"`
}

// DefaultConfig returns the configuration used when no file is given: every
// image doubled in place, one file at a time, sprite metadata included.
func DefaultConfig() Config {
	return Config{
		Scale:        2,
		Concurrency:  1,
		SpriteSheets: true,
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep
// their DefaultConfig values.
//
// Arguments:
//   - path: The YAML file to read.
//
// Returns:
//   - Config: The validated configuration.
//   - error: If the file cannot be read or parsed, or fails Validate.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config %s", path)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return errors.Errorf("target size %dx%d must not be negative", c.Width, c.Height)
	}
	if c.Width == 0 && c.Height == 0 && c.Scale <= 0 {
		return errors.Errorf("scale %v must be positive when no target size is set", c.Scale)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers %d must not be negative", c.Workers)
	}
	if c.Concurrency < 0 {
		return errors.Errorf("concurrency %d must not be negative", c.Concurrency)
	}
	if c.Format != "" && !c.Format.Valid() {
		return errors.Wrapf(images.ErrUnsupportedFormat, "%q", c.Format)
	}
	if c.Quality < 0 || c.Quality > 100 {
		return errors.Errorf("quality %d out of range 0-100", c.Quality)
	}
	return nil
}
