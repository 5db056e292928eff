// Package pipeline resizes image files on disk with the resample engine.
//
// It owns everything the engine deliberately does not know about: paths,
// codecs, target-size policy, sprite sheet metadata and how many files are
// in flight at once.
package pipeline

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-pointscale/images"
	"github.com/nvr-ai/go-pointscale/profiler"
	"github.com/nvr-ai/go-pointscale/resample"
	"github.com/nvr-ai/go-pointscale/sprites"
	"github.com/nvr-ai/go-pointscale/util"
)

// Pipeline turns source images into resized copies.
type Pipeline struct {
	cfg      Config
	root     string
	logger   *slog.Logger
	profiler *profiler.Profiler
	pool     *resample.Pool
	resizer  *resample.Resizer
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for per-file events. It is also handed to the
// resizer.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithProfiler records decode, resize, encode and file timings.
func WithProfiler(prof *profiler.Profiler) Option {
	return func(p *Pipeline) {
		p.profiler = prof
	}
}

// WithPool runs resize workers on a shared pool. The pipeline does not close it.
func WithPool(pool *resample.Pool) Option {
	return func(p *Pipeline) {
		p.pool = pool
	}
}

// WithRoot keeps the layout below root when writing into Config.OutputDir.
// Without it every output lands directly in OutputDir.
func WithRoot(root string) Option {
	return func(p *Pipeline) {
		p.root = root
	}
}

// Result describes one processed file.
type Result struct {
	Source       string             `json:"source"`
	Output       string             `json:"output"`
	Format       images.ImageFormat `json:"format"`
	SourceWidth  int                `json:"source_width"`
	SourceHeight int                `json:"source_height"`
	Width        int                `json:"width"`
	Height       int                `json:"height"`
	Bytes        int                `json:"bytes"`
	SpriteSheet  string             `json:"sprite_sheet,omitempty"`
	Elapsed      time.Duration      `json:"elapsed"`
}

// New validates cfg and builds a Pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 1
	}

	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = resample.Logger()
	}

	p.resizer = resample.NewResizer(resample.Options{
		Workers: cfg.Workers,
		Pool:    p.pool,
		Logger:  p.logger,
	})
	return p, nil
}

// Config returns the normalized configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// TargetSize returns the output size for a width x height source.
// Non-empty sources never map to an empty target.
func (p *Pipeline) TargetSize(width, height int) (int, int) {
	w, h := p.cfg.Width, p.cfg.Height
	switch {
	case w > 0 && h > 0:
		return w, h
	case width <= 0 || height <= 0:
		return 0, 0
	case w > 0:
		h = scaled(height, float64(w)/float64(width))
	case h > 0:
		w = scaled(width, float64(h)/float64(height))
	default:
		w = scaled(width, p.cfg.Scale)
		h = scaled(height, p.cfg.Scale)
	}
	return w, h
}

func scaled(n int, factor float64) int {
	return max(int(math.Round(float64(n)*factor)), 1)
}

// ResizeImage decodes img, resamples it to TargetSize and encodes it in the
// configured format, or img's own format when none is configured.
func (p *Pipeline) ResizeImage(img images.Image) (images.Image, error) {
	out, _, err := p.transcode(img)
	return out, err
}

func (p *Pipeline) transcode(img images.Image) (images.Image, *images.Raster, error) {
	stop := p.profiler.StartOperation("decode")
	src, err := images.Decode(img)
	stop()
	if err != nil {
		return images.Image{}, nil, err
	}

	w, h := p.TargetSize(src.Width, src.Height)

	stop = p.profiler.StartOperation("resize")
	dst, err := p.resizer.Resize(src, w, h)
	stop()
	if err != nil {
		return images.Image{}, nil, err
	}
	p.profiler.RecordMetric("output_megapixels", float64(w*h)/1e6)

	format := p.cfg.Format
	if format == "" {
		format = img.Format
	}

	stop = p.profiler.StartOperation("encode")
	out, err := images.Encode(dst, format, images.EncodeOptions{
		Quality:  p.cfg.Quality,
		Lossless: p.cfg.Lossless,
	})
	stop()
	if err != nil {
		return images.Image{}, nil, err
	}
	return out, src, nil
}

// OutputPath returns where ProcessFile writes the result for path.
func (p *Pipeline) OutputPath(path string, format images.ImageFormat) string {
	out := path
	if ext := format.Extension(); ext != "" {
		if current, ok := images.FormatFromExtension(path); !ok || current != format {
			out = strings.TrimSuffix(path, filepath.Ext(path)) + ext
		}
	}
	if p.cfg.OutputDir == "" {
		return out
	}

	rel := filepath.Base(out)
	if p.root != "" {
		if r, err := filepath.Rel(p.root, out); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	return filepath.Join(p.cfg.OutputDir, rel)
}

// ProcessFile resizes one file and writes the result. When sprite sheets are
// enabled and a sidecar exists next to the source, it is rescaled by the
// same factors and written next to the output.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	defer p.profiler.StartOperation("file")()
	start := time.Now()

	file, err := util.LoadImageFile(path)
	if err != nil {
		return Result{}, err
	}

	out, src, err := p.transcode(file.Image())
	if err != nil {
		return Result{}, errors.Wrapf(err, "failed to resize %s", path)
	}

	res := Result{
		Source:       path,
		Output:       p.OutputPath(path, out.Format),
		Format:       out.Format,
		SourceWidth:  src.Width,
		SourceHeight: src.Height,
		Width:        out.Width,
		Height:       out.Height,
		Bytes:        len(out.Data),
	}

	// The sheet is checked before anything is written so a bad sidecar
	// leaves an in-place source untouched.
	var sheet *sprites.Sheet
	if p.cfg.SpriteSheets {
		if sheet, err = p.prepareSprites(res); err != nil {
			return Result{}, err
		}
	}

	if err := writeFile(res.Output, out.Data); err != nil {
		return Result{}, err
	}

	if sheet != nil {
		dst, err := saveSprites(sheet, res.Output)
		if err != nil {
			return Result{}, err
		}
		res.SpriteSheet = dst
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

// prepareSprites loads the source sidecar and scales it to the output size.
// It returns nil when the source has no sidecar.
func (p *Pipeline) prepareSprites(res Result) (*sprites.Sheet, error) {
	srcPath := sprites.SidecarPath(res.Source)
	if _, err := os.Stat(srcPath); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	sheet, err := sprites.Load(srcPath)
	if err != nil {
		return nil, err
	}

	sx := float64(res.Width) / float64(res.SourceWidth)
	sy := float64(res.Height) / float64(res.SourceHeight)
	if err := sheet.Scale(sx, sy); err != nil {
		return nil, errors.Wrapf(err, "failed to scale %s", srcPath)
	}
	if err := sheet.Validate(res.Width, res.Height); err != nil {
		return nil, errors.Wrapf(err, "scaled %s", srcPath)
	}
	return sheet, nil
}

func saveSprites(sheet *sprites.Sheet, output string) (string, error) {
	dstPath := sprites.SidecarPath(output)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", filepath.Dir(dstPath))
	}
	if err := sheet.Save(dstPath); err != nil {
		return "", err
	}
	return dstPath, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// Run processes paths with up to Config.Concurrency files in flight.
//
// Results are in input order. The first failure stops new files from being
// started; files already resizing run to completion. On error the returned
// slice still holds the results of every file that finished.
func (p *Pipeline) Run(ctx context.Context, paths []string) ([]Result, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run", runID)
	logger.Info("resize run started", "files", len(paths), "concurrency", p.cfg.Concurrency)
	start := time.Now()

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for i, path := range paths {
		g.Go(func() error {
			res, err := p.ProcessFile(gctx, path)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Error("resize failed", "path", path, "error", err)
				}
				return err
			}
			logger.Info("resized",
				"path", path,
				"output", res.Output,
				"from", [2]int{res.SourceWidth, res.SourceHeight},
				"to", [2]int{res.Width, res.Height},
				"elapsed", res.Elapsed)
			results[i] = res
			return nil
		})
	}

	err := g.Wait()
	logger.Info("resize run finished", "files", len(paths), "elapsed", time.Since(start), "failed", err != nil)
	return results, err
}

// Discover lists the image files below dir in path order.
func Discover(dir string, recursive bool) ([]string, error) {
	files, err := util.ListImageFiles(dir, recursive)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths, nil
}
