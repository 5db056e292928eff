// Package resample implements multi-goroutine nearest-neighbour ("point")
// resampling of rasters.
//
// A resize splits the destination rows into contiguous disjoint ranges, one
// per worker. All ranges but the last are sampled by spawned goroutines (or
// a Pool); the calling goroutine samples the last range itself and then
// waits on a completion barrier before returning the assembled raster.
// Workers write disjoint regions of one shared destination buffer without
// per-pixel locking.
package resample

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-pointscale/images"
)

// Options configures a Resizer. The zero value is ready to use.
type Options struct {
	// Workers caps the number of row ranges sampled in parallel, the calling
	// goroutine included. Zero or negative selects GOMAXPROCS.
	Workers int
	// Pool, if set, runs the spawned ranges instead of fresh goroutines.
	// The Resizer does not own the pool and never closes it.
	Pool *Pool
	// Logger overrides the package logger.
	Logger *slog.Logger
}

// Resizer performs point resampling. It holds configuration only; all
// per-call state lives in a job, so a Resizer is safe for concurrent use.
type Resizer struct {
	workers int
	pool    *Pool
	logger  *slog.Logger
	kernel  func(*job, RowRange)
}

// NewResizer creates a Resizer from opts.
func NewResizer(opts Options) *Resizer {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Resizer{
		workers: workers,
		pool:    opts.Pool,
		logger:  opts.Logger,
		kernel:  sampleRows,
	}
}

// Workers returns the configured parallelism.
func (r *Resizer) Workers() int {
	return r.workers
}

var defaultResizer = NewResizer(Options{})

// Resize resamples src to newWidth x newHeight with a Resizer using GOMAXPROCS workers.
func Resize(src *images.Raster, newWidth, newHeight int) (*images.Raster, error) {
	return defaultResizer.Resize(src, newWidth, newHeight)
}

// Resize resamples src to newWidth x newHeight using nearest-neighbour sampling.
//
// The destination pixel (x, y) is the source pixel at
// (floor(x*src.Width/newWidth), floor(y*src.Height/newHeight)). The result is
// identical for every worker count.
//
// Arguments:
//   - src: The source raster. It is only read.
//   - newWidth: The destination width. Zero yields an empty raster.
//   - newHeight: The destination height. Zero yields an empty raster.
//
// Returns:
//   - *images.Raster: A newly allocated raster of exactly newWidth x newHeight.
//   - error: ErrInvalidDimension for negative sizes, ErrInvalidSource for an
//     unusable source, or a *WorkerFailure if sampling panicked.
func (r *Resizer) Resize(src *images.Raster, newWidth, newHeight int) (*images.Raster, error) {
	if newWidth < 0 || newHeight < 0 {
		return nil, errors.Wrapf(ErrInvalidDimension, "target %dx%d", newWidth, newHeight)
	}
	if newWidth == 0 || newHeight == 0 {
		return images.NewRaster(newWidth, newHeight), nil
	}
	if err := src.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidSource, err.Error())
	}
	if src.Empty() {
		return nil, errors.Wrapf(ErrInvalidSource, "cannot sample %dx%d source into %dx%d",
			src.Width, src.Height, newWidth, newHeight)
	}

	ranges, err := Plan(newHeight, r.workers)
	if err != nil {
		return nil, err
	}

	logger := r.logger
	if logger == nil {
		logger = Logger()
	}

	j := newJob(src, newWidth, newHeight, ranges, r.kernel, logger)
	logger.Debug("resample job dispatched",
		slog.String("job", j.id),
		slog.Int("src_width", src.Width),
		slog.Int("src_height", src.Height),
		slog.Int("dst_width", newWidth),
		slog.Int("dst_height", newHeight),
		slog.Int("workers", len(ranges)))

	r.dispatch(j)

	// The calling goroutine is the last worker.
	j.run(ranges[len(ranges)-1])

	if err := j.barrier.wait(); err != nil {
		return nil, errors.Wrapf(err, "resample job %s", j.id)
	}

	logger.Debug("resample job assembled",
		slog.String("job", j.id),
		slog.Duration("elapsed", time.Since(j.started)))

	return j.dst, nil
}

// dispatch starts every range except the last one.
func (r *Resizer) dispatch(j *job) {
	for _, rr := range j.ranges[:len(j.ranges)-1] {
		if r.pool != nil && r.pool.Submit(func() { j.run(rr) }) {
			continue
		}
		go j.run(rr)
	}
}
