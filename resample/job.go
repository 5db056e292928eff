package resample

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nvr-ai/go-pointscale/images"
)

// job is the state of a single resize invocation. It is created by Resize,
// handed explicitly to every worker and dropped when Resize returns, so two
// concurrent resizes never share anything but the read-only source.
type job struct {
	id      string
	src     *images.Raster
	dst     *images.Raster
	ratioX  float32
	ratioY  float32
	columns []int
	ranges  []RowRange
	barrier *barrier
	kernel  func(*job, RowRange)
	logger  *slog.Logger
	started time.Time
}

func newJob(src *images.Raster, newWidth, newHeight int, ranges []RowRange, kernel func(*job, RowRange), logger *slog.Logger) *job {
	j := &job{
		id:      uuid.NewString(),
		src:     src,
		dst:     images.NewRaster(newWidth, newHeight),
		ratioX:  float32(src.Width) / float32(newWidth),
		ratioY:  float32(src.Height) / float32(newHeight),
		ranges:  ranges,
		barrier: newBarrier(len(ranges)),
		kernel:  kernel,
		logger:  logger,
		started: time.Now(),
	}

	j.columns = make([]int, newWidth)
	for x := range j.columns {
		j.columns[x] = sourceCoord(j.ratioX, x)
	}
	return j
}

// run samples one row range and reports to the barrier. A panic inside the
// kernel is converted into a WorkerFailure instead of crashing the process.
func (j *job) run(rr RowRange) {
	var failure error
	defer func() {
		if v := recover(); v != nil {
			failure = &WorkerFailure{Range: rr, Value: v}
			j.logger.Error("resample worker failed",
				slog.String("job", j.id),
				slog.Int("start", rr.Start),
				slog.Int("end", rr.End),
				slog.Any("panic", v))
		}
		j.barrier.done(failure)
	}()

	j.kernel(j, rr)
}
