package resample

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidDimension is returned when a requested width or height is
	// negative, or when a row plan is requested for a non-positive height.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrInvalidSource is returned when the source raster is nil, inconsistent,
	// or has no pixels while a non-empty output is requested.
	ErrInvalidSource = errors.New("invalid source raster")
)

// WorkerFailure reports a panic raised while sampling one row range. It aborts
// the whole resize; no partially written raster is returned alongside it.
type WorkerFailure struct {
	// Range is the destination row range the failing worker owned.
	Range RowRange
	// Value is the recovered panic value.
	Value any
}

func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("worker failed on rows [%d, %d): %v", e.Range.Start, e.Range.End, e.Value)
}

// Unwrap exposes the panic value when it is itself an error, e.g. a
// runtime.Error for an out-of-range index.
func (e *WorkerFailure) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsFatalWorkerFailure reports whether err was caused by a failed worker.
func IsFatalWorkerFailure(err error) bool {
	var wf *WorkerFailure
	return stderrors.As(err, &wf)
}
