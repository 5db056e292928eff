package resample

import (
	"github.com/pkg/errors"
)

// RowRange is the half-open interval [Start, End) of destination rows owned
// by a single worker.
type RowRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of rows in the range.
func (r RowRange) Len() int {
	return r.End - r.Start
}

// WorkerCount returns how many workers a resize to newHeight rows uses when
// available workers can run at once: never more workers than rows, never fewer
// than one.
func WorkerCount(available, newHeight int) int {
	return max(min(available, newHeight), 1)
}

// Plan splits [0, newHeight) into contiguous, disjoint row ranges, one per worker.
//
// Every range but the last holds exactly newHeight/workers rows; the last range
// absorbs the remainder. The last range is the one the calling goroutine runs.
//
// Arguments:
//   - newHeight: The destination height. Must be positive.
//   - available: The number of workers that may run in parallel.
//
// Returns:
//   - []RowRange: WorkerCount(available, newHeight) ranges in ascending order.
//   - error: ErrInvalidDimension if newHeight <= 0.
//
// @example
// ranges, _ := Plan(10, 4) // [0,2) [2,4) [4,6) [6,10)
func Plan(newHeight, available int) ([]RowRange, error) {
	if newHeight <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimension, "cannot plan %d rows", newHeight)
	}

	workers := WorkerCount(available, newHeight)
	slice := newHeight / workers

	ranges := make([]RowRange, workers)
	for i := 0; i < workers-1; i++ {
		ranges[i] = RowRange{Start: slice * i, End: slice * (i + 1)}
	}
	ranges[workers-1] = RowRange{Start: slice * (workers - 1), End: newHeight}

	return ranges, nil
}
