package resample

import (
	"github.com/chewxy/math32"
)

// sourceCoord maps a destination coordinate onto the source axis.
func sourceCoord(ratio float32, dst int) int {
	return int(math32.Floor(ratio * float32(dst)))
}

// sampleRows is the point-sampling kernel. For every destination pixel in rows
// it copies the source pixel at (floor(ratioX*x), floor(ratioY*y)).
//
// It writes only rows inside rr and reads only the source buffer, so any
// number of calls over disjoint ranges of the same job may run concurrently.
func sampleRows(j *job, rr RowRange) {
	src, dst := j.src.Pix, j.dst.Pix
	srcW, dstW := j.src.Width, j.dst.Width

	// Column offsets are shared by every row and computed once per job.
	cols := j.columns
	for y := rr.Start; y < rr.End; y++ {
		off := sourceCoord(j.ratioY, y) * srcW
		srcRow := src[off : off+srcW]
		dstRow := dst[y*dstW : (y+1)*dstW]
		for x := range dstRow {
			dstRow[x] = srcRow[cols[x]]
		}
	}
}
