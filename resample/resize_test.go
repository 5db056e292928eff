package resample

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-pointscale/images"
)

// coordRaster encodes each pixel's own coordinates in its channels so a
// sampled output reveals exactly which source pixel it came from.
func coordRaster(w, h int) *images.Raster {
	r := images.NewRaster(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.Set(x, y, images.Color{R: float32(x), G: float32(y), B: float32(y*w + x), A: 1})
		}
	}
	return r
}

func TestResize_UpscaleReplicatesBlocks(t *testing.T) {
	src := images.NewRaster(2, 2)
	src.Set(0, 0, images.Red)
	src.Set(1, 0, images.Green)
	src.Set(0, 1, images.Blue)
	src.Set(1, 1, images.White)

	R, G, B, W := images.Red, images.Green, images.Blue, images.White
	want := [][]images.Color{
		{R, R, G, G},
		{R, R, G, G},
		{B, B, W, W},
		{B, B, W, W},
	}

	for _, workers := range []int{1, 2, 3, 4, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			out, err := NewResizer(Options{Workers: workers}).Resize(src, 4, 4)
			require.NoError(t, err)
			require.Equal(t, 4, out.Width)
			require.Equal(t, 4, out.Height)
			for y, row := range want {
				assert.Equal(t, row, out.Row(y), "row %d", y)
			}
		})
	}
}

func TestResize_DownscaleSamplesEvenIndices(t *testing.T) {
	src := coordRaster(4, 4)

	out, err := Resize(src, 2, 2)
	require.NoError(t, err)

	want := map[[2]int][2]float32{
		{0, 0}: {0, 0},
		{1, 0}: {2, 0},
		{0, 1}: {0, 2},
		{1, 1}: {2, 2},
	}
	for dst, srcXY := range want {
		c := out.At(dst[0], dst[1])
		assert.Equal(t, srcXY, [2]float32{c.R, c.G}, "dst %v", dst)
	}
}

func TestResize_MatchesFloorFormula(t *testing.T) {
	tests := []struct {
		srcW, srcH int
		dstW, dstH int
	}{
		{7, 5, 13, 3},
		{3, 11, 10, 29},
		{100, 1, 33, 7},
		{1, 1, 9, 9},
		{64, 48, 17, 61},
		{5, 5, 5, 5},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("%dx%d->%dx%d", tt.srcW, tt.srcH, tt.dstW, tt.dstH)
		t.Run(name, func(t *testing.T) {
			src := coordRaster(tt.srcW, tt.srcH)
			out, err := NewResizer(Options{Workers: 4}).Resize(src, tt.dstW, tt.dstH)
			require.NoError(t, err)

			ratioX := float32(tt.srcW) / float32(tt.dstW)
			ratioY := float32(tt.srcH) / float32(tt.dstH)
			for y := 0; y < tt.dstH; y++ {
				for x := 0; x < tt.dstW; x++ {
					want := src.At(sourceCoord(ratioX, x), sourceCoord(ratioY, y))
					require.Equal(t, want, out.At(x, y), "dst (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestResize_OutputDimensions(t *testing.T) {
	src := coordRaster(9, 4)
	for w := 0; w <= 12; w++ {
		for h := 0; h <= 12; h++ {
			out, err := Resize(src, w, h)
			require.NoError(t, err)
			assert.Equal(t, w, out.Width)
			assert.Equal(t, h, out.Height)
			assert.Len(t, out.Pix, w*h)
		}
	}
}

func TestResize_DegenerateTargets(t *testing.T) {
	src := coordRaster(3, 3)

	r := NewResizer(Options{Workers: 4})
	r.kernel = func(*job, RowRange) {
		t.Fatal("kernel must not run for an empty target")
	}

	for _, dims := range [][2]int{{0, 5}, {5, 0}, {0, 0}} {
		out, err := r.Resize(src, dims[0], dims[1])
		require.NoError(t, err)
		assert.True(t, out.Empty())
		assert.Empty(t, out.Pix)
		assert.Equal(t, dims[0], out.Width)
		assert.Equal(t, dims[1], out.Height)
	}

	// An empty target is valid even when the source is unusable.
	out, err := Resize(nil, 0, 4)
	require.NoError(t, err)
	assert.Empty(t, out.Pix)
}

func TestResize_NegativeDimensions(t *testing.T) {
	src := coordRaster(3, 3)
	for _, dims := range [][2]int{{-1, 4}, {4, -1}, {-2, -2}, {0, -1}} {
		out, err := Resize(src, dims[0], dims[1])
		assert.Nil(t, out)
		assert.True(t, errors.Is(err, ErrInvalidDimension), "dims %v: %v", dims, err)
	}
}

func TestResize_InvalidSource(t *testing.T) {
	tests := []struct {
		name string
		src  *images.Raster
	}{
		{"nil", nil},
		{"empty", images.NewRaster(0, 0)},
		{"zero width", &images.Raster{Width: 0, Height: 3}},
		{"short buffer", &images.Raster{Width: 3, Height: 3, Pix: make([]images.Color, 8)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Resize(tt.src, 4, 4)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrInvalidSource), "%v", err)
		})
	}
}

func TestResize_SourceNotMutated(t *testing.T) {
	src := coordRaster(6, 6)
	before := images.ComputeChecksum(src)

	_, err := NewResizer(Options{Workers: 3}).Resize(src, 13, 2)
	require.NoError(t, err)
	assert.Equal(t, before, images.ComputeChecksum(src))
}

// TestResize_DeterministicAcrossWorkerCounts compares single-worker output
// with the output at the host's full parallelism and beyond.
func TestResize_DeterministicAcrossWorkerCounts(t *testing.T) {
	src := coordRaster(37, 23)
	targets := [][2]int{{101, 97}, {5, 3}, {37, 23}, {200, 1}, {1, 200}}

	for _, target := range targets {
		single, err := NewResizer(Options{Workers: 1}).Resize(src, target[0], target[1])
		require.NoError(t, err)
		want := images.ComputeChecksum(single)

		for _, workers := range []int{2, runtime.NumCPU(), 64} {
			out, err := NewResizer(Options{Workers: workers}).Resize(src, target[0], target[1])
			require.NoError(t, err)
			assert.Equal(t, want, images.ComputeChecksum(out), "target %v workers %d", target, workers)
		}
	}
}

func TestResize_ConcurrentCallsAreIndependent(t *testing.T) {
	r := NewResizer(Options{Workers: 4})

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := coordRaster(3+i%5, 2+i%7)
			w, h := 10+i, 7+i%3

			out, err := r.Resize(src, w, h)
			if err != nil {
				errs <- err
				return
			}
			reference, err := NewResizer(Options{Workers: 1}).Resize(src, w, h)
			if err != nil {
				errs <- err
				return
			}
			if images.ComputeChecksum(out) != images.ComputeChecksum(reference) {
				errs <- fmt.Errorf("call %d produced a different raster", i)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestResize_WithPool(t *testing.T) {
	pool := NewPool(3)
	defer pool.Close()

	src := coordRaster(16, 16)
	want, err := NewResizer(Options{Workers: 1}).Resize(src, 40, 33)
	require.NoError(t, err)

	r := NewResizer(Options{Workers: 4, Pool: pool})
	for i := 0; i < 10; i++ {
		out, err := r.Resize(src, 40, 33)
		require.NoError(t, err)
		assert.Equal(t, images.ComputeChecksum(want), images.ComputeChecksum(out))
	}
}

func TestResize_ClosedPoolFallsBackToGoroutines(t *testing.T) {
	pool := NewPool(2)
	pool.Close()

	src := coordRaster(8, 8)
	out, err := NewResizer(Options{Workers: 4, Pool: pool}).Resize(src, 16, 16)
	require.NoError(t, err)
	assert.Equal(t, src.At(3, 5), out.At(7, 11))
}

func TestResize_WorkerFailure(t *testing.T) {
	tests := []struct {
		name  string
		fails func(rr RowRange, height int) bool
	}{
		{"spawned worker", func(rr RowRange, _ int) bool { return rr.Start == 0 }},
		{"calling goroutine", func(rr RowRange, height int) bool { return rr.End == height }},
		{"every worker", func(RowRange, int) bool { return true }},
	}

	const height = 16
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResizer(Options{Workers: 4})
			r.kernel = func(j *job, rr RowRange) {
				if tt.fails(rr, height) {
					panic("sampling defect")
				}
				sampleRows(j, rr)
			}

			out, err := r.Resize(coordRaster(4, 4), 8, height)
			require.Error(t, err)
			assert.Nil(t, out, "a failed resize must not return a partial raster")
			assert.True(t, IsFatalWorkerFailure(err))

			var wf *WorkerFailure
			require.True(t, errors.As(err, &wf))
			assert.Equal(t, "sampling defect", wf.Value)
		})
	}
}

func TestResize_OutOfRangeIndexIsFatal(t *testing.T) {
	r := NewResizer(Options{Workers: 2})
	r.kernel = func(j *job, rr RowRange) {
		// Simulate a planning defect that reads past the source.
		_ = j.src.Pix[len(j.src.Pix)+rr.Start]
	}

	out, err := r.Resize(coordRaster(2, 2), 4, 4)
	assert.Nil(t, out)
	require.True(t, IsFatalWorkerFailure(err))

	var re runtime.Error
	assert.True(t, errors.As(err, &re), "panic value should unwrap to runtime.Error: %v", err)
}

func TestNewResizer_DefaultWorkers(t *testing.T) {
	assert.Equal(t, runtime.GOMAXPROCS(0), NewResizer(Options{}).Workers())
	assert.Equal(t, 3, NewResizer(Options{Workers: 3}).Workers())
}

func BenchmarkResize(b *testing.B) {
	src := coordRaster(512, 512)
	for _, workers := range []int{1, 2, 4, runtime.NumCPU()} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			r := NewResizer(Options{Workers: workers})
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := r.Resize(src, 1024, 1024); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkResize_Pool(b *testing.B) {
	pool := NewPool(runtime.NumCPU())
	defer pool.Close()

	src := coordRaster(64, 64)
	r := NewResizer(Options{Pool: pool})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Resize(src, 128, 128); err != nil {
			b.Fatal(err)
		}
	}
}
