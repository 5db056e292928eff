package benchmark

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-pointscale/images"
	"github.com/nvr-ai/go-pointscale/resample"
	"github.com/nvr-ai/go-pointscale/util"
)

// SuiteOptions configures a benchmark suite.
type SuiteOptions struct {
	// OutputDir receives SaveResults files.
	OutputDir string `json:"outputDir" yaml:"outputDir"`
	// Pool, if set, is shared by every pointscale scenario.
	Pool *resample.Pool `json:"-" yaml:"-"`
	// Logger overrides the resample package logger.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// Suite manages and executes benchmark scenarios
type Suite struct {
	scenarios []Scenario
	outputDir string
	pool      *resample.Pool
	logger    *slog.Logger
	corpus    []*images.Raster
	mu        sync.RWMutex
	results   []PerformanceMetrics
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - opts: The suite options.
//
// Returns:
//   - *Suite: The benchmark suite.
func NewSuite(opts SuiteOptions) *Suite {
	logger := opts.Logger
	if logger == nil {
		logger = resample.Logger()
	}
	return &Suite{
		outputDir: opts.OutputDir,
		pool:      opts.Pool,
		logger:    logger,
		scenarios: make([]Scenario, 0),
		results:   make([]PerformanceMetrics, 0),
	}
}

// AddScenario adds a test scenario to the benchmark suite
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// AddScenarioSet adds every scenario of set.
func (bs *Suite) AddScenarioSet(set *ScenarioSet) {
	for _, s := range set.Scenarios {
		bs.AddScenario(s)
	}
}

// Scenarios returns the queued scenarios.
func (bs *Suite) Scenarios() []Scenario {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return append([]Scenario(nil), bs.scenarios...)
}

// LoadCorpus decodes the images in dir. When a corpus is loaded each
// scenario's source is its first image resized to the source resolution
// instead of a synthetic pattern. Undecodable files are skipped.
func (bs *Suite) LoadCorpus(dir string, recursive bool) error {
	files, err := util.LoadDirectoryImageFiles(dir, recursive)
	if err != nil {
		return err
	}

	corpus := make([]*images.Raster, 0, len(files))
	for _, f := range files {
		r, err := images.Decode(f.Image())
		if err != nil {
			bs.logger.Warn("skipping corpus image", "path", f.Path, "error", err)
			continue
		}
		corpus = append(corpus, r)
	}
	if len(corpus) == 0 {
		return errors.Errorf("no decodable images in %s", dir)
	}

	bs.mu.Lock()
	bs.corpus = corpus
	bs.mu.Unlock()
	return nil
}

// SyntheticRaster returns a deterministic opaque test pattern.
func SyntheticRaster(width, height int) *images.Raster {
	r := images.NewRaster(width, height)
	for y := 0; y < r.Height; y++ {
		row := r.Row(y)
		for x := range row {
			row[x] = images.Color{
				R: float32(x%256) / 255,
				G: float32(y%256) / 255,
				B: float32((x^y)%256) / 255,
				A: 1,
			}
		}
	}
	return r
}

func (bs *Suite) source(s Scenario) (*images.Raster, error) {
	w, h := s.Source.Pixels.Width, s.Source.Pixels.Height

	bs.mu.RLock()
	corpus := bs.corpus
	bs.mu.RUnlock()

	if len(corpus) == 0 {
		return SyntheticRaster(w, h), nil
	}
	return resample.Resize(corpus[0], w, h)
}

// RunScenario executes a single benchmark scenario. Only the resize calls
// are timed; source preparation and warmups are not.
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	src, err := bs.source(scenario)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s: preparing source", scenario.Name)
	}
	engine, err := NewEngine(scenario.Engine, src, scenario.Workers, bs.pool)
	if err != nil {
		return nil, err
	}

	width, height := scenario.Target.Pixels.Width, scenario.Target.Pixels.Height

	// Warmup runs
	for i := 0; i < scenario.WarmupRuns; i++ {
		if err := engine.Resize(width, height); err != nil {
			return nil, errors.Wrapf(err, "scenario %s: warmup", scenario.Name)
		}
	}

	metrics := &PerformanceMetrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
	}

	// Capture initial memory stats
	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	failures := 0
	var total time.Duration
	for i := 0; i < scenario.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		err := engine.Resize(width, height)
		d := time.Since(start)
		if err != nil {
			failures++
			bs.logger.Debug("benchmark iteration failed", "scenario", scenario.Name, "error", err)
			continue
		}

		total += d
		if metrics.MinResizeDuration == 0 || d < metrics.MinResizeDuration {
			metrics.MinResizeDuration = d
		}
		metrics.MaxResizeDuration = max(metrics.MaxResizeDuration, d)
	}

	// Capture final memory stats
	var endMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&endMem)

	succeeded := scenario.Iterations - failures
	metrics.TotalDuration = total
	metrics.ErrorRate = float64(failures) / float64(scenario.Iterations)
	if succeeded > 0 && total > 0 {
		metrics.AvgResizeDuration = total / time.Duration(succeeded)
		metrics.ResizesPerSecond = float64(succeeded) / total.Seconds()
		metrics.MegapixelsPerSecond = metrics.ResizesPerSecond * float64(width*height) / 1e6
	}
	if out := engine.Result(); out != nil {
		metrics.Checksum = images.ComputeChecksum(out)
	}

	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		SysBytes:        endMem.Sys,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
		HeapSysBytes:    endMem.HeapSys,
	}

	workers := scenario.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	metrics.CPUStats = CPUMetrics{
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		Workers:    workers,
	}

	return metrics, nil
}

// Run executes all configured benchmark scenarios in order. A failing
// scenario is logged and skipped; cancellation stops the run.
func (bs *Suite) Run(ctx context.Context) error {
	for _, scenario := range bs.Scenarios() {
		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			bs.logger.Error("benchmark scenario failed", "scenario", scenario.Name, "error", err)
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()

		bs.logger.Info("benchmark scenario completed",
			"scenario", scenario.Name,
			"engine", scenario.Engine,
			"avg", metrics.AvgResizeDuration,
			"mpix_per_sec", metrics.MegapixelsPerSecond)
	}
	return nil
}

// Results returns all benchmark results
func (bs *Suite) Results() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return append([]PerformanceMetrics(nil), bs.results...)
}

// SaveResults persists benchmark results as JSON plus a CSV summary.
//
// Returns:
//   - string: The path of the JSON file.
//   - error: If the output directory or either file cannot be written.
func (bs *Suite) SaveResults() (string, error) {
	results := bs.Results()

	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal results")
	}
	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write results file")
	}

	summaryFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return "", errors.Wrap(err, "failed to save summary CSV")
	}

	bs.logger.Info("benchmark results saved", "json", resultsFile, "csv", summaryFile)
	return resultsFile, nil
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	return writeSummaryCSV(file, results)
}

func writeSummaryCSV(out io.Writer, results []PerformanceMetrics) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"Scenario", "Engine", "Source", "Target", "Workers", "Avg_ms", "Resizes_per_sec", "MPix_per_sec", "Alloc_MB", "Error_Rate"}); err != nil {
		return err
	}
	for _, r := range results {
		if err := w.Write([]string{
			r.Scenario.Name,
			string(r.Scenario.Engine),
			r.Scenario.Source.String(),
			r.Scenario.Target.String(),
			strconv.Itoa(r.CPUStats.Workers),
			strconv.FormatFloat(float64(r.AvgResizeDuration.Nanoseconds())/1e6, 'f', 3, 64),
			strconv.FormatFloat(r.ResizesPerSecond, 'f', 2, 64),
			strconv.FormatFloat(r.MegapixelsPerSecond, 'f', 2, 64),
			strconv.FormatFloat(float64(r.MemoryStats.TotalAllocBytes)/(1024*1024), 'f', 2, 64),
			strconv.FormatFloat(r.ErrorRate, 'f', 4, 64),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
