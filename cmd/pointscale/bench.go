package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-pointscale/benchmark"
	"github.com/nvr-ai/go-pointscale/images"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark resize throughput",
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().String("source", "1080p", "Source resolution (preset or WxH)")
	benchCmd.Flags().String("target", "4k", "Target resolution (preset or WxH)")
	benchCmd.Flags().Int("workers", 0, "Resize workers (0 = GOMAXPROCS)")
	benchCmd.Flags().Int("iterations", 20, "Timed iterations per scenario")
	benchCmd.Flags().Int("warmup", 2, "Untimed warmup iterations per scenario")
	benchCmd.Flags().Bool("baseline", false, "Also run the nfnt, x/image/draw and imaging baselines")
	benchCmd.Flags().Int("scaling", 0, "Run worker scaling scenarios up to this many workers")
	benchCmd.Flags().String("images", "", "Directory of images to use as the source instead of a synthetic pattern")
	benchCmd.Flags().String("output", "", "Directory for JSON and CSV results")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	sourceStr, _ := cmd.Flags().GetString("source")
	targetStr, _ := cmd.Flags().GetString("target")
	workers, _ := cmd.Flags().GetInt("workers")
	iterations, _ := cmd.Flags().GetInt("iterations")
	warmup, _ := cmd.Flags().GetInt("warmup")
	baseline, _ := cmd.Flags().GetBool("baseline")
	scaling, _ := cmd.Flags().GetInt("scaling")
	corpus, _ := cmd.Flags().GetString("images")
	outputDir, _ := cmd.Flags().GetString("output")

	source, err := images.ParseResolution(sourceStr)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	target, err := images.ParseResolution(targetStr)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}

	suite := benchmark.NewSuite(benchmark.SuiteOptions{OutputDir: outputDir, Logger: logger})
	if corpus != "" {
		if err := suite.LoadCorpus(corpus, false); err != nil {
			return fmt.Errorf("loading images: %w", err)
		}
	}

	scenarios := []benchmark.Scenario{
		benchmark.NewScenarioBuilder("pointscale").
			WithSource(source).
			WithTarget(target).
			WithWorkers(workers).
			Build(),
	}
	if baseline {
		for _, engine := range benchmark.Engines()[1:] {
			scenarios = append(scenarios, benchmark.NewScenarioBuilder(string(engine)).
				WithEngine(engine).
				WithSource(source).
				WithTarget(target).
				Build())
		}
	}
	if scaling > 0 {
		predefined := &benchmark.PredefinedScenarios{}
		scenarios = append(scenarios, predefined.GetWorkerScalingScenarios(source, target, scaling).Scenarios...)
	}
	for _, s := range scenarios {
		s.Iterations = iterations
		s.WarmupRuns = warmup
		suite.AddScenario(s)
	}

	if err := suite.Run(cmd.Context()); err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "SCENARIO\tENGINE\tWORKERS\tAVG\tMIN\tMPIX/S\n")
	for _, m := range suite.Results() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%v\t%v\t%.1f\n",
			m.Scenario.Name, m.Scenario.Engine, m.CPUStats.Workers,
			m.AvgResizeDuration, m.MinResizeDuration, m.MegapixelsPerSecond)
	}
	tw.Flush()

	if outputDir != "" {
		path, err := suite.SaveResults()
		if err != nil {
			return fmt.Errorf("saving results: %w", err)
		}
		fmt.Printf("Results saved to: %s\n", path)
	}
	return nil
}
