package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-pointscale/images"
	"github.com/nvr-ai/go-pointscale/pipeline"
	"github.com/nvr-ai/go-pointscale/profiler"
	"github.com/nvr-ai/go-pointscale/resample"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resize every image in a directory",
	Long: `Resize every image in a directory, in place unless --output-dir is set.
Sprite sheet sidecars (<image>.sprites.yaml) are rescaled with their image.`,
	RunE: runBatch,
}

func init() {
	registerBatchFlags(batchCmd)
	rootCmd.AddCommand(batchCmd)
}

func registerBatchFlags(cmd *cobra.Command) {
	cmd.Flags().String("dir", "", "Directory of images")
	cmd.Flags().String("config", "", "YAML pipeline config; flags override it")
	cmd.Flags().Float64("scale", 2, "Scale factor")
	cmd.Flags().Int("width", 0, "Target width")
	cmd.Flags().Int("height", 0, "Target height")
	cmd.Flags().Int("workers", 0, "Resize workers per image (0 = GOMAXPROCS)")
	cmd.Flags().Int("concurrency", 1, "Images processed at once")
	cmd.Flags().String("output-dir", "", "Write results here instead of overwriting")
	cmd.Flags().String("format", "", "Output format (default: keep)")
	cmd.Flags().Int("quality", 0, "JPEG and lossy WebP quality (1-100)")
	cmd.Flags().Bool("sprites", true, "Rescale sprite sheet sidecars")
	cmd.Flags().Bool("recursive", false, "Include subdirectories")
	cmd.Flags().Bool("profile", false, "Print a timing report when done")
	cmd.MarkFlagRequired("dir")
}

// batchConfig starts from --config or the defaults and applies every flag
// the user set explicitly.
func batchConfig(cmd *cobra.Command) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := pipeline.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("scale") {
		cfg.Scale, _ = flags.GetFloat64("scale")
	}
	if flags.Changed("width") {
		cfg.Width, _ = flags.GetInt("width")
	}
	if flags.Changed("height") {
		cfg.Height, _ = flags.GetInt("height")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("quality") {
		cfg.Quality, _ = flags.GetInt("quality")
	}
	if flags.Changed("sprites") {
		cfg.SpriteSheets, _ = flags.GetBool("sprites")
	}
	if flags.Changed("recursive") {
		cfg.Recursive, _ = flags.GetBool("recursive")
	}
	if flags.Changed("format") {
		s, _ := flags.GetString("format")
		format, err := images.ParseFormat(s)
		if err != nil {
			return cfg, err
		}
		cfg.Format = format
	}
	return cfg, cfg.Validate()
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	withProfile, _ := cmd.Flags().GetBool("profile")

	cfg, err := batchConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	paths, err := pipeline.Discover(dir, cfg.Recursive)
	if err != nil {
		return fmt.Errorf("listing images: %w", err)
	}
	if len(paths) == 0 {
		fmt.Printf("No images found in %s\n", dir)
		return nil
	}

	pool := resample.NewPool(cfg.Workers)
	defer pool.Close()

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithPool(pool),
		pipeline.WithRoot(dir),
	}
	var prof *profiler.Profiler
	if withProfile {
		prof = profiler.New(profiler.Options{})
		opts = append(opts, pipeline.WithProfiler(prof))
	}

	p, err := pipeline.New(cfg, opts...)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	results, err := p.Run(cmd.Context(), paths)

	done := 0
	for _, r := range results {
		if r.Output != "" {
			done++
		}
	}
	fmt.Printf("Resized %d of %d images\n", done, len(paths))
	if prof != nil {
		prof.Report(os.Stdout)
	}

	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	return nil
}
