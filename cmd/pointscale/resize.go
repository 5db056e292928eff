package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-pointscale/images"
	"github.com/nvr-ai/go-pointscale/pipeline"
	"github.com/nvr-ai/go-pointscale/util"
)

var resizeCmd = &cobra.Command{
	Use:   "resize",
	Short: "Resize a single image",
	RunE:  runResize,
}

func init() {
	resizeCmd.Flags().StringP("input", "i", "", "Input image file")
	resizeCmd.Flags().StringP("output", "o", "", "Output image file")
	resizeCmd.Flags().Int("width", 0, "Target width (0 keeps the aspect ratio of --height)")
	resizeCmd.Flags().Int("height", 0, "Target height (0 keeps the aspect ratio of --width)")
	resizeCmd.Flags().Float64("scale", 2, "Scale factor when no target size is given")
	resizeCmd.Flags().Int("workers", 0, "Resize workers (0 = GOMAXPROCS)")
	resizeCmd.Flags().String("format", "", "Output format (default: from the output extension)")
	resizeCmd.Flags().Int("quality", images.DefaultQuality, "JPEG and lossy WebP quality (1-100)")
	resizeCmd.Flags().Bool("lossless", false, "Lossless WebP")
	resizeCmd.MarkFlagRequired("input")
	resizeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(resizeCmd)
}

func runResize(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	formatStr, _ := cmd.Flags().GetString("format")

	cfg := pipeline.DefaultConfig()
	cfg.Width, _ = cmd.Flags().GetInt("width")
	cfg.Height, _ = cmd.Flags().GetInt("height")
	cfg.Scale, _ = cmd.Flags().GetFloat64("scale")
	cfg.Workers, _ = cmd.Flags().GetInt("workers")
	cfg.Quality, _ = cmd.Flags().GetInt("quality")
	cfg.Lossless, _ = cmd.Flags().GetBool("lossless")

	switch {
	case formatStr != "":
		format, err := images.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		cfg.Format = format
	default:
		if format, ok := images.FormatFromExtension(outputPath); ok {
			cfg.Format = format
		}
	}

	p, err := pipeline.New(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	input, err := util.LoadImageFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	out, err := p.ResizeImage(input.Image())
	if err != nil {
		return fmt.Errorf("resizing: %w", err)
	}

	if err := os.WriteFile(outputPath, out.Data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	fmt.Printf("Resized to %dx%d %s\n", out.Width, out.Height, out.Format)
	fmt.Printf("Input:  %s (%d bytes)\n", inputPath, len(input.Data))
	fmt.Printf("Output: %s (%d bytes)\n", outputPath, len(out.Data))

	return nil
}
