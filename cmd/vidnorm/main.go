// Package main provides the CLI entry point for vidnorm.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/previewkit/vidnorm"
	"github.com/previewkit/vidnorm/internal/reporter"
)

const (
	appName    = "vidnorm"
	appVersion = "0.1.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Normalize video files for consistent preview rendering",
		Long:          "vidnorm probes video dimensions, resizes, pads to a target aspect ratio, and embeds thumbnails using ffmpeg.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newProcessCmd(), newCleanupCmd(), newVersionCmd())
	return root
}

// processFlags holds the parsed flags for the process command.
type processFlags struct {
	outputDir    string
	outputName   string
	overwrite    bool
	aspect       bool
	aspectRatio  string
	thumbnail    bool
	resizeWidth  int
	resizeHeight int

	ffmpegPath   string
	ffprobePath  string
	stageTimeout time.Duration
	timeout      time.Duration
	logDir       string
	verbose      bool
	jsonOutput   bool
}

func newProcessCmd() *cobra.Command {
	var flags processFlags

	cmd := &cobra.Command{
		Use:   "process <video>",
		Short: "Run the normalization pipeline on a video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runProcess(args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "output directory (defaults to the source's directory)")
	cmd.Flags().StringVar(&flags.outputName, "output-name", "", "output file name (defaults to the source's name)")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "replace the source file in place")
	cmd.Flags().BoolVar(&flags.aspect, "normalize-aspect", false, "pad the video to the target aspect ratio")
	cmd.Flags().StringVar(&flags.aspectRatio, "aspect-ratio", "16:9", "target aspect ratio, W:H or decimal")
	cmd.Flags().BoolVar(&flags.thumbnail, "thumbnail", false, "generate and embed a cover-art thumbnail")
	cmd.Flags().IntVar(&flags.resizeWidth, "resize-width", 0, "target width, 0 keeps the aspect-derived value")
	cmd.Flags().IntVar(&flags.resizeHeight, "resize-height", 0, "target height, 0 keeps the aspect-derived value")
	cmd.Flags().StringVar(&flags.ffmpegPath, "ffmpeg", "", "ffmpeg binary (env FFMPEG_PATH)")
	cmd.Flags().StringVar(&flags.ffprobePath, "ffprobe", "", "ffprobe binary (env FFPROBE_PATH)")
	cmd.Flags().DurationVar(&flags.stageTimeout, "stage-timeout", 0, "per-stage timeout (default 5m)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "whole-run timeout (default 5m)")
	cmd.Flags().StringVarP(&flags.logDir, "log-dir", "l", "", "write a run log under this directory")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "emit NDJSON events instead of terminal output")

	return cmd
}

func runProcess(input string, flags processFlags) error {
	// A .env next to the working directory may carry tool paths.
	_ = godotenv.Load()

	sourcePath, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	if !vidnorm.IsVideoFile(sourcePath) {
		fmt.Fprintf(os.Stderr, "Warning: %s does not have a recognized video extension\n", sourcePath)
	}

	targetRatio, err := vidnorm.ParseAspectRatio(flags.aspectRatio)
	if err != nil {
		return err
	}

	normalizer, err := vidnorm.New(buildOptions(flags)...)
	if err != nil {
		return err
	}
	defer func() { _ = normalizer.Close() }()

	var rep vidnorm.Reporter
	if flags.jsonOutput {
		rep = reporter.NewJSONReporter()
	} else {
		rep = reporter.NewTerminalReporter()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, normalizer.RequestTimeout())
	defer cancel()

	result := normalizer.ProcessWithReporter(ctx, vidnorm.Request{
		SourcePath:        sourcePath,
		OutputDir:         flags.outputDir,
		OutputName:        flags.outputName,
		Overwrite:         flags.overwrite,
		NormalizeAspect:   flags.aspect,
		GenerateThumbnail: flags.thumbnail,
		ResizeWidth:       flags.resizeWidth,
		ResizeHeight:      flags.resizeHeight,
		TargetAspectRatio: targetRatio,
	}, rep)

	normalizer.Cleanup(result.TempFiles)

	// A run killed by the deadline never reported its scratch list, so
	// fall back to pattern-based cleanup around the source.
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if removed := normalizer.CleanupBySource(sourcePath); removed > 0 {
			fmt.Fprintf(os.Stderr, "Removed %d stale scratch directories after timeout\n", removed)
		}
		return fmt.Errorf("processing timed out after %s", normalizer.RequestTimeout())
	}

	if result.Err != nil {
		return result.Err
	}
	if !result.Success {
		return fmt.Errorf("processing failed, operations: %v", result.Operations)
	}
	return nil
}

func buildOptions(flags processFlags) []vidnorm.Option {
	var opts []vidnorm.Option

	ffmpegPath := flags.ffmpegPath
	if ffmpegPath == "" {
		ffmpegPath = os.Getenv("FFMPEG_PATH")
	}
	if ffmpegPath != "" {
		opts = append(opts, vidnorm.WithFFmpegPath(ffmpegPath))
	}

	ffprobePath := flags.ffprobePath
	if ffprobePath == "" {
		ffprobePath = os.Getenv("FFPROBE_PATH")
	}
	if ffprobePath != "" {
		opts = append(opts, vidnorm.WithFFprobePath(ffprobePath))
	}

	if flags.stageTimeout > 0 {
		opts = append(opts, vidnorm.WithStageTimeout(flags.stageTimeout))
	}
	if flags.timeout > 0 {
		opts = append(opts, vidnorm.WithRequestTimeout(flags.timeout))
	}
	if flags.logDir != "" {
		opts = append(opts, vidnorm.WithLogDir(flags.logDir))
	}
	if flags.verbose {
		opts = append(opts, vidnorm.WithVerbose())
	}
	return opts
}

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup <video>",
		Short: "Remove stale scratch directories left by interrupted runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			sourcePath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("invalid input path: %w", err)
			}

			normalizer, err := vidnorm.New()
			if err != nil {
				return err
			}
			defer func() { _ = normalizer.Close() }()

			removed := normalizer.CleanupBySource(sourcePath)
			fmt.Printf("Removed %d scratch directories\n", removed)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(*cobra.Command, []string) {
			fmt.Printf("%s version %s\n", appName, appVersion)
		},
	}
}
