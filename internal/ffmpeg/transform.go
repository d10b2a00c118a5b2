package ffmpeg

import (
	"context"
	"time"

	"github.com/previewkit/vidnorm/internal/config"
	"github.com/previewkit/vidnorm/internal/errors"
	"github.com/previewkit/vidnorm/internal/ffprobe"
	"github.com/previewkit/vidnorm/internal/logging"
	"github.com/previewkit/vidnorm/internal/util"
)

// MediaProber supplies stream dimensions to transform stages.
type MediaProber interface {
	Probe(ctx context.Context, path string) (*ffprobe.MediaInfo, error)
}

// StageProgressFunc receives progress updates tagged with the stage name.
type StageProgressFunc func(stage string, progress Progress)

// Transformer runs the individual transform stages. Every stage writes
// a new file at its output path and never mutates its input; on failure
// or timeout any partial output is removed before the error is returned.
type Transformer struct {
	FFmpegPath         string
	Settings           EncodeSettings
	StageTimeout       time.Duration
	ThumbnailTimestamp string
	ThumbnailQuality   int

	Prober     MediaProber
	Runner     Runner
	Logger     *logging.Logger
	OnProgress StageProgressFunc
}

// NewTransformer creates a Transformer from the configuration.
func NewTransformer(cfg *config.Config, prober MediaProber, logger *logging.Logger) *Transformer {
	return &Transformer{
		FFmpegPath: cfg.FFmpegPath,
		Settings: EncodeSettings{
			Codec:  cfg.VideoCodec,
			Preset: cfg.EncoderPreset,
			CRF:    cfg.CRF,
		},
		StageTimeout:       cfg.StageTimeout,
		ThumbnailTimestamp: cfg.ThumbnailTimestamp,
		ThumbnailQuality:   cfg.ThumbnailQuality,
		Prober:             prober,
		Runner:             NewRunner(),
		Logger:             logger,
	}
}

// Resize scales the input to the requested dimensions. A missing width
// or height is derived from the current aspect ratio. When the computed
// target equals the current dimensions the input is copied to the
// output unchanged, no re-encode.
func (t *Transformer) Resize(ctx context.Context, input, output string, reqWidth, reqHeight int) error {
	if reqWidth <= 0 && reqHeight <= 0 {
		return errors.NewStageError(StageResize, "no target dimensions specified", nil)
	}

	info, err := t.Prober.Probe(ctx, input)
	if err != nil {
		return errors.NewStageError(StageResize, "failed to probe input", err)
	}

	width, height := ResizeTarget(info.Width, info.Height, reqWidth, reqHeight)
	if width == info.Width && height == info.Height {
		t.Logger.Debug("video already has target dimensions %dx%d", width, height)
		return t.copyThrough(StageResize, input, output)
	}

	t.Logger.Info("resizing video from %dx%d to %dx%d", info.Width, info.Height, width, height)
	args := BuildResizeArgs(input, output, width, height, t.Settings)
	return t.run(ctx, StageResize, args, output, info.DurationSeconds())
}

// NormalizeAspect pads the input to the target aspect ratio with black
// bars. Within tolerance the input is copied through unchanged.
func (t *Transformer) NormalizeAspect(ctx context.Context, input, output string, targetRatio float64) error {
	info, err := t.Prober.Probe(ctx, input)
	if err != nil {
		return errors.NewStageError(StageNormalizeAspect, "failed to probe input", err)
	}

	if RatioWithinTolerance(info.AspectRatio, targetRatio) {
		t.Logger.Debug("video already has correct aspect ratio: %.3f", info.AspectRatio)
		return t.copyThrough(StageNormalizeAspect, input, output)
	}

	t.Logger.Info("normalizing aspect ratio from %.3f to %.3f", info.AspectRatio, targetRatio)
	pad := ComputePadding(info.Width, info.Height, targetRatio)
	args := BuildPadArgs(input, output, pad, t.Settings)
	return t.run(ctx, StageNormalizeAspect, args, output, info.DurationSeconds())
}

// GenerateThumbnail extracts a single JPEG frame. The stage fails when
// the output file is absent after the run, even on a zero exit code.
func (t *Transformer) GenerateThumbnail(ctx context.Context, input, output string) error {
	args := BuildThumbnailExtractArgs(input, output, t.ThumbnailTimestamp, t.ThumbnailQuality)
	if err := t.run(ctx, StageGenerateThumbnail, args, output, 0); err != nil {
		return err
	}

	if !util.FileExists(output) {
		return errors.NewStageError(StageGenerateThumbnail, "thumbnail file was not created", nil)
	}
	t.Logger.Debug("thumbnail generated at %s", output)
	return nil
}

// EmbedThumbnail muxes the thumbnail into the container as an attached
// picture, stream-copying all existing streams.
func (t *Transformer) EmbedThumbnail(ctx context.Context, input, thumbnail, output string) error {
	args := BuildThumbnailEmbedArgs(input, thumbnail, output)
	return t.run(ctx, StageEmbedThumbnail, args, output, 0)
}

// copyThrough satisfies a stage that needs no work by copying the input
// to the expected output path so the pipeline handoff stays uniform.
func (t *Transformer) copyThrough(stage, input, output string) error {
	if err := util.CopyFile(input, output); err != nil {
		return errors.NewStageError(stage, "failed to copy input through", err)
	}
	return nil
}

// run executes ffmpeg for a stage and removes any partial output on
// failure or timeout.
func (t *Transformer) run(ctx context.Context, stage string, args []string, output string, duration float64) error {
	var callback ProgressCallback
	if t.OnProgress != nil {
		callback = func(p Progress) { t.OnProgress(stage, p) }
	}

	result := t.Runner.Run(ctx, t.FFmpegPath, args, t.StageTimeout, duration, callback)
	if result.Err != nil {
		if err := util.RemoveIfExists(output); err != nil {
			t.Logger.Debug("could not remove partial output %s: %v", output, err)
		}
		t.Logger.Error("stage %s failed: %v", stage, result.Err)
		return errors.NewStageError(stage, "ffmpeg failed", result.Err)
	}
	return nil
}
