// Package analysis decides whether a video needs any normalization work
// before the pipeline spends time transcoding it.
package analysis

import (
	"context"
	"fmt"

	"github.com/previewkit/vidnorm/internal/ffmpeg"
	"github.com/previewkit/vidnorm/internal/ffprobe"
	"github.com/previewkit/vidnorm/internal/logging"
)

// Prober abstracts media inspection so the analyzer can be tested
// without ffprobe installed.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffprobe.MediaInfo, error)
	HasEmbeddedThumbnail(ctx context.Context, path string) (bool, error)
}

// Targets describes the desired end state of a video. Zero-valued
// fields mean the corresponding check is skipped.
type Targets struct {
	ResizeWidth       int
	ResizeHeight      int
	NormalizeAspect   bool
	TargetAspectRatio float64
	GenerateThumbnail bool
}

// ResizeRequested reports whether the caller asked for a resize at all.
func (t Targets) ResizeRequested() bool {
	return t.ResizeWidth > 0 || t.ResizeHeight > 0
}

// Result is the analyzer's verdict for one file. Reasons are ordered
// by check: resize, aspect ratio, thumbnail.
type Result struct {
	NeedsProcessing bool
	Reasons         []string
	Info            *ffprobe.MediaInfo
	Err             error
}

// Analyzer compares a file's probed state against the requested
// targets.
type Analyzer struct {
	Prober Prober
	Logger *logging.Logger
}

func New(prober Prober, logger *logging.Logger) *Analyzer {
	return &Analyzer{Prober: prober, Logger: logger}
}

// Analyze probes the file and reports which targets it misses. When the
// probe itself fails the file is conservatively flagged as needing
// processing so a downstream stage surfaces the real error.
func (a *Analyzer) Analyze(ctx context.Context, path string, targets Targets) Result {
	info, err := a.Prober.Probe(ctx, path)
	if err != nil {
		a.Logger.Warn("analysis probe failed for %s: %v", path, err)
		return Result{
			NeedsProcessing: true,
			Reasons:         []string{"could not probe video, assuming processing is required"},
			Err:             err,
		}
	}

	result := Result{Info: info}

	if targets.ResizeRequested() {
		width, height := ffmpeg.ResizeTarget(info.Width, info.Height, targets.ResizeWidth, targets.ResizeHeight)
		if width != info.Width || height != info.Height {
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("resize needed: %dx%d -> %dx%d", info.Width, info.Height, width, height))
		}
	}

	if targets.NormalizeAspect && targets.TargetAspectRatio > 0 {
		if !ffmpeg.RatioWithinTolerance(info.AspectRatio, targets.TargetAspectRatio) {
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("aspect ratio %.3f deviates from target %.3f", info.AspectRatio, targets.TargetAspectRatio))
		}
	}

	if targets.GenerateThumbnail {
		has, err := a.Prober.HasEmbeddedThumbnail(ctx, path)
		if err != nil {
			a.Logger.Warn("thumbnail check failed for %s: %v", path, err)
			result.Reasons = append(result.Reasons, "could not check for embedded thumbnail")
		} else if !has {
			result.Reasons = append(result.Reasons, "no embedded thumbnail")
		}
	}

	result.NeedsProcessing = len(result.Reasons) > 0
	if result.NeedsProcessing {
		a.Logger.Info("analysis of %s: processing needed (%d reasons)", path, len(result.Reasons))
	} else {
		a.Logger.Info("analysis of %s: already normalized", path)
	}
	return result
}
