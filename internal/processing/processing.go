// Package processing orchestrates the normalization pipeline for one
// video file: probe, analyze, run the requested transform stages, and
// materialize the final output.
package processing

import (
	"context"

	"github.com/previewkit/vidnorm/internal/analysis"
	"github.com/previewkit/vidnorm/internal/config"
	"github.com/previewkit/vidnorm/internal/ffprobe"
)

// Request describes one normalization job. It is immutable for the
// lifetime of the pipeline run.
type Request struct {
	// SourcePath is the video to normalize.
	SourcePath string

	// OutputDir and OutputName override the output location. Empty
	// values default to the source's directory and basename. Ignored
	// when Overwrite is set.
	OutputDir  string
	OutputName string

	// Overwrite replaces the source in place via an atomic rename.
	Overwrite bool

	// NormalizeAspect pads the video to TargetAspectRatio.
	NormalizeAspect bool

	// GenerateThumbnail extracts and embeds a cover-art frame.
	GenerateThumbnail bool

	// ResizeWidth and ResizeHeight request a resize. Zero means unset;
	// a single set dimension derives the other from the aspect ratio.
	ResizeWidth  int
	ResizeHeight int

	// TargetAspectRatio defaults to 16:9 when zero.
	TargetAspectRatio float64
}

// ResizeRequested reports whether either resize dimension is set.
func (r Request) ResizeRequested() bool {
	return r.ResizeWidth > 0 || r.ResizeHeight > 0
}

// targetRatio returns the requested ratio with the default applied.
func (r Request) targetRatio() float64 {
	if r.TargetAspectRatio == 0 {
		return config.DefaultTargetAspectRatio
	}
	return r.TargetAspectRatio
}

func (r Request) targets() analysis.Targets {
	return analysis.Targets{
		ResizeWidth:       r.ResizeWidth,
		ResizeHeight:      r.ResizeHeight,
		NormalizeAspect:   r.NormalizeAspect,
		TargetAspectRatio: r.targetRatio(),
		GenerateThumbnail: r.GenerateThumbnail,
	}
}

// anyStageRequested reports whether the request asks for any work.
func (r Request) anyStageRequested() bool {
	return r.ResizeRequested() || r.NormalizeAspect || r.GenerateThumbnail
}

// Result is the outcome of one pipeline run. Operations maps each
// attempted stage name to its success; stages never attempted are
// absent from the map.
type Result struct {
	Success            bool
	Skipped            bool
	OriginalDimensions string
	FinalDimensions    string
	Operations         map[string]bool
	OutputPath         string
	Err                error

	// TempFiles lists scratch paths that survived the run, for
	// deferred cleanup by the caller.
	TempFiles []string
}

// Prober supplies media dimensions to the orchestrator.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffprobe.MediaInfo, error)
}

// Analyzer decides whether a file needs any work.
type Analyzer interface {
	Analyze(ctx context.Context, path string, targets analysis.Targets) analysis.Result
}

// Transformer runs the individual transform stages.
type Transformer interface {
	Resize(ctx context.Context, input, output string, reqWidth, reqHeight int) error
	NormalizeAspect(ctx context.Context, input, output string, targetRatio float64) error
	GenerateThumbnail(ctx context.Context, input, output string) error
	EmbedThumbnail(ctx context.Context, input, thumbnail, output string) error
}
