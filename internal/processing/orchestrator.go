package processing

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/previewkit/vidnorm/internal/analysis"
	"github.com/previewkit/vidnorm/internal/config"
	"github.com/previewkit/vidnorm/internal/errors"
	"github.com/previewkit/vidnorm/internal/ffmpeg"
	"github.com/previewkit/vidnorm/internal/ffprobe"
	"github.com/previewkit/vidnorm/internal/logging"
	"github.com/previewkit/vidnorm/internal/reporter"
	"github.com/previewkit/vidnorm/internal/util"
)

// Pipeline wires the prober, analyzer, and transformer into the
// request state machine. Stages run strictly sequentially; the output
// of one is the input of the next.
type Pipeline struct {
	Prober      Prober
	Analyzer    Analyzer
	Transformer Transformer
	Reporter    reporter.Reporter
	Logger      *logging.Logger

	// NewToken names the per-request scratch directory.
	NewToken func() string
}

// New creates a pipeline backed by the real ffmpeg and ffprobe tools.
func New(cfg *config.Config, logger *logging.Logger, rep reporter.Reporter) *Pipeline {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	prober := ffprobe.New(cfg.FFprobePath, cfg.FFmpegPath, cfg.ProbeTimeout, logger)

	transformer := ffmpeg.NewTransformer(cfg, prober, logger)
	transformer.OnProgress = func(stage string, p ffmpeg.Progress) {
		rep.StageProgress(reporter.StageProgress{
			Stage:   stage,
			Percent: float64(p.Percent),
			Speed:   float64(p.Speed),
		})
	}

	return &Pipeline{
		Prober:      prober,
		Analyzer:    analysis.New(prober, logger),
		Transformer: transformer,
		Reporter:    rep,
		Logger:      logger,
		NewToken:    uuid.NewString,
	}
}

// Process runs the full pipeline for one request. Stage failures are
// recorded in the result's Operations map and do not abort the
// remaining stages; only request-level failures (missing source,
// initial probe failure, output materialization) are terminal.
func (p *Pipeline) Process(ctx context.Context, req Request) Result {
	start := time.Now()
	result := Result{Operations: make(map[string]bool)}
	rep := p.reporter()

	if !util.FileExists(req.SourcePath) {
		result.Err = errors.NewNotFoundError(req.SourcePath)
		rep.Error(reporter.ReporterError{
			Title:   "Processing failed",
			Message: result.Err.Error(),
		})
		return result
	}

	if err := config.ValidateTargetAspectRatio(req.targetRatio()); err != nil {
		result.Err = errors.NewConfigError(err.Error())
		rep.Error(reporter.ReporterError{
			Title:   "Invalid request",
			Message: result.Err.Error(),
			Context: req.SourcePath,
		})
		return result
	}

	info, err := p.Prober.Probe(ctx, req.SourcePath)
	if err != nil {
		result.Err = err
		rep.Error(reporter.ReporterError{
			Title:   "Probe failed",
			Message: err.Error(),
			Context: req.SourcePath,
		})
		return result
	}
	result.OriginalDimensions = util.FormatDimensions(info.Width, info.Height)

	rep.FileInfo(reporter.FileSummary{
		InputFile:  util.GetFilename(req.SourcePath),
		Resolution: result.OriginalDimensions,
		Codec:      info.Codec,
		Duration:   util.FormatDuration(info.DurationSeconds()),
	})

	verdict := p.Analyzer.Analyze(ctx, req.SourcePath, req.targets())
	rep.Analysis(reporter.AnalysisSummary{
		NeedsProcessing: verdict.NeedsProcessing,
		Reasons:         verdict.Reasons,
	})

	if !verdict.NeedsProcessing {
		result.Success = true
		result.Skipped = true
		result.OutputPath = req.SourcePath
		result.FinalDimensions = result.OriginalDimensions
		p.Logger.Info("skipping %s, already normalized", req.SourcePath)
		rep.ProcessComplete(p.summary(req, result, start))
		return result
	}

	outputPath, err := p.resolveOutputPath(req)
	if err != nil {
		result.Err = err
		rep.Error(reporter.ReporterError{
			Title:   "Output path unavailable",
			Message: err.Error(),
			Context: req.SourcePath,
		})
		return result
	}

	util.CheckDiskSpace(req.SourcePath, p.Logger.Warn)

	scratch, err := util.NewScratchDir(req.SourcePath, p.token())
	if err != nil {
		result.Err = errors.NewIOError("failed to create scratch directory", err)
		rep.Error(reporter.ReporterError{
			Title:   "Processing failed",
			Message: result.Err.Error(),
			Context: req.SourcePath,
		})
		return result
	}

	current := p.runStages(ctx, req, scratch, &result)

	result.OutputPath, result.Err = p.materialize(req, current, outputPath)
	if result.Err != nil {
		result.TempFiles = p.survivors(req, current, scratch)
		rep.Error(reporter.ReporterError{
			Title:   "Failed to write output",
			Message: result.Err.Error(),
			Context: req.SourcePath,
		})
		return result
	}

	if finalInfo, err := p.Prober.Probe(ctx, result.OutputPath); err == nil {
		result.FinalDimensions = util.FormatDimensions(finalInfo.Width, finalInfo.Height)
	} else {
		p.Logger.Warn("could not re-probe %s: %v", result.OutputPath, err)
		result.FinalDimensions = result.OriginalDimensions
	}

	result.Success = p.computeSuccess(req, result)
	result.TempFiles = p.survivors(req, current, scratch)

	elapsed := time.Since(start)
	p.Logger.Info("processed %s in %s: success=%v operations=%v",
		req.SourcePath, elapsed.Round(time.Millisecond), result.Success, result.Operations)
	rep.ProcessComplete(p.summary(req, result, start))
	return result
}

// runStages drives the requested stages in fixed order and returns the
// final working file. Each successful stage's output becomes the next
// stage's input; the superseded intermediate is dropped immediately so
// at most one is live at a time.
func (p *Pipeline) runStages(ctx context.Context, req Request, scratch *util.ScratchDir, result *Result) string {
	current := req.SourcePath
	rep := p.reporter()

	handoff := func(stage, output string, err error) {
		if err != nil {
			result.Operations[stage] = false
			p.Logger.Error("stage %s failed for %s: %v", stage, req.SourcePath, err)
			rep.StageOutcome(reporter.StageOutcome{Stage: stage, Message: err.Error()})
			return
		}
		if current != req.SourcePath {
			if rmErr := util.RemoveIfExists(current); rmErr != nil {
				p.Logger.Warn("could not remove superseded intermediate %s: %v", current, rmErr)
			}
		}
		current = output
		result.Operations[stage] = true
		rep.StageOutcome(reporter.StageOutcome{Stage: stage, Success: true})
	}

	if req.ResizeRequested() {
		stage := ffmpeg.StageResize
		output := scratch.StagePath(stage)
		rep.StageStarted(stage)
		handoff(stage, output, p.Transformer.Resize(ctx, current, output, req.ResizeWidth, req.ResizeHeight))
	}

	if req.NormalizeAspect {
		stage := ffmpeg.StageNormalizeAspect
		output := scratch.StagePath(stage)
		rep.StageStarted(stage)
		handoff(stage, output, p.Transformer.NormalizeAspect(ctx, current, output, req.targetRatio()))
	}

	if req.GenerateThumbnail {
		genStage := ffmpeg.StageGenerateThumbnail
		thumb := scratch.ThumbnailPath()
		rep.StageStarted(genStage)

		if err := p.Transformer.GenerateThumbnail(ctx, current, thumb); err != nil {
			result.Operations[genStage] = false
			p.Logger.Error("stage %s failed for %s: %v", genStage, req.SourcePath, err)
			rep.StageOutcome(reporter.StageOutcome{Stage: genStage, Message: err.Error()})
		} else {
			result.Operations[genStage] = true
			rep.StageOutcome(reporter.StageOutcome{Stage: genStage, Success: true})

			embedStage := ffmpeg.StageEmbedThumbnail
			output := scratch.StagePath(embedStage)
			rep.StageStarted(embedStage)
			handoff(embedStage, output, p.Transformer.EmbedThumbnail(ctx, current, thumb, output))

			if err := util.RemoveIfExists(thumb); err != nil {
				p.Logger.Warn("could not remove thumbnail %s: %v", thumb, err)
			}
		}
	}

	return current
}

// materialize moves or copies the final working file to the resolved
// output path and returns the established path.
func (p *Pipeline) materialize(req Request, current, outputPath string) (string, error) {
	if current != req.SourcePath {
		if req.Overwrite {
			if err := util.ReplaceFile(current, req.SourcePath); err != nil {
				return "", errors.NewIOError("failed to replace source with processed file", err)
			}
			return req.SourcePath, nil
		}
		if err := util.CopyFile(current, outputPath); err != nil {
			return "", errors.NewIOError("failed to copy processed file to output", err)
		}
		return outputPath, nil
	}

	// No stage changed the file. Honor a distinct output path with a
	// plain copy; otherwise the source itself is the output.
	if outputPath != req.SourcePath {
		if err := util.CopyFile(req.SourcePath, outputPath); err != nil {
			return "", errors.NewIOError("failed to copy source to output", err)
		}
		return outputPath, nil
	}
	return req.SourcePath, nil
}

// computeSuccess applies the lenient policy: any successful stage makes
// the run a success, and a run with no stages requested succeeds as
// long as an output path was established.
func (p *Pipeline) computeSuccess(req Request, result Result) bool {
	for _, ok := range result.Operations {
		if ok {
			return true
		}
	}
	return !req.anyStageRequested() && result.OutputPath != ""
}

// survivors lists scratch paths still on disk after the run. In
// overwrite mode the final file was renamed out of the scratch
// directory; in copy mode the last intermediate remains inside it
// until the caller cleans up.
func (p *Pipeline) survivors(req Request, current string, scratch *util.ScratchDir) []string {
	var paths []string
	if current != req.SourcePath && util.FileExists(current) {
		paths = append(paths, current)
	}
	return append(paths, scratch.Path())
}

func (p *Pipeline) resolveOutputPath(req Request) (string, error) {
	if req.Overwrite {
		return req.SourcePath, nil
	}

	dir := req.OutputDir
	if dir == "" {
		dir = filepath.Dir(req.SourcePath)
	} else if err := util.EnsureDirectory(dir); err != nil {
		return "", errors.NewIOError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	name := req.OutputName
	if name == "" {
		name = util.GetFilename(req.SourcePath)
	}
	return filepath.Join(dir, name), nil
}

func (p *Pipeline) summary(req Request, result Result, start time.Time) reporter.ProcessSummary {
	return reporter.ProcessSummary{
		InputFile:          util.GetFilename(req.SourcePath),
		OutputPath:         result.OutputPath,
		OriginalDimensions: result.OriginalDimensions,
		FinalDimensions:    result.FinalDimensions,
		Operations:         result.Operations,
		Success:            result.Success,
		Skipped:            result.Skipped,
		TotalTime:          time.Since(start),
	}
}

func (p *Pipeline) reporter() reporter.Reporter {
	if p.Reporter == nil {
		return reporter.NullReporter{}
	}
	return p.Reporter
}

func (p *Pipeline) token() string {
	if p.NewToken == nil {
		return uuid.NewString()
	}
	return p.NewToken()
}
