// Package vidnorm provides a Go library for normalizing video files
// for consistent preview rendering.
//
// Vidnorm probes a video's dimensions with ffprobe (falling back to
// ffmpeg's diagnostic output), decides whether any work is needed, and
// runs the requested transform stages: resize, letterbox/pillarbox
// padding to a target aspect ratio, and thumbnail generation plus
// embedding. The result is either an in-place replacement or a sibling
// output file.
//
// Basic usage:
//
//	normalizer, err := vidnorm.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer normalizer.Close()
//
//	result := normalizer.Process(ctx, vidnorm.Request{
//	    SourcePath:        "clip.mp4",
//	    Overwrite:         true,
//	    NormalizeAspect:   true,
//	    GenerateThumbnail: true,
//	}, nil)
//	defer normalizer.Cleanup(result.TempFiles)
//
//	if result.Err != nil {
//	    log.Fatal(result.Err)
//	}
package vidnorm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/previewkit/vidnorm/internal/config"
	"github.com/previewkit/vidnorm/internal/logging"
	"github.com/previewkit/vidnorm/internal/processing"
	"github.com/previewkit/vidnorm/internal/reporter"
	"github.com/previewkit/vidnorm/internal/status"
	"github.com/previewkit/vidnorm/internal/util"
)

// Request describes one normalization job.
type Request = processing.Request

// Result is the outcome of one pipeline run.
type Result = processing.Result

// Reporter receives detailed progress events during processing.
type Reporter = reporter.Reporter

// Status is a point-in-time copy of the normalizer's activity state.
type Status = status.Snapshot

// Normalizer is the main entry point for video normalization.
type Normalizer struct {
	config  *config.Config
	logger  *logging.Logger
	tracker *status.Tracker
}

// Option configures the normalizer.
type Option func(*config.Config)

// New creates a new Normalizer with the given options.
func New(opts ...Option) (*Normalizer, error) {
	cfg := config.NewConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var logger *logging.Logger
	if cfg.LogDir != "" {
		var err error
		logger, err = logging.Setup(cfg.LogDir, cfg.Verbose)
		if err != nil {
			return nil, err
		}
	}

	return &Normalizer{
		config:  cfg,
		logger:  logger,
		tracker: status.NewTracker(),
	}, nil
}

// WithFFmpegPath overrides the ffmpeg binary.
func WithFFmpegPath(path string) Option {
	return func(c *config.Config) { c.FFmpegPath = path }
}

// WithFFprobePath overrides the ffprobe binary.
func WithFFprobePath(path string) Option {
	return func(c *config.Config) { c.FFprobePath = path }
}

// WithProbeTimeout bounds each dimension query.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *config.Config) { c.ProbeTimeout = d }
}

// WithStageTimeout bounds each transform stage.
func WithStageTimeout(d time.Duration) Option {
	return func(c *config.Config) { c.StageTimeout = d }
}

// WithRequestTimeout bounds an entire pipeline run. The bound is
// enforced by the caller wrapping Process in a context deadline; see
// RequestTimeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *config.Config) { c.RequestTimeout = d }
}

// WithEncoder sets the codec, preset, and CRF for re-encoding stages.
func WithEncoder(codec, preset string, crf int) Option {
	return func(c *config.Config) {
		c.VideoCodec = codec
		c.EncoderPreset = preset
		c.CRF = crf
	}
}

// WithThumbnailTimestamp sets where the thumbnail frame is taken from.
func WithThumbnailTimestamp(ts string) Option {
	return func(c *config.Config) { c.ThumbnailTimestamp = ts }
}

// WithThumbnailQuality sets the JPEG quality scale for extraction.
func WithThumbnailQuality(q int) Option {
	return func(c *config.Config) { c.ThumbnailQuality = q }
}

// WithLogDir enables file logging under dir.
func WithLogDir(dir string) Option {
	return func(c *config.Config) { c.LogDir = dir }
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return func(c *config.Config) { c.Verbose = true }
}

// IsVideoFile reports whether the path has a recognized video extension.
func IsVideoFile(path string) bool {
	return util.IsVideoFile(path)
}

// ParseAspectRatio converts an aspect ratio string to its float value.
// Accepts "W:H" form (e.g. "16:9") or a decimal (e.g. "1.778"). The
// result must fall in the valid range (0.1, 10.0).
func ParseAspectRatio(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("aspect ratio is empty")
	}

	var ratio float64
	if w, h, found := strings.Cut(s, ":"); found {
		width, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid aspect ratio %q: %w", s, err)
		}
		height, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid aspect ratio %q: %w", s, err)
		}
		if height == 0 {
			return 0, fmt.Errorf("invalid aspect ratio %q: zero height", s)
		}
		ratio = width / height
	} else {
		var err error
		ratio, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid aspect ratio %q: %w", s, err)
		}
	}

	if err := config.ValidateTargetAspectRatio(ratio); err != nil {
		return 0, err
	}
	return ratio, nil
}

// RequestTimeout returns the configured whole-pipeline bound for
// callers wrapping Process in a context deadline.
func (n *Normalizer) RequestTimeout() time.Duration {
	return n.config.RequestTimeout
}

// Process runs the normalization pipeline for one request. Errors are
// carried in the result rather than returned; stage-level failures are
// recorded in Result.Operations and do not fail the run on their own.
// Result.TempFiles lists surviving scratch paths the caller should pass
// to Cleanup once done with the output.
func (n *Normalizer) Process(ctx context.Context, req Request, handler EventHandler) Result {
	var rep reporter.Reporter = reporter.NullReporter{}
	if handler != nil {
		rep = newEventReporter(handler, n.logger)
	}
	return n.ProcessWithReporter(ctx, req, rep)
}

// ProcessWithReporter runs the pipeline with a custom Reporter. This
// provides direct access to all processing events, unlike Process
// which uses the EventHandler abstraction.
func (n *Normalizer) ProcessWithReporter(ctx context.Context, req Request, rep Reporter) Result {
	n.tracker.Started(req.SourcePath)

	pipeline := processing.New(n.config, n.logger, rep)
	result := pipeline.Process(ctx, req)

	n.tracker.Finished(outcomeOf(result))
	return result
}

// Cleanup removes the scratch paths tracked in a result.
func (n *Normalizer) Cleanup(paths []string) {
	processing.Cleanup(paths, n.logger)
}

// CleanupBySource removes any scratch directories derived from the
// source path. Used after a run died from an external timeout before
// its tracked scratch list was available. Returns the number of
// directories removed.
func (n *Normalizer) CleanupBySource(sourcePath string) int {
	return processing.CleanupBySource(sourcePath, n.logger)
}

// Status returns the current activity state.
func (n *Normalizer) Status() Status {
	return n.tracker.Snapshot()
}

// LogPath returns the active log file path, or empty when file logging
// is disabled.
func (n *Normalizer) LogPath() string {
	return n.logger.FilePath()
}

// Close releases the log file. The normalizer must not be used after.
func (n *Normalizer) Close() error {
	return n.logger.Close()
}

func outcomeOf(result Result) status.Outcome {
	switch {
	case result.Skipped:
		return status.OutcomeSkipped
	case result.Success:
		return status.OutcomeSuccess
	default:
		return status.OutcomeFailed
	}
}

// eventReporter adapts an EventHandler to the Reporter interface.
// Terminal outcomes map to the success/failed/skipped events; file and
// stage detail below that granularity is dropped.
type eventReporter struct {
	handler EventHandler
	logger  *logging.Logger

	inputFile string
}

func newEventReporter(handler EventHandler, logger *logging.Logger) *eventReporter {
	return &eventReporter{handler: handler, logger: logger}
}

func (r *eventReporter) emit(event Event) {
	if err := r.handler(event); err != nil {
		r.logger.Warn("event handler rejected %s: %v", event.Type(), err)
	}
}

func (r *eventReporter) FileInfo(summary reporter.FileSummary) {
	r.inputFile = summary.InputFile
}

func (r *eventReporter) Analysis(reporter.AnalysisSummary) {}
func (r *eventReporter) StageStarted(string)               {}

func (r *eventReporter) StageProgress(update reporter.StageProgress) {
	r.emit(StageProgressEvent{
		BaseEvent: BaseEvent{EventType: EventTypeStageProgress, Time: NewTimestamp()},
		Stage:     update.Stage,
		Percent:   update.Percent,
		Speed:     update.Speed,
	})
}

func (r *eventReporter) StageOutcome(reporter.StageOutcome) {}

func (r *eventReporter) ProcessComplete(summary reporter.ProcessSummary) {
	if summary.Skipped {
		r.emit(VideoSkippedEvent{
			BaseEvent:  BaseEvent{EventType: EventTypeVideoSkipped, Time: NewTimestamp()},
			SourcePath: summary.InputFile,
		})
		return
	}
	if !summary.Success {
		r.emit(ProcessingFailedEvent{
			BaseEvent:  BaseEvent{EventType: EventTypeProcessingFailed, Time: NewTimestamp()},
			SourcePath: summary.InputFile,
			Error:      "one or more processing stages failed",
		})
		return
	}
	r.emit(ProcessingSuccessEvent{
		BaseEvent:          BaseEvent{EventType: EventTypeProcessingSuccess, Time: NewTimestamp()},
		SourcePath:         summary.InputFile,
		OutputPath:         summary.OutputPath,
		OriginalDimensions: summary.OriginalDimensions,
		FinalDimensions:    summary.FinalDimensions,
		Operations:         summary.Operations,
	})
}

func (r *eventReporter) Warning(message string) {
	r.emit(WarningEvent{
		BaseEvent: BaseEvent{EventType: EventTypeWarning, Time: NewTimestamp()},
		Message:   message,
	})
}

func (r *eventReporter) Error(err reporter.ReporterError) {
	source := err.Context
	if source == "" {
		source = r.inputFile
	}
	r.emit(ProcessingFailedEvent{
		BaseEvent:  BaseEvent{EventType: EventTypeProcessingFailed, Time: NewTimestamp()},
		SourcePath: source,
		Error:      err.Message,
	})
}
